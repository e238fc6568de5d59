package docparse

import (
	"strings"
	"time"
)

// Format identifies a supported container format.
type Format string

const (
	FormatDocx Format = "docx"
	FormatXlsx Format = "xlsx"
)

// RawDocument is an uploaded file as handed to the pipeline. The pipeline never
// retains it past a single Parse call.
type RawDocument struct {
	Name        string
	ContentType string
	Data        []byte
}

// ExtractMeta describes how a piece of text was extracted.
type ExtractMeta struct {
	ParsedAt  time.Time `json:"parsed_at"`
	Extractor string    `json:"extractor"`
	Version   string    `json:"version"`
	// Degraded is set when nothing usable could be recovered and Text holds
	// PlaceholderText instead of document content.
	Degraded bool `json:"degraded"`
}

// ExtractedText is the flat output of a format extractor. Tables is only
// populated by extractors that recover genuine tabular structure.
type ExtractedText struct {
	Text   string      `json:"text"`
	Tables []Table     `json:"tables,omitempty"`
	Meta   ExtractMeta `json:"meta"`
}

// Section is a titled span of a document's text.
type Section struct {
	Title   string `json:"title"`
	Level   int    `json:"level"`
	Content string `json:"content"`
	Order   int    `json:"order"`
}

// Table is a titled grid of string cells with a header row.
type Table struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Metadata holds aggregate counts for a parsed document.
type Metadata struct {
	TotalSections int       `json:"total_sections"`
	TotalTables   int       `json:"total_tables"`
	WordCount     int       `json:"word_count"`
	Extractor     string    `json:"extractor"`
	ParsedAt      time.Time `json:"parsed_at"`
	Degraded      bool      `json:"degraded"`
}

// ParsedContent is the terminal artifact of the pipeline.
type ParsedContent struct {
	Sections []Section `json:"sections"`
	Tables   []Table   `json:"tables"`
	Metadata Metadata  `json:"metadata"`
}

// Text flattens the parsed sections back into a heading-annotated string.
// Tables are appended as pipe-joined rows under their titles.
func (p *ParsedContent) Text() string {
	var b strings.Builder
	for i, s := range p.Sections {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Repeat("#", s.Level))
		b.WriteByte(' ')
		b.WriteString(s.Title)
		if s.Content != "" {
			b.WriteByte('\n')
			b.WriteString(s.Content)
		}
	}
	for _, t := range p.Tables {
		b.WriteString("\n\n")
		b.WriteString(t.Title)
		b.WriteByte('\n')
		b.WriteString(strings.Join(t.Headers, " | "))
		for _, r := range t.Rows {
			b.WriteByte('\n')
			b.WriteString(strings.Join(r, " | "))
		}
	}
	return b.String()
}
