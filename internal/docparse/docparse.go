// Package docparse turns uploaded DOCX and XLSX files into ordered sections,
// tables and summary counts.
//
// The pipeline is strictly linear:
//
//	bytes -> Detect (extension) -> extractor (docx | xlsx) -> Segment -> ParsedContent
//
// Each call works on its own buffer; a Parser holds only immutable options
// and is safe for concurrent use.
package docparse

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// Version is recorded in ExtractMeta for every extraction.
const Version = "1.0"

// RowPolicy decides what happens to spreadsheet rows whose length differs
// from the header row.
type RowPolicy string

const (
	// RowPolicyPad pads short rows with empty cells and truncates long rows,
	// so every row has exactly len(headers) cells.
	RowPolicyPad RowPolicy = "pad"
	// RowPolicyKeep keeps rows exactly as the spreadsheet library returns them.
	RowPolicyKeep RowPolicy = "keep"
)

// ParseRowPolicy maps a case-insensitive policy name to a RowPolicy.
func ParseRowPolicy(name string) (RowPolicy, error) {
	switch p := RowPolicy(strings.ToLower(strings.TrimSpace(name))); p {
	case RowPolicyPad, RowPolicyKeep:
		return p, nil
	default:
		return "", fmt.Errorf("unknown row policy %q (want pad or keep)", name)
	}
}

// Options configures a Parser.
type Options struct {
	// HeadingHeuristic classifies non-marker lines as implicit headings.
	// nil disables implicit headings entirely.
	HeadingHeuristic HeadingHeuristic
	RowPolicy        RowPolicy
	// MaxBytes caps ParseReader input; 0 means no limit.
	MaxBytes int64
	Now      func() time.Time
}

// DefaultOptions returns the options used by the upload flow.
func DefaultOptions() Options {
	return Options{
		HeadingHeuristic: AllCapsHeading,
		RowPolicy:        RowPolicyPad,
		Now:              time.Now,
	}
}

// Parser runs the extraction pipeline.
type Parser struct {
	opts Options
}

// New creates a Parser. Zero RowPolicy and Now fields fall back to defaults;
// a nil HeadingHeuristic is kept as nil.
func New(opts Options) *Parser {
	if opts.RowPolicy == "" {
		opts.RowPolicy = RowPolicyPad
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Parser{opts: opts}
}

// Detect returns the format for a file name, judged by its lowercased
// extension alone.
func Detect(name string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch ext {
	case "docx":
		return FormatDocx, nil
	case "xlsx":
		return FormatXlsx, nil
	case "":
		return "", &UnsupportedFileTypeError{Extension: "unknown"}
	default:
		return "", &UnsupportedFileTypeError{Extension: ext}
	}
}

// SupportedExtensions lists the extensions Detect accepts.
func SupportedExtensions() []string {
	return []string{string(FormatDocx), string(FormatXlsx)}
}

// ParseReader reads r fully and parses the result. Read failures and empty
// input are reported as FileReadError.
func (p *Parser) ParseReader(ctx context.Context, name, contentType string, r io.Reader) (*ParsedContent, error) {
	if _, err := Detect(name); err != nil {
		return nil, err
	}
	data, err := p.readAll(r)
	if err != nil {
		return nil, &FileReadError{Name: name, Err: err}
	}
	return p.Parse(ctx, RawDocument{Name: name, ContentType: contentType, Data: data})
}

func (p *Parser) readAll(r io.Reader) ([]byte, error) {
	if p.opts.MaxBytes > 0 {
		r = io.LimitReader(r, p.opts.MaxBytes+1)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	if p.opts.MaxBytes > 0 && int64(buf.Len()) > p.opts.MaxBytes {
		return nil, fmt.Errorf("file exceeds %d bytes", p.opts.MaxBytes)
	}
	if buf.Len() == 0 {
		return nil, errors.New("file is empty")
	}
	return buf.Bytes(), nil
}

// Extract runs dispatch and the format extractor, returning flat text without
// segmentation.
func (p *Parser) Extract(ctx context.Context, doc RawDocument) (*ExtractedText, error) {
	format, err := Detect(doc.Name)
	if err != nil {
		return nil, err
	}
	if len(doc.Data) == 0 {
		return nil, &FileReadError{Name: doc.Name, Err: errors.New("file is empty")}
	}
	if err := ctx.Err(); err != nil {
		return nil, &FileReadError{Name: doc.Name, Err: err}
	}

	var out *ExtractedText
	switch format {
	case FormatDocx:
		out, err = extractDocx(doc.Data)
	case FormatXlsx:
		out, err = extractXlsx(ctx, doc.Data, p.opts.RowPolicy)
	}
	if err != nil {
		return nil, classify(doc.Name, err)
	}
	out.Meta.ParsedAt = p.opts.Now().UTC()
	out.Meta.Version = Version
	return out, nil
}

// Parse dispatches on the file name, extracts text and segments it. A failed
// call returns no partial result.
func (p *Parser) Parse(ctx context.Context, doc RawDocument) (*ParsedContent, error) {
	format, err := Detect(doc.Name)
	if err != nil {
		return nil, err
	}
	extracted, err := p.Extract(ctx, doc)
	if err != nil {
		return nil, err
	}

	lines := splitLines(extracted.Text)
	sections := Segment(lines, extracted.Text, baseTitle(doc.Name), p.opts.HeadingHeuristic)

	// Spreadsheets carry real tables; everything else goes through the
	// pipe-delimited line heuristic.
	tables := extracted.Tables
	if format != FormatXlsx {
		tables = DetectTables(lines)
	}
	if tables == nil {
		tables = []Table{}
	}

	return &ParsedContent{
		Sections: sections,
		Tables:   tables,
		Metadata: Metadata{
			TotalSections: len(sections),
			TotalTables:   len(tables),
			WordCount:     WordCount(extracted.Text),
			Extractor:     extracted.Meta.Extractor,
			ParsedAt:      extracted.Meta.ParsedAt,
			Degraded:      extracted.Meta.Degraded,
		},
	}, nil
}

// baseTitle strips directories and the last extension from a file name.
func baseTitle(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// WordCount counts non-empty whitespace-separated tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
