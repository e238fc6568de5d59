package docparse

import (
	"archive/zip"
	"bytes"
	"html"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// PlaceholderText replaces the content of a DOCX file from which no text
// could be recovered.
const PlaceholderText = "Text could not be extracted from this document."

const (
	docxMainPart    = "word/document.xml"
	maxDocxPartSize = 64 << 20
	minStrippedLen  = 10
)

var (
	zipMagic = []byte{0x50, 0x4B}

	// runPattern matches run-level text nodes: <w:t> and <w:t xml:space="preserve">.
	runPattern    = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>`)
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	nonTextRunes  = regexp.MustCompile(`[^\w\s\x{0400}-\x{04FF}]+`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// extractDocx recovers flat text from a DOCX file. It does not build a
// document tree: it collects the text of <w:t> runs and, failing that, strips
// all markup from whatever it has.
func extractDocx(data []byte) (*ExtractedText, error) {
	if !bytes.HasPrefix(data, zipMagic) {
		return nil, &ParseError{Format: FormatDocx, Message: "file does not appear to be a valid DOCX document"}
	}

	markup := docxMarkup(data)

	if text, ok := joinRuns(markup); ok {
		return &ExtractedText{Text: text, Meta: ExtractMeta{Extractor: "docx-runs"}}, nil
	}

	stripped := stripMarkup(markup)
	if utf8.RuneCountInString(stripped) <= minStrippedLen {
		return &ExtractedText{
			Text: PlaceholderText,
			Meta: ExtractMeta{Extractor: "docx-placeholder", Degraded: true},
		}, nil
	}
	return &ExtractedText{Text: stripped, Meta: ExtractMeta{Extractor: "docx-stripped"}}, nil
}

// docxMarkup returns the decoded main document part when the container can
// be opened, and the whole buffer decoded as UTF-8 otherwise. Invalid byte
// sequences become U+FFFD.
func docxMarkup(data []byte) string {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err == nil {
		for _, f := range zr.File {
			if f.Name != docxMainPart {
				continue
			}
			rc, openErr := f.Open()
			if openErr != nil {
				break
			}
			part, readErr := io.ReadAll(io.LimitReader(rc, maxDocxPartSize))
			_ = rc.Close()
			if readErr != nil {
				break
			}
			return strings.ToValidUTF8(string(part), "\uFFFD")
		}
	}
	return strings.ToValidUTF8(string(data), "\uFFFD")
}

func joinRuns(markup string) (string, bool) {
	matches := runPattern.FindAllStringSubmatch(markup, -1)
	if len(matches) == 0 {
		return "", false
	}
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, html.UnescapeString(m[1]))
	}
	return collapseWhitespace(strings.Join(parts, " ")), true
}

func stripMarkup(markup string) string {
	text := tagPattern.ReplaceAllString(markup, " ")
	text = nonTextRunes.ReplaceAllString(text, " ")
	return collapseWhitespace(text)
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}
