package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Writer wraps csv.Writer with a fixed column set.
type Writer struct {
	out     io.Writer
	csv     *csv.Writer
	columns []string
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer, columns []string) *Writer {
	return &Writer{out: w, csv: csv.NewWriter(w), columns: columns}
}

// WriteBOM writes the UTF-8 byte order mark. Call it before anything else.
func (w *Writer) WriteBOM() error {
	_, err := w.out.Write(BOM)
	return err
}

// WriteHeader writes the column names.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(w.columns)
}

// WriteRow writes one record, padding or truncating it to the column count.
func (w *Writer) WriteRow(row []string) error {
	if len(row) != len(w.columns) {
		fixed := make([]string, len(w.columns))
		copy(fixed, row)
		row = fixed
	}
	return w.csv.Write(row)
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename makes name safe for a Content-Disposition header, capped
// at 100 characters.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "export"
	}
	return s
}

// BuildFilename returns {sanitized_name}_{YYYY-MM-DD}.{ext}.
func BuildFilename(name, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(name), now.Format("2006-01-02"), ext)
}
