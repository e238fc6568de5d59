package docparse

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractXlsx reads every sheet in workbook order. Each sheet contributes a
// "## <name>" heading, one pipe-joined line per row, and a Table when it has a
// header row followed by at least one data row. Cell values use excelize's
// default formatting.
func extractXlsx(ctx context.Context, data []byte, policy RowPolicy) (out *ExtractedText, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &ParseError{Format: FormatXlsx, Message: "spreadsheet reader failed", Err: fmt.Errorf("%v", r)}
		}
	}()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Format: FormatXlsx, Message: "could not open workbook", Err: err}
	}
	defer func() { _ = f.Close() }()

	var text strings.Builder
	var tables []Table
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, &ParseError{Format: FormatXlsx, Message: fmt.Sprintf("could not read sheet %q", sheet), Err: err}
		}

		text.WriteString("## ")
		text.WriteString(sheet)
		text.WriteByte('\n')

		if len(rows) > 1 && len(rows[0]) > 0 {
			tables = append(tables, sheetTable(sheet, rows, policy))
		}

		for _, row := range rows {
			if line := joinNonEmpty(row); line != "" {
				text.WriteString(line)
				text.WriteByte('\n')
			}
		}
	}

	return &ExtractedText{
		Text:   strings.TrimRight(text.String(), "\n"),
		Tables: tables,
		Meta:   ExtractMeta{Extractor: "xlsx"},
	}, nil
}

func sheetTable(title string, rows [][]string, policy RowPolicy) Table {
	headers := append([]string(nil), rows[0]...)
	data := make([][]string, 0, len(rows)-1)
	for _, r := range rows[1:] {
		data = append(data, shapeRow(r, len(headers), policy))
	}
	return Table{Title: title, Headers: headers, Rows: data}
}

// shapeRow applies the row policy. The returned slice never aliases row.
func shapeRow(row []string, width int, policy RowPolicy) []string {
	if policy == RowPolicyKeep {
		return append([]string(nil), row...)
	}
	out := make([]string, width)
	copy(out, row)
	return out
}

func joinNonEmpty(cells []string) string {
	kept := make([]string, 0, len(cells))
	for _, c := range cells {
		if c != "" {
			kept = append(kept, c)
		}
	}
	return strings.Join(kept, "|")
}
