package docparse_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"knowbase/internal/docparse"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newParser(opts docparse.Options) *docparse.Parser {
	opts.Now = func() time.Time { return fixedNow }
	return docparse.New(opts)
}

func docxFixture(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0"?><Types/>`))
	require.NoError(t, err)
	w, err = zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><w:document><w:body>` + body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func para(text string) string {
	return `<w:p><w:r><w:t xml:space="preserve">` + text + `</w:t></w:r></w:p>`
}

func xlsxFixture(t *testing.T, sheets map[string][][]interface{}, order []string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			row := row
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		want    docparse.Format
		wantExt string
	}{
		{name: "handbook.docx", want: docparse.FormatDocx},
		{name: "REPORT.XLSX", want: docparse.FormatXlsx},
		{name: "dir/v1.2/plan.Docx", want: docparse.FormatDocx},
		{name: "scan.pdf", wantExt: "pdf"},
		{name: "legacy.doc", wantExt: "doc"},
		{name: "README", wantExt: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := docparse.Detect(tt.name)
			if tt.wantExt == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, docparse.ErrUnsupportedFileType)
			var ute *docparse.UnsupportedFileTypeError
			require.True(t, errors.As(err, &ute))
			assert.Equal(t, tt.wantExt, ute.Extension)
			assert.Equal(t, "unsupported file type: "+tt.wantExt, err.Error())
		})
	}
}

func TestParse_UnsupportedBeforeReadingBytes(t *testing.T) {
	p := newParser(docparse.DefaultOptions())

	_, err := p.Parse(context.Background(), docparse.RawDocument{Name: "notes.pdf", Data: nil})

	assert.ErrorIs(t, err, docparse.ErrUnsupportedFileType)
}

func TestParse_DocxMissingMagic(t *testing.T) {
	p := newParser(docparse.DefaultOptions())

	out, err := p.Parse(context.Background(), docparse.RawDocument{Name: "fake.docx", Data: []byte("plain text, not a zip")})

	assert.Nil(t, out)
	assert.ErrorIs(t, err, docparse.ErrParse)
	assert.Contains(t, err.Error(), "failed to parse docx file")
}

func TestParse_EmptyData(t *testing.T) {
	p := newParser(docparse.DefaultOptions())

	_, err := p.Parse(context.Background(), docparse.RawDocument{Name: "empty.xlsx"})

	assert.ErrorIs(t, err, docparse.ErrFileRead)
}

func TestParse_DocxEndToEnd(t *testing.T) {
	body := para("# Onboarding Guide") +
		para("Welcome to the team.") +
		para("## First Week") +
		para("Meet your mentor &amp; read the handbook.")
	p := newParser(docparse.DefaultOptions())

	out, err := p.Parse(context.Background(), docparse.RawDocument{Name: "guides/onboarding.docx", Data: docxFixture(t, body)})

	require.NoError(t, err)
	// Runs are joined with spaces, so the whole body collapses to one line
	// and only the first marker opens a section.
	require.Len(t, out.Sections, 1)
	assert.Equal(t, "Onboarding Guide Welcome to the team. ## First Week Meet your mentor & read the handbook.", out.Sections[0].Title)
	assert.Equal(t, 1, out.Sections[0].Level)
	assert.Equal(t, "docx-runs", out.Metadata.Extractor)
	assert.Equal(t, fixedNow, out.Metadata.ParsedAt)
	assert.False(t, out.Metadata.Degraded)
	assert.NotNil(t, out.Tables)
	assert.Empty(t, out.Tables)
	assert.Equal(t, 1, out.Metadata.TotalSections)
}

func TestParse_DocxWithoutHeadingsFallsBackToFileName(t *testing.T) {
	p := newParser(docparse.DefaultOptions())

	out, err := p.Parse(context.Background(), docparse.RawDocument{
		Name: `C:\Users\ann\Policies.v2.docx`,
		Data: docxFixture(t, para("Employees must badge in at the front desk.")),
	})

	require.NoError(t, err)
	require.Len(t, out.Sections, 1)
	assert.Equal(t, "Policies.v2", out.Sections[0].Title)
	assert.Equal(t, "Employees must badge in at the front desk.", out.Sections[0].Content)
	assert.Equal(t, 8, out.Metadata.WordCount)
}

func TestParse_XlsxTwoSheets(t *testing.T) {
	data := xlsxFixture(t, map[string][][]interface{}{
		"Staff":    {{"Name", "Role"}, {"Ann", "Dev"}, {"Bob", "Ops"}},
		"Projects": {{"Code", "Owner"}, {"Atlas", "Ann"}, {"Borealis", "Bob"}},
	}, []string{"Staff", "Projects"})
	p := newParser(docparse.DefaultOptions())

	out, err := p.Parse(context.Background(), docparse.RawDocument{Name: "team.xlsx", Data: data})

	require.NoError(t, err)
	require.Len(t, out.Tables, 2)
	assert.Equal(t, "Staff", out.Tables[0].Title)
	assert.Equal(t, []string{"Name", "Role"}, out.Tables[0].Headers)
	assert.Equal(t, [][]string{{"Ann", "Dev"}, {"Bob", "Ops"}}, out.Tables[0].Rows)
	assert.Equal(t, "Projects", out.Tables[1].Title)
	assert.Len(t, out.Tables[1].Rows, 2)

	require.Len(t, out.Sections, 2)
	assert.Equal(t, "Staff", out.Sections[0].Title)
	assert.Equal(t, 2, out.Sections[0].Level)
	assert.Equal(t, "Name|Role\nAnn|Dev\nBob|Ops", out.Sections[0].Content)
	assert.Equal(t, "Projects", out.Sections[1].Title)
	assert.Equal(t, 2, out.Metadata.TotalTables)
	assert.Equal(t, "xlsx", out.Metadata.Extractor)
}

func TestExtract_XlsxText(t *testing.T) {
	data := xlsxFixture(t, map[string][][]interface{}{
		"Staff":    {{"Name", "Role"}, {"Ann", "Dev"}, {"Bob", "Ops"}},
		"Projects": {{"Code", "Owner"}, {"Atlas", "Ann"}, {"Borealis", "Bob"}},
	}, []string{"Staff", "Projects"})
	p := newParser(docparse.DefaultOptions())

	out, err := p.Extract(context.Background(), docparse.RawDocument{Name: "team.xlsx", Data: data})

	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out.Text, "## "))
	assert.True(t, strings.HasPrefix(out.Text, "## Staff\n"))
	assert.Contains(t, out.Text, "\n## Projects\n")
	assert.Equal(t, docparse.Version, out.Meta.Version)
}

func TestParse_XlsxRowPolicy(t *testing.T) {
	data := xlsxFixture(t, map[string][][]interface{}{
		"Staff": {{"Name", "Role", "Team"}, {"Ann", "Dev"}, {"Bob", "Ops", "Core", "extra"}},
	}, []string{"Staff"})

	t.Run("pad", func(t *testing.T) {
		out, err := newParser(docparse.Options{RowPolicy: docparse.RowPolicyPad}).
			Parse(context.Background(), docparse.RawDocument{Name: "s.xlsx", Data: data})
		require.NoError(t, err)
		require.Len(t, out.Tables, 1)
		assert.Equal(t, [][]string{{"Ann", "Dev", ""}, {"Bob", "Ops", "Core"}}, out.Tables[0].Rows)
	})

	t.Run("keep", func(t *testing.T) {
		out, err := newParser(docparse.Options{RowPolicy: docparse.RowPolicyKeep}).
			Parse(context.Background(), docparse.RawDocument{Name: "s.xlsx", Data: data})
		require.NoError(t, err)
		require.Len(t, out.Tables, 1)
		assert.Equal(t, [][]string{{"Ann", "Dev"}, {"Bob", "Ops", "Core", "extra"}}, out.Tables[0].Rows)
	})
}

func TestParse_XlsxHeaderOnlySheetHasNoTable(t *testing.T) {
	data := xlsxFixture(t, map[string][][]interface{}{
		"Empty": {{"Name", "Role"}},
	}, []string{"Empty"})
	p := newParser(docparse.DefaultOptions())

	out, err := p.Parse(context.Background(), docparse.RawDocument{Name: "s.xlsx", Data: data})

	require.NoError(t, err)
	assert.Empty(t, out.Tables)
	require.Len(t, out.Sections, 1)
	assert.Equal(t, "Empty", out.Sections[0].Title)
}

func TestParse_XlsxCorruptWorkbook(t *testing.T) {
	p := newParser(docparse.DefaultOptions())

	_, err := p.Parse(context.Background(), docparse.RawDocument{Name: "broken.xlsx", Data: []byte("PK\x03\x04garbage")})

	assert.ErrorIs(t, err, docparse.ErrParse)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestParseReader(t *testing.T) {
	p := newParser(docparse.DefaultOptions())
	ctx := context.Background()

	t.Run("read failure", func(t *testing.T) {
		_, err := p.ParseReader(ctx, "a.docx", "", failingReader{})
		assert.ErrorIs(t, err, docparse.ErrFileRead)
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := p.ParseReader(ctx, "a.docx", "", strings.NewReader(""))
		assert.ErrorIs(t, err, docparse.ErrFileRead)
	})

	t.Run("unsupported wins over read", func(t *testing.T) {
		_, err := p.ParseReader(ctx, "a.txt", "", failingReader{})
		assert.ErrorIs(t, err, docparse.ErrUnsupportedFileType)
	})

	t.Run("size limit", func(t *testing.T) {
		limited := newParser(docparse.Options{MaxBytes: 4})
		_, err := limited.ParseReader(ctx, "a.docx", "", strings.NewReader("PK0123456789"))
		assert.ErrorIs(t, err, docparse.ErrFileRead)
	})

	t.Run("ok", func(t *testing.T) {
		data := docxFixture(t, para("# Intro")+para("hello"))
		out, err := p.ParseReader(ctx, "a.docx", "application/octet-stream", bytes.NewReader(data))
		require.NoError(t, err)
		assert.Len(t, out.Sections, 1)
	})
}

func TestParsedContent_Text(t *testing.T) {
	pc := &docparse.ParsedContent{
		Sections: []docparse.Section{
			{Title: "Intro", Level: 1, Content: "hello", Order: 1},
			{Title: "Empty", Level: 2, Order: 2},
		},
		Tables: []docparse.Table{{Title: "Data Table", Headers: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}}},
	}

	assert.Equal(t, "# Intro\nhello\n## Empty\n\nData Table\na | b\n1 | 2", pc.Text())
}

func TestParseRowPolicy(t *testing.T) {
	p, err := docparse.ParseRowPolicy(" KEEP ")
	require.NoError(t, err)
	assert.Equal(t, docparse.RowPolicyKeep, p)

	p, err = docparse.ParseRowPolicy("pad")
	require.NoError(t, err)
	assert.Equal(t, docparse.RowPolicyPad, p)

	_, err = docparse.ParseRowPolicy("truncate")
	assert.Error(t, err)
}
