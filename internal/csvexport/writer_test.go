package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_HeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, []string{"Name", "Score", "Note"})
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteRow([]string{"Dana", "90", "has, comma"}))
	require.NoError(t, w.WriteRow([]string{"Lee"}))
	w.Flush()
	require.NoError(t, w.Error())

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Name", "Score", "Note"}, records[0])
	assert.Equal(t, "has, comma", records[1][2])
	assert.Equal(t, []string{"Lee", "", ""}, records[2])
}

func TestWriter_BOM(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, []string{"A"})
	require.NoError(t, w.WriteBOM())
	require.NoError(t, w.WriteHeader())
	w.Flush()

	assert.True(t, bytes.HasPrefix(buf.Bytes(), BOM))
	assert.Equal(t, "A\n", string(buf.Bytes()[len(BOM):]))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Team Progress", "Team_Progress"},
		{"a//b??c", "a_b_c"},
		{"__x__", "x"},
		{"!!!", "export"},
		{"Обучение", "export"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), tt.in)
	}

	long := SanitizeFilename(string(bytes.Repeat([]byte("a"), 150)))
	assert.Len(t, long, 100)
}

func TestBuildFilename(t *testing.T) {
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "acme_progress_2026-05-04.xlsx", BuildFilename("acme progress", "xlsx", now))
}
