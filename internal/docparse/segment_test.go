package docparse_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowbase/internal/docparse"
)

func lines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func TestSegment_MarkdownHeadings(t *testing.T) {
	text := "# Title\ncontent line\n## Sub\nmore"

	sections := docparse.Segment(lines(text), text, "doc", docparse.AllCapsHeading)

	require.Len(t, sections, 2)
	assert.Equal(t, docparse.Section{Title: "Title", Level: 1, Content: "content line", Order: 1}, sections[0])
	assert.Equal(t, docparse.Section{Title: "Sub", Level: 2, Content: "more", Order: 2}, sections[1])
}

func TestSegment_OrderStrictlyIncreasing(t *testing.T) {
	text := "intro dropped\n# A\none\n### B\nSAFETY RULES\ntwo\n#### C"

	sections := docparse.Segment(lines(text), text, "doc", docparse.AllCapsHeading)

	require.Len(t, sections, 4)
	for i, s := range sections {
		assert.Equal(t, i+1, s.Order)
	}
	assert.Equal(t, "SAFETY RULES", sections[2].Title)
	assert.Equal(t, 2, sections[2].Level)
	assert.Equal(t, "two", sections[2].Content)
	assert.Equal(t, "", sections[1].Content)
}

func TestSegment_LevelCappedAtSix(t *testing.T) {
	text := "######## Deep heading\nbody"

	sections := docparse.Segment(lines(text), text, "doc", nil)

	require.Len(t, sections, 1)
	assert.Equal(t, 6, sections[0].Level)
	assert.Equal(t, "Deep heading", sections[0].Title)
}

func TestSegment_FallbackSingleSection(t *testing.T) {
	text := "just some prose\nwith two lines"

	sections := docparse.Segment(lines(text), text, "handbook", docparse.AllCapsHeading)

	require.Len(t, sections, 1)
	assert.Equal(t, "handbook", sections[0].Title)
	assert.Equal(t, 1, sections[0].Level)
	assert.Equal(t, 1, sections[0].Order)
	assert.Equal(t, text, sections[0].Content)
}

func TestSegment_NilHeuristicIgnoresUpperCase(t *testing.T) {
	text := "WAREHOUSE SAFETY\nwear gloves"

	sections := docparse.Segment(lines(text), text, "safety", nil)

	require.Len(t, sections, 1)
	assert.Equal(t, "safety", sections[0].Title)
}

func TestSegment_CustomHeuristic(t *testing.T) {
	numbered := func(line string) (int, bool) {
		if strings.HasPrefix(line, "Chapter ") {
			return 1, true
		}
		return 0, false
	}
	text := "Chapter 1\nalpha\nChapter 2\nbeta"

	sections := docparse.Segment(lines(text), text, "book", numbered)

	require.Len(t, sections, 2)
	assert.Equal(t, "Chapter 2", sections[1].Title)
	assert.Equal(t, "beta", sections[1].Content)
}

func TestAllCapsHeading(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"INTRODUCTION", true},
		{"ВВЕДЕНИЕ", true},
		{"FAQ", false},
		{"Introduction", false},
		{"NAME | ROLE", false},
		{"2024", true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			level, ok := docparse.AllCapsHeading(tt.line)
			assert.Equal(t, tt.want, ok)
			if ok {
				assert.Equal(t, 2, level)
			}
		})
	}
}

func TestDetectTables_SingleLineYieldsNothing(t *testing.T) {
	assert.Empty(t, docparse.DetectTables(lines("a | b | c\nplain text")))
}

func TestDetectTables_RowsAreCandidatesMinusOne(t *testing.T) {
	text := "Name | Role | Team\nprose line\nAnn | Dev | Core\nBob | QA |  | Ops\nx|y"

	tables := docparse.DetectTables(lines(text))

	require.Len(t, tables, 1)
	assert.Equal(t, "Data Table", tables[0].Title)
	assert.Equal(t, []string{"Name", "Role", "Team"}, tables[0].Headers)
	require.Len(t, tables[0].Rows, 2)
	assert.Equal(t, []string{"Bob", "QA", "Ops"}, tables[0].Rows[1])
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 3, docparse.WordCount("a  b\tc"))
	assert.Equal(t, 0, docparse.WordCount("  \n\t "))
}
