package docparse

import (
	"strings"
	"unicode/utf8"
)

const (
	maxHeadingLevel   = 6
	genericTableTitle = "Data Table"
)

// HeadingHeuristic decides whether a line without a '#' marker is an
// implicit heading and at which level.
type HeadingHeuristic func(line string) (level int, ok bool)

// AllCapsHeading treats lines longer than three characters that are already
// upper case and contain no '|' as level-2 headings. It misfires on short
// acronym rows and upper-case data lines.
func AllCapsHeading(line string) (int, bool) {
	if utf8.RuneCountInString(line) <= 3 || strings.Contains(line, "|") {
		return 0, false
	}
	if strings.ToUpper(line) != line {
		return 0, false
	}
	return 2, true
}

// splitLines returns the trimmed, non-empty lines of text.
func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// heading reports whether line opens a section, either by '#' marker or via
// the heuristic.
func heading(line string, h HeadingHeuristic) (title string, level int, ok bool) {
	if strings.HasPrefix(line, "#") {
		rest := strings.TrimLeft(line, "#")
		n := len(line) - len(rest)
		if n > maxHeadingLevel {
			n = maxHeadingLevel
		}
		return strings.TrimLeft(rest, " \t"), n, true
	}
	if h != nil {
		if lvl, implicit := h(line); implicit {
			return line, lvl, true
		}
	}
	return "", 0, false
}

// segmentState is the accumulator folded over the document's lines.
type segmentState struct {
	closed  []Section
	open    *Section
	body    []string
	nextOrd int
}

func (s segmentState) step(line string, h HeadingHeuristic) segmentState {
	if title, level, ok := heading(line, h); ok {
		s = s.flush()
		s.open = &Section{Title: title, Level: level, Order: s.nextOrd}
		s.nextOrd++
		return s
	}
	if s.open != nil {
		s.body = append(s.body, line)
	}
	return s
}

func (s segmentState) flush() segmentState {
	if s.open == nil {
		return s
	}
	sec := *s.open
	sec.Content = strings.Join(s.body, "\n")
	s.closed = append(s.closed, sec)
	s.open = nil
	s.body = nil
	return s
}

// Segment partitions lines into ordered sections. Lines before the first
// heading are dropped; if no heading is ever found the whole text becomes a
// single level-1 section titled fallbackTitle.
func Segment(lines []string, text, fallbackTitle string, h HeadingHeuristic) []Section {
	state := segmentState{nextOrd: 1}
	for _, line := range lines {
		state = state.step(line, h)
	}
	state = state.flush()

	if len(state.closed) == 0 {
		return []Section{{Title: fallbackTitle, Level: 1, Content: text, Order: 1}}
	}
	return state.closed
}

// tableFields splits a pipe-delimited line into trimmed, non-empty cells.
func tableFields(line string) []string {
	parts := strings.Split(line, "|")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			fields = append(fields, p)
		}
	}
	return fields
}

func isTableLine(line string) bool {
	return strings.Contains(line, "|") && len(strings.Split(line, "|")) > 2
}

// DetectTables finds pipe-delimited lines and, when there are at least two,
// returns them as a single table whose first line is the header row.
func DetectTables(lines []string) []Table {
	var candidates []string
	for _, l := range lines {
		if isTableLine(l) {
			candidates = append(candidates, l)
		}
	}
	if len(candidates) < 2 {
		return nil
	}

	rows := make([][]string, 0, len(candidates)-1)
	for _, l := range candidates[1:] {
		rows = append(rows, tableFields(l))
	}
	return []Table{{
		Title:   genericTableTitle,
		Headers: tableFields(candidates[0]),
		Rows:    rows,
	}}
}
