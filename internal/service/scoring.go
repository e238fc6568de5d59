package service

import (
	"math"
	"strings"

	"knowbase/internal/domain"
)

// ScoreResult is the outcome of grading a set of answers.
type ScoreResult struct {
	Correct int
	Total   int
	Score   int
	Passed  bool
	// PerQuestion maps question ID to whether it was answered correctly.
	PerQuestion map[string]bool
}

// Grade scores answers against a test's questions. Unanswered questions count
// as wrong.
func Grade(questions []domain.Question, answers domain.Answers, passing int) ScoreResult {
	res := ScoreResult{Total: len(questions), PerQuestion: make(map[string]bool, len(questions))}
	for _, q := range questions {
		ok := answerCorrect(q, answers[q.ID])
		res.PerQuestion[q.ID] = ok
		if ok {
			res.Correct++
		}
	}
	if res.Total > 0 {
		res.Score = int(math.Round(100 * float64(res.Correct) / float64(res.Total)))
	}
	res.Passed = res.Total > 0 && res.Score >= passing
	return res
}

func answerCorrect(q domain.Question, given string) bool {
	given = strings.TrimSpace(given)
	want := strings.TrimSpace(q.CorrectAnswer)

	switch q.Type {
	case domain.QuestionMultipleChoice:
		return sameSet(splitAnswer(given), splitAnswer(want))
	case domain.QuestionOpen:
		if want == "" {
			return given != ""
		}
		return strings.EqualFold(given, want)
	default:
		return given != "" && strings.EqualFold(given, want)
	}
}

// splitAnswer splits a comma-separated answer into trimmed, non-empty parts.
func splitAnswer(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func sameSet(a, b []string) bool {
	if len(b) == 0 {
		return false
	}
	left := make(map[string]bool, len(a))
	for _, v := range a {
		left[strings.ToLower(v)] = true
	}
	right := make(map[string]bool, len(b))
	for _, v := range b {
		right[strings.ToLower(v)] = true
	}
	if len(left) != len(right) {
		return false
	}
	for k := range right {
		if !left[k] {
			return false
		}
	}
	return true
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), v) {
			return true
		}
	}
	return false
}
