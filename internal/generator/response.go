package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"knowbase/internal/domain"
)

// ExtractJSONObject returns the span from the first '{' to the last '}' in
// text, so replies wrapped in prose or code fences still decode.
func ExtractJSONObject(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in reply: %s", truncate(text, 200))
	}
	return text[start : end+1], nil
}

type questionsReply struct {
	Questions []struct {
		ID            string          `json:"id"`
		Type          string          `json:"type"`
		Prompt        string          `json:"prompt"`
		Question      string          `json:"question"`
		Choices       []string        `json:"choices"`
		Options       []string        `json:"options"`
		CorrectAnswer json.RawMessage `json:"correct_answer"`
		Explanation   string          `json:"explanation"`
	} `json:"questions"`
}

// ParseQuestions decodes a provider reply into normalised questions. At most
// limit questions are kept when limit is positive.
func ParseQuestions(text string, limit int) ([]domain.Question, error) {
	span, err := ExtractJSONObject(text)
	if err != nil {
		return nil, err
	}

	var reply questionsReply
	if err := json.Unmarshal([]byte(span), &reply); err != nil {
		return nil, fmt.Errorf("decoding questions JSON: %w (raw: %s)", err, truncate(span, 500))
	}

	out := make([]domain.Question, 0, len(reply.Questions))
	for _, rq := range reply.Questions {
		prompt := strings.TrimSpace(rq.Prompt)
		if prompt == "" {
			prompt = strings.TrimSpace(rq.Question)
		}
		if prompt == "" {
			continue
		}
		choices := rq.Choices
		if len(choices) == 0 {
			choices = rq.Options
		}
		out = append(out, domain.Question{
			ID:            strings.TrimSpace(rq.ID),
			Type:          domain.QuestionType(strings.ToLower(strings.TrimSpace(rq.Type))),
			Prompt:        prompt,
			Choices:       trimAll(choices),
			CorrectAnswer: answerString(rq.CorrectAnswer),
			Explanation:   strings.TrimSpace(rq.Explanation),
		})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if len(out) == 0 {
		return nil, ErrNoQuestions
	}
	return Normalize(out), nil
}

// Normalize assigns missing or duplicate ids (q1..qn by position), defaults
// the type to single_choice, and gives true_false questions their choices.
func Normalize(qs []domain.Question) []domain.Question {
	seen := make(map[string]bool, len(qs))
	for i := range qs {
		q := &qs[i]
		if q.ID == "" || seen[q.ID] {
			q.ID = fmt.Sprintf("q%d", i+1)
		}
		seen[q.ID] = true

		if !domain.ValidQuestionTypes[q.Type] {
			q.Type = domain.QuestionSingleChoice
		}
		if q.Type == domain.QuestionTrueFalse && len(q.Choices) == 0 {
			q.Choices = []string{"True", "False"}
		}
	}
	return qs
}

// answerString accepts a string, bool, number or array of strings.
func answerString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(trimAll(list), ",")
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return "True"
		}
		return "False"
	}
	return strings.TrimSpace(string(raw))
}

func trimAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
