package generator

import (
	"fmt"
	"strings"

	"knowbase/internal/domain"
	"knowbase/internal/port"
)

const systemPrompt = `You write short knowledge checks for employees based on internal training documents.
Use only facts stated in the document. Never invent policies, numbers or names.

Return ONLY a JSON object with no markdown formatting and no explanation, in this shape:
{"questions":[{"id":"q1","type":"single_choice","prompt":"...","choices":["...","..."],"correct_answer":"...","explanation":"..."}]}

Rules:
- "type" is one of: single_choice, multiple_choice, true_false, open.
- single_choice and multiple_choice questions have 3 to 5 choices.
- For multiple_choice, "correct_answer" lists every correct choice separated by commas.
- For true_false, "choices" is ["True","False"] and "correct_answer" is "True" or "False".
- For open questions, "correct_answer" is a short reference answer.
- "correct_answer" must match one of the choices exactly when choices are given.`

// DefaultQuestionTypes is used when the caller does not restrict types.
var DefaultQuestionTypes = []domain.QuestionType{
	domain.QuestionSingleChoice,
	domain.QuestionMultipleChoice,
	domain.QuestionTrueFalse,
}

// SystemPrompt returns the instructions shared by every provider.
func SystemPrompt() string {
	return systemPrompt
}

// BuildUserPrompt embeds the document into the generation request. content
// must already fit the token budget.
func BuildUserPrompt(input port.GenerateInput, content string) string {
	types := input.QuestionTypes
	if len(types) == 0 {
		types = DefaultQuestionTypes
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write %d questions about the document %q.\n", questionCount(input), input.DocumentTitle)
	fmt.Fprintf(&b, "Allowed question types: %s.\n", strings.Join(names, ", "))
	if input.Language != "" {
		fmt.Fprintf(&b, "Write the questions in %s.\n", input.Language)
	}
	if len(input.SectionTitles) > 0 {
		fmt.Fprintf(&b, "Spread the questions across these sections: %s.\n", strings.Join(input.SectionTitles, "; "))
	}
	b.WriteString("\nDOCUMENT:\n")
	b.WriteString(content)
	return b.String()
}

func questionCount(input port.GenerateInput) int {
	if input.QuestionCount > 0 {
		return input.QuestionCount
	}
	return 10
}
