package generator

import (
	"context"
	"fmt"

	"knowbase/internal/config"
	"knowbase/internal/domain"
	"knowbase/internal/port"
)

// MockModel is reported as ModelUsed by the mock provider.
const MockModel = "mock-canned-v1"

var decoySections = []string{"Travel Reimbursement", "Parking Permits", "Holiday Calendar", "Cafeteria Menu"}

func init() {
	RegisterProvider("mock", func(_ *config.LLMProviderConfig, _ Options) (port.TestGenerator, error) {
		return NewMockGenerator(), nil
	})
}

// MockGenerator returns canned questions without calling any provider. It is
// the configured default for local runs and the fallback for regions where
// the real providers are unavailable.
type MockGenerator struct{}

// NewMockGenerator creates a MockGenerator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

func (m *MockGenerator) Generate(_ context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	return &port.GenerateOutput{
		Questions: CannedQuestions(input),
		Source:    domain.TestSourceMock,
		ModelUsed: MockModel,
	}, nil
}

// CannedQuestions builds questions from the document's section titles, or a
// fixed generic set when there are none.
func CannedQuestions(input port.GenerateInput) []domain.Question {
	limit := questionCount(input)
	var qs []domain.Question

	for i, title := range input.SectionTitles {
		if len(qs) >= limit {
			break
		}
		if i%2 == 0 {
			decoy := decoySections[i/2%len(decoySections)]
			qs = append(qs, domain.Question{
				Type:          domain.QuestionSingleChoice,
				Prompt:        fmt.Sprintf("Which of these topics is covered in %q?", input.DocumentTitle),
				Choices:       []string{decoy, title},
				CorrectAnswer: title,
				Explanation:   fmt.Sprintf("The document has a section titled %q.", title),
			})
			continue
		}
		qs = append(qs, domain.Question{
			Type:          domain.QuestionTrueFalse,
			Prompt:        fmt.Sprintf("The document %q includes a section on %q.", input.DocumentTitle, title),
			Choices:       []string{"True", "False"},
			CorrectAnswer: "True",
		})
	}

	if len(qs) == 0 {
		qs = genericQuestions(input.DocumentTitle)
		if len(qs) > limit {
			qs = qs[:limit]
		}
	}
	return Normalize(qs)
}

func genericQuestions(title string) []domain.Question {
	return []domain.Question{
		{
			Type:          domain.QuestionTrueFalse,
			Prompt:        fmt.Sprintf("I have read %q from start to finish.", title),
			Choices:       []string{"True", "False"},
			CorrectAnswer: "True",
		},
		{
			Type:   domain.QuestionOpen,
			Prompt: fmt.Sprintf("Summarise the main point of %q in one sentence.", title),
		},
		{
			Type:   domain.QuestionOpen,
			Prompt: fmt.Sprintf("Name one thing from %q you will apply in your work.", title),
		},
	}
}
