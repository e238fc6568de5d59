package port

import (
	"context"

	"knowbase/internal/domain"
)

// GenerateInput carries what a generator needs to write questions.
type GenerateInput struct {
	DocumentTitle string
	// Content is the flattened parsed text of the document.
	Content       string
	SectionTitles []string
	QuestionCount int
	QuestionTypes []domain.QuestionType
	Language      string
}

// GenerateOutput is the normalised result of a generation call.
type GenerateOutput struct {
	Questions []domain.Question
	Source    domain.TestSource
	ModelUsed string
}

// TestGenerator abstracts LLM-backed question generation.
type TestGenerator interface {
	Generate(ctx context.Context, input GenerateInput) (*GenerateOutput, error)
}
