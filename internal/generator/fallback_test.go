package generator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"knowbase/internal/domain"
	"knowbase/internal/generator"
	"knowbase/internal/port"
	"knowbase/mocks"
)

var sampleInput = port.GenerateInput{
	DocumentTitle: "Safety Handbook",
	SectionTitles: []string{"Fire Exits", "First Aid"},
	QuestionCount: 5,
}

func llmOutput() *port.GenerateOutput {
	return &port.GenerateOutput{
		Questions: []domain.Question{{ID: "q1", Type: domain.QuestionOpen, Prompt: "Where is the exit?"}},
		Source:    domain.TestSourceLLM,
		ModelUsed: "gpt-4o-mini",
	}
}

func TestFallbackGenerator_PrimarySucceeds(t *testing.T) {
	primary := new(mocks.MockTestGenerator)
	secondary := new(mocks.MockTestGenerator)
	primary.On("Generate", mock.Anything, sampleInput).Return(llmOutput(), nil)

	fg := generator.NewFallbackGenerator([]port.TestGenerator{primary, secondary}, []string{"openai", "claude"})
	out, err := fg.Generate(context.Background(), sampleInput)

	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", out.ModelUsed)
	secondary.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestFallbackGenerator_RateLimitOpensCircuit(t *testing.T) {
	primary := new(mocks.MockTestGenerator)
	secondary := new(mocks.MockTestGenerator)
	primary.On("Generate", mock.Anything, sampleInput).
		Return(nil, generator.NewRateLimitError("openai", errors.New("429"), 120)).Once()
	secondary.On("Generate", mock.Anything, sampleInput).Return(llmOutput(), nil)

	fg := generator.NewFallbackGenerator([]port.TestGenerator{primary, secondary}, []string{"openai", "claude"})

	_, err := fg.Generate(context.Background(), sampleInput)
	require.NoError(t, err)

	// circuit for the primary is open; the second call goes straight to the secondary
	_, err = fg.Generate(context.Background(), sampleInput)
	require.NoError(t, err)

	primary.AssertNumberOfCalls(t, "Generate", 1)
	secondary.AssertNumberOfCalls(t, "Generate", 2)
}

func TestFallbackGenerator_AllRateLimited(t *testing.T) {
	primary := new(mocks.MockTestGenerator)
	primary.On("Generate", mock.Anything, sampleInput).
		Return(nil, generator.NewRateLimitError("openai", errors.New("429"), 30))

	fg := generator.NewFallbackGenerator([]port.TestGenerator{primary}, []string{"openai"})
	_, err := fg.Generate(context.Background(), sampleInput)

	var rlErr *generator.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "all", rlErr.Provider)
}

func TestFallbackGenerator_RegionRestrictedUsesCannedQuestions(t *testing.T) {
	primary := new(mocks.MockTestGenerator)
	secondary := new(mocks.MockTestGenerator)
	primary.On("Generate", mock.Anything, sampleInput).
		Return(nil, &generator.RegionRestrictedError{Provider: "openai", Err: errors.New("unsupported_country_region_territory")})

	fg := generator.NewFallbackGenerator([]port.TestGenerator{primary, secondary}, []string{"openai", "claude"})
	out, err := fg.Generate(context.Background(), sampleInput)

	require.NoError(t, err)
	assert.Equal(t, domain.TestSourceMock, out.Source)
	assert.Len(t, out.Questions, 2)
	secondary.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestFallbackGenerator_AllFail(t *testing.T) {
	primary := new(mocks.MockTestGenerator)
	secondary := new(mocks.MockTestGenerator)
	primary.On("Generate", mock.Anything, sampleInput).Return(nil, errors.New("boom"))
	secondary.On("Generate", mock.Anything, sampleInput).Return(nil, errors.New("bad json"))

	fg := generator.NewFallbackGenerator([]port.TestGenerator{primary, secondary}, []string{"openai", "claude"})
	_, err := fg.Generate(context.Background(), sampleInput)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all generators failed")
	assert.Contains(t, err.Error(), "bad json")
}
