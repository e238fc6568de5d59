package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"knowbase/internal/domain"
	"knowbase/internal/service"
)

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Type: domain.QuestionSingleChoice, Prompt: "Exit?", Choices: []string{"Stairs", "Lift"}, CorrectAnswer: "Stairs"},
		{ID: "q2", Type: domain.QuestionTrueFalse, Prompt: "Badge required?", Choices: []string{"True", "False"}, CorrectAnswer: "True"},
		{ID: "q3", Type: domain.QuestionMultipleChoice, Prompt: "PPE?", Choices: []string{"Gloves", "Goggles", "Tie"}, CorrectAnswer: "Gloves, Goggles"},
		{ID: "q4", Type: domain.QuestionOpen, Prompt: "Describe the muster point."},
	}
}

func TestGrade_AllCorrect(t *testing.T) {
	res := service.Grade(sampleQuestions(), domain.Answers{
		"q1": " stairs ",
		"q2": "TRUE",
		"q3": "goggles,gloves",
		"q4": "Car park B",
	}, 70)

	assert.Equal(t, 4, res.Correct)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 100, res.Score)
	assert.True(t, res.Passed)
	assert.True(t, res.PerQuestion["q3"])
}

func TestGrade_PartialAndRounding(t *testing.T) {
	res := service.Grade(sampleQuestions()[:3], domain.Answers{
		"q1": "Stairs",
		"q2": "False",
		"q3": "Gloves",
	}, 34)

	assert.Equal(t, 1, res.Correct)
	assert.Equal(t, 33, res.Score)
	assert.False(t, res.Passed)
	assert.False(t, res.PerQuestion["q3"])
}

func TestGrade_OpenQuestions(t *testing.T) {
	qs := []domain.Question{
		{ID: "a", Type: domain.QuestionOpen, Prompt: "Anything?"},
		{ID: "b", Type: domain.QuestionOpen, Prompt: "Code word?", CorrectAnswer: "Blue"},
	}

	res := service.Grade(qs, domain.Answers{"a": "   ", "b": "blue"}, 50)

	assert.False(t, res.PerQuestion["a"])
	assert.True(t, res.PerQuestion["b"])
	assert.Equal(t, 50, res.Score)
	assert.True(t, res.Passed)
}

func TestGrade_MultipleChoiceExtraAnswerIsWrong(t *testing.T) {
	res := service.Grade(sampleQuestions()[2:3], domain.Answers{"q3": "Gloves,Goggles,Tie"}, 0)
	assert.Equal(t, 0, res.Correct)
}

func TestGrade_Unanswered(t *testing.T) {
	res := service.Grade(sampleQuestions(), nil, 0)
	assert.Equal(t, 0, res.Correct)
	assert.Equal(t, 0, res.Score)
	assert.True(t, res.Passed)
}

func TestGrade_NoQuestions(t *testing.T) {
	res := service.Grade(nil, domain.Answers{}, 0)
	assert.Equal(t, 0, res.Total)
	assert.False(t, res.Passed)
}

func TestValidateQuestions(t *testing.T) {
	t.Run("assigns ids and trims", func(t *testing.T) {
		qs, err := service.ValidateQuestions([]domain.Question{
			{Type: domain.QuestionTrueFalse, Prompt: "  Fire doors stay shut? ", CorrectAnswer: "true"},
			{Prompt: "Pick one", Choices: []string{"A", "B"}, CorrectAnswer: " b "},
		})

		assert.NoError(t, err)
		assert.Len(t, qs, 2)
		assert.Equal(t, "q1", qs[0].ID)
		assert.Equal(t, "Fire doors stay shut?", qs[0].Prompt)
		assert.Equal(t, []string{"True", "False"}, qs[0].Choices)
		assert.Equal(t, domain.QuestionSingleChoice, qs[1].Type)
		assert.Equal(t, "b", qs[1].CorrectAnswer)
	})

	tests := []struct {
		name string
		in   []domain.Question
	}{
		{"empty", nil},
		{"no prompt", []domain.Question{{Type: domain.QuestionOpen, Prompt: " "}}},
		{"bad type", []domain.Question{{Type: "essay", Prompt: "x"}}},
		{"one choice", []domain.Question{{Type: domain.QuestionSingleChoice, Prompt: "x", Choices: []string{"A"}, CorrectAnswer: "A"}}},
		{"answer not a choice", []domain.Question{{Type: domain.QuestionSingleChoice, Prompt: "x", Choices: []string{"A", "B"}, CorrectAnswer: "C"}}},
		{"multi answer not a choice", []domain.Question{{Type: domain.QuestionMultipleChoice, Prompt: "x", Choices: []string{"A", "B"}, CorrectAnswer: "A,C"}}},
		{"missing answer", []domain.Question{{Type: domain.QuestionMultipleChoice, Prompt: "x", Choices: []string{"A", "B"}}}},
		{"bad true false", []domain.Question{{Type: domain.QuestionTrueFalse, Prompt: "x", CorrectAnswer: "maybe"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ValidateQuestions(tt.in)
			assert.ErrorIs(t, err, domain.ErrInvalidQuestions)
		})
	}
}
