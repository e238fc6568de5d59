package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"knowbase/internal/domain"
	"knowbase/internal/generator"
	"knowbase/internal/port"
	"knowbase/internal/service"
	"knowbase/mocks"
)

type testFixture struct {
	svc         service.TestService
	testRepo    *mocks.MockTestRepo
	docRepo     *mocks.MockDocumentRepo
	assignments *mocks.MockAssignmentRepo
	gen         *mocks.MockTestGenerator
}

func newTestFixture() *testFixture {
	f := &testFixture{
		testRepo:    new(mocks.MockTestRepo),
		docRepo:     new(mocks.MockDocumentRepo),
		assignments: new(mocks.MockAssignmentRepo),
		gen:         new(mocks.MockTestGenerator),
	}
	f.svc = service.NewTestService(f.testRepo, f.docRepo, f.assignments, f.gen, service.TestConfig{
		DefaultQuestionCount: 5,
		MaxRetries:           3,
	})
	return f
}

func parsedDocument(t *testing.T, tenantID uuid.UUID) *domain.Document {
	t.Helper()
	content, err := json.Marshal(parsedFixture(false))
	require.NoError(t, err)
	return &domain.Document{
		ID:       uuid.New(),
		TenantID: tenantID,
		Title:    "Fire Safety",
		Status:   domain.DocumentStatusParsed,
		Content:  content,
	}
}

func generatedQuestions() *port.GenerateOutput {
	return &port.GenerateOutput{
		Questions: []domain.Question{{
			ID: "q1", Type: domain.QuestionTrueFalse, Prompt: "Exits are marked.",
			Choices: []string{"True", "False"}, CorrectAnswer: "True",
		}},
		Source:    domain.TestSourceLLM,
		ModelUsed: "gpt-4o-mini",
	}
}

func TestTestService_Generate_Queued(t *testing.T) {
	f := newTestFixture()
	actor := actorWith(domain.RoleManager)
	doc := parsedDocument(t, actor.TenantID)

	f.docRepo.On("GetByID", mock.Anything, actor.TenantID, doc.ID).Return(doc, nil)
	f.testRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Test")).Return(nil)

	test, err := f.svc.Generate(context.Background(), actor, service.GenerateTestInput{DocumentID: doc.ID})

	require.NoError(t, err)
	assert.Equal(t, domain.TestStatusQueued, test.Status)
	assert.Equal(t, "Fire Safety quiz", test.Title)
	assert.Equal(t, 5, test.Params.QuestionCount)
	assert.Equal(t, 70, test.PassingScore)
	assert.Equal(t, doc.ID, *test.DocumentID)
	f.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestTestService_Generate_Sync(t *testing.T) {
	f := newTestFixture()
	actor := actorWith(domain.RoleOwner)
	doc := parsedDocument(t, actor.TenantID)

	f.docRepo.On("GetByID", mock.Anything, actor.TenantID, doc.ID).Return(doc, nil)
	f.gen.On("Generate", mock.Anything, mock.MatchedBy(func(in port.GenerateInput) bool {
		return in.DocumentTitle == "Fire Safety" && in.QuestionCount == 8 &&
			len(in.SectionTitles) == 1 && in.SectionTitles[0] == "Fire Safety"
	})).Return(generatedQuestions(), nil)
	f.testRepo.On("Create", mock.Anything, mock.MatchedBy(func(tt *domain.Test) bool {
		return tt.Status == domain.TestStatusReady && len(tt.Questions) == 1
	})).Return(nil)

	test, err := f.svc.Generate(context.Background(), actor, service.GenerateTestInput{
		DocumentID: doc.ID, QuestionCount: 8, Title: "Evacuation", Sync: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "Evacuation", test.Title)
	assert.Equal(t, "gpt-4o-mini", test.Model)
	assert.Equal(t, 1, test.Attempts)
	f.testRepo.AssertExpectations(t)
}

func TestTestService_Generate_SyncRateLimited(t *testing.T) {
	f := newTestFixture()
	actor := actorWith(domain.RoleOwner)
	doc := parsedDocument(t, actor.TenantID)

	f.docRepo.On("GetByID", mock.Anything, actor.TenantID, doc.ID).Return(doc, nil)
	f.gen.On("Generate", mock.Anything, mock.Anything).
		Return(nil, generator.NewRateLimitError("openai", errors.New("429"), 10))

	_, err := f.svc.Generate(context.Background(), actor, service.GenerateTestInput{DocumentID: doc.ID, Sync: true})

	var rl *generator.RateLimitError
	assert.ErrorAs(t, err, &rl)
	f.testRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTestService_Generate_SyncProviderError(t *testing.T) {
	f := newTestFixture()
	actor := actorWith(domain.RoleOwner)
	doc := parsedDocument(t, actor.TenantID)

	f.docRepo.On("GetByID", mock.Anything, actor.TenantID, doc.ID).Return(doc, nil)
	f.gen.On("Generate", mock.Anything, mock.Anything).Return(nil, errors.New("bad json"))

	_, err := f.svc.Generate(context.Background(), actor, service.GenerateTestInput{DocumentID: doc.ID, Sync: true})

	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}

func TestTestService_Generate_Validation(t *testing.T) {
	tooHigh := 101
	tests := []struct {
		name    string
		actor   domain.UserRole
		input   service.GenerateTestInput
		doc     *domain.Document
		wantErr error
	}{
		{"employee", domain.RoleEmployee, service.GenerateTestInput{}, nil, domain.ErrForbidden},
		{"too many questions", domain.RoleManager, service.GenerateTestInput{QuestionCount: 51}, nil, domain.ErrInvalidInput},
		{"unknown type", domain.RoleManager, service.GenerateTestInput{QuestionTypes: []domain.QuestionType{"essay"}}, nil, domain.ErrInvalidInput},
		{"passing score", domain.RoleManager, service.GenerateTestInput{PassingScore: &tooHigh}, nil, domain.ErrInvalidInput},
		{"not parsed", domain.RoleManager, service.GenerateTestInput{}, &domain.Document{Status: domain.DocumentStatusFailed}, domain.ErrDocumentNotParsed},
		{"degraded", domain.RoleManager, service.GenerateTestInput{}, &domain.Document{Status: domain.DocumentStatusParsed, Degraded: true}, domain.ErrDocumentDegraded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFixture()
			if tt.doc != nil {
				f.docRepo.On("GetByID", mock.Anything, mock.Anything, mock.Anything).Return(tt.doc, nil)
			}

			_, err := f.svc.Generate(context.Background(), actorWith(tt.actor), tt.input)

			assert.ErrorIs(t, err, tt.wantErr)
			f.testRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func claimedTest(tenantID, docID uuid.UUID, attempts int) *domain.Test {
	return &domain.Test{
		ID:         uuid.New(),
		TenantID:   tenantID,
		DocumentID: &docID,
		Status:     domain.TestStatusGenerating,
		Attempts:   attempts,
		Params:     domain.GenerationParams{QuestionCount: 3},
	}
}

func TestTestService_ProcessGeneration(t *testing.T) {
	tenantID := uuid.New()

	t.Run("ready", func(t *testing.T) {
		f := newTestFixture()
		doc := parsedDocument(t, tenantID)
		test := claimedTest(tenantID, doc.ID, 1)
		f.docRepo.On("GetByID", mock.Anything, tenantID, doc.ID).Return(doc, nil)
		f.gen.On("Generate", mock.Anything, mock.MatchedBy(func(in port.GenerateInput) bool {
			return in.QuestionCount == 3
		})).Return(generatedQuestions(), nil)
		f.testRepo.On("Update", mock.Anything, test).Return(nil)

		f.svc.ProcessGeneration(context.Background(), test)

		assert.Equal(t, domain.TestStatusReady, test.Status)
		assert.Len(t, test.Questions, 1)
		f.testRepo.AssertExpectations(t)
	})

	t.Run("rate limited requeues", func(t *testing.T) {
		f := newTestFixture()
		doc := parsedDocument(t, tenantID)
		test := claimedTest(tenantID, doc.ID, 1)
		f.docRepo.On("GetByID", mock.Anything, tenantID, doc.ID).Return(doc, nil)
		f.gen.On("Generate", mock.Anything, mock.Anything).
			Return(nil, generator.NewRateLimitError("claude", errors.New("slow down"), 0))
		f.testRepo.On("Update", mock.Anything, test).Return(nil)

		f.svc.ProcessGeneration(context.Background(), test)

		assert.Equal(t, domain.TestStatusQueued, test.Status)
		assert.Contains(t, test.GenerationError, "rate limited")
	})

	t.Run("rate limited requeue waits for retry after", func(t *testing.T) {
		f := newTestFixture()
		doc := parsedDocument(t, tenantID)
		test := claimedTest(tenantID, doc.ID, 1)
		f.docRepo.On("GetByID", mock.Anything, tenantID, doc.ID).Return(doc, nil)
		f.gen.On("Generate", mock.Anything, mock.Anything).
			Return(nil, generator.NewRateLimitError("claude", errors.New("slow down"), 45))
		f.testRepo.On("Update", mock.Anything, mock.MatchedBy(func(tt *domain.Test) bool {
			return tt.Status == domain.TestStatusQueued && tt.RetryAfter != nil
		})).Return(nil)

		before := time.Now()
		f.svc.ProcessGeneration(context.Background(), test)
		after := time.Now()

		require.NotNil(t, test.RetryAfter)
		assert.False(t, test.RetryAfter.Before(before.Add(45*time.Second)))
		assert.False(t, test.RetryAfter.After(after.Add(45*time.Second)))
		f.testRepo.AssertExpectations(t)
	})

	t.Run("ready clears retry after", func(t *testing.T) {
		f := newTestFixture()
		doc := parsedDocument(t, tenantID)
		test := claimedTest(tenantID, doc.ID, 2)
		past := time.Now().Add(-time.Minute)
		test.RetryAfter = &past
		f.docRepo.On("GetByID", mock.Anything, tenantID, doc.ID).Return(doc, nil)
		f.gen.On("Generate", mock.Anything, mock.Anything).Return(generatedQuestions(), nil)
		f.testRepo.On("Update", mock.Anything, test).Return(nil)

		f.svc.ProcessGeneration(context.Background(), test)

		assert.Equal(t, domain.TestStatusReady, test.Status)
		assert.Nil(t, test.RetryAfter)
	})

	t.Run("rate limited after last attempt fails", func(t *testing.T) {
		f := newTestFixture()
		doc := parsedDocument(t, tenantID)
		test := claimedTest(tenantID, doc.ID, 3)
		f.docRepo.On("GetByID", mock.Anything, tenantID, doc.ID).Return(doc, nil)
		f.gen.On("Generate", mock.Anything, mock.Anything).
			Return(nil, generator.NewRateLimitError("claude", errors.New("slow down"), 0))
		f.testRepo.On("Update", mock.Anything, test).Return(nil)

		f.svc.ProcessGeneration(context.Background(), test)

		assert.Equal(t, domain.TestStatusFailed, test.Status)
	})

	t.Run("document gone", func(t *testing.T) {
		f := newTestFixture()
		docID := uuid.New()
		test := claimedTest(tenantID, docID, 1)
		f.docRepo.On("GetByID", mock.Anything, tenantID, docID).Return(nil, domain.ErrNotFound)
		f.testRepo.On("Update", mock.Anything, test).Return(nil)

		f.svc.ProcessGeneration(context.Background(), test)

		assert.Equal(t, domain.TestStatusFailed, test.Status)
		assert.Contains(t, test.GenerationError, "loading document")
		f.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("no document", func(t *testing.T) {
		f := newTestFixture()
		test := &domain.Test{ID: uuid.New(), TenantID: tenantID, Status: domain.TestStatusGenerating}
		f.testRepo.On("Update", mock.Anything, test).Return(nil)

		f.svc.ProcessGeneration(context.Background(), test)

		assert.Equal(t, domain.TestStatusFailed, test.Status)
	})
}

func TestTestService_Create(t *testing.T) {
	f := newTestFixture()
	actor := actorWith(domain.RoleManager)
	f.testRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Test")).Return(nil)

	test, err := f.svc.Create(context.Background(), actor, service.CreateTestInput{
		Title: "Manual check",
		Questions: []domain.Question{
			{Type: domain.QuestionTrueFalse, Prompt: "Water is wet", CorrectAnswer: "true"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.TestStatusReady, test.Status)
	assert.Equal(t, domain.TestSourceManual, test.Source)
	assert.Equal(t, "q1", test.Questions[0].ID)

	_, err = f.svc.Create(context.Background(), actor, service.CreateTestInput{Title: "Empty"})
	assert.ErrorIs(t, err, domain.ErrInvalidQuestions)
}

func TestTestService_Get_EmployeeSeesRedacted(t *testing.T) {
	f := newTestFixture()
	actor := actorWith(domain.RoleEmployee)
	testID := uuid.New()

	f.testRepo.On("GetByID", mock.Anything, actor.TenantID, testID).Return(&domain.Test{
		ID: testID,
		Questions: domain.Questions{{
			ID: "q1", Type: domain.QuestionSingleChoice, Prompt: "Pick", Choices: []string{"A", "B"},
			CorrectAnswer: "A", Explanation: "because",
		}},
	}, nil)
	f.assignments.On("HasTestAssignment", mock.Anything, actor.TenantID, actor.UserID, testID).Return(true, nil)

	test, err := f.svc.Get(context.Background(), actor, testID)

	require.NoError(t, err)
	assert.Empty(t, test.Questions[0].CorrectAnswer)
	assert.Empty(t, test.Questions[0].Explanation)
	assert.Equal(t, []string{"A", "B"}, test.Questions[0].Choices)
}

func TestTestService_Get_EmployeeNotAssigned(t *testing.T) {
	f := newTestFixture()
	actor := actorWith(domain.RoleEmployee)
	testID := uuid.New()

	f.testRepo.On("GetByID", mock.Anything, actor.TenantID, testID).Return(&domain.Test{ID: testID}, nil)
	f.assignments.On("HasTestAssignment", mock.Anything, actor.TenantID, actor.UserID, testID).Return(false, nil)

	_, err := f.svc.Get(context.Background(), actor, testID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTestService_UpdateQuestions(t *testing.T) {
	f := newTestFixture()
	actor := actorWith(domain.RoleManager)
	readyID, busyID := uuid.New(), uuid.New()

	f.testRepo.On("GetByID", mock.Anything, actor.TenantID, busyID).
		Return(&domain.Test{ID: busyID, Status: domain.TestStatusGenerating}, nil)
	f.testRepo.On("GetByID", mock.Anything, actor.TenantID, readyID).
		Return(&domain.Test{ID: readyID, Status: domain.TestStatusFailed, GenerationError: "boom", PassingScore: 70}, nil)
	f.testRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Test")).Return(nil)

	input := service.UpdateQuestionsInput{
		Questions: []domain.Question{{Type: domain.QuestionOpen, Prompt: "Describe the drill"}},
	}

	_, err := f.svc.UpdateQuestions(context.Background(), actor, busyID, input)
	assert.ErrorIs(t, err, domain.ErrTestNotReady)

	score := 50
	input.PassingScore = &score
	test, err := f.svc.UpdateQuestions(context.Background(), actor, readyID, input)
	require.NoError(t, err)
	assert.Equal(t, domain.TestStatusReady, test.Status)
	assert.Empty(t, test.GenerationError)
	assert.Equal(t, 50, test.PassingScore)
}

func TestTestService_ListAndDelete_ManagerOnly(t *testing.T) {
	f := newTestFixture()
	employee := actorWith(domain.RoleEmployee)

	_, _, err := f.svc.List(context.Background(), employee, service.TestFilterInput{}, 0, 10)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, f.svc.Delete(context.Background(), employee, uuid.New()), domain.ErrForbidden)

	manager := actorWith(domain.RoleManager)
	f.testRepo.On("List", mock.Anything, manager.TenantID, port.TestFilter{Status: domain.TestStatusReady}, 0, 20).
		Return([]domain.Test{{}}, 1, nil)

	tests, total, err := f.svc.List(context.Background(), manager, service.TestFilterInput{Status: domain.TestStatusReady}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, tests, 1)
	assert.Equal(t, 1, total)
}
