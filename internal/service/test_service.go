package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"knowbase/internal/domain"
	"knowbase/internal/generator"
	"knowbase/internal/port"
)

const (
	defaultPassingScore = 70
	maxQuestionCount    = 50
)

// TestConfig holds generation defaults for the test service.
type TestConfig struct {
	DefaultQuestionCount int
	MaxRetries           int
}

// GenerateTestInput is the DTO for generating a test from a document.
type GenerateTestInput struct {
	DocumentID    uuid.UUID             `json:"document_id" binding:"required"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	QuestionCount int                   `json:"question_count"`
	QuestionTypes []domain.QuestionType `json:"question_types"`
	Language      string                `json:"language"`
	PassingScore  *int                  `json:"passing_score"`
	// Sync generates inline instead of queueing.
	Sync bool `json:"sync"`
}

// CreateTestInput is the DTO for a hand-written test.
type CreateTestInput struct {
	Title        string            `json:"title" binding:"required"`
	Description  string            `json:"description"`
	DocumentID   *uuid.UUID        `json:"document_id"`
	PassingScore *int              `json:"passing_score"`
	Questions    []domain.Question `json:"questions" binding:"required"`
}

// UpdateQuestionsInput replaces a test's questions and optionally its metadata.
type UpdateQuestionsInput struct {
	Title        *string           `json:"title"`
	Description  *string           `json:"description"`
	PassingScore *int              `json:"passing_score"`
	Questions    []domain.Question `json:"questions" binding:"required"`
}

// TestFilterInput narrows a test listing.
type TestFilterInput struct {
	DocumentID *uuid.UUID
	Status     domain.TestStatus
}

// TestService defines the knowledge test contract.
type TestService interface {
	Generate(ctx context.Context, actor Actor, input GenerateTestInput) (*domain.Test, error)
	Create(ctx context.Context, actor Actor, input CreateTestInput) (*domain.Test, error)
	Get(ctx context.Context, actor Actor, testID uuid.UUID) (*domain.Test, error)
	List(ctx context.Context, actor Actor, filter TestFilterInput, offset, limit int) ([]domain.Test, int, error)
	UpdateQuestions(ctx context.Context, actor Actor, testID uuid.UUID, input UpdateQuestionsInput) (*domain.Test, error)
	Delete(ctx context.Context, actor Actor, testID uuid.UUID) error
	// ProcessGeneration runs the generator for a claimed test and stores the
	// outcome. Rate-limited attempts are requeued while attempts remain.
	ProcessGeneration(ctx context.Context, test *domain.Test)
}

type testService struct {
	testRepo       port.TestRepository
	docRepo        port.DocumentRepository
	assignmentRepo port.AssignmentRepository
	gen            port.TestGenerator
	cfg            TestConfig
	now            func() time.Time
}

// NewTestService creates a new TestService implementation.
func NewTestService(
	testRepo port.TestRepository,
	docRepo port.DocumentRepository,
	assignmentRepo port.AssignmentRepository,
	gen port.TestGenerator,
	cfg TestConfig,
) TestService {
	if cfg.DefaultQuestionCount <= 0 {
		cfg.DefaultQuestionCount = 10
	}
	return &testService{
		testRepo:       testRepo,
		docRepo:        docRepo,
		assignmentRepo: assignmentRepo,
		gen:            gen,
		cfg:            cfg,
		now:            time.Now,
	}
}

func passingScore(p *int) (int, error) {
	if p == nil {
		return defaultPassingScore, nil
	}
	if *p < 0 || *p > 100 {
		return 0, fmt.Errorf("%w: passing_score must be between 0 and 100", domain.ErrInvalidInput)
	}
	return *p, nil
}

func (s *testService) generationParams(input GenerateTestInput) (domain.GenerationParams, error) {
	count := input.QuestionCount
	if count == 0 {
		count = s.cfg.DefaultQuestionCount
	}
	if count < 1 || count > maxQuestionCount {
		return domain.GenerationParams{}, fmt.Errorf("%w: question_count must be between 1 and %d", domain.ErrInvalidInput, maxQuestionCount)
	}
	for _, qt := range input.QuestionTypes {
		if !domain.ValidQuestionTypes[qt] {
			return domain.GenerationParams{}, fmt.Errorf("%w: unknown question type %q", domain.ErrInvalidInput, qt)
		}
	}
	return domain.GenerationParams{
		QuestionCount: count,
		QuestionTypes: input.QuestionTypes,
		Language:      strings.TrimSpace(input.Language),
	}, nil
}

func (s *testService) Generate(ctx context.Context, actor Actor, input GenerateTestInput) (*domain.Test, error) {
	if !actor.IsManager() {
		return nil, domain.ErrForbidden
	}
	params, err := s.generationParams(input)
	if err != nil {
		return nil, err
	}
	score, err := passingScore(input.PassingScore)
	if err != nil {
		return nil, err
	}

	doc, err := s.docRepo.GetByID(ctx, actor.TenantID, input.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc.Status != domain.DocumentStatusParsed {
		return nil, domain.ErrDocumentNotParsed
	}
	if doc.Degraded {
		return nil, domain.ErrDocumentDegraded
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = doc.Title + " quiz"
	}
	docID := doc.ID
	test := &domain.Test{
		ID:           uuid.New(),
		TenantID:     actor.TenantID,
		DocumentID:   &docID,
		Title:        title,
		Description:  input.Description,
		Questions:    domain.Questions{},
		Source:       domain.TestSourceLLM,
		PassingScore: score,
		Status:       domain.TestStatusQueued,
		Params:       params,
		CreatedBy:    actor.UserID,
	}

	if input.Sync {
		out, err := s.generate(ctx, doc, params)
		if err != nil {
			return nil, err
		}
		applyGenerated(test, out)
		test.Attempts = 1
		if err := s.testRepo.Create(ctx, test); err != nil {
			return nil, fmt.Errorf("creating test: %w", err)
		}
		return test, nil
	}

	if err := s.testRepo.Create(ctx, test); err != nil {
		return nil, fmt.Errorf("creating test: %w", err)
	}
	log.Printf("testService.Generate: queued test %s for document %s (%d questions)", test.ID, doc.ID, params.QuestionCount)
	return test, nil
}

// generate runs the generator over the document's parsed text.
func (s *testService) generate(ctx context.Context, doc *domain.Document, params domain.GenerationParams) (*port.GenerateOutput, error) {
	parsed, err := decodeContent(doc)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(parsed.Sections))
	for _, sec := range parsed.Sections {
		titles = append(titles, sec.Title)
	}

	out, err := s.gen.Generate(ctx, port.GenerateInput{
		DocumentTitle: doc.Title,
		Content:       parsed.Text(),
		SectionTitles: titles,
		QuestionCount: params.QuestionCount,
		QuestionTypes: params.QuestionTypes,
		Language:      params.Language,
	})
	if err != nil {
		var rl *generator.RateLimitError
		if errors.As(err, &rl) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	return out, nil
}

func applyGenerated(test *domain.Test, out *port.GenerateOutput) {
	test.Questions = domain.Questions(out.Questions)
	test.Source = out.Source
	test.Model = out.ModelUsed
	test.Status = domain.TestStatusReady
	test.GenerationError = ""
	test.RetryAfter = nil
}

func (s *testService) ProcessGeneration(ctx context.Context, test *domain.Test) {
	fail := func(err error) {
		test.Status = domain.TestStatusFailed
		test.GenerationError = err.Error()
		test.RetryAfter = nil
		if updErr := s.testRepo.Update(ctx, test); updErr != nil {
			log.Printf("testService.ProcessGeneration: storing failure for %s: %v", test.ID, updErr)
		}
	}

	if test.DocumentID == nil {
		fail(errors.New("test has no source document"))
		return
	}
	doc, err := s.docRepo.GetByID(ctx, test.TenantID, *test.DocumentID)
	if err != nil {
		fail(fmt.Errorf("loading document: %w", err))
		return
	}

	out, err := s.generate(ctx, doc, test.Params)
	if err != nil {
		var rl *generator.RateLimitError
		if errors.As(err, &rl) && test.Attempts < s.cfg.MaxRetries {
			retryAt := s.now().Add(rl.RetryAfter)
			log.Printf("testService.ProcessGeneration: test %s rate limited (attempt %d/%d), requeued until %s",
				test.ID, test.Attempts, s.cfg.MaxRetries, retryAt.Format(time.RFC3339))
			test.Status = domain.TestStatusQueued
			test.GenerationError = err.Error()
			test.RetryAfter = &retryAt
			if updErr := s.testRepo.Update(ctx, test); updErr != nil {
				log.Printf("testService.ProcessGeneration: requeue of %s failed: %v", test.ID, updErr)
			}
			return
		}
		log.Printf("testService.ProcessGeneration: test %s failed: %v", test.ID, err)
		fail(err)
		return
	}

	applyGenerated(test, out)
	if err := s.testRepo.Update(ctx, test); err != nil {
		log.Printf("testService.ProcessGeneration: storing questions for %s: %v", test.ID, err)
		return
	}
	log.Printf("testService.ProcessGeneration: test %s ready with %d questions (%s)", test.ID, len(test.Questions), test.Model)
}

func (s *testService) Create(ctx context.Context, actor Actor, input CreateTestInput) (*domain.Test, error) {
	if !actor.IsManager() {
		return nil, domain.ErrForbidden
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	score, err := passingScore(input.PassingScore)
	if err != nil {
		return nil, err
	}
	questions, err := ValidateQuestions(input.Questions)
	if err != nil {
		return nil, err
	}
	if input.DocumentID != nil {
		if _, err := s.docRepo.GetByID(ctx, actor.TenantID, *input.DocumentID); err != nil {
			return nil, err
		}
	}

	test := &domain.Test{
		ID:           uuid.New(),
		TenantID:     actor.TenantID,
		DocumentID:   input.DocumentID,
		Title:        title,
		Description:  input.Description,
		Questions:    questions,
		Source:       domain.TestSourceManual,
		PassingScore: score,
		Status:       domain.TestStatusReady,
		CreatedBy:    actor.UserID,
	}
	if err := s.testRepo.Create(ctx, test); err != nil {
		return nil, fmt.Errorf("creating test: %w", err)
	}
	return test, nil
}

// Get hides answers from employees, who may only open tests assigned to them.
func (s *testService) Get(ctx context.Context, actor Actor, testID uuid.UUID) (*domain.Test, error) {
	test, err := s.testRepo.GetByID(ctx, actor.TenantID, testID)
	if err != nil {
		return nil, err
	}
	if actor.IsManager() {
		return test, nil
	}

	ok, err := s.assignmentRepo.HasTestAssignment(ctx, actor.TenantID, actor.UserID, testID)
	if err != nil {
		return nil, fmt.Errorf("checking test access: %w", err)
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	test.Questions = test.Questions.Redacted()
	return test, nil
}

func (s *testService) List(ctx context.Context, actor Actor, filter TestFilterInput, offset, limit int) ([]domain.Test, int, error) {
	if !actor.IsManager() {
		return nil, 0, domain.ErrForbidden
	}
	offset, limit = pageBounds(offset, limit)
	return s.testRepo.List(ctx, actor.TenantID, port.TestFilter{
		DocumentID: filter.DocumentID,
		Status:     filter.Status,
	}, offset, limit)
}

func (s *testService) UpdateQuestions(ctx context.Context, actor Actor, testID uuid.UUID, input UpdateQuestionsInput) (*domain.Test, error) {
	if !actor.IsManager() {
		return nil, domain.ErrForbidden
	}
	test, err := s.testRepo.GetByID(ctx, actor.TenantID, testID)
	if err != nil {
		return nil, err
	}
	if test.Status == domain.TestStatusQueued || test.Status == domain.TestStatusGenerating {
		return nil, domain.ErrTestNotReady
	}

	questions, err := ValidateQuestions(input.Questions)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
		}
		test.Title = title
	}
	if input.Description != nil {
		test.Description = *input.Description
	}
	if input.PassingScore != nil {
		score, err := passingScore(input.PassingScore)
		if err != nil {
			return nil, err
		}
		test.PassingScore = score
	}

	test.Questions = questions
	test.Status = domain.TestStatusReady
	test.GenerationError = ""
	if err := s.testRepo.Update(ctx, test); err != nil {
		return nil, err
	}
	return test, nil
}

func (s *testService) Delete(ctx context.Context, actor Actor, testID uuid.UUID) error {
	if !actor.IsManager() {
		return domain.ErrForbidden
	}
	return s.testRepo.Delete(ctx, actor.TenantID, testID)
}

// ValidateQuestions checks hand-written questions and assigns missing IDs.
func ValidateQuestions(in []domain.Question) (domain.Questions, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: at least one question is required", domain.ErrInvalidQuestions)
	}
	out := make([]domain.Question, len(in))
	for i, q := range in {
		q.Prompt = strings.TrimSpace(q.Prompt)
		q.CorrectAnswer = strings.TrimSpace(q.CorrectAnswer)
		if q.Prompt == "" {
			return nil, fmt.Errorf("%w: question %d has no prompt", domain.ErrInvalidQuestions, i+1)
		}
		if q.Type == "" {
			q.Type = domain.QuestionSingleChoice
		}
		if !domain.ValidQuestionTypes[q.Type] {
			return nil, fmt.Errorf("%w: question %d has unknown type %q", domain.ErrInvalidQuestions, i+1, q.Type)
		}
		if err := checkAnswer(q); err != nil {
			return nil, fmt.Errorf("%w: question %d %v", domain.ErrInvalidQuestions, i+1, err)
		}
		out[i] = q
	}
	return domain.Questions(generator.Normalize(out)), nil
}

func checkAnswer(q domain.Question) error {
	switch q.Type {
	case domain.QuestionTrueFalse:
		if !strings.EqualFold(q.CorrectAnswer, "true") && !strings.EqualFold(q.CorrectAnswer, "false") {
			return errors.New("needs correct_answer True or False")
		}
	case domain.QuestionSingleChoice, domain.QuestionMultipleChoice:
		if len(q.Choices) < 2 {
			return errors.New("needs at least two choices")
		}
		answers := []string{q.CorrectAnswer}
		if q.Type == domain.QuestionMultipleChoice {
			answers = splitAnswer(q.CorrectAnswer)
		}
		if len(answers) == 0 || answers[0] == "" {
			return errors.New("has no correct_answer")
		}
		for _, a := range answers {
			if !containsFold(q.Choices, a) {
				return fmt.Errorf("answer %q is not one of the choices", a)
			}
		}
	}
	return nil
}
