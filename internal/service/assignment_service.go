package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"knowbase/internal/domain"
	"knowbase/internal/port"
)

// AssignInput is the DTO for assigning a test or document to users.
type AssignInput struct {
	Kind        domain.AssignmentKind `json:"kind" binding:"required"`
	TestID      *uuid.UUID            `json:"test_id"`
	DocumentID  *uuid.UUID            `json:"document_id"`
	AssigneeIDs []uuid.UUID           `json:"assignee_ids" binding:"required"`
	DueAt       *time.Time            `json:"due_at"`
}

// AssignmentFilterInput narrows a manager's assignment listing.
type AssignmentFilterInput struct {
	AssigneeID *uuid.UUID
	Status     domain.AssignmentStatus
	Kind       domain.AssignmentKind
}

// SubmitInput carries an assignee's answers.
type SubmitInput struct {
	Answers domain.Answers `json:"answers" binding:"required"`
}

// SubmitResult is returned after grading a test attempt.
type SubmitResult struct {
	Assignment  *domain.Assignment `json:"assignment"`
	Submission  *domain.Submission `json:"submission"`
	PerQuestion map[string]bool    `json:"per_question"`
}

// AssignmentService defines the assignment and scoring contract.
type AssignmentService interface {
	Assign(ctx context.Context, actor Actor, input AssignInput) ([]domain.Assignment, error)
	List(ctx context.Context, actor Actor, filter AssignmentFilterInput, offset, limit int) ([]domain.Assignment, int, error)
	ListMine(ctx context.Context, actor Actor, status domain.AssignmentStatus, offset, limit int) ([]domain.Assignment, int, error)
	Get(ctx context.Context, actor Actor, assignmentID uuid.UUID) (*domain.Assignment, error)
	GetSubmission(ctx context.Context, actor Actor, assignmentID uuid.UUID) (*domain.Submission, error)
	Start(ctx context.Context, actor Actor, assignmentID uuid.UUID) (*domain.Assignment, error)
	CompleteDocument(ctx context.Context, actor Actor, assignmentID uuid.UUID) (*domain.Assignment, error)
	Submit(ctx context.Context, actor Actor, assignmentID uuid.UUID, input SubmitInput) (*SubmitResult, error)
}

type assignmentService struct {
	assignmentRepo port.AssignmentRepository
	submissionRepo port.SubmissionRepository
	testRepo       port.TestRepository
	docRepo        port.DocumentRepository
	userRepo       port.UserRepository
	email          port.EmailSender
	now            func() time.Time
}

// NewAssignmentService creates a new AssignmentService implementation.
func NewAssignmentService(
	assignmentRepo port.AssignmentRepository,
	submissionRepo port.SubmissionRepository,
	testRepo port.TestRepository,
	docRepo port.DocumentRepository,
	userRepo port.UserRepository,
	email port.EmailSender,
) AssignmentService {
	return &assignmentService{
		assignmentRepo: assignmentRepo,
		submissionRepo: submissionRepo,
		testRepo:       testRepo,
		docRepo:        docRepo,
		userRepo:       userRepo,
		email:          email,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// target resolves and checks what is being assigned, returning its title.
func (s *assignmentService) target(ctx context.Context, actor Actor, input AssignInput) (string, error) {
	switch input.Kind {
	case domain.AssignmentKindTest:
		if input.TestID == nil || input.DocumentID != nil {
			return "", fmt.Errorf("%w: test assignments need test_id only", domain.ErrInvalidInput)
		}
		test, err := s.testRepo.GetByID(ctx, actor.TenantID, *input.TestID)
		if err != nil {
			return "", err
		}
		if test.Status != domain.TestStatusReady {
			return "", domain.ErrTestNotReady
		}
		return test.Title, nil
	case domain.AssignmentKindDocument:
		if input.DocumentID == nil || input.TestID != nil {
			return "", fmt.Errorf("%w: document assignments need document_id only", domain.ErrInvalidInput)
		}
		doc, err := s.docRepo.GetByID(ctx, actor.TenantID, *input.DocumentID)
		if err != nil {
			return "", err
		}
		if doc.Status != domain.DocumentStatusParsed {
			return "", domain.ErrDocumentNotParsed
		}
		return doc.Title, nil
	default:
		return "", fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidInput, input.Kind)
	}
}

func (s *assignmentService) Assign(ctx context.Context, actor Actor, input AssignInput) ([]domain.Assignment, error) {
	if !actor.IsManager() {
		return nil, domain.ErrForbidden
	}
	if len(input.AssigneeIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one assignee is required", domain.ErrInvalidInput)
	}
	title, err := s.target(ctx, actor, input)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(input.AssigneeIDs))
	assignees := make([]*domain.User, 0, len(input.AssigneeIDs))
	for _, id := range input.AssigneeIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		user, err := s.userRepo.GetByID(ctx, actor.TenantID, id)
		if err != nil {
			return nil, fmt.Errorf("assignee %s: %w", id, err)
		}
		if !user.IsActive {
			return nil, fmt.Errorf("assignee %s: %w", id, domain.ErrUserInactive)
		}
		assignees = append(assignees, user)
	}

	assignerName := ""
	if assigner, err := s.userRepo.GetByID(ctx, actor.TenantID, actor.UserID); err == nil {
		assignerName = assigner.FullName
	}

	created := make([]domain.Assignment, 0, len(assignees))
	for _, user := range assignees {
		a := &domain.Assignment{
			TenantID:   actor.TenantID,
			AssigneeID: user.ID,
			AssignedBy: actor.UserID,
			Kind:       input.Kind,
			TestID:     input.TestID,
			DocumentID: input.DocumentID,
			DueAt:      input.DueAt,
			Status:     domain.AssignmentStatusAssigned,
		}
		if err := s.assignmentRepo.Create(ctx, a); err != nil {
			return nil, fmt.Errorf("creating assignment: %w", err)
		}
		created = append(created, *a)

		msg := port.AssignmentEmail{
			ToEmail:      user.Email,
			ToName:       user.FullName,
			AssignerName: assignerName,
			ItemKind:     string(input.Kind),
			ItemTitle:    title,
			AssignmentID: a.ID.String(),
			DueAt:        input.DueAt,
		}
		if err := s.email.SendAssignmentEmail(ctx, msg); err != nil {
			log.Printf("assignmentService.Assign: notifying %s failed: %v", user.Email, err)
		}
	}
	return created, nil
}

func (s *assignmentService) List(ctx context.Context, actor Actor, filter AssignmentFilterInput, offset, limit int) ([]domain.Assignment, int, error) {
	if !actor.IsManager() {
		return nil, 0, domain.ErrForbidden
	}
	offset, limit = pageBounds(offset, limit)
	return s.assignmentRepo.List(ctx, actor.TenantID, port.AssignmentFilter{
		AssigneeID: filter.AssigneeID,
		Status:     filter.Status,
		Kind:       filter.Kind,
	}, offset, limit)
}

func (s *assignmentService) ListMine(ctx context.Context, actor Actor, status domain.AssignmentStatus, offset, limit int) ([]domain.Assignment, int, error) {
	offset, limit = pageBounds(offset, limit)
	me := actor.UserID
	return s.assignmentRepo.List(ctx, actor.TenantID, port.AssignmentFilter{
		AssigneeID: &me,
		Status:     status,
	}, offset, limit)
}

func (s *assignmentService) Get(ctx context.Context, actor Actor, assignmentID uuid.UUID) (*domain.Assignment, error) {
	a, err := s.assignmentRepo.GetByID(ctx, actor.TenantID, assignmentID)
	if err != nil {
		return nil, err
	}
	if a.AssigneeID != actor.UserID && !actor.IsManager() {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func (s *assignmentService) GetSubmission(ctx context.Context, actor Actor, assignmentID uuid.UUID) (*domain.Submission, error) {
	if _, err := s.Get(ctx, actor, assignmentID); err != nil {
		return nil, err
	}
	return s.submissionRepo.GetByAssignment(ctx, actor.TenantID, assignmentID)
}

// own loads an assignment that must belong to the actor.
func (s *assignmentService) own(ctx context.Context, actor Actor, assignmentID uuid.UUID) (*domain.Assignment, error) {
	a, err := s.assignmentRepo.GetByID(ctx, actor.TenantID, assignmentID)
	if err != nil {
		return nil, err
	}
	if a.AssigneeID != actor.UserID {
		if actor.IsManager() {
			return nil, domain.ErrForbidden
		}
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func (s *assignmentService) Start(ctx context.Context, actor Actor, assignmentID uuid.UUID) (*domain.Assignment, error) {
	a, err := s.own(ctx, actor, assignmentID)
	if err != nil {
		return nil, err
	}
	if a.Status != domain.AssignmentStatusAssigned {
		return nil, domain.ErrAssignmentState
	}
	now := s.now()
	a.Status = domain.AssignmentStatusInProgress
	a.StartedAt = &now
	if err := s.assignmentRepo.UpdateStatus(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *assignmentService) CompleteDocument(ctx context.Context, actor Actor, assignmentID uuid.UUID) (*domain.Assignment, error) {
	a, err := s.own(ctx, actor, assignmentID)
	if err != nil {
		return nil, err
	}
	if a.Kind != domain.AssignmentKindDocument {
		return nil, domain.ErrAssignmentKind
	}
	if a.Status == domain.AssignmentStatusCompleted {
		return nil, domain.ErrAssignmentState
	}
	now := s.now()
	if a.StartedAt == nil {
		a.StartedAt = &now
	}
	a.Status = domain.AssignmentStatusCompleted
	a.CompletedAt = &now
	if err := s.assignmentRepo.UpdateStatus(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *assignmentService) Submit(ctx context.Context, actor Actor, assignmentID uuid.UUID, input SubmitInput) (*SubmitResult, error) {
	a, err := s.own(ctx, actor, assignmentID)
	if err != nil {
		return nil, err
	}
	if a.Kind != domain.AssignmentKindTest || a.TestID == nil {
		return nil, domain.ErrAssignmentKind
	}
	if a.Status == domain.AssignmentStatusCompleted {
		return nil, domain.ErrAssignmentState
	}

	test, err := s.testRepo.GetByID(ctx, actor.TenantID, *a.TestID)
	if err != nil {
		return nil, err
	}
	if test.Status != domain.TestStatusReady || len(test.Questions) == 0 {
		return nil, domain.ErrTestNotReady
	}

	graded := Grade(test.Questions, input.Answers, test.PassingScore)
	now := s.now()
	sub := &domain.Submission{
		TenantID:     actor.TenantID,
		AssignmentID: a.ID,
		TestID:       test.ID,
		UserID:       actor.UserID,
		Answers:      input.Answers,
		Correct:      graded.Correct,
		Total:        graded.Total,
		Score:        graded.Score,
		Passed:       graded.Passed,
		SubmittedAt:  now,
	}

	if a.StartedAt == nil {
		a.StartedAt = &now
	}
	score := graded.Score
	a.Status = domain.AssignmentStatusCompleted
	a.Score = &score
	a.CompletedAt = &now

	if err := s.submissionRepo.CreateAndComplete(ctx, sub, a); err != nil {
		return nil, err
	}
	log.Printf("assignmentService.Submit: assignment %s scored %d%% (%d/%d, passed=%t)",
		a.ID, graded.Score, graded.Correct, graded.Total, graded.Passed)

	return &SubmitResult{Assignment: a, Submission: sub, PerQuestion: graded.PerQuestion}, nil
}
