package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stats holds dashboard counters for a tenant, or for a single user when
// scoped to one.
type Stats struct {
	TotalUsers            int     `db:"total_users" json:"total_users"`
	TotalDocuments        int     `db:"total_documents" json:"total_documents"`
	ParsedDocuments       int     `db:"parsed_documents" json:"parsed_documents"`
	FailedDocuments       int     `db:"failed_documents" json:"failed_documents"`
	TotalTests            int     `db:"total_tests" json:"total_tests"`
	ReadyTests            int     `db:"ready_tests" json:"ready_tests"`
	GeneratingTests       int     `db:"generating_tests" json:"generating_tests"`
	AssignmentsTotal      int     `db:"assignments_total" json:"assignments_total"`
	AssignmentsAssigned   int     `db:"assignments_assigned" json:"assignments_assigned"`
	AssignmentsInProgress int     `db:"assignments_in_progress" json:"assignments_in_progress"`
	AssignmentsCompleted  int     `db:"assignments_completed" json:"assignments_completed"`
	AssignmentsOverdue    int     `db:"assignments_overdue" json:"assignments_overdue"`
	AverageScore          float64 `db:"average_score" json:"average_score"`
}

// EmployeeProgressRow is one line of the progress report.
type EmployeeProgressRow struct {
	UserID       uuid.UUID  `db:"user_id" json:"user_id"`
	FullName     string     `db:"full_name" json:"full_name"`
	Email        string     `db:"email" json:"email"`
	Role         UserRole   `db:"role" json:"role"`
	Assigned     int        `db:"assigned" json:"assigned"`
	InProgress   int        `db:"in_progress" json:"in_progress"`
	Completed    int        `db:"completed" json:"completed"`
	Overdue      int        `db:"overdue" json:"overdue"`
	TestsPassed  int        `db:"tests_passed" json:"tests_passed"`
	AverageScore float64    `db:"average_score" json:"average_score"`
	LastActivity *time.Time `db:"last_activity" json:"last_activity"`
}
