package port

import (
	"context"
	"time"
)

// AssignmentEmail describes a new assignment notification.
type AssignmentEmail struct {
	ToEmail      string
	ToName       string
	AssignerName string
	ItemKind     string // "test" or "document"
	ItemTitle    string
	AssignmentID string
	DueAt        *time.Time
}

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	SendAssignmentEmail(ctx context.Context, msg AssignmentEmail) error
}
