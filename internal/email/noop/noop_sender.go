package noop

import (
	"context"
	"log"

	"knowbase/internal/email"
	"knowbase/internal/port"
)

type noopSender struct {
	frontendURL string
}

// NewNoopSender creates an EmailSender that only logs what it would send.
func NewNoopSender(frontendURL string) port.EmailSender {
	return &noopSender{frontendURL: frontendURL}
}

func (s *noopSender) SendAssignmentEmail(_ context.Context, msg port.AssignmentEmail) error {
	rendered := email.RenderAssignment(msg, s.frontendURL)
	log.Printf("[NOOP EMAIL] to %s (%s): %s %s", msg.ToName, msg.ToEmail, rendered.Subject,
		email.AssignmentURL(s.frontendURL, msg.AssignmentID))
	return nil
}
