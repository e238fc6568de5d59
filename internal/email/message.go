// Package email renders notification messages shared by the senders.
package email

import (
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"knowbase/internal/port"
)

// Message is a rendered email.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// AssignmentURL links to the assignment in the web app.
func AssignmentURL(frontendURL, assignmentID string) string {
	return fmt.Sprintf("%s/assignments/%s", strings.TrimRight(frontendURL, "/"), url.PathEscape(assignmentID))
}

// RenderAssignment builds the new-assignment notification.
func RenderAssignment(msg port.AssignmentEmail, frontendURL string) Message {
	link := AssignmentURL(frontendURL, msg.AssignmentID)
	action := "read"
	if msg.ItemKind == "test" {
		action = "take"
	}

	due := ""
	if msg.DueAt != nil {
		due = "Due: " + msg.DueAt.UTC().Format(time.RFC1123)
	}

	subject := fmt.Sprintf("New %s assigned: %s", msg.ItemKind, msg.ItemTitle)

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\n%s asked you to %s the %s %q.\n", msg.ToName, msg.AssignerName, action, msg.ItemKind, msg.ItemTitle)
	if due != "" {
		text.WriteString(due + "\n")
	}
	fmt.Fprintf(&text, "\nOpen it here:\n%s\n", link)

	dueHTML := ""
	if due != "" {
		dueHTML = fmt.Sprintf(`<p style="color: #b45309;">%s</p>`, html.EscapeString(due))
	}
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">New %s assigned</h2>
  <p>Hi %s,</p>
  <p>%s asked you to %s the %s <strong>%s</strong>.</p>
  %s
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #0f766e; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Open</a>
  </p>
</body>
</html>`,
		html.EscapeString(msg.ItemKind), html.EscapeString(msg.ToName), html.EscapeString(msg.AssignerName),
		action, html.EscapeString(msg.ItemKind), html.EscapeString(msg.ItemTitle), dueHTML, html.EscapeString(link))

	return Message{Subject: subject, Text: text.String(), HTML: body}
}
