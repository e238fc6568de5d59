package email_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"knowbase/internal/email"
	"knowbase/internal/port"
)

func TestAssignmentURL(t *testing.T) {
	assert.Equal(t, "https://kb.example/assignments/abc", email.AssignmentURL("https://kb.example/", "abc"))
}

func TestRenderAssignment_Test(t *testing.T) {
	due := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	msg := email.RenderAssignment(port.AssignmentEmail{
		ToName:       "Dana",
		AssignerName: "Lee",
		ItemKind:     "test",
		ItemTitle:    "Fire <safety>",
		AssignmentID: "a1",
		DueAt:        &due,
	}, "https://kb.example")

	assert.Equal(t, "New test assigned: Fire <safety>", msg.Subject)
	assert.Contains(t, msg.Text, `Lee asked you to take the test "Fire <safety>".`)
	assert.Contains(t, msg.Text, "Due: Mon, 02 Mar 2026 09:00:00 UTC")
	assert.Contains(t, msg.Text, "https://kb.example/assignments/a1")
	assert.Contains(t, msg.HTML, "Fire &lt;safety&gt;")
	assert.NotContains(t, msg.HTML, "<safety>")
}

func TestRenderAssignment_DocumentWithoutDue(t *testing.T) {
	msg := email.RenderAssignment(port.AssignmentEmail{
		ToName: "Dana", AssignerName: "Lee", ItemKind: "document", ItemTitle: "Handbook", AssignmentID: "a2",
	}, "http://localhost:3000")

	assert.Contains(t, msg.Text, "asked you to read the document")
	assert.NotContains(t, msg.Text, "Due:")
	assert.NotContains(t, msg.HTML, "Due:")
}
