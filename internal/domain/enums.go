package domain

// FileType represents the document formats accepted for upload.
type FileType string

const (
	FileTypeDOCX FileType = "docx"
	FileTypeXLSX FileType = "xlsx"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypeDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	FileTypeXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// UserRole defines the role hierarchy within a tenant.
type UserRole string

const (
	RoleOwner    UserRole = "owner"
	RoleManager  UserRole = "manager"
	RoleEmployee UserRole = "employee"
)

var roleRank = map[UserRole]int{
	RoleEmployee: 1,
	RoleManager:  2,
	RoleOwner:    3,
}

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r is min or a role above it. Unknown roles never pass.
func (r UserRole) AtLeast(min UserRole) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	return have >= roleRank[min]
}

// DocumentStatus represents the lifecycle of an uploaded document.
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusUploaded DocumentStatus = "uploaded"
	DocumentStatusParsed   DocumentStatus = "parsed"
	DocumentStatusFailed   DocumentStatus = "failed"
	DocumentStatusDeleted  DocumentStatus = "deleted"
)

// TestStatus represents the lifecycle of a knowledge test.
type TestStatus string

const (
	TestStatusDraft      TestStatus = "draft"
	TestStatusQueued     TestStatus = "queued"
	TestStatusGenerating TestStatus = "generating"
	TestStatusReady      TestStatus = "ready"
	TestStatusFailed     TestStatus = "failed"
)

// TestSource records where a test's questions came from.
type TestSource string

const (
	TestSourceLLM    TestSource = "llm"
	TestSourceMock   TestSource = "mock"
	TestSourceManual TestSource = "manual"
)

// QuestionType is the answer format of a question.
type QuestionType string

const (
	QuestionSingleChoice   QuestionType = "single_choice"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionOpen           QuestionType = "open"
)

// ValidQuestionTypes lists the accepted question types.
var ValidQuestionTypes = map[QuestionType]bool{
	QuestionSingleChoice:   true,
	QuestionMultipleChoice: true,
	QuestionTrueFalse:      true,
	QuestionOpen:           true,
}

// AssignmentKind says what an assignment points at.
type AssignmentKind string

const (
	AssignmentKindTest     AssignmentKind = "test"
	AssignmentKindDocument AssignmentKind = "document"
)

// AssignmentStatus represents an assignee's progress.
type AssignmentStatus string

const (
	AssignmentStatusAssigned   AssignmentStatus = "assigned"
	AssignmentStatusInProgress AssignmentStatus = "in_progress"
	AssignmentStatusCompleted  AssignmentStatus = "completed"
)
