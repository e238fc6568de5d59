package docparse

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching against the typed errors below.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrParse               = errors.New("parse error")
	ErrFileRead            = errors.New("file read error")
)

// UnsupportedFileTypeError reports a file whose extension has no extractor.
type UnsupportedFileTypeError struct {
	Extension string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("unsupported file type: %s", e.Extension)
}

func (e *UnsupportedFileTypeError) Is(target error) bool {
	return target == ErrUnsupportedFileType
}

// ParseError reports that format-specific extraction failed.
type ParseError struct {
	Format  Format
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse %s file: %s: %v", e.Format, e.Message, e.Err)
	}
	return fmt.Sprintf("failed to parse %s file: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// FileReadError reports that the file bytes could not be acquired, or that
// extraction failed for a reason that is neither of the other two kinds.
type FileReadError struct {
	Name string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("failed to read file %q: %v", e.Name, e.Err)
}

func (e *FileReadError) Unwrap() error {
	return e.Err
}

func (e *FileReadError) Is(target error) bool {
	return target == ErrFileRead
}

// classify leaves pipeline errors untouched and wraps anything else as a
// FileReadError.
func classify(name string, err error) error {
	if errors.Is(err, ErrUnsupportedFileType) || errors.Is(err, ErrParse) || errors.Is(err, ErrFileRead) {
		return err
	}
	return &FileReadError{Name: name, Err: err}
}
