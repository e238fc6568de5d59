package port

import (
	"context"

	"knowbase/internal/docparse"
)

// ContentParser turns uploaded document bytes into sections and tables.
type ContentParser interface {
	Parse(ctx context.Context, doc docparse.RawDocument) (*docparse.ParsedContent, error)
}
