package mdforge

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown      = errors.New("markdown content cannot be empty")
	ErrInvalidDialect     = errors.New("invalid dialect")
	ErrInvalidSkipPattern = errors.New("invalid skip pattern")
)
