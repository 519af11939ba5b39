package docsection

import (
	"errors"
	"fmt"

	"github.com/brunobiangulo/docsection/parser"
)

var (
	// ErrUnknownBackend is returned when a selection names no registered backend.
	ErrUnknownBackend = errors.New("docsection: unknown backend")

	// ErrUnsupportedFormat is returned for file types a backend cannot read.
	ErrUnsupportedFormat = parser.ErrUnsupportedFormat

	// ErrFileTooLarge is returned when a file exceeds Config.MaxFileSize.
	ErrFileTooLarge = errors.New("docsection: file too large")

	// ErrExtractionFailed matches every *ExtractionError via errors.Is.
	ErrExtractionFailed = errors.New("docsection: extraction failed")

	// ErrNoDocument is returned when a session is searched before any
	// document has been loaded.
	ErrNoDocument = errors.New("docsection: no document loaded")

	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("docsection: invalid configuration")
)

// ExtractionError reports which backend failed and why. Missing, unreadable,
// corrupted and unsupported files all surface as an ExtractionError.
type ExtractionError struct {
	Backend string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("docsection: %s extraction failed: %v", e.Backend, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrExtractionFailed) true for any ExtractionError.
func (e *ExtractionError) Is(target error) bool { return target == ErrExtractionFailed }
