package skills

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure reported by the registry, a skill or the access layer.
type Kind int

const (
	// KindNotFound means an unknown skill slug or a resource path that does not exist.
	KindNotFound Kind = iota + 1
	// KindInvalidInput means the caller supplied a path that is not allowed.
	KindInvalidInput
	// KindIO means the underlying storage became unreadable after load.
	KindIO
)

// ErrPathTraversal is the cause attached to every rejected traversal attempt.
var ErrPathTraversal = errors.New("path traversal not allowed")

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is the single error type surfaced by this package. Skill and Path name
// what the caller asked for so the failure can be reported back verbatim.
type Error struct {
	Kind  Kind
	Skill string
	Path  string
	// Hint is appended to the message, e.g. where the caller can find valid names.
	Hint string
	Err  error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindNotFound:
		if e.Path != "" {
			msg = fmt.Sprintf("File '%s' not found in skill '%s'", e.Path, e.Skill)
		} else {
			msg = fmt.Sprintf("Skill '%s' not found", e.Skill)
		}
	case KindInvalidInput:
		msg = fmt.Sprintf("Invalid path: %v", e.Err)
	case KindIO:
		if e.Path != "" {
			msg = fmt.Sprintf("failed to read file '%s' in skill '%s': %v", e.Path, e.Skill, e.Err)
		} else {
			msg = fmt.Sprintf("failed to read skill '%s': %v", e.Skill, e.Err)
		}
	default:
		msg = fmt.Sprintf("skill '%s': %v", e.Skill, e.Err)
	}

	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of the first *Error in err's chain, or 0 when there is none.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

// IsNotFound reports whether err is a KindNotFound failure.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsInvalidInput reports whether err is a KindInvalidInput failure.
func IsInvalidInput(err error) bool {
	return KindOf(err) == KindInvalidInput
}

// IsIO reports whether err is a KindIO failure.
func IsIO(err error) bool {
	return KindOf(err) == KindIO
}

func notFound(slug string) *Error {
	return &Error{Kind: KindNotFound, Skill: slug}
}

func fileNotFound(slug, path string) *Error {
	return &Error{Kind: KindNotFound, Skill: slug, Path: path}
}
