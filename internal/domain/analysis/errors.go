package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput: project text is empty or whitespace only.
	ErrEmptyInput = errors.New("please enter a project description")
	// ErrTooShort: trimmed project text is shorter than MinInputLength.
	ErrTooShort = errors.New("please provide a more detailed project description (at least 20 characters)")

	ErrEntryNotFound  = errors.New("history entry not found")
	ErrDuplicateEntry = errors.New("history entry id already exists")

	// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
	ErrQuotaExceeded = errors.New("ai quota exceeded")
)

// ServiceError: the service answered but reported a problem in its "error" field.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return "analysis failed: " + e.Message
}

// TransportErrorKind tells the user whether the server was reached at all.
type TransportErrorKind string

const (
	TransportUnreachable TransportErrorKind = "unreachable"
	TransportStatus      TransportErrorKind = "status"
	TransportMalformed   TransportErrorKind = "malformed"
)

// TransportError covers network and protocol failures of a submission.
type TransportError struct {
	Kind       TransportErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch e.Kind {
	case TransportUnreachable:
		return e.Message
	case TransportStatus:
		return fmt.Sprintf("server error: %s", e.Message)
	default:
		return fmt.Sprintf("analysis failed: %s", e.Message)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsValidation reports whether err came from client-side input validation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyInput) || errors.Is(err, ErrTooShort)
}
