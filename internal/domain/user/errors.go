package user

import (
	"errors"
	"strings"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrInvalidID      = errors.New("invalid user id")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Violation is a single failed field constraint.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned by stores when a write breaks one or more field constraints.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	return "user validation failed: " + strings.Join(e.Messages(), ", ")
}

func (e *ValidationError) Messages() []string {
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.Message)
	}
	return out
}

// Kind is the closed set of failures a store may report.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidID
	KindValidation
	KindDuplicateEmail
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidID:
		return "invalid_id"
	case KindValidation:
		return "validation"
	case KindDuplicateEmail:
		return "duplicate_email"
	default:
		return "internal"
	}
}

// KindOf classifies err. Anything that is not one of the user errors is KindInternal.
func KindOf(err error) Kind {
	var validationErr *ValidationError

	switch {
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.Is(err, ErrDuplicateEmail):
		return KindDuplicateEmail
	case errors.Is(err, ErrInvalidID):
		return KindInvalidID
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}
