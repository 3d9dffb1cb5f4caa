package keel

import (
	"errors"
	"fmt"
)

// Kind classifies the errors raised by the mapping core.
type Kind uint8

// Error kinds. None of them are retried internally.
const (
	// KindConfiguration reports a missing or invalid table/key declaration,
	// a composite-key shape mismatch or an unsupported auto-increment type.
	KindConfiguration Kind = iota + 1
	// KindAccess reports a field that can be neither accessed directly nor
	// through a getter/setter method.
	KindAccess
	// KindConstraint reports a non-nullable, no-default column that is null
	// at insert time.
	KindConstraint
	// KindSave reports a save that cannot decide or complete its write,
	// e.g. a null key without an auto-increment column.
	KindSave
	// KindMapping reports a result column without a target field, or a
	// target type that cannot be instantiated or assigned.
	KindMapping
	// KindArgument reports a nil entity, nil key or empty batch passed to
	// an operation.
	KindArgument
)

var kindNames = map[Kind]string{
	KindConfiguration: "configuration",
	KindAccess:        "access",
	KindConstraint:    "constraint",
	KindSave:          "save",
	KindMapping:       "mapping",
	KindArgument:      "argument",
}

// String returns the kind name.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Sentinel errors matched by errors.Is against any *Error of the same kind.
var (
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrAccess        = &Error{Kind: KindAccess}
	ErrConstraint    = &Error{Kind: KindConstraint}
	ErrSave          = &Error{Kind: KindSave}
	ErrMapping       = &Error{Kind: KindMapping}
	ErrArgument      = &Error{Kind: KindArgument}

	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("keel: entity not found")
)

// Error is the single error type raised by the mapping core.
type Error struct {
	Kind    Kind
	Entity  string // Go type or table the error relates to, if any.
	Message string
	Err     error // Optional cause.
}

// Error returns the error string.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String() + " error"
	}
	if e.Entity != "" {
		msg = e.Entity + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("keel: %s: %v", msg, e.Err)
	}
	return "keel: " + msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
// This allows errors.Is(err, keel.ErrMapping) on any mapping error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// Errorf returns a new *Error of the given kind for entity.
func Errorf(kind Kind, entity, format string, args ...any) *Error {
	return &Error{Kind: kind, Entity: entity, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns a new *Error of the given kind carrying cause.
func Wrap(kind Kind, entity string, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Entity: entity, Message: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsConfigurationError returns true if the error is a configuration error.
func IsConfigurationError(err error) bool { return KindOf(err) == KindConfiguration }

// IsAccessError returns true if the error is an access error.
func IsAccessError(err error) bool { return KindOf(err) == KindAccess }

// IsConstraintError returns true if the error is a constraint error raised
// by the core. Database-side constraint violations are driver errors.
func IsConstraintError(err error) bool { return KindOf(err) == KindConstraint }

// IsSaveError returns true if the error is a save error.
func IsSaveError(err error) bool { return KindOf(err) == KindSave }

// IsMappingError returns true if the error is a mapping error.
func IsMappingError(err error) bool { return KindOf(err) == KindMapping }

// IsArgumentError returns true if the error is an argument error.
func IsArgumentError(err error) bool { return KindOf(err) == KindArgument }

// NotFoundError represents an error when an entity is not found.
type NotFoundError struct {
	label string
	id    any // Optional: the ID that was searched for
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("keel: %s not found (id=%v)", e.label, e.id)
	}
	return fmt.Sprintf("keel: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the entity label.
func (e *NotFoundError) Label() string {
	return e.label
}

// ID returns the ID that was searched for, if available.
func (e *NotFoundError) ID() any {
	return e.id
}

// NewNotFoundError returns a new NotFoundError for the given entity type.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// NewNotFoundErrorWithID returns a new NotFoundError with the ID that was searched for.
func NewNotFoundErrorWithID(label string, id any) *NotFoundError {
	return &NotFoundError{label: label, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}
