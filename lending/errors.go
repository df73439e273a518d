package lending

import (
	"errors"
	"fmt"
	"strings"
)

// Category sentinels. Structured errors below match them via errors.Is, so
// callers can branch on the category without knowing the concrete type.
var (
	ErrNotFound         = errors.New("no matching entry found")
	ErrDuplicate        = errors.New("duplicate value for a unique field")
	ErrInUse            = errors.New("entity is still referenced")
	ErrValidationFailed = errors.New("validation failed")

	// ErrAdminAlreadyExists signals an attempt to save a second user with
	// the admin role while one already exists.
	ErrAdminAlreadyExists = errors.New("only one admin is allowed")

	// ErrDatabaseOperation is the non-recoverable catch-all for storage
	// failures. Engines join the driver error onto it with errors.Join.
	ErrDatabaseOperation = errors.New("database operation failed")
)

// EntityKind names an entity type in errors.
type EntityKind string

const (
	KindAuthor    EntityKind = "author"
	KindPublisher EntityKind = "publisher"
	KindCategory  EntityKind = "category"
	KindBook      EntityKind = "book"
	KindUser      EntityKind = "user"
	KindLoan      EntityKind = "loan"
	KindFine      EntityKind = "fine"
)

// NotFoundError reports that no row matched the given key.
type NotFoundError struct {
	Kind EntityKind
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found with %s", e.Kind, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// DuplicateField names the unique column a duplicate value collided on.
type DuplicateField string

const (
	DuplicateName  DuplicateField = "name"
	DuplicateEmail DuplicateField = "email"
	DuplicateISBN  DuplicateField = "isbn"
)

// DuplicateError reports a unique-constraint collision on name, email or isbn.
type DuplicateError struct {
	Kind  EntityKind
	Field DuplicateField
	Value string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("a %s with this %s already exists: %s", e.Kind, e.Field, e.Value)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// InUseError reports a delete blocked by rows still referencing the entity.
// Dependents enumerates the blocking rows: book titles for catalog entities,
// loan and fine ids for books and users. The target row is left untouched.
type InUseError struct {
	Kind       EntityKind
	Key        string
	Referrer   EntityKind
	Dependents []string
}

func (e *InUseError) Error() string {
	return fmt.Sprintf(
		"cannot delete %s with %s: referenced by %ss: %s",
		e.Kind, e.Key, e.Referrer, strings.Join(e.Dependents, ", "),
	)
}

func (e *InUseError) Is(target error) bool {
	return target == ErrInUse
}

// FieldError is one violated field inside a ValidationError.
type FieldError struct {
	Field  string
	Reason string
}

// ValidationError aggregates every violated field of one entity, in the
// declaration order of the entity's validation rules.
type ValidationError struct {
	fields []FieldError
}

// NewValidationError creates a ValidationError with a single violation.
// Business-rule rejections (borrowing limits, terminal loan states) use it.
func NewValidationError(field string, reason string) *ValidationError {
	e := &ValidationError{}
	e.add(field, reason)
	return e
}

func (e *ValidationError) add(field string, reason string) {
	e.fields = append(e.fields, FieldError{Field: field, Reason: reason})
}

// Fields returns the violations in rule order.
func (e *ValidationError) Fields() []FieldError {
	return e.fields
}

// Reason returns the recorded reason for a field, or "" if the field passed.
func (e *ValidationError) Reason(field string) string {
	for _, f := range e.fields {
		if f.Field == field {
			return f.Reason
		}
	}
	return ""
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:")
	for _, f := range e.fields {
		sb.WriteString("\n")
		sb.WriteString(f.Field)
		sb.WriteString(": ")
		sb.WriteString(f.Reason)
	}
	return sb.String()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
