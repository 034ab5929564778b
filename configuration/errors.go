package configuration

import (
	"errors"
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Error kinds. Match with errors.Is.
var (
	ErrValidation    = errors.New("validation failed")
	ErrDuplicateName = errors.New("duplicate configuration name")
	ErrNotFound      = errors.New("configuration not found")
	ErrStore         = errors.New("configuration store failure")
)

// ValidationError reports malformed input rejected before reaching the store.
type ValidationError struct {
	Fields validation.Errors
}

// NewValidationError builds a single field validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: validation.Errors{field: errors.New(message)}}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Fields.Error()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Messages flattens the field errors as "field: message", sorted by field.
func (e *ValidationError) Messages() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if e.Fields[k] == nil {
			continue
		}
		out = append(out, k+": "+e.Fields[k].Error())
	}
	return out
}

// DuplicateNameError is returned when a write would break name uniqueness.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("Configuration with name '%s' already exists", e.Name)
}

func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}

// NotFoundError is returned when an update or delete targets a missing id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Configuration with ID %s not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StoreError wraps any other persistence fault.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return "configuration store: " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// AsValidationError unpacks err into a *ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
