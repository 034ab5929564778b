package handlers

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-game-config/configuration"
)

// Empty is the payload of operations that return no data.
type Empty struct{}

// Response is the envelope every handler returns. Failures never escape a
// handler as errors or panics; they are reported through Success and
// Message. Err keeps the classified error for the transport layer and is
// not serialized.
type Response[T any] struct {
	Success          bool     `json:"success"`
	Message          string   `json:"message,omitempty"`
	Data             T        `json:"data,omitempty"`
	ValidationErrors []string `json:"validationErrors"`
	Err              error    `json:"-"`
}

func ok[T any](data T) Response[T] {
	return Response[T]{Success: true, Data: data, ValidationErrors: []string{}}
}

// fail builds a failed envelope. Validation, duplicate and not found errors
// carry their own message; anything else gets the generic one.
func fail[T any](err error, generic string) Response[T] {
	resp := Response[T]{Success: false, Err: err, ValidationErrors: []string{}}

	var verr *configuration.ValidationError
	switch {
	case errors.As(err, &verr):
		resp.Message = "Validation failed"
		resp.ValidationErrors = verr.Messages()
	case errors.Is(err, configuration.ErrDuplicateName), errors.Is(err, configuration.ErrNotFound):
		resp.Message = err.Error()
	default:
		resp.Message = generic
	}
	return resp
}

// IsNotFound reports whether the envelope failed because the record is missing.
func (r Response[T]) IsNotFound() bool {
	return !r.Success && errors.Is(r.Err, configuration.ErrNotFound)
}

// IsDuplicate reports whether the envelope failed on name uniqueness.
func (r Response[T]) IsDuplicate() bool {
	return !r.Success && errors.Is(r.Err, configuration.ErrDuplicateName)
}

// IsValidation reports whether the envelope failed on malformed input.
func (r Response[T]) IsValidation() bool {
	return !r.Success && errors.Is(r.Err, configuration.ErrValidation)
}

// recoverInto turns a panic in a handler into a failed envelope.
func recoverInto[T any](resp *Response[T], generic string, logger *zap.Logger) {
	if p := recover(); p != nil {
		err := fmt.Errorf("panic: %v", p)
		logger.Error(generic, zap.Error(err), zap.Stack("stack"))
		*resp = fail[T](err, generic)
	}
}
