package configuration

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// ValidateForCreate checks a create candidate. The id and timestamps are
// server assigned and not inspected.
func ValidateForCreate(r Record) error {
	return asValidationError(validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.JSONConfig, validation.Required, is.JSON),
	))
}

// ValidateForUpdate checks an update candidate.
func ValidateForUpdate(r Record) error {
	return asValidationError(validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.JSONConfig, validation.Required, is.JSON),
	))
}

// ValidateKey checks a name lookup key.
func ValidateKey(key string) error {
	if err := validation.Validate(key, validation.Required); err != nil {
		return NewValidationError("key", err.Error())
	}
	return nil
}

// Validate checks that pagination bounds are not negative.
func (o ListOptions) Validate() error {
	return asValidationError(validation.ValidateStruct(&o,
		validation.Field(&o.Skip, validation.Min(0)),
		validation.Field(&o.Take, validation.Min(0)),
	))
}

func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		return &ValidationError{Fields: fields}
	}
	// validation.InternalError: a broken rule, not bad input.
	return err
}
