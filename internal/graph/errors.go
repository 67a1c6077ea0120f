package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/eleven-am/bistro/internal/repository"
)

// Code is the machine-readable error class reported under extensions.code.
type Code string

const (
	CodeNotFound         Code = "NOT_FOUND"
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeStorageFailure   Code = "STORAGE_FAILURE"
	CodeTimeout          Code = "TIMEOUT"
	CodeCanceled         Code = "CANCELED"
)

// FieldError is what a resolver returns on failure. The executor attaches it to the failing
// field's path and keeps sibling results.
type FieldError struct {
	Code Code
	Op   string
	Err  error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Extensions is picked up by the executor and copied into the response error.
func (e *FieldError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": string(e.Code)}
}

func newFieldError(op string, err error) *FieldError {
	return &FieldError{Code: classify(err), Op: op, Err: err}
}

func classify(err error) Code {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	case errors.Is(err, repository.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, repository.ErrValidation):
		return CodeValidationFailed
	default:
		return CodeStorageFailure
	}
}

func validateID(name string, id int32) error {
	if id <= 0 {
		return repository.Validation("%s must be positive, got %d", name, id)
	}
	return nil
}
