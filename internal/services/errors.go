package services

import (
	"errors"
	"fmt"

	"infinite-experiment/hangar/internal/compliance"
	"infinite-experiment/hangar/internal/constants"
	"infinite-experiment/hangar/internal/db/repositories"
)

// ComplianceError is returned for validation and primary-write failures.
// Code is one of the constants.ErrCode* values.
type ComplianceError struct {
	Code    string
	Message string
	Err     error
}

func (e *ComplianceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ComplianceError) Unwrap() error {
	return e.Err
}

func newError(code string, err error) *ComplianceError {
	return &ComplianceError{
		Code:    code,
		Message: constants.GetErrorMessage(code),
		Err:     err,
	}
}

func validationError(format string, args ...interface{}) *ComplianceError {
	return &ComplianceError{
		Code:    constants.ErrCodeValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// storeError classifies a repository failure.
func storeError(err error) *ComplianceError {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return newError(constants.ErrCodeNotFound, err)
	case errors.Is(err, repositories.ErrAlreadyCompleted):
		return &ComplianceError{
			Code:    constants.ErrCodeValidation,
			Message: "The notification is already completed",
			Err:     err,
		}
	case errors.Is(err, compliance.ErrFrozen):
		return newError(constants.ErrCodeFrozen, err)
	default:
		return newError(constants.ErrCodeStoreFailure, err)
	}
}

// ErrorCode extracts the code of a ComplianceError, or "" for other errors.
func ErrorCode(err error) string {
	var ce *ComplianceError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
