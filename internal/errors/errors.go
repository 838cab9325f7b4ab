package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message
func Newf(code, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context. The code of a wrapped AppError is preserved.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode attaches a code to an error, keeping its message
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the outermost AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether any AppError in the chain carries code
func HasCode(err error, code string) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Code == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// Predefined error codes
const (
	CodeMissingInput       = "MISSING_INPUT"
	CodeParseError         = "PARSE_ERROR"
	CodeSchemaError        = "SCHEMA_ERROR"
	CodeEmptyJoin          = "EMPTY_JOIN"
	CodeInsufficientSample = "INSUFFICIENT_SAMPLE"
	CodeDegenerateSample   = "DEGENERATE_SAMPLE"
	CodeDuplicateKey       = "DUPLICATE_KEY"
	CodeOutputWrite        = "OUTPUT_WRITE"
	CodeConfigInvalid      = "CONFIG_INVALID"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInternalError      = "INTERNAL_ERROR"
)

// Common error constructors
func MissingInput(path string) *AppError {
	return Newf(CodeMissingInput, "input file not found: %s", path)
}

func ParseError(message string, cause error) *AppError {
	return &AppError{Code: CodeParseError, Message: message, Cause: cause}
}

func SchemaError(table, column string) *AppError {
	return Newf(CodeSchemaError, "%s table is missing required column %q", table, column)
}

func EmptyJoin(message string) *AppError {
	return New(CodeEmptyJoin, message)
}

func InsufficientSample(n, min int) *AppError {
	return Newf(CodeInsufficientSample, "need at least %d matched subjects for correlation, got %d", min, n)
}

func DegenerateSample(message string) *AppError {
	return New(CodeDegenerateSample, message)
}

func DuplicateKey(table, key string) *AppError {
	return Newf(CodeDuplicateKey, "duplicate subject identifier %q in %s table", key, table)
}

func OutputWrite(path string, cause error) *AppError {
	return &AppError{
		Code:    CodeOutputWrite,
		Message: fmt.Sprintf("failed to write %s", path),
		Cause:   cause,
	}
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}
