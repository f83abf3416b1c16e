package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Stable application error codes. These are returned to API callers as-is.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeExtractionService = "EXTRACTION_SERVICE_ERROR"
	CodeMalformedOutput   = "MALFORMED_EXTRACTION_OUTPUT"
	CodeNoItemsFound      = "NO_ITEMS_FOUND"
	CodeNotFound          = "NOT_FOUND"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternal          = "INTERNAL"
	CodeConfig            = "CONFIG_ERROR"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// GRPCStatus lets status.FromError and status.Code classify an AppError.
func (e *AppError) GRPCStatus() *status.Status {
	return status.New(grpcCodeFor(e.Code), e.Message)
}

func grpcCodeFor(code string) codes.Code {
	switch code {
	case CodeValidation, CodeConfig:
		return codes.InvalidArgument
	case CodeNoItemsFound:
		return codes.FailedPrecondition
	case CodeNotFound:
		return codes.NotFound
	case CodeUnauthorized:
		return codes.Unauthenticated
	case CodeExtractionService:
		return codes.Unavailable
	case CodeMalformedOutput:
		return codes.DataLoss
	default:
		return codes.Internal
	}
}

// Common application errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInternal          = errors.New("internal error")
	ErrDatabase          = errors.New("database error")
	ErrValidation        = errors.New("validation failed")
	ErrExtractionService = errors.New("extraction service failed")
	ErrMalformedOutput   = errors.New("malformed extraction output")
	ErrNoItemsFound      = errors.New("no items found")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ValidationErrorf reports malformed or missing caller input.
func ValidationErrorf(format string, args ...any) error {
	return NewAppError(CodeValidation, fmt.Sprintf(format, args...), ErrValidation)
}

// NotFoundErrorf reports a missing or not-owned resource.
func NotFoundErrorf(format string, args ...any) error {
	return NewAppError(CodeNotFound, fmt.Sprintf(format, args...), ErrNotFound)
}

// UnauthorizedError reports a missing or rejected bearer token.
func UnauthorizedError(message string) error {
	return NewAppError(CodeUnauthorized, message, ErrUnauthorized)
}

// InternalErrorf hides cause from callers while keeping it for logs.
func InternalErrorf(cause error, format string, args ...any) error {
	if cause == nil {
		cause = ErrInternal
	} else {
		cause = fmt.Errorf("%w: %w", ErrInternal, cause)
	}
	return NewAppError(CodeInternal, fmt.Sprintf(format, args...), cause)
}

// ExtractionServiceError wraps a failed call to the extraction service.
func ExtractionServiceError(cause error) error {
	return NewAppError(CodeExtractionService,
		"the invoice could not be processed right now, please try again",
		fmt.Errorf("%w: %w", ErrExtractionService, cause))
}

// MalformedOutputError reports extraction output that is not a JSON array.
func MalformedOutputError(cause error) error {
	return NewAppError(CodeMalformedOutput,
		"the invoice could not be read, try pasting the invoice text instead",
		fmt.Errorf("%w: %w", ErrMalformedOutput, cause))
}

// NoItemsFoundError reports an extraction that produced zero valid rows.
func NoItemsFoundError() error {
	return NewAppError(CodeNoItemsFound, "no items found in the invoice", ErrNoItemsFound)
}

// CodeOf returns the AppError code of err, or CodeInternal.
func CodeOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	if st, ok := status.FromError(err); ok && st.Code() == codes.NotFound {
		return CodeNotFound
	}
	return CodeInternal
}

// IsNotFound reports whether err carries ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
