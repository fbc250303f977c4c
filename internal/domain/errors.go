package domain

import (
	"errors"
	"fmt"
)

var (
	ErrLinkNotFound   = errors.New("link not found")
	ErrBatchNotFound  = errors.New("batch not found")
	ErrFolderNotFound = errors.New("folder not found")
	ErrFileNotFound   = errors.New("file not found")
	ErrQuotaNotFound  = errors.New("quota not found")
	ErrObjectNotFound = errors.New("object not found")
	ErrNodeNotFound   = errors.New("node not found")
	ErrBatchCompleted = errors.New("batch already completed")
)

// ErrorCode is the machine-readable code carried by every failure response.
type ErrorCode string

const (
	ErrCodeMissingField       ErrorCode = "MISSING_FIELD"
	ErrCodeInvalidField       ErrorCode = "INVALID_FIELD"
	ErrCodeLinkNotFound       ErrorCode = "LINK_NOT_FOUND"
	ErrCodeBatchNotFound      ErrorCode = "BATCH_NOT_FOUND"
	ErrCodeLinkInactive       ErrorCode = "LINK_INACTIVE"
	ErrCodeLinkExpired        ErrorCode = "LINK_EXPIRED"
	ErrCodeLinkFull           ErrorCode = "LINK_FULL"
	ErrCodeFileTooLarge       ErrorCode = "FILE_TOO_LARGE"
	ErrCodeFileTypeNotAllowed ErrorCode = "FILE_TYPE_NOT_ALLOWED"
	ErrCodeInvalidPassword    ErrorCode = "INVALID_PASSWORD"
	ErrCodeQuotaExceeded      ErrorCode = "QUOTA_EXCEEDED"
	ErrCodeStorageFailed      ErrorCode = "STORAGE_FAILED"
	ErrCodePersistenceFailed  ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeInvalidMove        ErrorCode = "INVALID_MOVE"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// UploadError is a failure with a machine-readable code and optional
// structured details so clients can render an actionable message.
type UploadError struct {
	Code    ErrorCode
	Message string
	Details map[string]any
	cause   error
}

func (e *UploadError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *UploadError) Unwrap() error {
	return e.cause
}

func NewUploadError(code ErrorCode, message string) *UploadError {
	return &UploadError{Code: code, Message: message}
}

func (e *UploadError) WithDetails(details map[string]any) *UploadError {
	e.Details = details
	return e
}

func (e *UploadError) WithCause(err error) *UploadError {
	e.cause = err
	return e
}

// HTTPStatus maps the error code to the response status of the ingestion
// endpoint contract: 400 for client input, 404 for missing batch/link,
// 500 for storage and persistence failures.
func (e *UploadError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeLinkNotFound, ErrCodeBatchNotFound:
		return 404
	case ErrCodeStorageFailed, ErrCodePersistenceFailed, ErrCodeInternal:
		return 500
	default:
		return 400
	}
}
