package errors

import "fmt"

// ErrorCode represents a Lapak error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"  // 404
	ErrPageTooLarge   ErrorCode = "PAGE_TOO_LARGE"  // 413
	ErrNoContent      ErrorCode = "NO_CONTENT"      // 422
	ErrImportRejected ErrorCode = "IMPORT_REJECTED" // 422
	ErrCancelled      ErrorCode = "CANCELLED"       // 499
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// LapakError represents a structured error with code, status, and details.
type LapakError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *LapakError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *LapakError {
	return &LapakError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing page, media item or block.
func NewNotFound(kind, identifier string) *LapakError {
	return &LapakError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *LapakError {
	return &LapakError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewPageTooLarge creates a 413 error when a page blob exceeds the size limit.
func NewPageTooLarge(max, actual int) *LapakError {
	return &LapakError{
		Code:    ErrPageTooLarge,
		Status:  413,
		Message: fmt.Sprintf("page exceeds maximum size: %d bytes (max %d)", actual, max),
		Details: map[string]any{"max_bytes": max, "actual_bytes": actual},
	}
}

// NewNoContent creates a 422 error for exporting or previewing an empty page.
func NewNoContent(pageID string) *LapakError {
	e := &LapakError{
		Code:    ErrNoContent,
		Status:  422,
		Message: "page has no content to export",
	}
	if pageID != "" {
		e.Details = map[string]any{"page_id": pageID}
	}
	return e
}

// NewImportRejected creates a 422 error when a backup fails validation.
// Nothing has been applied when this error is returned.
func NewImportRejected(reason string) *LapakError {
	return &LapakError{
		Code:    ErrImportRejected,
		Status:  422,
		Message: fmt.Sprintf("backup rejected: %s", reason),
		Details: map[string]any{"reason": reason},
	}
}

// NewCancelled creates a 499 error when the caller's context ends mid-operation.
func NewCancelled(op string) *LapakError {
	return &LapakError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *LapakError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &LapakError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a LapakError with the given code.
func Is(err error, code ErrorCode) bool {
	if lErr, ok := err.(*LapakError); ok {
		return lErr.Code == code
	}
	return false
}
