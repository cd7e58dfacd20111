// Package errors provides standardized error handling for request generation and reconciliation.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"

	ErrCodeSchemaLoadFailed ErrorCode = "SCHEMA_LOAD_FAILED"
	ErrCodeSchemaInvalid    ErrorCode = "SCHEMA_INVALID"
	ErrCodeShapeNotFound    ErrorCode = "SHAPE_NOT_FOUND"

	ErrCodeDuplicateCaseID ErrorCode = "DUPLICATE_CASE_ID"
	ErrCodeRestoreFailed   ErrorCode = "RESTORE_FAILED"

	ErrCodeResponseMalformed ErrorCode = "RESPONSE_MALFORMED"

	ErrCodeStoreFailed       ErrorCode = "STORE_FAILED"
	ErrCodeWorkspaceIOFailed ErrorCode = "WORKSPACE_IO_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// Is matches any StandardError carrying the same code, so sentinel values
// such as ErrShapeNotFound work with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrConfigInvalid     = &StandardError{Code: ErrCodeConfigInvalid}
	ErrSchemaLoadFailed  = &StandardError{Code: ErrCodeSchemaLoadFailed}
	ErrSchemaInvalid     = &StandardError{Code: ErrCodeSchemaInvalid}
	ErrShapeNotFound     = &StandardError{Code: ErrCodeShapeNotFound}
	ErrDuplicateCaseID   = &StandardError{Code: ErrCodeDuplicateCaseID}
	ErrRestoreFailed     = &StandardError{Code: ErrCodeRestoreFailed}
	ErrResponseMalformed = &StandardError{Code: ErrCodeResponseMalformed}
	ErrStoreFailed       = &StandardError{Code: ErrCodeStoreFailed}
	ErrWorkspaceIOFailed = &StandardError{Code: ErrCodeWorkspaceIOFailed}
)

// ==========================
// 2. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
}

// NewConfigInvalidError reports a configuration value that cannot be used.
func NewConfigInvalidError(details string) *StandardError {
	return newError(ErrCodeConfigInvalid, "Invalid configuration", details, nil)
}

// NewSchemaLoadFailedError wraps a failure to read or decode the schema document.
func NewSchemaLoadFailedError(path string, err error) *StandardError {
	return newError(ErrCodeSchemaLoadFailed, "Schema document could not be loaded", fmt.Sprintf("path: %s, error: %v", path, err), err)
}

// NewSchemaInvalidError reports a structurally invalid schema document.
func NewSchemaInvalidError(problems []string) *StandardError {
	e := newError(ErrCodeSchemaInvalid, "Schema document failed validation", strings.Join(problems, "; "), nil)
	e.Metadata = map[string]interface{}{"problems": len(problems)}
	return e
}

// NewShapeNotFoundError reports a shape reference that does not resolve.
func NewShapeNotFoundError(name string) *StandardError {
	return newError(ErrCodeShapeNotFound, "Shape not found in catalog", fmt.Sprintf("shape: %s", name), nil)
}

// NewDuplicateCaseIDError reports two generated cases sharing one identifier.
func NewDuplicateCaseIDError(id string) *StandardError {
	return newError(ErrCodeDuplicateCaseID, "Generated test case identifier collides", fmt.Sprintf("id: %s", id), nil)
}

// NewRestoreFailedError reports a slot that could not be written back after a mutation.
func NewRestoreFailedError(ref string, err error) *StandardError {
	return newError(ErrCodeRestoreFailed, "Mutated value could not be restored", fmt.Sprintf("ref: %s, error: %v", ref, err), err)
}

// NewResponseMalformedError reports a cached response that is not parseable.
func NewResponseMalformedError(caseID string, err error) *StandardError {
	return newError(ErrCodeResponseMalformed, "Cached response is not valid JSON", fmt.Sprintf("id: %s, error: %v", caseID, err), err)
}

// NewStoreFailedError wraps a history store failure.
func NewStoreFailedError(backend, op string, err error) *StandardError {
	e := newError(ErrCodeStoreFailed, "History store operation failed", fmt.Sprintf("backend: %s, op: %s, error: %v", backend, op, err), err)
	e.Metadata = map[string]interface{}{"backend": backend, "op": op}
	return e
}

// NewWorkspaceIOFailedError wraps a read or write failure on an intermediate file.
func NewWorkspaceIOFailedError(path string, err error) *StandardError {
	return newError(ErrCodeWorkspaceIOFailed, "Workspace file operation failed", fmt.Sprintf("path: %s, error: %v", path, err), err)
}

// ==========================
// 3. Classification Helpers
// ==========================

// CodeOf returns the code of the first StandardError in the chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// ExitCode maps an error to a process exit status.
func ExitCode(code ErrorCode) int {
	switch code {
	case "":
		return 0
	case ErrCodeConfigInvalid:
		return 2
	case ErrCodeSchemaLoadFailed, ErrCodeSchemaInvalid, ErrCodeShapeNotFound:
		return 3
	case ErrCodeDuplicateCaseID, ErrCodeRestoreFailed:
		return 4
	case ErrCodeResponseMalformed:
		return 5
	default:
		return 1
	}
}

// GetErrorCategory groups codes for log output.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "CONFIG"):
		return "CONFIG"
	case strings.HasPrefix(codeStr, "SCHEMA") || strings.HasPrefix(codeStr, "SHAPE"):
		return "SCHEMA"
	case strings.Contains(codeStr, "CASE") || strings.Contains(codeStr, "RESTORE"):
		return "GENERATION"
	case strings.HasPrefix(codeStr, "RESPONSE"):
		return "CLASSIFICATION"
	case strings.HasPrefix(codeStr, "STORE") || strings.HasPrefix(codeStr, "WORKSPACE"):
		return "IO"
	default:
		return "OTHER"
	}
}
