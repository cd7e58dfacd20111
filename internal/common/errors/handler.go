package errors

import (
	"time"
)

// ErrorHandler turns command failures into a logged record and an exit status.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleCommandError logs err and returns the exit status the process should use.
func (h *ErrorHandler) HandleCommandError(command string, err error) int {
	if err == nil {
		return 0
	}
	stdErr := h.normalizeError(err)
	h.logError(command, stdErr)
	return ExitCode(stdErr.Code)
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if code := CodeOf(err); code != "" {
		return &StandardError{
			Code:      code,
			Message:   err.Error(),
			Timestamp: time.Now().UTC(),
			Cause:     err,
		}
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

func (h *ErrorHandler) logError(command string, stdErr *StandardError) {
	h.logger.Error("command failed", map[string]interface{}{
		"command":       command,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"errorCategory": GetErrorCategory(stdErr.Code),
		"exitCode":      ExitCode(stdErr.Code),
	})
}
