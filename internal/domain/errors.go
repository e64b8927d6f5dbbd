// Package domain contains domain errors used throughout the application.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	ErrBuildInProgress  = errors.New("index build already in progress")
	ErrIndexClosed      = errors.New("index is closed")
	ErrNoItem           = errors.New("no item selected")
	ErrIsDirectory      = errors.New("cannot open path, because it's a dir")
	ErrNoActiveEditor   = errors.New("cannot insert path, because there is no active text editor")
	ErrChatUnavailable  = errors.New("claude-chat service not available")
	ErrNoChatPanel      = errors.New("no active claude-chat panel")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrInvalidPayload   = errors.New("invalid payload")
	ErrSubscriberClosed = errors.New("subscriber is closed")
)

// Error codes for client responses.
const (
	ErrCodeBuildInProgress = "BUILD_IN_PROGRESS"
	ErrCodeUnknownCommand  = "UNKNOWN_COMMAND"
	ErrCodeInvalidPayload  = "INVALID_PAYLOAD"
	ErrCodeActionFailed    = "ACTION_FAILED"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// BuildError reports a rebuild that computed an index but failed to finish it.
type BuildError struct {
	Stage string // Stage that failed, e.g. "save"
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("index build failed at %s: %v", e.Stage, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// ActionError reports a failed action on a single index item.
type ActionError struct {
	Action string
	Path   string
	Err    error
}

func (e *ActionError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Action, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Action, e.Path, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// NewActionError creates a new ActionError.
func NewActionError(action, path string, err error) *ActionError {
	return &ActionError{Action: action, Path: path, Err: err}
}

// ErrorCode maps an error to the client-facing error code.
func ErrorCode(err error) string {
	var actionErr *ActionError
	switch {
	case errors.Is(err, ErrBuildInProgress):
		return ErrCodeBuildInProgress
	case errors.Is(err, ErrUnknownCommand):
		return ErrCodeUnknownCommand
	case errors.Is(err, ErrInvalidPayload), errors.Is(err, ErrNoItem):
		return ErrCodeInvalidPayload
	case errors.As(err, &actionErr):
		return ErrCodeActionFailed
	default:
		return ErrCodeInternalError
	}
}
