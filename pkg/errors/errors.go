package errors

import (
	"fmt"
	"log"
	"sort"
	"strings"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	// Missing or expired credential
	ErrTypeAuth ErrorType = "authentication"
	// Transport failure talking to a remote collaborator
	ErrTypeNetwork ErrorType = "network"
	// Non-success response from a remote collaborator
	ErrTypeAPI ErrorType = "api"
	// Validation errors
	ErrTypeValidation ErrorType = "validation"
	// Local persistence (token file, redis, drafts)
	ErrTypeStorage ErrorType = "storage"
	// Configuration errors
	ErrTypeConfig ErrorType = "configuration"
	// Rendering and rasterization
	ErrTypeExport ErrorType = "export"
	// Generic application errors
	ErrTypeApp ErrorType = "application"
)

// AppError represents a structured application error
type AppError struct {
	Type        ErrorType              `json:"type"`
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	UserMessage string                 `json:"userMessage"`
	Status      int                    `json:"status,omitempty"`
	InternalErr error                  `json:"-"`
	Context     map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.InternalErr != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.InternalErr)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// Unwrap exposes the wrapped error to errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.InternalErr
}

// Is matches another AppError with the same type and code
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// GetUserMessage returns a user-friendly error message
func (e *AppError) GetUserMessage() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	return e.Message
}

// clone copies the error so predefined errors are never mutated
func (e *AppError) clone() *AppError {
	c := *e
	if e.Context != nil {
		c.Context = make(map[string]interface{}, len(e.Context))
		for k, v := range e.Context {
			c.Context[k] = v
		}
	}
	return &c
}

// WithContext returns a copy of the error carrying an extra context value
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	c := e.clone()
	if c.Context == nil {
		c.Context = make(map[string]interface{})
	}
	c.Context[key] = value
	return c
}

// WithUserMessage returns a copy of the error with a user-facing message
func (e *AppError) WithUserMessage(msg string) *AppError {
	c := e.clone()
	c.UserMessage = msg
	return c
}

// WithStatus returns a copy of the error tagged with the remote HTTP status
func (e *AppError) WithStatus(status int) *AppError {
	c := e.clone()
	c.Status = status
	return c
}

// WithCause returns a copy of the error wrapping err
func (e *AppError) WithCause(err error) *AppError {
	c := e.clone()
	c.InternalErr = err
	return c
}

// Log logs the error with its context sorted by key
func (e *AppError) Log() {
	contextStr := ""
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		contextStr = fmt.Sprintf(" [%s]", strings.Join(parts, ", "))
	}

	log.Printf("ERROR %s%s", e.Error(), contextStr)
}

// New creates a new AppError
func New(errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:        errType,
		Code:        code,
		Message:     message,
		InternalErr: err,
	}
}

// Predefined errors for common scenarios
var (
	ErrNotAuthenticated = New(ErrTypeAuth, "NOT_AUTHENTICATED", "no session credential").
				WithUserMessage("Please log in to continue")

	ErrSessionExpired = New(ErrTypeAuth, "SESSION_EXPIRED", "session credential expired or rejected").
				WithUserMessage("Your session has expired. Please log in again")

	ErrInvalidCredentials = New(ErrTypeAuth, "INVALID_CREDENTIALS", "login rejected").
				WithUserMessage("Invalid email or password")

	ErrNetwork = New(ErrTypeNetwork, "NETWORK_FAILURE", "remote service unreachable").
			WithUserMessage("Could not reach the server. Check your connection")

	ErrRemote = New(ErrTypeAPI, "REMOTE_ERROR", "remote service returned an error").
			WithUserMessage("The server could not complete the request")

	ErrTopicNotFound = New(ErrTypeAPI, "TOPIC_NOT_FOUND", "topic not found").
				WithUserMessage("The requested topic could not be found")

	ErrEnhanceFailed = New(ErrTypeAPI, "ENHANCE_FAILED", "enhancement request failed").
				WithUserMessage("An error occurred while improving the notes.")

	ErrEnhancePending = New(ErrTypeValidation, "ENHANCE_PENDING", "an enhancement is already awaiting review").
				WithUserMessage("Accept or reject the current suggestion first")

	ErrNoEnhancement = New(ErrTypeValidation, "NO_ENHANCEMENT", "no enhancement awaiting review").
				WithUserMessage("There is no suggestion to review")

	ErrSaveFailed = New(ErrTypeAPI, "SAVE_FAILED", "saving notes failed").
			WithUserMessage("Your latest changes could not be saved")

	ErrStorage = New(ErrTypeStorage, "STORAGE_FAILED", "local storage failure").
			WithUserMessage("Unable to access local data. Check permissions")

	ErrConfigLoadFailed = New(ErrTypeConfig, "CONFIG_LOAD_FAILED", "failed to load configuration").
				WithUserMessage("Configuration file could not be loaded. Using defaults")

	ErrConfigSaveFailed = New(ErrTypeConfig, "CONFIG_SAVE_FAILED", "failed to save configuration").
				WithUserMessage("Unable to save settings. Check permissions")

	ErrExportFailed = New(ErrTypeExport, "EXPORT_FAILED", "export failed").
			WithUserMessage("The topic could not be exported")
)
