package errors

import (
	"net/mail"
	"strings"
)

// MaxNoteBytes bounds a single note block
const MaxNoteBytes = 1024 * 1024

// ValidationResult holds validation results
type ValidationResult struct {
	IsValid bool
	Errors  []*AppError
}

// AddError adds an error to the validation result
func (vr *ValidationResult) AddError(err *AppError) {
	vr.IsValid = false
	vr.Errors = append(vr.Errors, err)
}

// GetFirstError returns the first error or nil
func (vr *ValidationResult) GetFirstError() *AppError {
	if len(vr.Errors) > 0 {
		return vr.Errors[0]
	}
	return nil
}

// Validator provides validation utilities
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateCredentials validates login input
func (v *Validator) ValidateCredentials(email, password string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		result.AddError(New(ErrTypeValidation, "EMAIL_INVALID", "invalid email address").
			WithUserMessage("Please enter a valid email address"))
	}

	if strings.TrimSpace(password) == "" {
		result.AddError(New(ErrTypeValidation, "PASSWORD_EMPTY", "password cannot be empty").
			WithUserMessage("Password cannot be empty"))
	}

	return result
}

// ValidateRegistration validates sign-up input
func (v *Validator) ValidateRegistration(name, email, password string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if strings.TrimSpace(name) == "" {
		result.AddError(New(ErrTypeValidation, "NAME_EMPTY", "name cannot be empty").
			WithUserMessage("Full name is required"))
	}

	creds := v.ValidateCredentials(email, password)
	for _, err := range creds.Errors {
		result.AddError(err)
	}

	if password != "" && len(password) < 6 {
		result.AddError(New(ErrTypeValidation, "PASSWORD_TOO_SHORT", "password too short").
			WithUserMessage("Password must be at least 6 characters long"))
	}

	return result
}

// ValidateTitle validates a topic title
func (v *Validator) ValidateTitle(title string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if strings.TrimSpace(title) == "" {
		result.AddError(New(ErrTypeValidation, "TITLE_EMPTY", "topic title cannot be empty").
			WithUserMessage("Topic title is required"))
	}

	return result
}

// ValidateTopicID validates a topic identifier
func (v *Validator) ValidateTopicID(id string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if strings.TrimSpace(id) == "" {
		result.AddError(New(ErrTypeValidation, "ID_EMPTY", "topic ID cannot be empty").
			WithUserMessage("Topic ID is required"))
		return result
	}

	if strings.ContainsAny(id, "/?#") {
		result.AddError(New(ErrTypeValidation, "ID_INVALID", "invalid topic ID format").
			WithUserMessage("Invalid topic ID format").
			WithContext("topicId", id))
	}

	return result
}

// ValidateNoteContent validates note content
func (v *Validator) ValidateNoteContent(content string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if strings.TrimSpace(content) == "" {
		result.AddError(New(ErrTypeValidation, "CONTENT_EMPTY", "note content cannot be empty").
			WithUserMessage("Write something before adding a note"))
		return result
	}

	if len(content) > MaxNoteBytes {
		result.AddError(New(ErrTypeValidation, "CONTENT_TOO_LARGE", "note content too large").
			WithUserMessage("Note content is too large. Maximum size is 1MB").
			WithContext("size", len(content)))
	}

	return result
}
