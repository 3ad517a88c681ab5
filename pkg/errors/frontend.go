package errors

import (
	stderrors "errors"
	"net/http"
)

// FrontendError represents an error formatted for frontend consumption
type FrontendError struct {
	Type    string                 `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// ToFrontendError converts an error to a frontend-friendly format
func ToFrontendError(err error) *FrontendError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &FrontendError{
			Type:    string(appErr.Type),
			Code:    appErr.Code,
			Message: appErr.GetUserMessage(),
			Context: appErr.Context,
		}
	}

	return &FrontendError{
		Type:    string(ErrTypeApp),
		Code:    "GENERIC_ERROR",
		Message: "An unexpected error occurred. Please try again",
		Context: map[string]interface{}{"originalError": err.Error()},
	}
}

// HTTPStatus picks the status code the local API answers with for err
func HTTPStatus(err error) int {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return http.StatusInternalServerError
	}

	switch appErr.Type {
	case ErrTypeAuth:
		return http.StatusUnauthorized
	case ErrTypeValidation:
		if appErr.Code == ErrEnhancePending.Code || appErr.Code == ErrNoEnhancement.Code {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	case ErrTypeNetwork:
		return http.StatusBadGateway
	case ErrTypeAPI:
		if appErr.Status == http.StatusNotFound || appErr.Code == ErrTopicNotFound.Code {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case ErrTypeExport:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
