package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContextDoesNotMutatePredefined(t *testing.T) {
	err := ErrTopicNotFound.WithContext("topicId", "abc")

	assert.Equal(t, "abc", err.Context["topicId"])
	assert.Nil(t, ErrTopicNotFound.Context)
}

func TestIsMatchesByTypeAndCode(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", ErrSessionExpired.WithStatus(401))

	assert.True(t, stderrors.Is(wrapped, ErrSessionExpired))
	assert.False(t, stderrors.Is(wrapped, ErrNotAuthenticated))
}

func TestToFrontendError(t *testing.T) {
	fe := ToFrontendError(ErrEnhanceFailed.WithUserMessage("quota exceeded"))
	assert.Equal(t, "api", fe.Type)
	assert.Equal(t, "ENHANCE_FAILED", fe.Code)
	assert.Equal(t, "quota exceeded", fe.Message)

	generic := ToFrontendError(stderrors.New("boom"))
	assert.Equal(t, "GENERIC_ERROR", generic.Code)
	assert.Equal(t, "boom", generic.Context["originalError"])
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrNotAuthenticated))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrEnhancePending))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrTopicNotFound.WithStatus(http.StatusNotFound)))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(ErrNetwork))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(stderrors.New("x")))
}

func TestValidateRegistration(t *testing.T) {
	v := NewValidator()

	ok := v.ValidateRegistration("Ada", "ada@example.com", "secret1")
	assert.True(t, ok.IsValid)

	bad := v.ValidateRegistration("", "not-an-email", "abc")
	require.False(t, bad.IsValid)
	codes := make([]string, 0, len(bad.Errors))
	for _, e := range bad.Errors {
		codes = append(codes, e.Code)
	}
	assert.ElementsMatch(t, []string{"NAME_EMPTY", "EMAIL_INVALID", "PASSWORD_TOO_SHORT"}, codes)
}

func TestValidateNoteContent(t *testing.T) {
	v := NewValidator()
	assert.False(t, v.ValidateNoteContent("   ").IsValid)
	assert.True(t, v.ValidateNoteContent("hello").IsValid)
}

func TestValidateTopicID(t *testing.T) {
	v := NewValidator()
	assert.True(t, v.ValidateTopicID("64f0c2").IsValid)
	assert.False(t, v.ValidateTopicID("").IsValid)
	assert.Equal(t, "ID_INVALID", v.ValidateTopicID("a/b").GetFirstError().Code)
}
