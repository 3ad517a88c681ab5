package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewBlockID generates a stable identifier for a note block
func NewBlockID() string {
	return uuid.New().String()
}

// GenerateShortUUID generates a short UUID (8 characters) for notification IDs
func GenerateShortUUID() string {
	fullUUID := uuid.New().String()
	return strings.ReplaceAll(fullUUID[:8], "-", "")
}

// SanitizeFilename creates a safe file name stem from a topic title
func SanitizeFilename(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		case r == '-', r == '_':
			b.WriteRune(r)
		}
	}

	result := b.String()
	if len(result) > 50 {
		result = result[:50]
	}
	if result == "" {
		result = "topic"
	}
	return result
}
