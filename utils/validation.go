package utils

import (
	"regexp"
	"strings"
	"unicode"

	apperrors "techsupport-agent/errors"

	"github.com/google/uuid"
)

var repeatedSpace = regexp.MustCompile(`\s+`)

// SanitizeQuestion strips control characters, collapses whitespace and
// enforces maxRunes (0 disables the limit). Empty results are rejected.
func SanitizeQuestion(question string, maxRunes int) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, question)
	cleaned = strings.TrimSpace(repeatedSpace.ReplaceAllString(cleaned, " "))

	if cleaned == "" {
		return "", apperrors.WrapError(apperrors.ErrInvalidInput, "question is empty")
	}
	if maxRunes > 0 && len([]rune(cleaned)) > maxRunes {
		return "", apperrors.WrapErrorf(apperrors.ErrInvalidInput, "question exceeds %d characters", maxRunes)
	}
	return cleaned, nil
}

// GenerateRequestID creates a unique request identifier using UUID v4.
func GenerateRequestID() string {
	return uuid.New().String()
}
