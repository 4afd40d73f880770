package domain

import (
	"strings"
	"unicode/utf8"
)

// MaxTopicLength caps the number of characters accepted for a topic name.
const MaxTopicLength = 200

// NormalizeTopic trims surrounding whitespace and rejects empty or overlong
// topic names.
func NormalizeTopic(topic string) (string, error) {
	trimmed := strings.TrimSpace(topic)
	if trimmed == "" {
		return "", NewValidationError("topic", "must not be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxTopicLength {
		return "", NewValidationError("topic", "must be at most 200 characters")
	}
	return trimmed, nil
}
