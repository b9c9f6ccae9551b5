package validation

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	MaxNicknameLength = 20
	MaxContentLength  = 1000
	MaxReasonLength   = 1000
)

// ValidateNickname validates a signup/login nickname.
func ValidateNickname(nickname string) error {
	trimmed := strings.TrimSpace(nickname)

	if trimmed == "" {
		return errors.New("nickname is required")
	}

	if utf8.RuneCountInString(trimmed) > MaxNicknameLength {
		return errors.New("nickname is too long (max 20 characters)")
	}

	return nil
}

// ValidateContent validates goal content.
func ValidateContent(content string) error {
	trimmed := strings.TrimSpace(content)

	if trimmed == "" {
		return errors.New("content is required")
	}

	if utf8.RuneCountInString(trimmed) > MaxContentLength {
		return errors.New("content is too long (max 1000 characters)")
	}

	return nil
}

// ValidateReason validates a free-text reason. Empty is allowed here;
// callers decide whether a reason is required.
func ValidateReason(reason string) error {
	if utf8.RuneCountInString(strings.TrimSpace(reason)) > MaxReasonLength {
		return errors.New("reason is too long (max 1000 characters)")
	}
	return nil
}
