package utils

import (
	"errors"
	"strings"
)

// SanitizeSender converts a sender address or platform handle into a
// filesystem-safe filename token. "@" is rewritten rather than stripped so
// email addresses stay recognizable in artifact names.
func SanitizeSender(sender string) string {
	if strings.TrimSpace(sender) == "" {
		return "unknown"
	}
	return sanitizeToken(strings.ReplaceAll(sender, "@", "-at-"))
}

// SanitizeSubject converts a subject line into a filename token, truncated
// to maxLen characters before sanitization.
func SanitizeSubject(subject string, maxLen int) string {
	if strings.TrimSpace(subject) == "" {
		return "no-subject"
	}
	runes := []rune(subject)
	if len(runes) > maxLen {
		subject = string(runes[:maxLen])
	}
	return sanitizeToken(subject)
}

// sanitizeToken rewrites every character that is unsafe in a filename,
// including ".", so a token can never form ".." on its own or against an
// appended extension. ValidateArtifactName must accept any token produced
// here.
func sanitizeToken(s string) string {
	s = strings.TrimSpace(s)
	for _, bad := range []string{" ", ".", "/", "\\", ":", "*", "?", "\"", "<", ">", "|", "\n", "\t"} {
		s = strings.ReplaceAll(s, bad, "-")
	}
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// ValidateArtifactName rejects artifact filenames that are empty or contain
// path separators or ".." to prevent directory traversal.
func ValidateArtifactName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return errors.New("artifact name is required and must be a non-empty string")
	}
	if strings.ContainsAny(trimmed, "/\\") || strings.Contains(trimmed, "..") {
		return errors.New("artifact name must not contain path separators or '..' to prevent directory traversal")
	}
	return nil
}
