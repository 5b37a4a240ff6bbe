package utils

import (
	"strings"
	"testing"
)

func TestSanitizeSender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		sender string
		want   string
	}{
		{"email address", "ana@plausiblepotentials.com", "ana-at-plausiblepotentials-com"},
		{"platform handle", "@cool_fan_99", "at-cool_fan_99"},
		{"empty", "", "unknown"},
		{"whitespace only", "   ", "unknown"},
		{"path separators", "../../etc/passwd", "etc-passwd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeSender(tt.sender); got != tt.want {
				t.Errorf("SanitizeSender(%q) = %q, want %q", tt.sender, got, tt.want)
			}
		})
	}
}

func TestSanitizeSubject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		subject string
		want    string
	}{
		{"plain", "Quarterly review", "Quarterly-review"},
		{"ellipsis", "URGENT... need the proposal", "URGENT-need-the-proposal"},
		{"trailing dot", "Waiting on you.", "Waiting-on-you"},
		{"version number", "v1.2 release notes", "v1-2-release-notes"},
		{"traversal attempt", "../../secrets", "secrets"},
		{"empty", "", "no-subject"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeSubject(tt.subject, 50); got != tt.want {
				t.Errorf("SanitizeSubject(%q) = %q, want %q", tt.subject, got, tt.want)
			}
		})
	}
}

func TestSanitizeSubjectTruncates(t *testing.T) {
	t.Parallel()

	got := SanitizeSubject(strings.Repeat("a", 80), 50)
	if len(got) != 50 {
		t.Errorf("truncated subject length = %d, want 50", len(got))
	}
}

// Sanitized tokens feed ValidateArtifactName after an extension is appended,
// so no sanitizer output may end in a character that forms ".." against ".md".
func TestSanitizedTokensPassValidation(t *testing.T) {
	t.Parallel()

	subjects := []string{
		"URGENT... need the proposal",
		"Waiting on you.",
		"re: ../../../etc",
		"dots . everywhere .. always ...",
	}
	for _, subject := range subjects {
		name := SanitizeSubject(subject, 50) + ".md"
		if err := ValidateArtifactName(name); err != nil {
			t.Errorf("ValidateArtifactName(%q) = %v, want nil", name, err)
		}
	}
}
