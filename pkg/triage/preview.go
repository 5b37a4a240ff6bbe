package triage

import (
	"regexp"
	"strings"
)

// DefaultPreviewChars is the standard preview budget for tracking artifacts.
const DefaultPreviewChars = 300

const (
	ellipsis         = "..."
	maxSentences     = 4
	minPartialBudget = 50
	minPreviewLength = 50
)

var (
	blankRuns = regexp.MustCompile(`\n\s*\n`)
	spaceRuns = regexp.MustCompile(` +`)
)

// ExtractPreview produces a bounded excerpt of a message body: whitespace is
// normalized, up to four sentences are accumulated while the running length
// stays under maxChars, and a partial sentence is included only when at
// least 50 characters of budget remain. Bodies without sentence structure
// fall back to a hard prefix. The result never exceeds maxChars plus the
// ellipsis marker.
func ExtractPreview(body string, maxChars int) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return "No content available"
	}

	body = blankRuns.ReplaceAllString(body, "\n")
	body = spaceRuns.ReplaceAllString(body, " ")

	sentences := strings.Split(body, ".")
	if len(sentences) > maxSentences {
		sentences = sentences[:maxSentences]
	}

	var parts []string
	charCount := 0
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		if charCount+len(sentence) > maxChars {
			remaining := maxChars - charCount
			if remaining > minPartialBudget {
				parts = append(parts, strings.TrimSpace(truncate(sentence, remaining))+ellipsis)
			}
			break
		}

		parts = append(parts, sentence+".")
		charCount += len(sentence) + 1
		if charCount >= maxChars {
			break
		}
	}

	preview := strings.TrimSpace(strings.Join(parts, " "))

	// Bodies with no usable sentence structure fall back to a hard prefix.
	if len(preview) < minPreviewLength {
		preview = strings.TrimSpace(truncate(body, maxChars))
		if len(body) > maxChars {
			preview += ellipsis
		}
	}

	if len(preview) > maxChars+len(ellipsis) {
		preview = strings.TrimSpace(truncate(preview, maxChars)) + ellipsis
	}
	return preview
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	for len(string(runes)) > n {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}
