package triage

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	maxActionItems     = 5
	maxAnswerQuestions = 3
	minQuestionLength  = 10
)

var requestPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)please\s+([^.!?\n]+)`),
	regexp.MustCompile(`(?i)can you\s+([^.!?\n]+)`),
	regexp.MustCompile(`(?i)could you\s+([^.!?\n]+)`),
	regexp.MustCompile(`(?i)would you\s+([^.!?\n]+)`),
	regexp.MustCompile(`(?i)need you to\s+([^.!?\n]+)`),
}

var (
	questionClause = regexp.MustCompile(`([^.!?\n]*\?)`)
	bulletLine     = regexp.MustCompile(`^\s*[-•*]\s*(.+)$`)
	numberedLine   = regexp.MustCompile(`^\s*\d+\.\s*(.+)$`)
)

// ExtractActionItems pulls candidate action items from free text: explicit
// request phrases, then up to three question clauses, then bullet and
// numbered list lines. The result is deduplicated preserving first
// occurrence and truncated to five entries. Pure: the same body always
// yields the same list.
func ExtractActionItems(body string) []string {
	var items []string

	for _, pattern := range requestPatterns {
		for _, match := range pattern.FindAllStringSubmatch(body, -1) {
			items = append(items, capitalize(strings.TrimSpace(match[1])))
		}
	}

	answered := 0
	for _, match := range questionClause.FindAllStringSubmatch(body, -1) {
		if answered >= maxAnswerQuestions {
			break
		}
		answered++
		question := strings.TrimSpace(match[1])
		if len(question) > minQuestionLength {
			items = append(items, "Answer: "+question)
		}
	}

	for _, line := range strings.Split(body, "\n") {
		if m := bulletLine.FindStringSubmatch(line); m != nil {
			items = append(items, strings.TrimSpace(m[1]))
		} else if m := numberedLine.FindStringSubmatch(line); m != nil {
			items = append(items, strings.TrimSpace(m[1]))
		}
	}

	seen := make(map[string]bool, len(items))
	deduped := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		deduped = append(deduped, item)
		if len(deduped) == maxActionItems {
			break
		}
	}
	return deduped
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
