package triage

import (
	"strings"
	"time"

	"github.com/tinyland-inc/inboxclaw/pkg/message"
)

const (
	urgencyCap = 40
	recencyCap = 20

	highThreshold   = 70
	mediumThreshold = 40
)

// Scorer computes a bounded priority score, label, response deadline, and
// project link for a message. Score never fails: malformed optional fields
// degrade to safe defaults (zero recency, now-anchored deadline).
type Scorer struct {
	cfg ScoringConfig
}

// NewScorer creates a scorer over an immutable configuration.
func NewScorer(cfg ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score enriches m in place. The caller must capture one `now` per triage
// cycle and pass it to every call: the recency component is intentionally
// not idempotent across different evaluation times, and a shared `now`
// keeps relative ordering consistent within a cycle.
func (s *Scorer) Score(m *message.NormalizedMessage, now time.Time) {
	text := strings.ToLower(m.Subject + " " + m.Body)

	score := s.scoreUrgency(text)
	score += s.scoreSender(m.From)
	score += s.scoreRecency(m, now)

	projectScore, projectLink := s.scoreProject(text)
	score += projectScore

	switch m.Channel {
	case message.ChannelDiscord:
		score += discordBonus(m)
	case message.ChannelTelegram:
		score += telegramBonus(m)
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	m.PriorityScore = score
	m.PriorityLabel = LabelForScore(score)
	m.ProjectLink = projectLink
	m.ResponseDue = s.responseDue(m, now, score)
}

// QuestionTerms returns the configured interrogative substrings for use
// with DetectQuestion.
func (s *Scorer) QuestionTerms() []string {
	return s.cfg.Interrogatives
}

// LabelForScore maps a score onto the HIGH/MEDIUM/LOW partition.
func LabelForScore(score int) message.PriorityLabel {
	switch {
	case score >= highThreshold:
		return message.PriorityHigh
	case score >= mediumThreshold:
		return message.PriorityMedium
	default:
		return message.PriorityLow
	}
}

// scoreUrgency sums the signed weights of every matching keyword. Only the
// upper bound is capped; a net-negative component passes through and is
// absorbed by the final total clamp.
func (s *Scorer) scoreUrgency(text string) int {
	score := 0
	for keyword, weight := range s.cfg.UrgencyWeights {
		if strings.Contains(text, keyword) {
			score += weight
		}
	}
	if score > urgencyCap {
		return urgencyCap
	}
	return score
}

func (s *Scorer) scoreSender(from string) int {
	sender := strings.ToLower(from)

	for _, vip := range s.cfg.VIPSenders {
		if vip != "" && strings.Contains(sender, strings.ToLower(vip)) {
			return 30
		}
	}

	if at := strings.LastIndex(sender, "@"); at >= 0 {
		domain := sender[at+1:]
		for _, free := range s.cfg.FreeProviders {
			if domain == free {
				return 10
			}
		}
		return 20
	}

	// Platform handles without an address get the neutral default.
	return 15
}

// scoreRecency awards one point per hour since receipt, capped. Unresolved
// messages therefore rise in priority across cycles by design.
func (s *Scorer) scoreRecency(m *message.NormalizedMessage, now time.Time) int {
	ts, ok := m.ParsedTimestamp()
	if !ok {
		return 0
	}
	hours := int(now.Sub(ts).Hours())
	if hours < 0 {
		return 0
	}
	if hours > recencyCap {
		return recencyCap
	}
	return hours
}

// scoreProject scans the ordered rule list; the first match (declaration
// order) wins so multi-keyword text resolves deterministically.
func (s *Scorer) scoreProject(text string) (int, string) {
	for _, rule := range s.cfg.ProjectRules {
		if rule.Keyword != "" && strings.Contains(text, rule.Keyword) {
			return 10, "[[" + rule.Project + "]]"
		}
	}
	return 0, ""
}

func discordBonus(m *message.NormalizedMessage) int {
	bonus := 0
	if m.Flag(message.FlagMention) {
		bonus += 15
	}
	if m.Flag(message.FlagDM) {
		bonus += 20
	}
	if m.Flag(message.FlagQuestion) {
		bonus += 10
	}
	if m.Extensions[message.FlagReactionCount] >= 3 {
		bonus += 5
	}
	return bonus
}

func telegramBonus(m *message.NormalizedMessage) int {
	bonus := 0
	if m.Flag(message.FlagDM) {
		bonus += 25
	}
	if m.Flag(message.FlagQuestion) {
		bonus += 10
	}
	if m.Flag(message.FlagMedia) {
		bonus += 5
	}
	if m.Flag(message.FlagForwarded) {
		bonus += 15
	}
	return bonus
}

// responseDue computes the deadline from the channel's base SLA adjusted by
// priority: HIGH halves it, LOW extends it by 50%. The deadline is anchored
// at the message timestamp, or at `now` when the timestamp is unusable.
func (s *Scorer) responseDue(m *message.NormalizedMessage, now time.Time, score int) time.Time {
	base, ok := s.cfg.SLAHours[m.Channel]
	if !ok {
		base = 24
	}

	adjusted := base
	switch {
	case score >= highThreshold:
		adjusted = base / 2
	case score < mediumThreshold:
		adjusted = base * 1.5
	}

	anchor := now
	if ts, ok := m.ParsedTimestamp(); ok {
		anchor = ts
	}
	return anchor.Add(time.Duration(adjusted * float64(time.Hour)))
}

// DetectQuestion reports whether text looks like it needs an answer: it
// contains "?" or any configured interrogative substring. The heuristic is
// deliberately permissive; "however" matching "how" is a known false
// positive that downstream consumers tolerate.
func DetectQuestion(text string, interrogatives []string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "?") {
		return true
	}
	for _, term := range interrogatives {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
