package triage

import (
	"testing"
	"time"

	"github.com/tinyland-inc/inboxclaw/pkg/message"
)

func testScorer() *Scorer {
	return NewScorer(DefaultScoringConfig())
}

func TestScore_UrgentBusinessEmail(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	msg := &message.NormalizedMessage{
		ID:        "m1",
		Channel:   message.ChannelEmail,
		From:      "client@business.com",
		Subject:   "URGENT: proposal needed ASAP",
		Body:      "We need the proposal by end of day. Please send details.",
		Timestamp: now.Add(-3 * time.Hour).Format(time.RFC3339),
	}

	testScorer().Score(msg, now)

	// urgency 80 capped to 40, business sender 20, recency 3, no project.
	if msg.PriorityScore != 63 {
		t.Errorf("score = %d, want 63", msg.PriorityScore)
	}
	if msg.PriorityLabel != message.PriorityMedium {
		t.Errorf("label = %s, want MEDIUM", msg.PriorityLabel)
	}
	if msg.ProjectLink != "" {
		t.Errorf("project link = %q, want empty", msg.ProjectLink)
	}
}

func TestScore_DiscordMentionQuestion(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	msg := &message.NormalizedMessage{
		ID:        "m2",
		Channel:   message.ChannelDiscord,
		From:      "CommunityMember#1234",
		Timestamp: now.Format(time.RFC3339),
	}
	msg.SetFlag(message.FlagMention, true)
	msg.SetFlag(message.FlagDM, false)
	msg.SetFlag(message.FlagQuestion, true)
	msg.SetCount(message.FlagReactionCount, 2)

	testScorer().Score(msg, now)

	// handle sender 15, mention 15, question 10; reactions below threshold.
	if msg.PriorityScore != 40 {
		t.Errorf("score = %d, want 40", msg.PriorityScore)
	}
	if msg.PriorityLabel != message.PriorityMedium {
		t.Errorf("label = %s, want MEDIUM", msg.PriorityLabel)
	}
}

func TestScore_TelegramForwardedDM(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	msg := &message.NormalizedMessage{
		ID:        "m3",
		Channel:   message.ChannelTelegram,
		From:      "somehandle",
		Timestamp: now.Format(time.RFC3339),
	}
	msg.SetFlag(message.FlagDM, true)
	msg.SetFlag(message.FlagForwarded, true)

	testScorer().Score(msg, now)

	// handle sender 15, dm 25, forwarded 15.
	if msg.PriorityScore != 55 {
		t.Errorf("score = %d, want 55", msg.PriorityScore)
	}
}

func TestScore_ClampedToHundred(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	msg := &message.NormalizedMessage{
		ID:        "m4",
		Channel:   message.ChannelDiscord,
		From:      "boss@plausiblepotentials.com",
		Subject:   "URGENT emergency",
		Body:      "critical asap, cocoa launch is blocked",
		Timestamp: now.Add(-48 * time.Hour).Format(time.RFC3339),
	}
	msg.SetFlag(message.FlagMention, true)
	msg.SetFlag(message.FlagDM, true)
	msg.SetFlag(message.FlagQuestion, true)
	msg.SetCount(message.FlagReactionCount, 7)

	testScorer().Score(msg, now)

	if msg.PriorityScore != 100 {
		t.Errorf("score = %d, want 100", msg.PriorityScore)
	}
	if msg.PriorityLabel != message.PriorityHigh {
		t.Errorf("label = %s, want HIGH", msg.PriorityLabel)
	}
	if msg.ProjectLink != "[[CoCoA]]" {
		t.Errorf("project link = %q, want [[CoCoA]]", msg.ProjectLink)
	}
}

func TestScore_NegativeUrgencyClampsAtZero(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	msg := &message.NormalizedMessage{
		ID:        "m5",
		Channel:   message.ChannelChatbot,
		From:      "visitor",
		Body:      "fyi, no rush on this at all",
		Timestamp: now.Format(time.RFC3339),
	}

	testScorer().Score(msg, now)

	// urgency -25 plus handle sender 15 nets below zero.
	if msg.PriorityScore != 0 {
		t.Errorf("score = %d, want 0", msg.PriorityScore)
	}
	if msg.PriorityLabel != message.PriorityLow {
		t.Errorf("label = %s, want LOW", msg.PriorityLabel)
	}
}

func TestScore_SenderComponent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from string
		want int
	}{
		{"vip domain", "anyone@plausiblepotentials.com", 30},
		{"free provider", "person@gmail.com", 10},
		{"business domain", "client@acme.io", 20},
		{"platform handle", "SomeUser#9999", 15},
		{"empty sender", "", 15},
	}

	s := testScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.scoreSender(tt.from); got != tt.want {
				t.Errorf("scoreSender(%q) = %d, want %d", tt.from, got, tt.want)
			}
		})
	}
}

func TestScore_UnparsableTimestamp(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	msg := &message.NormalizedMessage{
		ID:        "m6",
		Channel:   message.ChannelEmail,
		From:      "person@gmail.com",
		Body:      "hello there",
		Timestamp: "not-a-timestamp",
	}

	testScorer().Score(msg, now)

	// Recency degrades to zero and the deadline anchors at now.
	if msg.PriorityScore != 10 {
		t.Errorf("score = %d, want 10 (sender only)", msg.PriorityScore)
	}
	want := now.Add(36 * time.Hour) // LOW: email 24h base * 1.5
	if !msg.ResponseDue.Equal(want) {
		t.Errorf("response due = %v, want %v", msg.ResponseDue, want)
	}
}

func TestScore_FutureTimestampDoesNotSubtract(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	msg := &message.NormalizedMessage{
		ID:        "m8",
		Channel:   message.ChannelEmail,
		From:      "person@gmail.com",
		Body:      "hello there",
		Timestamp: now.Add(3 * time.Hour).Format(time.RFC3339),
	}

	testScorer().Score(msg, now)

	// Clock skew or a scheduled send clamps recency to zero; it never
	// pushes the total below the sender component.
	if msg.PriorityScore != 10 {
		t.Errorf("score = %d, want 10 (sender only)", msg.PriorityScore)
	}
}

func TestScore_ResponseDueAfterTimestamp(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := testScorer()

	for _, ch := range message.Channels {
		msg := &message.NormalizedMessage{
			ID:        "m7",
			Channel:   ch,
			From:      "client@business.com",
			Subject:   "URGENT: proposal needed ASAP immediately",
			Timestamp: now.Add(-2 * time.Hour).Format(time.RFC3339),
		}
		s.Score(msg, now)

		ts, ok := msg.ParsedTimestamp()
		if !ok {
			t.Fatalf("timestamp should parse for channel %s", ch)
		}
		if !msg.ResponseDue.After(ts) {
			t.Errorf("channel %s: response due %v not after timestamp %v", ch, msg.ResponseDue, ts)
		}
	}
}

func TestScore_SLAAdjustment(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := testScorer()

	tests := []struct {
		name      string
		msg       *message.NormalizedMessage
		wantHours time.Duration
	}{
		{
			name: "high halves the discord SLA",
			msg: func() *message.NormalizedMessage {
				m := &message.NormalizedMessage{
					Channel: message.ChannelDiscord,
					From:    "boss@plausiblepotentials.com",
					Subject: "urgent deadline",
				}
				m.SetFlag(message.FlagDM, true)
				return m
			}(),
			wantHours: 4 * time.Hour,
		},
		{
			name: "low extends the email SLA by half",
			msg: &message.NormalizedMessage{
				Channel: message.ChannelEmail,
				From:    "person@gmail.com",
				Body:    "fyi",
			},
			wantHours: 36 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.msg.Timestamp = now.Format(time.RFC3339)
			s.Score(tt.msg, now)

			ts, _ := tt.msg.ParsedTimestamp()
			if got := tt.msg.ResponseDue.Sub(ts); got != tt.wantHours {
				t.Errorf("adjusted SLA = %v, want %v (score %d, label %s)",
					got, tt.wantHours, tt.msg.PriorityScore, tt.msg.PriorityLabel)
			}
		})
	}
}

func TestScore_DeterministicUnderFixedNow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := testScorer()

	build := func() *message.NormalizedMessage {
		m := &message.NormalizedMessage{
			ID:        "m8",
			Channel:   message.ChannelTelegram,
			From:      "friend",
			Subject:   "quick question about cocoa",
			Body:      "Could you review the doc soon? It has the deadline details.",
			Timestamp: now.Add(-5 * time.Hour).Format(time.RFC3339),
		}
		m.SetFlag(message.FlagDM, true)
		m.SetFlag(message.FlagQuestion, true)
		return m
	}

	a, b := build(), build()
	s.Score(a, now)
	s.Score(b, now)

	if a.PriorityScore != b.PriorityScore || a.PriorityLabel != b.PriorityLabel ||
		!a.ResponseDue.Equal(b.ResponseDue) || a.ProjectLink != b.ProjectLink {
		t.Errorf("scoring not deterministic: %+v vs %+v", a, b)
	}
}

func TestScore_BoundsProperty(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := testScorer()

	bodies := []string{
		"", "fyi no rush", "urgent urgent urgent", "?????",
		"critical emergency asap immediately important deadline priority soon quick",
	}
	for _, ch := range message.Channels {
		for _, body := range bodies {
			msg := &message.NormalizedMessage{Channel: ch, From: "x@y.com", Body: body}
			msg.SetFlag(message.FlagDM, true)
			msg.SetFlag(message.FlagMention, true)
			msg.SetFlag(message.FlagQuestion, true)
			msg.SetFlag(message.FlagForwarded, true)
			msg.SetFlag(message.FlagMedia, true)
			msg.SetCount(message.FlagReactionCount, 10)
			s.Score(msg, now)

			if msg.PriorityScore < 0 || msg.PriorityScore > 100 {
				t.Errorf("channel %s body %q: score %d out of [0,100]", ch, body, msg.PriorityScore)
			}
		}
	}
}

func TestLabelForScore_Partition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score int
		want  message.PriorityLabel
	}{
		{0, message.PriorityLow},
		{39, message.PriorityLow},
		{40, message.PriorityMedium},
		{69, message.PriorityMedium},
		{70, message.PriorityHigh},
		{100, message.PriorityHigh},
	}
	for _, tt := range tests {
		if got := LabelForScore(tt.score); got != tt.want {
			t.Errorf("LabelForScore(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestScore_ProjectRuleOrder(t *testing.T) {
	t.Parallel()

	cfg := DefaultScoringConfig()
	cfg.ProjectRules = []ProjectRule{
		{Keyword: "alpha", Project: "First"},
		{Keyword: "beta", Project: "Second"},
	}
	s := NewScorer(cfg)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	msg := &message.NormalizedMessage{
		Channel:   message.ChannelEmail,
		From:      "a@b.com",
		Body:      "beta and alpha both appear here",
		Timestamp: now.Format(time.RFC3339),
	}
	s.Score(msg, now)

	// Declaration order wins regardless of position in the text.
	if msg.ProjectLink != "[[First]]" {
		t.Errorf("project link = %q, want [[First]]", msg.ProjectLink)
	}
}

func TestDetectQuestion(t *testing.T) {
	t.Parallel()

	terms := DefaultScoringConfig().Interrogatives

	tests := []struct {
		text string
		want bool
	}{
		{"Is this ready?", true},
		{"how does this work", true},
		{"Could you take a look", true},
		{"shipping update attached", false},
		{"However, we decided to wait", true}, // known false positive on "how"
		{"", false},
	}
	for _, tt := range tests {
		if got := DetectQuestion(tt.text, terms); got != tt.want {
			t.Errorf("DetectQuestion(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
