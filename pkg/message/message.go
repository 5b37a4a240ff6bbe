// Package message defines the channel-agnostic record schema that every
// collection adapter must produce and every downstream component consumes.
package message

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Channel identifies the communication channel a message was collected from.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelDiscord  Channel = "discord"
	ChannelTelegram Channel = "telegram"
	ChannelChatbot  Channel = "chatbot"
)

// Channels lists all known channels in their fixed reporting order.
var Channels = []Channel{ChannelEmail, ChannelDiscord, ChannelTelegram, ChannelChatbot}

// Valid reports whether c is one of the known channel values.
func (c Channel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelDiscord, ChannelTelegram, ChannelChatbot:
		return true
	}
	return false
}

// Status tracks whether a message has been read on its source platform.
type Status string

const (
	StatusUnread Status = "unread"
	StatusRead   Status = "read"
)

// PriorityLabel is the coarse bucket derived from the numeric priority score.
type PriorityLabel string

const (
	PriorityHigh   PriorityLabel = "HIGH"
	PriorityMedium PriorityLabel = "MEDIUM"
	PriorityLow    PriorityLabel = "LOW"
)

// Marker returns the dashboard marker for a priority score.
func Marker(score int) string {
	switch {
	case score >= 70:
		return "🔴"
	case score >= 40:
		return "🟡"
	default:
		return "🟢"
	}
}

// Extension flag keys set by channel adapters. Values are ints so boolean
// flags (0/1) and counters (reaction_count) share one map.
const (
	FlagMention       = "is_mention"
	FlagDM            = "is_dm"
	FlagQuestion      = "is_question"
	FlagMedia         = "has_media"
	FlagForwarded     = "is_forwarded"
	FlagReactionCount = "reaction_count"
)

// NormalizedMessage is one inbound item in the common schema. Adapters create
// it, the scorer and extractor enrich it in place, and the tracking store
// consumes it exactly once per triage cycle.
type NormalizedMessage struct {
	ID       string  `json:"id"`
	Channel  Channel `json:"channel"`
	From     string  `json:"from"`
	FromName string  `json:"from_name,omitempty"`
	Subject  string  `json:"subject"`
	Body     string  `json:"body"`

	// Timestamp is the platform receipt time as delivered by the adapter,
	// nominally RFC 3339. It may be empty or malformed; scoring degrades
	// gracefully instead of rejecting the message.
	Timestamp string `json:"timestamp"`

	Status Status `json:"status"`

	// Populated by the scorer.
	PriorityScore int           `json:"priority_score"`
	PriorityLabel PriorityLabel `json:"priority_label,omitempty"`
	ResponseDue   time.Time     `json:"response_due,omitzero"`
	ProjectLink   string        `json:"project_link,omitempty"`

	// Populated by the extractor.
	ActionItems []string `json:"action_items,omitempty"`

	// Extensions carries channel-specific flags consumed only by
	// channel-specific scoring bonuses.
	Extensions map[string]int `json:"extensions,omitempty"`
}

// Flag reports whether the named extension flag is set (non-zero).
func (m *NormalizedMessage) Flag(key string) bool {
	return m.Extensions[key] != 0
}

// SetFlag records a boolean extension flag.
func (m *NormalizedMessage) SetFlag(key string, on bool) {
	if m.Extensions == nil {
		m.Extensions = make(map[string]int)
	}
	if on {
		m.Extensions[key] = 1
	} else {
		m.Extensions[key] = 0
	}
}

// SetCount records an integer extension value.
func (m *NormalizedMessage) SetCount(key string, n int) {
	if m.Extensions == nil {
		m.Extensions = make(map[string]int)
	}
	m.Extensions[key] = n
}

// ParsedTimestamp parses the receipt timestamp. The second return value is
// false when the timestamp is missing or malformed.
func (m *NormalizedMessage) ParsedTimestamp() (time.Time, bool) {
	if m.Timestamp == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, m.Timestamp); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// DisplayName returns the sender name, falling back to the raw address.
func (m *NormalizedMessage) DisplayName() string {
	if m.FromName != "" {
		return m.FromName
	}
	if m.From != "" {
		return m.From
	}
	return "Unknown"
}

// Normalize applies ingestion-boundary defaults and validates the fixed
// fields. Adapters call it on every record before handing it downstream.
func Normalize(m *NormalizedMessage) error {
	if !m.Channel.Valid() {
		return fmt.Errorf("unknown channel %q", m.Channel)
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Status == "" {
		m.Status = StatusUnread
	}
	return nil
}
