// Package channels implements per-platform message collectors. Each
// collector converts platform messages into the normalized schema and
// applies the configured sender allowlist before anything is scored.
package channels

import (
	"strings"

	"github.com/tinyland-inc/inboxclaw/pkg/message"
)

// Base carries the identity and allowlist shared by every collector.
type Base struct {
	name      string
	channel   message.Channel
	allowList []string
}

func NewBase(name string, channel message.Channel, allowList []string) Base {
	return Base{
		name:      name,
		channel:   channel,
		allowList: allowList,
	}
}

func (b *Base) Name() string {
	return b.name
}

func (b *Base) Channel() message.Channel {
	return b.channel
}

// IsAllowed reports whether a sender passes the allowlist. An empty
// allowlist admits everyone.
func (b *Base) IsAllowed(senderID string) bool {
	if len(b.allowList) == 0 {
		return true
	}

	// Extract parts from compound senderID like "123456|username"
	idPart := senderID
	userPart := ""
	if idx := strings.Index(senderID, "|"); idx > 0 {
		idPart = senderID[:idx]
		userPart = senderID[idx+1:]
	}

	for _, allowed := range b.allowList {
		// Strip leading "@" from allowed value for username matching
		trimmed := strings.TrimPrefix(allowed, "@")
		allowedID := trimmed
		allowedUser := ""
		if idx := strings.Index(trimmed, "|"); idx > 0 {
			allowedID = trimmed[:idx]
			allowedUser = trimmed[idx+1:]
		}

		// Support either side using "id|username" compound form so
		// numeric-ID and handle-based allowlist entries both match.
		if senderID == allowed ||
			idPart == allowed ||
			senderID == trimmed ||
			idPart == trimmed ||
			idPart == allowedID ||
			(allowedUser != "" && senderID == allowedUser) ||
			(userPart != "" && (userPart == allowed || userPart == trimmed || userPart == allowedUser)) {
			return true
		}
	}

	return false
}
