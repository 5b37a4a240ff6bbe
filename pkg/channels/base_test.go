package channels

import (
	"testing"

	"github.com/tinyland-inc/inboxclaw/pkg/message"
)

func TestIsAllowedEmptyListAdmitsEveryone(t *testing.T) {
	t.Parallel()

	b := NewBase("test", message.ChannelEmail, nil)
	if !b.IsAllowed("anyone@example.com") {
		t.Error("empty allowlist rejected a sender")
	}
}

func TestIsAllowed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		allowList []string
		senderID  string
		want      bool
	}{
		{"exact match", []string{"alice@example.com"}, "alice@example.com", true},
		{"not listed", []string{"alice@example.com"}, "mallory@example.com", false},
		{"handle with at prefix", []string{"@ops_lead"}, "ops_lead", true},
		{"compound sender matches plain id", []string{"123456"}, "123456|ops_lead", true},
		{"compound sender matches username", []string{"ops_lead"}, "123456|ops_lead", true},
		{"compound allowlist matches plain id", []string{"123456|ops_lead"}, "123456", true},
		{"compound both sides", []string{"123456|ops_lead"}, "123456|ops_lead", true},
		{"compound id mismatch", []string{"999|other"}, "123456|ops_lead", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := NewBase("test", message.ChannelTelegram, tt.allowList)
			if got := b.IsAllowed(tt.senderID); got != tt.want {
				t.Errorf("IsAllowed(%q) with %v = %v, want %v", tt.senderID, tt.allowList, got, tt.want)
			}
		})
	}
}
