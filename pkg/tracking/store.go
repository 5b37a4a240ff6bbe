// Package tracking persists triage artifacts to a directory-based store:
// one dashboard document that is fully rewritten each cycle, append-only
// per-channel conversation cards, and append-only pending-approval drafts.
package tracking

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tinyland-inc/inboxclaw/pkg/message"
	"github.com/tinyland-inc/inboxclaw/pkg/triage"
	"github.com/tinyland-inc/inboxclaw/pkg/utils"
)

const (
	dashboardFile    = "00_Communications-Dashboard.md"
	conversationsDir = "Active-Conversations"
	draftsDir        = "Drafts-Pending-Approval"

	maxPriorityRows       = 10
	maxActiveConversation = 10
	subjectTokenLen       = 50
	draftExcerptLen       = 500
	filenameTimeLayout    = "20060102-150405"
	dueTimeLayout         = "2006-01-02 15:04"
)

// Store writes triage artifacts beneath a single root directory.
type Store struct {
	root     string
	slaHours map[message.Channel]float64

	// now is the artifact write clock; overridable in tests.
	now func() time.Time
}

// NewStore creates the directory layout beneath root: the dashboard at the
// top, one conversation subdirectory per channel, and a drafts directory.
func NewStore(root string, slaHours map[message.Channel]float64) (*Store, error) {
	dirs := []string{
		root,
		filepath.Join(root, draftsDir),
	}
	for _, ch := range message.Channels {
		dirs = append(dirs, filepath.Join(root, conversationsDir, channelDir(ch)))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating tracking directory %s: %w", dir, err)
		}
	}

	return &Store{
		root:     root,
		slaHours: slaHours,
		now:      time.Now,
	}, nil
}

// DashboardPath returns the fixed path of the dashboard document.
func (s *Store) DashboardPath() string {
	return filepath.Join(s.root, dashboardFile)
}

// UpdateDashboard rewrites the dashboard, fully replacing prior content.
// The write goes through a temp file and rename so concurrent readers never
// observe a partially written document.
func (s *Store) UpdateDashboard(byChannel map[message.Channel][]*message.NormalizedMessage) error {
	var b strings.Builder

	b.WriteString("# 📬 Communications Dashboard\n\n")
	fmt.Fprintf(&b, "Last Updated: %s\n\n", s.now().Format("2006-01-02 15:04:05"))

	b.WriteString("## 🚨 Priority Responses Needed\n")
	b.WriteString(formatPriorityTable(priorityMessages(byChannel)))
	b.WriteString("\n## 📊 Channel Status\n\n")
	for _, ch := range message.Channels {
		writeChannelStatus(&b, ch, byChannel[ch])
	}

	b.WriteString("## 📅 Response SLAs\n\n")
	b.WriteString("| Channel | Target |\n|---------|--------|\n")
	for _, ch := range message.Channels {
		fmt.Fprintf(&b, "| %s | %gh |\n", ch, s.slaHours[ch])
	}
	b.WriteString("\n## 📝 Active Conversations\n\n")
	b.WriteString(formatActiveConversations(byChannel))

	b.WriteString("\n---\n*Maintained by inboxclaw. Refreshed on every triage cycle.*\n")

	return atomicWrite(s.DashboardPath(), []byte(b.String()))
}

// SaveConversation appends a conversation card for one message. The filename
// embeds the write-time timestamp, so it is not a pure function of message
// identity; two writes for the same sender and subject prefix within the
// same second collide, an accepted low-probability risk.
func (s *Store) SaveConversation(m *message.NormalizedMessage) (string, error) {
	name := fmt.Sprintf("%s-%s-%s.md",
		s.now().Format(filenameTimeLayout),
		utils.SanitizeSender(m.From),
		utils.SanitizeSubject(m.Subject, subjectTokenLen),
	)
	if err := utils.ValidateArtifactName(name); err != nil {
		return "", err
	}
	path := filepath.Join(s.root, conversationsDir, channelDir(m.Channel), name)

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "date: %s\n", orNow(m.Timestamp, s.now()))
	fmt.Fprintf(&b, "channel: %s\n", m.Channel)
	fmt.Fprintf(&b, "from: %s\n", orDefault(m.From, "unknown"))
	fmt.Fprintf(&b, "subject: %s\n", orDefault(m.Subject, "N/A"))
	fmt.Fprintf(&b, "priority_score: %d\n", m.PriorityScore)
	fmt.Fprintf(&b, "status: %s\n", m.Status)
	b.WriteString("---\n\n")

	fmt.Fprintf(&b, "# %s\n\n", orDefault(m.Subject, "Message"))
	fmt.Fprintf(&b, "**From:** %s  \n", senderDisplay(m))
	fmt.Fprintf(&b, "**Subject:** %s  \n", orDefault(m.Subject, "N/A"))
	fmt.Fprintf(&b, "**Priority:** %s %d\n", message.Marker(m.PriorityScore), m.PriorityScore)
	if !m.ResponseDue.IsZero() {
		fmt.Fprintf(&b, "**Response due:** %s\n", m.ResponseDue.Format(dueTimeLayout))
	}
	if m.ProjectLink != "" {
		fmt.Fprintf(&b, "**Project:** %s\n", m.ProjectLink)
	}
	b.WriteString("\n**Message Preview:**\n")
	fmt.Fprintf(&b, "> %s\n", triage.ExtractPreview(m.Body, triage.DefaultPreviewChars))

	if len(m.ActionItems) > 0 {
		b.WriteString("\n**Action Items:**\n")
		for _, item := range m.ActionItems {
			fmt.Fprintf(&b, "- [ ] %s\n", item)
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing conversation %s: %w", name, err)
	}
	return path, nil
}

// SaveDraft persists a generated reply as a pending-approval artifact. No
// scoring happens here; the draft text is stored as given and nothing is
// ever sent from this store.
func (s *Store) SaveDraft(m *message.NormalizedMessage, draft string) (string, error) {
	name := fmt.Sprintf("%s-%s-%s-DRAFT.md",
		s.now().Format(filenameTimeLayout),
		m.Channel,
		utils.SanitizeSender(m.From),
	)
	if err := utils.ValidateArtifactName(name); err != nil {
		return "", err
	}
	path := filepath.Join(s.root, draftsDir, name)

	excerpt := m.Body
	if len(excerpt) > draftExcerptLen {
		excerpt = excerpt[:draftExcerptLen] + "..."
	}

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "date_created: %s\n", s.now().Format(time.RFC3339))
	fmt.Fprintf(&b, "channel: %s\n", m.Channel)
	fmt.Fprintf(&b, "original_from: %s\n", orDefault(m.From, "unknown"))
	fmt.Fprintf(&b, "original_subject: %s\n", orDefault(m.Subject, "N/A"))
	b.WriteString("status: pending_approval\n")
	b.WriteString("---\n\n")

	fmt.Fprintf(&b, "# DRAFT: Response to %s\n\n", orDefault(m.Subject, "Message"))
	b.WriteString("## Original Message\n")
	fmt.Fprintf(&b, "**From:** %s  \n", m.DisplayName())
	fmt.Fprintf(&b, "**Date:** %s\n\n", orDefault(m.Timestamp, "N/A"))
	b.WriteString("```\n")
	b.WriteString(excerpt)
	b.WriteString("\n```\n\n")
	b.WriteString("## Draft Response\n\n")
	b.WriteString(draft)
	b.WriteString("\n\n## Actions\n\n- [ ] Review and edit draft\n- [ ] Approve and send\n- [ ] Discard\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing draft %s: %w", name, err)
	}
	return path, nil
}

// priorityMessages flattens all channels in fixed order and keeps score>=70
// entries, stable-sorted descending so collection order breaks ties.
func priorityMessages(byChannel map[message.Channel][]*message.NormalizedMessage) []*message.NormalizedMessage {
	var priority []*message.NormalizedMessage
	for _, ch := range message.Channels {
		for _, m := range byChannel[ch] {
			if m.PriorityScore >= 70 {
				priority = append(priority, m)
			}
		}
	}
	sort.SliceStable(priority, func(i, j int) bool {
		return priority[i].PriorityScore > priority[j].PriorityScore
	})
	return priority
}

func formatPriorityTable(msgs []*message.NormalizedMessage) string {
	if len(msgs) == 0 {
		return "_No priority responses needed_ ✅\n"
	}

	var b strings.Builder
	b.WriteString("| Channel | From | Topic | Priority | Due | Status |\n")
	b.WriteString("|---------|------|-------|----------|-----|--------|\n")
	for i, m := range msgs {
		if i == maxPriorityRows {
			break
		}
		due := "N/A"
		if !m.ResponseDue.IsZero() {
			due = m.ResponseDue.Format(dueTimeLayout)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s %d | %s | %s |\n",
			m.Channel,
			clip(m.DisplayName(), 30),
			clip(orDefault(m.Subject, "N/A"), 40),
			message.Marker(m.PriorityScore), m.PriorityScore,
			due,
			m.Status,
		)
	}
	return b.String()
}

func writeChannelStatus(b *strings.Builder, ch message.Channel, msgs []*message.NormalizedMessage) {
	unread, pending := 0, 0
	mentions, dms, followups := 0, 0, 0
	for _, m := range msgs {
		if m.Status == message.StatusUnread {
			unread++
		}
		if m.PriorityScore >= 40 {
			pending++
		}
		if m.Flag(message.FlagMention) {
			mentions++
		}
		if m.Flag(message.FlagDM) {
			dms++
		}
		if m.PriorityScore >= 70 {
			followups++
		}
	}

	fmt.Fprintf(b, "### %s\n", channelDir(ch))
	fmt.Fprintf(b, "- Unread: %d\n", unread)
	fmt.Fprintf(b, "- Pending Response: %d\n", pending)
	fmt.Fprintf(b, "- Total Monitored: %d\n", len(msgs))
	switch ch {
	case message.ChannelDiscord:
		fmt.Fprintf(b, "- @Mentions: %d\n", mentions)
		fmt.Fprintf(b, "- DMs: %d\n", dms)
	case message.ChannelTelegram:
		fmt.Fprintf(b, "- Follow-up Needed: %d\n", followups)
	}
	b.WriteString("\n")
}

func formatActiveConversations(byChannel map[message.Channel][]*message.NormalizedMessage) string {
	var all []*message.NormalizedMessage
	for _, ch := range message.Channels {
		all = append(all, byChannel[ch]...)
	}
	if len(all) == 0 {
		return "_No active conversations_\n"
	}

	var b strings.Builder
	for i, m := range all {
		if i == maxActiveConversation {
			break
		}
		fmt.Fprintf(&b, "- %s [%s] %s: %s\n",
			message.Marker(m.PriorityScore),
			strings.ToUpper(string(m.Channel)),
			m.DisplayName(),
			clip(orDefault(m.Subject, "Message"), 50),
		)
	}
	return b.String()
}

// atomicWrite writes data next to path and renames it into place.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".dashboard-*")
	if err != nil {
		return fmt.Errorf("creating temp dashboard: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing dashboard: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing dashboard: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing dashboard: %w", err)
	}
	return nil
}

func channelDir(ch message.Channel) string {
	s := string(ch)
	if s == "" {
		return "Unknown"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func senderDisplay(m *message.NormalizedMessage) string {
	if m.FromName != "" && m.FromName != m.From {
		return fmt.Sprintf("[[%s]] (%s)", m.FromName, orDefault(m.From, "N/A"))
	}
	return orDefault(m.From, "N/A")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func orNow(ts string, now time.Time) string {
	if ts == "" {
		return now.Format(time.RFC3339)
	}
	return ts
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
