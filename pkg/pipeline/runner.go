// Package pipeline orchestrates one triage cycle: collect from every
// configured channel, score and enrich each message, then persist the
// dashboard, conversation cards, and reply drafts.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tinyland-inc/inboxclaw/pkg/logger"
	"github.com/tinyland-inc/inboxclaw/pkg/message"
	"github.com/tinyland-inc/inboxclaw/pkg/tracking"
	"github.com/tinyland-inc/inboxclaw/pkg/triage"
)

const (
	conversationThreshold = 70
	topPriorityCount      = 3
)

// Collector fetches pending messages from one channel, already converted
// to the normalized schema. Implementations must tolerate repeated calls.
type Collector interface {
	Name() string
	Channel() message.Channel
	Collect(ctx context.Context) ([]message.NormalizedMessage, error)
}

// Drafter generates a reply draft for one message. Drafts are persisted
// for human approval and never sent automatically.
type Drafter interface {
	GenerateDraft(ctx context.Context, m *message.NormalizedMessage) (string, error)
}

// ChannelReport summarizes one channel's contribution to a cycle.
type ChannelReport struct {
	Collected int  `json:"collected"`
	Failed    bool `json:"failed"`
}

// CycleReport summarizes one complete triage cycle.
type CycleReport struct {
	StartedAt     time.Time                         `json:"started_at"`
	Duration      time.Duration                     `json:"duration"`
	Channels      map[message.Channel]ChannelReport `json:"channels"`
	High          int                               `json:"high"`
	Medium        int                               `json:"medium"`
	Low           int                               `json:"low"`
	DraftsCreated int                               `json:"drafts_created"`
	StorageErrors int                               `json:"storage_errors"`
	TopPriorities []*message.NormalizedMessage      `json:"-"`
}

// Total returns the number of messages collected across all channels.
func (r *CycleReport) Total() int {
	n := 0
	for _, cr := range r.Channels {
		n += cr.Collected
	}
	return n
}

// Pipeline runs triage cycles over a fixed set of collectors.
type Pipeline struct {
	collectors []Collector
	scorer     *triage.Scorer
	store      *tracking.Store
	drafter    Drafter

	// now anchors recency scoring and SLA deadlines for a whole cycle.
	now func() time.Time
}

// New creates a pipeline. The drafter is optional; pass nil to disable
// draft generation.
func New(scorer *triage.Scorer, store *tracking.Store, drafter Drafter, collectors ...Collector) *Pipeline {
	return &Pipeline{
		collectors: collectors,
		scorer:     scorer,
		store:      store,
		drafter:    drafter,
		now:        time.Now,
	}
}

// RunCycle executes one collect-score-persist cycle. A failing channel is
// logged and treated as having produced zero messages; it never aborts the
// cycle. Storage write failures are likewise logged and counted. The only
// error returned is context cancellation.
func (p *Pipeline) RunCycle(ctx context.Context) (*CycleReport, error) {
	start := p.now()
	report := &CycleReport{
		StartedAt: start,
		Channels:  make(map[message.Channel]ChannelReport),
	}
	byChannel := make(map[message.Channel][]*message.NormalizedMessage)

	for _, c := range p.collectors {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("cycle interrupted: %w", err)
		}

		msgs, err := c.Collect(ctx)
		if err != nil {
			logger.WarnCF("pipeline", "Channel collection failed", map[string]any{
				"collector": c.Name(),
				"channel":   c.Channel(),
				"error":     err.Error(),
			})
			report.Channels[c.Channel()] = ChannelReport{Failed: true}
			continue
		}

		cr := report.Channels[c.Channel()]
		for i := range msgs {
			m := &msgs[i]
			if m.Channel == "" {
				m.Channel = c.Channel()
			}
			if err := message.Normalize(m); err != nil {
				logger.WarnCF("pipeline", "Dropping malformed message", map[string]any{
					"collector": c.Name(),
					"error":     err.Error(),
				})
				continue
			}

			// Collectors only set platform-observable flags; textual
			// question detection happens here, before scoring reads it.
			// Only the body is scanned; a subject is a summary, not a
			// direct question to answer.
			if !m.Flag(message.FlagQuestion) && triage.DetectQuestion(m.Body, p.scorer.QuestionTerms()) {
				m.SetFlag(message.FlagQuestion, true)
			}

			p.scorer.Score(m, start)
			m.ActionItems = triage.ExtractActionItems(m.Body)

			byChannel[m.Channel] = append(byChannel[m.Channel], m)
			cr.Collected++
			switch m.PriorityLabel {
			case message.PriorityHigh:
				report.High++
			case message.PriorityMedium:
				report.Medium++
			default:
				report.Low++
			}
		}
		report.Channels[c.Channel()] = cr
	}

	if err := p.store.UpdateDashboard(byChannel); err != nil {
		logger.ErrorCF("pipeline", "Dashboard update failed", map[string]any{
			"error": err.Error(),
		})
		report.StorageErrors++
	}

	p.persistConversations(ctx, byChannel, report)

	report.TopPriorities = topPriorities(byChannel)
	report.Duration = time.Since(start)

	logger.InfoCF("pipeline", "Cycle complete", map[string]any{
		"total":  report.Total(),
		"high":   report.High,
		"medium": report.Medium,
		"low":    report.Low,
		"drafts": report.DraftsCreated,
	})
	return report, nil
}

// persistConversations writes a conversation card for every message at or
// above the conversation threshold and, when a drafter is configured, a
// reply draft for every HIGH message. Each write failure is isolated.
func (p *Pipeline) persistConversations(ctx context.Context, byChannel map[message.Channel][]*message.NormalizedMessage, report *CycleReport) {
	for _, ch := range message.Channels {
		for _, m := range byChannel[ch] {
			if m.PriorityScore < conversationThreshold {
				continue
			}

			if _, err := p.store.SaveConversation(m); err != nil {
				logger.ErrorCF("pipeline", "Conversation write failed", map[string]any{
					"message_id": m.ID,
					"error":      err.Error(),
				})
				report.StorageErrors++
			}

			if p.drafter == nil || m.PriorityLabel != message.PriorityHigh {
				continue
			}
			draft, err := p.drafter.GenerateDraft(ctx, m)
			if err != nil {
				logger.WarnCF("pipeline", "Draft generation failed", map[string]any{
					"message_id": m.ID,
					"error":      err.Error(),
				})
				continue
			}
			if _, err := p.store.SaveDraft(m, draft); err != nil {
				logger.ErrorCF("pipeline", "Draft write failed", map[string]any{
					"message_id": m.ID,
					"error":      err.Error(),
				})
				report.StorageErrors++
				continue
			}
			report.DraftsCreated++
		}
	}
}

func topPriorities(byChannel map[message.Channel][]*message.NormalizedMessage) []*message.NormalizedMessage {
	var all []*message.NormalizedMessage
	for _, ch := range message.Channels {
		all = append(all, byChannel[ch]...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].PriorityScore > all[j].PriorityScore
	})
	if len(all) > topPriorityCount {
		all = all[:topPriorityCount]
	}
	return all
}
