// Package anthropicprovider generates reply drafts for high priority
// messages through the Anthropic Messages API. Drafts are plain text; the
// caller persists them for human approval and nothing is ever sent.
package anthropicprovider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tinyland-inc/inboxclaw/pkg/config"
	"github.com/tinyland-inc/inboxclaw/pkg/message"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultModel     = "claude-sonnet-4-5"
	defaultMaxTokens = 1024

	// The original body is excerpted so one oversized message cannot blow
	// the prompt budget.
	maxPromptBody = 2000
)

const systemPrompt = `You draft replies to incoming messages on behalf of a busy founder.
Write a complete, ready-to-send reply in the founder's voice: warm, direct, and brief.
Match the register of the channel: emails get a greeting and sign-off, chat messages do not.
Answer every question the sender asked. If you lack the information to answer, say so plainly and name who will follow up.
Return only the reply text, with no preamble or commentary.`

type Provider struct {
	client    *anthropic.Client
	baseURL   string
	model     string
	maxTokens int64
}

func NewProvider(cfg config.DraftsConfig) *Provider {
	baseURL := normalizeBaseURL(cfg.APIBase)
	client := anthropic.NewClient(
		option.WithAuthToken(cfg.APIKey),
		option.WithBaseURL(baseURL),
	)

	p := &Provider{
		client:    &client,
		baseURL:   baseURL,
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
	}
	if p.model == "" {
		p.model = defaultModel
	}
	if p.maxTokens <= 0 {
		p.maxTokens = defaultMaxTokens
	}
	return p
}

// NewProviderWithClient is used by tests to point the provider at a stub
// server.
func NewProviderWithClient(client *anthropic.Client) *Provider {
	return &Provider{
		client:    client,
		baseURL:   defaultBaseURL,
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
	}
}

func (p *Provider) Model() string {
	return p.model
}

func (p *Provider) BaseURL() string {
	return p.baseURL
}

// GenerateDraft produces a reply draft for one message.
func (p *Provider) GenerateDraft(ctx context.Context, m *message.NormalizedMessage) (string, error) {
	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(m))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("draft API call: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}

	draft := strings.TrimSpace(sb.String())
	if draft == "" {
		return "", errors.New("model returned an empty draft")
	}
	return draft, nil
}

func buildPrompt(m *message.NormalizedMessage) string {
	body := m.Body
	if len(body) > maxPromptBody {
		body = body[:maxPromptBody] + "..."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Channel: %s\n", m.Channel)
	fmt.Fprintf(&sb, "From: %s\n", m.DisplayName())
	if m.Subject != "" {
		fmt.Fprintf(&sb, "Subject: %s\n", m.Subject)
	}
	if len(m.ActionItems) > 0 {
		fmt.Fprintf(&sb, "The sender is asking for: %s\n", strings.Join(m.ActionItems, "; "))
	}
	fmt.Fprintf(&sb, "\nMessage:\n%s\n\nDraft a reply.", body)
	return sb.String()
}

func normalizeBaseURL(apiBase string) string {
	base := strings.TrimSpace(apiBase)
	if base == "" {
		return defaultBaseURL
	}

	base = strings.TrimRight(base, "/")
	if b, ok := strings.CutSuffix(base, "/v1"); ok {
		base = b
	}
	if base == "" {
		return defaultBaseURL
	}

	return base
}
