package channels

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/tinyland-inc/inboxclaw/pkg/config"
	"github.com/tinyland-inc/inboxclaw/pkg/logger"
	"github.com/tinyland-inc/inboxclaw/pkg/message"
)

const defaultDiscordFetchLimit = 50

// DiscordCollector polls a fixed set of guild channels, plus open DM
// channels when configured, through the Discord REST API. It never opens
// a gateway connection.
type DiscordCollector struct {
	Base

	session    *discordgo.Session
	channelIDs []string
	includeDMs bool
	limit      int
	since      time.Duration
	botID      string
}

// NewDiscordCollector builds a collector from config. The session is
// created eagerly but no request is made until Collect.
func NewDiscordCollector(cfg config.DiscordConfig) (*DiscordCollector, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}

	limit := cfg.FetchLimit
	if limit <= 0 {
		limit = defaultDiscordFetchLimit
	}

	return &DiscordCollector{
		Base:       NewBase("discord", message.ChannelDiscord, cfg.AllowFrom),
		session:    session,
		channelIDs: cfg.ChannelIDs,
		includeDMs: cfg.IncludeDMs,
		limit:      limit,
		since:      24 * time.Hour,
	}, nil
}

func (c *DiscordCollector) Collect(ctx context.Context) ([]message.NormalizedMessage, error) {
	if c.botID == "" {
		me, err := c.session.User("@me", discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("resolving bot identity: %w", err)
		}
		c.botID = me.ID
	}

	targets := make(map[string]bool, len(c.channelIDs))
	for _, id := range c.channelIDs {
		targets[id] = false
	}
	if c.includeDMs {
		dms, err := c.session.UserChannels(discordgo.WithContext(ctx))
		if err != nil {
			logger.WarnCF("discord", "Listing DM channels failed", map[string]any{
				"error": err.Error(),
			})
		} else {
			for _, ch := range dms {
				targets[ch.ID] = true
			}
		}
	}

	cutoff := time.Now().Add(-c.since)
	var out []message.NormalizedMessage
	for chID, isDM := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		msgs, err := c.session.ChannelMessages(chID, c.limit, "", "", "", discordgo.WithContext(ctx))
		if err != nil {
			logger.WarnCF("discord", "Fetching channel failed", map[string]any{
				"channel_id": chID,
				"error":      err.Error(),
			})
			continue
		}

		for _, dm := range msgs {
			if dm.Author == nil || dm.Author.ID == c.botID || dm.Author.Bot {
				continue
			}
			if dm.Timestamp.Before(cutoff) {
				continue
			}
			if !c.IsAllowed(dm.Author.ID + "|" + dm.Author.Username) {
				continue
			}
			out = append(out, c.normalize(dm, isDM))
		}
	}
	return out, nil
}

func (c *DiscordCollector) normalize(dm *discordgo.Message, isDM bool) message.NormalizedMessage {
	m := message.NormalizedMessage{
		ID:        dm.ID,
		Channel:   message.ChannelDiscord,
		From:      dm.Author.Username,
		FromName:  dm.Author.GlobalName,
		Body:      dm.Content,
		Timestamp: dm.Timestamp.UTC().Format(time.RFC3339),
		Status:    message.StatusUnread,
	}

	m.SetFlag(message.FlagDM, isDM)

	mentioned := dm.MentionEveryone
	for _, u := range dm.Mentions {
		if u.ID == c.botID {
			mentioned = true
			break
		}
	}
	m.SetFlag(message.FlagMention, mentioned)

	reactions := 0
	for _, r := range dm.Reactions {
		reactions += r.Count
	}
	m.SetCount(message.FlagReactionCount, reactions)

	if len(dm.Attachments) > 0 {
		m.SetFlag(message.FlagMedia, true)
	}

	return m
}
