package channels

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mymmrac/telego"

	"github.com/tinyland-inc/inboxclaw/pkg/config"
	"github.com/tinyland-inc/inboxclaw/pkg/message"
)

// TelegramCollector drains pending bot updates via getUpdates. The update
// offset advances after every batch so a message is collected exactly once
// per bot token.
type TelegramCollector struct {
	Base

	bot    *telego.Bot
	offset int
}

func NewTelegramCollector(cfg config.TelegramConfig) (*TelegramCollector, error) {
	bot, err := telego.NewBot(cfg.Token, telego.WithDiscardLogger())
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}

	return &TelegramCollector{
		Base: NewBase("telegram", message.ChannelTelegram, cfg.AllowFrom),
		bot:  bot,
	}, nil
}

func (c *TelegramCollector) Collect(ctx context.Context) ([]message.NormalizedMessage, error) {
	updates, err := c.bot.GetUpdates(ctx, &telego.GetUpdatesParams{
		Offset:         c.offset,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		return nil, fmt.Errorf("fetching telegram updates: %w", err)
	}

	var out []message.NormalizedMessage
	for _, u := range updates {
		if u.UpdateID >= c.offset {
			c.offset = u.UpdateID + 1
		}
		tm := u.Message
		if tm == nil || tm.From == nil {
			continue
		}
		senderID := strconv.FormatInt(tm.From.ID, 10) + "|" + tm.From.Username
		if !c.IsAllowed(senderID) {
			continue
		}
		out = append(out, normalizeTelegram(tm))
	}
	return out, nil
}

func normalizeTelegram(tm *telego.Message) message.NormalizedMessage {
	from := tm.From.Username
	if from != "" {
		from = "@" + from
	} else {
		from = strconv.FormatInt(tm.From.ID, 10)
	}

	body := tm.Text
	if body == "" {
		body = tm.Caption
	}

	m := message.NormalizedMessage{
		ID:        strconv.Itoa(tm.MessageID),
		Channel:   message.ChannelTelegram,
		From:      from,
		FromName:  tm.From.FirstName,
		Body:      body,
		Timestamp: time.Unix(tm.Date, 0).UTC().Format(time.RFC3339),
		Status:    message.StatusUnread,
	}

	m.SetFlag(message.FlagDM, tm.Chat.Type == telego.ChatTypePrivate)
	m.SetFlag(message.FlagForwarded, tm.ForwardOrigin != nil)
	m.SetFlag(message.FlagMedia,
		len(tm.Photo) > 0 || tm.Document != nil || tm.Video != nil || tm.Voice != nil)

	return m
}
