package channels

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/tinyland-inc/inboxclaw/pkg/config"
	"github.com/tinyland-inc/inboxclaw/pkg/logger"
	"github.com/tinyland-inc/inboxclaw/pkg/message"
)

const defaultEmailFetchLimit = 50

// EmailCollector fetches unseen messages over IMAP. Every fetch uses PEEK
// so collection never flips the \Seen flag; the mailbox is strictly
// read-only from triage's point of view.
type EmailCollector struct {
	Base

	server   string
	username string
	password string
	mailbox  string
	limit    int

	// dial is swapped in tests.
	dial func(addr string) (*imapclient.Client, error)
}

func NewEmailCollector(cfg config.EmailConfig) *EmailCollector {
	limit := cfg.FetchLimit
	if limit <= 0 {
		limit = defaultEmailFetchLimit
	}
	mailbox := cfg.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}

	return &EmailCollector{
		Base:     NewBase("email", message.ChannelEmail, cfg.AllowFrom),
		server:   cfg.IMAPServer,
		username: cfg.Username,
		password: cfg.Password,
		mailbox:  mailbox,
		limit:    limit,
		dial: func(addr string) (*imapclient.Client, error) {
			return imapclient.DialTLS(addr, nil)
		},
	}
}

func (c *EmailCollector) Collect(ctx context.Context) ([]message.NormalizedMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client, err := c.dial(c.server)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", c.server, err)
	}
	defer client.Close()

	if err := client.Login(c.username, c.password).Wait(); err != nil {
		return nil, fmt.Errorf("imap login: %w", err)
	}
	defer func() {
		if err := client.Logout().Wait(); err != nil {
			logger.DebugCF("email", "Logout failed", map[string]any{"error": err.Error()})
		}
	}()

	if _, err := client.Select(c.mailbox, nil).Wait(); err != nil {
		return nil, fmt.Errorf("selecting %s: %w", c.mailbox, err)
	}

	search, err := client.Search(&imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching unseen: %w", err)
	}

	nums := search.AllSeqNums()
	if len(nums) == 0 {
		return nil, nil
	}
	// Newest first; the sequence numbers are ascending by arrival.
	if len(nums) > c.limit {
		nums = nums[len(nums)-c.limit:]
	}

	textSection := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierText,
		Peek:      true,
	}
	fetched, err := client.Fetch(imap.SeqSetNum(nums...), &imap.FetchOptions{
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{textSection},
	}).Collect()
	if err != nil {
		return nil, fmt.Errorf("fetching messages: %w", err)
	}

	var out []message.NormalizedMessage
	for _, buf := range fetched {
		if buf.Envelope == nil {
			continue
		}
		m, ok := c.normalize(buf, textSection)
		if !ok {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (c *EmailCollector) normalize(buf *imapclient.FetchMessageBuffer, section *imap.FetchItemBodySection) (message.NormalizedMessage, bool) {
	env := buf.Envelope

	from := ""
	fromName := ""
	if len(env.From) > 0 {
		from = env.From[0].Addr()
		fromName = env.From[0].Name
	}
	if !c.IsAllowed(from) {
		return message.NormalizedMessage{}, false
	}

	ts := ""
	if !env.Date.IsZero() {
		ts = env.Date.UTC().Format(time.RFC3339)
	}

	return message.NormalizedMessage{
		ID:        strconv.FormatUint(uint64(buf.SeqNum), 10) + "@" + c.mailbox,
		Channel:   message.ChannelEmail,
		From:      from,
		FromName:  fromName,
		Subject:   env.Subject,
		Body:      string(buf.FindBodySection(section)),
		Timestamp: ts,
		Status:    message.StatusUnread,
	}, true
}
