package channels

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tinyland-inc/inboxclaw/pkg/config"
	"github.com/tinyland-inc/inboxclaw/pkg/message"
)

const defaultDrainTimeout = 10 * time.Second

// ChatbotCollector drains queued visitor conversations from the website
// bot gateway over a short-lived websocket session. The collector sends a
// drain request and reads message frames until the gateway signals the end
// of the queue.
type ChatbotCollector struct {
	Base

	gatewayURL string
	authToken  string
	timeout    time.Duration
}

type chatbotFrame struct {
	Type    string          `json:"type"`
	Message *chatbotMessage `json:"message,omitempty"`
}

type chatbotMessage struct {
	ID         string `json:"id"`
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name,omitempty"`
	Topic      string `json:"topic,omitempty"`
	Text       string `json:"text"`
	Timestamp  string `json:"timestamp"`
}

func NewChatbotCollector(cfg config.ChatbotConfig) *ChatbotCollector {
	timeout := defaultDrainTimeout
	if cfg.DrainTimeout > 0 {
		timeout = time.Duration(cfg.DrainTimeout) * time.Second
	}

	return &ChatbotCollector{
		Base:       NewBase("chatbot", message.ChannelChatbot, cfg.AllowFrom),
		gatewayURL: cfg.GatewayURL,
		authToken:  cfg.AuthToken,
		timeout:    timeout,
	}
}

func (c *ChatbotCollector) Collect(ctx context.Context) ([]message.NormalizedMessage, error) {
	header := http.Header{}
	if c.authToken != "" {
		header.Set("Authorization", "Bearer "+c.authToken)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.gatewayURL, header)
	if err != nil {
		return nil, fmt.Errorf("dialing bot gateway: %w", err)
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, fmt.Errorf("setting read deadline: %w", err)
	}
	if err := conn.WriteJSON(chatbotFrame{Type: "drain"}); err != nil {
		return nil, fmt.Errorf("requesting drain: %w", err)
	}

	var out []message.NormalizedMessage
	for {
		var frame chatbotFrame
		if err := conn.ReadJSON(&frame); err != nil {
			// A normal closure after "end" is not an error; anything else is.
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return out, nil
			}
			return nil, fmt.Errorf("reading gateway frame: %w", err)
		}

		switch frame.Type {
		case "end":
			return out, nil
		case "message":
			if frame.Message == nil {
				continue
			}
			if !c.IsAllowed(frame.Message.SenderID) {
				continue
			}
			out = append(out, normalizeChatbot(frame.Message))
		default:
			return nil, errors.New("unexpected gateway frame type " + frame.Type)
		}
	}
}

func normalizeChatbot(cm *chatbotMessage) message.NormalizedMessage {
	return message.NormalizedMessage{
		ID:        cm.ID,
		Channel:   message.ChannelChatbot,
		From:      cm.SenderID,
		FromName:  cm.SenderName,
		Subject:   cm.Topic,
		Body:      cm.Text,
		Timestamp: cm.Timestamp,
		Status:    message.StatusUnread,
	}
}
