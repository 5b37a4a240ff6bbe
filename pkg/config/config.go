package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// FlexibleStringSlice is a []string that also accepts JSON numbers,
// so allow_from can contain both "123" and 123.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	// Try []string first
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}

	// Try []interface{} to handle mixed types
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

type Config struct {
	Channels ChannelsConfig `json:"channels"`
	Triage   TriageConfig   `json:"triage"`
	Storage  StorageConfig  `json:"storage"`
	Drafts   DraftsConfig   `json:"drafts"`
	Watch    WatchConfig    `json:"watch"`
}

type ChannelsConfig struct {
	Email    EmailConfig    `json:"email"`
	Discord  DiscordConfig  `json:"discord"`
	Telegram TelegramConfig `json:"telegram"`
	Chatbot  ChatbotConfig  `json:"chatbot"`
}

type EmailConfig struct {
	Enabled    bool                `env:"INBOXCLAW_CHANNELS_EMAIL_ENABLED"     json:"enabled"`
	IMAPServer string              `env:"INBOXCLAW_CHANNELS_EMAIL_IMAP_SERVER" json:"imap_server"`
	Username   string              `env:"INBOXCLAW_CHANNELS_EMAIL_USERNAME"    json:"username"`
	Password   string              `env:"INBOXCLAW_CHANNELS_EMAIL_PASSWORD"    json:"password"`
	Mailbox    string              `env:"INBOXCLAW_CHANNELS_EMAIL_MAILBOX"     json:"mailbox"`
	FetchLimit int                 `env:"INBOXCLAW_CHANNELS_EMAIL_FETCH_LIMIT" json:"fetch_limit"`
	AllowFrom  FlexibleStringSlice `env:"INBOXCLAW_CHANNELS_EMAIL_ALLOW_FROM"  json:"allow_from"`
}

type DiscordConfig struct {
	Enabled    bool                `env:"INBOXCLAW_CHANNELS_DISCORD_ENABLED"     json:"enabled"`
	Token      string              `env:"INBOXCLAW_CHANNELS_DISCORD_TOKEN"       json:"token"`
	ChannelIDs []string            `env:"INBOXCLAW_CHANNELS_DISCORD_CHANNEL_IDS" json:"channel_ids"`
	IncludeDMs bool                `env:"INBOXCLAW_CHANNELS_DISCORD_INCLUDE_DMS" json:"include_dms"`
	FetchLimit int                 `env:"INBOXCLAW_CHANNELS_DISCORD_FETCH_LIMIT" json:"fetch_limit"`
	AllowFrom  FlexibleStringSlice `env:"INBOXCLAW_CHANNELS_DISCORD_ALLOW_FROM"  json:"allow_from"`
}

type TelegramConfig struct {
	Enabled   bool                `env:"INBOXCLAW_CHANNELS_TELEGRAM_ENABLED"    json:"enabled"`
	Token     string              `env:"INBOXCLAW_CHANNELS_TELEGRAM_TOKEN"      json:"token"`
	AllowFrom FlexibleStringSlice `env:"INBOXCLAW_CHANNELS_TELEGRAM_ALLOW_FROM" json:"allow_from"`
}

type ChatbotConfig struct {
	Enabled      bool                `env:"INBOXCLAW_CHANNELS_CHATBOT_ENABLED"       json:"enabled"`
	GatewayURL   string              `env:"INBOXCLAW_CHANNELS_CHATBOT_GATEWAY_URL"   json:"gateway_url"`
	AuthToken    string              `env:"INBOXCLAW_CHANNELS_CHATBOT_AUTH_TOKEN"    json:"auth_token"`
	DrainTimeout int                 `env:"INBOXCLAW_CHANNELS_CHATBOT_DRAIN_TIMEOUT" json:"drain_timeout"` // seconds
	AllowFrom    FlexibleStringSlice `env:"INBOXCLAW_CHANNELS_CHATBOT_ALLOW_FROM"    json:"allow_from"`
}

type TriageConfig struct {
	RulesPath string `env:"INBOXCLAW_TRIAGE_RULES_PATH" json:"rules_path"`
}

type StorageConfig struct {
	Root string `env:"INBOXCLAW_STORAGE_ROOT" json:"root"`
}

// DraftsConfig controls reply-draft generation for HIGH priority messages.
// Drafts are only ever written to the pending-approval directory.
type DraftsConfig struct {
	Enabled   bool   `env:"INBOXCLAW_DRAFTS_ENABLED"    json:"enabled"`
	APIKey    string `env:"INBOXCLAW_DRAFTS_API_KEY"    json:"api_key"`
	APIBase   string `env:"INBOXCLAW_DRAFTS_API_BASE"   json:"api_base,omitempty"`
	Model     string `env:"INBOXCLAW_DRAFTS_MODEL"      json:"model"`
	MaxTokens int    `env:"INBOXCLAW_DRAFTS_MAX_TOKENS" json:"max_tokens"`
}

type WatchConfig struct {
	Schedule string `env:"INBOXCLAW_WATCH_SCHEDULE" json:"schedule"` // cron expression
}

func DefaultConfig() *Config {
	return &Config{
		Channels: ChannelsConfig{
			Email: EmailConfig{
				Mailbox:    "INBOX",
				FetchLimit: 50,
			},
			Discord: DiscordConfig{
				FetchLimit: 50,
			},
			Chatbot: ChatbotConfig{
				DrainTimeout: 10,
			},
		},
		Triage: TriageConfig{
			RulesPath: "~/.inboxclaw/scoring.yaml",
		},
		Storage: StorageConfig{
			Root: "~/.inboxclaw/tracking",
		},
		Drafts: DraftsConfig{
			Model:     "claude-sonnet-4-5",
			MaxTokens: 1024,
		},
		Watch: WatchConfig{
			Schedule: "*/15 * * * *",
		},
	}
}

// LoadConfig reads the JSON config at path, falling back to defaults when
// the file does not exist, then applies INBOXCLAW_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := env.Parse(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	// Config holds channel tokens; keep it owner-readable only.
	return os.WriteFile(path, data, 0o600)
}

// StorageRoot returns the tracking root with "~" expanded.
func (c *Config) StorageRoot() string {
	return expandHome(c.Storage.Root)
}

// RulesPath returns the scoring rules path with "~" expanded.
func (c *Config) RulesPath() string {
	return expandHome(c.Triage.RulesPath)
}

// EnabledChannels lists the channels switched on in this config.
func (c *Config) EnabledChannels() []string {
	var out []string
	if c.Channels.Email.Enabled {
		out = append(out, "email")
	}
	if c.Channels.Discord.Enabled {
		out = append(out, "discord")
	}
	if c.Channels.Telegram.Enabled {
		out = append(out, "telegram")
	}
	if c.Channels.Chatbot.Enabled {
		out = append(out, "chatbot")
	}
	return out
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
