package triage

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tinyland-inc/inboxclaw/pkg/message"
)

// ErrConfigurationMissing is returned when required scoring configuration is
// absent. The pipeline refuses to run rather than triage with undefined SLAs.
var ErrConfigurationMissing = errors.New("scoring configuration missing")

// ProjectRule links a text keyword to a project label. Rules are evaluated
// in declaration order and the first match wins, so precedence is a declared
// property of the list rather than an artifact of map iteration.
type ProjectRule struct {
	Keyword string `yaml:"keyword"`
	Project string `yaml:"project"`
}

// ScoringConfig holds the weight tables and SLA constants for one pipeline
// process. It is loaded once at startup and never mutated afterwards; every
// component receives it explicitly.
type ScoringConfig struct {
	UrgencyWeights map[string]int              `yaml:"urgency_weights"`
	VIPSenders     []string                    `yaml:"vip_senders"`
	FreeProviders  []string                    `yaml:"free_providers"`
	ProjectRules   []ProjectRule               `yaml:"project_rules"`
	Interrogatives []string                    `yaml:"interrogatives"`
	SLAHours       map[message.Channel]float64 `yaml:"sla_hours"`
}

// DefaultScoringConfig returns the reference weight tables and SLAs.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		UrgencyWeights: map[string]int{
			"urgent":         40,
			"asap":           40,
			"critical":       40,
			"emergency":      40,
			"immediately":    35,
			"important":      30,
			"deadline":       30,
			"time-sensitive": 30,
			"priority":       25,
			"soon":           20,
			"quick":          15,
			"fyi":            -10,
			"no rush":        -15,
		},
		VIPSenders: []string{
			"@plausiblepotentials.com",
		},
		FreeProviders: []string{
			"gmail.com", "yahoo.com", "outlook.com", "hotmail.com",
		},
		ProjectRules: []ProjectRule{
			{Keyword: "c3 alliance", Project: "C3 Alliance"},
			{Keyword: "c3alliance", Project: "C3 Alliance"},
			{Keyword: "plausible potentials", Project: "PlausiblePotentials"},
			{Keyword: "cocoa", Project: "CoCoA"},
			{Keyword: "cooperative", Project: "C3 Alliance"},
			{Keyword: "e2c", Project: "C3 Alliance"},
			{Keyword: "exit to cooperative", Project: "C3 Alliance"},
		},
		Interrogatives: []string{
			"how", "what", "when", "where", "why", "who",
			"can you", "could you", "would you",
		},
		SLAHours: map[message.Channel]float64{
			message.ChannelEmail:    24,
			message.ChannelTelegram: 4,
			message.ChannelDiscord:  8,
			message.ChannelChatbot:  1,
		},
	}
}

// Validate checks that the tables required for scoring are present.
func (c ScoringConfig) Validate() error {
	var errs []error

	if len(c.UrgencyWeights) == 0 {
		errs = append(errs, fmt.Errorf("%w: urgency_weights is empty", ErrConfigurationMissing))
	}
	if len(c.SLAHours) == 0 {
		errs = append(errs, fmt.Errorf("%w: sla_hours is empty", ErrConfigurationMissing))
	}
	for _, ch := range message.Channels {
		if hours, ok := c.SLAHours[ch]; ok && hours < 0 {
			errs = append(errs, fmt.Errorf("%w: negative SLA for channel %s", ErrConfigurationMissing, ch))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// LoadScoringConfig reads a YAML rules file and validates it. A missing file
// yields the defaults; a present but invalid file is a startup error.
func LoadScoringConfig(path string) (ScoringConfig, error) {
	cfg := DefaultScoringConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return ScoringConfig{}, fmt.Errorf("reading scoring rules: %w", err)
	}

	var fileCfg ScoringConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return ScoringConfig{}, fmt.Errorf("parsing scoring rules %s: %w", path, err)
	}

	if len(fileCfg.UrgencyWeights) > 0 {
		cfg.UrgencyWeights = fileCfg.UrgencyWeights
	}
	if len(fileCfg.VIPSenders) > 0 {
		cfg.VIPSenders = fileCfg.VIPSenders
	}
	if len(fileCfg.FreeProviders) > 0 {
		cfg.FreeProviders = fileCfg.FreeProviders
	}
	if len(fileCfg.ProjectRules) > 0 {
		cfg.ProjectRules = fileCfg.ProjectRules
	}
	if len(fileCfg.Interrogatives) > 0 {
		cfg.Interrogatives = fileCfg.Interrogatives
	}
	if len(fileCfg.SLAHours) > 0 {
		cfg.SLAHours = fileCfg.SLAHours
	}

	if err := cfg.Validate(); err != nil {
		return ScoringConfig{}, err
	}
	return cfg, nil
}

// SaveScoringConfig writes the rules file, used by onboarding.
func SaveScoringConfig(path string, cfg ScoringConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
