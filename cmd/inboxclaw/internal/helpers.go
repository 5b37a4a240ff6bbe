package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/tinyland-inc/inboxclaw/pkg/channels"
	"github.com/tinyland-inc/inboxclaw/pkg/config"
	"github.com/tinyland-inc/inboxclaw/pkg/pipeline"
	anthropicprovider "github.com/tinyland-inc/inboxclaw/pkg/providers/anthropic"
	"github.com/tinyland-inc/inboxclaw/pkg/tracking"
	"github.com/tinyland-inc/inboxclaw/pkg/triage"
)

const Logo = "📬"

var (
	version   = "dev"
	gitCommit string
	buildTime string
	goVersion string
)

func GetConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".inboxclaw", "config.json")
}

func LoadConfig() (*config.Config, error) {
	return config.LoadConfig(GetConfigPath())
}

// BuildPipeline assembles a triage pipeline from config: one collector per
// enabled channel, the scorer over the rules file, the tracking store, and
// an optional draft writer.
func BuildPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	rules, err := triage.LoadScoringConfig(cfg.RulesPath())
	if err != nil {
		return nil, fmt.Errorf("loading scoring rules: %w", err)
	}

	store, err := tracking.NewStore(cfg.StorageRoot(), rules.SLAHours)
	if err != nil {
		return nil, fmt.Errorf("opening tracking store: %w", err)
	}

	var collectors []pipeline.Collector
	if cfg.Channels.Email.Enabled {
		collectors = append(collectors, channels.NewEmailCollector(cfg.Channels.Email))
	}
	if cfg.Channels.Discord.Enabled {
		dc, err := channels.NewDiscordCollector(cfg.Channels.Discord)
		if err != nil {
			return nil, fmt.Errorf("creating discord collector: %w", err)
		}
		collectors = append(collectors, dc)
	}
	if cfg.Channels.Telegram.Enabled {
		tc, err := channels.NewTelegramCollector(cfg.Channels.Telegram)
		if err != nil {
			return nil, fmt.Errorf("creating telegram collector: %w", err)
		}
		collectors = append(collectors, tc)
	}
	if cfg.Channels.Chatbot.Enabled {
		collectors = append(collectors, channels.NewChatbotCollector(cfg.Channels.Chatbot))
	}

	var drafter pipeline.Drafter
	if cfg.Drafts.Enabled && cfg.Drafts.APIKey != "" {
		drafter = anthropicprovider.NewProvider(cfg.Drafts)
	}

	return pipeline.New(triage.NewScorer(rules), store, drafter, collectors...), nil
}

// PrintCycleSummary writes the human-facing end-of-cycle summary.
func PrintCycleSummary(report *pipeline.CycleReport) {
	fmt.Printf("✓ Cycle complete: %d messages in %s\n", report.Total(), report.Duration.Round(time.Millisecond))
	fmt.Printf("  • Priority: %d high, %d medium, %d low\n", report.High, report.Medium, report.Low)
	if report.DraftsCreated > 0 {
		fmt.Printf("  • Drafts pending approval: %d\n", report.DraftsCreated)
	}
	if report.StorageErrors > 0 {
		fmt.Printf("  ⚠ Storage errors: %d\n", report.StorageErrors)
	}
	for ch, cr := range report.Channels {
		if cr.Failed {
			fmt.Printf("  ⚠ Channel %s failed this cycle\n", ch)
		}
	}
	if len(report.TopPriorities) > 0 {
		fmt.Println("  • Top priorities:")
		for _, m := range report.TopPriorities {
			fmt.Printf("    %d [%s] %s (due %s)\n",
				m.PriorityScore, m.Channel, m.DisplayName(), m.ResponseDue.Format("2006-01-02 15:04"))
		}
	}
}

// FormatVersion returns the version string with optional git commit
func FormatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}

// FormatBuildInfo returns build time and go version info
func FormatBuildInfo() (string, string) {
	build := buildTime
	goVer := goVersion
	if goVer == "" {
		goVer = runtime.Version()
	}
	return build, goVer
}

// GetVersion returns the version string
func GetVersion() string {
	return version
}
