package onboard

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/inboxclaw/cmd/inboxclaw/internal"
	"github.com/tinyland-inc/inboxclaw/pkg/config"
	"github.com/tinyland-inc/inboxclaw/pkg/triage"
)

func NewOnboardCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Write a starter config and default scoring rules",
		Args:  cobra.NoArgs,
		Example: `  inboxclaw onboard
  inboxclaw onboard --force`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return onboardCmd(force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config and rules")

	return cmd
}

func onboardCmd(force bool) error {
	configPath := internal.GetConfigPath()
	if _, err := os.Stat(configPath); err == nil && !force {
		fmt.Printf("⚠ Config already exists at %s (use --force to overwrite)\n", configPath)
		return nil
	}

	cfg := config.DefaultConfig()
	if err := config.SaveConfig(configPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Printf("✓ Config written to %s\n", configPath)

	rulesPath := cfg.RulesPath()
	if _, err := os.Stat(rulesPath); os.IsNotExist(err) || force {
		if err := triage.SaveScoringConfig(rulesPath, triage.DefaultScoringConfig()); err != nil {
			return fmt.Errorf("writing scoring rules: %w", err)
		}
		fmt.Printf("✓ Scoring rules written to %s\n", rulesPath)
	}

	fmt.Println("\nNext steps:")
	fmt.Println("  1. Add channel tokens to the config (or INBOXCLAW_* env vars)")
	fmt.Println("  2. Enable the channels you want triaged")
	fmt.Println("  3. Run `inboxclaw triage`")
	return nil
}
