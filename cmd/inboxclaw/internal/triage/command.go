package triage

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/inboxclaw/cmd/inboxclaw/internal"
	"github.com/tinyland-inc/inboxclaw/pkg/logger"
)

func NewTriageCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:     "triage",
		Aliases: []string{"t"},
		Short:   "Run one triage cycle over all enabled channels",
		Args:    cobra.NoArgs,
		Example: `  inboxclaw triage
  inboxclaw triage --debug`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return triageCmd(debug)
		},
	}

	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	return cmd
}

func triageCmd(debug bool) error {
	if debug {
		logger.SetLevel(logger.DEBUG)
		fmt.Println("🔍 Debug mode enabled")
	}

	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	enabled := cfg.EnabledChannels()
	if len(enabled) == 0 {
		fmt.Println("⚠ Warning: No channels enabled, run `inboxclaw onboard` first")
		return nil
	}
	fmt.Printf("✓ Channels enabled: %v\n", enabled)

	p, err := internal.BuildPipeline(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := p.RunCycle(ctx)
	if err != nil {
		return err
	}

	internal.PrintCycleSummary(report)
	fmt.Printf("✓ Dashboard: %s\n", cfg.StorageRoot())
	return nil
}
