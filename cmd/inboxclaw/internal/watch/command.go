package watch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/adhocore/gronx"
	"github.com/spf13/cobra"

	"github.com/tinyland-inc/inboxclaw/cmd/inboxclaw/internal"
	"github.com/tinyland-inc/inboxclaw/pkg/logger"
	"github.com/tinyland-inc/inboxclaw/pkg/pipeline"
)

func NewWatchCommand() *cobra.Command {
	var debug bool
	var schedule string

	cmd := &cobra.Command{
		Use:     "watch",
		Aliases: []string{"w"},
		Short:   "Run triage cycles on a cron schedule until interrupted",
		Args:    cobra.NoArgs,
		Example: `  inboxclaw watch
  inboxclaw watch --schedule "*/5 * * * *"`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return watchCmd(debug, schedule)
		},
	}

	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	cmd.Flags().StringVar(&schedule, "schedule", "",
		"Cron expression overriding the configured watch schedule")

	return cmd
}

func watchCmd(debug bool, schedule string) error {
	if debug {
		logger.SetLevel(logger.DEBUG)
		fmt.Println("🔍 Debug mode enabled")
	}

	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	if schedule == "" {
		schedule = cfg.Watch.Schedule
	}
	if !gronx.New().IsValid(schedule) {
		return fmt.Errorf("invalid cron schedule %q", schedule)
	}

	p, err := internal.BuildPipeline(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("✓ Watching on schedule %q\n", schedule)
	fmt.Println("Press Ctrl+C to stop")

	// First cycle runs immediately; later ones follow the schedule.
	runOnce(ctx, p)

	for {
		next, err := gronx.NextTick(schedule, false)
		if err != nil {
			return fmt.Errorf("computing next tick: %w", err)
		}

		select {
		case <-ctx.Done():
			fmt.Println("\n✓ Watch stopped")
			return nil
		case <-time.After(time.Until(next)):
			runOnce(ctx, p)
		}
	}
}

func runOnce(ctx context.Context, p *pipeline.Pipeline) {
	report, err := p.RunCycle(ctx)
	if err != nil {
		logger.WarnCF("watch", "Cycle aborted", map[string]any{"error": err.Error()})
		return
	}
	internal.PrintCycleSummary(report)
}
