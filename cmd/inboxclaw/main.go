package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/inboxclaw/cmd/inboxclaw/internal"
	"github.com/tinyland-inc/inboxclaw/cmd/inboxclaw/internal/onboard"
	"github.com/tinyland-inc/inboxclaw/cmd/inboxclaw/internal/triage"
	"github.com/tinyland-inc/inboxclaw/cmd/inboxclaw/internal/version"
	"github.com/tinyland-inc/inboxclaw/cmd/inboxclaw/internal/watch"
)

func NewInboxclawCommand() *cobra.Command {
	short := fmt.Sprintf("%s inboxclaw - Multi-channel message triage v%s\n\n", internal.Logo, internal.GetVersion())

	cmd := &cobra.Command{
		Use:     "inboxclaw",
		Short:   short,
		Example: "inboxclaw triage",
	}

	cmd.AddCommand(
		onboard.NewOnboardCommand(),
		triage.NewTriageCommand(),
		watch.NewWatchCommand(),
		version.NewVersionCommand(),
	)

	return cmd
}

func main() {
	cmd := NewInboxclawCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
