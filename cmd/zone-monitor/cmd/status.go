package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/zone-monitor/internal/service/status"
)

// statusCmd prints the snapshots of a running monitor.
//
//nolint:gochecknoglobals // Cobra commands are package-level by convention.
var statusCmd = &cobra.Command{
	Use:   "status [address]",
	Short: "Print the telemetry and command state of a running monitor.",
	Long: `Queries the gRPC status API of a running zone monitor and prints its current
telemetry and command snapshots. The address defaults to status.listen_addr from config.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		var address string
		if len(args) > 0 {
			address = args[0]
		}

		options := &status.Options{
			ConfigPath: configPath,
			Address:    address,
			Output:     cmd.OutOrStdout(),
		}

		return status.Run(ctx, options)
	},
}
