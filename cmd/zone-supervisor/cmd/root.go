package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/zone-monitor/internal/config"
	"github.com/oshokin/zone-monitor/internal/logger"
	"github.com/oshokin/zone-monitor/internal/service/supervisor"
	"github.com/oshokin/zone-monitor/internal/version"
)

var (
	// logLevel is the minimum level of emitted log messages.
	logLevel string
	// writeTimeout bounds sending one command frame.
	writeTimeout = config.DefaultTimeout

	// rootCmd represents the base command for running the development supervisor.
	rootCmd = &cobra.Command{
		Use:   "zone-supervisor [listen-address]",
		Short: "Accept a zone monitor and exchange frames with it.",
		Long: `Development stand-in for the remote supervisor.

Listens for one zone connection at a time, logs every telemetry frame and sends
command frames typed on stdin: open, close, noop, sleep on, sleep off.
Listen address defaults to :12345.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := logger.SetLevelFromString(logLevel); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &supervisor.Options{
				ListenAddress: listenAddress,
				WriteTimeout:  writeTimeout,
			}

			return supervisor.Run(ctx, options)
		},
	}
)

// Execute runs the zone-supervisor CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "minimum log level (debug, info, warn, error)")
	rootCmd.Flags().DurationVarP(&writeTimeout, "write-timeout", "w", config.DefaultTimeout, "timeout for sending a command")
}
