package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/zone-monitor/internal/config"
	"github.com/oshokin/zone-monitor/internal/service/monitor"
	"github.com/oshokin/zone-monitor/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// rootCmd represents the base command for running the zone monitor.
	rootCmd = &cobra.Command{
		Use:   "zone-monitor [supervisor-address]",
		Short: "Monitor a zone and stream its telemetry to the supervisor.",
		Long: `Polls the zone sensors once per second and streams telemetry frames to the supervisor.

Window commands received from the supervisor drive the window servo. The buzzer and
vibrator pulse while the door is open with something within 50 cm, while pressure
reaches 240, or while the supervisor requests a sleep alert.
The supervisor address can be provided as argument to override config (e.g., 10.0.0.1:12345).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var supervisorAddress string
			if len(args) > 0 {
				supervisorAddress = args[0]
			}

			options := &monitor.Options{
				ConfigPath:        configPath,
				SupervisorAddress: supervisorAddress,
			}

			return monitor.Run(ctx, options)
		},
	}
)

// Execute runs the zone-monitor CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(statusCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
}
