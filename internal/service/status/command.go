package status

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	api "github.com/oshokin/zone-monitor/internal/api/grpc/zone"
	"github.com/oshokin/zone-monitor/internal/config"
	"github.com/oshokin/zone-monitor/internal/domain/zone"
	"github.com/oshokin/zone-monitor/internal/logger"
)

// Options configures the status report.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// Address overrides status.listen_addr from config when specified.
	Address string

	// Output receives the report, defaults to stdout when nil.
	Output io.Writer
}

// ErrStatusDisabled indicates that no status API address is known.
var ErrStatusDisabled = errors.New("status API address is not configured")

// Run fetches both snapshots and prints a report.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "zone-status")

	address := opts.Address
	timeout := config.DefaultTimeout

	if address == "" {
		cfg, err := config.Load(opts.ConfigPath)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}

		address = cfg.Status.ListenAddress
		timeout = cfg.DialTimeout
	}

	if address == "" {
		return ErrStatusDisabled
	}

	client, err := api.Dial(address, api.WithCallTimeout(timeout))
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Querying zone status", "address", address)

	return Report(ctx, client, outputOrStdout(opts.Output))
}

// Source provides the snapshots to report.
type Source interface {
	GetTelemetry(ctx context.Context) (zone.Telemetry, error)
	GetCommand(ctx context.Context) (zone.Command, error)
}

// Report fetches both snapshots from source and writes them to w.
func Report(ctx context.Context, source Source, w io.Writer) error {
	telemetry, err := source.GetTelemetry(ctx)
	if err != nil {
		return err
	}

	command, err := source.GetCommand(ctx)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, Format(telemetry, command))

	return err
}

// Format renders the snapshots as a fixed-width table.
func Format(t zone.Telemetry, c zone.Command) string {
	const rule = "======================================\n"

	return rule +
		"          Sensor Data Output          \n" +
		rule +
		fmt.Sprintf(" ID:                      %4d\n", t.ZoneID) +
		fmt.Sprintf(" Ultrasonic Distance: %6.2f cm\n", t.Distance) +
		fmt.Sprintf(" Temperature:          %6.2f °C\n", t.Temperature) +
		fmt.Sprintf(" Humidity:             %6.2f %%\n", t.Humidity) +
		fmt.Sprintf(" Pressure:                %4d\n", t.Pressure) +
		fmt.Sprintf(" Door Status:              %4d\n", t.Door) +
		fmt.Sprintf(" Window Status:            %4d\n", t.Window) +
		rule +
		fmt.Sprintf(" Window Command:      %8s\n", c.Window.String()) +
		fmt.Sprintf(" Sleep Alert:              %4d\n", c.SleepAlert) +
		rule
}

func outputOrStdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}

	return w
}
