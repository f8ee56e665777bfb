package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/oshokin/zone-monitor/internal/domain/zone"
	"github.com/oshokin/zone-monitor/internal/logger"
	"github.com/oshokin/zone-monitor/internal/protocol"
)

// serveZone logs telemetry from conn and writes queued commands to it
// until the zone disconnects or ctx is canceled.
func serveZone(ctx context.Context, conn net.Conn, commands <-chan zone.Command, writeTimeout time.Duration) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	go func() {
		for {
			frame, err := protocol.ReadTelemetry(conn)
			if err != nil {
				cancel(err)
				return
			}

			logger.InfoKV(ctx, "Telemetry",
				"zone_id", frame.ZoneID,
				"distance_cm", fmt.Sprintf("%6.2f", frame.Distance),
				"temperature_c", fmt.Sprintf("%6.2f", frame.Temperature),
				"humidity_pct", fmt.Sprintf("%6.2f", frame.Humidity),
				"pressure", frame.Pressure,
				"door", frame.Door.String(),
				"window", frame.Window.String(),
			)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ignoreCanceled(context.Cause(ctx))
		case cmd := <-commands:
			if writeTimeout > 0 {
				if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
					return fmt.Errorf("set write deadline: %w", err)
				}
			}

			if err := protocol.WriteCommand(conn, cmd); err != nil {
				return fmt.Errorf("send command: %w", err)
			}

			logger.InfoKV(ctx, "Command sent", "window", cmd.Window.String(), "sleep_alert", cmd.SleepAlert.IsSet())
		}
	}
}

// ignoreCanceled hides plain cancellation, keeping real faults.
func ignoreCanceled(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}
