package monitor

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/oshokin/zone-monitor/internal/hardware"
	"github.com/oshokin/zone-monitor/internal/logger"
	"github.com/oshokin/zone-monitor/internal/metrics"
	"github.com/oshokin/zone-monitor/internal/protocol"
	"github.com/oshokin/zone-monitor/internal/state"
)

// PublishPeriod is the fixed interval between publish cycles.
const PublishPeriod = 1 * time.Second

// Publisher acquires sensor readings and streams them to the supervisor.
type Publisher struct {
	// sensors is the acquisition collaborator.
	sensors hardware.SensorSource
	// telemetry receives the sensor merge.
	telemetry *state.Telemetry
	// writeTimeout bounds each frame write; zero disables the deadline.
	writeTimeout time.Duration
}

// NewPublisher creates a publisher.
func NewPublisher(sensors hardware.SensorSource, telemetry *state.Telemetry, writeTimeout time.Duration) *Publisher {
	return &Publisher{
		sensors:      sensors,
		telemetry:    telemetry,
		writeTimeout: writeTimeout,
	}
}

// Run publishes immediately and then once per PublishPeriod.
// It returns nil on cancellation and an error when a frame cannot be sent.
func (p *Publisher) Run(ctx context.Context, conn net.Conn) error {
	ctx = logger.WithName(ctx, "publisher")

	ticker := time.NewTicker(PublishPeriod)
	defer ticker.Stop()

	for {
		if err := p.publish(ctx, conn); err != nil {
			if ctx.Err() != nil {
				return nil
			}

			logger.ErrorKV(ctx, "Send failed, stopping publisher", "error", err)

			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// publish runs one cycle. A failed acquisition skips the cycle without error.
func (p *Publisher) publish(ctx context.Context, conn net.Conn) error {
	reading, err := p.sensors.Acquire(ctx)
	if err != nil {
		metrics.SensorFailures.Inc()
		logger.WarnKV(ctx, "Sensor acquisition failed, skipping cycle", "error", err)

		return nil
	}

	snapshot := p.telemetry.MergeSensors(reading)

	if p.writeTimeout > 0 {
		if err = conn.SetWriteDeadline(time.Now().Add(p.writeTimeout)); err != nil {
			return fmt.Errorf("set write deadline: %w", err)
		}
	}

	if err = protocol.WriteTelemetry(conn, snapshot); err != nil {
		return fmt.Errorf("send telemetry: %w", err)
	}

	metrics.TelemetrySent.Inc()

	logger.DebugKV(ctx, "Sensor data",
		"zone_id", snapshot.ZoneID,
		"distance_cm", fmt.Sprintf("%.2f", snapshot.Distance),
		"temperature_c", fmt.Sprintf("%.2f", snapshot.Temperature),
		"humidity_pct", fmt.Sprintf("%.2f", snapshot.Humidity),
		"pressure", snapshot.Pressure,
		"door", snapshot.Door.String(),
		"window", snapshot.Window.String(),
	)

	return nil
}
