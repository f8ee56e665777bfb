package monitor

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/oshokin/zone-monitor/internal/domain/zone"
	"github.com/oshokin/zone-monitor/internal/hardware"
	"github.com/oshokin/zone-monitor/internal/logger"
	"github.com/oshokin/zone-monitor/internal/notify"
	"github.com/oshokin/zone-monitor/internal/state"
	"github.com/oshokin/zone-monitor/internal/transport"
)

// Monitor owns the shared state and the four tasks of one zone.
type Monitor struct {
	// telemetry is the latest sensor snapshot plus the window status.
	telemetry *state.Telemetry
	// commands is the latest supervisor command.
	commands *state.Command

	// publisher sends telemetry on each connection.
	publisher *Publisher
	// receiver reads commands on each connection.
	receiver *Receiver
	// window drives the servo.
	window *WindowActuator
	// alerts drives the alarm.
	alerts *AlertMonitor
}

// New wires the tasks around freshly created state records.
func New(zoneID int32, devices *hardware.Devices, notifier notify.Notifier, writeTimeout time.Duration) *Monitor {
	telemetry := state.NewTelemetry(zoneID)
	commands := state.NewCommand()

	return &Monitor{
		telemetry: telemetry,
		commands:  commands,
		publisher: NewPublisher(devices.Sensors, telemetry, writeTimeout),
		receiver:  NewReceiver(commands),
		window:    NewWindowActuator(devices.Servo, commands, telemetry),
		alerts:    NewAlertMonitor(devices.Alarm, telemetry, commands, notifier),
	}
}

// Run starts every task and waits for all of them to return.
// first is an already established connection and may be nil.
// When the link gives up, the window and alert tasks keep running on the
// last known state until ctx is canceled.
func (m *Monitor) Run(ctx context.Context, link *transport.Link, first net.Conn) {
	ctx = logger.WithName(ctx, "monitor")

	var wg sync.WaitGroup

	wg.Go(func() {
		m.window.Run(ctx)
	})

	wg.Go(func() {
		m.alerts.Run(ctx)
	})

	wg.Go(func() {
		if err := link.Run(ctx, first, m.Session); err != nil {
			logger.WarnKV(ctx, "Network tasks stopped, continuing on last known state", "error", err)
		}
	})

	wg.Wait()
}

// Session runs the publisher and the receiver on conn until either fails.
// A fault in one closes conn so that the other unblocks.
func (m *Monitor) Session(ctx context.Context, conn net.Conn) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	var wg sync.WaitGroup

	wg.Go(func() {
		if err := m.publisher.Run(ctx, conn); err != nil {
			cancel(err)
		}
	})

	wg.Go(func() {
		if err := m.receiver.Run(ctx, conn); err != nil {
			cancel(err)
		}
	})

	wg.Wait()

	if err := context.Cause(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// Telemetry returns a copy of the telemetry state.
func (m *Monitor) Telemetry(context.Context) zone.Telemetry {
	return m.telemetry.Read()
}

// Command returns a copy of the command state.
func (m *Monitor) Command(context.Context) zone.Command {
	return m.commands.Read()
}
