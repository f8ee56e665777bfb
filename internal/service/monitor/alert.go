package monitor

import (
	"context"
	"time"

	"github.com/oshokin/zone-monitor/internal/domain/zone"
	"github.com/oshokin/zone-monitor/internal/hardware"
	"github.com/oshokin/zone-monitor/internal/logger"
	"github.com/oshokin/zone-monitor/internal/metrics"
	"github.com/oshokin/zone-monitor/internal/notify"
	"github.com/oshokin/zone-monitor/internal/state"
	"github.com/oshokin/zone-monitor/internal/wait"
)

const (
	// AlertPollInterval is the pause between evaluation cycles.
	AlertPollInterval = 100 * time.Millisecond
	// ProximityThreshold is the largest distance in cm that counts as an intrusion.
	ProximityThreshold = 50.0
	// PressureThreshold is the raw pressure value that triggers an alert.
	PressureThreshold = 240
	// ShortPulseOn is how long the alarm sounds for proximity and pressure alerts.
	ShortPulseOn = 500 * time.Millisecond
	// ShortPulseOff is the silence following a short pulse.
	ShortPulseOff = 500 * time.Millisecond
	// SleepPulseOn is how long the alarm sounds for a sleep alert.
	SleepPulseOn = 2 * time.Second
)

// pulse is the on/off shape of one alarm activation.
type pulse struct {
	on  time.Duration
	off time.Duration
}

// pulseFor returns the alarm shape of an alert kind.
func pulseFor(kind notify.Kind) pulse {
	if kind == notify.KindSleep {
		return pulse{on: SleepPulseOn}
	}

	return pulse{on: ShortPulseOn, off: ShortPulseOff}
}

// Evaluate lists the alerts that hold for the given snapshots, in firing order.
// Conditions are independent; none suppresses another.
func Evaluate(telemetry zone.Telemetry, command zone.Command) []notify.Kind {
	var kinds []notify.Kind

	if telemetry.Door.IsSet() && telemetry.HasDistance() && telemetry.Distance <= ProximityThreshold {
		kinds = append(kinds, notify.KindProximity)
	}

	if telemetry.Pressure >= PressureThreshold {
		kinds = append(kinds, notify.KindPressure)
	}

	if command.SleepAlert.IsSet() {
		kinds = append(kinds, notify.KindSleep)
	}

	return kinds
}

// AlertMonitor pulses the alarm while alert conditions hold.
type AlertMonitor struct {
	// alarm drives the buzzer and vibrator.
	alarm *hardware.Alarm
	// telemetry is read once per cycle.
	telemetry *state.Telemetry
	// commands is read once per cycle, after telemetry.
	commands *state.Command
	// notifier receives one event per fired pulse.
	notifier notify.Notifier
}

// NewAlertMonitor creates an alert monitor.
func NewAlertMonitor(
	alarm *hardware.Alarm,
	telemetry *state.Telemetry,
	commands *state.Command,
	notifier notify.Notifier,
) *AlertMonitor {
	return &AlertMonitor{
		alarm:     alarm,
		telemetry: telemetry,
		commands:  commands,
		notifier:  notifier,
	}
}

// Run evaluates alerts every AlertPollInterval until ctx is canceled.
// The alarm is always off when Run returns.
func (a *AlertMonitor) Run(ctx context.Context) {
	ctx = logger.WithName(ctx, "alert")

	for {
		if !a.cycle(ctx) {
			return
		}

		if !wait.Sleep(ctx, AlertPollInterval) {
			return
		}
	}
}

// cycle fires every pulse that holds. It reports false when interrupted by cancellation.
func (a *AlertMonitor) cycle(ctx context.Context) bool {
	telemetry := a.telemetry.Read()
	command := a.commands.Read()

	for _, kind := range Evaluate(telemetry, command) {
		if !a.fire(ctx, kind, telemetry) {
			return false
		}
	}

	return ctx.Err() == nil
}

// fire plays one pulse and reports the event.
func (a *AlertMonitor) fire(ctx context.Context, kind notify.Kind, telemetry zone.Telemetry) bool {
	event := notify.NewEvent(kind, time.Now(), telemetry)

	metrics.AlertsFired.WithLabelValues(string(kind)).Inc()

	if err := a.notifier.Notify(ctx, event); err != nil {
		logger.ErrorKV(ctx, "Alert notification failed", "kind", kind, "error", err)
	}

	shape := pulseFor(kind)

	a.switchAlarm(ctx, true)

	completed := wait.Sleep(ctx, shape.on)

	a.switchAlarm(ctx, false)

	if !completed {
		return false
	}

	if shape.off > 0 {
		return wait.Sleep(ctx, shape.off)
	}

	return true
}

// switchAlarm sets both outputs. Errors are logged and counted.
func (a *AlertMonitor) switchAlarm(ctx context.Context, on bool) {
	var err error
	if on {
		err = a.alarm.On()
	} else {
		err = a.alarm.Off()
	}

	if err != nil {
		metrics.ActuatorErrors.WithLabelValues("alarm").Inc()
		logger.ErrorKV(ctx, "Alarm output failed", "on", on, "error", err)
	}
}
