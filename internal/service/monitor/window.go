package monitor

import (
	"context"
	"time"

	"github.com/oshokin/zone-monitor/internal/domain/zone"
	"github.com/oshokin/zone-monitor/internal/hardware"
	"github.com/oshokin/zone-monitor/internal/logger"
	"github.com/oshokin/zone-monitor/internal/metrics"
	"github.com/oshokin/zone-monitor/internal/state"
)

const (
	// WindowPollInterval is how often the command state is sampled.
	WindowPollInterval = 100 * time.Millisecond
	// WindowTravel is how long the servo runs for a full open or close.
	WindowTravel = 2 * time.Second
	// WindowSpeed is the servo speed percentage used while travelling.
	WindowSpeed = 100
)

// windowPhase tracks where the window is in its travel sequence.
type windowPhase int

const (
	phaseUnknown windowPhase = iota
	phaseOpening
	phaseOpen
	phaseClosing
	phaseClosed
)

func (p windowPhase) moving() bool {
	return p == phaseOpening || p == phaseClosing
}

func (p windowPhase) String() string {
	switch p {
	case phaseOpening:
		return "opening"
	case phaseOpen:
		return "open"
	case phaseClosing:
		return "closing"
	case phaseClosed:
		return "closed"
	case phaseUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// WindowActuator moves the window whenever the commanded position changes.
// It is the only writer of the telemetry window status.
type WindowActuator struct {
	// servo moves the window.
	servo hardware.Servo
	// commands is sampled between travel sequences.
	commands *state.Command
	// telemetry receives the window status when motion starts.
	telemetry *state.Telemetry

	// phase is the current travel phase.
	phase windowPhase
	// deadline ends the running travel sequence.
	deadline time.Time
	// lastCommand is the window command last acted upon.
	lastCommand zone.WindowCommand
}

// NewWindowActuator creates an actuator that has not acted on any command yet.
func NewWindowActuator(servo hardware.Servo, commands *state.Command, telemetry *state.Telemetry) *WindowActuator {
	return &WindowActuator{
		servo:       servo,
		commands:    commands,
		telemetry:   telemetry,
		phase:       phaseUnknown,
		lastCommand: zone.WindowNoop,
	}
}

// Run steps the actuator every WindowPollInterval until ctx is canceled.
// A travel sequence interrupted by cancellation stops the servo.
func (w *WindowActuator) Run(ctx context.Context) {
	ctx = logger.WithName(ctx, "window")

	ticker := time.NewTicker(WindowPollInterval)
	defer ticker.Stop()

	defer func() {
		if w.phase.moving() {
			w.drive(ctx, zone.DirectionStop, 0)
		}
	}()

	for {
		w.Step(ctx, time.Now())

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Step advances the actuator to now. While a travel sequence runs the command
// state is not sampled; a change that happened meanwhile is acted upon after it ends.
// Every change to open or close drives the servo, even towards the position already reached.
func (w *WindowActuator) Step(ctx context.Context, now time.Time) {
	if w.phase.moving() {
		if now.Before(w.deadline) {
			return
		}

		w.drive(ctx, zone.DirectionStop, 0)

		if w.phase == phaseOpening {
			w.phase = phaseOpen
		} else {
			w.phase = phaseClosed
		}

		logger.InfoKV(ctx, "Window travel finished", "phase", w.phase.String())

		return
	}

	cmd := w.commands.Read().Window
	if cmd == w.lastCommand {
		return
	}

	w.lastCommand = cmd

	switch cmd {
	case zone.WindowOpen:
		w.start(ctx, now, zone.DirectionForward, zone.StatusOpen, phaseOpening)
	case zone.WindowClose:
		w.start(ctx, now, zone.DirectionReverse, zone.StatusClosed, phaseClosing)
	case zone.WindowNoop:
	default:
	}
}

// start begins a travel sequence and records the target position.
func (w *WindowActuator) start(
	ctx context.Context,
	now time.Time,
	direction zone.Direction,
	target zone.Status,
	phase windowPhase,
) {
	logger.InfoKV(ctx, "Moving window", "direction", direction.String(), "target", target.String())

	w.telemetry.SetWindow(target)
	w.drive(ctx, direction, WindowSpeed)

	w.phase = phase
	w.deadline = now.Add(WindowTravel)

	metrics.WindowActuations.WithLabelValues(direction.String()).Inc()
}

// drive sets the servo. Errors are logged and counted; the sequence continues.
func (w *WindowActuator) drive(ctx context.Context, direction zone.Direction, speed int) {
	if err := w.servo.SetSpeed(direction, speed); err != nil {
		metrics.ActuatorErrors.WithLabelValues("servo").Inc()
		logger.ErrorKV(ctx, "Servo command failed", "direction", direction.String(), "error", err)
	}
}
