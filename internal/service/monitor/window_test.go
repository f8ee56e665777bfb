package monitor

import (
	"context"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/zone-monitor/internal/domain/zone"
	"github.com/oshokin/zone-monitor/internal/state"
)

// windowHarness drives a WindowActuator by hand with an explicit clock.
type windowHarness struct {
	actuator  *WindowActuator
	servo     *recordingServo
	commands  *state.Command
	telemetry *state.Telemetry
	now       time.Time
}

func newWindowHarness() *windowHarness {
	servo := new(recordingServo)
	commands := state.NewCommand()
	telemetry := state.NewTelemetry(1)

	return &windowHarness{
		actuator:  NewWindowActuator(servo, commands, telemetry),
		servo:     servo,
		commands:  commands,
		telemetry: telemetry,
		now:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// command sets the window command and steps through one full travel time.
func (h *windowHarness) command(cmd zone.WindowCommand) {
	h.commands.Write(func(c *zone.Command) {
		c.Window = cmd
	})

	h.step()
	h.advance(WindowTravel)
}

func (h *windowHarness) step() {
	h.actuator.Step(context.Background(), h.now)
}

func (h *windowHarness) advance(d time.Duration) {
	h.now = h.now.Add(d)
	h.step()
}

// TestWindowActuator_InitialNoop never moves before a command arrives.
func TestWindowActuator_InitialNoop(t *testing.T) {
	t.Parallel()

	h := newWindowHarness()

	for range 30 {
		h.advance(WindowPollInterval)
	}

	require.Empty(t, h.servo.Calls())
	require.Equal(t, zone.StatusClosed, h.telemetry.Read().Window)
}

// TestWindowActuator_SameCommandOnce actuates once for a repeated command.
func TestWindowActuator_SameCommandOnce(t *testing.T) {
	t.Parallel()

	h := newWindowHarness()

	h.command(zone.WindowOpen)
	h.command(zone.WindowOpen)

	for range 10 {
		h.advance(WindowPollInterval)
	}

	require.Equal(t, []zone.Direction{zone.DirectionForward, zone.DirectionStop}, h.servo.directions())
}

// TestWindowActuator_Sequence follows the command sequence unset, 1, 1, 0, 1.
func TestWindowActuator_Sequence(t *testing.T) {
	t.Parallel()

	h := newWindowHarness()

	h.step()

	for _, cmd := range []zone.WindowCommand{zone.WindowOpen, zone.WindowOpen, zone.WindowClose, zone.WindowOpen} {
		h.command(cmd)
	}

	require.Equal(t, []zone.Direction{
		zone.DirectionForward, zone.DirectionStop,
		zone.DirectionReverse, zone.DirectionStop,
		zone.DirectionForward, zone.DirectionStop,
	}, h.servo.directions())

	for _, call := range h.servo.Calls() {
		if call.direction == zone.DirectionStop {
			require.Zero(t, call.speed)
		} else {
			require.Equal(t, WindowSpeed, call.speed)
		}
	}

	require.Equal(t, zone.StatusOpen, h.telemetry.Read().Window)
}

// TestWindowActuator_StatusAtMotionStart records the target before travel ends.
func TestWindowActuator_StatusAtMotionStart(t *testing.T) {
	t.Parallel()

	h := newWindowHarness()

	h.commands.Replace(zone.Command{Window: zone.WindowOpen})
	h.step()

	require.Equal(t, zone.StatusOpen, h.telemetry.Read().Window)
	require.Equal(t, []zone.Direction{zone.DirectionForward}, h.servo.directions())

	h.advance(WindowTravel - time.Millisecond)
	require.Len(t, h.servo.Calls(), 1)

	h.advance(time.Millisecond)
	require.Equal(t, []zone.Direction{zone.DirectionForward, zone.DirectionStop}, h.servo.directions())
}

// TestWindowActuator_ChangeDuringTravel acts on a change only after travel ends.
func TestWindowActuator_ChangeDuringTravel(t *testing.T) {
	t.Parallel()

	h := newWindowHarness()

	h.commands.Replace(zone.Command{Window: zone.WindowOpen})
	h.step()

	h.commands.Replace(zone.Command{Window: zone.WindowClose})
	h.advance(time.Second)
	require.Equal(t, zone.StatusOpen, h.telemetry.Read().Window)

	h.advance(time.Second)
	h.advance(WindowPollInterval)

	require.Equal(t, []zone.Direction{
		zone.DirectionForward, zone.DirectionStop, zone.DirectionReverse,
	}, h.servo.directions())
	require.Equal(t, zone.StatusClosed, h.telemetry.Read().Window)
}

// TestWindowActuator_OtherValuesIgnored treats any non 0/1 command as noop.
func TestWindowActuator_OtherValuesIgnored(t *testing.T) {
	t.Parallel()

	h := newWindowHarness()

	h.command(7)
	h.command(zone.WindowNoop)
	require.Empty(t, h.servo.Calls())
}

// TestWindowActuator_ReopenAfterNoop drives the servo again when the same
// position is requested after an intervening noop.
func TestWindowActuator_ReopenAfterNoop(t *testing.T) {
	t.Parallel()

	h := newWindowHarness()

	h.command(zone.WindowOpen)
	h.command(zone.WindowNoop)
	h.command(zone.WindowOpen)

	require.Equal(t, []zone.Direction{
		zone.DirectionForward, zone.DirectionStop,
		zone.DirectionForward, zone.DirectionStop,
	}, h.servo.directions())

	h.command(7)
	h.command(zone.WindowClose)
	h.command(zone.WindowNoop)
	h.command(zone.WindowClose)

	require.Equal(t, []zone.Direction{
		zone.DirectionForward, zone.DirectionStop,
		zone.DirectionForward, zone.DirectionStop,
		zone.DirectionReverse, zone.DirectionStop,
		zone.DirectionReverse, zone.DirectionStop,
	}, h.servo.directions())
	require.Equal(t, zone.StatusClosed, h.telemetry.Read().Window)
}

// TestWindowActuator_StopOnCancel halts the servo when shut down mid-travel.
func TestWindowActuator_StopOnCancel(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h := newWindowHarness()
		h.commands.Replace(zone.Command{Window: zone.WindowOpen})

		ctx, cancel := context.WithCancel(context.Background())

		var wg sync.WaitGroup

		wg.Go(func() {
			h.actuator.Run(ctx)
		})

		time.Sleep(500 * time.Millisecond)
		cancel()
		wg.Wait()

		require.Equal(t, []zone.Direction{zone.DirectionForward, zone.DirectionStop}, h.servo.directions())
	})
}

// TestWindowActuator_RunTiming checks the travel length under the real loop.
func TestWindowActuator_RunTiming(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h := newWindowHarness()

		ctx, cancel := context.WithCancel(context.Background())

		var wg sync.WaitGroup

		wg.Go(func() {
			h.actuator.Run(ctx)
		})

		time.Sleep(time.Second)
		h.commands.Replace(zone.Command{Window: zone.WindowClose})

		time.Sleep(WindowPollInterval)
		synctest.Wait()
		require.Equal(t, []zone.Direction{zone.DirectionReverse}, h.servo.directions())

		time.Sleep(WindowTravel)
		synctest.Wait()

		cancel()
		wg.Wait()

		calls := h.servo.Calls()
		require.Len(t, calls, 2)
		require.Equal(t, zone.DirectionStop, calls[1].direction)
		require.Equal(t, WindowTravel, calls[1].at.Sub(calls[0].at))
	})
}
