package monitor

import (
	"context"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/zone-monitor/internal/domain/zone"
	"github.com/oshokin/zone-monitor/internal/hardware"
	"github.com/oshokin/zone-monitor/internal/notify"
	"github.com/oshokin/zone-monitor/internal/state"
)

// TestEvaluate checks every alert condition at its boundaries.
func TestEvaluate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		telemetry zone.Telemetry
		command   zone.Command
		want      []notify.Kind
	}{
		{
			name:      "door open at threshold",
			telemetry: zone.Telemetry{Door: zone.StatusOpen, Distance: 50.0},
			want:      []notify.Kind{notify.KindProximity},
		},
		{
			name:      "door open just beyond threshold",
			telemetry: zone.Telemetry{Door: zone.StatusOpen, Distance: 50.01},
		},
		{
			name:      "door open without reading",
			telemetry: zone.Telemetry{Door: zone.StatusOpen, Distance: 0},
		},
		{
			name:      "door open negative reading",
			telemetry: zone.Telemetry{Door: zone.StatusOpen, Distance: -1},
		},
		{
			name:      "door closed and close object",
			telemetry: zone.Telemetry{Door: zone.StatusClosed, Distance: 10},
		},
		{
			name:      "pressure below threshold",
			telemetry: zone.Telemetry{Pressure: 239},
		},
		{
			name:      "pressure at threshold",
			telemetry: zone.Telemetry{Pressure: 240},
			want:      []notify.Kind{notify.KindPressure},
		},
		{
			name:    "sleep alert",
			command: zone.Command{Window: zone.WindowNoop, SleepAlert: zone.StatusOpen},
			want:    []notify.Kind{notify.KindSleep},
		},
		{
			name:      "all conditions in order",
			telemetry: zone.Telemetry{Door: zone.StatusOpen, Distance: 1, Pressure: 500},
			command:   zone.Command{SleepAlert: zone.StatusOpen},
			want:      []notify.Kind{notify.KindProximity, notify.KindPressure, notify.KindSleep},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.want, Evaluate(tt.telemetry, tt.command))
		})
	}
}

// alertHarness runs an AlertMonitor on recording outputs.
type alertHarness struct {
	rig       *testRig
	telemetry *state.Telemetry
	commands  *state.Command
	monitor   *AlertMonitor
}

func newAlertHarness() *alertHarness {
	rig := newTestRig()
	telemetry := state.NewTelemetry(3)
	commands := state.NewCommand()

	return &alertHarness{
		rig:       rig,
		telemetry: telemetry,
		commands:  commands,
		monitor: NewAlertMonitor(
			&hardware.Alarm{Buzzer: rig.buzzer, Vibrator: rig.vibrator},
			telemetry,
			commands,
			rig.notifier,
		),
	}
}

// offsets converts switch events to (state, offset from start) pairs.
func offsets(events []switchEvent, start time.Time) []switchEvent {
	result := make([]switchEvent, 0, len(events))

	for _, e := range events {
		result = append(result, switchEvent{on: e.on, at: time.Time{}.Add(e.at.Sub(start))})
	}

	return result
}

func at(on bool, d time.Duration) switchEvent {
	return switchEvent{on: on, at: time.Time{}.Add(d)}
}

// TestAlertMonitor_PressurePulse repeats 500 ms pulses while pressure stays high.
func TestAlertMonitor_PressurePulse(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h := newAlertHarness()
		h.telemetry.MergeSensors(zone.Telemetry{Pressure: PressureThreshold})

		ctx, cancel := context.WithCancel(context.Background())
		start := time.Now()

		var wg sync.WaitGroup

		wg.Go(func() {
			h.monitor.Run(ctx)
		})

		time.Sleep(1200 * time.Millisecond)
		cancel()
		wg.Wait()

		require.Equal(t, []switchEvent{
			at(true, 0),
			at(false, 500*time.Millisecond),
			at(true, 1100*time.Millisecond),
			at(false, 1200*time.Millisecond),
		}, offsets(h.rig.buzzer.Events(), start))

		require.False(t, h.rig.vibrator.IsOn())
		require.Equal(t, []notify.Kind{notify.KindPressure, notify.KindPressure}, h.rig.notifier.Kinds())
	})
}

// TestAlertMonitor_SequentialPulses plays every firing condition back to back.
func TestAlertMonitor_SequentialPulses(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h := newAlertHarness()
		h.telemetry.MergeSensors(zone.Telemetry{Door: zone.StatusOpen, Distance: 20, Pressure: 300})
		h.commands.Replace(zone.Command{Window: zone.WindowNoop, SleepAlert: zone.StatusOpen})

		ctx, cancel := context.WithCancel(context.Background())
		start := time.Now()

		var wg sync.WaitGroup

		wg.Go(func() {
			h.monitor.Run(ctx)
		})

		time.Sleep(4 * time.Second)
		synctest.Wait()

		h.telemetry.MergeSensors(zone.Telemetry{})
		h.commands.Replace(zone.InitialCommand())

		time.Sleep(time.Second)
		cancel()
		wg.Wait()

		require.Equal(t, []switchEvent{
			at(true, 0),
			at(false, 500*time.Millisecond),
			at(true, 1000*time.Millisecond),
			at(false, 1500*time.Millisecond),
			at(true, 2000*time.Millisecond),
			at(false, 4000*time.Millisecond),
		}, offsets(h.rig.buzzer.Events(), start))

		require.Equal(t, []notify.Kind{
			notify.KindProximity, notify.KindPressure, notify.KindSleep,
		}, h.rig.notifier.Kinds())
	})
}

// TestAlertMonitor_CancelLeavesAlarmOff switches both outputs off when interrupted mid-pulse.
func TestAlertMonitor_CancelLeavesAlarmOff(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h := newAlertHarness()
		h.commands.Replace(zone.Command{Window: zone.WindowNoop, SleepAlert: zone.StatusOpen})

		ctx, cancel := context.WithCancel(context.Background())

		var wg sync.WaitGroup

		wg.Go(func() {
			h.monitor.Run(ctx)
		})

		time.Sleep(time.Second)
		synctest.Wait()
		require.True(t, h.rig.buzzer.IsOn())
		require.True(t, h.rig.vibrator.IsOn())

		cancel()
		wg.Wait()

		require.False(t, h.rig.buzzer.IsOn())
		require.False(t, h.rig.vibrator.IsOn())
	})
}

// TestAlertMonitor_Quiet never touches the alarm without a condition.
func TestAlertMonitor_Quiet(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h := newAlertHarness()
		h.telemetry.MergeSensors(zone.Telemetry{Door: zone.StatusOpen, Distance: 80, Pressure: 239})

		ctx, cancel := context.WithCancel(context.Background())

		var wg sync.WaitGroup

		wg.Go(func() {
			h.monitor.Run(ctx)
		})

		time.Sleep(3 * time.Second)
		cancel()
		wg.Wait()

		require.Empty(t, h.rig.buzzer.Events())
		require.Empty(t, h.rig.notifier.Kinds())
	})
}
