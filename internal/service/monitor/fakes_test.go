package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oshokin/zone-monitor/internal/domain/zone"
	"github.com/oshokin/zone-monitor/internal/hardware"
	"github.com/oshokin/zone-monitor/internal/notify"
)

var errTestSensor = errors.New("echo timeout")

// fakeSensors returns a fixed reading, failing the first failures calls.
type fakeSensors struct {
	mu sync.Mutex
	// reading is returned on success.
	reading zone.Telemetry
	// failures is the number of calls left that fail.
	failures int
}

func (f *fakeSensors) Acquire(context.Context) (zone.Telemetry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failures > 0 {
		f.failures--

		return zone.Telemetry{}, errTestSensor
	}

	return f.reading, nil
}

// servoCall is one SetSpeed invocation.
type servoCall struct {
	direction zone.Direction
	speed     int
	at        time.Time
}

// recordingServo remembers every SetSpeed call.
type recordingServo struct {
	mu    sync.Mutex
	calls []servoCall
}

func (s *recordingServo) SetSpeed(direction zone.Direction, speed int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, servoCall{direction: direction, speed: speed, at: time.Now()})

	return nil
}

func (s *recordingServo) Calls() []servoCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]servoCall(nil), s.calls...)
}

// directions lists the directions of every call in order.
func (s *recordingServo) directions() []zone.Direction {
	calls := s.Calls()
	result := make([]zone.Direction, 0, len(calls))

	for _, c := range calls {
		result = append(result, c.direction)
	}

	return result
}

// switchEvent is one Set invocation.
type switchEvent struct {
	on bool
	at time.Time
}

// recordingSwitch remembers every Set call.
type recordingSwitch struct {
	mu     sync.Mutex
	events []switchEvent
}

func (s *recordingSwitch) Set(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, switchEvent{on: on, at: time.Now()})

	return nil
}

func (s *recordingSwitch) Events() []switchEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]switchEvent(nil), s.events...)
}

// IsOn reports the last state set.
func (s *recordingSwitch) IsOn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.events) > 0 && s.events[len(s.events)-1].on
}

// recordingNotifier remembers every event kind.
type recordingNotifier struct {
	mu    sync.Mutex
	kinds []notify.Kind
}

func (n *recordingNotifier) Notify(_ context.Context, event notify.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.kinds = append(n.kinds, event.Kind)

	return nil
}

func (n *recordingNotifier) Kinds() []notify.Kind {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]notify.Kind(nil), n.kinds...)
}

// testRig bundles fake devices for one test.
type testRig struct {
	sensors  *fakeSensors
	servo    *recordingServo
	buzzer   *recordingSwitch
	vibrator *recordingSwitch
	notifier *recordingNotifier
}

func newTestRig() *testRig {
	return &testRig{
		sensors: &fakeSensors{
			reading: zone.Telemetry{Distance: 120, Temperature: 22, Humidity: 40, Pressure: 100},
		},
		servo:    new(recordingServo),
		buzzer:   new(recordingSwitch),
		vibrator: new(recordingSwitch),
		notifier: new(recordingNotifier),
	}
}

func (r *testRig) devices() *hardware.Devices {
	return &hardware.Devices{
		Sensors: r.sensors,
		Servo:   r.servo,
		Alarm: &hardware.Alarm{
			Buzzer:   r.buzzer,
			Vibrator: r.vibrator,
		},
	}
}
