package hardware

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/oshokin/zone-monitor/internal/domain/zone"
	"github.com/oshokin/zone-monitor/internal/logger"
)

const (
	// simTargetTemperature is the temperature the simulated room drifts to.
	simTargetTemperature = 22.0
	// simTargetHumidity is the humidity the simulated room drifts to.
	simTargetHumidity = 45.0
	// simDoorToggleChance is the per-reading chance the simulated door flips.
	simDoorToggleChance = 0.05
	// simMaxDistance is the far end of the simulated ultrasonic range.
	simMaxDistance = 200.0
	// simMaxPressure is the simulated pressure sensor saturation value.
	simMaxPressure = 300
)

// SimulatedSensors produces plausible readings with mean-reverting noise.
type SimulatedSensors struct {
	// mu protects the physics state below.
	mu sync.Mutex
	// temperature is the current simulated temperature.
	temperature float64
	// humidity is the current simulated humidity.
	humidity float64
	// distance is the current simulated range.
	distance float64
	// pressure is the current simulated pressure.
	pressure float64
	// door is the current simulated door position.
	door zone.Status
}

// NewSimulatedSensors starts the simulation at its targets.
func NewSimulatedSensors() *SimulatedSensors {
	return &SimulatedSensors{
		temperature: simTargetTemperature,
		humidity:    simTargetHumidity,
		distance:    simMaxDistance / 2,
		pressure:    simMaxPressure / 3,
	}
}

// Acquire advances the simulation by one step and returns the reading.
func (s *SimulatedSensors) Acquire(context.Context) (zone.Telemetry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Move 10% towards the target plus noise.
	s.temperature += (simTargetTemperature-s.temperature)*0.1 + (rand.Float64()-0.5)*0.4
	s.humidity += (simTargetHumidity-s.humidity)*0.05 + (rand.Float64()-0.5)*2
	s.humidity = math.Max(0, math.Min(100, s.humidity))

	s.distance = math.Max(0, math.Min(simMaxDistance, s.distance+(rand.Float64()-0.5)*20))
	s.pressure = math.Max(0, math.Min(simMaxPressure, s.pressure+(rand.Float64()-0.5)*30))

	if rand.Float64() < simDoorToggleChance {
		if s.door.IsSet() {
			s.door = zone.StatusClosed
		} else {
			s.door = zone.StatusOpen
		}
	}

	return zone.Telemetry{
		Distance:    s.distance,
		Temperature: s.temperature,
		Humidity:    s.humidity,
		Pressure:    int32(s.pressure),
		Door:        s.door,
	}, nil
}

// LogServo logs every speed change instead of moving anything.
type LogServo struct {
	// ctx carries the logger.
	ctx context.Context //nolint:containedctx // Used for logging only.
}

// SetSpeed logs the request.
func (s *LogServo) SetSpeed(direction zone.Direction, speed int) error {
	logger.DebugKV(s.ctx, "Servo speed set", "direction", direction.String(), "speed", speed)

	return nil
}

// LogSwitch logs every state change instead of driving a pin.
type LogSwitch struct {
	// ctx carries the logger.
	ctx context.Context //nolint:containedctx // Used for logging only.
	// name labels the output in logs.
	name string
}

// Set logs the request.
func (s *LogSwitch) Set(on bool) error {
	logger.DebugKV(s.ctx, "Switch set", "switch", s.name, "on", on)

	return nil
}

// NewSimulated returns devices that need no hardware.
func NewSimulated(ctx context.Context) *Devices {
	ctx = logger.WithName(ctx, "simulated-hardware")

	return &Devices{
		Sensors: NewSimulatedSensors(),
		Servo:   &LogServo{ctx: ctx},
		Alarm: &Alarm{
			Buzzer:   &LogSwitch{ctx: ctx, name: "buzzer"},
			Vibrator: &LogSwitch{ctx: ctx, name: "vibrator"},
		},
	}
}
