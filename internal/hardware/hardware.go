package hardware

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/zone-monitor/internal/config"
	"github.com/oshokin/zone-monitor/internal/domain/zone"
)

// SensorSource acquires one sensor snapshot. ZoneID and Window in the result are ignored.
type SensorSource interface {
	Acquire(ctx context.Context) (zone.Telemetry, error)
}

// Servo drives the window servo. Speed is a percentage in [0, 100].
type Servo interface {
	SetSpeed(direction zone.Direction, speed int) error
}

// Switch is a binary output such as a buzzer or a vibration motor.
type Switch interface {
	Set(on bool) error
}

// Alarm drives the buzzer and the vibrator together.
type Alarm struct {
	// Buzzer is the audible output.
	Buzzer Switch
	// Vibrator is the haptic output.
	Vibrator Switch
}

// On switches both outputs on. Both are attempted even if the first fails.
func (a *Alarm) On() error {
	return a.set(true)
}

// Off switches both outputs off. Both are attempted even if the first fails.
func (a *Alarm) Off() error {
	return a.set(false)
}

func (a *Alarm) set(on bool) error {
	var errs []error

	if err := a.Buzzer.Set(on); err != nil {
		errs = append(errs, fmt.Errorf("buzzer: %w", err))
	}

	if err := a.Vibrator.Set(on); err != nil {
		errs = append(errs, fmt.Errorf("vibrator: %w", err))
	}

	return errors.Join(errs...)
}

// Devices bundles every collaborator the monitor needs.
type Devices struct {
	// Sensors produces telemetry readings.
	Sensors SensorSource
	// Servo moves the window.
	Servo Servo
	// Alarm drives the buzzer and vibrator.
	Alarm *Alarm
}

// Open initializes the driver selected in cfg.
func Open(ctx context.Context, cfg config.Hardware) (*Devices, error) {
	switch cfg.Driver {
	case config.DriverPeriph:
		return openPeriph(cfg)
	case config.DriverSimulated, "":
		return NewSimulated(ctx), nil
	default:
		return nil, fmt.Errorf("open hardware driver %q: %w", cfg.Driver, errUnsupportedDriver)
	}
}

// errUnsupportedDriver is returned by Open for unknown driver names.
var errUnsupportedDriver = errors.New("unsupported driver")
