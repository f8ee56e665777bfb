package hardware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/oshokin/zone-monitor/internal/config"
	"github.com/oshokin/zone-monitor/internal/domain/zone"
)

const (
	// servoFrequency is the standard hobby servo refresh rate.
	servoFrequency = 50 * physic.Hertz
	// servoPeriod is the PWM period at servoFrequency.
	servoPeriod = 20 * time.Millisecond
	// servoNeutral is the pulse width that stops a continuous-rotation servo.
	servoNeutral = 1500 * time.Microsecond
	// servoSpan is the pulse width delta at full speed.
	servoSpan = 500 * time.Microsecond
	// maxSpeed is the upper bound of Servo.SetSpeed.
	maxSpeed = 100

	// triggerPulse is the HC-SR04 trigger width.
	triggerPulse = 10 * time.Microsecond
	// echoTimeout bounds a single ranging attempt (about 5 m round trip).
	echoTimeout = 30 * time.Millisecond
	// speedOfSoundCMPerSecond is used to turn echo time into distance.
	speedOfSoundCMPerSecond = 34300
)

// errPinNotFound is returned when a configured pin name is not registered.
var errPinNotFound = errors.New("gpio pin not found")

// openPeriph initializes periph host drivers and wires every pin from cfg.
func openPeriph(cfg config.Hardware) (*Devices, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initialize periph host: %w", err)
	}

	pins := make(map[string]gpio.PinIO, 6)

	for _, name := range []string{cfg.BuzzerPin, cfg.VibratorPin, cfg.DoorPin, cfg.ServoPin, cfg.TriggerPin, cfg.EchoPin} {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("%s: %w", name, errPinNotFound)
		}

		pins[name] = p
	}

	door := pins[cfg.DoorPin]
	if err := door.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configure door pin: %w", err)
	}

	ranger, err := newUltrasonic(pins[cfg.TriggerPin], pins[cfg.EchoPin])
	if err != nil {
		return nil, err
	}

	servo := &PWMServo{pin: pins[cfg.ServoPin]}
	if err = servo.SetSpeed(zone.DirectionStop, 0); err != nil {
		return nil, fmt.Errorf("park servo: %w", err)
	}

	alarm := &Alarm{
		Buzzer:   &GPIOSwitch{pin: pins[cfg.BuzzerPin]},
		Vibrator: &GPIOSwitch{pin: pins[cfg.VibratorPin]},
	}
	if err = alarm.Off(); err != nil {
		return nil, fmt.Errorf("silence alarm: %w", err)
	}

	return &Devices{
		Sensors: &BoardSensors{
			door:   door,
			ranger: ranger,
			env:    NewIIOSensor(cfg.IIODevice, cfg.PressureChannel),
		},
		Servo: servo,
		Alarm: alarm,
	}, nil
}

// GPIOSwitch drives a digital output pin.
type GPIOSwitch struct {
	// pin is the output pin; high means on.
	pin gpio.PinOut
}

// Set drives the pin high when on is true.
func (s *GPIOSwitch) Set(on bool) error {
	level := gpio.Low
	if on {
		level = gpio.High
	}

	return s.pin.Out(level)
}

// PWMServo controls a continuous-rotation servo with a hardware PWM pin.
type PWMServo struct {
	// pin must support hardware PWM (GPIO12/13/18/19 on a Raspberry Pi).
	pin gpio.PinOut
}

// SetSpeed converts direction and speed into a pulse width and applies it.
func (s *PWMServo) SetSpeed(direction zone.Direction, speed int) error {
	if err := s.pin.PWM(servoDuty(direction, speed), servoFrequency); err != nil {
		return fmt.Errorf("servo pwm: %w", err)
	}

	return nil
}

// servoDuty returns the duty cycle for the given direction and speed.
func servoDuty(direction zone.Direction, speed int) gpio.Duty {
	speed = max(0, min(speed, maxSpeed))

	pulse := servoNeutral + time.Duration(int(direction)*speed)*servoSpan/maxSpeed

	return gpio.Duty(int64(gpio.DutyMax) * int64(pulse) / int64(servoPeriod))
}

// ultrasonic measures distance with an HC-SR04 style sensor.
type ultrasonic struct {
	// trigger starts a measurement on a rising pulse.
	trigger gpio.PinOut
	// echo stays high for the round-trip time of the sound burst.
	echo gpio.PinIn
}

func newUltrasonic(trigger gpio.PinOut, echo gpio.PinIn) (*ultrasonic, error) {
	if err := trigger.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("configure trigger pin: %w", err)
	}

	if err := echo.In(gpio.PullDown, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("configure echo pin: %w", err)
	}

	return &ultrasonic{trigger: trigger, echo: echo}, nil
}

// Measure returns the distance in centimeters, or 0 when no echo arrives in time.
func (u *ultrasonic) Measure() (float64, error) {
	if err := u.trigger.Out(gpio.High); err != nil {
		return 0, fmt.Errorf("trigger high: %w", err)
	}

	time.Sleep(triggerPulse)

	if err := u.trigger.Out(gpio.Low); err != nil {
		return 0, fmt.Errorf("trigger low: %w", err)
	}

	if !u.echo.WaitForEdge(echoTimeout) || u.echo.Read() != gpio.High {
		return 0, nil
	}

	start := time.Now()

	if !u.echo.WaitForEdge(echoTimeout) {
		return 0, nil
	}

	return time.Since(start).Seconds() * speedOfSoundCMPerSecond / 2, nil
}

// BoardSensors reads every sensor of the reference board.
type BoardSensors struct {
	// door is high while the door is open.
	door gpio.PinIn
	// ranger measures the ultrasonic distance.
	ranger *ultrasonic
	// env reads temperature, humidity and pressure.
	env *IIOSensor
}

// Acquire reads all sensors once.
func (b *BoardSensors) Acquire(ctx context.Context) (zone.Telemetry, error) {
	distance, err := b.ranger.Measure()
	if err != nil {
		return zone.Telemetry{}, fmt.Errorf("ultrasonic: %w", err)
	}

	reading, err := b.env.Acquire(ctx)
	if err != nil {
		return zone.Telemetry{}, err
	}

	reading.Distance = distance

	if b.door.Read() == gpio.High {
		reading.Door = zone.StatusOpen
	}

	return reading, nil
}
