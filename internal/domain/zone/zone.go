package zone

import "fmt"

// Status is a boolean carried as an integer on the wire: 0 closed/off, 1 open/on.
type Status int32

const (
	// StatusClosed marks a closed door or window, or a cleared flag.
	StatusClosed Status = 0
	// StatusOpen marks an open door or window, or a raised flag.
	StatusOpen Status = 1
)

// IsSet reports whether the status equals StatusOpen.
// Any value other than 1 is treated as not set.
func (s Status) IsSet() bool {
	return s == StatusOpen
}

// String returns "open" or "closed".
func (s Status) String() string {
	if s.IsSet() {
		return "open"
	}

	return "closed"
}

// WindowCommand is the tri-state window directive issued by the supervisor.
type WindowCommand int32

const (
	// WindowClose requests the window to be closed.
	WindowClose WindowCommand = 0
	// WindowOpen requests the window to be opened.
	WindowOpen WindowCommand = 1
	// WindowNoop is the sentinel meaning "no window command".
	// Every value other than WindowOpen and WindowClose behaves the same way.
	WindowNoop WindowCommand = -1
)

// String renders the command for logs.
func (c WindowCommand) String() string {
	switch c {
	case WindowOpen:
		return "open"
	case WindowClose:
		return "close"
	default:
		return fmt.Sprintf("noop(%d)", int32(c))
	}
}

// Direction is the servo rotation direction.
type Direction int

const (
	// DirectionReverse rotates the servo towards the closed position.
	DirectionReverse Direction = -1
	// DirectionStop halts the servo.
	DirectionStop Direction = 0
	// DirectionForward rotates the servo towards the open position.
	DirectionForward Direction = 1
)

// String renders the direction for logs and metric labels.
func (d Direction) String() string {
	switch d {
	case DirectionForward:
		return "forward"
	case DirectionReverse:
		return "reverse"
	default:
		return "stop"
	}
}

// Telemetry is one consistent set of sensor and window values.
type Telemetry struct {
	// ZoneID identifies the zone; constant for the process lifetime.
	ZoneID int32
	// Distance is the ultrasonic range in centimeters. Zero or less means no reading.
	Distance float64
	// Temperature is the ambient temperature in degrees Celsius.
	Temperature float64
	// Humidity is the relative humidity in percent.
	Humidity float64
	// Pressure is the raw pressure sensor value.
	Pressure int32
	// Door is the door switch state.
	Door Status
	// Window is the last commanded window position. Owned by the window actuator.
	Window Status
}

// HasDistance reports whether the ultrasonic reading is valid.
func (t Telemetry) HasDistance() bool {
	return t.Distance > 0
}

// WithSensors returns t with every sensor-derived field taken from reading.
// ZoneID and Window are kept from t.
func (t Telemetry) WithSensors(reading Telemetry) Telemetry {
	t.Distance = reading.Distance
	t.Temperature = reading.Temperature
	t.Humidity = reading.Humidity
	t.Pressure = reading.Pressure
	t.Door = reading.Door

	return t
}

// Command is one consistent set of supervisor directives.
type Command struct {
	// Window is the requested window position.
	Window WindowCommand
	// SleepAlert asks for a long alarm pulse while set.
	SleepAlert Status
}

// InitialCommand is the command state before anything was received.
func InitialCommand() Command {
	return Command{
		Window:     WindowNoop,
		SleepAlert: StatusClosed,
	}
}
