package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/zone-monitor/internal/domain/zone"
	"github.com/oshokin/zone-monitor/internal/logger"
)

// Kind names the alert condition that fired.
type Kind string

const (
	// KindProximity fires when the door is open and something is within range.
	KindProximity Kind = "proximity"
	// KindPressure fires when the pressure reaches its threshold.
	KindPressure Kind = "pressure"
	// KindSleep fires while the supervisor holds the sleep alert flag.
	KindSleep Kind = "sleep"
)

// Event describes one fired alarm pulse.
type Event struct {
	// ID uniquely identifies the event.
	ID uuid.UUID `json:"id"`
	// ZoneID is the zone that raised the alert.
	ZoneID int32 `json:"zone_id"`
	// Kind is the condition that fired.
	Kind Kind `json:"kind"`
	// At is when the pulse started.
	At time.Time `json:"at"`
	// Distance is the ultrasonic range at evaluation time.
	Distance float64 `json:"distance"`
	// Pressure is the pressure reading at evaluation time.
	Pressure int32 `json:"pressure"`
	// Door is the door status at evaluation time.
	Door zone.Status `json:"door"`
}

// NewEvent builds an event from the telemetry snapshot the alert was evaluated on.
func NewEvent(kind Kind, at time.Time, telemetry zone.Telemetry) Event {
	return Event{
		ID:       uuid.New(),
		ZoneID:   telemetry.ZoneID,
		Kind:     kind,
		At:       at,
		Distance: telemetry.Distance,
		Pressure: telemetry.Pressure,
		Door:     telemetry.Door,
	}
}

// Notifier receives alert events. Implementations must not block for long:
// they are called from the alert loop.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Log writes alert events to the context logger.
type Log struct{}

// Notify logs the event at warn level.
func (Log) Notify(ctx context.Context, event Event) error {
	logger.WarnKV(ctx, "ALERT",
		"kind", event.Kind,
		"zone_id", event.ZoneID,
		"distance", event.Distance,
		"pressure", event.Pressure,
		"door", event.Door.String(),
		"event_id", event.ID.String(),
	)

	return nil
}
