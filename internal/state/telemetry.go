package state

import (
	"sync"

	"github.com/oshokin/zone-monitor/internal/domain/zone"
)

// Telemetry guards the latest telemetry snapshot of the zone.
type Telemetry struct {
	// mu protects snapshot.
	mu sync.Mutex
	// snapshot is the current telemetry record.
	snapshot zone.Telemetry
}

// NewTelemetry creates a zeroed telemetry record for the given zone.
func NewTelemetry(zoneID int32) *Telemetry {
	return &Telemetry{
		snapshot: zone.Telemetry{ZoneID: zoneID},
	}
}

// Read returns a copy of the current snapshot.
func (t *Telemetry) Read() zone.Telemetry {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.snapshot
}

// Write applies fn to the snapshot while holding the lock.
// fn must not block or retain the pointer.
func (t *Telemetry) Write(fn func(*zone.Telemetry)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fn(&t.snapshot)
}

// MergeSensors replaces the sensor-derived fields and returns the merged snapshot.
// The zone identifier and the window status are left untouched.
func (t *Telemetry) MergeSensors(reading zone.Telemetry) zone.Telemetry {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snapshot = t.snapshot.WithSensors(reading)

	return t.snapshot
}

// SetWindow records the window position.
func (t *Telemetry) SetWindow(status zone.Status) {
	t.Write(func(s *zone.Telemetry) {
		s.Window = status
	})
}
