// Package zone contains core domain types for a single monitored zone.
//
// It defines Telemetry (the sensor and window snapshot sent to the supervisor)
// and Command (the directives received from it), together with the small
// enums used by the actuators.
package zone
