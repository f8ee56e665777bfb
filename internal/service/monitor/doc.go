// Package monitor runs the four cooperating tasks of a zone:
//
//   - Publisher acquires sensors every second, merges them into the telemetry
//     state and sends a telemetry frame to the supervisor.
//   - Receiver reads command frames and replaces the command state.
//   - WindowActuator drives the window servo when the window command changes.
//   - AlertMonitor pulses the buzzer and vibrator while an alert condition holds.
//
// The tasks share nothing but the two records in package state. Publisher and
// Receiver run per connection inside a transport.Link session; the other two
// run for the whole process lifetime.
package monitor
