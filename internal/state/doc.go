// Package state holds the two shared records of the monitor.
//
// Telemetry is written by the sensor publisher and the window actuator and
// read by the alert monitor and the transmitter. Command is written by the
// command receiver and read by the window actuator and the alert monitor.
// Each record owns its own mutex; callers never hold both at once and never
// perform I/O while a lock is held.
package state
