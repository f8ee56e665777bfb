// Package status prints the telemetry and command snapshots of a running
// zone monitor, read through its gRPC status API.
package status
