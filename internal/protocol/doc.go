// Package protocol implements the fixed-size binary frames exchanged with the
// supervisor.
//
// Frames are little-endian records without padding, length prefix, checksum
// or version tag. A telemetry frame is 28 bytes and a command frame is 8 bytes.
package protocol
