// Package zone implements the read-only gRPC status API of a zone monitor.
//
// The service is described by hand over well-known protobuf types: requests
// are google.protobuf.Empty and responses are google.protobuf.Struct objects
// keyed by the telemetry and command field names.
package zone
