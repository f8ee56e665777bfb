// Package transport owns the persistent connection to the supervisor.
//
// Dial binds the fixed local source port and connects. Link runs a session
// over each connection and reconnects with exponential backoff after a
// transport fault, unless reconnection is disabled.
package transport
