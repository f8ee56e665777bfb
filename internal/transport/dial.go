package transport

import (
	"context"
	"fmt"
	"net"
	"time"
)

// keepAlivePeriod lets the kernel notice a dead supervisor on an idle link.
const keepAlivePeriod = 15 * time.Second

// Endpoint describes both ends of the supervisor connection.
type Endpoint struct {
	// Remote is the supervisor host:port.
	Remote string
	// Local is the local host:port to bind; empty lets the kernel choose.
	Local string
	// Timeout bounds one connection attempt.
	Timeout time.Duration
}

// Dial connects to the supervisor from the configured local address.
// A fixed local port is bound with SO_REUSEADDR so reconnects succeed right after a local close.
func Dial(ctx context.Context, endpoint Endpoint) (net.Conn, error) {
	dialer := net.Dialer{
		Timeout:   endpoint.Timeout,
		KeepAlive: keepAlivePeriod,
	}

	if endpoint.Local != "" {
		dialer.Control = reuseAddress

		local, err := net.ResolveTCPAddr("tcp", endpoint.Local)
		if err != nil {
			return nil, fmt.Errorf("resolve local address %s: %w", endpoint.Local, err)
		}

		dialer.LocalAddr = local
	}

	conn, err := dialer.DialContext(ctx, "tcp", endpoint.Remote)
	if err != nil {
		return nil, fmt.Errorf("dial supervisor %s: %w", endpoint.Remote, err)
	}

	return conn, nil
}
