package transport

import (
	"context"
	"net"
	"time"

	"github.com/oshokin/zone-monitor/internal/logger"
	"github.com/oshokin/zone-monitor/internal/metrics"
	"github.com/oshokin/zone-monitor/internal/wait"
)

// Session uses one connection until it fails or ctx is canceled.
// The connection is closed by the Link once the session returns.
type Session func(ctx context.Context, conn net.Conn) error

// DialFunc opens a new connection.
type DialFunc func(ctx context.Context) (net.Conn, error)

// Link keeps sessions running over successive connections.
type Link struct {
	// dial opens connections.
	dial DialFunc
	// reconnect enables retrying after a fault.
	reconnect bool
	// initialBackoff is the first retry delay.
	initialBackoff time.Duration
	// maxBackoff caps the retry delay.
	maxBackoff time.Duration
}

// Option configures a Link.
type Option func(*Link)

// WithReconnect enables reconnection with exponential backoff between initial and maxDelay.
func WithReconnect(initial, maxDelay time.Duration) Option {
	return func(l *Link) {
		l.reconnect = true
		l.initialBackoff = initial
		l.maxBackoff = maxDelay
	}
}

// NewLink creates a link that opens connections with dial.
func NewLink(dial DialFunc, opts ...Option) *Link {
	l := &Link{dial: dial}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Connect makes a single connection attempt.
func (l *Link) Connect(ctx context.Context) (net.Conn, error) {
	return l.dial(ctx)
}

// Run serves sessions until ctx is canceled. first may be nil, in which case
// Run dials before the first session.
//
// Without reconnection Run returns the first dial or session error.
// Cancellation always yields a nil error.
func (l *Link) Run(ctx context.Context, first net.Conn, session Session) error {
	ctx = logger.WithName(ctx, "link")

	conn := first
	backoff := l.initialBackoff

	for {
		if conn == nil {
			var err error

			conn, err = l.dial(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}

				if !l.reconnect {
					return err
				}

				logger.WarnKV(ctx, "Supervisor unreachable", "error", err, "retry_in", backoff.String())

				if !wait.Sleep(ctx, backoff) {
					return nil
				}

				backoff = l.next(backoff)
				metrics.LinkReconnects.Inc()

				continue
			}
		}

		backoff = l.initialBackoff

		logger.InfoKV(ctx, "Connected to supervisor",
			"local_address", addrString(conn.LocalAddr()),
			"remote_address", addrString(conn.RemoteAddr()),
		)

		err := serve(ctx, conn, session)
		conn = nil

		if ctx.Err() != nil {
			return nil
		}

		logger.ErrorKV(ctx, "Supervisor connection lost", "error", err)

		if !l.reconnect {
			return err
		}

		if !wait.Sleep(ctx, backoff) {
			return nil
		}

		backoff = l.next(backoff)
		metrics.LinkReconnects.Inc()
	}
}

// next doubles the delay up to the configured maximum.
func (l *Link) next(current time.Duration) time.Duration {
	return min(current*2, l.maxBackoff)
}

// serve runs session on conn and closes conn when either the session ends or ctx is canceled.
func serve(ctx context.Context, conn net.Conn, session Session) error {
	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(sessionCtx, func() {
		_ = conn.Close()
	})
	defer stop()

	err := session(sessionCtx, conn)

	_ = conn.Close()

	return err
}

// addrString tolerates connections without addresses, such as net.Pipe.
func addrString(addr net.Addr) string {
	if addr == nil {
		return ""
	}

	return addr.String()
}
