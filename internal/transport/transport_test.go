package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	errTestDial    = errors.New("connection refused")
	errTestSession = errors.New("broken pipe")
)

// reservePort returns a free loopback address.
func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	require.NoError(t, l.Close())

	return addr
}

// TestDial_BindsLocalAddress verifies the connection originates from the configured source port.
func TestDial_BindsLocalAddress(t *testing.T) {
	t.Parallel()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	defer func() {
		_ = l.Close()
	}()

	accepted := make(chan net.Conn, 1)

	go func() {
		c, acceptErr := l.Accept()
		if acceptErr == nil {
			accepted <- c
		}
	}()

	local := reservePort(t)

	conn, err := Dial(context.Background(), Endpoint{
		Remote:  l.Addr().String(),
		Local:   local,
		Timeout: time.Second,
	})
	require.NoError(t, err)

	defer func() {
		_ = conn.Close()
	}()

	require.Equal(t, local, conn.LocalAddr().String())

	server := <-accepted
	require.Equal(t, local, server.RemoteAddr().String())
	_ = server.Close()
}

// TestDial_RebindsAfterLocalClose redials from the same source port right after
// the client side closed, while the old connection sits in TIME_WAIT.
func TestDial_RebindsAfterLocalClose(t *testing.T) {
	t.Parallel()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	defer func() {
		_ = l.Close()
	}()

	go func() {
		for {
			c, acceptErr := l.Accept()
			if acceptErr != nil {
				return
			}

			// Drain until the client goes away so the client closes first.
			go func() {
				_, _ = io.Copy(io.Discard, c)
				_ = c.Close()
			}()
		}
	}()

	endpoint := Endpoint{
		Remote:  l.Addr().String(),
		Local:   reservePort(t),
		Timeout: time.Second,
	}

	for range 3 {
		conn, dialErr := Dial(context.Background(), endpoint)
		require.NoError(t, dialErr)
		require.Equal(t, endpoint.Local, conn.LocalAddr().String())
		require.NoError(t, conn.Close())
	}
}

// TestDial_Errors covers a malformed local address and an unreachable supervisor.
func TestDial_Errors(t *testing.T) {
	t.Parallel()

	_, err := Dial(context.Background(), Endpoint{Remote: "127.0.0.1:1", Local: "no-port"})
	require.Error(t, err)

	_, err = Dial(context.Background(), Endpoint{Remote: reservePort(t), Timeout: time.Second})
	require.Error(t, err)
}

// TestLink_WithoutReconnect returns the first session error and stops.
func TestLink_WithoutReconnect(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		dials := 0
		link := NewLink(func(context.Context) (net.Conn, error) {
			dials++
			client, server := net.Pipe()
			_ = server.Close()

			return client, nil
		})

		err := link.Run(context.Background(), nil, func(context.Context, net.Conn) error {
			return errTestSession
		})

		require.ErrorIs(t, err, errTestSession)
		require.Equal(t, 1, dials)

		// A failed first dial is returned as well.
		link = NewLink(func(context.Context) (net.Conn, error) {
			return nil, errTestDial
		})

		err = link.Run(context.Background(), nil, func(context.Context, net.Conn) error {
			return nil
		})
		require.ErrorIs(t, err, errTestDial)
	})
}

// TestLink_Backoff doubles the delay after each failed attempt and caps it.
func TestLink_Backoff(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		start := time.Now()

		var attempts []time.Duration

		link := NewLink(func(context.Context) (net.Conn, error) {
			attempts = append(attempts, time.Since(start))
			if len(attempts) < 5 {
				return nil, errTestDial
			}

			client, _ := net.Pipe()

			return client, nil
		}, WithReconnect(time.Second, 3*time.Second))

		connected := make(chan struct{})
		done := make(chan error, 1)

		go func() {
			done <- link.Run(ctx, nil, func(sessionCtx context.Context, _ net.Conn) error {
				close(connected)
				<-sessionCtx.Done()

				return sessionCtx.Err()
			})
		}()

		<-connected

		// 1s, 2s, 3s (capped), 3s.
		require.Equal(t, []time.Duration{0, time.Second, 3 * time.Second, 6 * time.Second, 9 * time.Second}, attempts)

		cancel()
		require.NoError(t, <-done)
	})
}

// TestLink_ReconnectsAfterSessionFault closes the broken connection and starts a new session.
func TestLink_ReconnectsAfterSessionFault(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var peers []net.Conn

		link := NewLink(func(context.Context) (net.Conn, error) {
			client, server := net.Pipe()
			peers = append(peers, server)

			return client, nil
		}, WithReconnect(time.Second, time.Minute))

		sessions := 0
		second := make(chan struct{})
		done := make(chan error, 1)

		go func() {
			done <- link.Run(ctx, nil, func(sessionCtx context.Context, _ net.Conn) error {
				sessions++
				if sessions == 1 {
					return errTestSession
				}

				close(second)
				<-sessionCtx.Done()

				return nil
			})
		}()

		<-second

		// The first connection was closed by the link.
		_, err := peers[0].Write([]byte{1})
		require.ErrorIs(t, err, io.ErrClosedPipe)
		require.Len(t, peers, 2)

		cancel()
		require.NoError(t, <-done)
	})
}

// TestLink_CancelUnblocksSession ensures shutdown closes the connection under a blocked read.
func TestLink_CancelUnblocksSession(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		client, server := net.Pipe()

		defer func() {
			_ = server.Close()
		}()

		link := NewLink(func(context.Context) (net.Conn, error) {
			return nil, errTestDial
		})

		reading := make(chan struct{})
		readErr := make(chan error, 1)
		done := make(chan error, 1)

		go func() {
			done <- link.Run(ctx, client, func(_ context.Context, conn net.Conn) error {
				close(reading)

				_, err := conn.Read(make([]byte, 1))
				readErr <- err

				return err
			})
		}()

		<-reading
		synctest.Wait()
		cancel()

		require.Error(t, <-readErr)
		require.NoError(t, <-done)
	})
}
