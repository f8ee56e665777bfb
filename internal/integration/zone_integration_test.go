package integration

import (
	"context"
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	api "github.com/oshokin/zone-monitor/internal/api/grpc/zone"
	"github.com/oshokin/zone-monitor/internal/config"
	"github.com/oshokin/zone-monitor/internal/domain/zone"
	"github.com/oshokin/zone-monitor/internal/service/monitor"
	"github.com/oshokin/zone-monitor/internal/service/supervisor"
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

// startSupervisor runs the development supervisor fed from the returned console writer.
// The stop function cancels it and waits for it to return.
func startSupervisor(t *testing.T, addr string) (console io.WriteCloser, stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	input, feed := io.Pipe()
	done := make(chan error, 1)

	go func() {
		done <- supervisor.Run(ctx, &supervisor.Options{ListenAddress: addr, Input: input})
	}()

	// Wait until the supervisor accepts connections.
	require.Eventually(t, func() bool {
		c, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}

		_ = c.Close()

		return true
	}, 3*time.Second, 20*time.Millisecond)

	return feed, func() {
		cancel()
		_ = feed.Close()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("supervisor did not stop")
		}
	}
}

// startMonitor runs a simulated zone monitor against supervisorAddr.
func startMonitor(t *testing.T, supervisorAddr, statusAddr string) (stop func()) {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), config.DefaultConfigFilename)

	require.NoError(
		t,
		config.Save(cfgPath, &config.Config{
			ZoneID:            3,
			SupervisorAddress: supervisorAddr,
			LocalAddress:      "127.0.0.1:0",
			Reconnect: config.Reconnect{
				InitialBackoff: 50 * time.Millisecond,
				MaxBackoff:     200 * time.Millisecond,
			},
			Hardware: config.Hardware{Driver: config.DriverSimulated},
			Status:   config.Status{ListenAddress: statusAddr},
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- monitor.Run(ctx, &monitor.Options{ConfigPath: cfgPath})
	}()

	return func() {
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Error("monitor did not stop")
		}
	}
}

// TestZone_SupervisorCommands types console commands on the supervisor and
// observes their effect through the monitor's status API.
func TestZone_SupervisorCommands(t *testing.T) {
	t.Parallel()

	supervisorAddr := reservePort(t)
	statusAddr := reservePort(t)

	console, stopSupervisor := startSupervisor(t, supervisorAddr)
	defer stopSupervisor()

	stopMonitor := startMonitor(t, supervisorAddr, statusAddr)
	defer stopMonitor()

	client, err := api.Dial(statusAddr, api.WithCallTimeout(time.Second))
	require.NoError(t, err)

	defer func() {
		_ = client.Close()
	}()

	ctx := context.Background()

	// The zone reports its configured ID once the status API is up.
	require.Eventually(t, func() bool {
		telemetry, getErr := client.GetTelemetry(ctx)
		return getErr == nil && telemetry.ZoneID == 3
	}, 5*time.Second, 50*time.Millisecond)

	_, err = io.WriteString(console, "open\nsleep on\n")
	require.NoError(t, err)

	// Both fields arrive in one record; the window status follows within an actuator poll.
	require.Eventually(t, func() bool {
		command, getErr := client.GetCommand(ctx)
		if getErr != nil || command != (zone.Command{Window: zone.WindowOpen, SleepAlert: zone.StatusOpen}) {
			return false
		}

		telemetry, getErr := client.GetTelemetry(ctx)

		return getErr == nil && telemetry.Window == zone.StatusOpen
	}, 5*time.Second, 50*time.Millisecond)

	_, err = io.WriteString(console, "close\nsleep off\n")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		telemetry, getErr := client.GetTelemetry(ctx)
		return getErr == nil && telemetry.Window == zone.StatusClosed
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, client.Close())
}
