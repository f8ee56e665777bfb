package supervisor

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/oshokin/zone-monitor/internal/config"
	"github.com/oshokin/zone-monitor/internal/domain/zone"
	"github.com/oshokin/zone-monitor/internal/logger"
)

// DefaultListenAddress matches the supervisor port zones dial by default.
const DefaultListenAddress = ":12345"

// Options configures the development supervisor.
type Options struct {
	// ListenAddress is the TCP address to accept zones on.
	ListenAddress string

	// Input provides console lines, defaults to stdin when nil.
	Input io.Reader

	// WriteTimeout bounds sending one command frame.
	WriteTimeout time.Duration
}

// Run accepts zones one at a time until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "zone-supervisor")

	address := opts.ListenAddress
	if address == "" {
		address = DefaultListenAddress
	}

	input := opts.Input
	if input == nil {
		input = os.Stdin
	}

	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = config.DefaultTimeout
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", address, err)
	}

	stop := context.AfterFunc(ctx, func() {
		_ = lis.Close()
	})
	defer stop()

	logger.InfoKV(ctx, "Supervisor listening", "listen_address", lis.Addr().String())
	logger.Info(ctx, "Type open, close, noop, sleep on or sleep off")

	commands := make(chan zone.Command, 1)

	go func() {
		if err := NewConsole().Scan(ctx, input, commands); err != nil {
			logger.ErrorKV(ctx, "Console stopped", "error", err)
		}
	}()

	for {
		conn, err := lis.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("accept zone: %w", err)
		}

		zoneCtx := logger.WithKV(ctx, "remote_address", conn.RemoteAddr().String())
		logger.Info(zoneCtx, "Zone connected")

		if err = serveZone(zoneCtx, conn, commands, writeTimeout); err != nil {
			logger.WarnKV(zoneCtx, "Zone disconnected", "error", err)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}
