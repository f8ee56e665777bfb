package monitor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/oshokin/zone-monitor/internal/logger"
	"github.com/oshokin/zone-monitor/internal/metrics"
	"github.com/oshokin/zone-monitor/internal/protocol"
	"github.com/oshokin/zone-monitor/internal/state"
	"github.com/oshokin/zone-monitor/internal/wait"
)

// ReceiveYield is the pause after each merged command.
const ReceiveYield = 100 * time.Millisecond

// Receiver reads command frames and stores them in the command state.
type Receiver struct {
	// commands receives every frame as a whole-record replace.
	commands *state.Command
}

// NewReceiver creates a receiver.
func NewReceiver(commands *state.Command) *Receiver {
	return &Receiver{commands: commands}
}

// Run blocks on conn until a read fails or ctx is canceled.
// Cancellation only unblocks a pending read if the caller closes conn.
func (r *Receiver) Run(ctx context.Context, conn io.Reader) error {
	ctx = logger.WithName(ctx, "receiver")

	for {
		cmd, err := protocol.ReadCommand(conn)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			logger.ErrorKV(ctx, "Receive failed, stopping receiver", "error", err)

			return fmt.Errorf("receive command: %w", err)
		}

		r.commands.Replace(cmd)
		metrics.CommandsReceived.Inc()

		logger.DebugKV(ctx, "Command received", "window", cmd.Window.String(), "sleep_alert", cmd.SleepAlert.IsSet())

		if !wait.Sleep(ctx, ReceiveYield) {
			return nil
		}
	}
}
