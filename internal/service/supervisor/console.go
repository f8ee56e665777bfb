package supervisor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/oshokin/zone-monitor/internal/domain/zone"
	"github.com/oshokin/zone-monitor/internal/logger"
)

var (
	// errEmptyCommand is returned for a blank console line.
	errEmptyCommand = errors.New("empty command")
	// errUnknownCommand is returned for a line that names no known command.
	errUnknownCommand = errors.New("unknown command")
)

// Console turns typed lines into complete command records.
// Each line changes one field; the other field keeps its previous value.
type Console struct {
	// current is the command record sent last.
	current zone.Command
}

// NewConsole starts from the no-op command.
func NewConsole() *Console {
	return &Console{current: zone.InitialCommand()}
}

// ParseCommand applies one line and returns the resulting record.
// Accepted lines: open, close, noop, sleep on, sleep off.
func (c *Console) ParseCommand(line string) (zone.Command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return c.current, errEmptyCommand
	}

	next := c.current

	switch strings.Join(fields, " ") {
	case "open":
		next.Window = zone.WindowOpen
	case "close":
		next.Window = zone.WindowClose
	case "noop":
		next.Window = zone.WindowNoop
	case "sleep on":
		next.SleepAlert = zone.StatusOpen
	case "sleep off":
		next.SleepAlert = zone.StatusClosed
	default:
		return c.current, fmt.Errorf("%q: %w", line, errUnknownCommand)
	}

	c.current = next

	return next, nil
}

// Scan reads lines from r until EOF or cancellation and offers every parsed
// command to out. Only the newest undelivered command is kept.
// Scan returns as soon as ctx is canceled; a read already blocked on r ends
// only when r delivers more input or is closed.
func (c *Console) Scan(ctx context.Context, r io.Reader, out chan zone.Command) error {
	ctx = logger.WithName(ctx, "console")

	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(r)

		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}

		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("read console: %w", err)
					}
				default:
				}

				return nil
			}

			c.apply(ctx, line, out)
		}
	}
}

// apply parses one line and offers the result.
func (c *Console) apply(ctx context.Context, line string, out chan zone.Command) {
	cmd, err := c.ParseCommand(line)
	if err != nil {
		if !errors.Is(err, errEmptyCommand) {
			logger.WarnKV(ctx, "Ignoring console input", "error", err)
		}

		return
	}

	logger.InfoKV(ctx, "Queued command", "window", cmd.Window.String(), "sleep_alert", cmd.SleepAlert.IsSet())
	offer(out, cmd)
}

// offer replaces any pending command in out with cmd.
func offer(out chan zone.Command, cmd zone.Command) {
	for {
		select {
		case out <- cmd:
			return
		default:
		}

		select {
		case <-out:
		default:
		}
	}
}
