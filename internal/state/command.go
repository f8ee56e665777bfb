package state

import (
	"sync"

	"github.com/oshokin/zone-monitor/internal/domain/zone"
)

// Command guards the latest command snapshot received from the supervisor.
type Command struct {
	// mu protects snapshot.
	mu sync.Mutex
	// snapshot is the current command record.
	snapshot zone.Command
}

// NewCommand creates a command record holding zone.InitialCommand.
func NewCommand() *Command {
	return &Command{
		snapshot: zone.InitialCommand(),
	}
}

// Read returns a copy of the current snapshot.
func (c *Command) Read() zone.Command {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshot
}

// Write applies fn to the snapshot while holding the lock.
func (c *Command) Write(fn func(*zone.Command)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fn(&c.snapshot)
}

// Replace overwrites the whole record.
func (c *Command) Replace(cmd zone.Command) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = cmd
}
