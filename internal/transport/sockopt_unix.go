//go:build unix

package transport

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// reuseAddress lets a redial bind the fixed source port while the previous
// connection from it is still in TIME_WAIT.
func reuseAddress(_, _ string, raw syscall.RawConn) error {
	var sockErr error

	err := raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return fmt.Errorf("access socket: %w", err)
	}

	if sockErr != nil {
		return fmt.Errorf("set SO_REUSEADDR: %w", sockErr)
	}

	return nil
}
