//go:build !unix

package transport

import "syscall"

// reuseAddress is a no-op where SO_REUSEADDR has different semantics.
func reuseAddress(_, _ string, _ syscall.RawConn) error {
	return nil
}
