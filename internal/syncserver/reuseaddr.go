//go:build unix

// ABOUTME: SO_REUSEADDR socket option for the server's listening socket
// ABOUTME: Unix-only; non-fatal on failure, mirroring the C reference
package syncserver

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// setReuseAddr enables SO_REUSEADDR on the listening socket, matching the
// C reference's setsockopt call. A failure here is non-fatal there; we
// mirror that by ignoring the error here too, since ListenPacket will
// surface any subsequent bind failure on its own.
func setReuseAddr(_ string, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	_ = sockErr // non-fatal, per the C reference
	return nil
}
