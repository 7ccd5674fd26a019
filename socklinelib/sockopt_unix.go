//go:build unix

package socklinelib

import (
	"net"

	"golang.org/x/sys/unix"
)

// setTOS applies the IP type-of-service hint. Failures are ignored: the
// hint is advisory and some stacks reject it.
func setTOS(tc *net.TCPConn, tos int) {
	if tos == 0 {
		return
	}
	raw, err := tc.SyscallConn()
	if err != nil {
		return
	}
	_ = raw.Control(func(fd uintptr) {
		_ = unix.SetsockoptInt(int(fd), unix.IPPROTO_IP, unix.IP_TOS, tos)
	})
}
