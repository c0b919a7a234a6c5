//go:build linux

package transport

import (
	"net"

	"golang.org/x/sys/unix"
)

// setTTL sets IP_TTL on conn's underlying file descriptor so broadcast
// flood depth matches the clustering hop count H exactly, rather than
// whatever the platform default (typically 64) would produce.
func setTTL(conn *net.UDPConn, ttl int) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IP, unix.IP_TTL, ttl)
	})
	if ctrlErr != nil {
		return ctrlErr
	}
	return sockErr
}
