//go:build !linux

package transport

import "net"

// setTTL is a no-op outside Linux; the socket keeps the platform's
// default IP TTL.
func setTTL(conn *net.UDPConn, ttl int) error {
	return nil
}
