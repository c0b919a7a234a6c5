//go:build !linux

package routing

import "fmt"

// DumpAODV is unavailable outside Linux; netlink route introspection
// is a Linux-only facility. Non-Linux deployments should run the
// simulator transport instead of internal/transport.UDP.
func DumpAODV(linkName string) (string, error) {
	return "", fmt.Errorf("routing: AODV table discovery is only supported on linux")
}
