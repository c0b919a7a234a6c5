package ecscluster

import (
	"fmt"
	"net"
)

// NodeIDFromIP derives a NodeID from a node's primary IPv4 address, per
// §3. It returns an error for anything that isn't a 4-byte address.
func NodeIDFromIP(ip net.IP) (NodeID, error) {
	v4 := ip.To4()
	if v4 == nil {
		return 0, fmt.Errorf("ecscluster: %s is not an IPv4 address", ip)
	}
	return NodeID(uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3])), nil
}

// IP renders id back to its dotted-quad form.
func (id NodeID) IP() net.IP {
	return net.IPv4(byte(id>>24), byte(id>>16), byte(id>>8), byte(id))
}

func (id NodeID) String() string {
	return id.IP().String()
}
