//go:build linux

package routing

import (
	"fmt"
	"strings"

	"github.com/vishvananda/netlink"
)

// DumpAODV renders the kernel's current IPv4 route table for link in
// the column layout clustering.parseRoutingTable expects for AODV:
// destination, gateway, genmask, state ("UP"), metric, hop count,
// interface. Hop count is approximated from RTNH/route metric when the
// kernel doesn't report AODV's notion of hop count directly — real
// AODV daemons (olsrd, uAODV) expose this via their own netlink
// protocol numbers, which a production deployment would read instead
// of the default table.
func DumpAODV(linkName string) (string, error) {
	link, err := netlink.LinkByName(linkName)
	if err != nil {
		return "", fmt.Errorf("routing: link %q: %w", linkName, err)
	}

	routes, err := netlink.RouteList(link, netlink.FAMILY_V4)
	if err != nil {
		return "", fmt.Errorf("routing: list routes on %q: %w", linkName, err)
	}

	var b strings.Builder
	b.WriteString("AODV Routing table\n")
	for _, r := range routes {
		if r.Dst == nil || r.Gw == nil {
			continue
		}
		hops := 1
		if r.Priority > 0 && r.Priority < 16 {
			hops = r.Priority
		}
		fmt.Fprintf(&b, "%s %s %s UP %d %d %s\n",
			r.Dst.IP.String(), r.Gw.String(), "255.255.255.0", 0, hops, linkName)
	}
	return b.String(), nil
}
