// Package routing discovers real neighbor reachability on Linux via
// vishvananda/netlink and renders it into the same AODV-shaped routing
// table text the original simulator's table.cc parses (§4.1), so
// clustering.NeighborTable.Update can stay identical between
// simulation and live deployment.
package routing
