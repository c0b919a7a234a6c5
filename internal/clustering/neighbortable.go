package clustering

import (
	"net"
	"strconv"
	"strings"

	"github.com/PHoulding/ecs-clustering"
)

// RoutingProtocol selects which routing-table dump format Update parses.
type RoutingProtocol uint8

const (
	RoutingAODV RoutingProtocol = iota
	RoutingDSDV
)

// NeighborTable keeps a sliding window of the last two routing-table
// snapshots and derives a churn ("change degree") metric from them.
// The underlying parser assumptions (AODV state column 3, hops column
// 5; DSDV hops column 3) are fixed-position and known fragile against
// routing-daemon output format drift.
type NeighborTable struct {
	maxHops int
	slots   []map[ecscluster.NodeID]struct{}
	cur     int
	updates int
}

// NewNeighborTable creates a table with the given ring depth (typically
// 2) and max hop filter H.
func NewNeighborTable(slotCount int, maxHops int) *NeighborTable {
	if slotCount < 1 {
		slotCount = 1
	}
	slots := make([]map[ecscluster.NodeID]struct{}, slotCount)
	for i := range slots {
		slots[i] = make(map[ecscluster.NodeID]struct{})
	}
	return &NeighborTable{maxHops: maxHops, slots: slots}
}

// Update parses routingTableText (in the given protocol's column
// layout), extracts destinations within [1, H] hops, excludes loopback
// and simulator-broadcast addresses, and advances the ring to install
// the new set.
func (t *NeighborTable) Update(proto RoutingProtocol, routingTableText string) {
	set := make(map[ecscluster.NodeID]struct{})
	for _, addr := range parseRoutingTable(proto, routingTableText, t.maxHops) {
		set[addr] = struct{}{}
	}
	t.cur = (t.cur + 1) % len(t.slots)
	t.slots[t.cur] = set
	t.updates++
}

// ChangeDegree is (|A∪B| - |A∩B|) / |A∪B| across the two most recent
// slots; 0 before two updates have happened or when either set is
// empty.
func (t *NeighborTable) ChangeDegree() float64 {
	if t.updates < 2 || len(t.slots) < 2 {
		return 0
	}
	prev := (t.cur - 1 + len(t.slots)) % len(t.slots)
	a := t.slots[t.cur]
	b := t.slots[prev]
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	union := make(map[ecscluster.NodeID]struct{}, len(a)+len(b))
	inter := 0
	for id := range a {
		union[id] = struct{}{}
		if _, ok := b[id]; ok {
			inter++
		}
	}
	for id := range b {
		union[id] = struct{}{}
	}
	if len(union) == 0 {
		return 0
	}
	return float64(len(union)-inter) / float64(len(union))
}

// Current returns the most recently installed neighbor set.
func (t *NeighborTable) Current() []ecscluster.NodeID {
	cur := t.slots[t.cur]
	out := make([]ecscluster.NodeID, 0, len(cur))
	for id := range cur {
		out = append(out, id)
	}
	return out
}

func parseRoutingTable(proto RoutingProtocol, text string, maxHops int) []ecscluster.NodeID {
	var out []ecscluster.NodeID
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) == 0 {
			continue
		}
		if !startsWithDigit(fields[0]) {
			continue
		}

		addr := fields[0]
		if isLoopback(addr) || isSimBroadcast(addr) {
			continue
		}

		var hopsField int
		switch proto {
		case RoutingDSDV:
			hopsField = 3
		case RoutingAODV:
			hopsField = 5
			if len(fields) <= 3 || fields[3] != "UP" {
				continue
			}
		default:
			continue
		}
		if len(fields) <= hopsField {
			continue
		}
		hops, err := strconv.Atoi(fields[hopsField])
		if err != nil {
			continue
		}
		if hops < 1 || hops > maxHops {
			continue
		}

		parsed := net.ParseIP(addr)
		if parsed == nil {
			continue
		}
		id, err := ecscluster.NodeIDFromIP(parsed)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

func startsWithDigit(s string) bool {
	if s == "" {
		return false
	}
	return s[0] >= '0' && s[0] <= '9'
}

func isLoopback(addr string) bool {
	return addr == "127.0.0.1"
}

// isSimBroadcast matches the simulator's /16 broadcast convention
// (e.g. "10.1.255.255"), not a general subnet-aware check.
func isSimBroadcast(addr string) bool {
	return strings.Contains(addr, ".255.255")
}

