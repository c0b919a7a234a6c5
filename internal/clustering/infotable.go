package clustering

import (
	"time"

	"github.com/PHoulding/ecs-clustering"
)

// InformationTableRow is one observation of a neighbor (§3/§4.2).
// Multiple rows may temporarily coexist for the same NodeID; Scan is
// responsible for trimming stale ones.
type InformationTableRow struct {
	NodeID        ecscluster.NodeID
	Role          ecscluster.Role
	ClusterHeadID ecscluster.NodeID // the head a gateway row covers; only UpsertGatewayRow sets it
	AccessPointID ecscluster.NodeID // the CM/GW a guest row reaches through; no table operation sets it
	EntryTime     time.Time
}

// InformationTable is an append-oriented sequence of neighbor
// observations (§4.2). Insert never deduplicates; Scan removes stale
// rows, and the Upsert operations replace a node's existing rows.
type InformationTable struct {
	rows []InformationTableRow
}

// NewInformationTable returns an empty table.
func NewInformationTable() *InformationTable {
	return &InformationTable{}
}

// Insert appends row without deduplication.
func (t *InformationTable) Insert(row InformationTableRow) {
	t.rows = append(t.rows, row)
}

// UpsertOnPing removes every existing row for nodeID, then appends a
// single fresh row (§4.2).
func (t *InformationTable) UpsertOnPing(nodeID ecscluster.NodeID, role ecscluster.Role, now time.Time) {
	t.removeNode(nodeID)
	t.rows = append(t.rows, InformationTableRow{NodeID: nodeID, Role: role, EntryTime: now})
}

// UpsertGatewayRow behaves like UpsertOnPing but additionally records
// the cluster head the sender (a gateway) is reporting coverage for.
func (t *InformationTable) UpsertGatewayRow(nodeID ecscluster.NodeID, role ecscluster.Role, chID ecscluster.NodeID, now time.Time) {
	t.removeNode(nodeID)
	t.rows = append(t.rows, InformationTableRow{NodeID: nodeID, Role: role, ClusterHeadID: chID, EntryTime: now})
}

func (t *InformationTable) removeNode(nodeID ecscluster.NodeID) {
	kept := t.rows[:0]
	for _, r := range t.rows {
		if r.NodeID != nodeID {
			kept = append(kept, r)
		}
	}
	t.rows = kept
}

// Scan drops rows older than maxAge relative to now.
func (t *InformationTable) Scan(now time.Time, maxAge time.Duration) {
	kept := t.rows[:0]
	for _, r := range t.rows {
		if now.Sub(r.EntryTime) <= maxAge {
			kept = append(kept, r)
		}
	}
	t.rows = kept
}

// Size is the row count, used as the node's cluster-degree for
// head-vs-head comparison (§4.4.5).
func (t *InformationTable) Size() int {
	return len(t.rows)
}

// CountHeads returns the number of rows with Role == CLUSTER_HEAD.
func (t *InformationTable) CountHeads() int {
	n := 0
	for _, r := range t.rows {
		if r.Role == ecscluster.ClusterHead {
			n++
		}
	}
	return n
}

// CountMembersOrGateways returns the number of rows with Role in
// {CLUSTER_MEMBER, CLUSTER_GATEWAY}.
func (t *InformationTable) CountMembersOrGateways() int {
	n := 0
	for _, r := range t.rows {
		if r.Role == ecscluster.ClusterMember || r.Role == ecscluster.ClusterGateway {
			n++
		}
	}
	return n
}

// FirstHeadID returns the NodeID of the first CLUSTER_HEAD row found,
// and whether one exists.
func (t *InformationTable) FirstHeadID() (ecscluster.NodeID, bool) {
	for _, r := range t.rows {
		if r.Role == ecscluster.ClusterHead {
			return r.NodeID, true
		}
	}
	return 0, false
}

// AllHeadIDs returns every distinct CLUSTER_HEAD NodeID currently in
// the table.
func (t *InformationTable) AllHeadIDs() []ecscluster.NodeID {
	seen := make(map[ecscluster.NodeID]struct{})
	var ids []ecscluster.NodeID
	for _, r := range t.rows {
		if r.Role != ecscluster.ClusterHead {
			continue
		}
		if _, ok := seen[r.NodeID]; ok {
			continue
		}
		seen[r.NodeID] = struct{}{}
		ids = append(ids, r.NodeID)
	}
	return ids
}

// Rows returns a copy of the current rows, for inspection in tests.
func (t *InformationTable) Rows() []InformationTableRow {
	out := make([]InformationTableRow, len(t.rows))
	copy(out, t.rows)
	return out
}
