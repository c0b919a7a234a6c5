package stats

import (
	"fmt"
	"sync"
	"time"

	"github.com/PHoulding/ecs-clustering"
	"github.com/PHoulding/ecs-clustering/internal/clustering"
)

// roleCode renders a role to the short status code the event log uses
// (§4.6), matching the CH/CM/GW/SA/CG abbreviations from the glossary.
func roleCode(r ecscluster.Role) string {
	switch r {
	case ecscluster.ClusterHead:
		return "CH"
	case ecscluster.ClusterMember:
		return "CM"
	case ecscluster.ClusterGateway:
		return "GW"
	case ecscluster.Standalone:
		return "SA"
	case ecscluster.ClusterGuest:
		return "CG"
	default:
		return "UNSPEC"
	}
}

// Stats is the concrete clustering.StatsSink: message counters, the
// CH/membership event logs, and the role-sample accumulators behind
// AverageClusterSizeByFormula (§4.6).
type Stats struct {
	mu sync.Mutex

	pings, claims, statuses, meetings, resigns uint64
	clusteringMessages, clusterChangeMessages  uint64

	chEvents    []CHEvent
	membership  []MembershipEvent

	numClusterHeads, numClusterMembers int64
	numClusterGateways, numClusterGuests int64
	numClusterSize       int64
	numHeadsCoveringGates int64
	numAccessPoints      int64
	sampleCount          int64
}

var _ clustering.StatsSink = (*Stats)(nil)

// New returns a zeroed Stats.
func New() *Stats {
	return &Stats{}
}

func (s *Stats) IncPing()    { s.mu.Lock(); s.pings++; s.mu.Unlock() }
func (s *Stats) IncClaim()   { s.mu.Lock(); s.claims++; s.mu.Unlock() }
func (s *Stats) IncStatus()  { s.mu.Lock(); s.statuses++; s.mu.Unlock() }
func (s *Stats) IncMeeting() { s.mu.Lock(); s.meetings++; s.mu.Unlock() }
func (s *Stats) IncResign()  { s.mu.Lock(); s.resigns++; s.mu.Unlock() }

func (s *Stats) IncClusteringMessage()    { s.mu.Lock(); s.clusteringMessages++; s.mu.Unlock() }
func (s *Stats) IncClusterChangeMessage() { s.mu.Lock(); s.clusterChangeMessages++; s.mu.Unlock() }

// SampleRole implements the periodic role-sample tick from §4.4.8: the
// numerator feeding AverageClusterSizeByFormula's ni/mj terms.
func (s *Stats) SampleRole(role ecscluster.Role, headsCovering, accessPoints int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sampleCount++
	switch role {
	case ecscluster.ClusterHead:
		s.numClusterHeads++
	case ecscluster.ClusterMember:
		s.numClusterMembers++
	case ecscluster.ClusterGateway:
		s.numClusterGateways++
		s.numHeadsCoveringGates += int64(headsCovering)
	case ecscluster.ClusterGuest:
		s.numClusterGuests++
		s.numAccessPoints += int64(accessPoints)
	}
}

// RecordCHClaim appends a CH_Claim event.
func (s *Stats) RecordCHClaim(node ecscluster.NodeID, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chEvents = append(s.chEvents, CHEvent{NodeStatus: "CH", NodeID: node, Time: t, Event: CHEventClaim})
}

// RecordCHReceiveStatus appends a Receive_Status event.
func (s *Stats) RecordCHReceiveStatus(node ecscluster.NodeID, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chEvents = append(s.chEvents, CHEvent{NodeStatus: "CH", NodeID: node, Time: t, Event: CHEventReceiveStatus})
}

// RecordCHResign appends a Resign CH event AND an "I Resign" membership
// event for the same node (§4.6) — the latter is what lets
// AverageMembershipLifetime close out every member it was carrying.
func (s *Stats) RecordCHResign(node ecscluster.NodeID, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chEvents = append(s.chEvents, CHEvent{NodeStatus: "CH", NodeID: node, Time: t, Event: CHEventResign})
	s.membership = append(s.membership, MembershipEvent{
		NodeStatus: "CH", NodeID: node, Time: t, Event: MembershipIResign, ClusterHeadID: node,
	})
}

// RecordMembershipStart appends a Join Cluster event.
func (s *Stats) RecordMembershipStart(role ecscluster.Role, node ecscluster.NodeID, t time.Time, ch ecscluster.NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.membership = append(s.membership, MembershipEvent{
		NodeStatus: roleCode(role), NodeID: node, Time: t, Event: MembershipJoinCluster, ClusterHeadID: ch,
	})
}

// RecordMembershipEnd appends a Leave Cluster event.
func (s *Stats) RecordMembershipEnd(role ecscluster.Role, node ecscluster.NodeID, t time.Time, ch ecscluster.NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.membership = append(s.membership, MembershipEvent{
		NodeStatus: roleCode(role), NodeID: node, Time: t, Event: MembershipLeaveCluster, ClusterHeadID: ch,
	})
}

// RecordBecomeStandalone appends a Becomes Standalone event.
func (s *Stats) RecordBecomeStandalone(node ecscluster.NodeID, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.membership = append(s.membership, MembershipEvent{
		NodeStatus: "SA", NodeID: node, Time: t, Event: MembershipBecomesStandalone,
	})
}

// CHEvents returns a copy of the cluster-head event log.
func (s *Stats) CHEvents() []CHEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CHEvent, len(s.chEvents))
	copy(out, s.chEvents)
	return out
}

// MembershipEvents returns a copy of the membership event log.
func (s *Stats) MembershipEvents() []MembershipEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]MembershipEvent, len(s.membership))
	copy(out, s.membership)
	return out
}

// MessageTotals returns the five raw per-kind message counters.
func (s *Stats) MessageTotals() (pings, claims, statuses, meetings, resigns uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pings, s.claims, s.statuses, s.meetings, s.resigns
}

// ChangeMessageTotals returns the two aggregate message counters.
func (s *Stats) ChangeMessageTotals() (clusteringMessages, clusterChangeMessages uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clusteringMessages, s.clusterChangeMessages
}

// Summary renders the plain-text run report the original simulator's
// PrintMessageTotals/PrintClusterAverage wrote to stdout: message
// totals followed by the §4.6 cluster-size and lifetime averages.
// Summary stays dependency-free so it's usable from a test or a
// headless run; the CLI does not call it and renders its own styled
// table from the same Stats accessors.
func (s *Stats) Summary(runtime time.Duration, end time.Time) string {
	pings, claims, statuses, meetings, resigns := s.MessageTotals()
	clusteringMsgs, changeMsgs := s.ChangeMessageTotals()
	heads, members, gateways, guests := s.AverageRoleCounts(runtime)

	return fmt.Sprintf(
		"messages: ping=%d claim=%d status=%d meeting=%d resign=%d (clustering=%d change=%d)\n"+
			"avg roles: CH=%.2f CM=%.2f GW=%.2f CG=%.2f\n"+
			"avg cluster size: table=%.2f formula=%.2f\n"+
			"avg CH lifetime: %.2fs  avg membership lifetime: %.2fs\n",
		pings, claims, statuses, meetings, resigns, clusteringMsgs, changeMsgs,
		heads, members, gateways, guests,
		s.AverageClusterSizeByTable(runtime), s.AverageClusterSizeByFormula(),
		s.AverageCHLifetime(end), s.AverageMembershipLifetime(end),
	)
}
