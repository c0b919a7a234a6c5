package stats

import (
	"time"

	"github.com/PHoulding/ecs-clustering"
)

// CHEventKind names the three cluster-head event kinds (§4.6).
type CHEventKind string

const (
	CHEventClaim          CHEventKind = "CH_Claim"
	CHEventReceiveStatus  CHEventKind = "Receive_Status"
	CHEventResign         CHEventKind = "Resign"
)

// CHEvent is one row of the cluster-head event log.
type CHEvent struct {
	NodeStatus string
	NodeID     ecscluster.NodeID
	Time       time.Time
	Event      CHEventKind
}

// MembershipEventKind names the four membership event kinds (§4.6).
type MembershipEventKind string

const (
	MembershipJoinCluster       MembershipEventKind = "Join Cluster"
	MembershipLeaveCluster      MembershipEventKind = "Leave Cluster"
	MembershipIResign           MembershipEventKind = "I Resign"
	MembershipBecomesStandalone MembershipEventKind = "Becomes Standalone"
)

// MembershipEvent is one row of the membership event log.
type MembershipEvent struct {
	NodeStatus string
	NodeID     ecscluster.NodeID
	Time       time.Time
	Event      MembershipEventKind
	ClusterHeadID ecscluster.NodeID
}
