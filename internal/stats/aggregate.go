package stats

import (
	"time"

	"github.com/PHoulding/ecs-clustering"
)

// AverageClusterSizeByTable is numClusterSize / (runtime in minutes),
// the table-sampling half of §4.6's two cluster-size estimators. No
// Stats method increments numClusterSize, so this returns 0.
func (s *Stats) AverageClusterSizeByTable(runtime time.Duration) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	minutes := runtime.Minutes()
	if minutes == 0 {
		return 0
	}
	return float64(s.numClusterSize) / minutes
}

// AverageClusterSizeByFormula implements §4.6's formula estimator:
// (a + b + Σni + Σmj) / a, where a is sampled CH count, b sampled CM
// count, Σni the summed heads-covering-a-gateway count, and Σmj the
// summed access-point count — all accumulated across every role
// sample, not averaged per sample first.
func (s *Stats) AverageClusterSizeByFormula() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.numClusterHeads == 0 {
		return 0
	}
	numerator := float64(s.numClusterHeads + s.numClusterMembers + s.numHeadsCoveringGates + s.numAccessPoints)
	return numerator / float64(s.numClusterHeads)
}

// AverageRoleCounts returns the per-minute sampled average of each
// role's occupancy, for the §4.6 avgClusterHeads/avgMembers/avgGates/
// avgGuests final-stats columns.
func (s *Stats) AverageRoleCounts(runtime time.Duration) (heads, members, gateways, guests float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	minutes := runtime.Minutes()
	if minutes == 0 {
		return 0, 0, 0, 0
	}
	return float64(s.numClusterHeads) / minutes,
		float64(s.numClusterMembers) / minutes,
		float64(s.numClusterGateways) / minutes,
		float64(s.numClusterGuests) / minutes
}

type openClaim struct {
	node ecscluster.NodeID
	at   time.Time
}

// AverageCHLifetime implements §4.6's CalculateCHLifetime: it pairs
// each CH_Claim with the next Resign seen for the same node, sums
// their durations, then — for any claim left unmatched at the end of
// the run — charges it the span from claim to end, exactly mirroring
// the original's "living nodes" handling so a run that ends mid-term
// doesn't silently drop that node's tenure from the average.
func (s *Stats) AverageCHLifetime(end time.Time) float64 {
	s.mu.Lock()
	events := make([]CHEvent, len(s.chEvents))
	copy(events, s.chEvents)
	s.mu.Unlock()

	var open []openClaim
	var total time.Duration
	var matches int

	for _, ev := range events {
		switch ev.Event {
		case CHEventClaim:
			open = append(open, openClaim{node: ev.NodeID, at: ev.Time})
		case CHEventResign:
			for i, c := range open {
				if c.node == ev.NodeID {
					total += ev.Time.Sub(c.at)
					matches++
					open = append(open[:i], open[i+1:]...)
					break
				}
			}
		}
	}

	for _, c := range open {
		total += end.Sub(c.at)
		matches++
	}

	if matches == 0 {
		return 0
	}
	return total.Seconds() / float64(matches)
}

type openMembership struct {
	node ecscluster.NodeID
	ch   ecscluster.NodeID
	at   time.Time
}

// AverageMembershipLifetime implements §4.6's CalculateMembershipLifetime:
// Join Cluster opens a membership, Leave Cluster closes the matching
// (node, ch) pair, and I Resign (emitted alongside every CH Resign)
// force-closes every membership under that head — a CH stepping down
// ends every member's tenure even though no individual Leave Cluster
// was logged for them. Anything still open at end is charged through
// end, same as the CH side.
func (s *Stats) AverageMembershipLifetime(end time.Time) float64 {
	s.mu.Lock()
	events := make([]MembershipEvent, len(s.membership))
	copy(events, s.membership)
	s.mu.Unlock()

	var open []openMembership
	var total time.Duration
	var matches int

	for _, ev := range events {
		switch ev.Event {
		case MembershipJoinCluster:
			open = append(open, openMembership{node: ev.NodeID, ch: ev.ClusterHeadID, at: ev.Time})
		case MembershipLeaveCluster:
			for i, m := range open {
				if m.node == ev.NodeID && m.ch == ev.ClusterHeadID {
					total += ev.Time.Sub(m.at)
					matches++
					open = append(open[:i], open[i+1:]...)
					break
				}
			}
		case MembershipIResign:
			kept := open[:0]
			for _, m := range open {
				if m.ch == ev.NodeID {
					total += ev.Time.Sub(m.at)
					matches++
					continue
				}
				kept = append(kept, m)
			}
			open = kept
		}
	}

	for _, m := range open {
		total += end.Sub(m.at)
		matches++
	}

	if matches == 0 {
		return 0
	}
	return total.Seconds() / float64(matches)
}
