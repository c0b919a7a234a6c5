package stats

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// WriteCHEventsCSV writes CHEvents_<simNumber>.csv with columns
// node_status, node_address, event_time_seconds, event (§4.6).
//
// encoding/csv is the stdlib rather than a third-party writer: nothing
// in the retrieval pack pulls in a CSV library, and this format is a
// flat four/five-column dump with no quoting edge cases worth a
// dependency.
func (s *Stats) WriteCHEventsCSV(dir string, simNumber int, start time.Time) error {
	f, err := os.Create(filepath.Join(dir, fmt.Sprintf("CHEvents_%d.csv", simNumber)))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	for _, ev := range s.CHEvents() {
		row := []string{
			ev.NodeStatus,
			ev.NodeID.String(),
			fmt.Sprintf("%.6f", ev.Time.Sub(start).Seconds()),
			string(ev.Event),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteMembershipEventsCSV writes MembershipEvents_<simNumber>.csv with
// columns node_status, node_address, event_time_seconds, event,
// ch_address (§4.6).
func (s *Stats) WriteMembershipEventsCSV(dir string, simNumber int, start time.Time) error {
	f, err := os.Create(filepath.Join(dir, fmt.Sprintf("MembershipEvents_%d.csv", simNumber)))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	for _, ev := range s.MembershipEvents() {
		row := []string{
			ev.NodeStatus,
			ev.NodeID.String(),
			fmt.Sprintf("%.6f", ev.Time.Sub(start).Seconds()),
			string(ev.Event),
			ev.ClusterHeadID.String(),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// FinalStatsRow is one row of FinalStats.csv (§4.6): one simulation
// run's aggregates, appended rather than overwritten so a batch of
// runs accumulates into a single comparable table.
type FinalStatsRow struct {
	Seed                      int64
	NumNodes                  int
	NodeSpeed                 float64
	AvgClusterSizeTable       float64
	AvgClusterSizeFormula     float64
	AvgClusterHeads           float64
	AvgMembers                float64
	AvgGates                  float64
	AvgGuests                 float64
	TotalClusterChangeMessages uint64
	TotalClusteringMessages   uint64
	AvgCHLifetime             float64
	AvgMembershipLifetime     float64
}

// AppendFinalStatsCSV appends row to FinalStats.csv in dir, creating it
// with a header row if it does not yet exist.
func (s *Stats) AppendFinalStatsCSV(dir string, row FinalStatsRow) error {
	path := filepath.Join(dir, "FinalStats.csv")
	_, statErr := os.Stat(path)
	needsHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if needsHeader {
		if err := w.Write([]string{
			"seed", "num_nodes", "node_speed",
			"avg_cluster_size_table", "avg_cluster_size_formula",
			"avg_cluster_heads", "avg_members", "avg_gates", "avg_guests",
			"total_cluster_change_messages", "total_clustering_messages",
			"avg_ch_lifetime", "avg_membership_lifetime",
		}); err != nil {
			return err
		}
	}

	return w.Write([]string{
		fmt.Sprintf("%d", row.Seed),
		fmt.Sprintf("%d", row.NumNodes),
		fmt.Sprintf("%.4f", row.NodeSpeed),
		fmt.Sprintf("%.6f", row.AvgClusterSizeTable),
		fmt.Sprintf("%.6f", row.AvgClusterSizeFormula),
		fmt.Sprintf("%.6f", row.AvgClusterHeads),
		fmt.Sprintf("%.6f", row.AvgMembers),
		fmt.Sprintf("%.6f", row.AvgGates),
		fmt.Sprintf("%.6f", row.AvgGuests),
		fmt.Sprintf("%d", row.TotalClusterChangeMessages),
		fmt.Sprintf("%d", row.TotalClusteringMessages),
		fmt.Sprintf("%.6f", row.AvgCHLifetime),
		fmt.Sprintf("%.6f", row.AvgMembershipLifetime),
	})
}
