package stats

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/PHoulding/ecs-clustering"
)

func TestWriteCHEventsCSV(t *testing.T) {
	s := New()
	start := time.Unix(1000, 0)
	s.RecordCHClaim(5, start.Add(2*time.Second))
	s.RecordCHResign(5, start.Add(12*time.Second))

	dir := t.TempDir()
	if err := s.WriteCHEventsCSV(dir, 1, start); err != nil {
		t.Fatalf("WriteCHEventsCSV: %v", err)
	}

	rows := readCSV(t, filepath.Join(dir, "CHEvents_1.csv"))
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0][0] != "CH" || rows[0][2] != "2.000000" || rows[0][3] != string(CHEventClaim) {
		t.Errorf("row 0 = %v", rows[0])
	}
	if rows[1][2] != "12.000000" || rows[1][3] != string(CHEventResign) {
		t.Errorf("row 1 = %v", rows[1])
	}
}

func TestWriteMembershipEventsCSV(t *testing.T) {
	s := New()
	start := time.Unix(0, 0)
	s.RecordMembershipStart(ecscluster.ClusterMember, 10, start.Add(time.Second), 1)
	s.RecordMembershipEnd(ecscluster.ClusterMember, 10, start.Add(6*time.Second), 1)

	dir := t.TempDir()
	if err := s.WriteMembershipEventsCSV(dir, 2, start); err != nil {
		t.Fatalf("WriteMembershipEventsCSV: %v", err)
	}

	rows := readCSV(t, filepath.Join(dir, "MembershipEvents_2.csv"))
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0][3] != string(MembershipJoinCluster) || rows[0][4] != ecscluster.NodeID(1).String() {
		t.Errorf("row 0 = %v", rows[0])
	}
	if rows[1][3] != string(MembershipLeaveCluster) {
		t.Errorf("row 1 = %v", rows[1])
	}
}

func TestAppendFinalStatsCSVWritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	s := New()

	row := FinalStatsRow{Seed: 42, NumNodes: 10, NodeSpeed: 1.5, AvgClusterSizeTable: 3}
	if err := s.AppendFinalStatsCSV(dir, row); err != nil {
		t.Fatalf("AppendFinalStatsCSV (1st): %v", err)
	}
	row2 := FinalStatsRow{Seed: 43, NumNodes: 20, NodeSpeed: 2.5, AvgClusterSizeTable: 4}
	if err := s.AppendFinalStatsCSV(dir, row2); err != nil {
		t.Fatalf("AppendFinalStatsCSV (2nd): %v", err)
	}

	rows := readCSV(t, filepath.Join(dir, "FinalStats.csv"))
	if len(rows) != 3 {
		t.Fatalf("got %d rows (incl header), want 3", len(rows))
	}
	if rows[0][0] != "seed" {
		t.Errorf("header row = %v", rows[0])
	}
	if rows[1][0] != "42" || rows[2][0] != "43" {
		t.Errorf("data rows = %v / %v", rows[1], rows[2])
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv %s: %v", path, err)
	}
	return rows
}
