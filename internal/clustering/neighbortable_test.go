package clustering

import "testing"

const aodvSample = `AODV Routing table
10.1.0.1 0.0.0.0 255.255.255.0 UP 0 1 wlan0
10.1.0.2 0.0.0.0 255.255.255.0 UP 0 2 wlan0
127.0.0.1 0.0.0.0 255.0.0.0 UP 0 1 lo
10.1.255.255 0.0.0.0 255.255.255.255 UP 0 1 wlan0
`

const dsdvSample = `DSDV Routing table
10.1.0.1 0.0.0.0 0 1 wlan0
10.1.0.2 0.0.0.0 0 1 wlan0
`

func TestParseRoutingTableAODVFiltersAndHops(t *testing.T) {
	tbl := NewNeighborTable(2, 1)
	tbl.Update(RoutingAODV, aodvSample)
	got := tbl.Current()

	if len(got) != 1 {
		t.Fatalf("Current() = %v, want exactly the 1-hop UP entry", got)
	}
	if got[0].String() != "10.1.0.1" {
		t.Errorf("Current()[0] = %s, want 10.1.0.1", got[0].String())
	}
}

func TestParseRoutingTableDSDV(t *testing.T) {
	tbl := NewNeighborTable(2, 1)
	tbl.Update(RoutingDSDV, dsdvSample)
	got := tbl.Current()
	if len(got) != 2 {
		t.Fatalf("Current() = %v, want 2 entries", got)
	}
}

func TestNeighborTableChangeDegree(t *testing.T) {
	tbl := NewNeighborTable(2, 1)

	if got := tbl.ChangeDegree(); got != 0 {
		t.Fatalf("ChangeDegree before any update = %v, want 0", got)
	}

	tbl.Update(RoutingAODV, "AODV Routing table\n10.1.0.1 0.0.0.0 255.255.255.0 UP 0 1 wlan0\n10.1.0.2 0.0.0.0 255.255.255.0 UP 0 1 wlan0\n")
	if got := tbl.ChangeDegree(); got != 0 {
		t.Fatalf("ChangeDegree after one update = %v, want 0", got)
	}

	tbl.Update(RoutingAODV, "AODV Routing table\n10.1.0.1 0.0.0.0 255.255.255.0 UP 0 1 wlan0\n10.1.0.3 0.0.0.0 255.255.255.0 UP 0 1 wlan0\n")
	degree := tbl.ChangeDegree()
	// prev={1,2} cur={1,3}: union={1,2,3}, intersection={1} -> (3-1)/3
	want := 2.0 / 3.0
	if diff := degree - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("ChangeDegree() = %v, want %v", degree, want)
	}
}

func TestParseRoutingTableRejectsOutOfHopRange(t *testing.T) {
	tbl := NewNeighborTable(2, 1)
	tbl.Update(RoutingAODV, aodvSample)
	for _, id := range tbl.Current() {
		if id.String() == "10.1.0.2" {
			t.Fatalf("2-hop neighbor %s should be excluded when maxHops=1", id)
		}
	}
}
