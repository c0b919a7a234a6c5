package clustering_test

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/PHoulding/ecs-clustering"
	"github.com/PHoulding/ecs-clustering/internal/clustering"
	"github.com/PHoulding/ecs-clustering/internal/eventsched"
	"github.com/PHoulding/ecs-clustering/internal/stats"
	"github.com/PHoulding/ecs-clustering/internal/transport"
)

// testConfig shrinks the default timers so scenarios settle in a few
// seconds of virtual time instead of minutes.
func testConfig() clustering.Config {
	c := clustering.DefaultConfig()
	c.WaitTime = 0
	c.StandoffTime = 500 * time.Millisecond
	c.HelloMessageTimeout = 200 * time.Millisecond
	c.TableScanTimeout = 100 * time.Millisecond
	c.ValidEntryTimeout = 400 * time.Millisecond
	c.ResignThreshold = 5
	return c
}

type harness struct {
	engine *eventsched.Engine
	sched  *eventsched.VirtualScheduler
	trans  *transport.Memory
	stats  *stats.Stats
	idGen  *clustering.MessageIDGenerator
	start  time.Time
}

func newHarness() *harness {
	start := time.Unix(0, 0).UTC()
	engine := eventsched.NewEngine(start)
	sched := eventsched.NewVirtualScheduler(engine)
	trans := transport.NewMemory(sched, rand.New(rand.NewSource(1)))
	return &harness{
		engine: engine,
		sched:  sched,
		trans:  trans,
		stats:  stats.New(),
		idGen:  clustering.NewMessageIDGenerator(),
		start:  start,
	}
}

func (h *harness) newNode(t *testing.T, ip byte, cfg clustering.Config, seed int64) *clustering.Node {
	t.Helper()
	id, err := ecscluster.NodeIDFromIP([]byte{10, 1, 0, ip})
	if err != nil {
		t.Fatalf("NodeIDFromIP: %v", err)
	}
	return clustering.New(id, cfg, h.sched, h.trans, h.stats, h.idGen, rand.New(rand.NewSource(seed)))
}

func (h *harness) runFor(d time.Duration) {
	h.engine.RunUntil(h.start.Add(d))
}

func TestSoloNodeElectsThenResigns(t *testing.T) {
	h := newHarness()
	cfg := testConfig()
	node := h.newNode(t, 1, cfg, 1)
	h.trans.SetAdjacency(node.ID(), nil)

	ctx := context.Background()
	node.Start(ctx)

	h.runFor(cfg.StandoffTime + 10*time.Millisecond)
	if node.Role() != ecscluster.ClusterHead {
		t.Fatalf("Role() after standoff = %v, want ClusterHead", node.Role())
	}

	// No neighbors ever appear, so the first CheckCHShouldResign (3s
	// after the first table scan, which runs at draw + hello timeout +
	// table scan period) should find an empty table and fall back to
	// STANDALONE.
	h.runFor(cfg.StandoffTime + cfg.HelloMessageTimeout + cfg.TableScanTimeout + 3*time.Second + 50*time.Millisecond)
	if node.Role() != ecscluster.Standalone {
		t.Fatalf("Role() after empty-table check = %v, want Standalone", node.Role())
	}

	claims, resigns := 0, 0
	for _, ev := range h.stats.CHEvents() {
		switch ev.Event {
		case stats.CHEventClaim:
			claims++
		case stats.CHEventResign:
			resigns++
		}
	}
	if claims != 1 {
		t.Errorf("CH_Claim events = %d, want 1", claims)
	}
	if resigns != 1 {
		t.Errorf("CH_Resign events = %d, want 1", resigns)
	}
}

func TestTwoNodeElection(t *testing.T) {
	h := newHarness()
	cfg := testConfig()
	// B's draw is pinned to exactly StandoffTime (WaitTime == StandoffTime
	// collapses the random span to a point) so A's randomized draw,
	// which is always strictly less than StandoffTime, wins the race
	// deterministically and cancels B's own claim timer on arrival.
	cfgB := cfg
	cfgB.WaitTime = cfg.StandoffTime
	a := h.newNode(t, 1, cfg, 1)
	b := h.newNode(t, 2, cfgB, 99)
	h.trans.SetAdjacency(a.ID(), []ecscluster.NodeID{b.ID()})
	h.trans.SetAdjacency(b.ID(), []ecscluster.NodeID{a.ID()})

	ctx := context.Background()
	a.Start(ctx)
	b.Start(ctx)

	h.runFor(cfg.StandoffTime + 200*time.Millisecond)

	aRole, bRole := a.Role(), b.Role()
	heads := 0
	for _, r := range []ecscluster.Role{aRole, bRole} {
		if r == ecscluster.ClusterHead {
			heads++
		}
	}
	if heads != 1 {
		t.Fatalf("exactly one head expected, got a=%v b=%v", aRole, bRole)
	}
	members := 0
	for _, r := range []ecscluster.Role{aRole, bRole} {
		if r == ecscluster.ClusterMember {
			members++
		}
	}
	if members != 1 {
		t.Fatalf("exactly one member expected, got a=%v b=%v", aRole, bRole)
	}
}

func TestHeadVsHeadMeetingTieBreak(t *testing.T) {
	h := newHarness()
	cfg := testConfig()
	cfg.HelloMessageTimeout = time.Hour // keep the periodic hello out of the way
	a := h.newNode(t, 1, cfg, 1)
	b := h.newNode(t, 2, cfg, 2)

	ctx := context.Background()
	a.Start(ctx)
	b.Start(ctx)
	h.runFor(cfg.StandoffTime + 5*time.Millisecond)

	if a.Role() != ecscluster.ClusterHead || b.Role() != ecscluster.ClusterHead {
		t.Fatalf("expected both nodes to self-elect before linking, got a=%v b=%v", a.Role(), b.Role())
	}

	// Give A's info table an extra row so its table size wins the tie.
	a.InformationTable().UpsertOnPing(999, ecscluster.ClusterMember, h.sched.Now())

	h.trans.SetAdjacency(a.ID(), []ecscluster.NodeID{b.ID()})
	h.trans.SetAdjacency(b.ID(), []ecscluster.NodeID{a.ID()})

	// Drive the exchange directly instead of waiting on each node's own
	// randomized hello timer: a single CH-role PING from B reaches A,
	// which (per §4.4.3) answers with a MEETING carrying its table
	// size, and B's handleMeeting resolves the tie from there.
	ping, err := clustering.Encode(clustering.Message{ID: 500001, SenderRole: ecscluster.ClusterHead, Kind: clustering.KindPing})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := h.trans.Broadcast(ctx, b.ID(), cfg.Hops, ping); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	h.runFor(cfg.StandoffTime + 50*time.Millisecond)

	heads := 0
	for _, r := range []ecscluster.Role{a.Role(), b.Role()} {
		if r == ecscluster.ClusterHead {
			heads++
		}
	}
	if heads != 1 {
		t.Fatalf("tie-break should leave exactly one head, got a=%v b=%v", a.Role(), b.Role())
	}
	// B's table was empty when it received A's MEETING reply, so it
	// must be the one that resigned.
	if b.Role() != ecscluster.ClusterMember {
		t.Errorf("loser role = %v, want ClusterMember (B had the smaller table)", b.Role())
	}
	if a.Role() != ecscluster.ClusterHead {
		t.Errorf("winner role = %v, want ClusterHead (A had the larger table)", a.Role())
	}
}

func TestGatewayFormsBetweenTwoHeads(t *testing.T) {
	h := newHarness()
	cfg := testConfig()
	// bridge's own election draw is pinned far beyond the test window so
	// it never contends for CH itself; it only ever reacts to the two
	// heads' CLAIMs and PINGs.
	bridgeCfg := cfg
	bridgeCfg.WaitTime = time.Hour
	bridgeCfg.StandoffTime = time.Hour

	headA := h.newNode(t, 1, cfg, 1)
	headB := h.newNode(t, 2, cfg, 5)
	bridge := h.newNode(t, 3, bridgeCfg, 9)

	h.trans.SetAdjacency(headA.ID(), []ecscluster.NodeID{bridge.ID()})
	h.trans.SetAdjacency(headB.ID(), []ecscluster.NodeID{bridge.ID()})
	h.trans.SetAdjacency(bridge.ID(), []ecscluster.NodeID{headA.ID(), headB.ID()})

	ctx := context.Background()
	headA.Start(ctx)
	headB.Start(ctx)
	bridge.Start(ctx)

	h.runFor(cfg.StandoffTime + cfg.HelloMessageTimeout*10)

	if headA.Role() != ecscluster.ClusterHead {
		t.Errorf("headA.Role() = %v, want ClusterHead", headA.Role())
	}
	if headB.Role() != ecscluster.ClusterHead {
		t.Errorf("headB.Role() = %v, want ClusterHead", headB.Role())
	}
	if bridge.Role() != ecscluster.ClusterGateway {
		t.Errorf("bridge.Role() = %v, want ClusterGateway (hears two distinct heads)", bridge.Role())
	}
}

// TestGuestDemotionOnHeadResign drives a three-node chain: A is CH, B
// is A's CM, and C only ever hears A through B's PINGs and so becomes
// CG rather than CM.
func TestGuestDemotionOnHeadResign(t *testing.T) {
	h := newHarness()
	cfg := testConfig()
	bCfg := cfg
	bCfg.WaitTime = cfg.StandoffTime // always claims after A, guaranteeing A wins the race
	cCfg := cfg
	cCfg.WaitTime = time.Hour // C never self-claims; it only reacts to B's hello
	cCfg.StandoffTime = time.Hour

	a := h.newNode(t, 1, cfg, 1)
	b := h.newNode(t, 2, bCfg, 2)
	c := h.newNode(t, 3, cCfg, 3)

	h.trans.SetAdjacency(a.ID(), []ecscluster.NodeID{b.ID()})
	h.trans.SetAdjacency(b.ID(), []ecscluster.NodeID{a.ID(), c.ID()})
	h.trans.SetAdjacency(c.ID(), []ecscluster.NodeID{b.ID()})

	ctx := context.Background()
	a.Start(ctx)
	b.Start(ctx)
	c.Start(ctx)

	// A claims, B becomes its CM; B's first hello (a PING with
	// SenderRole=CM) then reaches C, which has no direct path to A and
	// so becomes CG rather than CM.
	h.runFor(cfg.StandoffTime + cfg.HelloMessageTimeout + 20*time.Millisecond)

	if a.Role() != ecscluster.ClusterHead {
		t.Fatalf("a.Role() = %v, want ClusterHead", a.Role())
	}
	if b.Role() != ecscluster.ClusterMember {
		t.Fatalf("b.Role() = %v, want ClusterMember", b.Role())
	}
	if c.Role() != ecscluster.ClusterGuest {
		t.Fatalf("c.Role() = %v, want ClusterGuest", c.Role())
	}

	// A RESIGN as CheckCHShouldResign sends it (sender role CG) is
	// flooded two hops out from A, reaching C directly without needing
	// B to relay it explicitly. A's own role is left unchanged.
	payload, err := clustering.Encode(clustering.Message{
		ID:         999999,
		SenderRole: ecscluster.ClusterGuest,
		Kind:       clustering.KindResign,
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := h.trans.Broadcast(ctx, a.ID(), 2, payload); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	h.runFor(cfg.StandoffTime + cfg.HelloMessageTimeout + 50*time.Millisecond)

	if c.Role() != ecscluster.ClusterGuest {
		t.Fatalf("c.Role() immediately after RESIGN = %v, want unchanged ClusterGuest (gateway logic doesn't apply to a CG)", c.Role())
	}
	if _, ok := c.InformationTable().FirstHeadID(); ok {
		t.Fatalf("c's information table should contain no CH after the resign")
	}

	// With no CH left in their tables, B and C each schedule a
	// re-election claim. B's draw (seed 2) is shorter than C's (seed 3),
	// so B claims first: C cancels its pending claim on B's CLAIM and
	// joins B as CM on B's next CH PING.
	h.runFor(cfg.StandoffTime + cfg.HelloMessageTimeout + 600*time.Millisecond)
	if c.Role() != ecscluster.ClusterMember {
		t.Errorf("c.Role() after re-election window = %v, want ClusterMember (joined B's re-election)", c.Role())
	}
}

func TestFreshnessEvictionDropsStaleNeighbor(t *testing.T) {
	h := newHarness()
	cfg := testConfig()
	node := h.newNode(t, 1, cfg, 1)

	now := h.sched.Now()
	node.InformationTable().UpsertOnPing(42, ecscluster.ClusterMember, now)
	if node.InformationTable().Size() != 1 {
		t.Fatalf("Size() = %d, want 1", node.InformationTable().Size())
	}

	node.InformationTable().Scan(now.Add(cfg.ValidEntryTimeout+time.Millisecond), cfg.ValidEntryTimeout)
	if node.InformationTable().Size() != 0 {
		t.Fatalf("Size() after expiry = %d, want 0", node.InformationTable().Size())
	}
}
