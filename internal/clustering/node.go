package clustering

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/PHoulding/ecs-clustering"
	"github.com/PHoulding/ecs-clustering/internal/check"
	"github.com/PHoulding/ecs-clustering/internal/telemetry"
)

const roleSampleWarmup = 55 * time.Second

// Node is one instance of the ECS clustering state machine (§4.4). All
// mutation happens on the scheduler's single-threaded loop — Node does
// not spawn goroutines and handlers must return promptly (§5).
type Node struct {
	id     ecscluster.NodeID
	cfg    Config
	sched  Scheduler
	trans  Transport
	stats  StatsSink
	idGen  *MessageIDGenerator
	rng    *rand.Rand
	log    *slog.Logger

	mu          sync.Mutex
	role        ecscluster.Role
	info        *InformationTable
	neighbors   *NeighborTable
	seen        map[ecscluster.MessageID]struct{}
	chClaimFlag bool
	unsubscribe func()
	timers      map[string]TimerHandle
	sampleCount int
	started     bool
	startedAt   time.Time
}

// New creates a node. idGen and rng are injected rather than
// package-global so a multi-node run can give every node a shared,
// single generator (duplicate suppression only works if ids are
// process-unique) while keeping per-node randomness independently
// seeded for reproducible elections.
func New(id ecscluster.NodeID, cfg Config, sched Scheduler, trans Transport, stats StatsSink, idGen *MessageIDGenerator, rng *rand.Rand) *Node {
	return &Node{
		id:        id,
		cfg:       cfg,
		sched:     sched,
		trans:     trans,
		stats:     stats,
		idGen:     idGen,
		rng:       rng,
		log:       slog.With("component", "clustering", "node", id.String()),
		role:      ecscluster.Unspecified,
		info:      NewInformationTable(),
		neighbors: NewNeighborTable(2, cfg.Hops),
		seen:      make(map[ecscluster.MessageID]struct{}),
		timers:    make(map[string]TimerHandle),
	}
}

// ID returns the node's identity.
func (n *Node) ID() ecscluster.NodeID { return n.id }

// Role returns the node's current role.
func (n *Node) Role() ecscluster.Role {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.role
}

// InformationTable exposes the node's table for inspection (tests,
// diagnostics).
func (n *Node) InformationTable() *InformationTable {
	return n.info
}

// NeighborTable exposes the node's routing-derived neighbor snapshot.
func (n *Node) NeighborTable() *NeighborTable {
	return n.neighbors
}

// Start schedules the election draw and the steady-state timers (§4.4.1).
func (n *Node) Start(ctx context.Context) {
	n.mu.Lock()
	if n.started {
		n.mu.Unlock()
		return
	}
	n.started = true
	n.startedAt = n.sched.Now()
	n.mu.Unlock()

	n.unsubscribe = n.trans.Subscribe(n.id, n.handleInbound)

	wait := n.cfg.WaitTime
	standoff := n.cfg.StandoffTime
	span := standoff - wait
	var draw time.Duration
	if span > 0 {
		draw = wait + time.Duration(n.rng.Int63n(int64(span)))
	} else {
		draw = wait
	}

	n.setTimer("claim", n.sched.Schedule(draw, func() { n.sendClaim(ctx) }))
	n.setTimer("hello", n.sched.Schedule(draw+n.cfg.HelloMessageTimeout, func() { n.hello(ctx) }))
	n.setTimer("scan", n.sched.Schedule(draw+n.cfg.HelloMessageTimeout+n.cfg.TableScanTimeout, func() { n.scan(ctx) }))
	n.setTimer("rolesample", n.sched.Schedule(roleSampleWarmup, func() { n.roleSample() }))
}

// Stop cancels every pending timer and unsubscribes from the transport
// (§3 Lifecycle).
func (n *Node) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, h := range n.timers {
		n.sched.Cancel(h)
	}
	n.timers = make(map[string]TimerHandle)
	if n.unsubscribe != nil {
		n.unsubscribe()
		n.unsubscribe = nil
	}
}

func (n *Node) setTimer(name string, h TimerHandle) {
	n.mu.Lock()
	n.timers[name] = h
	n.mu.Unlock()
}

func (n *Node) cancelTimer(name string) {
	n.mu.Lock()
	h, ok := n.timers[name]
	delete(n.timers, name)
	n.mu.Unlock()
	if ok {
		n.sched.Cancel(h)
	}
}

// --- outbound helpers -------------------------------------------------

func (n *Node) setRole(r ecscluster.Role) {
	check.Assertf(r.Valid(), "setRole: %d is not one of the six declared roles", r)
	n.mu.Lock()
	n.role = r
	n.mu.Unlock()
}

func (n *Node) broadcast(ctx context.Context, kind MessageKind, tableSize uint64) {
	msg := n.buildMessage(kind, tableSize)
	payload, err := Encode(msg)
	if err != nil {
		n.log.Error("encode failed", "kind", kind, "err", err)
		return
	}
	n.countOutgoing(kind)
	if err := n.trans.Broadcast(ctx, n.id, n.cfg.Hops, payload); err != nil {
		n.log.Debug("broadcast failed", "kind", kind, "err", err)
	}
}

func (n *Node) unicast(ctx context.Context, to ecscluster.NodeID, kind MessageKind, tableSize uint64) {
	msg := n.buildMessage(kind, tableSize)
	payload, err := Encode(msg)
	if err != nil {
		n.log.Error("encode failed", "kind", kind, "err", err)
		return
	}
	n.countOutgoing(kind)
	if err := n.trans.Unicast(ctx, n.id, to, payload); err != nil {
		n.log.Debug("unicast failed", "kind", kind, "to", to, "err", err)
	}
}

func (n *Node) buildMessage(kind MessageKind, tableSize uint64) Message {
	return Message{
		ID:          n.idGen.Next(),
		TimestampMS: uint64(n.sched.Now().UnixMilli()),
		SenderRole:  n.Role(),
		Kind:        kind,
		TableSize:   tableSize,
	}
}

func (n *Node) countOutgoing(kind MessageKind) {
	switch kind {
	case KindPing:
		n.stats.IncPing()
	case KindClaim:
		n.stats.IncClaim()
		n.stats.IncClusterChangeMessage()
	case KindStatus:
		n.stats.IncStatus()
	case KindMeeting:
		n.stats.IncMeeting()
	case KindResign:
		n.stats.IncResign()
		n.stats.IncClusterChangeMessage()
	}
	n.stats.IncClusteringMessage()
}

// --- periodic callbacks ------------------------------------------------

// sendClaim is the election timeout firing with no prior CLAIM seen
// (§4.4.1).
func (n *Node) sendClaim(ctx context.Context) {
	n.setRole(ecscluster.ClusterHead)
	n.broadcast(ctx, KindClaim, 0)
	n.mu.Lock()
	n.chClaimFlag = true
	n.mu.Unlock()
	n.stats.RecordCHClaim(n.id, n.sched.Now())

	n.cancelTimer("claim")
}

// hello is the periodic PING broadcast (§4.4.7), rescheduled after
// every firing.
func (n *Node) hello(ctx context.Context) {
	n.broadcast(ctx, KindPing, 0)
	n.setTimer("hello", n.sched.Schedule(n.cfg.HelloMessageTimeout, func() { n.hello(ctx) }))
}

// scan is the periodic table refresh (§4.4.7), rescheduled after every
// firing.
func (n *Node) scan(ctx context.Context) {
	telemetry.SpanScan(ctx, n.id.String(), func(ctx context.Context) {
		now := n.sched.Now()
		n.info.Scan(now, n.cfg.ValidEntryTimeout)

		if n.Role() == ecscluster.ClusterHead {
			n.setTimer("chcheck", n.sched.Schedule(3*time.Second, func() { n.checkCHShouldResign(ctx) }))
		}
	})

	n.setTimer("scan", n.sched.Schedule(n.cfg.TableScanTimeout, func() { n.scan(ctx) }))
}

// checkCHShouldResign implements §4.4.7's CheckCHShouldResign.
func (n *Node) checkCHShouldResign(ctx context.Context) {
	if n.Role() != ecscluster.ClusterHead {
		return
	}

	if n.info.Size() == 0 {
		n.mu.Lock()
		n.chClaimFlag = false
		n.mu.Unlock()
		n.setRole(ecscluster.Standalone)
		now := n.sched.Now()
		n.stats.RecordCHResign(n.id, now)
		n.stats.RecordBecomeStandalone(n.id, now)
		return
	}

	hasGateway := false
	for _, r := range n.info.Rows() {
		if r.Role == ecscluster.ClusterGateway {
			hasGateway = true
			break
		}
	}

	if n.info.Size()+1 <= n.cfg.ResignThreshold && hasGateway {
		n.resignAsHead(ctx)
	}
}

// resignAsHead is the "I am a CH giving it up" action used by
// checkCHShouldResign (§4.4.7). The MEETING tie-break loser resigns
// inline in handleMeeting instead.
func (n *Node) resignAsHead(ctx context.Context) {
	n.mu.Lock()
	n.chClaimFlag = false
	n.mu.Unlock()
	n.setRole(ecscluster.ClusterGuest)
	n.broadcast(ctx, KindResign, 0)
	n.stats.RecordCHResign(n.id, n.sched.Now())
}

// roleSample implements §4.4.8, rescheduled after every firing.
func (n *Node) roleSample() {
	now := n.sched.Now()
	if now.Sub(n.startedAt) > roleSampleWarmup {
		role := n.Role()
		headsCovering := 0
		accessPoints := 0
		switch role {
		case ecscluster.ClusterGateway:
			headsCovering = n.info.CountHeads()
		case ecscluster.ClusterGuest:
			accessPoints = n.info.CountMembersOrGateways()
		}
		n.stats.SampleRole(role, headsCovering, accessPoints)
		n.mu.Lock()
		n.sampleCount++
		n.mu.Unlock()
	}
	n.setTimer("rolesample", n.sched.Schedule(60*time.Second, n.roleSample))
}

// --- inbound dispatch ---------------------------------------------------

func (n *Node) handleInbound(from ecscluster.NodeID, payload []byte) {
	msg, err := Decode(payload)
	if err != nil {
		n.log.Debug("malformed message dropped", "from", from, "err", err)
		return
	}

	n.mu.Lock()
	if _, dup := n.seen[msg.ID]; dup {
		n.mu.Unlock()
		return
	}
	n.seen[msg.ID] = struct{}{}
	n.mu.Unlock()

	ctx := context.Background()
	now := n.sched.Now()

	_ = telemetry.SpanDispatch(ctx, n.id.String(), msg.Kind.String(), func(ctx context.Context) error {
		switch msg.Kind {
		case KindPing:
			n.handlePing(ctx, from, msg, now)
		case KindClaim:
			n.handleClaim(ctx, from, msg, now)
		case KindStatus:
			n.handleStatus(from, msg, now)
		case KindMeeting:
			n.handleMeeting(ctx, from, msg)
		case KindResign:
			n.handleResign(ctx, from, msg, now)
		case KindInquiry:
			n.handleInquiry(ctx, from, msg, now)
		}
		return nil
	})
}

// handlePing implements §4.4.3.
func (n *Node) handlePing(ctx context.Context, from ecscluster.NodeID, msg Message, now time.Time) {
	n.info.UpsertOnPing(from, msg.SenderRole, now)
	my := n.Role()

	switch msg.SenderRole {
	case ecscluster.ClusterHead:
		switch my {
		case ecscluster.Unspecified:
			n.setRole(ecscluster.ClusterMember)
			n.unicast(ctx, from, KindStatus, 0)
			n.stats.RecordMembershipStart(ecscluster.ClusterMember, n.id, now, from)
		case ecscluster.ClusterHead:
			n.unicast(ctx, from, KindMeeting, uint64(n.info.Size()))
		case ecscluster.ClusterMember:
			if currentCH, ok := n.info.FirstHeadID(); !ok || currentCH != from {
				n.setRole(ecscluster.ClusterGateway)
				n.stats.RecordMembershipStart(ecscluster.ClusterGateway, n.id, now, from)
			}
		case ecscluster.Standalone, ecscluster.ClusterGuest:
			n.setRole(ecscluster.ClusterMember)
			n.unicast(ctx, from, KindStatus, 0)
			n.stats.RecordMembershipStart(ecscluster.ClusterMember, n.id, now, from)
		case ecscluster.ClusterGateway:
			// already head-aware; no role change
		}
	case ecscluster.ClusterMember, ecscluster.ClusterGateway:
		if my == ecscluster.Unspecified || my == ecscluster.Standalone {
			n.setRole(ecscluster.ClusterGuest)
			n.unicast(ctx, from, KindStatus, 0)
		}
	default:
		// Unspecified, CG, SA sender: row update only, no role change.
	}
}

// handleClaim implements §4.4.4.
func (n *Node) handleClaim(ctx context.Context, from ecscluster.NodeID, msg Message, now time.Time) {
	n.info.UpsertOnPing(from, ecscluster.ClusterHead, now)
	n.cancelTimer("claim")

	my := n.Role()
	inStandoff := now.Before(n.startedAt.Add(n.cfg.StandoffTime))

	if inStandoff {
		switch my {
		case ecscluster.Unspecified:
			n.setRole(ecscluster.ClusterMember)
			n.unicast(ctx, from, KindStatus, 0)
			n.stats.RecordMembershipStart(ecscluster.ClusterMember, n.id, now, from)
		case ecscluster.ClusterMember:
			n.setRole(ecscluster.ClusterGateway)
			n.unicast(ctx, from, KindStatus, 0)
			n.stats.RecordMembershipStart(ecscluster.ClusterGateway, n.id, now, from)
		default:
			n.unicast(ctx, from, KindStatus, 0)
		}
		return
	}

	switch my {
	case ecscluster.ClusterMember:
		n.setRole(ecscluster.ClusterGateway)
		n.broadcast(ctx, KindPing, 0)
		n.stats.RecordMembershipStart(ecscluster.ClusterGateway, n.id, now, from)
	case ecscluster.Standalone, ecscluster.ClusterGuest:
		n.setRole(ecscluster.ClusterMember)
		n.broadcast(ctx, KindPing, 0)
		n.stats.RecordMembershipStart(ecscluster.ClusterMember, n.id, now, from)
	default:
		n.unicast(ctx, from, KindStatus, 0)
	}
}

// handleStatus implements the STATUS row of §4.4.2's dispatch table.
func (n *Node) handleStatus(from ecscluster.NodeID, msg Message, now time.Time) {
	n.info.UpsertOnPing(from, msg.SenderRole, now)
	n.mu.Lock()
	claiming := n.chClaimFlag
	n.mu.Unlock()
	if claiming {
		n.stats.RecordCHReceiveStatus(n.id, now)
	}
}

// handleMeeting implements §4.4.5, the head-vs-head tie-break.
func (n *Node) handleMeeting(ctx context.Context, from ecscluster.NodeID, msg Message) {
	if n.Role() != ecscluster.ClusterHead {
		n.log.Error("MEETING received by non-head, protocol violation", "from", from)
		return
	}

	mySize := uint64(n.info.Size())
	if msg.TableSize >= mySize {
		n.mu.Lock()
		n.chClaimFlag = false
		n.mu.Unlock()
		n.setRole(ecscluster.ClusterMember)
		n.broadcast(ctx, KindResign, 0)
		n.broadcast(ctx, KindPing, 0)
		n.stats.RecordMembershipStart(ecscluster.ClusterMember, n.id, n.sched.Now(), from)
		n.stats.RecordCHResign(n.id, n.sched.Now())
		return
	}

	n.unicast(ctx, from, KindMeeting, mySize)
}

// handleResign implements §4.4.6.
func (n *Node) handleResign(ctx context.Context, from ecscluster.NodeID, msg Message, now time.Time) {
	n.info.UpsertOnPing(from, msg.SenderRole, now)

	if n.Role() == ecscluster.ClusterGateway {
		heads := n.info.CountHeads()
		membersLike := n.info.CountMembersOrGateways()
		switch {
		case heads == 1:
			n.setRole(ecscluster.ClusterMember)
			n.stats.RecordMembershipEnd(ecscluster.ClusterGateway, n.id, now, from)
			if remaining, ok := n.info.FirstHeadID(); ok {
				n.stats.RecordMembershipStart(ecscluster.ClusterMember, n.id, now, remaining)
			}
		case heads == 0 && membersLike >= 1:
			n.setRole(ecscluster.ClusterGuest)
			n.stats.RecordMembershipEnd(ecscluster.ClusterGateway, n.id, now, from)
		default:
			n.stats.RecordMembershipEnd(ecscluster.ClusterGateway, n.id, now, from)
			for _, head := range n.info.AllHeadIDs() {
				n.stats.RecordMembershipStart(ecscluster.ClusterGateway, n.id, now, head)
			}
		}
	}

	if n.Role() != ecscluster.ClusterHead {
		if _, ok := n.info.FirstHeadID(); !ok {
			delay := 100*time.Millisecond + time.Duration(n.rng.Int63n(int64(400*time.Millisecond)))
			n.setTimer("claim", n.sched.Schedule(delay, func() { n.sendClaim(ctx) }))
		}
	}
}

// handleInquiry implements the INQUIRY row of §4.4.2's dispatch table.
func (n *Node) handleInquiry(ctx context.Context, from ecscluster.NodeID, msg Message, now time.Time) {
	n.info.UpsertOnPing(from, msg.SenderRole, now)
	n.unicast(ctx, from, KindStatus, 0)
}
