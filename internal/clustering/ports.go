package clustering

import (
	"context"
	"time"

	"github.com/PHoulding/ecs-clustering"
)

// TimerHandle identifies a scheduled callback so it can be cancelled.
type TimerHandle uint64

// Scheduler is a thin wrapper over the simulator's (or the real
// runtime's) timer facility. Simulation and tests:
// internal/eventsched.VirtualScheduler over an Engine, which jumps to
// each next fire time instead of sleeping. Live deployments:
// internal/eventsched.RealScheduler.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time
	// Schedule runs cb once after delay has elapsed, returning a handle
	// that Cancel can use to suppress it before it fires.
	Schedule(delay time.Duration, cb func()) TimerHandle
	// Cancel suppresses a pending callback. Canceling an already-fired
	// or already-canceled handle is a no-op.
	Cancel(h TimerHandle)
}

// Transport is the opaque packet transport a node broadcasts and
// unicasts over. Production: internal/transport.UDP. Testing:
// internal/transport.Memory.
type Transport interface {
	// Broadcast floods payload to every node within ttl hops of from.
	Broadcast(ctx context.Context, from ecscluster.NodeID, ttl int, payload []byte) error
	// Unicast sends payload directly to one node.
	Unicast(ctx context.Context, from, to ecscluster.NodeID, payload []byte) error
	// Subscribe registers id to receive inbound payloads. The returned
	// func deregisters it. handler must not block: Memory invokes it
	// from a callback on its Scheduler, UDP from its receive goroutine.
	Subscribe(id ecscluster.NodeID, handler func(from ecscluster.NodeID, payload []byte)) (unsubscribe func())
}

// StatsSink is the write side of the event log and counters (§4.6).
// Production/testing: internal/stats.Stats.
type StatsSink interface {
	RecordCHClaim(node ecscluster.NodeID, t time.Time)
	RecordCHReceiveStatus(node ecscluster.NodeID, t time.Time)
	RecordCHResign(node ecscluster.NodeID, t time.Time)
	RecordMembershipStart(role ecscluster.Role, node ecscluster.NodeID, t time.Time, ch ecscluster.NodeID)
	RecordMembershipEnd(role ecscluster.Role, node ecscluster.NodeID, t time.Time, ch ecscluster.NodeID)
	RecordBecomeStandalone(node ecscluster.NodeID, t time.Time)

	IncPing()
	IncClaim()
	IncStatus()
	IncMeeting()
	IncResign()
	IncClusteringMessage()
	IncClusterChangeMessage()

	SampleRole(role ecscluster.Role, headsCovering, accessPoints int)
}
