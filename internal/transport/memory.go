package transport

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/PHoulding/ecs-clustering"
	"github.com/PHoulding/ecs-clustering/internal/check"
	"github.com/PHoulding/ecs-clustering/internal/clustering"
)

// LinkConfig controls per-edge delivery behavior between two nodes
// (§8's link-partition and latency scenarios).
type LinkConfig struct {
	Latency time.Duration // delivery delay added on top of scheduling (0 = next tick)
	Drop    float64       // 0.0-1.0 random loss probability
}

type link struct{ from, to ecscluster.NodeID }

type subscriber struct {
	handler func(from ecscluster.NodeID, payload []byte)
}

// Memory is an in-process broadcast/unicast transport. Every node it
// serves shares the same Scheduler, so delivery timing stays inside
// the scheduler's virtual clock the way a real radio's propagation
// delay would sit inside wall-clock time.
type Memory struct {
	sched clustering.Scheduler
	rng   *rand.Rand

	mu          sync.RWMutex
	subscribers map[ecscluster.NodeID]*subscriber
	adjacency   map[ecscluster.NodeID]map[ecscluster.NodeID]int // nodeID -> neighbor -> hop distance
	links       map[link]LinkConfig
	blocked     map[link]bool
}

// NewMemory creates a Memory transport driven by sched. rng governs
// drop-rate decisions only; pass a seeded *rand.Rand for reproducible
// runs.
func NewMemory(sched clustering.Scheduler, rng *rand.Rand) *Memory {
	check.Assert(sched != nil, "NewMemory: scheduler must not be nil")
	check.Assert(rng != nil, "NewMemory: rng must not be nil")
	return &Memory{
		sched:       sched,
		rng:         rng,
		subscribers: make(map[ecscluster.NodeID]*subscriber),
		adjacency:   make(map[ecscluster.NodeID]map[ecscluster.NodeID]int),
		links:       make(map[link]LinkConfig),
		blocked:     make(map[link]bool),
	}
}

// SetAdjacency declares the one-hop neighbors visible to id, used to
// derive multi-hop reachability for Broadcast's ttl.
func (m *Memory) SetAdjacency(id ecscluster.NodeID, neighbors []ecscluster.NodeID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := make(map[ecscluster.NodeID]int, len(neighbors))
	for _, nb := range neighbors {
		set[nb] = 1
	}
	m.adjacency[id] = set
}

// SetLink configures latency/drop behavior for the from→to edge.
func (m *Memory) SetLink(from, to ecscluster.NodeID, cfg LinkConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[link{from, to}] = cfg
}

// Partition blocks delivery in both directions between every pair
// drawn from groupA and groupB.
func (m *Memory) Partition(groupA, groupB []ecscluster.NodeID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range groupA {
		for _, b := range groupB {
			m.blocked[link{a, b}] = true
			m.blocked[link{b, a}] = true
		}
	}
}

// Heal removes every partition installed by Partition.
func (m *Memory) Heal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocked = make(map[link]bool)
}

// Subscribe registers id to receive inbound payloads.
func (m *Memory) Subscribe(id ecscluster.NodeID, handler func(from ecscluster.NodeID, payload []byte)) func() {
	m.mu.Lock()
	m.subscribers[id] = &subscriber{handler: handler}
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

// reachable returns every node within ttl hops of from, via BFS over
// the declared adjacency.
func (m *Memory) reachable(from ecscluster.NodeID, ttl int) []ecscluster.NodeID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dist := map[ecscluster.NodeID]int{from: 0}
	frontier := []ecscluster.NodeID{from}
	for hop := 1; hop <= ttl; hop++ {
		var next []ecscluster.NodeID
		for _, cur := range frontier {
			for nb := range m.adjacency[cur] {
				if _, seen := dist[nb]; seen {
					continue
				}
				dist[nb] = hop
				next = append(next, nb)
			}
		}
		frontier = next
		if len(frontier) == 0 {
			break
		}
	}

	out := make([]ecscluster.NodeID, 0, len(dist))
	for id := range dist {
		if id != from {
			out = append(out, id)
		}
	}
	return out
}

func (m *Memory) deliver(from, to ecscluster.NodeID, payload []byte) {
	m.mu.RLock()
	if m.blocked[link{from, to}] {
		m.mu.RUnlock()
		return
	}
	cfg := m.links[link{from, to}]
	sub := m.subscribers[to]
	m.mu.RUnlock()

	if sub == nil {
		return
	}
	if cfg.Drop > 0 && m.rng.Float64() < cfg.Drop {
		return
	}

	deliverFn := func() { sub.handler(from, payload) }
	if cfg.Latency > 0 {
		m.sched.Schedule(cfg.Latency, deliverFn)
	} else {
		m.sched.Schedule(0, deliverFn)
	}
}

// Broadcast floods payload to every node within ttl hops of from.
func (m *Memory) Broadcast(ctx context.Context, from ecscluster.NodeID, ttl int, payload []byte) error {
	for _, to := range m.reachable(from, ttl) {
		m.deliver(from, to, payload)
	}
	return nil
}

// Unicast delivers payload directly to to, subject to the same
// partition/latency/drop rules as Broadcast.
func (m *Memory) Unicast(ctx context.Context, from, to ecscluster.NodeID, payload []byte) error {
	m.deliver(from, to, payload)
	return nil
}

var _ clustering.Transport = (*Memory)(nil)
