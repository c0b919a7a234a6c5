package sim

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/PHoulding/ecs-clustering"
	"github.com/PHoulding/ecs-clustering/internal/clustering"
	"github.com/PHoulding/ecs-clustering/internal/eventsched"
	"github.com/PHoulding/ecs-clustering/internal/simparams"
	"github.com/PHoulding/ecs-clustering/internal/stats"
	"github.com/PHoulding/ecs-clustering/internal/transport"
)

const mobilityTick = 500 * time.Millisecond

// Simulation owns a full run: N nodes, their mobility, an in-memory
// transport whose adjacency is derived from live positions every
// mobilityTick, and a shared Stats sink.
type Simulation struct {
	params     simparams.Params
	rng        *rand.Rand
	engine     *eventsched.Engine
	sched      *eventsched.VirtualScheduler
	trans      *transport.Memory
	stats      *stats.Stats
	start      time.Time
	idGen      *clustering.MessageIDGenerator

	nodes      []*clustering.Node
	travellers []*traveller
}

// New builds a Simulation with totalNodes uniformly placed in the
// configured area.
func New(p simparams.Params) (*Simulation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(p.Seed))
	start := time.Unix(0, 0).UTC()
	engine := eventsched.NewEngine(start)
	sched := eventsched.NewVirtualScheduler(engine)
	trans := transport.NewMemory(sched, rand.New(rand.NewSource(p.Seed+1)))
	statsSink := stats.New()
	idGen := clustering.NewMessageIDGenerator()

	s := &Simulation{
		params: p,
		rng:    rng,
		engine: engine,
		sched:  sched,
		trans:  trans,
		stats:  statsSink,
		start:  start,
		idGen:  idGen,
	}

	cfg := p.ClusteringConfig()
	for i := 0; i < p.TotalNodes; i++ {
		id, err := ecscluster.NodeIDFromIP(syntheticIP(i))
		if err != nil {
			return nil, fmt.Errorf("sim: node %d: %w", i, err)
		}
		nodeRNG := rand.New(rand.NewSource(p.Seed + int64(i) + 1000))
		node := clustering.New(id, cfg, sched, trans, statsSink, idGen, nodeRNG)
		s.nodes = append(s.nodes, node)
		s.travellers = append(s.travellers, newTraveller(rng, p.AreaWidth, p.AreaLength))
	}

	return s, nil
}

// syntheticIP derives a deterministic, non-loopback IPv4 address for
// node index i, in the 10.1.x.x/16 range the original simulator's
// broadcast-exclusion filter assumes.
func syntheticIP(i int) []byte {
	return []byte{10, 1, byte((i >> 8) & 0xff), byte(i & 0xff)}
}

// Run starts every node, drives mobility and the virtual clock for
// runTime, then stops every node.
func (s *Simulation) Run(ctx context.Context) {
	for _, n := range s.nodes {
		n.Start(ctx)
	}

	s.updateAdjacency()
	s.scheduleMobility(ctx)

	s.engine.RunUntil(s.start.Add(s.params.RunTime))

	for _, n := range s.nodes {
		n.Stop()
	}
}

func (s *Simulation) scheduleMobility(ctx context.Context) {
	var tick func()
	tick = func() {
		for i, t := range s.travellers {
			t.step(s.rng, mobilityTick, s.params)
			_ = i
		}
		s.updateAdjacency()
		s.sched.Schedule(mobilityTick, tick)
	}
	s.sched.Schedule(mobilityTick, tick)
}

// updateAdjacency recomputes which node pairs are within wifiRadius of
// each other, installs the result into the transport, and feeds each
// node's NeighborTable a synthesized routing-table dump in the
// simulation's configured protocol format — giving §4.1's change-degree
// metric real input, the same shape a live AODV/DSDV daemon would
// produce.
func (s *Simulation) updateAdjacency() {
	now := s.sched.Now()
	for i, node := range s.nodes {
		var neighbors []ecscluster.NodeID
		var lines []string
		for j, other := range s.nodes {
			if i == j {
				continue
			}
			if s.travellers[i].pos.distance(s.travellers[j].pos) <= s.params.WifiRadius {
				neighbors = append(neighbors, other.ID())
				lines = append(lines, routingLine(s.params.Routing, other.ID()))
			}
		}
		s.trans.SetAdjacency(node.ID(), neighbors)
		node.NeighborTable().Update(s.params.Routing, routingTableText(s.params.Routing, lines))
	}
	_ = now
}

func routingLine(proto clustering.RoutingProtocol, dest ecscluster.NodeID) string {
	if proto == clustering.RoutingAODV {
		return fmt.Sprintf("%s 0.0.0.0 255.255.255.0 UP 0 1 wlan0", dest.String())
	}
	return fmt.Sprintf("%s 0.0.0.0 0 1 wlan0", dest.String())
}

func routingTableText(proto clustering.RoutingProtocol, lines []string) string {
	header := "DSDV Routing table\n"
	if proto == clustering.RoutingAODV {
		header = "AODV Routing table\n"
	}
	text := header
	for _, l := range lines {
		text += l + "\n"
	}
	return text
}

// Stats returns the accumulated Stats sink.
func (s *Simulation) Stats() *stats.Stats { return s.stats }

// StartTime returns the virtual time the run began at, for reporting
// event timestamps relative to zero.
func (s *Simulation) StartTime() time.Time { return s.start }

// EndTime returns the virtual time the run ends at.
func (s *Simulation) EndTime() time.Time { return s.start.Add(s.params.RunTime) }

// Nodes returns every node in the simulation, for inspection.
func (s *Simulation) Nodes() []*clustering.Node { return s.nodes }
