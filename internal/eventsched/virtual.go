package eventsched

import (
	"time"

	"github.com/PHoulding/ecs-clustering/internal/clustering"
)

// VirtualScheduler adapts Engine to clustering.Scheduler.
type VirtualScheduler struct {
	engine *Engine
}

var _ clustering.Scheduler = (*VirtualScheduler)(nil)

// NewVirtualScheduler wraps engine for use by clustering.Node.
func NewVirtualScheduler(engine *Engine) *VirtualScheduler {
	return &VirtualScheduler{engine: engine}
}

// Engine returns the underlying Engine, for driving a simulation loop.
func (s *VirtualScheduler) Engine() *Engine { return s.engine }

func (s *VirtualScheduler) Now() time.Time { return s.engine.Now() }

func (s *VirtualScheduler) Schedule(delay time.Duration, cb func()) clustering.TimerHandle {
	return clustering.TimerHandle(s.engine.Schedule(delay, cb))
}

func (s *VirtualScheduler) Cancel(h clustering.TimerHandle) {
	s.engine.Cancel(uint64(h))
}
