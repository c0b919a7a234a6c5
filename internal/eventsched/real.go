package eventsched

import (
	"sync"
	"time"

	"github.com/PHoulding/ecs-clustering/internal/clustering"
)

// RealScheduler implements clustering.Scheduler over the operating
// system clock and time.AfterFunc, for live deployments where nodes
// run on actual radios rather than inside a simulation.
type RealScheduler struct {
	mu     sync.Mutex
	timers map[clustering.TimerHandle]*time.Timer
	nextH  clustering.TimerHandle
}

var _ clustering.Scheduler = (*RealScheduler)(nil)

// NewRealScheduler creates a wall-clock scheduler.
func NewRealScheduler() *RealScheduler {
	return &RealScheduler{timers: make(map[clustering.TimerHandle]*time.Timer)}
}

func (s *RealScheduler) Now() time.Time { return time.Now() }

func (s *RealScheduler) Schedule(delay time.Duration, cb func()) clustering.TimerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextH++
	h := s.nextH
	s.timers[h] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, h)
		s.mu.Unlock()
		cb()
	})
	return h
}

func (s *RealScheduler) Cancel(h clustering.TimerHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[h]; ok {
		t.Stop()
		delete(s.timers, h)
	}
}
