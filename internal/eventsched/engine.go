package eventsched

import (
	"container/heap"
	"sync"
	"time"
)

// timerEntry is one pending callback in the Engine's priority queue.
type timerEntry struct {
	at       time.Time
	seq      uint64
	handle   uint64
	cb       func()
	canceled bool
}

// timerHeap orders entries by fire time, breaking ties by insertion
// order for determinism across runs with identical timestamps.
type timerHeap []*timerEntry

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].seq < h[j].seq
	}
	return h[i].at.Before(h[j].at)
}
func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x any)   { *h = append(*h, x.(*timerEntry)) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Engine is a single-threaded, heap-ordered virtual clock. It never
// sleeps: RunUntil advances directly to the next pending timer's fire
// time and invokes callbacks synchronously, which is what lets an entire
// multi-hour ECS simulation run in milliseconds of wall-clock time.
// Handlers scheduled during a callback are eligible to fire in the
// same RunUntil call if their delay is zero.
type Engine struct {
	mu      sync.Mutex
	now     time.Time
	pending timerHeap
	nextSeq uint64
	nextH   uint64
	byHandle map[uint64]*timerEntry
}

// NewEngine creates an Engine starting at start.
func NewEngine(start time.Time) *Engine {
	e := &Engine{
		now:      start,
		byHandle: make(map[uint64]*timerEntry),
	}
	heap.Init(&e.pending)
	return e
}

// Now returns the engine's current virtual time.
func (e *Engine) Now() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

// Schedule installs cb to run after delay has elapsed in virtual time.
func (e *Engine) Schedule(delay time.Duration, cb func()) uint64 {
	if delay < 0 {
		delay = 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextH++
	h := e.nextH
	e.nextSeq++
	entry := &timerEntry{at: e.now.Add(delay), seq: e.nextSeq, handle: h, cb: cb}
	heap.Push(&e.pending, entry)
	e.byHandle[h] = entry
	return h
}

// Cancel suppresses a pending callback. A no-op for unknown or
// already-fired handles.
func (e *Engine) Cancel(h uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if entry, ok := e.byHandle[h]; ok {
		entry.canceled = true
		delete(e.byHandle, h)
	}
}

// Step pops and runs the single earliest pending callback, advancing
// Now() to its fire time. It reports whether a callback ran.
func (e *Engine) Step() bool {
	e.mu.Lock()
	if e.pending.Len() == 0 {
		e.mu.Unlock()
		return false
	}
	entry := heap.Pop(&e.pending).(*timerEntry)
	if entry.canceled {
		e.mu.Unlock()
		return e.Step()
	}
	e.now = entry.at
	delete(e.byHandle, entry.handle)
	cb := entry.cb
	e.mu.Unlock()

	cb()
	return true
}

// RunUntil steps the engine until its virtual clock would pass
// deadline, or no callbacks remain.
func (e *Engine) RunUntil(deadline time.Time) {
	for {
		e.mu.Lock()
		if e.pending.Len() == 0 {
			e.mu.Unlock()
			return
		}
		if e.pending[0].canceled {
			heap.Pop(&e.pending)
			e.mu.Unlock()
			continue
		}
		next := e.pending[0].at
		e.mu.Unlock()
		if next.After(deadline) {
			return
		}
		if !e.Step() {
			return
		}
	}
}

// Pending reports how many callbacks are still queued.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending.Len()
}
