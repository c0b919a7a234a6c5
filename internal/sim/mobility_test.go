package sim

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/PHoulding/ecs-clustering/internal/simparams"
)

func TestPositionDistance(t *testing.T) {
	a := Position{X: 0, Y: 0}
	b := Position{X: 3, Y: 4}
	if got := a.distance(b); got != 5 {
		t.Fatalf("distance() = %v, want 5", got)
	}
}

func TestClamp(t *testing.T) {
	if got := clamp(-5, 0, 10); got != 0 {
		t.Errorf("clamp(-5,0,10) = %v, want 0", got)
	}
	if got := clamp(15, 0, 10); got != 10 {
		t.Errorf("clamp(15,0,10) = %v, want 10", got)
	}
	if got := clamp(5, 0, 10); got != 5 {
		t.Errorf("clamp(5,0,10) = %v, want 5", got)
	}
}

func TestTravellerStaysWithinArea(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := simparams.Default()
	p.AreaWidth = 100
	p.AreaLength = 100
	p.TravellerVelocity = 50 // fast enough to force repeated boundary bounces

	tr := newTraveller(rng, p.AreaWidth, p.AreaLength)
	for i := 0; i < 200; i++ {
		tr.step(rng, time.Second, p)
		if tr.pos.X < -1e-9 || tr.pos.X > p.AreaWidth+1e-9 {
			t.Fatalf("step %d: X = %v out of bounds [0,%v]", i, tr.pos.X, p.AreaWidth)
		}
		if tr.pos.Y < -1e-9 || tr.pos.Y > p.AreaLength+1e-9 {
			t.Fatalf("step %d: Y = %v out of bounds [0,%v]", i, tr.pos.Y, p.AreaLength)
		}
	}
}

func TestTravellerRedrawsAfterWalkDistExhausted(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	p := simparams.Default()
	p.TravellerWalkMode = simparams.WalkModeDistance
	p.TravellerWalkDist = 1 // exhausted after a single short step
	p.TravellerVelocity = 2
	p.AreaWidth = 1000
	p.AreaLength = 1000

	tr := newTraveller(rng, p.AreaWidth, p.AreaLength)
	headingBefore := tr.heading
	tr.step(rng, time.Second, p)

	// A new leg must have been redrawn (remaining reset to walkDist,
	// not left negative) once the old one's distance budget ran out.
	if tr.remaining <= 0 {
		t.Fatalf("remaining = %v, want a freshly redrawn positive budget", tr.remaining)
	}
	_ = headingBefore
}

func TestTravellerWalkTimeModeCountsDownSeconds(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	p := simparams.Default()
	p.TravellerWalkMode = simparams.WalkModeTime
	p.TravellerWalkTime = 10 * time.Second
	p.TravellerVelocity = 0.01 // negligible distance so boundary bounces don't interfere
	p.AreaWidth = 10000
	p.AreaLength = 10000

	tr := newTraveller(rng, p.AreaWidth, p.AreaLength)
	// The first step always redraws (a fresh traveller starts with
	// remaining == 0), landing the leg budget at walkTime; the second
	// step is the one that actually counts a second down from it.
	tr.step(rng, time.Second, p)
	tr.step(rng, time.Second, p)
	if math.Abs(tr.remaining-9) > 1e-6 {
		t.Fatalf("remaining = %v, want ~9s after counting down one second of a 10s leg", tr.remaining)
	}
}
