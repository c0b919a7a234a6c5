package sim

import (
	"math"
	"math/rand"
	"time"

	"github.com/PHoulding/ecs-clustering/internal/simparams"
)

// Position is a node's location within the simulation area, in meters.
type Position struct {
	X, Y float64
}

// distance returns the Euclidean distance between two positions.
func (p Position) distance(q Position) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// traveller is a single node's random-walk mobility state, modeled on
// ns-3's RandomWalk2dMobilityModel: it picks a random heading and
// holds it for either a fixed distance or a fixed duration (§6
// travellerWalkMode), bouncing off the area boundary, then redraws.
type traveller struct {
	pos       Position
	heading   float64 // radians
	remaining float64 // meters or seconds left on this leg, depending on mode
}

func newTraveller(rng *rand.Rand, width, length float64) *traveller {
	t := &traveller{pos: Position{X: rng.Float64() * width, Y: rng.Float64() * length}}
	t.redraw(rng, 0, 0)
	return t
}

func (t *traveller) redraw(rng *rand.Rand, walkDist float64, walkTime time.Duration) {
	t.heading = rng.Float64() * 2 * math.Pi
	if walkTime > 0 {
		t.remaining = walkTime.Seconds()
	} else {
		t.remaining = walkDist
	}
}

// step advances the traveller by dt seconds at velocity, bouncing off
// the [0,width]x[0,length] rectangle's edges.
func (t *traveller) step(rng *rand.Rand, dt time.Duration, p simparams.Params) {
	dtSec := dt.Seconds()
	dist := p.TravellerVelocity * dtSec

	nx := t.pos.X + dist*math.Cos(t.heading)
	ny := t.pos.Y + dist*math.Sin(t.heading)

	bounced := false
	if nx < 0 || nx > p.AreaWidth {
		t.heading = math.Pi - t.heading
		bounced = true
	}
	if ny < 0 || ny > p.AreaLength {
		t.heading = -t.heading
		bounced = true
	}
	if bounced {
		nx = clamp(t.pos.X+dist*math.Cos(t.heading), 0, p.AreaWidth)
		ny = clamp(t.pos.Y+dist*math.Sin(t.heading), 0, p.AreaLength)
	}

	t.pos = Position{X: nx, Y: ny}

	if p.TravellerWalkMode == simparams.WalkModeTime {
		t.remaining -= dtSec
	} else {
		t.remaining -= dist
	}
	if t.remaining <= 0 || bounced {
		if p.TravellerWalkMode == simparams.WalkModeTime {
			t.redraw(rng, 0, p.TravellerWalkTime)
		} else {
			t.redraw(rng, p.TravellerWalkDist, 0)
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
