package simparams

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/PHoulding/ecs-clustering/internal/clustering"
)

// WalkMode selects how a RandomWalk2d-style traveller decides when to
// pick a new direction (§6 travellerWalkMode).
type WalkMode string

const (
	WalkModeDistance WalkMode = "distance"
	WalkModeTime     WalkMode = "time"
)

func (m WalkMode) valid() bool {
	return m == WalkModeDistance || m == WalkModeTime
}

// Params is the full §6 configuration surface for one simulation run.
type Params struct {
	RunTime    time.Duration `yaml:"runTime"`
	TotalNodes int           `yaml:"totalNodes"`

	WaitTime     time.Duration `yaml:"waitTime"`
	StandoffTime time.Duration `yaml:"standoffTime"`
	Hops         int           `yaml:"hops"`

	AreaWidth  float64 `yaml:"areaWidth"`
	AreaLength float64 `yaml:"areaLength"`

	TravellerVelocity float64  `yaml:"travellerVelocity"`
	TravellerWalkDist float64  `yaml:"travellerWalkDist"`
	TravellerWalkTime time.Duration `yaml:"travellerWalkTime"`
	TravellerWalkMode WalkMode `yaml:"travellerWalkMode"`

	Routing clustering.RoutingProtocol `yaml:"-"`
	RoutingName string `yaml:"routing"`

	WifiRadius     float64       `yaml:"wifiRadius"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`

	Seed int64 `yaml:"seed"`
}

// Default returns the documented §6 defaults, drawn from the original
// simulator's simulation-params.cc.
func Default() Params {
	return Params{
		RunTime:           600 * time.Second,
		TotalNodes:        20,
		WaitTime:          0,
		StandoffTime:      3 * time.Second,
		Hops:              1,
		AreaWidth:         500,
		AreaLength:        500,
		TravellerVelocity: 1.4,
		TravellerWalkDist: 50,
		TravellerWalkTime: 30 * time.Second,
		TravellerWalkMode: WalkModeDistance,
		RoutingName:       "AODV",
		Routing:           clustering.RoutingAODV,
		WifiRadius:        100,
		RequestTimeout:    10 * time.Second,
		Seed:              1,
	}
}

// Load reads and validates a YAML configuration file, applying
// Default() for any field the file leaves at its zero value is not
// attempted — YAML unmarshal starts from Default() so a partial file
// only overrides what it names.
func Load(path string) (Params, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("simparams: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Params{}, fmt.Errorf("simparams: parse %s: %w", path, err)
	}
	if err := p.resolveRouting(); err != nil {
		return Params{}, err
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

func (p *Params) resolveRouting() error {
	switch strings.ToUpper(strings.TrimSpace(p.RoutingName)) {
	case "AODV":
		p.Routing = clustering.RoutingAODV
	case "DSDV":
		p.Routing = clustering.RoutingDSDV
	default:
		return fmt.Errorf("simparams: unrecognized routing protocol %q", p.RoutingName)
	}
	return nil
}

// Validate rejects the §7 CONFIG_INVALID cases: negative runtime,
// totalNodes, area, or velocity; unknown routing protocol; unknown
// walk mode.
func (p Params) Validate() error {
	if p.RunTime <= 0 {
		return fmt.Errorf("simparams: runTime must be positive, got %s", p.RunTime)
	}
	if p.TotalNodes <= 0 {
		return fmt.Errorf("simparams: totalNodes must be positive, got %d", p.TotalNodes)
	}
	if p.WaitTime < 0 {
		return fmt.Errorf("simparams: waitTime must not be negative, got %s", p.WaitTime)
	}
	if p.StandoffTime <= 0 {
		return fmt.Errorf("simparams: standoffTime must be positive, got %s", p.StandoffTime)
	}
	if p.WaitTime > p.StandoffTime {
		return fmt.Errorf("simparams: waitTime (%s) must not exceed standoffTime (%s)", p.WaitTime, p.StandoffTime)
	}
	if p.Hops <= 0 {
		return fmt.Errorf("simparams: hops must be positive, got %d", p.Hops)
	}
	if p.AreaWidth <= 0 || p.AreaLength <= 0 {
		return fmt.Errorf("simparams: area dimensions must be positive, got %gx%g", p.AreaWidth, p.AreaLength)
	}
	if p.TravellerVelocity <= 0 {
		return fmt.Errorf("simparams: travellerVelocity must be positive, got %g", p.TravellerVelocity)
	}
	if !p.TravellerWalkMode.valid() {
		return fmt.Errorf("simparams: unrecognized travellerWalkMode %q", p.TravellerWalkMode)
	}
	if p.RoutingName != "" {
		switch strings.ToUpper(p.RoutingName) {
		case "AODV", "DSDV":
		default:
			return fmt.Errorf("simparams: unrecognized routing protocol %q", p.RoutingName)
		}
	}
	if p.WifiRadius <= 0 {
		return fmt.Errorf("simparams: wifiRadius must be positive, got %g", p.WifiRadius)
	}
	if p.RequestTimeout <= 0 {
		return fmt.Errorf("simparams: requestTimeout must be positive, got %s", p.RequestTimeout)
	}
	return nil
}

// ClusteringConfig projects the subset of Params the per-node state
// machine needs into a clustering.Config.
func (p Params) ClusteringConfig() clustering.Config {
	cfg := clustering.DefaultConfig()
	cfg.Hops = p.Hops
	cfg.StandoffTime = p.StandoffTime
	cfg.WaitTime = p.WaitTime
	return cfg
}
