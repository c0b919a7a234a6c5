package clustering

import (
	"fmt"
	"time"
)

// Config holds the per-node clustering tunables from §4.4.
// DefaultConfig returns a Config with the documented defaults; a
// zero-valued field is not filled in. Validate rejects the
// CONFIG_INVALID cases from §7.
type Config struct {
	// Hops is H, the neighborhood hop count / broadcast TTL.
	Hops int
	// StandoffTime is the upper bound of the pre-election random delay.
	StandoffTime time.Duration
	// WaitTime is the lower bound of the pre-election random delay.
	WaitTime time.Duration
	// ProfileDelay is carried and validated but not read by Node.
	ProfileDelay time.Duration
	// HelloMessageTimeout is the hello (PING) period, used both for the
	// first hello after the election draw and for every one after it.
	HelloMessageTimeout time.Duration
	// TableScanTimeout is the information/neighbor table refresh period.
	TableScanTimeout time.Duration
	// ValidEntryTimeout is the information-table row freshness window.
	ValidEntryTimeout time.Duration
	// ResignThreshold is the below-or-equal cluster size at which a CH
	// considers resigning once a gateway covers it.
	ResignThreshold int
}

// DefaultConfig returns the documented §4.4 defaults.
//
// WaitTime defaults to 0, not the 30s the prose mentions: the standoff
// window is defined (glossary, §4.4.4's "now < standoff_time" check) as
// an absolute span measured from node start, so wait_time must not
// exceed standoff_time — a literal 30s/3s pairing is an unreachable
// interval. See DESIGN.md.
func DefaultConfig() Config {
	return Config{
		Hops:                1,
		StandoffTime:        3 * time.Second,
		WaitTime:            0,
		ProfileDelay:        6 * time.Second,
		HelloMessageTimeout: 1 * time.Second,
		TableScanTimeout:    100 * time.Millisecond,
		ValidEntryTimeout:   2300 * time.Millisecond,
		ResignThreshold:     5,
	}
}

// Validate rejects malformed configuration (§7 CONFIG_INVALID).
func (c Config) Validate() error {
	if c.Hops <= 0 {
		return fmt.Errorf("clustering: hops must be positive, got %d", c.Hops)
	}
	if c.StandoffTime <= 0 {
		return fmt.Errorf("clustering: standoff time must be positive, got %s", c.StandoffTime)
	}
	if c.WaitTime < 0 {
		return fmt.Errorf("clustering: wait time must not be negative, got %s", c.WaitTime)
	}
	if c.WaitTime > c.StandoffTime {
		return fmt.Errorf("clustering: wait time (%s) must not exceed standoff time (%s)", c.WaitTime, c.StandoffTime)
	}
	if c.ProfileDelay <= 0 {
		return fmt.Errorf("clustering: profile delay must be positive, got %s", c.ProfileDelay)
	}
	if c.HelloMessageTimeout <= 0 {
		return fmt.Errorf("clustering: hello message timeout must be positive, got %s", c.HelloMessageTimeout)
	}
	if c.TableScanTimeout <= 0 {
		return fmt.Errorf("clustering: table scan timeout must be positive, got %s", c.TableScanTimeout)
	}
	if c.ValidEntryTimeout <= 0 {
		return fmt.Errorf("clustering: valid entry timeout must be positive, got %s", c.ValidEntryTimeout)
	}
	if c.ResignThreshold < 0 {
		return fmt.Errorf("clustering: resign threshold must not be negative, got %d", c.ResignThreshold)
	}
	return nil
}
