package clocksync

import (
	"fmt"
	"time"

	"github.com/beevik/ntp"
)

// Offset queries server and returns the server's clock minus the local
// clock: a positive value means the local clock is behind, and adding
// it to a local reading (AdjustedNow) gives the server's time.
func Offset(server string) (time.Duration, error) {
	resp, err := ntp.Query(server)
	if err != nil {
		return 0, fmt.Errorf("clocksync: query %s: %w", server, err)
	}
	if err := resp.Validate(); err != nil {
		return 0, fmt.Errorf("clocksync: invalid response from %s: %w", server, err)
	}
	return resp.ClockOffset, nil
}

// AdjustedNow returns the local wall clock corrected by offset.
func AdjustedNow(offset time.Duration) time.Time {
	return time.Now().Add(offset)
}
