// Package clocksync measures this node's clock offset against an NTP
// server, for live deployments where the scheduler's timestamp_ms
// field needs to be comparable across nodes whose local clocks drift
// (§4.3's Message.TimestampMS assumes a shared notion of time).
package clocksync
