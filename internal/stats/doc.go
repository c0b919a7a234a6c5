// Package stats implements the clustering event log and counters
// (§4.6): per-message counters, the CH and membership event lists,
// post-run aggregation (average cluster size by table sampling and by
// formula, average cluster-head lifetime, average membership
// lifetime), and CSV/SQLite export.
package stats
