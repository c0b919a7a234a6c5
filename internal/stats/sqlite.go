package stats

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is an optional queryable sink for the event log,
// supplementing the CSV export with something a run's own tooling can
// query without reparsing files (§4.6). It is write-only from Stats'
// point of view: Flush copies the in-memory logs into the database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) a SQLite database at path
// and ensures its schema exists.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("stats: open sqlite store: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("stats: set journal mode: %w", err)
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS ch_events (
	run_id TEXT NOT NULL,
	node_status TEXT NOT NULL,
	node_address INTEGER NOT NULL,
	event_time_seconds REAL NOT NULL,
	event TEXT NOT NULL
)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("stats: create ch_events: %w", err)
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS membership_events (
	run_id TEXT NOT NULL,
	node_status TEXT NOT NULL,
	node_address INTEGER NOT NULL,
	event_time_seconds REAL NOT NULL,
	event TEXT NOT NULL,
	ch_address INTEGER NOT NULL
)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("stats: create membership_events: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Flush writes every event currently in stats under runID, for
// post-run querying (e.g. "SELECT avg(event_time_seconds) ... WHERE
// event = 'CH_Claim'").
func (s *SQLiteStore) Flush(runID string, stats *Stats, start time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("stats: begin flush: %w", err)
	}
	defer tx.Rollback()

	chStmt, err := tx.Prepare(`INSERT INTO ch_events (run_id, node_status, node_address, event_time_seconds, event) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer chStmt.Close()
	for _, ev := range stats.CHEvents() {
		if _, err := chStmt.Exec(runID, ev.NodeStatus, uint32(ev.NodeID), ev.Time.Sub(start).Seconds(), string(ev.Event)); err != nil {
			return fmt.Errorf("stats: insert ch event: %w", err)
		}
	}

	memStmt, err := tx.Prepare(`INSERT INTO membership_events (run_id, node_status, node_address, event_time_seconds, event, ch_address) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer memStmt.Close()
	for _, ev := range stats.MembershipEvents() {
		if _, err := memStmt.Exec(runID, ev.NodeStatus, uint32(ev.NodeID), ev.Time.Sub(start).Seconds(), string(ev.Event), uint32(ev.ClusterHeadID)); err != nil {
			return fmt.Errorf("stats: insert membership event: %w", err)
		}
	}

	return tx.Commit()
}
