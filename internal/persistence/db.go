// Package persistence journals simulation events and run metadata to SQLite.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/adastrea-verse/internal/engine"
)

// Meta keys.
const (
	MetaLastTick   = "last_tick"
	MetaSimSeconds = "sim_seconds"
	MetaJournalSeq = "journal_seq"
)

// ErrNoMeta is returned by GetMeta for an absent key.
var ErrNoMeta = errors.New("meta key not found")

// DB wraps a SQLite connection for the event journal.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer; avoids SQLITE_BUSY between the flush and API reads.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seq INTEGER NOT NULL,
		tick INTEGER NOT NULL,
		category TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_events_category ON events(category);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.NamedExec(
			`INSERT INTO events (seq, tick, category, subject, description)
			 VALUES (:seq, :tick, :category, :subject, :description)`,
			e,
		)
		if err != nil {
			return fmt.Errorf("insert event %d: %w", e.Seq, err)
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N events, newest first. A non-empty
// category filters the result.
func (db *DB) RecentEvents(limit int, category string) ([]engine.Event, error) {
	var events []engine.Event
	var err error
	if category == "" {
		err = db.conn.Select(&events,
			"SELECT seq, tick, category, subject, description FROM events ORDER BY id DESC LIMIT ?",
			limit,
		)
	} else {
		err = db.conn.Select(&events,
			"SELECT seq, tick, category, subject, description FROM events WHERE category = ? ORDER BY id DESC LIMIT ?",
			category, limit,
		)
	}
	return events, err
}

// CountEvents returns the number of journaled events.
func (db *DB) CountEvents() (int, error) {
	var n int
	err := db.conn.Get(&n, "SELECT COUNT(*) FROM events")
	return n, err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", key, ErrNoMeta)
	}
	return value, err
}

// Flush journals every event the simulation has emitted since the last
// flush and records the current tick. Events already trimmed from the
// simulation's buffer before a flush are lost.
func (db *DB) Flush(sim *engine.Simulation) error {
	var last uint64
	if v, err := db.GetMeta(MetaJournalSeq); err == nil {
		last, _ = strconv.ParseUint(v, 10, 64)
	} else if !errors.Is(err, ErrNoMeta) {
		return fmt.Errorf("read journal position: %w", err)
	}

	events := sim.EventsSince(last)
	if err := db.SaveEvents(events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if n := len(events); n > 0 {
		if err := db.SaveMeta(MetaJournalSeq, strconv.FormatUint(events[n-1].Seq, 10)); err != nil {
			return fmt.Errorf("save meta: %w", err)
		}
	}

	tick, seconds, _ := sim.Snapshot()
	if err := db.SaveMeta(MetaLastTick, strconv.FormatUint(tick, 10)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if err := db.SaveMeta(MetaSimSeconds, strconv.FormatFloat(seconds, 'f', -1, 64)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Debug("journal flushed", "events", len(events), "tick", tick)
	return nil
}

// Checkpoint is where a previous run stopped.
type Checkpoint struct {
	Tick       uint64
	SimSeconds float64
	Seq        uint64
}

// Resume returns the saved checkpoint, or the zero Checkpoint for a new
// journal.
func (db *DB) Resume() (Checkpoint, error) {
	var cp Checkpoint
	tickStr, err := db.GetMeta(MetaLastTick)
	if errors.Is(err, ErrNoMeta) {
		return cp, nil
	}
	if err != nil {
		return cp, err
	}
	if cp.Tick, err = strconv.ParseUint(tickStr, 10, 64); err != nil {
		return cp, fmt.Errorf("parse %s: %w", MetaLastTick, err)
	}
	if v, err := db.GetMeta(MetaSimSeconds); err == nil {
		cp.SimSeconds, _ = strconv.ParseFloat(v, 64)
	}
	if v, err := db.GetMeta(MetaJournalSeq); err == nil {
		cp.Seq, _ = strconv.ParseUint(v, 10, 64)
	}
	return cp, nil
}
