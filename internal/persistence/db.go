// Package persistence provides SQLite-based emotion snapshot storage.
// The engine reads one keyed record at startup and rewrites it after every
// committed mutation; a missing or corrupt record is not an error.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/companion/internal/emotion"
)

const snapshotKey = "current"

// schemaVersion is stamped on every snapshot row so a future layout change
// can migrate or discard old rows.
const schemaVersion = 1

// DB wraps a SQLite connection for snapshot persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

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
	CREATE TABLE IF NOT EXISTS emotion_state (
		key TEXT PRIMARY KEY,
		version INTEGER NOT NULL,
		valence REAL NOT NULL,
		arousal REAL NOT NULL,
		energy REAL NOT NULL,
		attachment REAL NOT NULL,
		boredom REAL NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type snapshotRow struct {
	Version    int     `db:"version"`
	Valence    float64 `db:"valence"`
	Arousal    float64 `db:"arousal"`
	Energy     float64 `db:"energy"`
	Attachment float64 `db:"attachment"`
	Boredom    float64 `db:"boredom"`
}

// LoadSnapshot reads the persisted emotion state. The second return is
// false when no usable snapshot exists; that is the normal first-run path.
func (db *DB) LoadSnapshot() (emotion.State, bool, error) {
	var row snapshotRow
	err := db.conn.Get(&row,
		`SELECT version, valence, arousal, energy, attachment, boredom
		 FROM emotion_state WHERE key = ?`, snapshotKey)
	if errors.Is(err, sql.ErrNoRows) {
		return emotion.State{}, false, nil
	}
	if err != nil {
		return emotion.State{}, false, fmt.Errorf("load snapshot: %w", err)
	}
	if row.Version != schemaVersion {
		return emotion.State{}, false, nil
	}

	st := emotion.State{
		Valence:    row.Valence,
		Arousal:    row.Arousal,
		Energy:     row.Energy,
		Attachment: row.Attachment,
		Boredom:    row.Boredom,
	}
	// Out-of-range or non-finite stored values count as corruption; the
	// caller falls back to defaults rather than trusting them.
	if !st.Valid() {
		return emotion.State{}, false, nil
	}
	return st, true, nil
}

// SaveSnapshot rewrites the single snapshot record.
func (db *DB) SaveSnapshot(st emotion.State) error {
	_, err := db.conn.Exec(
		`INSERT INTO emotion_state
			(key, version, valence, arousal, energy, attachment, boredom, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			version = excluded.version,
			valence = excluded.valence,
			arousal = excluded.arousal,
			energy = excluded.energy,
			attachment = excluded.attachment,
			boredom = excluded.boredom,
			updated_at = excluded.updated_at`,
		snapshotKey, schemaVersion,
		st.Valence, st.Arousal, st.Energy, st.Attachment, st.Boredom,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
