package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/companion/internal/emotion"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "companion.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadSnapshotMissingIsNotAnError(t *testing.T) {
	db := openTestDB(t)

	_, ok, err := db.LoadSnapshot()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSnapshotRoundTrip(t *testing.T) {
	db := openTestDB(t)

	want := emotion.State{Valence: -0.25, Arousal: 0.7, Energy: 0.55, Attachment: 0.12, Boredom: 0.9}
	require.NoError(t, db.SaveSnapshot(want))

	got, ok, err := db.LoadSnapshot()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestSaveRewritesSingleRecord(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveSnapshot(emotion.State{Valence: 0.1, Arousal: 0.2, Energy: 0.3, Attachment: 0.4, Boredom: 0.5}))
	want := emotion.State{Valence: 0.9, Arousal: 0.1, Energy: 0.2, Attachment: 0.3, Boredom: 0.4}
	require.NoError(t, db.SaveSnapshot(want))

	var rows int
	require.NoError(t, db.conn.Get(&rows, "SELECT COUNT(*) FROM emotion_state"))
	assert.Equal(t, 1, rows)

	got, ok, err := db.LoadSnapshot()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestLoadSnapshotRejectsOutOfRangeRow(t *testing.T) {
	db := openTestDB(t)

	// A row written by a buggy or hostile writer must read as absent, not
	// as trusted state.
	_, err := db.conn.Exec(
		`INSERT INTO emotion_state (key, version, valence, arousal, energy, attachment, boredom, updated_at)
		 VALUES ('current', 1, 7.5, 0.4, 0.8, 0.1, 0.2, '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, ok, loadErr := db.LoadSnapshot()
	require.NoError(t, loadErr)
	assert.False(t, ok)
}

func TestLoadSnapshotRejectsOldSchemaVersion(t *testing.T) {
	db := openTestDB(t)

	_, err := db.conn.Exec(
		`INSERT INTO emotion_state (key, version, valence, arousal, energy, attachment, boredom, updated_at)
		 VALUES ('current', 0, 0.3, 0.4, 0.8, 0.1, 0.2, '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, ok, loadErr := db.LoadSnapshot()
	require.NoError(t, loadErr)
	assert.False(t, ok)
}

func TestReopenPreservesSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "companion.db")

	db, err := Open(path)
	require.NoError(t, err)
	want := emotion.State{Valence: 0.5, Arousal: 0.5, Energy: 0.5, Attachment: 0.5, Boredom: 0.5}
	require.NoError(t, db.SaveSnapshot(want))
	require.NoError(t, db.Close())

	db2, err := Open(path)
	require.NoError(t, err)
	defer db2.Close()

	got, ok, err := db2.LoadSnapshot()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}
