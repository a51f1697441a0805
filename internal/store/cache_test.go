package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCache_MissOnEmptyDB(t *testing.T) {
	db := openTestDB(t)

	_, ok, err := db.Get(KindSessions, "/home/dev/.claude", "fp1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCache_PutThenGet(t *testing.T) {
	db := openTestDB(t)

	payload := []byte(`[{"id":"abc"}]`)
	require.NoError(t, db.Put(KindSessions, "/home/dev/.claude", "fp1", payload))

	got, ok, err := db.Get(KindSessions, "/home/dev/.claude", "fp1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, payload, got)
}

func TestCache_StaleFingerprintMisses(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Put(KindGitLog, "/repo", "old", []byte("{}")))

	_, ok, err := db.Get(KindGitLog, "/repo", "new")
	require.NoError(t, err)
	require.False(t, ok, "changed fingerprint must invalidate the entry")
}

func TestCache_PutReplaces(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Put(KindGitLog, "/repo", "v1", []byte("one")))
	require.NoError(t, db.Put(KindGitLog, "/repo", "v2", []byte("two")))

	got, ok, err := db.Get(KindGitLog, "/repo", "v2")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("two"), got)

	stats, err := db.Stats()
	require.NoError(t, err)
	require.Equal(t, 1, stats.Entries)
}

func TestCache_KindsAreIndependent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Put(KindSessions, "/x", "fp", []byte("sessions")))
	require.NoError(t, db.Put(KindGitLog, "/x", "fp", []byte("gitlog")))

	got, ok, err := db.Get(KindSessions, "/x", "fp")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("sessions"), got)
}

func TestCache_Clear(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Put(KindSessions, "/x", "fp", []byte("data")))
	require.NoError(t, db.Clear())

	_, ok, err := db.Get(KindSessions, "/x", "fp")
	require.NoError(t, err)
	require.False(t, ok)

	stats, err := db.Stats()
	require.NoError(t, err)
	require.Equal(t, 0, stats.Entries)
	require.Equal(t, int64(0), stats.Bytes)
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.db")

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put(KindSessions, "/x", "fp", []byte("data")))
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Migrate())
	require.NoError(t, db.Migrate())
}
