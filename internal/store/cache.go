package store

import (
	"database/sql"
	"time"
)

// Cache entry kinds.
const (
	KindSessions = "sessions"
	KindGitLog   = "gitlog"
)

// Get returns the cached payload for (kind, source) when its fingerprint
// still matches. A stale or missing entry returns ok=false.
func (db *DB) Get(kind, source, fingerprint string) ([]byte, bool, error) {
	row := db.conn.QueryRow(
		"SELECT payload, fingerprint FROM parse_cache WHERE kind = ? AND source = ?",
		kind, source,
	)

	var payload []byte
	var stored string
	if err := row.Scan(&payload, &stored); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}

	if stored != fingerprint {
		return nil, false, nil
	}
	return payload, true, nil
}

// Put stores or replaces the cached payload for (kind, source).
func (db *DB) Put(kind, source, fingerprint string, payload []byte) error {
	_, err := db.conn.Exec(
		`INSERT INTO parse_cache (kind, source, fingerprint, payload, cached_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(kind, source) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			payload     = excluded.payload,
			cached_at   = excluded.cached_at`,
		kind, source, fingerprint, payload,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Clear drops every cache entry.
func (db *DB) Clear() error {
	_, err := db.conn.Exec("DELETE FROM parse_cache")
	return err
}

// CacheStats describes the cache contents.
type CacheStats struct {
	Entries int
	Bytes   int64
}

// Stats reports entry count and total payload size.
func (db *DB) Stats() (CacheStats, error) {
	row := db.conn.QueryRow(
		"SELECT COUNT(*), COALESCE(SUM(LENGTH(payload)), 0) FROM parse_cache",
	)
	var stats CacheStats
	if err := row.Scan(&stats.Entries, &stats.Bytes); err != nil {
		return CacheStats{}, err
	}
	return stats, nil
}
