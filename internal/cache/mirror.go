package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/abelbrown/zeitgeist/internal/search"
)

// mirror persists cache entries to SQLite. Rows are keyed by a stable
// hash of the normalized query so key text never needs escaping.
type mirror struct {
	db *sql.DB
}

func openMirror(dir string) (*mirror, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, "zeitgeist-cache.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping cache database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		key_hash   TEXT PRIMARY KEY,
		query      TEXT NOT NULL,
		results    TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_created ON entries(created_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	return &mirror{db: db}, nil
}

func (m *mirror) put(key string, results []search.Result, createdAt time.Time) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	_, err = m.db.Exec(`
		INSERT INTO entries (key_hash, query, results, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key_hash) DO UPDATE SET
			results = excluded.results,
			created_at = excluded.created_at
	`, keyHash(key), key, string(data), createdAt)
	return err
}

func (m *mirror) delete(key string) error {
	_, err := m.db.Exec("DELETE FROM entries WHERE key_hash = ?", keyHash(key))
	return err
}

// loadSince returns entries created after cutoff, keyed by query text.
// Stale rows are cleaned out in the same pass.
func (m *mirror) loadSince(cutoff time.Time) (map[string]*entry, error) {
	rows, err := m.db.Query("SELECT query, results, created_at FROM entries WHERE created_at > ?", cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loaded := make(map[string]*entry)
	for rows.Next() {
		var query, data string
		var createdAt time.Time
		if err := rows.Scan(&query, &data, &createdAt); err != nil {
			return nil, err
		}
		var results []search.Result
		if err := json.Unmarshal([]byte(data), &results); err != nil {
			continue // skip corrupt rows
		}
		loaded[query] = &entry{results: results, createdAt: createdAt}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := m.db.Exec("DELETE FROM entries WHERE created_at <= ?", cutoff); err != nil {
		return loaded, err
	}
	return loaded, nil
}

func (m *mirror) close() error {
	return m.db.Close()
}

// keyHash derives the stable row key for a query string.
func keyHash(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:16])
}
