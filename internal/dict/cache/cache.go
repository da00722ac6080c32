// Package cache is an optional binary cache of the built dictionary index,
// written alongside the source corpus and read eagerly on subsequent
// starts. It is an optimization only: if it's missing, stale, or
// unreadable the text corpus remains fully authoritative and gets
// reparsed. The cache is a migrated SQLite database rather than a bespoke
// binary blob format.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Entry is one cached dictionary row, in original corpus-file order.
type Entry struct {
	Pinyin string
	Word   string
	Weight uint32
	Seq    int
}

// Cache wraps a SQLite connection holding the dictionary binary cache.
type Cache struct {
	db *sql.DB
}

// Hash returns the cache-invalidation key for a corpus text: if it
// doesn't match what's stored, the text corpus (always authoritative)
// must be reloaded and the cache rebuilt.
func Hash(corpusText string) string {
	sum := sha256.Sum256([]byte(corpusText))
	return hex.EncodeToString(sum[:])
}

// Open opens (creating if necessary) the cache database at dbPath and
// migrates its schema with goose, using the embedded migration set.
func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open dict cache db: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 3000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate dict cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Read returns the cached entries for corpusHash in original file order,
// or ok=false if nothing is cached for that hash (e.g. the corpus changed
// since the cache was written).
func (c *Cache) Read(corpusHash string) (entries []Entry, ok bool, err error) {
	rows, err := c.db.Query(
		`SELECT pinyin, word, weight, seq FROM dict_cache WHERE corpus_hash = ? ORDER BY seq ASC`,
		corpusHash,
	)
	if err != nil {
		return nil, false, fmt.Errorf("query dict cache: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Pinyin, &e.Word, &e.Weight, &e.Seq); err != nil {
			return nil, false, fmt.Errorf("scan dict cache row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate dict cache rows: %w", err)
	}
	return entries, len(entries) > 0, nil
}

// Write replaces any cached entries for corpusHash with entries, in a
// single transaction.
func (c *Cache) Write(corpusHash string, entries []Entry) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin dict cache write: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM dict_cache WHERE corpus_hash = ?`, corpusHash); err != nil {
		return fmt.Errorf("clear stale dict cache: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO dict_cache (corpus_hash, pinyin, word, weight, seq) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare dict cache insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(corpusHash, e.Pinyin, e.Word, e.Weight, e.Seq); err != nil {
			return fmt.Errorf("insert dict cache row: %w", err)
		}
	}
	return tx.Commit()
}
