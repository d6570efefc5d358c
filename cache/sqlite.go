package cache

import (
	"fmt"
	"strings"
	"sync"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// SQLite is a Store backed by a local SQLite database, for deployments
// where accepted snippets should survive restarts and be shared across
// processes. Keys are stored decomposed into their three components so
// operators can inspect and curate entries; rows marked bad_code are
// invisible to Get.
type SQLite struct {
	mu   sync.Mutex
	conn *sqlite.Conn
}

const createCacheTable = `
CREATE TABLE IF NOT EXISTS promptmaster (
	data_source         TEXT NOT NULL,
	frame_hash          TEXT NOT NULL,
	normalized_question TEXT NOT NULL,
	code_executed       TEXT NOT NULL,
	bad_code            TEXT,
	PRIMARY KEY (data_source, frame_hash, normalized_question)
)`

// OpenSQLite opens (creating if needed) the cache database at path.
func OpenSQLite(path string) (*SQLite, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate, sqlite.OpenReadWrite, sqlite.OpenWAL)
	if err != nil {
		return nil, fmt.Errorf("cache: open sqlite: %w", err)
	}
	if err := sqlitex.ExecuteTransient(conn, createCacheTable, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: create table: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Get returns the snippet cached under key. Rows flagged bad_code are
// treated as absent.
func (s *SQLite) Get(key string) (string, bool) {
	dataSource, frameHash, question, ok := splitKey(key)
	if !ok {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var snippet string
	found := false
	err := sqlitex.Execute(s.conn,
		`SELECT code_executed FROM promptmaster
		 WHERE data_source = ? AND frame_hash = ? AND normalized_question = ? AND bad_code IS NULL`,
		&sqlitex.ExecOptions{
			Args: []any{dataSource, frameHash, question},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				snippet = stmt.ColumnText(0)
				found = true
				return nil
			},
		})
	if err != nil {
		return "", false
	}
	return snippet, found
}

// Set records snippet under key, replacing any previous entry.
func (s *SQLite) Set(key, snippet string) {
	dataSource, frameHash, question, ok := splitKey(key)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = sqlitex.Execute(s.conn,
		`INSERT INTO promptmaster (data_source, frame_hash, normalized_question, code_executed)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (data_source, frame_hash, normalized_question)
		 DO UPDATE SET code_executed = excluded.code_executed, bad_code = NULL`,
		&sqlitex.ExecOptions{Args: []any{dataSource, frameHash, question, snippet}})
}

// MarkBad flags the entry under key so Get no longer returns it. The
// row is kept for curation.
func (s *SQLite) MarkBad(key, reason string) {
	dataSource, frameHash, question, ok := splitKey(key)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = sqlitex.Execute(s.conn,
		`UPDATE promptmaster SET bad_code = ?
		 WHERE data_source = ? AND frame_hash = ? AND normalized_question = ?`,
		&sqlitex.ExecOptions{Args: []any{reason, dataSource, frameHash, question}})
}

// Clear removes all entries.
func (s *SQLite) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = sqlitex.ExecuteTransient(s.conn, `DELETE FROM promptmaster`, nil)
}

// splitKey decomposes a key built by Key into its three components.
func splitKey(key string) (dataSource, frameHash, question string, ok bool) {
	parts := strings.SplitN(key, Separator, 3)
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}
