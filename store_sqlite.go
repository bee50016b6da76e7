/*
Copyright 2024 Henri Remonen

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package flux

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const visitsSchema = `
CREATE TABLE IF NOT EXISTS visits (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	url        TEXT    NOT NULL,
	status     INTEGER NOT NULL DEFAULT 0,
	visited_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_visits_url ON visits(url);
`

// SQLiteStore is a persistent Storer. Every visit is appended to a history
// table, so a URL visited twice with AllowRevisit shows up twice.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens or creates the history database at path. Use
// ":memory:" for a throwaway store.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases alive and serializes writers
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(visitsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Visited reports whether url has at least one history entry. Errors are
// traced and reported as not visited.
func (s *SQLiteStore) Visited(url string) bool {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM visits WHERE url = ?`, url).Scan(&n)
	if err != nil {
		tracer().Errorf("history lookup for %s: %v", url, err)
		return false
	}
	return n > 0
}

// Visit records url with status 0.
func (s *SQLiteStore) Visit(url string) {
	s.VisitResult(url, 0)
}

// VisitResult records url together with the response status.
func (s *SQLiteStore) VisitResult(url string, status uint16) {
	_, err := s.db.Exec(`INSERT INTO visits (url, status, visited_at) VALUES (?, ?, ?)`,
		url, int(status), time.Now().UnixNano())
	if err != nil {
		tracer().Errorf("recording visit of %s: %v", url, err)
	}
}

// History returns up to limit of the most recent visits, newest first. A
// limit of zero or less returns everything.
func (s *SQLiteStore) History(limit int) ([]Visit, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`SELECT url, status, visited_at FROM visits ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []Visit
	for rows.Next() {
		var (
			v      Visit
			status int
			at     int64
		)
		if err := rows.Scan(&v.URL, &status, &at); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		v.Status = uint16(status)
		v.VisitedAt = time.Unix(0, at)
		out = append(out, v)
	}
	return out, rows.Err()
}
