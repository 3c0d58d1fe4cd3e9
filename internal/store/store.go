// Package store provides SQLite persistence for the facetline catalog.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/abelbrown/facetline/internal/query"
	"github.com/abelbrown/facetline/internal/schema"
)

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex // Protects all database operations
}

// Record is one catalog row. Relation scopes the ID namespace: the same ID
// may exist under different relations.
type Record struct {
	Relation string
	ID       string
	Label    string
	Body     string
	Created  time.Time
}

// Ref is the (identifier, label) projection a name lookup returns.
type Ref struct {
	ID    string
	Label string
}

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for better concurrent read performance (file-based DBs only).
func Open(dbPath string) (*Store, error) {
	// Build connection string based on database type
	connStr := dbPath
	if dbPath == ":memory:" {
		// For in-memory databases, use shared cache mode so all connections
		// in the pool see the same database
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// For in-memory databases, limit to 1 connection to avoid issues
	// with multiple connections getting different databases
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Enable WAL mode for file-based databases (not :memory:)
	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

// createTables creates the required tables and indexes if they don't exist.
func (s *Store) createTables() error {
	ddl := `
	CREATE TABLE IF NOT EXISTS records (
		relation TEXT NOT NULL,
		id TEXT NOT NULL,
		label TEXT NOT NULL,
		body TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (relation, id)
	);

	CREATE INDEX IF NOT EXISTS idx_records_label ON records(relation, label);

	CREATE TABLE IF NOT EXISTS saved_searches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT NOT NULL,
		facets_json TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SaveRecords stores records, returning count of new rows inserted.
// Duplicates (by relation+id) are silently ignored via INSERT OR IGNORE.
// Thread-safe: acquires write lock.
func (s *Store) SaveRecords(records []Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(records) == 0 {
		return 0, nil
	}

	stmt, err := s.db.Prepare(`
		INSERT OR IGNORE INTO records (relation, id, label, body)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	newCount := 0
	for _, rec := range records {
		result, err := stmt.Exec(rec.Relation, rec.ID, rec.Label, rec.Body)
		if err != nil {
			return newCount, err
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return newCount, err
		}
		if affected > 0 {
			newCount++
		}
	}

	return newCount, nil
}

// NameSearch finds records in a relation whose label matches the query:
// case-insensitive containment by default, equality when exact is set.
// The optional domain fragment further restricts matches to records whose
// body contains it. Results are ordered by label then id so that a larger
// limit always returns a previous page as a prefix.
// Thread-safe: acquires read lock.
func (s *Store) NameSearch(ctx context.Context, relation, queryText string, exact bool, domain string, limit int) ([]Ref, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	var where []string
	var args []any
	where = append(where, "relation = ?")
	args = append(args, relation)

	if exact {
		where = append(where, "label = ? COLLATE NOCASE")
		args = append(args, queryText)
	} else if queryText != "" {
		where = append(where, "label LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(queryText)+"%")
	}
	if domain != "" {
		where = append(where, "body LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(domain)+"%")
	}
	args = append(args, limit)

	q := fmt.Sprintf(`
		SELECT id, label FROM records
		WHERE %s
		ORDER BY label, id
		LIMIT ?
	`, strings.Join(where, " AND "))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []Ref
	for rows.Next() {
		var ref Ref
		if err := rows.Scan(&ref.ID, &ref.Label); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// SearchRecords returns records matching every active facet (AND semantics)
// plus an optional free-text term matched against label and body.
// Thread-safe: acquires read lock.
func (s *Store) SearchRecords(ctx context.Context, facets []query.Facet, freeText string, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 200
	}

	var where []string
	var args []any

	for _, f := range facets {
		clause, clauseArgs := facetClause(f)
		if clause == "" {
			continue
		}
		where = append(where, clause)
		args = append(args, clauseArgs...)
	}
	if text := strings.TrimSpace(freeText); text != "" {
		where = append(where, "(label LIKE ? ESCAPE '\\' OR body LIKE ? ESCAPE '\\')")
		pattern := "%" + escapeLike(text) + "%"
		args = append(args, pattern, pattern)
	}

	q := "SELECT relation, id, label, body, created_at FROM records"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY label, relation, id LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var body sql.NullString
		if err := rows.Scan(&rec.Relation, &rec.ID, &rec.Label, &body, &rec.Created); err != nil {
			return nil, err
		}
		rec.Body = body.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// facetClause translates one facet into a SQL predicate over the records
// table. Facets match against the JSON body as "fieldID": fragments, which
// is how seeded records encode their attributes.
func facetClause(f query.Facet) (string, []any) {
	value := fmt.Sprintf("%v", f.Value)
	switch f.Operator {
	case schema.OpEquals:
		fragment := fmt.Sprintf(`"%s":%q`, f.FieldID, value)
		return "body LIKE ? ESCAPE '\\'", []any{"%" + escapeLike(fragment) + "%"}
	case schema.OpContains:
		return "(label LIKE ? ESCAPE '\\' OR body LIKE ? ESCAPE '\\')",
			[]any{"%" + escapeLike(value) + "%", "%" + escapeLike(value) + "%"}
	default:
		return "", nil
	}
}

// escapeLike escapes LIKE wildcards in user-supplied text.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// SavedSearch is one persisted search commit.
type SavedSearch struct {
	ID      int64
	Query   string
	Facets  []query.Facet
	Created time.Time
}

// SaveSearch persists a committed search (free text plus active facets).
// Thread-safe: acquires write lock.
func (s *Store) SaveSearch(queryText string, facets []query.Facet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(facets)
	if err != nil {
		return fmt.Errorf("marshal facets: %w", err)
	}
	_, err = s.db.Exec(
		"INSERT INTO saved_searches (query, facets_json) VALUES (?, ?)",
		queryText, string(data),
	)
	return err
}

// RecentSearches returns the most recent saved searches, newest first.
// Thread-safe: acquires read lock.
func (s *Store) RecentSearches(limit int) ([]SavedSearch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, query, facets_json, created_at
		FROM saved_searches
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var searches []SavedSearch
	for rows.Next() {
		var ss SavedSearch
		var facetsJSON string
		if err := rows.Scan(&ss.ID, &ss.Query, &facetsJSON, &ss.Created); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(facetsJSON), &ss.Facets); err != nil {
			return nil, fmt.Errorf("unmarshal facets: %w", err)
		}
		searches = append(searches, ss)
	}
	return searches, rows.Err()
}

// Relations returns the distinct relations in the catalog with row counts.
// Thread-safe: acquires read lock.
func (s *Store) Relations() (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT relation, COUNT(*) FROM records GROUP BY relation")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var relation string
		var count int
		if err := rows.Scan(&relation, &count); err != nil {
			return nil, err
		}
		counts[relation] = count
	}
	return counts, rows.Err()
}

// RecordCount returns the total number of catalog records.
// Thread-safe: acquires read lock.
func (s *Store) RecordCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count)
	return count, err
}
