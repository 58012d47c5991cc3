// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists publication records in a SQLite database
// keyed by canonical id. Writes merge under the monotone-enrichment
// rule; entries live until an operator deletes them.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/citenet/pkg/types"
)

const dbFile = "citenet.db"

// ErrMiss is returned by Get when no usable entry exists for an id.
// Corrupt entries (invariant violations, unparseable columns) are
// reported as misses so the resolver re-fetches them.
var ErrMiss = errors.New("cache miss")

// Cache is the durable record store.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at cacheDir/citenet.db and
// creates the schema if needed.
func Open(cfg types.CacheConfig) (*Cache, error) {
	dir := cfg.CacheDir
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	c := &Cache{db: db}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return c, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) createSchema() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS publications (
		id TEXT PRIMARY KEY,
		title TEXT,
		year INTEGER,
		abstract TEXT,
		authors TEXT,
		venue TEXT,
		doi TEXT,
		refs TEXT,
		citations TEXT,
		reference_count INTEGER,
		citation_count INTEGER,
		source TEXT
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Get returns the record stored under id, or ErrMiss when absent or
// corrupt.
func (c *Cache) Get(id string) (*types.PublicationRecord, error) {
	row := c.db.QueryRow(
		`SELECT id, title, year, abstract, authors, venue, doi, refs, citations,
		        reference_count, citation_count, source
		 FROM publications WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, ErrMiss
	}
	if err != nil {
		// Unparseable entry: force a re-fetch rather than surfacing
		// corrupt data.
		return nil, ErrMiss
	}

	if corrupt(rec, id) {
		return nil, ErrMiss
	}
	return rec, nil
}

// Put merges rec into any existing entry under the same id: scalar
// fields follow last-writer-wins with empty values never clearing,
// References and Citations merge by union, counts never regress. The
// read-merge-write runs in one transaction.
func (c *Cache) Put(rec *types.PublicationRecord) error {
	if rec.CanonicalID == "" {
		return fmt.Errorf("record has no canonical id")
	}
	rec.Normalize()

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(
		`SELECT id, title, year, abstract, authors, venue, doi, refs, citations,
		        reference_count, citation_count, source
		 FROM publications WHERE id = ?`, rec.CanonicalID)

	merged := rec
	existing, err := scanRecord(row)
	if err == nil && !corrupt(existing, rec.CanonicalID) {
		existing.Merge(rec)
		merged = existing
	} else if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("reading existing entry: %w", err)
	}

	authorsJSON, _ := json.Marshal(merged.Authors)
	refsJSON, _ := json.Marshal(merged.References)
	citsJSON, _ := json.Marshal(merged.Citations)

	_, err = tx.Exec(
		`INSERT INTO publications
		   (id, title, year, abstract, authors, venue, doi, refs, citations,
		    reference_count, citation_count, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title=excluded.title, year=excluded.year, abstract=excluded.abstract,
		   authors=excluded.authors, venue=excluded.venue, doi=excluded.doi,
		   refs=excluded.refs, citations=excluded.citations,
		   reference_count=excluded.reference_count,
		   citation_count=excluded.citation_count, source=excluded.source`,
		merged.CanonicalID, merged.Title, merged.Year, merged.Abstract,
		string(authorsJSON), merged.Venue, merged.DOI,
		string(refsJSON), string(citsJSON),
		merged.ReferenceCount, merged.CitationCount, merged.Source,
	)
	if err != nil {
		return fmt.Errorf("upserting record %s: %w", merged.CanonicalID, err)
	}
	return tx.Commit()
}

// Delete removes the entry under id. Deleting an absent id is not an
// error; invalidation is an operator action.
func (c *Cache) Delete(id string) error {
	_, err := c.db.Exec(`DELETE FROM publications WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting record %s: %w", id, err)
	}
	return nil
}

// Count returns the number of stored records.
func (c *Cache) Count() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT count(*) FROM publications`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// All returns every stored record ordered by canonical id. Corrupt
// entries are skipped.
func (c *Cache) All() ([]*types.PublicationRecord, error) {
	rows, err := c.db.Query(
		`SELECT id, title, year, abstract, authors, venue, doi, refs, citations,
		        reference_count, citation_count, source
		 FROM publications ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var recs []*types.PublicationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			continue
		}
		if corrupt(rec, rec.CanonicalID) {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// scanner abstracts sql.Row and sql.Rows for scanRecord.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*types.PublicationRecord, error) {
	var rec types.PublicationRecord
	var authorsJSON, refsJSON, citsJSON string

	err := row.Scan(&rec.CanonicalID, &rec.Title, &rec.Year, &rec.Abstract,
		&authorsJSON, &rec.Venue, &rec.DOI, &refsJSON, &citsJSON,
		&rec.ReferenceCount, &rec.CitationCount, &rec.Source)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(authorsJSON), &rec.Authors); err != nil {
		return nil, fmt.Errorf("parsing authors: %w", err)
	}
	if err := json.Unmarshal([]byte(refsJSON), &rec.References); err != nil {
		return nil, fmt.Errorf("parsing references: %w", err)
	}
	if err := json.Unmarshal([]byte(citsJSON), &rec.Citations); err != nil {
		return nil, fmt.Errorf("parsing citations: %w", err)
	}
	return &rec, nil
}

// corrupt reports whether a stored record violates invariants: a key
// mismatch or a self-referential edge.
func corrupt(rec *types.PublicationRecord, id string) bool {
	if rec.CanonicalID != id || rec.CanonicalID == "" {
		return true
	}
	for _, ref := range rec.References {
		if ref == rec.CanonicalID {
			return true
		}
	}
	for _, cit := range rec.Citations {
		if cit == rec.CanonicalID {
			return true
		}
	}
	return false
}
