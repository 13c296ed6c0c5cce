// Package store is the document persistence boundary: a SQLite-backed JSON
// document store with whole-document, last-write-wins semantics and an
// in-process change subscription hub. Everything above it treats persistence
// as opaque create/read/update/delete/query/subscribe.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Filter matches top-level JSON fields by equality. A nil filter matches
// every document in the collection.
type Filter map[string]any

// Document is one stored record.
type Document struct {
	Collection string
	ID         string
	Data       json.RawMessage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is a handle on the document database. The zero value is not usable;
// call Open.
type Store struct {
	db  *sql.DB
	q   querier
	hub *hub

	// Events raised inside a transaction are held here and published only
	// after commit.
	pending *[]Event
}

// Open opens (creating if needed) the SQLite database at path, enables
// foreign keys in the DSN, and applies embedded migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", ensureForeignKeysEnabledDSN(path))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error running migrations: %w", err)
	}
	return &Store{db: db, q: db, hub: newHub()}, nil
}

// Close closes the underlying database and the subscription hub.
func (s *Store) Close() error {
	s.hub.close()
	return s.db.Close()
}

func ensureForeignKeysEnabledDSN(dataSourceName string) string {
	if strings.Contains(dataSourceName, "_fk=") {
		return dataSourceName
	}
	if strings.Contains(dataSourceName, "?") {
		return dataSourceName + "&_fk=1"
	}
	return dataSourceName + "?_fk=1"
}

func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("could not create migrate driver: %w", err)
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not create source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

// Create inserts a new document. It fails if the id already exists in the
// collection.
func (s *Store) Create(ctx context.Context, collection, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error encoding document: %w", err)
	}
	_, err = s.q.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)`,
		collection, id, string(data))
	if err != nil {
		return fmt.Errorf("error creating %s/%s: %w", collection, id, err)
	}
	s.notify(Event{Collection: collection, ID: id, Op: OpCreate})
	return nil
}

// Update replaces a document wholesale. Last write wins at document
// granularity; there is no merging.
func (s *Store) Update(ctx context.Context, collection, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error encoding document: %w", err)
	}
	res, err := s.q.ExecContext(ctx,
		`UPDATE documents SET data = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE collection = ? AND id = ?`,
		string(data), collection, id)
	if err != nil {
		return fmt.Errorf("error updating %s/%s: %w", collection, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.notify(Event{Collection: collection, ID: id, Op: OpUpdate})
	return nil
}

// Put creates the document if missing, otherwise replaces it.
func (s *Store) Put(ctx context.Context, collection, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error encoding document: %w", err)
	}
	_, err = s.q.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)
		 ON CONFLICT (collection, id)
		 DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		collection, id, string(data))
	if err != nil {
		return fmt.Errorf("error writing %s/%s: %w", collection, id, err)
	}
	s.notify(Event{Collection: collection, ID: id, Op: OpUpdate})
	return nil
}

// Get decodes the document into out. Returns ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, collection, id string, out any) error {
	var data string
	err := s.q.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`,
		collection, id).Scan(&data)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("error reading %s/%s: %w", collection, id, err)
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return fmt.Errorf("error decoding %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes a document. Deleting an absent document is a no-op.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	res, err := s.q.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection, id)
	if err != nil {
		return fmt.Errorf("error deleting %s/%s: %w", collection, id, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.notify(Event{Collection: collection, ID: id, Op: OpDelete})
	}
	return nil
}

// Query returns the documents in a collection matching the filter, oldest
// first. Filters compare top-level JSON fields by equality.
func (s *Store) Query(ctx context.Context, collection string, filter Filter) ([]Document, error) {
	query := `SELECT id, data, created_at, updated_at FROM documents WHERE collection = ?`
	args := []any{collection}
	for field, value := range filter {
		if strings.ContainsAny(field, "'\"$.[]") {
			return nil, fmt.Errorf("invalid filter field %q", field)
		}
		query += fmt.Sprintf(` AND json_extract(data, '$.%s') = ?`, field)
		args = append(args, value)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc := Document{Collection: collection}
		var data string
		if err := rows.Scan(&doc.ID, &data, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", collection, err)
		}
		doc.Data = json.RawMessage(data)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// QueryAs decodes every matching document in a collection into T.
func QueryAs[T any](ctx context.Context, s *Store, collection string, filter Filter) ([]T, error) {
	docs, err := s.Query(ctx, collection, filter)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := json.Unmarshal(doc.Data, &v); err != nil {
			return nil, fmt.Errorf("error decoding %s/%s: %w", collection, doc.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// RunInTx runs fn with a Store bound to one transaction. Change events
// raised inside the transaction are published only after a successful
// commit, so subscribers never observe rolled-back writes.
func (s *Store) RunInTx(ctx context.Context, fn func(*Store) error) error {
	if s.pending != nil {
		return errors.New("nested transactions are not supported")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	var events []Event
	txStore := &Store{db: s.db, q: tx, hub: s.hub, pending: &events}
	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("error rolling back: %v (original error: %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing: %w", err)
	}
	for _, ev := range events {
		s.hub.publish(ev)
	}
	return nil
}

func (s *Store) notify(ev Event) {
	if s.pending != nil {
		*s.pending = append(*s.pending, ev)
		return
	}
	s.hub.publish(ev)
}

// Subscribe registers for change events on one collection, or every
// collection when collection is empty. The returned cancel func must be
// called to release the subscription.
func (s *Store) Subscribe(collection string) (<-chan Event, func()) {
	return s.hub.subscribe(collection)
}
