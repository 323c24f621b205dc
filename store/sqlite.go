package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/c360studio/semdossier/graph"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const quadSchema = `
CREATE TABLE IF NOT EXISTS quads (
	graph      TEXT    NOT NULL,
	position   INTEGER NOT NULL,
	s_kind     TEXT    NOT NULL CHECK (s_kind IN ('iri', 'bnode')),
	s          TEXT    NOT NULL,
	p          TEXT    NOT NULL CHECK (p <> ''),
	o_kind     TEXT    NOT NULL CHECK (o_kind IN ('iri', 'bnode', 'literal')),
	o          TEXT    NOT NULL,
	o_datatype TEXT    NOT NULL DEFAULT '',
	o_lang     TEXT    NOT NULL DEFAULT '',
	PRIMARY KEY (graph, position)
) WITHOUT ROWID;
`

// SQLiteStore keeps named graphs in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and initializes the schema.
// Use ":memory:" for a private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection serializes writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(quadSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// ReplaceGraph deletes the graph and inserts g inside one transaction.
// Any failure rolls the transaction back and leaves the prior content intact.
func (s *SQLiteStore) ReplaceGraph(ctx context.Context, name string, g *graph.Graph) (err error) {
	if err := checkGraph(g); err != nil {
		return &CommitError{Graph: name, Err: err}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &CommitError{Graph: name, Err: fmt.Errorf("begin: %w", err)}
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM quads WHERE graph = ?`, name); err != nil {
		return &CommitError{Graph: name, Err: fmt.Errorf("clear: %w", err)}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO quads (graph, position, s_kind, s, p, o_kind, o, o_datatype, o_lang)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return &CommitError{Graph: name, Err: fmt.Errorf("prepare insert: %w", err)}
	}
	defer stmt.Close()

	for i, r := range toRecords(g) {
		if _, err = stmt.ExecContext(ctx, name, i,
			string(r.S.Kind), r.S.Value,
			r.P.Value,
			string(r.O.Kind), r.O.Value, r.O.Datatype, r.O.Lang,
		); err != nil {
			if isConstraint(err) {
				err = fmt.Errorf("%w: insert triple %d: %w", ErrInvalidGraph, i, err)
			} else {
				err = fmt.Errorf("insert triple %d: %w", i, err)
			}
			return &CommitError{Graph: name, Err: err}
		}
	}

	if err = tx.Commit(); err != nil {
		return &CommitError{Graph: name, Err: fmt.Errorf("commit: %w", err)}
	}
	return nil
}

// Graph reads the named graph back in insertion order.
func (s *SQLiteStore) Graph(ctx context.Context, name string) (*graph.Graph, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s_kind, s, p, o_kind, o, o_datatype, o_lang
		FROM quads WHERE graph = ? ORDER BY position
	`, name)
	if err != nil {
		return nil, fmt.Errorf("query graph %s: %w", name, err)
	}
	defer rows.Close()

	var recs []record
	for rows.Next() {
		var r record
		var sKind, oKind string
		if err := rows.Scan(&sKind, &r.S.Value, &r.P.Value, &oKind, &r.O.Value, &r.O.Datatype, &r.O.Lang); err != nil {
			return nil, fmt.Errorf("scan graph %s: %w", name, err)
		}
		r.S.Kind = graph.TermKind(sKind)
		r.P.Kind = graph.KindIRI
		r.O.Kind = graph.TermKind(oKind)
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read graph %s: %w", name, err)
	}
	if len(recs) == 0 {
		return nil, ErrGraphNotFound
	}
	return fromRecords(recs), nil
}

// DropGraph removes every quad of the named graph.
func (s *SQLiteStore) DropGraph(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM quads WHERE graph = ?`, name); err != nil {
		return fmt.Errorf("drop graph %s: %w", name, err)
	}
	return nil
}

// Graphs lists the stored graph names in lexical order.
func (s *SQLiteStore) Graphs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT graph FROM quads ORDER BY graph`)
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan graph name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		return err
	}
	return nil
}

// DB exposes the underlying handle so record repositories can share the file.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// isConstraint reports whether err is a SQLite constraint violation.
func isConstraint(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
