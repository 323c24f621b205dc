package dossier

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// Repository stores dossiers and domain concepts.
type Repository interface {
	SaveDossier(ctx context.Context, d *Dossier) error
	Dossier(ctx context.Context, id int64) (*Dossier, error)
	Dossiers(ctx context.Context) ([]*Dossier, error)
	DeleteDossier(ctx context.Context, id int64) error

	SaveConcept(ctx context.Context, c *DomainConcept) error
	Concept(ctx context.Context, id int64) (*DomainConcept, error)
	Concepts(ctx context.Context) ([]*DomainConcept, error)
	DeleteConcept(ctx context.Context, id int64) error
}

const recordSchema = `
CREATE TABLE IF NOT EXISTS dossier (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	url  TEXT NOT NULL DEFAULT '',
	xml  TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS domain_concept (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	name   TEXT NOT NULL,
	type   TEXT NOT NULL,
	url    TEXT NOT NULL DEFAULT '',
	xml    TEXT NOT NULL DEFAULT '',
	script TEXT NOT NULL DEFAULT ''
);
`

// SQLiteRepository is a Repository backed by SQLite.
type SQLiteRepository struct {
	db    *sql.DB
	owned bool
}

// OpenSQLiteRepository opens the database at path and initializes the schema.
func OpenSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	r, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	r.owned = true
	return r, nil
}

// NewSQLiteRepository initializes the schema on an existing handle.
// The caller keeps ownership of db.
func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if _, err := db.Exec(recordSchema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// Close closes the database when the repository opened it.
func (r *SQLiteRepository) Close() error {
	if !r.owned {
		return nil
	}
	return r.db.Close()
}

// SaveDossier inserts d when its ID is zero and updates it otherwise.
// On insert d.ID is set to the new identifier.
func (r *SQLiteRepository) SaveDossier(ctx context.Context, d *Dossier) error {
	if d.ID == 0 {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO dossier (name, url, xml) VALUES (?, ?, ?)`,
			d.Name, d.URL, d.XML)
		if err != nil {
			return fmt.Errorf("insert dossier: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert dossier: %w", err)
		}
		d.ID = id
		return nil
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE dossier SET name = ?, url = ?, xml = ? WHERE id = ?`,
		d.Name, d.URL, d.XML, d.ID)
	if err != nil {
		return fmt.Errorf("update dossier %d: %w", d.ID, err)
	}
	return expectOne(res, d.ID)
}

// Dossier returns the dossier with the given id.
func (r *SQLiteRepository) Dossier(ctx context.Context, id int64) (*Dossier, error) {
	var d Dossier
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, url, xml FROM dossier WHERE id = ?`, id).
		Scan(&d.ID, &d.Name, &d.URL, &d.XML)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get dossier %d: %w", id, err)
	}
	return &d, nil
}

// Dossiers lists all dossiers by id.
func (r *SQLiteRepository) Dossiers(ctx context.Context) ([]*Dossier, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, url, xml FROM dossier ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list dossiers: %w", err)
	}
	defer rows.Close()

	var out []*Dossier
	for rows.Next() {
		var d Dossier
		if err := rows.Scan(&d.ID, &d.Name, &d.URL, &d.XML); err != nil {
			return nil, fmt.Errorf("scan dossier: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// DeleteDossier removes a dossier.
func (r *SQLiteRepository) DeleteDossier(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dossier WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete dossier %d: %w", id, err)
	}
	return expectOne(res, id)
}

// SaveConcept inserts or updates c. The script is stored normalized.
func (r *SQLiteRepository) SaveConcept(ctx context.Context, c *DomainConcept) error {
	if c.Type == "" {
		c.Type = ConceptComponent
	}
	c.Script = NormalizeScript(c.Script)

	if c.ID == 0 {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO domain_concept (name, type, url, xml, script) VALUES (?, ?, ?, ?, ?)`,
			c.Name, string(c.Type), c.URL, c.XML, c.Script)
		if err != nil {
			return fmt.Errorf("insert domain concept: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert domain concept: %w", err)
		}
		c.ID = id
		return nil
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE domain_concept SET name = ?, type = ?, url = ?, xml = ?, script = ? WHERE id = ?`,
		c.Name, string(c.Type), c.URL, c.XML, c.Script, c.ID)
	if err != nil {
		return fmt.Errorf("update domain concept %d: %w", c.ID, err)
	}
	return expectOne(res, c.ID)
}

// Concept returns the domain concept with the given id.
func (r *SQLiteRepository) Concept(ctx context.Context, id int64) (*DomainConcept, error) {
	var c DomainConcept
	var typ string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, type, url, xml, script FROM domain_concept WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &typ, &c.URL, &c.XML, &c.Script)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get domain concept %d: %w", id, err)
	}
	c.Type = ConceptType(typ)
	return &c, nil
}

// Concepts lists all domain concepts by id.
func (r *SQLiteRepository) Concepts(ctx context.Context) ([]*DomainConcept, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, url, xml, script FROM domain_concept ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list domain concepts: %w", err)
	}
	defer rows.Close()

	var out []*DomainConcept
	for rows.Next() {
		var c DomainConcept
		var typ string
		if err := rows.Scan(&c.ID, &c.Name, &typ, &c.URL, &c.XML, &c.Script); err != nil {
			return nil, fmt.Errorf("scan domain concept: %w", err)
		}
		c.Type = ConceptType(typ)
		out = append(out, &c)
	}
	return out, rows.Err()
}

// DeleteConcept removes a domain concept.
func (r *SQLiteRepository) DeleteConcept(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM domain_concept WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete domain concept %d: %w", id, err)
	}
	return expectOne(res, id)
}

func expectOne(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
