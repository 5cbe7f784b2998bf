// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists investigators, gathered candidates and works in a
// local SQLite database or a Postgres database, and moves investigator
// tables in and out of CSV, YAML and JSON files.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/juanceresa/BigQuery/pkg/types"
)

// SQLite is the local record store.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and its schema.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &SQLite{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS investigators (
			id TEXT PRIMARY KEY,
			seq INTEGER NOT NULL,
			nombre TEXT,
			apellido_1 TEXT,
			apellido_2 TEXT,
			nombre_apellidos TEXT,
			trabajo_institucion TEXT,
			ano_beca TEXT,
			pais TEXT,
			gs TEXT,
			doi TEXT,
			author_order INTEGER,
			alex_id TEXT,
			author_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_investigators_seq ON investigators(seq)`,
		`CREATE TABLE IF NOT EXISTS candidates (
			run_id TEXT NOT NULL,
			investigator_id TEXT NOT NULL,
			candidate_id TEXT NOT NULL,
			classification TEXT NOT NULL,
			query TEXT,
			candidate TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (run_id, investigator_id, candidate_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_investigator ON candidates(investigator_id)`,
		`CREATE TABLE IF NOT EXISTS works (
			investigator_id TEXT NOT NULL,
			author_id TEXT NOT NULL,
			work_id TEXT NOT NULL,
			title TEXT,
			doi TEXT,
			publication_year INTEGER,
			cited_by_count INTEGER,
			PRIMARY KEY (investigator_id, work_id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

const investigatorColumns = `id, nombre, apellido_1, apellido_2, nombre_apellidos,
	trabajo_institucion, ano_beca, pais, gs, doi, author_order, alex_id, author_id`

// FetchInvestigators returns every investigator in insertion order.
func (s *SQLite) FetchInvestigators(ctx context.Context) ([]types.Investigator, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+investigatorColumns+` FROM investigators ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying investigators: %w", err)
	}
	defer rows.Close()

	var out []types.Investigator
	for rows.Next() {
		var (
			inv                   types.Investigator
			doi, alexID, authorID sql.NullString
			authorOrder           sql.NullInt64
		)
		if err := rows.Scan(&inv.ID, &inv.Name, &inv.Surname1, &inv.Surname2, &inv.FullName,
			&inv.Institution, &inv.GrantYear, &inv.Country, &inv.GS,
			&doi, &authorOrder, &alexID, &authorID); err != nil {
			return nil, fmt.Errorf("scanning investigator: %w", err)
		}
		inv.DOI = nullString(doi)
		inv.AlexID = nullString(alexID)
		inv.AuthorID = nullString(authorID)
		if authorOrder.Valid {
			inv.AuthorOrder = types.IntPtr(int(authorOrder.Int64))
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// Persist writes investigators. PersistReplace clears the table first;
// PersistUpsert updates existing ids in place and appends new ones.
func (s *SQLite) Persist(ctx context.Context, investigators []types.Investigator, mode types.PersistMode) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	base := 0
	switch mode {
	case types.PersistReplace, "":
		if _, err := tx.ExecContext(ctx, `DELETE FROM investigators`); err != nil {
			return fmt.Errorf("clearing investigators: %w", err)
		}
	case types.PersistUpsert:
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(seq), -1) + 1 FROM investigators`).Scan(&base); err != nil {
			return fmt.Errorf("reading sequence: %w", err)
		}
	default:
		return fmt.Errorf("unknown persist mode %q", mode)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO investigators (seq, `+investigatorColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			nombre=excluded.nombre, apellido_1=excluded.apellido_1,
			apellido_2=excluded.apellido_2, nombre_apellidos=excluded.nombre_apellidos,
			trabajo_institucion=excluded.trabajo_institucion, ano_beca=excluded.ano_beca,
			pais=excluded.pais, gs=excluded.gs, doi=excluded.doi,
			author_order=excluded.author_order, alex_id=excluded.alex_id,
			author_id=excluded.author_id`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, inv := range investigators {
		if _, err := stmt.ExecContext(ctx, append([]any{base + i}, investigatorArgs(inv)...)...); err != nil {
			return fmt.Errorf("writing investigator %s: %w", inv.ID, err)
		}
	}
	return tx.Commit()
}

// SaveCandidates stores gathered candidates under runID. The candidate
// profile is kept as JSON.
func (s *SQLite) SaveCandidates(ctx context.Context, runID string, candidates []types.GatheredCandidate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO candidates (run_id, investigator_id, candidate_id, classification, query, candidate, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, g := range candidates {
		data, err := json.Marshal(g.Candidate)
		if err != nil {
			return fmt.Errorf("encoding candidate %s: %w", g.Candidate.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, runID, g.InvestigatorID, g.Candidate.ID,
			g.Class.String(), g.Query, string(data), now); err != nil {
			return fmt.Errorf("inserting candidate %s: %w", g.Candidate.ID, err)
		}
	}
	return tx.Commit()
}

// LatestRun returns the run id of the most recently saved candidates, or ""
// when none are stored.
func (s *SQLite) LatestRun(ctx context.Context) (string, error) {
	var runID sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id FROM candidates ORDER BY created_at DESC, rowid DESC LIMIT 1`).Scan(&runID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying latest run: %w", err)
	}
	return runID.String, nil
}

// ListCandidates returns the candidates saved under runID in insertion
// order.
func (s *SQLite) ListCandidates(ctx context.Context, runID string) ([]types.GatheredCandidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT investigator_id, classification, query, candidate FROM candidates
		 WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying candidates: %w", err)
	}
	defer rows.Close()

	var out []types.GatheredCandidate
	for rows.Next() {
		var (
			g         types.GatheredCandidate
			class     string
			query     sql.NullString
			candidate string
		)
		if err := rows.Scan(&g.InvestigatorID, &class, &query, &candidate); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		g.Class = types.ParseClassification(class)
		g.Query = query.String
		if err := json.Unmarshal([]byte(candidate), &g.Candidate); err != nil {
			return nil, fmt.Errorf("decoding candidate: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// SaveWorks replaces the works stored for investigatorID.
func (s *SQLite) SaveWorks(ctx context.Context, investigatorID, authorID string, works []types.Work) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM works WHERE investigator_id = ?`, investigatorID); err != nil {
		return fmt.Errorf("deleting old works: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO works (investigator_id, author_id, work_id, title, doi, publication_year, cited_by_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, w := range works {
		if _, err := stmt.ExecContext(ctx, investigatorID, authorID, w.ID, w.Title, w.DOI,
			w.PublicationYear, w.CitedByCount); err != nil {
			return fmt.Errorf("inserting work %s: %w", w.ID, err)
		}
	}
	return tx.Commit()
}

// CountWorks returns the number of works stored for investigatorID.
func (s *SQLite) CountWorks(ctx context.Context, investigatorID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM works WHERE investigator_id = ?`, investigatorID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting works: %w", err)
	}
	return n, nil
}

func investigatorArgs(inv types.Investigator) []any {
	var authorOrder any
	if inv.AuthorOrder != nil {
		authorOrder = *inv.AuthorOrder
	}
	return []any{
		inv.ID, inv.Name, inv.Surname1, inv.Surname2, inv.FullName,
		inv.Institution, inv.GrantYear, inv.Country, inv.GS,
		ptrArg(inv.DOI), authorOrder, ptrArg(inv.AlexID), ptrArg(inv.AuthorID),
	}
}

func ptrArg(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
