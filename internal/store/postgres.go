// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/juanceresa/BigQuery/pkg/types"
)

// Postgres is the shared record store. Its tables mirror the SQLite schema.
type Postgres struct {
	db *pgxpool.Pool
}

// OpenPostgres connects to dsn and creates the schema if needed.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	p := NewPostgres(pool)
	if err := p.createSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return p, nil
}

// NewPostgres wraps an existing pool.
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.db.Close()
	return nil
}

func (p *Postgres) createSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS investigators (
			id TEXT PRIMARY KEY,
			seq INTEGER NOT NULL,
			nombre TEXT NOT NULL DEFAULT '',
			apellido_1 TEXT NOT NULL DEFAULT '',
			apellido_2 TEXT NOT NULL DEFAULT '',
			nombre_apellidos TEXT NOT NULL DEFAULT '',
			trabajo_institucion TEXT NOT NULL DEFAULT '',
			ano_beca TEXT NOT NULL DEFAULT '',
			pais TEXT NOT NULL DEFAULT '',
			gs TEXT NOT NULL DEFAULT '',
			doi TEXT,
			author_order INTEGER,
			alex_id TEXT,
			author_id TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS candidates (
			run_id TEXT NOT NULL,
			investigator_id TEXT NOT NULL,
			candidate_id TEXT NOT NULL,
			classification TEXT NOT NULL,
			query TEXT,
			candidate JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (run_id, investigator_id, candidate_id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := p.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// FetchInvestigators returns every investigator in insertion order.
func (p *Postgres) FetchInvestigators(ctx context.Context) ([]types.Investigator, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+investigatorColumns+` FROM investigators ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying investigators: %w", err)
	}
	defer rows.Close()

	var out []types.Investigator
	for rows.Next() {
		var (
			inv         types.Investigator
			authorOrder *int32
		)
		if err := rows.Scan(&inv.ID, &inv.Name, &inv.Surname1, &inv.Surname2, &inv.FullName,
			&inv.Institution, &inv.GrantYear, &inv.Country, &inv.GS,
			&inv.DOI, &authorOrder, &inv.AlexID, &inv.AuthorID); err != nil {
			return nil, fmt.Errorf("scanning investigator: %w", err)
		}
		if authorOrder != nil {
			inv.AuthorOrder = types.IntPtr(int(*authorOrder))
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// Persist writes investigators in one transaction, with the same modes as
// SQLite.Persist.
func (p *Postgres) Persist(ctx context.Context, investigators []types.Investigator, mode types.PersistMode) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	base := 0
	switch mode {
	case types.PersistReplace, "":
		if _, err := tx.Exec(ctx, `TRUNCATE investigators`); err != nil {
			return fmt.Errorf("clearing investigators: %w", err)
		}
	case types.PersistUpsert:
		if err := tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(seq), -1) + 1 FROM investigators`).Scan(&base); err != nil {
			return fmt.Errorf("reading sequence: %w", err)
		}
	default:
		return fmt.Errorf("unknown persist mode %q", mode)
	}

	batch := &pgx.Batch{}
	for i, inv := range investigators {
		batch.Queue(`INSERT INTO investigators (seq, `+investigatorColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			ON CONFLICT (id) DO UPDATE SET
				nombre=excluded.nombre, apellido_1=excluded.apellido_1,
				apellido_2=excluded.apellido_2, nombre_apellidos=excluded.nombre_apellidos,
				trabajo_institucion=excluded.trabajo_institucion, ano_beca=excluded.ano_beca,
				pais=excluded.pais, gs=excluded.gs, doi=excluded.doi,
				author_order=excluded.author_order, alex_id=excluded.alex_id,
				author_id=excluded.author_id`,
			append([]any{base + i}, investigatorArgs(inv)...)...)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("writing investigators: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing investigators: %w", err)
	}
	return nil
}

// SaveCandidates stores gathered candidates under runID.
func (p *Postgres) SaveCandidates(ctx context.Context, runID string, candidates []types.GatheredCandidate) error {
	batch := &pgx.Batch{}
	for _, g := range candidates {
		data, err := json.Marshal(g.Candidate)
		if err != nil {
			return fmt.Errorf("encoding candidate %s: %w", g.Candidate.ID, err)
		}
		batch.Queue(`INSERT INTO candidates (run_id, investigator_id, candidate_id, classification, query, candidate)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (run_id, investigator_id, candidate_id) DO UPDATE SET
				classification=excluded.classification, query=excluded.query, candidate=excluded.candidate`,
			runID, g.InvestigatorID, g.Candidate.ID, g.Class.String(), g.Query, data)
	}
	if err := p.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("saving candidates: %w", err)
	}
	return nil
}
