// Package results records wrapper run history in Postgres. This is
// bookkeeping about the pipeline itself; the sync values themselves are
// persisted by the external result writer program.
package results

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Run struct {
	ID         string
	Network    string
	Tag1       string
	Tag2       string
	HydraEval1 string
	HydraEval2 string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
}

type Step struct {
	RunID    string
	Name     string
	Status   string
	ExitCode int
	Runtime  float64
	Message  string
}

type Connection interface {
	LastRun(ctx context.Context) (*Run, error)

	Begin() (Transactor, error)
	Close() error
}

type Transactor interface {
	InsertRun(ctx context.Context, r Run) error
	InsertStep(ctx context.Context, s Step) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context)
}

type PGXDB struct {
	conn *pgxpool.Pool
}

func New(ctx context.Context, uri string) (*PGXDB, error) {
	conn, err := pgxpool.New(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	return &PGXDB{conn: conn}, nil
}

func (p *PGXDB) LastRun(ctx context.Context) (*Run, error) {
	sql := `
SELECT id, network, tag1, tag2, hydra_eval1, hydra_eval2, status, started_at, finished_at
FROM sync_runs ORDER BY started_at DESC LIMIT 1
`

	row := p.conn.QueryRow(ctx, sql)
	var r Run
	if err := row.Scan(&r.ID, &r.Network, &r.Tag1, &r.Tag2, &r.HydraEval1, &r.HydraEval2, &r.Status, &r.StartedAt, &r.FinishedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to get last run: %w", err)
	}
	return &r, nil
}

func (p *PGXDB) Begin() (Transactor, error) {
	tx, err := p.conn.Begin(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &PGXTransactor{tx: tx}, nil
}

func (p *PGXDB) Close() error {
	p.conn.Close()
	return nil
}

type PGXTransactor struct {
	tx  pgx.Tx
	mtx sync.Mutex
}

func (p *PGXTransactor) InsertRun(ctx context.Context, r Run) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	sql := `
INSERT INTO sync_runs (id, network, tag1, tag2, hydra_eval1, hydra_eval2, status, started_at, finished_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) ON CONFLICT DO NOTHING
`

	if _, err := p.tx.Exec(ctx,
		sql,
		r.ID,
		r.Network,
		r.Tag1,
		r.Tag2,
		r.HydraEval1,
		r.HydraEval2,
		r.Status,
		r.StartedAt,
		r.FinishedAt,
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

func (p *PGXTransactor) InsertStep(ctx context.Context, s Step) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	sql := `
INSERT INTO sync_run_steps (run_id, name, status, exit_code, runtime, message)
VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT DO NOTHING
`

	if _, err := p.tx.Exec(ctx,
		sql,
		s.RunID,
		s.Name,
		s.Status,
		s.ExitCode,
		s.Runtime,
		s.Message,
	); err != nil {
		return fmt.Errorf("failed to insert step: %w", err)
	}
	return nil
}

func (p *PGXTransactor) Commit(ctx context.Context) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.tx.Commit(ctx)
}

func (p *PGXTransactor) Rollback(ctx context.Context) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if err := p.tx.Rollback(context.Background()); err != nil {
		slog.Error("error rolling back transaction", "err", err)
	}
}
