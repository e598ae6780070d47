package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/decision-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool used by PostgresStore. pgxmock pools
// satisfy it as well.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS decisions (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	scenario       TEXT NOT NULL,
	depth          TEXT NOT NULL,
	title          TEXT NOT NULL DEFAULT '',
	decision_type  TEXT NOT NULL DEFAULT '',
	primary_choice TEXT NOT NULL DEFAULT '',
	top_option     TEXT NOT NULL DEFAULT '',
	top_score      DOUBLE PRECISION NOT NULL DEFAULT 0,
	framework      JSONB NOT NULL,
	responses      JSONB NOT NULL,
	evaluation     JSONB NOT NULL,
	result         JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_decisions_created_at ON decisions(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_decisions_depth ON decisions(depth);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveDecision(ctx context.Context, rec *model.DecisionRecord) error {
	d, err := prepare(rec)
	if err != nil {
		return err
	}
	top, score := rec.TopOption()

	_, err = s.pool.Exec(ctx,
		`INSERT INTO decisions (id, scenario, depth, title, decision_type, primary_choice, top_option, top_score,
			framework, responses, evaluation, result, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rec.ID, rec.Scenario.Text, string(rec.Scenario.Depth), rec.Framework.Title, rec.Framework.DecisionType,
		rec.Result.PrimaryChoice, top, score,
		d.framework, d.responses, d.evaluation, d.result, rec.CreatedAt,
	)
	return eris.Wrap(err, "postgres: save decision")
}

func (s *PostgresStore) GetDecision(ctx context.Context, id string) (*model.DecisionRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, scenario, depth, framework, responses, evaluation, result, created_at
		 FROM decisions WHERE id = $1`, id)

	var rec model.DecisionRecord
	var depth string
	var d docs
	err := row.Scan(&rec.ID, &rec.Scenario.Text, &depth, &d.framework, &d.responses, &d.evaluation, &d.result, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get decision %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get decision")
	}
	rec.Scenario.Depth = model.Depth(depth)
	if err := d.decode(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *PostgresStore) ListDecisions(ctx context.Context, filter DecisionFilter) ([]DecisionSummary, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Depth != "" {
		where = append(where, "depth = "+arg(string(filter.Depth)))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where = append(where, fmt.Sprintf("(scenario ILIKE %s OR title ILIKE %s)", p, p))
	}
	if !filter.Since.IsZero() {
		where = append(where, "created_at >= "+arg(filter.Since.UTC()))
	}

	query := `SELECT id, title, scenario, depth, primary_choice, top_option, top_score, created_at FROM decisions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += " ORDER BY created_at DESC LIMIT " + arg(limit) + " OFFSET " + arg(filter.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list decisions")
	}
	defer rows.Close()

	var out []DecisionSummary
	for rows.Next() {
		d, err := scanSummary(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan decision")
		}
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate decisions")
}

func (s *PostgresStore) DeleteDecision(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM decisions WHERE id = $1`, id)
	if err != nil {
		return eris.Wrap(err, "postgres: delete decision")
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: delete decision %s", id)
	}
	return nil
}
