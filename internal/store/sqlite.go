package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/decision-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS decisions (
	id             TEXT PRIMARY KEY,
	scenario       TEXT NOT NULL,
	depth          TEXT NOT NULL,
	title          TEXT NOT NULL DEFAULT '',
	decision_type  TEXT NOT NULL DEFAULT '',
	primary_choice TEXT NOT NULL DEFAULT '',
	top_option     TEXT NOT NULL DEFAULT '',
	top_score      REAL NOT NULL DEFAULT 0,
	framework      TEXT NOT NULL,
	responses      TEXT NOT NULL,
	evaluation     TEXT NOT NULL,
	result         TEXT NOT NULL,
	created_at     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decisions_created_at ON decisions(created_at);
CREATE INDEX IF NOT EXISTS idx_decisions_depth ON decisions(depth);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveDecision(ctx context.Context, rec *model.DecisionRecord) error {
	d, err := prepare(rec)
	if err != nil {
		return err
	}
	top, score := rec.TopOption()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO decisions (id, scenario, depth, title, decision_type, primary_choice, top_option, top_score,
			framework, responses, evaluation, result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Scenario.Text, string(rec.Scenario.Depth), rec.Framework.Title, rec.Framework.DecisionType,
		rec.Result.PrimaryChoice, top, score,
		string(d.framework), string(d.responses), string(d.evaluation), string(d.result), rec.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: save decision")
}

func (s *SQLiteStore) GetDecision(ctx context.Context, id string) (*model.DecisionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, scenario, depth, framework, responses, evaluation, result, created_at
		 FROM decisions WHERE id = ?`, id)

	var rec model.DecisionRecord
	var depth string
	var fw, resp, eval, result string
	err := row.Scan(&rec.ID, &rec.Scenario.Text, &depth, &fw, &resp, &eval, &result, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get decision %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get decision")
	}
	rec.Scenario.Depth = model.Depth(depth)

	d := docs{framework: []byte(fw), responses: []byte(resp), evaluation: []byte(eval), result: []byte(result)}
	if err := d.decode(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *SQLiteStore) ListDecisions(ctx context.Context, filter DecisionFilter) ([]DecisionSummary, error) {
	var where []string
	var args []any
	if filter.Depth != "" {
		where = append(where, "depth = ?")
		args = append(args, string(filter.Depth))
	}
	if filter.Search != "" {
		where = append(where, "(scenario LIKE ? OR title LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	if !filter.Since.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, filter.Since.UTC())
	}

	query := `SELECT id, title, scenario, depth, primary_choice, top_option, top_score, created_at FROM decisions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list decisions")
	}
	defer rows.Close() //nolint:errcheck

	var out []DecisionSummary
	for rows.Next() {
		d, err := scanSummary(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan decision")
		}
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate decisions")
}

func (s *SQLiteStore) DeleteDecision(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM decisions WHERE id = ?`, id)
	if err != nil {
		return eris.Wrap(err, "sqlite: delete decision")
	}
	return checkRowsAffected(res, id)
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "store: %s", id)
	}
	return nil
}

func scanSummary(row scannable) (DecisionSummary, error) {
	var d DecisionSummary
	var depth string
	err := row.Scan(&d.ID, &d.Title, &d.Scenario, &depth, &d.PrimaryChoice, &d.TopOption, &d.TopScore, &d.CreatedAt)
	d.Depth = model.Depth(depth)
	return d, err
}
