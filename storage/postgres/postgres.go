// Package postgres implements storage.Storage backed by PostgreSQL,
// using the jackc/pgx/v5 stdlib driver over database/sql. ClaimReady
// uses SELECT ... FOR UPDATE SKIP LOCKED so concurrent workers across
// goroutines (and, best-effort, processes) never double-claim a row.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/nextlevelbuilder/taskcore/storage"
)

func init() {
	storage.Register("postgres", Open)
}

// Store implements storage.Storage over PostgreSQL.
type Store struct {
	db *sql.DB
}

// Open parses a "postgres://..." DSN and opens a connection pool
// through the pgx stdlib driver.
func Open(dsn string) (storage.Storage, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &Store{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	status TEXT NOT NULL,
	priority INTEGER NOT NULL DEFAULT 0,
	payload BYTEA,
	cron_expr TEXT,
	cron_tz TEXT,
	next_run_time BIGINT NOT NULL,
	last_active_time BIGINT NOT NULL DEFAULT 0,
	timeout INTEGER NOT NULL DEFAULT 60,
	retry_count INTEGER NOT NULL DEFAULT 0,
	max_retries INTEGER NOT NULL DEFAULT 3,
	retry_interval INTEGER NOT NULL DEFAULT 0,
	created_at BIGINT NOT NULL,
	result BYTEA,
	error TEXT
);
CREATE INDEX IF NOT EXISTS idx_tasks_status_priority_next ON tasks (status, priority, next_run_time);
CREATE INDEX IF NOT EXISTS idx_tasks_name ON tasks (name);
`

func (s *Store) Setup(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

const selectCols = `id, name, type, status, priority, payload, cron_expr, cron_tz,
	next_run_time, last_active_time, timeout, retry_count, max_retries,
	retry_interval, created_at, result, error`

func (s *Store) Insert(ctx context.Context, t *storage.Task) (int64, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO tasks (name, type, status, priority, payload, cron_expr, cron_tz,
		 next_run_time, last_active_time, timeout, retry_count, max_retries, retry_interval,
		 created_at, result, error)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		 RETURNING id`,
		t.Name, t.Type, storage.StatusPending, t.Priority, t.Payload,
		nullStr(t.CronExpr), nullStr(t.CronTZ), t.NextRunTime, 0, t.Timeout,
		0, t.MaxRetries, t.RetryInterval, t.CreatedAt, nil, nil,
	)
	if err := row.Scan(&t.ID); err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	t.Status = storage.StatusPending
	return t.ID, nil
}

func (s *Store) ClaimReady(ctx context.Context, now int64, limit int) ([]storage.Task, error) {
	if limit <= 0 {
		return nil, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("claim ready: begin: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM tasks WHERE status = $1 AND next_run_time <= $2
		 ORDER BY next_run_time ASC, priority DESC, id ASC
		 LIMIT $3 FOR UPDATE SKIP LOCKED`,
		storage.StatusPending, now, limit)
	if err != nil {
		return nil, fmt.Errorf("claim ready: select: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if len(ids) == 0 {
		return nil, tx.Commit()
	}

	inPH, inArgs, _ := inClause(ids, 3)
	updateArgs := append([]interface{}{storage.StatusRunning, now}, inArgs...)
	_, err = tx.ExecContext(ctx,
		`UPDATE tasks SET status = $1, last_active_time = $2, retry_count = retry_count + 1
		 WHERE id IN (`+inPH+`)`, updateArgs...)
	if err != nil {
		return nil, fmt.Errorf("claim ready: update: %w", err)
	}

	selInPH, selArgs, _ := inClause(ids, 1)
	selectRows, err := tx.QueryContext(ctx,
		`SELECT `+selectCols+` FROM tasks WHERE id IN (`+selInPH+`)
		 ORDER BY next_run_time ASC, priority DESC, id ASC`, selArgs...)
	if err != nil {
		return nil, fmt.Errorf("claim ready: reselect: %w", err)
	}
	defer selectRows.Close()

	var claimed []storage.Task
	for selectRows.Next() {
		t, err := scanTask(selectRows)
		if err != nil {
			return nil, err
		}
		claimed = append(claimed, *t)
	}
	if err := selectRows.Err(); err != nil {
		return nil, err
	}
	return claimed, tx.Commit()
}

func (s *Store) Complete(ctx context.Context, id int64, result []byte) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = $1, result = $2, error = NULL WHERE id = $3`,
		storage.StatusCompleted, result, id)
	return err
}

func (s *Store) CompleteCron(ctx context.Context, id int64, nextRunTime int64, result []byte) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = $1, result = $2, error = NULL, retry_count = 0, next_run_time = $3
		 WHERE id = $4`,
		storage.StatusPending, result, nextRunTime, id)
	return err
}

func (s *Store) Fail(ctx context.Context, id int64, errMsg string, nextStatus storage.Status, nextRunTime int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = $1, error = $2, next_run_time = $3 WHERE id = $4`,
		nextStatus, errMsg, nextRunTime, id)
	return err
}

func (s *Store) FailCron(ctx context.Context, id int64, nextRunTime int64, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = $1, error = $2, retry_count = 0, next_run_time = $3 WHERE id = $4`,
		storage.StatusPending, errMsg, nextRunTime, id)
	return err
}

func (s *Store) ResetAbandoned(ctx context.Context, now int64) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = $1, next_run_time = $2 WHERE status = $3`,
		storage.StatusPending, now, storage.StatusRunning)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *Store) GetByID(ctx context.Context, id int64) (*storage.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectCols+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

func (s *Store) GetByName(ctx context.Context, name string) ([]storage.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectCols+` FROM tasks WHERE name = $1 ORDER BY id`, name)
	if err != nil {
		return nil, err
	}
	return scanTasks(rows)
}

func (s *Store) GetByStatus(ctx context.Context, status storage.Status) ([]storage.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectCols+` FROM tasks WHERE status = $1 ORDER BY id`, status)
	if err != nil {
		return nil, err
	}
	return scanTasks(rows)
}

func (s *Store) Pause(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE tasks SET status = $1 WHERE id = $2 AND status = $3`,
		storage.StatusPaused, id, storage.StatusPending)
	return err
}

func (s *Store) Resume(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE tasks SET status = $1 WHERE id = $2 AND status = $3`,
		storage.StatusPending, id, storage.StatusPaused)
	return err
}

func (s *Store) CountByStatus(ctx context.Context) (map[storage.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[storage.Status]int)
	for rows.Next() {
		var st storage.Status
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		counts[st] = n
	}
	return counts, rows.Err()
}

func (s *Store) ClearTasks(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `TRUNCATE tasks`)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*storage.Task, error) {
	var t storage.Task
	var cronExpr, cronTZ, errMsg sql.NullString
	var payload, result []byte
	if err := row.Scan(
		&t.ID, &t.Name, &t.Type, &t.Status, &t.Priority, &payload, &cronExpr, &cronTZ,
		&t.NextRunTime, &t.LastActiveTime, &t.Timeout, &t.RetryCount, &t.MaxRetries,
		&t.RetryInterval, &t.CreatedAt, &result, &errMsg,
	); err != nil {
		return nil, err
	}
	t.Payload = payload
	t.Result = result
	t.CronExpr = cronExpr.String
	t.CronTZ = cronTZ.String
	t.Error = errMsg.String
	return &t, nil
}

func scanTasks(rows *sql.Rows) ([]storage.Task, error) {
	defer rows.Close()
	var out []storage.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// inClause builds a "$startN,$startN+1,..." placeholder list for an IN
// clause starting at placeholder index start, returning the list, the
// matching args, and the next free placeholder index.
func inClause(ids []int64, start int) (string, []interface{}, int) {
	args := make([]interface{}, len(ids))
	ph := make([]string, len(ids))
	for i, id := range ids {
		args[i] = id
		ph[i] = "$" + strconv.Itoa(start+i)
	}
	return strings.Join(ph, ","), args, start + len(ids)
}
