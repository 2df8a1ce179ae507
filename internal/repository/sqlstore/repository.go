package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"task-assistant/internal/errors"
	"task-assistant/internal/repository/sqlstore/migrations"
)

// TaskStore is the set of task operations available both on the
// repository and inside a transaction.
type TaskStore interface {
	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, id int64) (*Task, error)
	// FindTaskByTitle returns the lowest-id task whose title contains hint,
	// compared case-insensitively.
	FindTaskByTitle(ctx context.Context, hint string) (*Task, error)
	ListTasks(ctx context.Context, opts ListOptions) ([]*Task, error)
	UpdateTask(ctx context.Context, task *Task) error
	DeleteTask(ctx context.Context, id int64) error
}

// Repository is a TaskStore with connection and transaction management.
type Repository interface {
	TaskStore
	// WithinTx runs fn inside one transaction. The transaction commits when
	// fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(TaskStore) error) error
	Ping(ctx context.Context) error
	Dialect() Dialect
	Close() error
}

// Options configures Open.
type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// Store implements Repository over database/sql.
type Store struct {
	*queries
	db *sql.DB
}

type queries struct {
	q       Querier
	dialect Dialect
	now     func() time.Time
}

// New opens a SQLite repository at dbPath and applies migrations.
func New(dbPath string) (*Store, error) {
	return Open(context.Background(), Options{Driver: SQLite.Name, DSN: dbPath})
}

// Open connects to the configured engine and applies pending migrations.
func Open(ctx context.Context, opts Options) (*Store, error) {
	dialect, err := DialectFor(opts.Driver)
	if err != nil {
		return nil, errors.NewInvalidInputError("database driver", opts.Driver, err.Error())
	}

	dsn := opts.DSN
	if dialect == SQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(dialect.driverName, dsn)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}

	if dialect == SQLite {
		// one writer; also keeps a :memory: database alive on a single connection
		db.SetMaxOpenConns(1)
	} else if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.ConnMaxLifetime > 0 && dialect != SQLite {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := migrations.RunMigrations(ctx, db, dialect.Name); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	return &Store{
		queries: &queries{q: db, dialect: dialect, now: time.Now},
		db:      db,
	}, nil
}

func sqliteDSN(path string) string {
	if path == "" || path == ":memory:" || strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return HandleDatabaseError("ping", err)
	}
	return nil
}

func (s *Store) Dialect() Dialect {
	return s.dialect
}

// WithinTx runs fn against a transaction-scoped store.
func (s *Store) WithinTx(ctx context.Context, fn func(TaskStore) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return HandleDatabaseError("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&queries{q: tx, dialect: s.dialect, now: s.now}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return HandleDatabaseError("commit transaction", err)
	}
	return nil
}

func (r *queries) CreateTask(ctx context.Context, task *Task) error {
	now := r.now().UTC()
	query := r.dialect.Rebind(`
	INSERT INTO tasks (title, description, status, priority, due_date, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	RETURNING id`)

	var id int64
	err := r.q.QueryRowContext(ctx, query,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		r.dialect.timePtrArg(task.DueDate),
		r.dialect.TimeArg(now),
		r.dialect.TimeArg(now),
	).Scan(&id)
	if err != nil {
		return HandleDatabaseError("create task", err)
	}

	task.ID = id
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

func (r *queries) GetTask(ctx context.Context, id int64) (*Task, error) {
	query := r.dialect.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)
	return QuerySingle(ctx, r.q, query, ScanTask, "Task", strconv.FormatInt(id, 10), id)
}

// FindTaskByTitle streams tasks in id order and stops at the first match.
// Matching happens in Go so case folding is Unicode-aware on every engine.
func (r *queries) FindTaskByTitle(ctx context.Context, hint string) (*Task, error) {
	needle := strings.ToLower(hint)
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY id ASC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, HandleDatabaseError("query tasks", err)
	}
	defer rows.Close()

	for rows.Next() {
		task, err := ScanTask(rows)
		if err != nil {
			return nil, HandleDatabaseError("scan Task", err)
		}
		if strings.Contains(strings.ToLower(task.Title), needle) {
			return task, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, HandleDatabaseError("query tasks", err)
	}
	return nil, errors.NewNotFoundError("Task", hint)
}

func (r *queries) ListTasks(ctx context.Context, opts ListOptions) ([]*Task, error) {
	var conditions []string
	var args []any

	if opts.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *opts.Status)
	}
	if opts.Priority != nil {
		conditions = append(conditions, "priority = ?")
		args = append(args, *opts.Priority)
	}
	if opts.DueFrom != nil || opts.DueBefore != nil {
		conditions = append(conditions, "due_date IS NOT NULL")
	}
	if opts.DueFrom != nil {
		conditions = append(conditions, "due_date >= ?")
		args = append(args, r.dialect.TimeArg(*opts.DueFrom))
	}
	if opts.DueBefore != nil {
		conditions = append(conditions, "due_date < ?")
		args = append(args, r.dialect.TimeArg(*opts.DueBefore))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY " + orderClause(opts.Order)

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	} else if opts.Offset > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET ?", maxListLimit)
		args = append(args, opts.Offset)
	}

	return QueryMultiple(ctx, r.q, r.dialect.Rebind(query), ScanTasks, "tasks", args...)
}

const maxListLimit = 1 << 31

func orderClause(order Order) string {
	switch order {
	case OrderPriorityDue:
		return `CASE priority
			WHEN 'urgent' THEN 4
			WHEN 'high' THEN 3
			WHEN 'medium' THEN 2
			WHEN 'low' THEN 1
			ELSE 0 END DESC,
		due_date IS NULL,
		due_date ASC,
		id ASC`
	case OrderInsertion:
		return "id ASC"
	default:
		return "created_at DESC, id DESC"
	}
}

func (r *queries) UpdateTask(ctx context.Context, task *Task) error {
	now := r.now().UTC()
	if now.Before(task.CreatedAt) {
		now = task.CreatedAt
	}
	query := r.dialect.Rebind(`
	UPDATE tasks
	SET title = ?, description = ?, status = ?, priority = ?, due_date = ?, updated_at = ?
	WHERE id = ?`)

	err := ExecuteWithRowsAffected(ctx, r.q, query, "Task", strconv.FormatInt(task.ID, 10),
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		r.dialect.timePtrArg(task.DueDate),
		r.dialect.TimeArg(now),
		task.ID,
	)
	if err != nil {
		return err
	}
	task.UpdatedAt = now
	return nil
}

func (r *queries) DeleteTask(ctx context.Context, id int64) error {
	query := r.dialect.Rebind(`DELETE FROM tasks WHERE id = ?`)
	return ExecuteWithRowsAffected(ctx, r.q, query, "Task", strconv.FormatInt(id, 10), id)
}
