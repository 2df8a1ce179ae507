package sqlstore

import (
	"database/sql"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...any) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

const taskColumns = `id, title, description, status, priority, due_date, created_at, updated_at`

// ScanTask scans a single task row selected with taskColumns.
func ScanTask(scanner Scanner) (*Task, error) {
	task := &Task{}
	var (
		description sql.NullString
		dueDate     nullTime
		createdAt   nullTime
		updatedAt   nullTime
	)

	err := scanner.Scan(
		&task.ID,
		&task.Title,
		&description,
		&task.Status,
		&task.Priority,
		&dueDate,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		task.Description = &description.String
	}
	task.DueDate = dueDate.Ptr()
	task.CreatedAt = createdAt.Time
	task.UpdatedAt = updatedAt.Time
	return task, nil
}

// ScanTasks scans every remaining row.
func ScanTasks(rows Rows) ([]*Task, error) {
	tasks := []*Task{}
	for rows.Next() {
		task, err := ScanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}
