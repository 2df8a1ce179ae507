package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	apperrors "task-assistant/internal/errors"
)

type mockResult struct {
	rowsAffected int64
	rowsErr      error
}

func (m mockResult) LastInsertId() (int64, error) { return 0, nil }
func (m mockResult) RowsAffected() (int64, error) { return m.rowsAffected, m.rowsErr }

func TestHandleDatabaseError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType apperrors.ErrorType
	}{
		{"generic", errors.New("database is locked"), apperrors.ErrorTypeDatabase},
		{"sqlite check", errors.New("CHECK constraint failed: status IN (...)"), apperrors.ErrorTypeInvalidInput},
		{"postgres check", &pq.Error{Code: "23514", Message: "violates check constraint"}, apperrors.ErrorTypeInvalidInput},
		{"postgres connection", &pq.Error{Code: "08006", Message: "connection failure"}, apperrors.ErrorTypeDatabase},
		{"deadline", context.DeadlineExceeded, apperrors.ErrorTypeTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := HandleDatabaseError("create task", tt.err)
			assert.True(t, apperrors.IsErrorType(err, tt.wantType), "got %v", err)
		})
	}

	assert.NoError(t, HandleDatabaseError("noop", nil))
}

func TestHandleNoRowsError(t *testing.T) {
	err := HandleNoRowsError(sql.ErrNoRows, "Task", "3")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	other := errors.New("other")
	assert.Same(t, other, HandleNoRowsError(other, "Task", "3"))
}

func TestValidateRowsAffected(t *testing.T) {
	assert.NoError(t, ValidateRowsAffected(mockResult{rowsAffected: 1}, "Task", "1"))

	err := ValidateRowsAffected(mockResult{}, "Task", "1")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	err = ValidateRowsAffected(mockResult{rowsErr: errors.New("unsupported")}, "Task", "1")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeDatabase))
}
