package sqlstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor(t *testing.T) {
	for _, name := range []string{"", "sqlite", "SQLite3"} {
		d, err := DialectFor(name)
		require.NoError(t, err)
		assert.Equal(t, SQLite, d)
	}
	for _, name := range []string{"postgres", "postgresql", "pq"} {
		d, err := DialectFor(name)
		require.NoError(t, err)
		assert.Equal(t, Postgres, d)
	}
	_, err := DialectFor("mysql")
	assert.Error(t, err)
}

func TestDialect_Rebind(t *testing.T) {
	query := "UPDATE tasks SET title = ?, status = ? WHERE id = ?"

	assert.Equal(t, query, SQLite.Rebind(query))
	assert.Equal(t, "UPDATE tasks SET title = $1, status = $2 WHERE id = $3", Postgres.Rebind(query))
}

func TestDialect_TimeArg(t *testing.T) {
	ts := time.Date(2025, 1, 1, 12, 0, 0, 0, time.FixedZone("Y", -3600))

	assert.Equal(t, "2025-01-01T13:00:00.000000000Z", SQLite.TimeArg(ts))
	assert.Equal(t, ts.UTC(), Postgres.TimeArg(ts))
	assert.Nil(t, SQLite.timePtrArg(nil))
}
