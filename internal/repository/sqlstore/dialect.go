package sqlstore

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect captures the differences between the supported SQL engines.
type Dialect struct {
	// Name is also the migrations subdirectory.
	Name       string
	driverName string
	numbered   bool
	nativeTime bool
}

var (
	SQLite   = Dialect{Name: "sqlite", driverName: "sqlite"}
	Postgres = Dialect{Name: "postgres", driverName: "postgres", numbered: true, nativeTime: true}
)

// DialectFor resolves a configured driver name.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pq":
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Rebind rewrites ? placeholders into the dialect's bind syntax.
func (d Dialect) Rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// TimeArg converts t into the value bound for a timestamp column.
func (d Dialect) TimeArg(t time.Time) any {
	if d.nativeTime {
		return t.UTC()
	}
	return FormatTimeForDB(t)
}

func (d Dialect) timePtrArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return d.TimeArg(*t)
}
