package sqlstore

import (
	"fmt"
	"time"
)

// dbTimeLayout is fixed width and always UTC so that TEXT columns sort
// and compare in time order.
const dbTimeLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTimeForDB renders t in the storage layout.
func FormatTimeForDB(t time.Time) string {
	return t.UTC().Format(dbTimeLayout)
}

// ParseTimeFromDB accepts the storage layout and falls back to RFC 3339.
func ParseTimeFromDB(s string) (time.Time, error) {
	if t, err := time.Parse(dbTimeLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// nullTime scans TEXT timestamps (sqlite) and native timestamps (postgres).
type nullTime struct {
	Time  time.Time
	Valid bool
}

func (n *nullTime) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		n.Time, n.Valid = time.Time{}, false
		return nil
	case time.Time:
		n.Time, n.Valid = v.UTC(), true
		return nil
	case string:
		return n.parse(v)
	case []byte:
		return n.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into timestamp", value)
	}
}

func (n *nullTime) parse(s string) error {
	t, err := ParseTimeFromDB(s)
	if err != nil {
		return err
	}
	n.Time, n.Valid = t, true
	return nil
}

func (n nullTime) Ptr() *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}
