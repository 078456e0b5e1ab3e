package database

import (
	"fmt"
	"time"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02",
}

// sqlTime scans DATETIME values whether the driver hands back time.Time
// (MySQL with parseTime) or text (SQLite).
type sqlTime struct {
	Time  time.Time
	Valid bool
}

func (t *sqlTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = sqlTime{}
		return nil
	case time.Time:
		*t = sqlTime{Time: v.UTC(), Valid: true}
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	}
	return fmt.Errorf("cannot scan %T into timestamp", src)
}

func (t *sqlTime) parse(s string) error {
	if s == "" {
		*t = sqlTime{}
		return nil
	}
	for _, layout := range timeLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			*t = sqlTime{Time: v.UTC(), Valid: true}
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}
