package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jandubois/scale-health/internal/probe"
)

// SQLite datetime format (from datetime('now'))
const SQLiteTimeFormat = "2006-01-02 15:04:05"

// JSONMetrics handles scanning and storing probe metrics as JSON text.
type JSONMetrics []probe.Metric

func (j *JSONMetrics) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONMetrics", value)
	}
	if len(data) == 0 {
		*j = nil
		return nil
	}
	return json.Unmarshal(data, (*[]probe.Metric)(j))
}

func (j JSONMetrics) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	data, err := json.Marshal([]probe.Metric(j))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Timestamp handles SQLite TEXT datetime columns, stored in UTC.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) Scan(value any) error {
	var str string
	switch v := value.(type) {
	case []byte:
		str = string(v)
	case string:
		str = v
	case time.Time:
		t.Time = v.UTC()
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", value)
	}
	for _, format := range []string{SQLiteTimeFormat, time.RFC3339, time.RFC3339Nano} {
		if parsed, err := time.Parse(format, str); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("cannot parse time %q", str)
}

func (t Timestamp) Value() (driver.Value, error) {
	return t.UTC().Format(SQLiteTimeFormat), nil
}
