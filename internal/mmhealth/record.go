// Package mmhealth reads the machine-readable (-Y) output of the Spectrum Scale
// mmhealth command.
package mmhealth

import (
	"net/url"
	"time"
)

// Well-known column names of mmhealth State rows.
const (
	FieldComponent        = "component"
	FieldEntityName       = "entityname"
	FieldEntityType       = "entitytype"
	FieldStatus           = "status"
	FieldLastStatusChange = "laststatuschange"
)

// HealthState is a status label reported by mmhealth.
type HealthState string

const (
	StateHealthy  HealthState = "HEALTHY"
	StateTips     HealthState = "TIPS"
	StateDegraded HealthState = "DEGRADED"
	StateFailed   HealthState = "FAILED"
)

// StatusRecord is one parsed State row. It is immutable once built.
type StatusRecord struct {
	columns []string
	values  map[string]string
}

func newRecord(columns, tokens []string) StatusRecord {
	r := StatusRecord{values: make(map[string]string, len(columns))}
	for i, name := range columns {
		if i >= len(tokens) {
			break
		}
		if _, dup := r.values[name]; !dup {
			r.columns = append(r.columns, name)
		}
		r.values[name] = tokens[i]
	}
	return r
}

// Get returns the value of the named field and whether the row carries it.
func (r StatusRecord) Get(name string) (string, bool) {
	v, ok := r.values[name]
	return v, ok
}

func (r StatusRecord) Component() string  { return r.values[FieldComponent] }
func (r StatusRecord) EntityName() string { return r.values[FieldEntityName] }
func (r StatusRecord) EntityType() string { return r.values[FieldEntityType] }

// Status returns the health label; ok is false when the column is missing or empty.
func (r StatusRecord) Status() (HealthState, bool) {
	v, ok := r.values[FieldStatus]
	if !ok || v == "" {
		return "", false
	}
	return HealthState(v), true
}

// Columns returns the field names in column order.
func (r StatusRecord) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Extra returns the fields that have no typed accessor.
func (r StatusRecord) Extra() map[string]string {
	extra := make(map[string]string)
	for name, v := range r.values {
		switch name {
		case FieldComponent, FieldEntityName, FieldEntityType, FieldStatus:
			continue
		}
		extra[name] = v
	}
	return extra
}

var lastChangeLayouts = []string{
	"2006-01-02 15:04:05.999999 MST",
	"2006-01-02 15:04:05.999999 -0700",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
}

// LastStatusChange parses the laststatuschange column. mmhealth percent-encodes
// the colons inside timestamps, so the value is unescaped before parsing.
func (r StatusRecord) LastStatusChange() (time.Time, bool) {
	raw, ok := r.values[FieldLastStatusChange]
	if !ok || raw == "" {
		return time.Time{}, false
	}
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	for _, layout := range lastChangeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
