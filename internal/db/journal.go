package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jandubois/scale-health/internal/probe"
)

// Entry is one journaled probe outcome.
type Entry struct {
	ID         string
	Node       string
	Component  string
	Service    string
	Status     probe.Status
	Message    string
	Metrics    []probe.Metric
	Duration   time.Duration
	ExecutedAt time.Time
}

// NewEntry builds a journal entry for a finished probe run.
func NewEntry(node, component string, result *probe.Result, executedAt time.Time, duration time.Duration) Entry {
	return Entry{
		ID:         uuid.NewString(),
		Node:       node,
		Component:  component,
		Service:    result.Service,
		Status:     result.Status,
		Message:    result.Message,
		Metrics:    result.Metrics,
		Duration:   duration,
		ExecutedAt: executedAt,
	}
}

// InsertResult appends e to the journal.
func (d *DB) InsertResult(ctx context.Context, e Entry) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO probe_results (id, node, component, service, status, message, metrics, duration_ms, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Node, e.Component, e.Service, int(e.Status), e.Message,
		JSONMetrics(e.Metrics), e.Duration.Milliseconds(), Timestamp{e.ExecutedAt})
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// RecentFilter narrows RecentResults. Empty fields match everything.
type RecentFilter struct {
	Node      string
	Component string
	Limit     int
}

// RecentResults returns journal entries, newest first.
func (d *DB) RecentResults(ctx context.Context, f RecentFilter) ([]Entry, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, node, component, service, status, message, metrics, duration_ms, executed_at
		FROM probe_results
		WHERE (? = '' OR node = ?) AND (? = '' OR component = ?)
		ORDER BY executed_at DESC, rowid DESC
		LIMIT ?
	`, f.Node, f.Node, f.Component, f.Component, f.Limit)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			status     int
			metrics    JSONMetrics
			durationMs int64
			executedAt Timestamp
		)
		if err := rows.Scan(&e.ID, &e.Node, &e.Component, &e.Service, &status, &e.Message, &metrics, &durationMs, &executedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		e.Status = probe.Status(status)
		e.Metrics = metrics
		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.ExecutedAt = executedAt.Time
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return entries, nil
}
