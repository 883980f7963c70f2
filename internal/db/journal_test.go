package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jandubois/scale-health/internal/probe"
)

func openJournal(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	d, err := Connect(ctx, filepath.Join(t.TempDir(), "state", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	require.NoError(t, d.Migrate(ctx))
	return d
}

func TestMigrateIsIdempotent(t *testing.T) {
	d := openJournal(t)
	ctx := context.Background()
	require.NoError(t, d.Migrate(ctx))

	require.NoError(t, d.Rollback(ctx))
	_, err := d.RecentResults(ctx, RecentFilter{})
	assert.Error(t, err, "table should be gone after rollback")

	require.NoError(t, d.Migrate(ctx))
	_, err = d.RecentResults(ctx, RecentFilter{})
	assert.NoError(t, err)
}

func TestInsertAndRecentResults(t *testing.T) {
	d := openJournal(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)

	results := []struct {
		node, component string
		result          probe.Result
	}{
		{"nodeA", "NODE", probe.Result{Status: probe.StatusOK, Service: "Spectrum Scale Node Health", Message: "OK: Node is in state 'HEALTHY'"}},
		{"nodeA", "GPFS", probe.Result{Status: probe.StatusCritical, Service: "Spectrum Scale Gpfs Health", Message: "CRITICAL: Gpfs is in state 'FAILED'"}},
		{"nodeB", "NODE", probe.Result{
			Status:  probe.StatusWarning,
			Service: "Spectrum Scale Node Health",
			Message: "WARNING: Node is in state 'DEGRADED'",
			Metrics: []probe.Metric{{Name: "components", Value: 4}, {Name: "unhealthy", Value: 1}},
		}},
	}
	for i, r := range results {
		e := NewEntry(r.node, r.component, &r.result, base.Add(time.Duration(i)*time.Minute), 120*time.Millisecond)
		require.NoError(t, d.InsertResult(ctx, e))
	}

	all, err := d.RecentResults(ctx, RecentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "nodeB", all[0].Node)
	assert.Equal(t, probe.StatusWarning, all[0].Status)
	assert.Equal(t, []probe.Metric{{Name: "components", Value: 4}, {Name: "unhealthy", Value: 1}}, all[0].Metrics)
	assert.Equal(t, base.Add(2*time.Minute), all[0].ExecutedAt)
	assert.Equal(t, 120*time.Millisecond, all[0].Duration)
	assert.NotEmpty(t, all[0].ID)
	assert.Nil(t, all[2].Metrics)

	nodeA, err := d.RecentResults(ctx, RecentFilter{Node: "nodeA"})
	require.NoError(t, err)
	require.Len(t, nodeA, 2)
	assert.Equal(t, "GPFS", nodeA[0].Component)

	scoped, err := d.RecentResults(ctx, RecentFilter{Node: "nodeA", Component: "NODE"})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "OK: Node is in state 'HEALTHY'", scoped[0].Message)

	limited, err := d.RecentResults(ctx, RecentFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestNewEntryUniqueIDs(t *testing.T) {
	r := &probe.Result{Status: probe.StatusOK}
	a := NewEntry("n", "NODE", r, time.Now(), 0)
	b := NewEntry("n", "NODE", r, time.Now(), 0)
	assert.NotEqual(t, a.ID, b.ID)
}
