package probe

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusExitCode(t *testing.T) {
	tests := []struct {
		status   Status
		expected int
		name     string
	}{
		{StatusOK, 0, "OK"},
		{StatusWarning, 1, "WARNING"},
		{StatusCritical, 2, "CRITICAL"},
		{StatusUnknown, 3, "UNKNOWN"},
		{Status(42), 3, "UNKNOWN"},
		{Status(-1), 3, "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.status.ExitCode(), "Status(%d).ExitCode()", tt.status)
		assert.Equal(t, tt.name, tt.status.String(), "Status(%d).String()", tt.status)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		expected string
	}{
		{
			name: "no metrics",
			result: Result{
				Status:  StatusOK,
				Service: "Spectrum Scale Node Health",
				Message: "OK: Node is in state 'HEALTHY'",
			},
			expected: `0 "Spectrum Scale Node Health" - OK: Node is in state 'HEALTHY'`,
		},
		{
			name: "with metrics",
			result: Result{
				Status:  StatusWarning,
				Service: "Spectrum Scale Node Health",
				Message: "WARNING: Node is in state 'DEGRADED'",
				Metrics: []Metric{{Name: "components", Value: 6}, {Name: "unhealthy", Value: 1}},
			},
			expected: `1 "Spectrum Scale Node Health" components=6|unhealthy=1 WARNING: Node is in state 'DEGRADED'`,
		},
		{
			name: "fractional metric",
			result: Result{
				Status:  StatusOK,
				Service: "svc",
				Message: "fine",
				Metrics: []Metric{{Name: "ratio", Value: 0.25}},
			},
			expected: `0 "svc" ratio=0.25 fine`,
		},
		{
			name: "with long output",
			result: Result{
				Status:     StatusCritical,
				Service:    "Spectrum Scale Gpfs Health",
				Message:    "CRITICAL: Gpfs is in state 'FAILED'",
				LongOutput: []string{"GPFS: FAILED", "NETWORK: HEALTHY"},
			},
			expected: `2 "Spectrum Scale Gpfs Health" - CRITICAL: Gpfs is in state 'FAILED' \nGPFS: FAILED\nNETWORK: HEALTHY`,
		},
		{
			name: "embedded newlines and quotes",
			result: Result{
				Status:  StatusUnknown,
				Service: `odd "name"`,
				Message: "first\nsecond",
			},
			expected: `3 "odd 'name'" - first\nsecond`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(&tt.result)
			assert.Equal(t, tt.expected, got)
			assert.NotContains(t, got, "\n", "formatted line contains a raw newline")
		})
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	r := &Result{Status: StatusUnknown, Service: "svc", Message: "UNKNOWN: nothing"}
	require.NoError(t, Write(&buf, r))
	assert.Equal(t, "3 \"svc\" - UNKNOWN: nothing\n", buf.String())
}
