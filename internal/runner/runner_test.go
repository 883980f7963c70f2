package runner

import (
	"bytes"
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputEmptyCommand(t *testing.T) {
	_, err := Exec{}.Output(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyCommand)
}

func TestOutputSuccessfulCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping on Windows")
	}

	out, err := Exec{}.Output(context.Background(), "echo  hello   world")
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", out)
}

func TestOutputNoShellInterpolation(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping on Windows")
	}

	out, err := Exec{}.Output(context.Background(), "echo $HOME;true")
	require.NoError(t, err)
	assert.Equal(t, "$HOME;true\n", out)
}

func TestOutputNonZeroExitKeepsStdout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping on Windows")
	}

	var stderr bytes.Buffer
	out, err := Exec{Stderr: &stderr}.Output(context.Background(), "sh -c echo_partial")
	require.NoError(t, err, "non-zero exit should not be an error")
	assert.Empty(t, out)
	assert.NotZero(t, stderr.Len(), "expected child stderr to be forwarded")
}

func TestOutputMissingBinary(t *testing.T) {
	_, err := Exec{}.Output(context.Background(), "/nonexistent/bin/mmhealth node show -Y")
	assert.Error(t, err)
}

func TestOutputTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping on Windows")
	}

	_, err := Exec{Timeout: 50 * time.Millisecond}.Output(context.Background(), "sleep 5")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
