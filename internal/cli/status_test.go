package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rileyhilliard/procdash/internal/backend"
	"github.com/rileyhilliard/procdash/internal/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCommand_Table(t *testing.T) {
	_, url := useDemoBackend(t, "")

	var stdout, stderr bytes.Buffer
	err := statusCommand(context.Background(), &stdout, &stderr, StatusOptions{Samples: 1})
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "procdash")
	assert.Contains(t, out, "version 1.4.2")
	assert.Contains(t, out, "net demo")
	assert.Contains(t, out, url)
	assert.Contains(t, out, "NET KB/s")
	for _, name := range []string{"api-gateway", "render-node", "ingest", "gpu-worker", "archiver"} {
		assert.Contains(t, out, name)
	}
	assert.NotContains(t, out, "TREND", "a single sample has no trend")
	assert.Empty(t, stderr.String(), "no spinner for a single sample")
}

func TestStatusCommand_SamplesShowTrend(t *testing.T) {
	useDemoBackend(t, "")

	var stdout, stderr bytes.Buffer
	err := statusCommand(context.Background(), &stdout, &stderr, StatusOptions{Samples: 3, Interval: "10ms"})
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "TREND")
	assert.Contains(t, stderr.String(), "3/3")
}

func TestStatusCommand_JSON(t *testing.T) {
	_, url := useDemoBackend(t, "")

	var stdout, stderr bytes.Buffer
	err := statusCommand(context.Background(), &stdout, &stderr, StatusOptions{Samples: 1, JSON: true})
	require.NoError(t, err)

	var env struct {
		Success bool         `json:"success"`
		Data    StatusOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, url, env.Data.Backend)
	assert.Equal(t, "1.4.2", env.Data.Version)
	assert.Equal(t, "demo", env.Data.NetMode)
	assert.Equal(t, "KB", env.Data.NetUnit)
	require.Len(t, env.Data.Processes, 5)

	byName := make(map[string]ProcessStatus)
	for _, p := range env.Data.Processes {
		byName[p.Name] = p
	}
	assert.Equal(t, string(backend.StatusDisabled), byName["archiver"].Status)
	assert.Equal(t, monitor.CellPlaceholder, byName["archiver"].Pid)
	assert.NotEqual(t, monitor.CellPlaceholder, byName["api-gateway"].Pid)
}

func TestStatusCommand_UnreachableJSON(t *testing.T) {
	useDemoBackend(t, "")

	var stdout, stderr bytes.Buffer
	opts := StatusOptions{
		Samples: 1,
		JSON:    true,
		Backend: BackendFlags{URL: "http://127.0.0.1:1", Timeout: "200ms"},
	}
	err := statusCommand(context.Background(), &stdout, &stderr, opts)
	require.Error(t, err)

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &env))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeBackendUnreachable, env.Error.Code)
}

func TestStatusCommand_BadInterval(t *testing.T) {
	useDemoBackend(t, "")

	var stdout, stderr bytes.Buffer
	err := statusCommand(context.Background(), &stdout, &stderr, StatusOptions{Samples: 2, Interval: "-1s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--interval must be positive")
}
