package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/procdash/internal/backend"
	backendtest "github.com/rileyhilliard/procdash/internal/backend/testing"
	"github.com/rileyhilliard/procdash/internal/logger"
)

func TestNewPoller_Defaults(t *testing.T) {
	fake := backendtest.NewFakeBackend()

	p := NewPoller(fake, 0, 0, nil)
	assert.Equal(t, DefaultPollInterval, p.Interval())
	assert.Equal(t, DefaultPollTimeout, p.timeout)

	p = NewPoller(fake, 10*time.Millisecond, time.Second, nil)
	assert.Equal(t, MinPollInterval, p.Interval(), "cadence is floored")
}

func TestPoller_OneInFlight(t *testing.T) {
	fake := backendtest.NewFakeBackend(&backend.Snapshot{Version: "1"})
	buf := logger.NewBufferLogger()
	p := NewPoller(fake, time.Second, time.Second, buf)

	cmd := p.Poll()
	require.NotNil(t, cmd)
	assert.True(t, p.InFlight())

	assert.Nil(t, p.Poll(), "tick is skipped while a poll is outstanding")
	assert.Equal(t, 1, p.Skipped())
	assert.True(t, buf.HasLevel("debug"))

	msg, ok := cmd().(pollResultMsg)
	require.True(t, ok)
	assert.Equal(t, uint64(1), msg.seq)
	require.NoError(t, msg.err)
	assert.Equal(t, "1", msg.snap.Version)

	assert.True(t, p.Accept(msg))
	assert.False(t, p.InFlight())
	assert.NotNil(t, p.Poll())
	assert.Equal(t, 1, fake.CallCount("GetSnapshot"))
}

func TestPoller_DropsStaleResults(t *testing.T) {
	p := NewPoller(backendtest.NewFakeBackend(), time.Second, time.Second, nil)
	p.seq = 3
	p.inFlight = true

	assert.True(t, p.Accept(pollResultMsg{seq: 3}))
	assert.False(t, p.InFlight())
	assert.False(t, p.Accept(pollResultMsg{seq: 2}), "older result is dropped")
	assert.False(t, p.Accept(pollResultMsg{seq: 3}), "duplicate result is dropped")
}

func TestPoller_OlderResultDoesNotClearInFlight(t *testing.T) {
	p := NewPoller(backendtest.NewFakeBackend(), time.Second, time.Second, nil)
	p.seq = 5
	p.applied = 4
	p.inFlight = true

	assert.False(t, p.Accept(pollResultMsg{seq: 4}))
	assert.True(t, p.InFlight())
}

func TestPoller_FailureIsAppliedAndLogged(t *testing.T) {
	fake := backendtest.NewFakeBackend()
	fake.SnapshotErr = assert.AnError
	buf := logger.NewBufferLogger()
	p := NewPoller(fake, time.Second, time.Second, buf)

	msg := p.Poll()().(pollResultMsg)
	assert.ErrorIs(t, msg.err, assert.AnError)
	assert.True(t, p.Accept(msg))
	assert.True(t, buf.HasLevel("warn"))
}

func TestPoller_Timeout(t *testing.T) {
	fake := backendtest.NewFakeBackend()
	fake.Block = make(chan struct{})
	defer close(fake.Block)

	p := NewPoller(fake, time.Second, 20*time.Millisecond, nil)
	msg := p.Poll()().(pollResultMsg)
	assert.ErrorIs(t, msg.err, context.DeadlineExceeded)
}

func TestPoller_Tick(t *testing.T) {
	p := NewPoller(backendtest.NewFakeBackend(), MinPollInterval, time.Second, nil)
	msg := p.Tick()()
	_, ok := msg.(pollTickMsg)
	assert.True(t, ok)
}
