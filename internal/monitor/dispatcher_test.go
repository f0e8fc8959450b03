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

func TestDispatcher_OneCallPerAction(t *testing.T) {
	tests := []struct {
		action backend.Action
		name   string
		method string
	}{
		{backend.ActionStart, "svc1", "Start"},
		{backend.ActionStop, "svc1", "Stop"},
		{backend.ActionRestart, "svc1", "Restart"},
		{backend.ActionOpenFolder, "svc1", "OpenFolder"},
		{backend.ActionRestartAll, "", "RestartAll"},
		{backend.ActionKillCMD, "", "KillCMD"},
		{backend.ActionKillNode, "", "KillNode"},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			fake := backendtest.NewFakeBackend()
			d := NewDispatcher(fake, time.Second, nil)

			require.NoError(t, d.Dispatch(context.Background(), tt.action, tt.name))
			calls := fake.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, tt.method, calls[0].Method)
			assert.Equal(t, tt.name, calls[0].Name)
		})
	}
}

func TestDispatcher_FailureIsLoggedNotRetried(t *testing.T) {
	fake := backendtest.NewFakeBackend()
	fake.ActionErr = assert.AnError
	buf := logger.NewBufferLogger()
	d := NewDispatcher(fake, time.Second, buf)

	msg := d.Cmd(backend.ActionRestart, "svc1")().(actionResultMsg)
	require.Error(t, msg.err)
	assert.ErrorIs(t, msg.err, assert.AnError)
	assert.Equal(t, 1, fake.CallCount("Restart"))
	assert.True(t, buf.HasLevel("error"))

	n := noticeFor(msg, time.Now())
	assert.Equal(t, NoticeError, n.Level)
	assert.Contains(t, n.Text, "Couldn't restart svc1")
}

func TestDispatcher_MissingName(t *testing.T) {
	fake := backendtest.NewFakeBackend()
	d := NewDispatcher(fake, 0, nil)

	assert.Error(t, d.Dispatch(context.Background(), backend.ActionStart, ""))
	assert.Empty(t, fake.Calls())
	assert.Equal(t, DefaultActionTimeout, d.timeout)
}

func TestNoticeFor_Success(t *testing.T) {
	n := noticeFor(actionResultMsg{action: backend.ActionKillNode}, time.Now())
	assert.Equal(t, NoticeInfo, n.Level)
	assert.Equal(t, "kill-node sent", n.Text)

	n = noticeFor(actionResultMsg{action: backend.ActionStart, name: "api"}, time.Now())
	assert.Equal(t, "start api sent", n.Text)
}
