package monitor

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/procdash/internal/backend"
	backendtest "github.com/rileyhilliard/procdash/internal/backend/testing"
	"github.com/rileyhilliard/procdash/internal/editor"
)

func newEditorModel(t *testing.T) (Model, *backendtest.FakeBackend, *editor.Editor) {
	t.Helper()
	fake := backendtest.NewFakeBackend()
	fake.Model = backend.ConfigModel{
		Settings:  backend.Settings{CheckTiming: "1s"},
		Processes: []backend.ProcessDef{{Name: "api", Type: "exe"}, {Name: "worker", Type: "cmd"}},
	}
	v, err := editor.NewVerifier("art3d", "")
	require.NoError(t, err)
	ed := editor.New(fake, v)

	m := NewModel(fake, Options{PollInterval: time.Second, Editor: ed})
	return m, fake, ed
}

// typeSecret types s into the prompt and submits it, running the fetch
// that follows a successful unlock.
func typeSecret(t *testing.T, m Model, s string) Model {
	t.Helper()
	m, _ = update(t, m, keyRunes(s))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.editorView.busy == "" {
		return m
	}
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	return m
}

func TestEditorView_WrongSecret(t *testing.T) {
	m, fake, ed := newEditorModel(t)

	m, _ = update(t, m, keyRunes("e"))
	require.Equal(t, ViewEditor, m.viewMode)
	require.Equal(t, editor.AuthPending, ed.State())
	assert.Contains(t, m.View(), "Secret:")

	m = typeSecret(t, m, "nope")
	assert.Equal(t, editor.AuthPending, ed.State())
	assert.Equal(t, "Invalid secret", m.editorView.errMsg)
	assert.Equal(t, 0, fake.CallCount("GetConfigModel"))
	assert.NotContains(t, m.View(), "nope")
}

func TestEditorView_UnlockAndSave(t *testing.T) {
	m, fake, ed := newEditorModel(t)

	m, _ = update(t, m, keyRunes("e"))
	m = typeSecret(t, m, "art3d")
	require.Equal(t, editor.Unlocked, ed.State())
	assert.Equal(t, 1, fake.CallCount("GetConfigModel"))
	assert.Contains(t, m.View(), "worker")

	m, cmd := update(t, m, keyRunes("w"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, 1, fake.CallCount("SaveConfigModel"))
	assert.Equal(t, "Saved", m.editorView.info)
}

func TestEditorView_InvalidSaveMakesNoCall(t *testing.T) {
	m, fake, _ := newEditorModel(t)
	m, _ = update(t, m, keyRunes("e"))
	m = typeSecret(t, m, "art3d")

	m, _ = update(t, m, keyRunes("a"))
	assert.Equal(t, 3, m.editorView.cursor)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m, cmd := update(t, m, keyRunes("w"))
	assert.Nil(t, cmd, "nothing to send")

	assert.Equal(t, "Process #3 has an empty name", m.editorView.errMsg)
	assert.Equal(t, 3, m.editorView.cursor, "cursor jumps to the offending entry")
	assert.Equal(t, 0, fake.CallCount("SaveConfigModel"))
}

func TestEditorView_RemoveAndClose(t *testing.T) {
	m, _, ed := newEditorModel(t)
	m, _ = update(t, m, keyRunes("e"))
	m = typeSecret(t, m, "art3d")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, keyRunes("d"))
	require.Len(t, ed.Working().Processes, 1)
	assert.Equal(t, "worker", ed.Working().Processes[0].Name)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewList, m.viewMode)
	assert.Equal(t, editor.Locked, ed.State())
	assert.Nil(t, ed.Working())
}

func TestEditorView_CancelPrompt(t *testing.T) {
	m, fake, ed := newEditorModel(t)
	m, _ = update(t, m, keyRunes("e"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, ViewList, m.viewMode)
	assert.Equal(t, editor.Locked, ed.State())
	assert.Empty(t, fake.Calls())
}

func TestEditorView_FormDiscardKeepsWorkingCopy(t *testing.T) {
	m, _, ed := newEditorModel(t)
	m, _ = update(t, m, keyRunes("e"))
	m = typeSecret(t, m, "art3d")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.editorView.form)
	m.editorView.draftProcess.Name = "renamed"

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, m.editorView.form)
	assert.Equal(t, "api", ed.Working().Processes[0].Name)
}

func TestEditorView_ExpiredSessionCloses(t *testing.T) {
	fake := backendtest.NewFakeBackend()
	v, err := editor.NewVerifier("art3d", "")
	require.NoError(t, err)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	ed := editor.New(fake, v, editor.WithClock(func() time.Time { return now }), editor.WithSessionTTL(time.Minute))
	m := NewModel(fake, Options{Editor: ed})

	m, _ = update(t, m, keyRunes("e"))
	m = typeSecret(t, m, "art3d")
	now = now.Add(2 * time.Minute)

	m, _ = update(t, m, keyRunes("a"))
	assert.Equal(t, ViewList, m.viewMode)
	assert.Equal(t, editor.Locked, ed.State())
}

func TestEditorView_RendersWhileUnlockInFlight(t *testing.T) {
	m, fake, ed := newEditorModel(t)
	fake.ConfigBlock = make(chan struct{})

	m, _ = update(t, m, keyRunes("e"))
	m, _ = update(t, m, keyRunes("art3d"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.Equal(t, "Unlocking", m.editorView.busy)

	done := make(chan tea.Msg)
	go func() { done <- cmd() }()

	// Render and feed keys while the fetch is blocked; run with -race.
	for i := 0; i < 20; i++ {
		assert.Contains(t, m.View(), "Unlocking...")
		m, _ = update(t, m, keyRunes("a"))
	}
	close(fake.ConfigBlock)

	m, _ = update(t, m, <-done)
	assert.Equal(t, editor.Unlocked, ed.State())
	require.NotNil(t, ed.Working())
	assert.Len(t, ed.Working().Processes, 2, "keys pressed while busy are ignored")
	assert.Contains(t, m.View(), "worker")
}

func TestEditorView_SaveInFlightThenRender(t *testing.T) {
	m, fake, ed := newEditorModel(t)
	m, _ = update(t, m, keyRunes("e"))
	m = typeSecret(t, m, "art3d")

	m, cmd := update(t, m, keyRunes("w"))
	require.NotNil(t, cmd)

	done := make(chan tea.Msg)
	go func() { done <- cmd() }()
	for i := 0; i < 20; i++ {
		assert.Contains(t, m.View(), "Saving...")
	}

	m, _ = update(t, m, <-done)
	assert.Equal(t, "Saved", m.editorView.info)
	assert.Equal(t, 1, fake.CallCount("SaveConfigModel"))
	assert.Equal(t, "api", ed.Working().Processes[0].Name)
}

func TestEditorView_AddWithNothingLoaded(t *testing.T) {
	m, fake, ed := newEditorModel(t)
	fake.ConfigErr = errors.New("connection refused")

	m, _ = update(t, m, keyRunes("e"))
	m = typeSecret(t, m, "art3d")
	require.Equal(t, editor.Unlocked, ed.State())
	require.Nil(t, ed.Working())
	assert.Contains(t, m.editorView.errMsg, "Couldn't load the config")

	m, _ = update(t, m, keyRunes("a"))
	assert.Equal(t, noModelNotice, m.editorView.errMsg)
	assert.Nil(t, ed.Working())

	m, cmd := update(t, m, keyRunes("w"))
	assert.Nil(t, cmd)
	assert.Equal(t, noModelNotice, m.editorView.errMsg)
	assert.Equal(t, 0, fake.CallCount("SaveConfigModel"))
}

func TestEditorView_FetchAfterLockIsDropped(t *testing.T) {
	m, fake, ed := newEditorModel(t)
	m, _ = update(t, m, keyRunes("e"))
	m, _ = update(t, m, keyRunes("art3d"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()

	ed.Close()
	m, _ = update(t, m, msg)
	assert.Equal(t, editor.Locked, ed.State())
	assert.Nil(t, ed.Working())
	assert.Equal(t, 1, fake.CallCount("GetConfigModel"))
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validDuration(""))
	assert.NoError(t, validDuration("250ms"))
	assert.NoError(t, validDuration("2.5"))
	assert.Error(t, validDuration("later"))

	assert.NoError(t, validNumber(""))
	assert.NoError(t, validNumber(" 1.5 "))
	assert.Error(t, validNumber("x"))
}
