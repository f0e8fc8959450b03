// Package editor implements the secret-gated editor over the backend's
// process definitions and global settings.
//
// The editor is a small state machine:
//
//	Locked ──Toggle──▶ AuthPending ──Submit(ok)──▶ Unlocked
//	   ▲                  │                           │
//	   └──────Cancel──────┘◀──────────Close───────────┘
//
// Unlocking issues an in-memory Session and fetches the config model exactly
// once into a working copy. Edits stay local until Save, which validates
// names and submits the whole copy in one call. An Editor is not safe for
// concurrent use. Interactive callers split each backend call into a
// Begin/Unlock step, the I/O (FetchModel, SendModel) which touches no editor
// state, and a Finish step, running the first and last on their own loop.
package editor

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/rileyhilliard/procdash/internal/backend"
	"github.com/rileyhilliard/procdash/internal/errors"
	"github.com/rileyhilliard/procdash/internal/logger"
)

// State is the editor's lock state.
type State int

const (
	Locked State = iota
	AuthPending
	Unlocked
)

func (s State) String() string {
	switch s {
	case Locked:
		return "locked"
	case AuthPending:
		return "auth-pending"
	case Unlocked:
		return "unlocked"
	}
	return "unknown"
}

var (
	// ErrInvalidSecret is returned for a rejected secret. It never says why.
	ErrInvalidSecret = stderrors.New("invalid secret")
	// ErrSessionExpired is returned by a gated operation after the session
	// has expired. The editor is locked when it is returned.
	ErrSessionExpired = stderrors.New("editor session expired")
	// ErrLocked is returned by gated operations while not unlocked.
	ErrLocked = stderrors.New("editor is locked")
	// ErrNoModel is returned by Save when nothing was loaded to save.
	ErrNoModel = stderrors.New("no config loaded")
)

// ValidationError is returned by Save when the working copy is rejected
// before reaching the backend.
type ValidationError = backend.ValidationError

// Option configures an Editor.
type Option func(*Editor)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) { e.now = now }
}

// WithSessionTTL sets the sliding session lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(e *Editor) {
		if ttl > 0 {
			e.ttl = ttl
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Editor) { e.log = l }
}

// Editor is the gated config editor.
type Editor struct {
	backend  backend.Backend
	verifier Verifier
	ttl      time.Duration
	now      func() time.Time
	log      logger.Logger

	state   State
	session *Session
	working *backend.ConfigModel
}

// New returns a locked editor.
func New(b backend.Backend, v Verifier, opts ...Option) *Editor {
	e := &Editor{
		backend:  b,
		verifier: v,
		ttl:      DefaultSessionTTL,
		now:      time.Now,
		log:      logger.Noop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current lock state.
func (e *Editor) State() State { return e.state }

// Session returns the active session, nil unless unlocked.
func (e *Editor) Session() *Session { return e.session }

// Working returns the working copy for in-place edits. It is nil unless
// unlocked with a successful fetch.
func (e *Editor) Working() *backend.ConfigModel { return e.working }

// Toggle opens the secret prompt from Locked, cancels it from AuthPending,
// and from Unlocked locks the editor and prompts again.
func (e *Editor) Toggle() {
	switch e.state {
	case Locked:
		e.working = nil
		e.state = AuthPending
	case AuthPending:
		e.Cancel()
	case Unlocked:
		e.Close()
		e.state = AuthPending
	}
}

// Cancel abandons the secret prompt.
func (e *Editor) Cancel() {
	if e.state == AuthPending {
		e.state = Locked
	}
}

// Submit checks secret. A wrong secret leaves the prompt open and makes no
// backend call. A correct one unlocks, issues a session and fetches the
// config model once; if that fetch fails the editor stays unlocked with no
// working copy and the error is returned for display.
func (e *Editor) Submit(ctx context.Context, secret string) error {
	if err := e.Unlock(secret); err != nil {
		return err
	}
	model, err := e.FetchModel(ctx)
	return e.FinishFetch(model, err)
}

// Unlock checks secret and, when it matches, unlocks and issues a session
// without fetching. The caller completes the unlock with FetchModel and
// FinishFetch.
func (e *Editor) Unlock(secret string) error {
	if e.state != AuthPending {
		return ErrLocked
	}
	if e.verifier == nil || !e.verifier.Verify(secret) {
		e.log.Warn("editor unlock rejected")
		return ErrInvalidSecret
	}

	e.state = Unlocked
	e.session = newSession(e.now(), e.ttl)
	e.working = nil
	e.log.Info("editor unlocked (session %s, ttl %s)", e.session.Token, e.ttl)
	return nil
}

// Reload re-fetches the config model, discarding local edits.
func (e *Editor) Reload(ctx context.Context) error {
	if err := e.BeginReload(); err != nil {
		return err
	}
	model, err := e.FetchModel(ctx)
	return e.FinishFetch(model, err)
}

// BeginReload checks that a reload may start.
func (e *Editor) BeginReload() error {
	return e.gate()
}

// FetchModel reads the config model from the backend. It touches no editor
// state, so it may run on another goroutine while the editor is in use.
func (e *Editor) FetchModel(ctx context.Context) (*backend.ConfigModel, error) {
	return e.backend.GetConfigModel(ctx)
}

// FinishFetch applies the result of FetchModel. A failure leaves no working
// copy. Results arriving after the editor was locked are dropped.
func (e *Editor) FinishFetch(model *backend.ConfigModel, err error) error {
	if e.state != Unlocked {
		return ErrLocked
	}
	if err != nil {
		e.working = nil
		e.log.Error("fetch config failed: %v", err)
		return errors.WrapWithCode(err, errors.ErrEditor,
			"Couldn't load the config from the backend",
			"Check that the backend is running, then reload.")
	}
	if model == nil {
		model = &backend.ConfigModel{}
	}
	working := model.Clone()
	e.working = &working
	e.touch()
	return nil
}

// Save validates the working copy and submits it in one call. Names are
// trimmed in what is sent. On a validation error nothing is sent.
func (e *Editor) Save(ctx context.Context) error {
	out, err := e.BeginSave()
	if err != nil {
		return err
	}
	return e.FinishSave(out, e.SendModel(ctx, out))
}

// BeginSave validates the working copy and returns the normalized model to
// send. Nothing is returned on a validation error.
func (e *Editor) BeginSave() (backend.ConfigModel, error) {
	if err := e.gate(); err != nil {
		return backend.ConfigModel{}, err
	}
	if e.working == nil {
		return backend.ConfigModel{}, ErrNoModel
	}
	if err := e.working.Validate(); err != nil {
		e.log.Debug("save blocked: %v", err)
		return backend.ConfigModel{}, err
	}

	out := e.working.Clone()
	out.Normalize()
	return out, nil
}

// SendModel submits model to the backend. Like FetchModel it touches no
// editor state.
func (e *Editor) SendModel(ctx context.Context, model backend.ConfigModel) error {
	return e.backend.SaveConfigModel(ctx, model)
}

// FinishSave applies the result of SendModel. On failure the working copy
// is kept as it was.
func (e *Editor) FinishSave(saved backend.ConfigModel, err error) error {
	if err != nil {
		e.log.Error("save config failed: %v", err)
		return errors.WrapWithCode(err, errors.ErrEditor,
			"Couldn't save the config",
			"Your edits are kept; try saving again or reload to discard them.")
	}
	if e.state != Unlocked {
		return nil
	}

	e.working = &saved
	e.touch()
	e.log.Info("config saved (%d processes)", len(saved.Processes))
	return nil
}

// AddProcess appends a blank exe entry to the working copy and returns its
// index. It needs a loaded config: a blank model must never reach Save.
func (e *Editor) AddProcess() (int, error) {
	if err := e.gate(); err != nil {
		return -1, err
	}
	if e.working == nil {
		return -1, ErrNoModel
	}
	e.working.Processes = append(e.working.Processes, backend.ProcessDef{Type: "exe"})
	e.touch()
	return len(e.working.Processes) - 1, nil
}

// RemoveProcess drops entry i from the working copy.
func (e *Editor) RemoveProcess(i int) error {
	if err := e.gate(); err != nil {
		return err
	}
	if e.working == nil || i < 0 || i >= len(e.working.Processes) {
		return fmt.Errorf("no process at index %d", i)
	}
	e.working.Processes = append(e.working.Processes[:i], e.working.Processes[i+1:]...)
	e.touch()
	return nil
}

// Close locks the editor and forgets the session and working copy.
func (e *Editor) Close() {
	if e.state == Unlocked {
		e.log.Info("editor locked")
	}
	e.state = Locked
	e.session = nil
	e.working = nil
}

// gate admits gated operations: unlocked with a live session.
func (e *Editor) gate() error {
	if e.state != Unlocked || e.session == nil {
		return ErrLocked
	}
	if e.session.Expired(e.now()) {
		e.log.Info("editor session %s expired", e.session.Token)
		e.Close()
		return ErrSessionExpired
	}
	return nil
}

func (e *Editor) touch() {
	if e.session != nil {
		e.session.touch(e.now(), e.ttl)
	}
}
