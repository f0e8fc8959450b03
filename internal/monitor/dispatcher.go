package monitor

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/procdash/internal/backend"
	"github.com/rileyhilliard/procdash/internal/errors"
	"github.com/rileyhilliard/procdash/internal/logger"
)

// DefaultActionTimeout bounds a single action call.
const DefaultActionTimeout = 5 * time.Second

// actionResultMsg reports a finished action to the update loop.
type actionResultMsg struct {
	action backend.Action
	name   string
	err    error
}

// Dispatcher sends user-triggered actions to the backend: one call per
// action, no retry and no optimistic update. The next poll shows the effect.
type Dispatcher struct {
	backend backend.Backend
	timeout time.Duration
	log     logger.Logger
}

// NewDispatcher creates a dispatcher. A zero timeout uses DefaultActionTimeout.
func NewDispatcher(b backend.Backend, timeout time.Duration, log logger.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultActionTimeout
	}
	if log == nil {
		log = logger.Noop()
	}
	return &Dispatcher{backend: b, timeout: timeout, log: log}
}

// Dispatch issues the backend call for action. Failures are logged and
// returned for display.
func (d *Dispatcher) Dispatch(ctx context.Context, action backend.Action, name string) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := backend.Invoke(ctx, d.backend, action, name); err != nil {
		d.log.Error("%s failed: %v", describeAction(action, name), err)
		return errors.WrapWithCode(err, errors.ErrBackend,
			fmt.Sprintf("Couldn't %s", describeAction(action, name)), "")
	}
	d.log.Info("%s sent", describeAction(action, name))
	return nil
}

// Cmd runs Dispatch off the update loop.
func (d *Dispatcher) Cmd(action backend.Action, name string) tea.Cmd {
	return func() tea.Msg {
		err := d.Dispatch(context.Background(), action, name)
		return actionResultMsg{action: action, name: name, err: err}
	}
}

func describeAction(action backend.Action, name string) string {
	if action.NeedsName() {
		return fmt.Sprintf("%s %s", action, name)
	}
	return string(action)
}

// NoticeLevel sets how a footer notice is styled.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeError
)

// Notice is a dismissable footer message.
type Notice struct {
	Text  string
	Level NoticeLevel
	At    time.Time
}

// noticeFor turns an action result into a footer notice.
func noticeFor(msg actionResultMsg, now time.Time) Notice {
	if msg.err != nil {
		return Notice{Text: errors.OneLine(msg.err), Level: NoticeError, At: now}
	}
	return Notice{Text: describeAction(msg.action, msg.name) + " sent", Level: NoticeInfo, At: now}
}
