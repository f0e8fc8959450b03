// Package backend defines the contract procdash consumes from a supervision
// backend, plus the HTTP transport for it in both directions and an in-memory
// demo implementation.
package backend

import (
	"context"
	"fmt"
)

// Backend is everything the dashboard asks of a supervision backend.
type Backend interface {
	GetSnapshot(ctx context.Context) (*Snapshot, error)

	Start(ctx context.Context, name string) error
	Stop(ctx context.Context, name string) error
	Restart(ctx context.Context, name string) error
	OpenFolder(ctx context.Context, name string) error

	RestartAll(ctx context.Context) error
	KillCMD(ctx context.Context) error
	KillNode(ctx context.Context) error

	GetConfigModel(ctx context.Context) (*ConfigModel, error)
	SaveConfigModel(ctx context.Context, model ConfigModel) error
}

// Action names a user-triggered backend call.
type Action string

const (
	ActionOpenFolder Action = "open-folder"
	ActionStart      Action = "start"
	ActionStop       Action = "stop"
	ActionRestart    Action = "restart"
	ActionRestartAll Action = "restart-all"
	ActionKillCMD    Action = "kill-cmd"
	ActionKillNode   Action = "kill-node"
)

// EntityActions are the per-row actions, in display order.
var EntityActions = []Action{ActionOpenFolder, ActionStart, ActionStop, ActionRestart}

// GlobalActions act on the whole roster.
var GlobalActions = []Action{ActionRestartAll, ActionKillCMD, ActionKillNode}

// NeedsName reports whether the action targets a single entity.
func (a Action) NeedsName() bool {
	switch a {
	case ActionOpenFolder, ActionStart, ActionStop, ActionRestart:
		return true
	}
	return false
}

// ParseAction validates an action name.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	switch a {
	case ActionOpenFolder, ActionStart, ActionStop, ActionRestart,
		ActionRestartAll, ActionKillCMD, ActionKillNode:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Invoke issues exactly one backend call for action. name is ignored for
// global actions.
func Invoke(ctx context.Context, b Backend, action Action, name string) error {
	if action.NeedsName() && name == "" {
		return fmt.Errorf("%s needs a process name", action)
	}
	switch action {
	case ActionOpenFolder:
		return b.OpenFolder(ctx, name)
	case ActionStart:
		return b.Start(ctx, name)
	case ActionStop:
		return b.Stop(ctx, name)
	case ActionRestart:
		return b.Restart(ctx, name)
	case ActionRestartAll:
		return b.RestartAll(ctx)
	case ActionKillCMD:
		return b.KillCMD(ctx)
	case ActionKillNode:
		return b.KillNode(ctx)
	}
	return fmt.Errorf("unknown action %q", action)
}
