// Package testing provides a recording Backend double.
package testing

import (
	"context"
	"sync"

	"github.com/rileyhilliard/procdash/internal/backend"
)

// Call is one recorded backend call.
type Call struct {
	Method string
	Name   string
	Model  *backend.ConfigModel
}

// FakeBackend implements backend.Backend, records every call and returns
// canned responses. Safe for concurrent use.
type FakeBackend struct {
	mu sync.Mutex

	Snapshots []*backend.Snapshot // returned in order; the last one repeats
	Model     backend.ConfigModel

	SnapshotErr error
	ActionErr   error
	ConfigErr   error
	SaveErr     error

	// Block, when non-nil, makes GetSnapshot wait for a value or ctx.Done.
	Block chan struct{}
	// ConfigBlock does the same for GetConfigModel.
	ConfigBlock chan struct{}

	calls    []Call
	snapshot int
}

// NewFakeBackend returns a fake serving the given snapshots.
func NewFakeBackend(snaps ...*backend.Snapshot) *FakeBackend {
	return &FakeBackend{Snapshots: snaps}
}

func (f *FakeBackend) record(c Call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

// Calls returns a copy of the recorded calls.
func (f *FakeBackend) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallCount counts recorded calls to method.
func (f *FakeBackend) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls.
func (f *FakeBackend) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *FakeBackend) GetSnapshot(ctx context.Context) (*backend.Snapshot, error) {
	f.record(Call{Method: "GetSnapshot"})
	if f.Block != nil {
		select {
		case <-f.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SnapshotErr != nil {
		return nil, f.SnapshotErr
	}
	if len(f.Snapshots) == 0 {
		return &backend.Snapshot{}, nil
	}
	i := f.snapshot
	if i >= len(f.Snapshots) {
		i = len(f.Snapshots) - 1
	} else {
		f.snapshot++
	}
	return f.Snapshots[i], nil
}

func (f *FakeBackend) action(method, name string) error {
	f.record(Call{Method: method, Name: name})
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ActionErr
}

func (f *FakeBackend) Start(ctx context.Context, name string) error {
	return f.action("Start", name)
}

func (f *FakeBackend) Stop(ctx context.Context, name string) error {
	return f.action("Stop", name)
}

func (f *FakeBackend) Restart(ctx context.Context, name string) error {
	return f.action("Restart", name)
}

func (f *FakeBackend) OpenFolder(ctx context.Context, name string) error {
	return f.action("OpenFolder", name)
}

func (f *FakeBackend) RestartAll(ctx context.Context) error {
	return f.action("RestartAll", "")
}

func (f *FakeBackend) KillCMD(ctx context.Context) error {
	return f.action("KillCMD", "")
}

func (f *FakeBackend) KillNode(ctx context.Context) error {
	return f.action("KillNode", "")
}

func (f *FakeBackend) GetConfigModel(ctx context.Context) (*backend.ConfigModel, error) {
	f.record(Call{Method: "GetConfigModel"})
	if f.ConfigBlock != nil {
		select {
		case <-f.ConfigBlock:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ConfigErr != nil {
		return nil, f.ConfigErr
	}
	m := f.Model.Clone()
	return &m, nil
}

func (f *FakeBackend) SaveConfigModel(ctx context.Context, model backend.ConfigModel) error {
	saved := model.Clone()
	f.record(Call{Method: "SaveConfigModel", Model: &saved})
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.Model = saved
	return nil
}

var _ backend.Backend = (*FakeBackend)(nil)
