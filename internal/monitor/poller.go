package monitor

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/procdash/internal/backend"
	"github.com/rileyhilliard/procdash/internal/logger"
)

// Poll cadence defaults.
const (
	DefaultPollInterval = 500 * time.Millisecond
	MinPollInterval     = 100 * time.Millisecond
	DefaultPollTimeout  = 2 * time.Second
)

// pollTickMsg fires on the poll cadence.
type pollTickMsg time.Time

// pollResultMsg carries one finished poll back to the update loop.
type pollResultMsg struct {
	seq  uint64
	snap *backend.Snapshot
	err  error
	at   time.Time
}

// Poller fetches snapshots on a fixed cadence with at most one request in
// flight. Every poll carries a sequence number; a result older than the last
// one applied is dropped, so snapshots are applied in order. A Poller is
// owned by the update loop and is not safe for concurrent use; only the
// commands it returns run elsewhere.
type Poller struct {
	backend  backend.Backend
	interval time.Duration
	timeout  time.Duration
	log      logger.Logger

	seq      uint64
	applied  uint64
	inFlight bool
	skipped  int
}

// NewPoller creates a poller. interval is raised to MinPollInterval; a zero
// timeout uses DefaultPollTimeout.
func NewPoller(b backend.Backend, interval, timeout time.Duration, log logger.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if interval < MinPollInterval {
		interval = MinPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}
	if log == nil {
		log = logger.Noop()
	}
	return &Poller{backend: b, interval: interval, timeout: timeout, log: log}
}

// Interval returns the effective poll cadence.
func (p *Poller) Interval() time.Duration { return p.interval }

// InFlight reports whether a poll is outstanding.
func (p *Poller) InFlight() bool { return p.inFlight }

// Skipped returns how many ticks found a poll still in flight.
func (p *Poller) Skipped() int { return p.skipped }

// Tick schedules the next poll tick.
func (p *Poller) Tick() tea.Cmd {
	return tea.Tick(p.interval, func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}

// Poll starts a poll unless one is already in flight, in which case it
// returns nil and the tick is skipped.
func (p *Poller) Poll() tea.Cmd {
	if p.inFlight {
		p.skipped++
		p.log.Debug("poll %d still in flight, skipping tick", p.seq)
		return nil
	}
	p.inFlight = true
	p.seq++
	seq := p.seq
	b, timeout := p.backend, p.timeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		snap, err := b.GetSnapshot(ctx)
		return pollResultMsg{seq: seq, snap: snap, err: err, at: time.Now()}
	}
}

// Accept settles a finished poll and reports whether its result should be
// applied. Results that arrive out of order are dropped.
func (p *Poller) Accept(msg pollResultMsg) bool {
	if msg.seq == p.seq {
		p.inFlight = false
	}
	if msg.seq <= p.applied {
		p.log.Debug("dropping stale poll %d (applied %d)", msg.seq, p.applied)
		return false
	}
	p.applied = msg.seq
	if msg.err != nil {
		p.log.Warn("poll %d failed: %v", msg.seq, msg.err)
	}
	return true
}
