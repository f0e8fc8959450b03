package monitor

import (
	"sort"
	"sync"

	"github.com/rileyhilliard/procdash/internal/backend"
)

// Defaults for HistoryPolicy.
const (
	DefaultHistorySize = 40
	DefaultMaxEntities = 256
	DefaultStaleAfter  = 120
)

// Channel identifies one of the five per-entity metric series.
type Channel int

const (
	ChannelCPU Channel = iota
	ChannelGPU
	ChannelMem
	ChannelNet
	ChannelIO
	numChannels
)

// Channels lists every channel in display order.
var Channels = []Channel{ChannelCPU, ChannelGPU, ChannelMem, ChannelNet, ChannelIO}

func (c Channel) String() string {
	switch c {
	case ChannelCPU:
		return "cpu"
	case ChannelGPU:
		return "gpu"
	case ChannelMem:
		return "mem"
	case ChannelNet:
		return "net"
	case ChannelIO:
		return "io"
	}
	return "unknown"
}

// Samples is a copy of one entity's history, oldest sample first.
type Samples struct {
	CPU []float64
	GPU []float64
	Mem []float64
	Net []float64
	IO  []float64
}

// Of returns the series for c.
func (s Samples) Of(c Channel) []float64 {
	switch c {
	case ChannelCPU:
		return s.CPU
	case ChannelGPU:
		return s.GPU
	case ChannelMem:
		return s.Mem
	case ChannelNet:
		return s.Net
	case ChannelIO:
		return s.IO
	}
	return nil
}

// HistoryPolicy bounds the store per channel and in entity count.
type HistoryPolicy struct {
	// Size is the per-channel capacity.
	Size int
	// MaxEntities caps tracked entities; the least recently seen go first.
	MaxEntities int
	// StaleAfter prunes an entity absent from more than this many consecutive sweeps.
	StaleAfter int
}

func (p HistoryPolicy) withDefaults() HistoryPolicy {
	if p.Size <= 0 {
		p.Size = DefaultHistorySize
	}
	if p.MaxEntities <= 0 {
		p.MaxEntities = DefaultMaxEntities
	}
	if p.StaleAfter <= 0 {
		p.StaleAfter = DefaultStaleAfter
	}
	return p
}

// History keeps a bounded ring buffer per metric channel for each entity.
type History struct {
	mu       sync.RWMutex
	policy   HistoryPolicy
	sweeps   uint64
	entities map[string]*entityHistory
}

type entityHistory struct {
	channels [numChannels]*ringBuffer
	lastSeen uint64
	missed   int
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a store with the given policy; zero fields take defaults.
func NewHistory(policy HistoryPolicy) *History {
	return &History{
		policy:   policy.withDefaults(),
		entities: make(map[string]*entityHistory),
	}
}

// Policy returns the effective policy.
func (h *History) Policy() HistoryPolicy {
	return h.policy
}

// Record appends one sample per channel for name, creating the entry if
// needed. Non-finite inputs are stored as 0.
func (h *History) Record(name string, cpu, gpu, mem, net, io float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	e := h.getOrCreate(name)
	e.channels[ChannelCPU].push(backend.Finite(cpu))
	e.channels[ChannelGPU].push(backend.Finite(gpu))
	e.channels[ChannelMem].push(backend.Finite(mem))
	e.channels[ChannelNet].push(backend.Finite(net))
	e.channels[ChannelIO].push(backend.Finite(io))
}

// RecordMetrics is Record for parsed entity metrics.
func (h *History) RecordMetrics(name string, m backend.Metrics) {
	h.Record(name, m.CPU, m.GPU, m.Mem, m.Net, m.IO)
}

// Get returns copies of name's five series; all empty when name is unknown.
func (h *History) Get(name string) Samples {
	h.mu.RLock()
	defer h.mu.RUnlock()

	e, ok := h.entities[name]
	if !ok {
		return Samples{}
	}
	return Samples{
		CPU: e.channels[ChannelCPU].all(),
		GPU: e.channels[ChannelGPU].all(),
		Mem: e.channels[ChannelMem].all(),
		Net: e.channels[ChannelNet].all(),
		IO:  e.channels[ChannelIO].all(),
	}
}

// Has reports whether any history is kept for name.
func (h *History) Has(name string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.entities[name]
	return ok
}

// Count returns the number of samples stored for name.
func (h *History) Count(name string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	e, ok := h.entities[name]
	if !ok {
		return 0
	}
	return e.channels[ChannelCPU].count
}

// Len returns the number of tracked entities.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entities)
}

// Names returns the tracked entity names, sorted.
func (h *History) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.entities))
	for name := range h.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sweep applies the eviction policy after a snapshot containing seen has been
// recorded. Entities missing for more than StaleAfter consecutive sweeps are
// dropped, then the least recently seen are dropped until at most MaxEntities
// remain. It returns the evicted names.
func (h *History) Sweep(seen map[string]struct{}) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sweeps++
	var evicted []string

	for name, e := range h.entities {
		if _, ok := seen[name]; ok {
			e.missed = 0
			e.lastSeen = h.sweeps
			continue
		}
		e.missed++
		if e.missed > h.policy.StaleAfter {
			delete(h.entities, name)
			evicted = append(evicted, name)
		}
	}

	if over := len(h.entities) - h.policy.MaxEntities; over > 0 {
		type aged struct {
			name     string
			lastSeen uint64
		}
		order := make([]aged, 0, len(h.entities))
		for name, e := range h.entities {
			order = append(order, aged{name, e.lastSeen})
		}
		sort.Slice(order, func(i, j int) bool {
			if order[i].lastSeen != order[j].lastSeen {
				return order[i].lastSeen < order[j].lastSeen
			}
			return order[i].name < order[j].name
		})
		for _, a := range order[:over] {
			delete(h.entities, a.name)
			evicted = append(evicted, a.name)
		}
	}

	sort.Strings(evicted)
	return evicted
}

// Clear removes all history for name.
func (h *History) Clear(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.entities, name)
}

// ClearAll removes all history.
func (h *History) ClearAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entities = make(map[string]*entityHistory)
}

// getOrCreate must be called with h.mu held.
func (h *History) getOrCreate(name string) *entityHistory {
	e, ok := h.entities[name]
	if !ok {
		e = &entityHistory{lastSeen: h.sweeps}
		for c := range e.channels {
			e.channels[c] = newRingBuffer(h.policy.Size)
		}
		h.entities[name] = e
	}
	return e
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

// push overwrites the oldest value once the buffer is full.
func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// all returns every stored value, oldest first.
func (r *ringBuffer) all() []float64 {
	result := make([]float64, r.count)
	// head is the next write slot, so the oldest value sits count slots back.
	start := (r.head - r.count + r.size) % r.size
	for i := 0; i < r.count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}
