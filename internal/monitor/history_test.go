package monitor

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/rileyhilliard/procdash/internal/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seen(names ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

func TestNewHistory_Defaults(t *testing.T) {
	h := NewHistory(HistoryPolicy{})
	assert.Equal(t, HistoryPolicy{Size: 40, MaxEntities: 256, StaleAfter: 120}, h.Policy())

	h = NewHistory(HistoryPolicy{Size: 5, MaxEntities: 2, StaleAfter: 3})
	assert.Equal(t, HistoryPolicy{Size: 5, MaxEntities: 2, StaleAfter: 3}, h.Policy())
}

func TestHistory_RecordAndGet(t *testing.T) {
	h := NewHistory(HistoryPolicy{})

	h.Record("svc1", 10, 20, 30, 40, 50)
	h.Record("svc1", 11, 21, 31, 41, 51)

	s := h.Get("svc1")
	assert.Equal(t, []float64{10, 11}, s.CPU)
	assert.Equal(t, []float64{20, 21}, s.GPU)
	assert.Equal(t, []float64{30, 31}, s.Mem)
	assert.Equal(t, []float64{40, 41}, s.Net)
	assert.Equal(t, []float64{50, 51}, s.IO)
	assert.Equal(t, s.Net, s.Of(ChannelNet))
	assert.Equal(t, 2, h.Count("svc1"))

	empty := h.Get("missing")
	for _, c := range Channels {
		assert.Empty(t, empty.Of(c))
	}
	assert.False(t, h.Has("missing"))
}

func TestHistory_GetReturnsCopies(t *testing.T) {
	h := NewHistory(HistoryPolicy{})
	h.Record("svc1", 1, 1, 1, 1, 1)

	s := h.Get("svc1")
	s.CPU[0] = 99
	assert.Equal(t, []float64{1}, h.Get("svc1").CPU)
}

func TestHistory_NonFiniteCoercedToZero(t *testing.T) {
	h := NewHistory(HistoryPolicy{})
	h.Record("svc1", math.NaN(), math.Inf(1), math.Inf(-1), 5, 0)

	s := h.Get("svc1")
	assert.Equal(t, []float64{0}, s.CPU)
	assert.Equal(t, []float64{0}, s.GPU)
	assert.Equal(t, []float64{0}, s.Mem)
	assert.Equal(t, []float64{5}, s.Net)
}

func TestHistory_CapacityIsFIFO(t *testing.T) {
	h := NewHistory(HistoryPolicy{})

	for i := 0; i < 100; i++ {
		h.Record("svc1", float64(i), 0, 0, 0, 0)
		for _, c := range Channels {
			require.LessOrEqual(t, len(h.Get("svc1").Of(c)), DefaultHistorySize)
		}
	}

	cpu := h.Get("svc1").CPU
	require.Len(t, cpu, DefaultHistorySize)
	assert.Equal(t, 60.0, cpu[0], "oldest samples evicted first")
	assert.Equal(t, 99.0, cpu[len(cpu)-1])
	for i := 1; i < len(cpu); i++ {
		assert.Equal(t, cpu[i-1]+1, cpu[i])
	}
}

func TestHistory_RecordMetrics(t *testing.T) {
	h := NewHistory(HistoryPolicy{})
	h.RecordMetrics("svc1", backend.Metrics{CPU: 1, GPU: 2, Mem: 3, Net: 4, IO: 5})
	assert.Equal(t, []float64{5}, h.Get("svc1").IO)
}

func TestHistory_AbsentEntityKeepsHistory(t *testing.T) {
	h := NewHistory(HistoryPolicy{StaleAfter: 3})

	h.Record("a", 10, 0, 0, 0, 0)
	h.Record("b", 20, 0, 0, 0, 0)
	assert.Empty(t, h.Sweep(seen("a", "b")))

	// b disappears from the next snapshot but its samples stay retrievable.
	h.Record("a", 11, 0, 0, 0, 0)
	assert.Empty(t, h.Sweep(seen("a")))
	assert.Equal(t, []float64{20}, h.Get("b").CPU)
}

func TestHistory_SweepPrunesStale(t *testing.T) {
	h := NewHistory(HistoryPolicy{StaleAfter: 3})
	h.Record("a", 1, 0, 0, 0, 0)
	h.Record("b", 1, 0, 0, 0, 0)
	h.Sweep(seen("a", "b"))

	for i := 0; i < 3; i++ {
		assert.Empty(t, h.Sweep(seen("a")), "sweep %d", i)
		assert.True(t, h.Has("b"))
	}
	assert.Equal(t, []string{"b"}, h.Sweep(seen("a")))
	assert.False(t, h.Has("b"))
	assert.True(t, h.Has("a"))
}

func TestHistory_SweepResetsMissedOnReturn(t *testing.T) {
	h := NewHistory(HistoryPolicy{StaleAfter: 2})
	h.Record("a", 1, 0, 0, 0, 0)

	h.Sweep(seen())
	h.Sweep(seen())
	h.Sweep(seen("a"))
	h.Sweep(seen())
	h.Sweep(seen())
	assert.True(t, h.Has("a"))
	h.Sweep(seen())
	assert.False(t, h.Has("a"))
}

func TestHistory_SweepCapsEntities(t *testing.T) {
	h := NewHistory(HistoryPolicy{MaxEntities: 3, StaleAfter: 100})

	for i := 0; i < 3; i++ {
		name := fmt.Sprintf("old-%d", i)
		h.Record(name, 1, 0, 0, 0, 0)
		h.Sweep(seen(name))
	}
	h.Record("new-a", 1, 0, 0, 0, 0)
	h.Record("new-b", 1, 0, 0, 0, 0)

	evicted := h.Sweep(seen("new-a", "new-b"))
	assert.Equal(t, []string{"old-0", "old-1"}, evicted)
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, []string{"new-a", "new-b", "old-2"}, h.Names())
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory(HistoryPolicy{})
	h.Record("a", 1, 0, 0, 0, 0)
	h.Record("b", 1, 0, 0, 0, 0)

	h.Clear("a")
	assert.False(t, h.Has("a"))
	assert.Equal(t, 1, h.Len())

	h.ClearAll()
	assert.Equal(t, 0, h.Len())
}

func TestHistory_ConcurrentAccess(t *testing.T) {
	h := NewHistory(HistoryPolicy{})
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("svc%d", i%3)
			for j := 0; j < 100; j++ {
				h.Record(name, float64(j), 0, 0, 0, 0)
				_ = h.Get(name)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 3; i++ {
		assert.Equal(t, DefaultHistorySize, h.Count(fmt.Sprintf("svc%d", i)))
	}
}
