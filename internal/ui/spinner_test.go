package ui

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture returns a spinner whose output is collected in a locked buffer.
func capture(label string, animate bool) (*Spinner, func() string) {
	var buf strings.Builder
	var mu sync.Mutex

	s := NewSpinner(label, &strings.Builder{}, animate)
	s.SetOutput(func(str string) {
		mu.Lock()
		buf.WriteString(str)
		mu.Unlock()
	})
	return s, func() string {
		mu.Lock()
		defer mu.Unlock()
		return buf.String()
	}
}

func TestNewSpinner(t *testing.T) {
	s := NewSpinner("Collecting", &strings.Builder{}, false)
	assert.Equal(t, "Collecting", s.Label())
	assert.Equal(t, SpinnerPending, s.State())
	assert.Equal(t, time.Duration(0), s.Elapsed())
}

func TestSpinner_WritesToWriter(t *testing.T) {
	var out strings.Builder
	s := NewSpinner("Fetching", &out, false)

	s.Start()
	s.Success()

	assert.Contains(t, out.String(), SymbolSuccess)
	assert.Contains(t, out.String(), "Fetching")
}

func TestSpinner_AnimatedSuccess(t *testing.T) {
	s, output := capture("Test", true)

	s.Start()
	assert.Equal(t, SpinnerInProgress, s.State())
	time.Sleep(3 * spinnerTick)
	s.Success()

	assert.Equal(t, SpinnerSuccess, s.State())
	assert.Contains(t, output(), SymbolSuccess)
	assert.Contains(t, output(), "Test...")
}

func TestSpinner_Fail(t *testing.T) {
	s, output := capture("Test", true)

	s.Start()
	s.Fail()

	assert.Equal(t, SpinnerFailed, s.State())
	assert.Contains(t, output(), SymbolFail)
}

func TestSpinner_StaticWritesOnlyFinalLine(t *testing.T) {
	s, output := capture("Quiet", false)

	s.Start()
	time.Sleep(2 * spinnerTick)
	s.Success()

	assert.NotContains(t, output(), "\r")
	assert.Equal(t, 1, strings.Count(output(), "\n"))
}

func TestSpinner_ElapsedFrozenAfterStop(t *testing.T) {
	s, _ := capture("Test", false)

	s.Start()
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	first := s.Elapsed()
	assert.Greater(t, first, time.Duration(0))
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, first, s.Elapsed())
}

func TestSpinner_DoubleStartStop(t *testing.T) {
	s, _ := capture("Test", true)

	s.Start()
	s.Start()
	s.Stop()
	s.Stop()

	assert.Equal(t, SpinnerInProgress, s.State())
}

func TestSpinner_SetLabel(t *testing.T) {
	s, _ := capture("sample 1/3", false)
	s.SetLabel("sample 2/3")
	assert.Equal(t, "sample 2/3", s.Label())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		want     string
	}{
		{0, "0.00s"},
		{50 * time.Millisecond, "0.05s"},
		{100 * time.Millisecond, "0.1s"},
		{1500 * time.Millisecond, "1.5s"},
		{10 * time.Second, "10.0s"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.duration))
		})
	}
}

func TestSpinner_ConcurrentAccess(t *testing.T) {
	s, _ := capture("Test", true)
	s.Start()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.State()
			_ = s.Label()
			_ = s.Elapsed()
		}()
	}
	wg.Wait()
	s.Success()

	require.Equal(t, SpinnerSuccess, s.State())
}
