package monitor

import (
	"math"
	"time"
)

// DefaultAnimationDuration is how long a value takes to ease to its target.
const DefaultAnimationDuration = 320 * time.Millisecond

// animationEpsilon is the smallest change worth animating.
const animationEpsilon = 1e-4

// AnimKey identifies one animated field: an entity's metric label.
type AnimKey struct {
	Entity string
	Field  string
}

// Formatter renders an intermediate or final value as label text.
type Formatter func(float64) string

type transition struct {
	from, to float64
	start    time.Time
	format   Formatter
	value    float64
}

// Animator eases displayed numbers toward new targets. There is at most one
// transition per key; starting a new one replaces the old. It is not safe for
// concurrent use and is driven from the UI update loop.
type Animator struct {
	duration time.Duration
	active   map[AnimKey]*transition
	text     map[AnimKey]string
}

// NewAnimator returns an animator with the given duration. A non-positive
// duration disables easing: every value snaps to its target.
func NewAnimator(duration time.Duration) *Animator {
	return &Animator{
		duration: duration,
		active:   make(map[AnimKey]*transition),
		text:     make(map[AnimKey]string),
	}
}

// Ease is ease-out-cubic on t in [0,1].
func Ease(t float64) float64 {
	t = math.Max(0, math.Min(1, t))
	return 1 - math.Pow(1-t, 3)
}

// Interpolate returns the eased value between from and to at progress t.
func Interpolate(from, to, t float64) float64 {
	return from + (to-from)*Ease(t)
}

// Animate starts a transition for key from -> to and reports whether one was
// scheduled. Non-finite endpoints fall back to the other endpoint (or 0);
// when the change is below epsilon, or easing is disabled, the formatted
// target is shown immediately.
func (a *Animator) Animate(key AnimKey, from, to float64, format Formatter, now time.Time) bool {
	from = finiteOr(from, finiteOr(to, 0))
	to = finiteOr(to, from)

	if a.duration <= 0 || math.Abs(to-from) < animationEpsilon {
		delete(a.active, key)
		a.text[key] = format(to)
		return false
	}

	a.active[key] = &transition{from: from, to: to, start: now, format: format, value: from}
	a.text[key] = format(from)
	return true
}

// Frame advances every transition to now. Finished transitions show their
// exact target and are dropped. It reports whether any remain.
func (a *Animator) Frame(now time.Time) bool {
	for key, tr := range a.active {
		t := float64(now.Sub(tr.start)) / float64(a.duration)
		if t >= 1 {
			a.text[key] = tr.format(tr.to)
			delete(a.active, key)
			continue
		}
		tr.value = Interpolate(tr.from, tr.to, math.Max(0, t))
		a.text[key] = tr.format(tr.value)
	}
	return len(a.active) > 0
}

// Active reports whether another frame is needed.
func (a *Animator) Active() bool {
	return len(a.active) > 0
}

// Text returns the label currently displayed for key.
func (a *Animator) Text(key AnimKey) (string, bool) {
	s, ok := a.text[key]
	return s, ok
}

// Value returns the in-flight value for key, if it is animating.
func (a *Animator) Value(key AnimKey) (float64, bool) {
	tr, ok := a.active[key]
	if !ok {
		return 0, false
	}
	return tr.value, true
}

// Forget drops every field of entity.
func (a *Animator) Forget(entity string) {
	for key := range a.text {
		if key.Entity == entity {
			delete(a.text, key)
			delete(a.active, key)
		}
	}
}

func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
