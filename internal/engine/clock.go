package engine

import "time"

// Clock supplies monotonically non-decreasing timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// Ticker converts wall-clock readings into whole elapsed seconds. The
// reference point only moves forward by the seconds it reports, so the
// fractional remainder of every poll carries into the next one.
type Ticker struct {
	last  time.Time
	armed bool
}

// Reset arms the ticker with now as the reference point.
func (t *Ticker) Reset(now time.Time) {
	t.last = now
	t.armed = true
}

func (t *Ticker) Disarm() { t.armed = false }

func (t *Ticker) Armed() bool { return t.armed }

// Elapsed returns floor((now - last) / 1s) and advances the reference point
// by exactly that many seconds.
func (t *Ticker) Elapsed(now time.Time) int {
	if !t.armed {
		return 0
	}
	d := now.Sub(t.last)
	if d < time.Second {
		return 0
	}
	n := int(d / time.Second)
	t.last = t.last.Add(time.Duration(n) * time.Second)
	return n
}
