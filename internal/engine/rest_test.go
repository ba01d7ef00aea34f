package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRestCoordinatorSpend(t *testing.T) {
	var r RestCoordinator
	fired := 0
	h := r.Begin(10, func() { fired++ })

	assert.NotZero(t, h)
	assert.True(t, r.Active())
	assert.Equal(t, 0, r.Spend(4))
	assert.Equal(t, 6, r.Remaining())
	assert.Equal(t, 10, r.Duration())
	assert.Zero(t, fired)

	assert.Equal(t, 3, r.Spend(9))
	assert.Equal(t, 1, fired)
	assert.False(t, r.Active())

	// further spending on a finished rest passes everything through
	assert.Equal(t, 5, r.Spend(5))
	assert.Equal(t, 1, fired)
}

func TestRestCoordinatorCancel(t *testing.T) {
	var r RestCoordinator
	fired := false
	h := r.Begin(10, func() { fired = true })

	assert.False(t, r.Cancel(h+1))
	assert.True(t, r.Active())

	assert.True(t, r.Cancel(h))
	assert.False(t, r.Active())
	assert.False(t, r.Cancel(h))
	assert.Equal(t, 7, r.Spend(7))
	assert.False(t, fired)
}

func TestRestCoordinatorBeginReplaces(t *testing.T) {
	var r RestCoordinator
	first := r.Begin(10, nil)
	second := r.Begin(3, nil)

	assert.NotEqual(t, first, second)
	assert.False(t, r.Cancel(first))
	assert.Equal(t, 3, r.Remaining())
}

func TestRestCoordinatorCallbackMayRestart(t *testing.T) {
	var r RestCoordinator
	r.Begin(2, func() { r.Begin(5, nil) })

	assert.Equal(t, 0, r.Spend(2))
	assert.True(t, r.Active())
	assert.Equal(t, 5, r.Remaining())
}

func TestTicker(t *testing.T) {
	var tk Ticker
	start := time.Unix(1000, 0)

	assert.Equal(t, 0, tk.Elapsed(start.Add(time.Hour)), "disarmed ticker reports nothing")

	tk.Reset(start)
	assert.True(t, tk.Armed())
	assert.Equal(t, 0, tk.Elapsed(start.Add(999*time.Millisecond)))
	assert.Equal(t, 1, tk.Elapsed(start.Add(1999*time.Millisecond)))
	assert.Equal(t, 1, tk.Elapsed(start.Add(2*time.Second)))
	assert.Equal(t, 3, tk.Elapsed(start.Add(5500*time.Millisecond)))
	assert.Equal(t, 1, tk.Elapsed(start.Add(6*time.Second)))

	tk.Disarm()
	assert.Equal(t, 0, tk.Elapsed(start.Add(time.Minute)))
}
