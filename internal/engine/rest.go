package engine

// RestHandle identifies one rest countdown. The zero handle is never issued.
type RestHandle uint64

// RestCoordinator runs the inter-exercise countdown. It has no clock of its
// own: the engine feeds it elapsed seconds through Spend.
type RestCoordinator struct {
	handle    RestHandle
	next      RestHandle
	remaining int
	duration  int
	onElapsed func()
}

// Begin starts a countdown of duration seconds, replacing any active one.
// onElapsed fires once when the countdown reaches zero.
func (r *RestCoordinator) Begin(duration int, onElapsed func()) RestHandle {
	r.next++
	r.handle = r.next
	r.remaining = duration
	r.duration = duration
	r.onElapsed = onElapsed
	return r.handle
}

// Cancel stops the countdown identified by h without firing its callback.
// It reports false for stale or unknown handles.
func (r *RestCoordinator) Cancel(h RestHandle) bool {
	if h == 0 || h != r.handle {
		return false
	}
	r.clear()
	return true
}

// Spend takes up to secs seconds off the active countdown and returns the
// seconds it did not use. When the countdown reaches zero the rest clears
// before onElapsed runs, so the callback may begin another rest.
func (r *RestCoordinator) Spend(secs int) int {
	if !r.Active() || secs <= 0 {
		return secs
	}
	used := min(secs, r.remaining)
	r.remaining -= used
	leftover := secs - used
	if r.remaining <= 0 {
		cb := r.onElapsed
		r.clear()
		if cb != nil {
			cb()
		}
	}
	return leftover
}

func (r *RestCoordinator) Active() bool { return r.handle != 0 }
func (r *RestCoordinator) Remaining() int { return r.remaining }
func (r *RestCoordinator) Duration() int { return r.duration }

func (r *RestCoordinator) clear() {
	r.handle = 0
	r.remaining = 0
	r.duration = 0
	r.onElapsed = nil
}
