package relay

import "time"

// Window is the current rate-limiting epoch: when it started and how many
// lines have been admitted since.
type Window struct {
	start    time.Time
	admitted uint64
}

func newWindow(now time.Time) Window {
	return Window{start: now}
}

// Start returns the time the current window began.
func (w *Window) Start() time.Time {
	return w.start
}

// Admitted returns the number of lines admitted in the current window.
func (w *Window) Admitted() uint64 {
	return w.admitted
}

// elapsedSeconds truncates to whole seconds. A clock that moved backwards
// counts as zero elapsed time.
func (w *Window) elapsedSeconds(now time.Time) uint64 {
	d := now.Sub(w.start)
	if d < 0 {
		return 0
	}
	return uint64(d / time.Second)
}

// roll starts a new window at now if at least length seconds have elapsed
// since the current one began. It reports whether a rollover happened.
func (w *Window) roll(now time.Time, length uint64) bool {
	if w.elapsedSeconds(now) < length {
		return false
	}
	w.start = now
	w.admitted = 0
	return true
}

func (w *Window) admit() {
	w.admitted++
}
