package stream

import "time"

// debouncer counts nodes appended since the last checkpoint and asks for a
// flush when the window expires or the buffer fills. A flush is held back
// while ready reports false and retried once it turns true.
type debouncer struct {
	cfg      Config
	pending  int
	deferred bool
	timer    *time.Timer
	timerCh  <-chan time.Time
	ready    func() bool
	flushFn  func(nodes int)
}

func newDebouncer(cfg Config, ready func() bool, flushFn func(int)) *debouncer {
	cfg.defaults()
	return &debouncer{cfg: cfg, ready: ready, flushFn: flushFn}
}

// add records n new nodes. Returns true if an immediate flush was triggered
// (buffer full).
func (d *debouncer) add(n int) bool {
	if n == 0 {
		return false
	}
	d.pending += n

	if d.pending >= d.cfg.MaxBuffer && d.flush() {
		return true
	}

	// (Re)start the window timer.
	d.stopTimer()
	d.timer = time.NewTimer(d.cfg.Window)
	d.timerCh = d.timer.C
	return false
}

// timerC returns the channel that fires when the debounce window expires.
func (d *debouncer) timerC() <-chan time.Time {
	return d.timerCh
}

// flush emits the pending count and resets. It reports false when ready
// held it back; the flush then stays owed until retry succeeds.
func (d *debouncer) flush() bool {
	if d.pending == 0 {
		d.stopTimer()
		return false
	}
	if !d.ready() {
		d.deferred = true
		d.stopTimer()
		return false
	}
	d.flushFn(d.pending)
	d.pending = 0
	d.deferred = false
	d.stopTimer()
	return true
}

// retry runs a flush that was held back, if ready now allows it.
func (d *debouncer) retry() {
	if d.deferred && d.ready() {
		d.flush()
	}
}

func (d *debouncer) stopTimer() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
		d.timerCh = nil
	}
}
