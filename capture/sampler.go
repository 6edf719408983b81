package capture

import (
	"sync"
	"time"
)

// Sampler is the two stage mouse movement filter: only every Nth raw movement
// is considered, and of those only one per window is kept.
type Sampler struct {
	every  int
	window time.Duration
	count  int
	last   time.Time
}

// NewMouseSampler keeps at most one of every 10 movements per 500ms.
func NewMouseSampler() *Sampler {
	return NewSampler(10, 500*time.Millisecond)
}

func NewSampler(every int, window time.Duration) *Sampler {
	if every < 1 {
		every = 1
	}
	return &Sampler{every: every, window: window}
}

// Keep counts one raw movement at now and reports whether it is retained.
func (s *Sampler) Keep(now time.Time) bool {
	s.count++
	if s.count%s.every != 0 {
		return false
	}
	if !s.last.IsZero() && now.Sub(s.last) <= s.window {
		return false
	}
	s.last = now
	return true
}

// Debouncer runs the most recently triggered function once no new trigger
// arrived for delay.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	stopped bool
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels a pending call and ignores later triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
