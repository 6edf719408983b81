// Package milestone holds the one-shot progress detectors: scroll depth
// thresholds per page view and playback quartiles per video element.
package milestone

import (
	"slices"
	"sync"
)

// ScrollThresholds are the scroll depth milestones armed at page load.
var ScrollThresholds = []int{25, 50, 75, 100}

// VideoQuartileThresholds are the playback checkpoints tracked per video.
var VideoQuartileThresholds = []int{25, 50, 75}

// ScrollMilestones is the ordered set of thresholds not yet crossed. A
// threshold is removed permanently once crossed.
type ScrollMilestones struct {
	mu        sync.Mutex
	remaining []int
}

func NewScrollMilestones() *ScrollMilestones {
	return &ScrollMilestones{remaining: slices.Clone(ScrollThresholds)}
}

// Cross consumes every remaining threshold at or below percent and returns
// them in ascending order.
func (m *ScrollMilestones) Cross(percent int) []int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var crossed []int
	m.remaining = slices.DeleteFunc(m.remaining, func(threshold int) bool {
		if percent >= threshold {
			crossed = append(crossed, threshold)
			return true
		}
		return false
	})
	return crossed
}

// Remaining returns the thresholds still armed.
func (m *ScrollMilestones) Remaining() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.remaining)
}

// VideoQuartiles is the per-element VideoTrackState: q25, q50 and q75 are
// each set at most once and never reset, even when the video is replayed.
type VideoQuartiles struct {
	mu  sync.Mutex
	q25 bool
	q50 bool
	q75 bool
}

// Advance records playback at percent and returns the quartiles crossed for
// the first time, in ascending order.
func (q *VideoQuartiles) Advance(percent float64) []int {
	q.mu.Lock()
	defer q.mu.Unlock()

	var crossed []int
	for _, mark := range []struct {
		threshold int
		seen      *bool
	}{{25, &q.q25}, {50, &q.q50}, {75, &q.q75}} {
		if percent >= float64(mark.threshold) && !*mark.seen {
			*mark.seen = true
			crossed = append(crossed, mark.threshold)
		}
	}
	return crossed
}

// Seen reports which quartiles have fired.
func (q *VideoQuartiles) Seen() (q25, q50, q75 bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.q25, q.q50, q.q75
}

// VideoRegistry marks video elements as tracked so a repeated query or a
// duplicate mutation notification never attaches listeners twice.
type VideoRegistry struct {
	mu     sync.Mutex
	states map[string]*VideoQuartiles
}

func NewVideoRegistry() *VideoRegistry {
	return &VideoRegistry{states: make(map[string]*VideoQuartiles)}
}

// Track returns the element's state and true the first time key is seen;
// afterwards it returns the existing state and false.
func (r *VideoRegistry) Track(key string) (*VideoQuartiles, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.states[key]; ok {
		return st, false
	}
	st := &VideoQuartiles{}
	r.states[key] = st
	return st, true
}

// Len is the number of tracked elements.
func (r *VideoRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}
