package capture

import (
	"slices"
	"sync"
)

// MediaEvent is a media element event name.
type MediaEvent string

const (
	MediaPlay       MediaEvent = "play"
	MediaPause      MediaEvent = "pause"
	MediaEnded      MediaEvent = "ended"
	MediaTimeUpdate MediaEvent = "timeupdate"
)

// Video is a <video> element with per-element listeners.
type Video interface {
	Element
	Src() string
	CurrentSrc() string
	Duration() float64
	CurrentTime() float64
	On(event MediaEvent, fn func()) Subscription
}

// VideoNode is the in-memory Video used by the agent and tests. Playback state
// is pushed in through Emit.
type VideoNode struct {
	*Node

	mu          sync.RWMutex
	currentSrc  string
	duration    float64
	currentTime float64
	nextID      int
	listeners   map[MediaEvent][]mediaListener
}

type mediaListener struct {
	id int
	fn func()
}

var _ Video = (*VideoNode)(nil)

// NewVideo returns a video element with the given key and src attribute.
func NewVideo(key, src string) *VideoNode {
	return &VideoNode{
		Node: &Node{
			NodeKey:    key,
			Tag:        "video",
			Attributes: map[string]string{"src": src},
		},
		listeners: make(map[MediaEvent][]mediaListener),
	}
}

func (v *VideoNode) Src() string { return v.Attr("src") }

func (v *VideoNode) CurrentSrc() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.currentSrc
}

func (v *VideoNode) Duration() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.duration
}

func (v *VideoNode) CurrentTime() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.currentTime
}

// SetSource records the resolved source, used when src is empty.
func (v *VideoNode) SetSource(currentSrc string) {
	v.mu.Lock()
	v.currentSrc = currentSrc
	v.mu.Unlock()
}

func (v *VideoNode) On(event MediaEvent, fn func()) Subscription {
	v.mu.Lock()
	v.nextID++
	id := v.nextID
	v.listeners[event] = append(v.listeners[event], mediaListener{id: id, fn: fn})
	v.mu.Unlock()

	return detachOnce(func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.listeners[event] = slices.DeleteFunc(v.listeners[event], func(l mediaListener) bool { return l.id == id })
	})
}

// ListenerCount is the number of listeners attached for event.
func (v *VideoNode) ListenerCount(event MediaEvent) int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.listeners[event])
}

// Emit updates the playback position and runs the listeners for event in
// attachment order. A non-positive duration leaves the known duration as is.
func (v *VideoNode) Emit(event MediaEvent, currentTime, duration float64) {
	v.mu.Lock()
	v.currentTime = currentTime
	if duration > 0 {
		v.duration = duration
	}
	fns := make([]func(), 0, len(v.listeners[event]))
	for _, l := range v.listeners[event] {
		fns = append(fns, l.fn)
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
