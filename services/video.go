package services

import (
	"kucukaslan/tracker/capture"
	"kucukaslan/tracker/domain"
)

// attachVideoTrackingLocked tracks the videos already in the document and
// watches for inserted ones. The watch is detached with the other listeners.
func (t *Tracker) attachVideoTrackingLocked() {
	for _, v := range t.document.Videos() {
		t.trackVideoLocked(v)
	}
	t.subs.Add(t.document.Observe(func(added []capture.Element) {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.unloaded {
			return
		}
		for _, node := range added {
			for _, v := range capture.VideosIn(node) {
				t.trackVideoLocked(v)
			}
		}
	}))
}

// trackVideoLocked attaches the media listeners once per element.
func (t *Tracker) trackVideoLocked(v capture.Video) {
	quartiles, fresh := t.videos.Track(v.Key())
	if !fresh {
		return
	}
	t.logger.Println("Tracking video", v.Key())

	src := v.Src()
	if src == "" {
		src = v.CurrentSrc()
	}
	if src == "" {
		src = "unknown"
	}
	fields := func(withTime bool) map[string]any {
		f := map[string]any{
			"video_src":      src,
			"video_duration": v.Duration(),
		}
		if withTime {
			f["current_time"] = v.CurrentTime()
		}
		return f
	}
	record := func(kind domain.EventKind, withTime bool) {
		t.buffer.Append(VideoEvents, t.event(kind, fields(withTime)))
	}

	t.subs.Add(v.On(capture.MediaPlay, t.locked(func() { record(domain.KindVideoPlay, true) })))
	t.subs.Add(v.On(capture.MediaPause, t.locked(func() { record(domain.KindVideoPause, true) })))
	t.subs.Add(v.On(capture.MediaEnded, t.locked(func() { record(domain.KindVideoComplete, false) })))
	t.subs.Add(v.On(capture.MediaTimeUpdate, t.locked(func() {
		duration := v.Duration()
		if duration <= 0 {
			return
		}
		percent := v.CurrentTime() / duration * 100
		for _, q := range quartiles.Advance(percent) {
			record(domain.VideoProgressKind(q), true)
		}
	})))
}

// locked wraps a media callback so it runs under the tracker lock and not
// after unload.
func (t *Tracker) locked(fn func()) func() {
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.unloaded {
			return
		}
		fn()
	}
}
