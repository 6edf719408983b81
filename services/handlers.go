package services

import (
	"math"

	"kucukaslan/tracker/capture"
	"kucukaslan/tracker/domain"
)

// attachHandlersLocked registers one handler per signal kind. Immediate
// kinds go straight to the pipeline, high volume kinds into the buffer.
func (t *Tracker) attachHandlersLocked() {
	t.subs.Add(capture.On(t.registry, t.onSubmit))
	t.subs.Add(capture.On(t.registry, t.onClick))
	t.subs.Add(capture.On(t.registry, t.onMouseMove))
	t.subs.Add(capture.On(t.registry, t.onScroll))
	t.subs.Add(capture.On(t.registry, t.onFocusIn))
	t.subs.Add(capture.On(t.registry, t.onInput))
	t.subs.Add(capture.On(t.registry, t.onVisibilityChange))
	t.subs.Add(capture.On(t.registry, func(capture.Online) { t.pipeline.SetOnline(true) }))
	t.subs.Add(capture.On(t.registry, func(capture.Offline) { t.pipeline.SetOnline(false) }))
	t.subs.Add(capture.On(t.registry, func(capture.Unload) { t.unloadLocked() }))
}

func (t *Tracker) onSubmit(s capture.Submit) {
	if s.Form == nil {
		return
	}
	fields := capture.FormFields(s.Form, t.page.URL())
	t.buffer.Append(FormSubmissions, t.event(domain.KindFormSubmit, fields))
	t.send(domain.KindFormSubmit, fields)
}

func (t *Tracker) onClick(c capture.Click) {
	t.buffer.CountClick()
	pageURL := t.page.URL()

	if a := capture.Closest(c.Target, capture.IsTag("a")); a != nil {
		download, fields := capture.LinkFields(a, pageURL)
		kind := domain.KindLinkClick
		if download {
			kind = domain.KindFileDownload
		}
		t.buffer.Append(LinkClicks, t.event(kind, fields))
	}

	if b := capture.Closest(c.Target, capture.IsButton); b != nil {
		t.send(domain.KindButtonClick, capture.ButtonFields(b, pageURL))
	}

	t.buffer.Append(MouseClicks, t.event(domain.KindMouseClick, capture.ClickFields(c, pageURL)))
}

func (t *Tracker) onMouseMove(m capture.MouseMove) {
	now := t.now()
	if !t.sampler.Keep(now) {
		return
	}
	t.buffer.Append(MouseMovements, domain.NewEvent(domain.KindMouseMove, map[string]any{
		"x":        math.Round(m.X),
		"y":        math.Round(m.Y),
		"page_url": t.page.URL(),
	}, now))
}

func (t *Tracker) onScroll(s capture.Scroll) {
	state := s.State
	t.debouncer.Trigger(func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.unloaded {
			return
		}
		t.scrolledLocked(state)
	})
}

// scrolledLocked handles one debounced scroll: newly crossed milestones are
// sent at once, the sample itself is buffered. A page that cannot scroll
// has no depth, so its samples leave milestones and the maximum alone.
func (t *Tracker) scrolledLocked(state capture.ScrollState) {
	percent, scrollable := state.Percent()
	if scrollable {
		t.maxScroll = max(t.maxScroll, percent)

		pageURL := t.page.URL()
		for _, depth := range t.milestones.Cross(percent) {
			t.send(domain.KindScrollDepth, map[string]any{
				"depth":    depth,
				"page_url": pageURL,
			})
		}
	}

	t.buffer.Append(ScrollEvents, t.event(domain.KindScrollSample, map[string]any{
		"scroll_percent": percent,
		"scroll_top":     state.ScrollTop,
	}))
}

func (t *Tracker) onFocusIn(f capture.FocusIn) {
	if !capture.IsFormField(f.Target) {
		return
	}
	fields := capture.FieldFields(f.Target, t.page.URL(), false)
	t.buffer.Append(FormInteractions, t.event(domain.KindFormFocus, fields))
	t.send(domain.KindFormFocus, fields)
}

func (t *Tracker) onInput(in capture.Input) {
	if !capture.IsFormField(in.Target) {
		return
	}
	t.send(domain.KindFormInput, capture.FieldFields(in.Target, t.page.URL(), true))
}

func (t *Tracker) onVisibilityChange(v capture.VisibilityChange) {
	kind := domain.KindPageVisible
	if v.Hidden {
		kind = domain.KindPageHidden
	}
	t.send(kind, map[string]any{"page_url": t.page.URL()})
}
