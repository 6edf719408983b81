package services

import (
	"context"

	"kucukaslan/tracker/capture"
	"kucukaslan/tracker/domain"
)

// isoMillis is the format of Date.prototype.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z"

// sendPageLoad waits for the geolocation lookup and then sends page_load
// followed by page_view. Capture runs meanwhile.
func (t *Tracker) sendPageLoad(ctx context.Context) {
	defer t.loadWG.Done()

	location := t.locator.Locate(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.unloaded {
		return
	}
	t.send(domain.KindPageLoad, map[string]any{"data": t.pageFacts(location)})
	t.send(domain.KindPageView, map[string]any{
		"page_url":   t.page.URL(),
		"page_title": t.page.Title(),
	})
}

func (t *Tracker) pageFacts(location map[string]any) map[string]any {
	facts := t.page.Facts()
	now := t.now()

	data := map[string]any{
		"url":               t.page.URL(),
		"referrer":          facts.Referrer,
		"title":             t.page.Title(),
		"screen_resolution": facts.Screen,
		"viewport":          facts.Viewport,
		"operating_system":  facts.Platform,
		"browser":           facts.UserAgent,
		"language":          facts.Language,
		"timezone":          facts.Timezone,
		"device_type":       capture.ClassifyFacts(facts),
		"location":          location,
		"session_id":        t.session.SessionID,
		"user_id":           t.session.UserID,
		"tracking_id":       t.session.TrackingID,
		"timestamp":         now.UTC().Format(isoMillis),
	}
	if facts.Connection != nil {
		data["network"] = *facts.Connection
	}
	if tm := facts.Timing; tm != nil {
		data["page_load_time"] = now.UnixMilli() - tm.NavigationStart
		data["performance"] = map[string]any{
			"dns_time":       tm.DomainLookupEnd - tm.DomainLookupStart,
			"connect_time":   tm.ConnectEnd - tm.ConnectStart,
			"response_time":  tm.ResponseEnd - tm.ResponseStart,
			"dom_load_time":  tm.DOMContentLoadedEventEnd - tm.NavigationStart,
			"page_load_time": tm.LoadEventEnd - tm.NavigationStart,
		}
	}
	return data
}
