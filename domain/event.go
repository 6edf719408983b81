package domain

import (
	"maps"
	"strconv"
	"time"
)

// EventKind tags an Event. The set is open; the constants below are the kinds
// the tracker itself produces.
type EventKind string

const (
	KindPageLoad      EventKind = "page_load"
	KindPageView      EventKind = "page_view"
	KindPageHidden    EventKind = "page_hidden"
	KindPageVisible   EventKind = "page_visible"
	KindPageUnload    EventKind = "page_unload"
	KindButtonClick   EventKind = "button_click"
	KindMouseClick    EventKind = "mouse_click"
	KindMouseMove     EventKind = "mouse_move"
	KindLinkClick     EventKind = "link_click"
	KindFileDownload  EventKind = "file_download"
	KindScrollDepth   EventKind = "scroll_depth"
	KindScrollSample  EventKind = "scroll_sample"
	KindFormFocus     EventKind = "form_focus"
	KindFormInput     EventKind = "form_input"
	KindFormSubmit    EventKind = "form_submit"
	KindVideoPlay     EventKind = "play"
	KindVideoPause    EventKind = "pause"
	KindVideoComplete EventKind = "complete"
	KindCustom        EventKind = "custom_event"
	KindPeriodic      EventKind = "periodic_events"
	KindProductView   EventKind = "product_view"
	KindPurchase      EventKind = "purchase"
	KindCartAdd       EventKind = "cart_add"
	KindCartRemove    EventKind = "cart_remove"
	KindCheckoutStep  EventKind = "checkout_step"
)

const kindProgressPrefix = "progress_"

// VideoProgressKind returns the kind for a crossed playback quartile, e.g. progress_25.
func VideoProgressKind(quartile int) EventKind {
	return EventKind(kindProgressPrefix + strconv.Itoa(quartile))
}

// Payload is the JSON object sent to the ingestion endpoint.
type Payload map[string]any

// Event is an immutable record produced by the capture layer or the
// programmatic API. Fields holds the event specific data only; identity is
// stamped by the delivery pipeline.
type Event struct {
	kind      EventKind
	fields    map[string]any
	timestamp time.Time
}

// NewEvent copies fields so later mutation by the caller cannot leak in.
func NewEvent(kind EventKind, fields map[string]any, ts time.Time) Event {
	return Event{kind: kind, fields: maps.Clone(fields), timestamp: ts}
}

func (e Event) Kind() EventKind { return e.kind }

// Fields returns a copy of the event specific fields.
func (e Event) Fields() map[string]any {
	return maps.Clone(e.fields)
}

// Payload renders the event as a fresh outbound object carrying type and a
// millisecond ts. Event fields never overwrite type.
func (e Event) Payload() Payload {
	p := make(Payload, len(e.fields)+2)
	maps.Copy(p, e.fields)
	p["type"] = string(e.kind)
	if _, ok := p["ts"]; !ok {
		p["ts"] = e.timestamp.UnixMilli()
	}
	return p
}
