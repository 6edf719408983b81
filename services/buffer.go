package services

import (
	"sync"
	"time"

	"kucukaslan/tracker/domain"
)

// Category names a buffer; the name is also the periodic_events field.
type Category string

const (
	LinkClicks       Category = "linkClicks"
	VideoEvents      Category = "videoEvents"
	MouseClicks      Category = "mouseClicks"
	MouseMovements   Category = "mouseMovements"
	FormSubmissions  Category = "formSubmissions"
	ScrollEvents     Category = "scrollEvents"
	FormInteractions Category = "formInteractions"
)

// Categories lists every buffer in payload order.
var Categories = []Category{
	LinkClicks,
	VideoEvents,
	MouseClicks,
	MouseMovements,
	FormSubmissions,
	ScrollEvents,
	FormInteractions,
}

// EventBuffer accumulates low urgency events between periodic flushes. Order
// is kept within a category only. The click counter is cumulative for the
// page view and survives Drain.
type EventBuffer struct {
	mu         sync.Mutex
	events     map[Category][]domain.Event
	clickCount int
}

func NewEventBuffer() *EventBuffer {
	return &EventBuffer{events: make(map[Category][]domain.Event, len(Categories))}
}

func (b *EventBuffer) Append(c Category, e domain.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[c] = append(b.events[c], e)
}

// CountClick increments the click counter and returns the new value.
func (b *EventBuffer) CountClick() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clickCount++
	return b.clickCount
}

func (b *EventBuffer) ClickCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clickCount
}

// Sizes returns the number of events held per category.
func (b *EventBuffer) Sizes() map[Category]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	sizes := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		sizes[c] = len(b.events[c])
	}
	return sizes
}

// Batch is the content of one drained buffer set.
type Batch struct {
	Events     map[Category][]domain.Event
	ClickCount int
}

// Drain takes every buffered event and leaves all categories empty in one
// step. ok is false when nothing was buffered; the buffer is untouched then.
func (b *EventBuffer) Drain() (batch Batch, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	empty := true
	for _, events := range b.events {
		if len(events) > 0 {
			empty = false
			break
		}
	}
	if empty {
		return Batch{}, false
	}

	batch = Batch{Events: b.events, ClickCount: b.clickCount}
	b.events = make(map[Category][]domain.Event, len(Categories))
	return batch, true
}

// Len is the total number of events in the batch.
func (bt Batch) Len() int {
	n := 0
	for _, events := range bt.Events {
		n += len(events)
	}
	return n
}

// Fields renders the batch as periodic_events fields. Every category is
// present; an empty one is an empty array, never null.
func (bt Batch) Fields() map[string]any {
	fields := make(map[string]any, len(Categories)+1)
	for _, c := range Categories {
		items := make([]domain.Payload, 0, len(bt.Events[c]))
		for _, e := range bt.Events[c] {
			items = append(items, e.Payload())
		}
		fields[string(c)] = items
	}
	fields["clickCount"] = bt.ClickCount
	return fields
}

// Event packages the batch into one periodic_events event.
func (bt Batch) Event(ts time.Time) domain.Event {
	return domain.NewEvent(domain.KindPeriodic, bt.Fields(), ts)
}
