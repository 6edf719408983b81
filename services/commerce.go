package services

import "kucukaslan/tracker/domain"

// DefaultCurrency is used by TrackPurchase when none is given.
const DefaultCurrency = "USD"

// Track sends a custom_event. Nil properties are sent as an empty object.
func (t *Tracker) Track(eventName string, properties map[string]any) {
	if properties == nil {
		properties = map[string]any{}
	}
	t.api(domain.KindCustom, map[string]any{
		"event_name": eventName,
		"properties": properties,
	})
}

func (t *Tracker) TrackProductView(productID, productName string, price float64, category string) {
	t.api(domain.KindProductView, map[string]any{
		"product_id":   productID,
		"product_name": productName,
		"price":        price,
		"category":     category,
		"page_url":     t.page.URL(),
	})
}

// TrackPurchase sends a purchase; an empty currency means USD.
func (t *Tracker) TrackPurchase(orderID string, items []map[string]any, total float64, currency string) {
	if currency == "" {
		currency = DefaultCurrency
	}
	if items == nil {
		items = []map[string]any{}
	}
	t.api(domain.KindPurchase, map[string]any{
		"order_id": orderID,
		"items":    items,
		"total":    total,
		"currency": currency,
	})
}

// TrackCartAdd sends a cart_add; a quantity below 1 means 1.
func (t *Tracker) TrackCartAdd(productID, productName string, price float64, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	t.api(domain.KindCartAdd, map[string]any{
		"product_id":   productID,
		"product_name": productName,
		"price":        price,
		"quantity":     quantity,
	})
}

func (t *Tracker) TrackCartRemove(productID string) {
	t.api(domain.KindCartRemove, map[string]any{"product_id": productID})
}

func (t *Tracker) TrackCheckoutStep(step int, stepName string) {
	t.api(domain.KindCheckoutStep, map[string]any{
		"step":      step,
		"step_name": stepName,
	})
}

// api sends a programmatic event on the immediate path. Calls after unload
// are dropped like any other late capture.
func (t *Tracker) api(kind domain.EventKind, fields map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.unloaded {
		return
	}
	t.send(kind, fields)
}
