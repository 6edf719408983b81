package domain

import "kucukaslan/tracker/models"

// PageLoadRequest starts a page view
type PageLoadRequest struct {
	URL string `json:"url" example:"https://shop.example.com/products/42"`
	// data-* attributes of the embedding script element
	Attributes map[string]string `json:"attributes" swaggertype:"object,string" example:"data-tracking-id:shop,data-interval:5000"`
	Facts      models.Facts      `json:"facts"`
	// document content present at load, used to find existing videos
	Nodes []models.Node `json:"nodes"`
}

// SignalBatchRequest carries several raw signals in capture order
type SignalBatchRequest struct {
	Signals []models.Signal `json:"signals"`
}

// CustomEventRequest is analytics.track(eventName, properties)
type CustomEventRequest struct {
	EventName  string         `json:"event_name" example:"newsletter_signup"`
	Properties map[string]any `json:"properties" swaggertype:"object"`
}

// ProductViewRequest is analytics.trackProductView(...)
type ProductViewRequest struct {
	ProductID   string  `json:"product_id" example:"prod-789"`
	ProductName string  `json:"product_name" example:"Noise cancelling headphones"`
	Price       float64 `json:"price" example:"129.99"`
	Category    string  `json:"category" example:"electronics"`
}

// PurchaseRequest is analytics.trackPurchase(...). Currency defaults to USD.
type PurchaseRequest struct {
	OrderID  string           `json:"order_id" example:"ord-1001"`
	Items    []map[string]any `json:"items" swaggertype:"array,object"`
	Total    float64          `json:"total" example:"259.98"`
	Currency string           `json:"currency" example:"USD"`
}

// CartAddRequest is analytics.trackCartAdd(...). Quantity defaults to 1.
type CartAddRequest struct {
	ProductID   string  `json:"product_id" example:"prod-789"`
	ProductName string  `json:"product_name" example:"Noise cancelling headphones"`
	Price       float64 `json:"price" example:"129.99"`
	Quantity    int     `json:"quantity" example:"1"`
}

type CartRemoveRequest struct {
	ProductID string `json:"product_id" example:"prod-789"`
}

type CheckoutStepRequest struct {
	Step     int    `json:"step" example:"2"`
	StepName string `json:"step_name" example:"shipping"`
}

// MetricRequest queries delivered events in the ClickHouse sink
type MetricRequest struct {
	Type       *string `query:"type" example:"page_view"`
	TrackingID *string `query:"tracking_id" example:"shop"`
	From       *int64  `query:"from" example:"1700000000"`
	To         *int64  `query:"to" example:"1700003600"`
	GroupBy    *string `query:"group_by" example:"hour"`
}
