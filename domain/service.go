package domain

import (
	"context"
	"errors"

	"kucukaslan/tracker/models"
)

// ErrNoPageView is returned when a call needs a page view and none is active
var ErrNoPageView = errors.New("no active page view")

type TrackerService interface {
	StartPage(ctx context.Context, req *PageLoadRequest) (*PageResponse, error)
	Signal(ctx context.Context, signal *models.Signal) (*TrackResponse, error)
	Signals(ctx context.Context, req *SignalBatchRequest) (*TrackResponse, error)
	Unload(ctx context.Context) (*TrackResponse, error)

	Track(ctx context.Context, req *CustomEventRequest) (*TrackResponse, error)
	TrackProductView(ctx context.Context, req *ProductViewRequest) (*TrackResponse, error)
	TrackPurchase(ctx context.Context, req *PurchaseRequest) (*TrackResponse, error)
	TrackCartAdd(ctx context.Context, req *CartAddRequest) (*TrackResponse, error)
	TrackCartRemove(ctx context.Context, req *CartRemoveRequest) (*TrackResponse, error)
	TrackCheckoutStep(ctx context.Context, req *CheckoutStepRequest) (*TrackResponse, error)

	Stats(ctx context.Context) (*StatsResponse, error)
}

// HealthChecker reports one dependency's health
type HealthChecker interface {
	Name() string
	HealthCheck(ctx context.Context) error
}

// MetricsService aggregates events stored by the ClickHouse sink
type MetricsService interface {
	GetMetrics(ctx context.Context, req *MetricRequest) (*MetricResponse, error)
}
