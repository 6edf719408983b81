package api

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"kucukaslan/tracker/domain"
	"kucukaslan/tracker/models"
	"kucukaslan/tracker/services"
	"kucukaslan/tracker/validations"

	"github.com/gofiber/fiber/v2"
)

var _ TrackerHandler = &trackerHandler{nil}

type trackerHandler struct {
	trackerService domain.TrackerService
}

func NewTrackerHandler(trackerService domain.TrackerService) TrackerHandler {
	return &trackerHandler{trackerService: trackerService}
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoPageView):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrUnknownVideo):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidSignal):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// StartPage handles a page load
// @Summary Start a page view
// @Description Start tracking a page view. A previous page view is unloaded first. The page_load and page_view events are sent once geolocation settles.
// @Tags Page
// @Accept json
// @Produce json
// @Param page body domain.PageLoadRequest true "Page facts, data-* attributes and initial document nodes"
// @Success 200 {object} domain.PageResponse "Page view started"
// @Failure 400 {object} domain.PageResponse "Invalid request"
// @Failure 500 {object} domain.PageResponse "Internal server error"
// @Router /page [post]
func (h trackerHandler) StartPage(ctx *fiber.Ctx) error {
	var req domain.PageLoadRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(domain.PageResponse{
			Success: false,
			Message: "Invalid request body: " + err.Error(),
		})
	}

	if err := validations.ValidatePageLoadRequest(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(domain.PageResponse{
			Success: false,
			Message: "Validation failed: " + err.Error(),
		})
	}

	resp, err := h.trackerService.StartPage(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(domain.PageResponse{
			Success: false,
			Message: err.Error(),
		})
	}
	return ctx.Status(fiber.StatusOK).JSON(resp)
}

// UnloadPage handles the page teardown
// @Summary Unload the page view
// @Description Run the beforeunload path: page_unload and buffered events are sent through the beacon and every listener is detached
// @Tags Page
// @Produce json
// @Success 200 {object} domain.TrackResponse "Page view unloaded"
// @Failure 409 {object} domain.TrackResponse "No active page view"
// @Router /page/unload [post]
func (h trackerHandler) UnloadPage(ctx *fiber.Ctx) error {
	resp, err := h.trackerService.Unload(ctx.Context())
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(resp)
	}
	return ctx.Status(fiber.StatusOK).JSON(resp)
}

// PostSignal handles one raw browser signal
// @Summary Post a browser signal
// @Description Deliver one raw browser event (click, mousemove, scroll, submit, focusin, input, visibilitychange, online, offline, beforeunload, play, pause, ended, timeupdate, mutation, navigate)
// @Tags Signals
// @Accept json
// @Produce json
// @Param signal body models.Signal true "Raw signal"
// @Success 200 {object} domain.TrackResponse "Signal accepted"
// @Failure 400 {object} domain.TrackResponse "Invalid signal"
// @Failure 404 {object} domain.TrackResponse "Unknown video"
// @Failure 409 {object} domain.TrackResponse "No active page view"
// @Router /signals [post]
func (h trackerHandler) PostSignal(ctx *fiber.Ctx) error {
	var signal models.Signal
	if err := ctx.BodyParser(&signal); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(domain.TrackResponse{
			Success: false,
			Message: "Invalid request body: " + err.Error(),
		})
	}

	if err := validations.ValidateSignal(&signal); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(domain.TrackResponse{
			Success: false,
			Message: "Validation failed: " + err.Error(),
		})
	}

	resp, err := h.trackerService.Signal(ctx.Context(), &signal)
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(resp)
	}
	return ctx.Status(fiber.StatusOK).JSON(resp)
}

// PostSignals handles several raw browser signals
// @Summary Post browser signals in bulk
// @Description Deliver raw browser events in capture order. Processing stops at the first signal that fails.
// @Tags Signals
// @Accept json
// @Produce json
// @Param signals body domain.SignalBatchRequest true "Raw signals"
// @Success 200 {object} domain.TrackResponse "Signals accepted"
// @Failure 400 {object} domain.TrackResponse "Invalid signal"
// @Failure 404 {object} domain.TrackResponse "Unknown video"
// @Failure 409 {object} domain.TrackResponse "No active page view"
// @Router /signals/batch [post]
func (h trackerHandler) PostSignals(ctx *fiber.Ctx) error {
	var req domain.SignalBatchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(domain.TrackResponse{
			Success: false,
			Message: "Invalid request body: " + err.Error(),
		})
	}

	if err := validations.ValidateSignalBatchRequest(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(domain.TrackResponse{
			Success: false,
			Message: "Validation failed: " + err.Error(),
		})
	}

	resp, err := h.trackerService.Signals(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(resp)
	}
	return ctx.Status(fiber.StatusOK).JSON(resp)
}

// GetStats returns diagnostics for the current page view
// @Summary Page view diagnostics
// @Description Buffer sizes, click count, remaining scroll milestones, tracked videos and delivery queue state
// @Tags Page
// @Produce json
// @Success 200 {object} domain.StatsResponse "Stats retrieved successfully"
// @Failure 409 {object} domain.StatsResponse "No active page view"
// @Router /stats [get]
func (h trackerHandler) GetStats(ctx *fiber.Ctx) error {
	resp, err := h.trackerService.Stats(ctx.Context())
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(resp)
	}
	return ctx.Status(fiber.StatusOK).JSON(resp)
}

// TrackCustom handles analytics.track
// @Summary Track a custom event
// @Tags Track
// @Accept json
// @Produce json
// @Param event body domain.CustomEventRequest true "Event name and properties"
// @Success 200 {object} domain.TrackResponse "Event accepted"
// @Failure 400 {object} domain.TrackResponse "Invalid request"
// @Failure 409 {object} domain.TrackResponse "No active page view"
// @Router /track/custom [post]
func (h trackerHandler) TrackCustom(ctx *fiber.Ctx) error {
	return track(ctx, validations.ValidateCustomEventRequest, h.trackerService.Track)
}

// TrackProductView handles analytics.trackProductView
// @Summary Track a product view
// @Tags Track
// @Accept json
// @Produce json
// @Param event body domain.ProductViewRequest true "Product"
// @Success 200 {object} domain.TrackResponse "Event accepted"
// @Failure 400 {object} domain.TrackResponse "Invalid request"
// @Failure 409 {object} domain.TrackResponse "No active page view"
// @Router /track/product-view [post]
func (h trackerHandler) TrackProductView(ctx *fiber.Ctx) error {
	return track(ctx, validations.ValidateProductViewRequest, h.trackerService.TrackProductView)
}

// TrackPurchase handles analytics.trackPurchase
// @Summary Track a purchase
// @Description Currency defaults to USD
// @Tags Track
// @Accept json
// @Produce json
// @Param event body domain.PurchaseRequest true "Order"
// @Success 200 {object} domain.TrackResponse "Event accepted"
// @Failure 400 {object} domain.TrackResponse "Invalid request"
// @Failure 409 {object} domain.TrackResponse "No active page view"
// @Router /track/purchase [post]
func (h trackerHandler) TrackPurchase(ctx *fiber.Ctx) error {
	return track(ctx, validations.ValidatePurchaseRequest, h.trackerService.TrackPurchase)
}

// TrackCartAdd handles analytics.trackCartAdd
// @Summary Track an add to cart
// @Description Quantity defaults to 1
// @Tags Track
// @Accept json
// @Produce json
// @Param event body domain.CartAddRequest true "Cart line"
// @Success 200 {object} domain.TrackResponse "Event accepted"
// @Failure 400 {object} domain.TrackResponse "Invalid request"
// @Failure 409 {object} domain.TrackResponse "No active page view"
// @Router /track/cart-add [post]
func (h trackerHandler) TrackCartAdd(ctx *fiber.Ctx) error {
	return track(ctx, validations.ValidateCartAddRequest, h.trackerService.TrackCartAdd)
}

// TrackCartRemove handles analytics.trackCartRemove
// @Summary Track a removal from the cart
// @Tags Track
// @Accept json
// @Produce json
// @Param event body domain.CartRemoveRequest true "Product"
// @Success 200 {object} domain.TrackResponse "Event accepted"
// @Failure 400 {object} domain.TrackResponse "Invalid request"
// @Failure 409 {object} domain.TrackResponse "No active page view"
// @Router /track/cart-remove [post]
func (h trackerHandler) TrackCartRemove(ctx *fiber.Ctx) error {
	return track(ctx, validations.ValidateCartRemoveRequest, h.trackerService.TrackCartRemove)
}

// TrackCheckoutStep handles analytics.trackCheckoutStep
// @Summary Track a checkout step
// @Tags Track
// @Accept json
// @Produce json
// @Param event body domain.CheckoutStepRequest true "Step"
// @Success 200 {object} domain.TrackResponse "Event accepted"
// @Failure 400 {object} domain.TrackResponse "Invalid request"
// @Failure 409 {object} domain.TrackResponse "No active page view"
// @Router /track/checkout-step [post]
func (h trackerHandler) TrackCheckoutStep(ctx *fiber.Ctx) error {
	return track(ctx, validations.ValidateCheckoutStepRequest, h.trackerService.TrackCheckoutStep)
}

// track parses, validates and forwards one programmatic API call
func track[R any](ctx *fiber.Ctx, validate func(*R) error, call func(context.Context, *R) (*domain.TrackResponse, error)) error {
	var req R
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(domain.TrackResponse{
			Success: false,
			Message: "Invalid request body: " + err.Error(),
		})
	}

	if err := validate(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(domain.TrackResponse{
			Success: false,
			Message: "Validation failed: " + err.Error(),
		})
	}

	resp, err := call(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(resp)
	}
	return ctx.Status(fiber.StatusOK).JSON(resp)
}

var _ MetricsHandler = &metricsHandler{nil}

type metricsHandler struct {
	metricsService domain.MetricsService
}

func NewMetricsHandler(metricsService domain.MetricsService) MetricsHandler {
	return &metricsHandler{metricsService: metricsService}
}

// GetMetrics retrieves aggregated metrics
// @Summary GET aggregated metrics
// @Description Query aggregated counts of events stored by the ClickHouse sink. Only served when TRACKER_SINK=clickhouse.
// @Tags Metrics
// @Produce json
// @Param type query string false "Event type filter"
// @Param tracking_id query string false "Tracking id filter"
// @Param from query int false "Start timestamp (Unix seconds)"
// @Param to query int false "End timestamp (Unix seconds)"
// @Param group_by query string false "Group by field (hour, day, week, month, type, tracking_id, session_id, user_id, url)"
// @Success 200 {object} domain.MetricResponse "Metrics retrieved successfully"
// @Failure 400 {object} domain.MetricResponse "Invalid request"
// @Failure 500 {object} domain.MetricResponse "Internal server error"
// @Router /metrics [get]
func (m metricsHandler) GetMetrics(ctx *fiber.Ctx) error {
	var req domain.MetricRequest

	if kind := ctx.Query("type"); kind != "" {
		req.Type = &kind
	}
	if trackingID := ctx.Query("tracking_id"); trackingID != "" {
		req.TrackingID = &trackingID
	}

	if fromStr := ctx.Query("from"); fromStr != "" {
		from, err := strconv.ParseInt(fromStr, 10, 64)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(domain.MetricResponse{
				Success: false,
				Message: "Invalid 'from' parameter: " + err.Error(),
			})
		}
		req.From = &from
	}

	if toStr := ctx.Query("to"); toStr != "" {
		to, err := strconv.ParseInt(toStr, 10, 64)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(domain.MetricResponse{
				Success: false,
				Message: "Invalid 'to' parameter: " + err.Error(),
			})
		}
		req.To = &to
	}

	if groupBy := strings.TrimSpace(ctx.Query("group_by")); groupBy != "" {
		req.GroupBy = &groupBy
	}

	if err := validations.ValidateMetricRequest(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(domain.MetricResponse{
			Success: false,
			Message: "Validation failed: " + err.Error(),
		})
	}

	resp, err := m.metricsService.GetMetrics(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(domain.MetricResponse{
			Success: false,
			Message: "Internal server error: " + err.Error(),
		})
	}
	return ctx.Status(fiber.StatusOK).JSON(resp)
}
