package api

import (
	"github.com/gofiber/fiber/v2"
)

type TrackerHandler interface {
	StartPage(ctx *fiber.Ctx) error
	UnloadPage(ctx *fiber.Ctx) error
	PostSignal(ctx *fiber.Ctx) error
	PostSignals(ctx *fiber.Ctx) error
	GetStats(ctx *fiber.Ctx) error

	TrackCustom(ctx *fiber.Ctx) error
	TrackProductView(ctx *fiber.Ctx) error
	TrackPurchase(ctx *fiber.Ctx) error
	TrackCartAdd(ctx *fiber.Ctx) error
	TrackCartRemove(ctx *fiber.Ctx) error
	TrackCheckoutStep(ctx *fiber.Ctx) error
}

type MetricsHandler interface {
	GetMetrics(ctx *fiber.Ctx) error
}

// Register mounts the tracker routes on router
func Register(router fiber.Router, h TrackerHandler) {
	router.Post("/page", h.StartPage)
	router.Post("/page/unload", h.UnloadPage)
	router.Post("/signals", h.PostSignal)
	router.Post("/signals/batch", h.PostSignals)
	router.Get("/stats", h.GetStats)

	track := router.Group("/track")
	track.Post("/custom", h.TrackCustom)
	track.Post("/product-view", h.TrackProductView)
	track.Post("/purchase", h.TrackPurchase)
	track.Post("/cart-add", h.TrackCartAdd)
	track.Post("/cart-remove", h.TrackCartRemove)
	track.Post("/checkout-step", h.TrackCheckoutStep)
}
