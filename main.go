package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kucukaslan/tracker/api"
	"kucukaslan/tracker/buildinfo"
	"kucukaslan/tracker/config"
	"kucukaslan/tracker/database"
	"kucukaslan/tracker/delivery"
	"kucukaslan/tracker/domain"
	"kucukaslan/tracker/identity"
	"kucukaslan/tracker/services"

	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "kucukaslan/tracker/docs" // Import generated docs

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// @title Behavioral Tracker Agent API
// @version 1.0
// @description Page view capture, programmatic tracking and delivery of behavioral telemetry
// @BasePath /
// @schemes http

const (
	idleTimeout     = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	// Set application start time for accurate uptime tracking
	buildinfo.SetStartTime(time.Now())

	log.Printf("Starting %s", buildinfo.GetInfo())

	cfg := config.Load()

	var (
		checkers    []domain.HealthChecker
		redisReady  bool
		sqliteStore *database.SQLiteStore
		persistent  identity.Store
	)

	// Persistent identity tier
	switch cfg.Identity.Store {
	case "redis":
		if err := database.InitRedis(&cfg.Redis); err != nil {
			log.Fatalf("Failed to initialize Redis identity store: %v", err)
		}
		redisReady = true
		checkers = append(checkers, database.RedisChecker())
		persistent = database.GetRedisIdentityStore(cfg.Identity.RedisKeyTTLS)
	default:
		store, err := database.NewSQLiteStore(cfg.Identity.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite identity store: %v", err)
		}
		sqliteStore = store
		checkers = append(checkers, store)
		persistent = store
	}

	deps := services.AgentDeps{
		PersistentStore: persistent,
		UserAgent:       buildinfo.UserAgent(),
	}

	// Delivery sink. The default posts every payload to the page's endpoint.
	var sink *database.ClickHouseSink
	if cfg.Delivery.Sink == "clickhouse" {
		if err := database.InitClickHouse(&cfg.ClickHouse); err != nil {
			log.Fatalf("Failed to initialize ClickHouse: %v", err)
		}
		checkers = append(checkers, database.ClickHouseChecker())

		// Redis only deduplicates redeliveries, the sink works without it
		if !redisReady {
			if err := database.InitRedis(&cfg.Redis); err != nil {
				log.Printf("Redis unavailable, ClickHouse sink runs without deduplication: %v", err)
			} else {
				redisReady = true
				checkers = append(checkers, database.RedisChecker())
			}
		}
		var deliveryLog database.DeliveryLog
		if redisReady {
			deliveryLog = database.GetRedisClient(cfg.ClickHouse.DedupTTL)
		}

		sink = database.NewClickHouseSink(
			cfg.ClickHouse.BufferChannelCapacity,
			cfg.ClickHouse.BatchSize,
			time.Duration(cfg.ClickHouse.FlushIntervalSeconds)*time.Second,
			database.GetClickHouseDB(),
			deliveryLog,
		)
		sink.Start()

		deps.Transport = sink
		deps.Beacon = &delivery.AsyncBeacon{Transport: sink, Timeout: cfg.Delivery.SendTimeout()}
	}

	trackerService, err := services.NewTrackerService(cfg, deps)
	if err != nil {
		log.Fatalf("Failed to initialize TrackerService: %v", err)
	}

	app := fiber.New(fiber.Config{
		IdleTimeout: idleTimeout,
	})

	app.Use(recover.New())

	// redirect to swagger docs
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/swagger/", fiber.StatusMovedPermanently)
	})

	app.Get("/health", api.NewHealthHandler(checkers...).HealthCheck)

	app.Get("/swagger/*", swagger.HandlerDefault)

	api.Register(app, api.NewTrackerHandler(trackerService))

	if sink != nil {
		metricsService, err := services.NewMetricsService(database.GetClickHouseDB())
		if err != nil {
			log.Fatalf("Failed to initialize MetricsService: %v", err)
		}
		app.Get("/metrics", api.NewMetricsHandler(metricsService).GetMetrics)
	}

	// Listen from a different goroutine
	go func() {
		if err := app.Listen(cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c // blocks until an interrupt is received
	fmt.Println("Gracefully shutting down...")
	_ = app.Shutdown()

	fmt.Println("Running cleanup tasks...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Unload the active page view and wait for its beacons
	if err := services.ShutdownTrackerService(ctx, trackerService); err != nil {
		log.Printf("Error shutting down tracker service: %v", err)
	}

	// Insert whatever the sink still holds
	if sink != nil {
		if err := sink.Shutdown(); err != nil {
			log.Printf("Error shutting down ClickHouse sink: %v", err)
		}
	}

	if err := database.CloseClickHouse(); err != nil {
		log.Printf("Error closing ClickHouse: %v", err)
	}

	if err := database.CloseRedis(); err != nil {
		log.Printf("Error closing Redis: %v", err)
	}

	if sqliteStore != nil {
		if err := sqliteStore.Close(); err != nil {
			log.Printf("Error closing SQLite: %v", err)
		}
	}

	fmt.Println("Tracker agent was successfully shut down.")
}
