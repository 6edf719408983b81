package services

import (
	"context"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"kucukaslan/tracker/capture"
	"kucukaslan/tracker/config"
	"kucukaslan/tracker/delivery"
	"kucukaslan/tracker/domain"
	"kucukaslan/tracker/geo"
	"kucukaslan/tracker/identity"
	"kucukaslan/tracker/milestone"
)

const scrollDebounce = 100 * time.Millisecond

// Deps are the collaborators of one Tracker. Document, Page and Resolver are
// required; a nil Transport posts to the configured endpoint resolved
// against the page URL.
type Deps struct {
	Resolver  *identity.Resolver
	Document  capture.Document
	Page      capture.Page
	Locator   geo.Locator
	Transport delivery.Transport
	Beacon    delivery.Beacon
	Delivery  delivery.Options
	// SendTimeout bounds the default HTTP transport and beacon.
	SendTimeout time.Duration
	UserAgent   string
	Logger      *log.Logger
	Now         func() time.Time
}

// Tracker is the single owner of one page view's telemetry state. Every
// capture handler runs under mu, which serializes them the way the page's
// event loop does.
type Tracker struct {
	cfg      config.TrackerConfig
	session  domain.SessionContext
	page     capture.Page
	document capture.Document
	locator  geo.Locator
	logger   *log.Logger
	now      func() time.Time

	pipeline   *delivery.Pipeline
	beacon     delivery.Beacon
	buffer     *EventBuffer
	flusher    *Flusher
	registry   *capture.Registry
	milestones *milestone.ScrollMilestones
	videos     *milestone.VideoRegistry
	sampler    *capture.Sampler
	debouncer  *capture.Debouncer

	mu         sync.Mutex
	subs       capture.Subscriptions
	started    bool
	unloaded   bool
	pageStart  time.Time
	maxScroll  int
	cancelLoad context.CancelFunc
	loadWG     sync.WaitGroup
}

// NewDebugLogger returns the "[Analytics]" stderr logger when debug is set
// and a discarding logger otherwise.
func NewDebugLogger(debug bool) *log.Logger {
	if !debug {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "[Analytics] ", log.LstdFlags|log.Lmicroseconds)
}

// New builds a tracker for one page view. Identity is resolved here, once.
func New(cfg config.TrackerConfig, deps Deps) *Tracker {
	if deps.Logger == nil {
		deps.Logger = NewDebugLogger(cfg.Debug)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Locator == nil {
		deps.Locator = &geo.HTTPLocator{}
	}
	if deps.Resolver == nil {
		deps.Resolver = identity.NewResolver(nil, nil)
	}

	t := &Tracker{
		cfg: cfg,
		session: domain.SessionContext{
			SessionID:  deps.Resolver.SessionID(),
			UserID:     deps.Resolver.UserID(),
			TrackingID: cfg.TrackingID,
		},
		page:       deps.Page,
		document:   deps.Document,
		locator:    deps.Locator,
		logger:     deps.Logger,
		now:        deps.Now,
		buffer:     NewEventBuffer(),
		registry:   capture.NewRegistry(),
		milestones: milestone.NewScrollMilestones(),
		videos:     milestone.NewVideoRegistry(),
		sampler:    capture.NewMouseSampler(),
		debouncer:  capture.NewDebouncer(scrollDebounce),
		cancelLoad: func() {},
	}

	endpoint := capture.ResolveURL(deps.Page.URL(), cfg.Endpoint)
	if deps.Transport == nil {
		deps.Transport = &delivery.HTTPTransport{Endpoint: endpoint, Timeout: deps.SendTimeout, UserAgent: deps.UserAgent}
	}
	if deps.Beacon == nil {
		deps.Beacon = &delivery.HTTPBeacon{Endpoint: endpoint, Timeout: deps.SendTimeout, UserAgent: deps.UserAgent}
	}
	t.beacon = deps.Beacon
	opts := deps.Delivery
	opts.BatchSize = cfg.BatchSize
	opts.Logger = deps.Logger
	t.pipeline = delivery.NewPipeline(deps.Transport, deps.Beacon, t.stamp, opts)
	t.flusher = NewFlusher(t.buffer, cfg.FlushInterval, t.pipeline.Send, deps.Logger)

	t.logger.Printf("Analytics tracker initialized with config: %+v", cfg)
	return t
}

func (t *Tracker) stamp(p domain.Payload) {
	t.session.Stamp(p, t.page.URL())
}

// Session returns the identity stamped on this page view's events.
func (t *Tracker) Session() domain.SessionContext {
	return t.session
}

// Start attaches the capture handlers and video tracking, sends the page
// load facts once geolocation settles and starts the periodic flush. ctx
// bounds the geolocation lookup only.
func (t *Tracker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started || t.unloaded {
		return
	}
	t.started = true
	t.pageStart = t.now()

	loadCtx, cancel := context.WithCancel(ctx)
	t.cancelLoad = cancel
	t.loadWG.Add(1)
	go t.sendPageLoad(loadCtx)

	t.attachHandlersLocked()
	t.attachVideoTrackingLocked()
	t.flusher.Start()
}

// Dispatch delivers one raw signal to the attached handlers and reports how
// many ran. Signals after Unload are ignored.
func (t *Tracker) Dispatch(s capture.Signal) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started || t.unloaded {
		return 0
	}
	return t.registry.Dispatch(s)
}

// Unload runs the page teardown path once: page_unload and any buffered
// events go out through the beacon, then every listener is detached and the
// flusher stops.
func (t *Tracker) Unload() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.unloadLocked()
}

func (t *Tracker) unloadLocked() {
	if !t.started || t.unloaded {
		return
	}
	t.unloaded = true
	now := t.now()

	t.pipeline.Beacon(domain.NewEvent(domain.KindPageUnload, map[string]any{
		"page_url":         t.page.URL(),
		"duration_ms":      now.Sub(t.pageStart).Milliseconds(),
		"scroll_depth_max": t.maxScroll,
		"click_count":      t.buffer.ClickCount(),
	}, now))
	if batch, ok := t.buffer.Drain(); ok {
		t.pipeline.Beacon(batch.Event(now))
	}

	t.subs.DetachAll()
	t.debouncer.Stop()
	t.cancelLoad()
	_ = t.flusher.Shutdown()
}

// Close unloads the page view if needed and waits for in-flight sends until
// ctx ends. Events still queued at that point are lost with the page.
func (t *Tracker) Close(ctx context.Context) error {
	t.Unload()
	if err := delivery.WaitGroup(ctx, &t.loadWG); err != nil {
		return err
	}
	if err := t.pipeline.Close(ctx); err != nil {
		return err
	}
	if b, ok := t.beacon.(interface{ Wait(context.Context) error }); ok {
		return b.Wait(ctx)
	}
	return nil
}

// Flush forces a periodic flush outside the ticker.
func (t *Tracker) Flush() bool {
	return t.flusher.Flush()
}

// Pipeline exposes the delivery pipeline.
func (t *Tracker) Pipeline() *delivery.Pipeline {
	return t.pipeline
}

// Stats is a diagnostics snapshot, not synchronized with in-flight sends.
func (t *Tracker) Stats() domain.TrackerStats {
	t.mu.Lock()
	maxScroll, unloaded := t.maxScroll, t.unloaded
	var duration time.Duration
	if t.started {
		duration = t.now().Sub(t.pageStart)
	}
	t.mu.Unlock()

	sizes := t.buffer.Sizes()
	buffered := make(map[string]int, len(sizes))
	for c, n := range sizes {
		buffered[string(c)] = n
	}
	flushes, _ := t.flusher.Flushes()

	return domain.TrackerStats{
		Session:             t.session,
		DurationMS:          duration.Milliseconds(),
		Buffered:            buffered,
		ClickCount:          t.buffer.ClickCount(),
		ScrollDepthMax:      maxScroll,
		RemainingMilestones: t.milestones.Remaining(),
		TrackedVideos:       t.videos.Len(),
		Flushes:             flushes,
		Unloaded:            unloaded,
		Delivery:            t.pipeline.Stats(),
	}
}

func (t *Tracker) event(kind domain.EventKind, fields map[string]any) domain.Event {
	return domain.NewEvent(kind, fields, t.now())
}

// send routes an event to the immediate path.
func (t *Tracker) send(kind domain.EventKind, fields map[string]any) {
	t.pipeline.Send(t.event(kind, fields))
}
