package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"kucukaslan/tracker/capture"
	"kucukaslan/tracker/config"
	"kucukaslan/tracker/delivery"
	"kucukaslan/tracker/domain"
	"kucukaslan/tracker/geo"
	"kucukaslan/tracker/identity"
	"kucukaslan/tracker/models"
)

var (
	// ErrUnknownVideo is returned for a media signal addressed to a video the
	// document does not contain
	ErrUnknownVideo = errors.New("unknown video element")
	// ErrInvalidSignal is returned for a signal that cannot be converted
	ErrInvalidSignal = errors.New("invalid signal")
)

var _ domain.TrackerService = &trackerService{}

// AgentDeps are the process wide collaborators shared by every page view.
type AgentDeps struct {
	SessionStore    identity.Store
	PersistentStore identity.Store
	Locator         geo.Locator
	// Transport and Beacon replace the per page HTTP transport when set
	Transport delivery.Transport
	Beacon    delivery.Beacon
	UserAgent string
	Logger    *log.Logger
}

type pageView struct {
	tracker  *Tracker
	page     *capture.MemPage
	document *capture.MemDocument
}

type trackerService struct {
	cfg      *config.Config
	deps     AgentDeps
	resolver *identity.Resolver

	// startMu serializes page view replacement so no started tracker is
	// left without an owner
	startMu sync.Mutex
	mu      sync.Mutex
	current *pageView
}

// NewTrackerService returns the agent's domain.TrackerService. It owns at
// most one page view at a time.
func NewTrackerService(cfg *config.Config, deps AgentDeps) (domain.TrackerService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if deps.SessionStore == nil {
		deps.SessionStore = identity.NewMemoryStore()
	}
	if deps.Locator == nil {
		deps.Locator = &geo.HTTPLocator{
			URL:       cfg.Delivery.GeoURL,
			Timeout:   cfg.Delivery.SendTimeout(),
			UserAgent: deps.UserAgent,
		}
	}
	return &trackerService{
		cfg:      cfg,
		deps:     deps,
		resolver: identity.NewResolver(deps.SessionStore, deps.PersistentStore),
	}, nil
}

func (s *trackerService) StartPage(ctx context.Context, req *domain.PageLoadRequest) (*domain.PageResponse, error) {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	s.mu.Lock()
	previous := s.current
	s.current = nil
	s.mu.Unlock()
	if previous != nil {
		s.closePageView(previous)
	}

	cfg := s.cfg.Tracker.WithAttributes(req.Attributes)
	page := capture.NewMemPage(req.URL, req.Facts.Capture())
	document := capture.NewMemDocument()
	for i := range req.Nodes {
		document.Insert(req.Nodes[i].Element())
	}

	logger := s.deps.Logger
	if logger == nil {
		logger = NewDebugLogger(cfg.Debug)
	}
	tracker := New(cfg, Deps{
		Resolver:  s.resolver,
		Document:  document,
		Page:      page,
		Locator:   s.deps.Locator,
		Transport: s.deps.Transport,
		Beacon:    s.deps.Beacon,
		Delivery: delivery.Options{
			RetryDelay:    s.cfg.Delivery.RetryDelay(),
			QueueCapacity: s.cfg.Delivery.QueueCapacity,
		},
		SendTimeout: s.cfg.Delivery.SendTimeout(),
		UserAgent:   s.deps.UserAgent,
		Logger:      logger,
	})
	// the page view outlives the request
	tracker.Start(context.Background())

	s.mu.Lock()
	s.current = &pageView{tracker: tracker, page: page, document: document}
	s.mu.Unlock()

	return &domain.PageResponse{
		Success:  true,
		Message:  "Page view started",
		Session:  tracker.Session(),
		Endpoint: capture.ResolveURL(req.URL, cfg.Endpoint),
	}, nil
}

func (s *trackerService) Signal(ctx context.Context, signal *models.Signal) (*domain.TrackResponse, error) {
	view, err := s.view()
	if err != nil {
		return &domain.TrackResponse{Success: false, Message: err.Error()}, err
	}
	handled, err := view.apply(*signal)
	if err != nil {
		return &domain.TrackResponse{Success: false, Message: err.Error()}, err
	}
	return &domain.TrackResponse{Success: true, Message: "Signal accepted", Handled: handled}, nil
}

// Signals applies the signals in order and stops at the first failure.
func (s *trackerService) Signals(ctx context.Context, req *domain.SignalBatchRequest) (*domain.TrackResponse, error) {
	view, err := s.view()
	if err != nil {
		return &domain.TrackResponse{Success: false, Message: err.Error()}, err
	}
	total := 0
	for i, signal := range req.Signals {
		handled, err := view.apply(signal)
		if err != nil {
			err = fmt.Errorf("signal at index %d: %w", i, err)
			return &domain.TrackResponse{Success: false, Message: err.Error(), Handled: total}, err
		}
		total += handled
	}
	return &domain.TrackResponse{Success: true, Message: "Signals accepted", Handled: total}, nil
}

func (s *trackerService) Unload(ctx context.Context) (*domain.TrackResponse, error) {
	view, err := s.view()
	if err != nil {
		return &domain.TrackResponse{Success: false, Message: err.Error()}, err
	}
	view.tracker.Unload()
	return &domain.TrackResponse{Success: true, Message: "Page view unloaded"}, nil
}

func (s *trackerService) Track(ctx context.Context, req *domain.CustomEventRequest) (*domain.TrackResponse, error) {
	return s.withTracker(func(t *Tracker) { t.Track(req.EventName, req.Properties) })
}

func (s *trackerService) TrackProductView(ctx context.Context, req *domain.ProductViewRequest) (*domain.TrackResponse, error) {
	return s.withTracker(func(t *Tracker) {
		t.TrackProductView(req.ProductID, req.ProductName, req.Price, req.Category)
	})
}

func (s *trackerService) TrackPurchase(ctx context.Context, req *domain.PurchaseRequest) (*domain.TrackResponse, error) {
	return s.withTracker(func(t *Tracker) { t.TrackPurchase(req.OrderID, req.Items, req.Total, req.Currency) })
}

func (s *trackerService) TrackCartAdd(ctx context.Context, req *domain.CartAddRequest) (*domain.TrackResponse, error) {
	return s.withTracker(func(t *Tracker) {
		t.TrackCartAdd(req.ProductID, req.ProductName, req.Price, req.Quantity)
	})
}

func (s *trackerService) TrackCartRemove(ctx context.Context, req *domain.CartRemoveRequest) (*domain.TrackResponse, error) {
	return s.withTracker(func(t *Tracker) { t.TrackCartRemove(req.ProductID) })
}

func (s *trackerService) TrackCheckoutStep(ctx context.Context, req *domain.CheckoutStepRequest) (*domain.TrackResponse, error) {
	return s.withTracker(func(t *Tracker) { t.TrackCheckoutStep(req.Step, req.StepName) })
}

func (s *trackerService) Stats(ctx context.Context) (*domain.StatsResponse, error) {
	view, err := s.view()
	if err != nil {
		return &domain.StatsResponse{Success: false, Message: err.Error()}, err
	}
	stats := view.tracker.Stats()
	return &domain.StatsResponse{Success: true, Message: "Stats retrieved successfully", Stats: &stats}, nil
}

// Shutdown unloads and closes the active page view.
func (s *trackerService) Shutdown(ctx context.Context) error {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	s.mu.Lock()
	view := s.current
	s.current = nil
	s.mu.Unlock()
	if view == nil {
		return nil
	}
	return view.tracker.Close(ctx)
}

// ShutdownTrackerService shuts a service down if it supports shutdown
func ShutdownTrackerService(ctx context.Context, service domain.TrackerService) error {
	if srv, ok := service.(interface{ Shutdown(context.Context) error }); ok {
		return srv.Shutdown(ctx)
	}
	return nil
}

func (s *trackerService) view() (*pageView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, domain.ErrNoPageView
	}
	return s.current, nil
}

func (s *trackerService) withTracker(fn func(*Tracker)) (*domain.TrackResponse, error) {
	view, err := s.view()
	if err != nil {
		return &domain.TrackResponse{Success: false, Message: err.Error()}, err
	}
	fn(view.tracker)
	return &domain.TrackResponse{Success: true, Message: "Event accepted"}, nil
}

// closePageView tears a replaced page view down in the background, bounded
// by the send timeout.
func (s *trackerService) closePageView(view *pageView) {
	view.tracker.Unload()
	timeout := sendTimeoutOr(s.cfg.Delivery.SendTimeout(), 5*time.Second)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := view.tracker.Close(ctx); err != nil {
			log.Printf("TrackerService: closing previous page view: %v", err)
		}
	}()
}

// apply routes one bridge signal: page state updates first, then the
// tracker's registry, video element or document.
func (v *pageView) apply(signal models.Signal) (int, error) {
	switch {
	case signal.Type == models.SignalNavigate:
		v.page.SetURL(signal.URL)
		return 1, nil
	case signal.Type == models.SignalMutation:
		elements := signal.Elements()
		v.document.Insert(elements...)
		return len(elements), nil
	case signal.IsMedia():
		video, ok := v.document.Video(signal.VideoKey)
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownVideo, signal.VideoKey)
		}
		node, ok := video.(*capture.VideoNode)
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownVideo, signal.VideoKey)
		}
		node.Emit(capture.MediaEvent(signal.Type), signal.CurrentTime, signal.Duration)
		return 1, nil
	}

	captured, err := signal.Capture()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSignal, err)
	}
	return v.tracker.Dispatch(captured), nil
}

// sendTimeoutOr returns d or fallback when d is not positive.
func sendTimeoutOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
