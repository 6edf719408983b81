package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"kucukaslan/tracker/capture"
	"kucukaslan/tracker/config"
	"kucukaslan/tracker/delivery"
	"kucukaslan/tracker/domain"
	"kucukaslan/tracker/geo"
	"kucukaslan/tracker/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageURL = "https://shop.example.com/products/42"

type recorder struct {
	mu       sync.Mutex
	failing  bool
	payloads []domain.Payload
	attempts int
}

func (r *recorder) Send(_ context.Context, p domain.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
	if r.failing {
		return errors.New("network down")
	}
	r.payloads = append(r.payloads, p)
	return nil
}

func (r *recorder) setFailing(v bool) {
	r.mu.Lock()
	r.failing = v
	r.mu.Unlock()
}

func (r *recorder) ofType(kind domain.EventKind) []domain.Payload {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Payload
	for _, p := range r.payloads {
		if p["type"] == string(kind) {
			out = append(out, p)
		}
	}
	return out
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads)
}

func (r *recorder) attemptCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts
}

func (r *recorder) all() []domain.Payload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Payload(nil), r.payloads...)
}

type beaconRecorder struct {
	recorder
}

func (b *beaconRecorder) Beacon(p domain.Payload) bool {
	_ = b.Send(context.Background(), p)
	return true
}

type fixture struct {
	tracker  *Tracker
	sent     *recorder
	beacons  *beaconRecorder
	page     *capture.MemPage
	document *capture.MemDocument
	resolver *identity.Resolver
}

func newFixture(t *testing.T, cfg config.TrackerConfig, videos ...capture.Element) *fixture {
	t.Helper()
	f := &fixture{
		sent:     &recorder{},
		beacons:  &beaconRecorder{},
		page:     capture.NewMemPage(pageURL, capture.Facts{Title: "Headphones", UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64)", Viewport: capture.Viewport{Width: 1280, Height: 800}}),
		document: capture.NewMemDocument(),
		resolver: identity.NewResolver(identity.NewMemoryStore(), identity.NewMemoryStore()),
	}
	f.document.Insert(videos...)
	f.tracker = New(cfg, Deps{
		Resolver:  f.resolver,
		Document:  f.document,
		Page:      f.page,
		Locator:   geo.LocatorFunc(func(context.Context) map[string]any { return geo.Unavailable() }),
		Transport: f.sent,
		Beacon:    f.beacons,
		Delivery:  delivery.Options{RetryDelay: 20 * time.Millisecond},
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = f.tracker.Close(ctx)
	})
	return f
}

// start starts the tracker and waits for page_load and page_view.
func (f *fixture) start(t *testing.T) {
	t.Helper()
	f.tracker.Start(context.Background())
	require.Eventually(t, func() bool {
		return len(f.sent.ofType(domain.KindPageLoad)) == 1 && len(f.sent.ofType(domain.KindPageView)) == 1
	}, time.Second, 5*time.Millisecond)
}

func quietConfig() config.TrackerConfig {
	cfg := config.DefaultTrackerConfig()
	cfg.TrackingID = "shop"
	cfg.FlushInterval = time.Hour
	return cfg
}

func link(href string, classes ...string) *capture.Node {
	return &capture.Node{Tag: "a", Classes: classes, Attributes: map[string]string{"href": href}, Content: "Annual report"}
}

func items(t *testing.T, p domain.Payload, c Category) []domain.Payload {
	t.Helper()
	v, ok := p[string(c)].([]domain.Payload)
	require.True(t, ok, "category %s missing", c)
	return v
}

func TestEndToEndScenario(t *testing.T) {
	cfg := quietConfig()
	cfg.FlushInterval = 400 * time.Millisecond
	f := newFixture(t, cfg)
	f.start(t)

	pageView := f.sent.ofType(domain.KindPageView)[0]
	assert.Equal(t, pageURL, pageView["page_url"])
	assert.Equal(t, "Headphones", pageView["page_title"])

	// 300 / (1800 - 800) = 30%
	f.tracker.Dispatch(capture.Scroll{State: capture.ScrollState{ScrollTop: 300, ScrollHeight: 1800, ViewportHeight: 800}})
	require.Eventually(t, func() bool { return len(f.sent.ofType(domain.KindScrollDepth)) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 25, f.sent.ofType(domain.KindScrollDepth)[0]["depth"])

	f.tracker.Dispatch(capture.Click{Target: link("/files/report.pdf", "download"), X: 10, Y: 20})
	assert.Empty(t, f.sent.ofType(domain.KindFileDownload))

	require.Eventually(t, func() bool { return len(f.sent.ofType(domain.KindPeriodic)) == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(2 * cfg.FlushInterval)
	periodic := f.sent.ofType(domain.KindPeriodic)
	require.Len(t, periodic, 1)

	batch := periodic[0]
	links := items(t, batch, LinkClicks)
	require.Len(t, links, 1)
	assert.Equal(t, "file_download", links[0]["type"])
	assert.Equal(t, "https://shop.example.com/files/report.pdf", links[0]["url"])
	assert.Equal(t, "report.pdf", links[0]["file_name"])
	assert.Equal(t, false, links[0]["is_external"])

	// the click and the scroll also leave their own samples
	assert.Len(t, items(t, batch, MouseClicks), 1)
	assert.Len(t, items(t, batch, ScrollEvents), 1)
	for _, c := range []Category{VideoEvents, MouseMovements, FormSubmissions, FormInteractions} {
		assert.Empty(t, items(t, batch, c), c)
	}
	assert.Equal(t, 1, batch["clickCount"])

	raw, err := json.Marshal(batch)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"videoEvents":[]`)
	assert.Contains(t, string(raw), `"formInteractions":[]`)

	session := f.tracker.Session()
	for _, p := range f.sent.all() {
		assert.Equal(t, session.SessionID, p["session_id"])
		assert.Equal(t, session.UserID, p["user_id"])
		assert.Equal(t, "shop", p["tracking_id"])
		assert.Equal(t, pageURL, p["url"])
	}
}

func TestPageLoadFacts(t *testing.T) {
	f := newFixture(t, quietConfig())
	f.start(t)

	load := f.sent.ofType(domain.KindPageLoad)[0]
	data, ok := load["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, pageURL, data["url"])
	assert.Equal(t, capture.DeviceDesktop, data["device_type"])
	assert.Equal(t, geo.Unavailable(), data["location"])
	assert.Equal(t, f.tracker.Session().SessionID, data["session_id"])
	assert.NotContains(t, data, "performance")
	assert.NotContains(t, data, "network")
}

func TestImmediateAndBufferedRouting(t *testing.T) {
	f := newFixture(t, quietConfig())
	f.start(t)

	button := &capture.Node{Tag: "button", Attributes: map[string]string{"id": "buy", "type": "submit"}, Content: " Buy now "}
	label := &capture.Node{Tag: "span", Content: "Buy now"}
	button.Append(label)
	f.tracker.Dispatch(capture.Click{Target: label, X: 1, Y: 2})

	email := &capture.Node{Tag: "input", Attributes: map[string]string{"name": "email", "type": "email"}, ValueLen: 17}
	form := (&capture.Node{Tag: "form", Attributes: map[string]string{"id": "signup"}}).Append(email)
	f.tracker.Dispatch(capture.FocusIn{Target: email})
	f.tracker.Dispatch(capture.Input{Target: email})
	f.tracker.Dispatch(capture.FocusIn{Target: label})
	f.tracker.Dispatch(capture.Submit{Form: form})
	f.tracker.Dispatch(capture.VisibilityChange{Hidden: true})
	f.tracker.Dispatch(capture.VisibilityChange{Hidden: false})

	require.Eventually(t, func() bool { return f.sent.count() == 2+6 }, time.Second, 5*time.Millisecond)

	clicks := f.sent.ofType(domain.KindButtonClick)
	require.Len(t, clicks, 1)
	assert.Equal(t, "Buy now", clicks[0]["button_text"])
	assert.Equal(t, "buy", clicks[0]["button_id"])

	inputs := f.sent.ofType(domain.KindFormInput)
	require.Len(t, inputs, 1)
	assert.Equal(t, 17, inputs[0]["value_length"])
	assert.NotContains(t, inputs[0], "value")

	assert.Len(t, f.sent.ofType(domain.KindFormFocus), 1)
	assert.Len(t, f.sent.ofType(domain.KindFormSubmit), 1)
	assert.Len(t, f.sent.ofType(domain.KindPageHidden), 1)
	assert.Len(t, f.sent.ofType(domain.KindPageVisible), 1)

	sizes := f.tracker.Stats().Buffered
	assert.Equal(t, 1, sizes[string(MouseClicks)])
	assert.Equal(t, 1, sizes[string(FormInteractions)])
	assert.Equal(t, 1, sizes[string(FormSubmissions)])
	assert.Equal(t, 0, sizes[string(LinkClicks)])
}

func TestFlushIsAtomic(t *testing.T) {
	f := newFixture(t, quietConfig())
	f.start(t)

	f.tracker.Dispatch(capture.Click{Target: link("/a")})
	f.tracker.Dispatch(capture.Click{Target: link("/b")})
	f.tracker.Dispatch(capture.Offline{})

	require.True(t, f.tracker.Flush())
	assert.False(t, f.tracker.Flush(), "buffer must be empty after a flush")

	queued := f.tracker.Pipeline().Queue().Snapshot()
	require.Len(t, queued, 1)
	assert.Equal(t, "periodic_events", queued[0]["type"])
	assert.Len(t, items(t, queued[0], LinkClicks), 2)

	f.tracker.Dispatch(capture.Click{Target: link("/c")})
	require.True(t, f.tracker.Flush())
	queued = f.tracker.Pipeline().Queue().Snapshot()
	require.Len(t, queued, 2)
	next := items(t, queued[1], LinkClicks)
	require.Len(t, next, 1)
	assert.Equal(t, "https://shop.example.com/c", next[0]["url"])
	assert.Equal(t, 3, queued[1]["clickCount"])
}

func TestFailedSendIsRetried(t *testing.T) {
	f := newFixture(t, quietConfig())
	f.start(t)

	f.sent.setFailing(true)
	f.tracker.Track("retry_me", map[string]any{"attempt": 1})
	require.Eventually(t, func() bool { return f.tracker.Pipeline().Queue().Len() == 1 }, time.Second, 5*time.Millisecond)

	f.sent.setFailing(false)
	require.Eventually(t, func() bool { return len(f.sent.ofType(domain.KindCustom)) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, f.tracker.Pipeline().Queue().Len())
	assert.GreaterOrEqual(t, f.tracker.Stats().Delivery.Failed, int64(1))
}

func TestCategoryOrderIsPreserved(t *testing.T) {
	f := newFixture(t, quietConfig())
	f.start(t)

	want := []string{"/1", "/2", "/3", "/4", "/5", "/6"}
	for _, href := range want {
		f.tracker.Dispatch(capture.Click{Target: link(href)})
	}
	require.True(t, f.tracker.Flush())
	require.Eventually(t, func() bool { return len(f.sent.ofType(domain.KindPeriodic)) == 1 }, time.Second, 5*time.Millisecond)

	links := items(t, f.sent.ofType(domain.KindPeriodic)[0], LinkClicks)
	require.Len(t, links, len(want))
	for i, href := range want {
		assert.Equal(t, "https://shop.example.com"+href, links[i]["url"])
	}
}

func TestVideoTracking(t *testing.T) {
	existing := capture.NewVideo("intro", "https://cdn.example.com/intro.mp4")
	f := newFixture(t, quietConfig(), existing)
	f.start(t)

	// a duplicate mutation notification for an element already tracked
	f.document.Insert(existing)
	assert.Equal(t, 1, existing.ListenerCount(capture.MediaTimeUpdate))

	inserted := capture.NewVideo("promo", "")
	inserted.SetSource("https://cdn.example.com/promo.webm")
	f.document.Insert((&capture.Node{Tag: "div"}).Append(inserted))
	f.document.Insert(inserted)
	assert.Equal(t, 1, inserted.ListenerCount(capture.MediaPlay))
	assert.Equal(t, 2, f.tracker.Stats().TrackedVideos)

	existing.Emit(capture.MediaPlay, 0, 100)
	existing.Emit(capture.MediaTimeUpdate, 30, 100)
	existing.Emit(capture.MediaTimeUpdate, 60, 100)
	existing.Emit(capture.MediaPause, 60, 100)
	// replay from the start
	existing.Emit(capture.MediaTimeUpdate, 0, 100)
	existing.Emit(capture.MediaTimeUpdate, 80, 100)
	existing.Emit(capture.MediaEnded, 100, 100)
	inserted.Emit(capture.MediaPlay, 0, 0)
	inserted.Emit(capture.MediaTimeUpdate, 5, 0)

	require.True(t, f.tracker.Flush())
	require.Eventually(t, func() bool { return len(f.sent.ofType(domain.KindPeriodic)) == 1 }, time.Second, 5*time.Millisecond)
	videos := items(t, f.sent.ofType(domain.KindPeriodic)[0], VideoEvents)

	var kinds []string
	for _, v := range videos {
		kinds = append(kinds, v["type"].(string))
	}
	assert.Equal(t, []string{"play", "progress_25", "progress_50", "pause", "progress_75", "complete", "play"}, kinds)
	assert.Equal(t, "https://cdn.example.com/intro.mp4", videos[0]["video_src"])
	assert.Equal(t, 100.0, videos[0]["video_duration"])
	assert.Equal(t, 30.0, videos[1]["current_time"])
	assert.NotContains(t, videos[5], "current_time")
	assert.Equal(t, "https://cdn.example.com/promo.webm", videos[6]["video_src"])
}

func TestOfflineScenario(t *testing.T) {
	cfg := quietConfig()
	cfg.BatchSize = 2
	f := newFixture(t, cfg)
	f.start(t)
	before := f.sent.attemptCount()

	f.tracker.Dispatch(capture.Offline{})
	f.tracker.Track("first", nil)
	f.tracker.Dispatch(capture.VisibilityChange{Hidden: true})
	f.tracker.Dispatch(capture.Click{Target: link("/x")})
	require.True(t, f.tracker.Flush())
	f.tracker.TrackCartRemove("prod-1")

	assert.Equal(t, 4, f.tracker.Pipeline().Queue().Len())
	assert.Equal(t, before, f.sent.attemptCount())
	assert.False(t, f.tracker.Stats().Delivery.Online)

	f.tracker.Dispatch(capture.Online{})
	require.Eventually(t, func() bool { return f.sent.count() == 2+4 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, f.tracker.Pipeline().Queue().Len())

	var drained []string
	for _, p := range f.sent.all()[2:] {
		drained = append(drained, p["type"].(string))
	}
	assert.ElementsMatch(t, []string{"custom_event", "page_hidden"}, drained[:2])
	assert.ElementsMatch(t, []string{"periodic_events", "cart_remove"}, drained[2:])
}

func TestUnloadBeacons(t *testing.T) {
	video := capture.NewVideo("intro", "intro.mp4")
	f := newFixture(t, quietConfig(), video)
	f.start(t)

	f.tracker.Dispatch(capture.Scroll{State: capture.ScrollState{ScrollTop: 600, ScrollHeight: 1800, ViewportHeight: 800}})
	require.Eventually(t, func() bool { return len(f.sent.ofType(domain.KindScrollDepth)) == 2 }, time.Second, 5*time.Millisecond)
	f.tracker.Dispatch(capture.Scroll{State: capture.ScrollState{ScrollTop: 100, ScrollHeight: 1800, ViewportHeight: 800}})
	require.Eventually(t, func() bool { return f.tracker.Stats().Buffered[string(ScrollEvents)] == 2 }, time.Second, 5*time.Millisecond)
	f.tracker.Dispatch(capture.Click{Target: &capture.Node{Tag: "p"}})
	f.tracker.Dispatch(capture.Click{Target: &capture.Node{Tag: "p"}})

	f.sent.setFailing(true)
	assert.Equal(t, 1, f.tracker.Dispatch(capture.Unload{}))

	unloads := f.beacons.ofType(domain.KindPageUnload)
	require.Len(t, unloads, 1)
	assert.Equal(t, 60, unloads[0]["scroll_depth_max"])
	assert.Equal(t, 2, unloads[0]["click_count"])
	assert.Equal(t, pageURL, unloads[0]["page_url"])
	assert.Equal(t, f.tracker.Session().SessionID, unloads[0]["session_id"])
	assert.Contains(t, unloads[0], "duration_ms")

	final := f.beacons.ofType(domain.KindPeriodic)
	require.Len(t, final, 1)
	assert.Len(t, items(t, final[0], MouseClicks), 2)

	assert.Equal(t, 0, f.tracker.Dispatch(capture.Click{}))
	assert.Equal(t, 0, f.document.ObserverCount())
	assert.Equal(t, 0, video.ListenerCount(capture.MediaPlay))
	assert.True(t, f.tracker.Stats().Unloaded)
	assert.Equal(t, 0, f.tracker.Pipeline().Queue().Len())

	f.tracker.Unload()
	assert.Len(t, f.beacons.ofType(domain.KindPageUnload), 1)
}

func TestMouseMovesAreSampled(t *testing.T) {
	f := newFixture(t, quietConfig())
	clock := time.UnixMilli(1_700_000_000_000)
	f.tracker.now = func() time.Time { return clock }
	f.start(t)

	for range 100 {
		clock = clock.Add(10 * time.Millisecond)
		f.tracker.Dispatch(capture.MouseMove{X: 10.4, Y: 20.6})
	}
	// candidates every 100ms, kept only when more than 500ms apart
	assert.Equal(t, 2, f.tracker.Stats().Buffered[string(MouseMovements)])

	require.True(t, f.tracker.Flush())
	require.Eventually(t, func() bool { return len(f.sent.ofType(domain.KindPeriodic)) == 1 }, time.Second, 5*time.Millisecond)
	moves := items(t, f.sent.ofType(domain.KindPeriodic)[0], MouseMovements)
	assert.Equal(t, 10.0, moves[0]["x"])
	assert.Equal(t, 21.0, moves[0]["y"])
}

func TestProgrammaticAPI(t *testing.T) {
	f := newFixture(t, quietConfig())
	f.start(t)

	f.tracker.Track("newsletter_signup", nil)
	f.tracker.TrackProductView("prod-789", "Headphones", 129.99, "electronics")
	f.tracker.TrackPurchase("ord-1", nil, 259.98, "")
	f.tracker.TrackCartAdd("prod-789", "Headphones", 129.99, 0)
	f.tracker.TrackCartRemove("prod-789")
	f.tracker.TrackCheckoutStep(2, "shipping")

	require.Eventually(t, func() bool { return f.sent.count() == 2+6 }, time.Second, 5*time.Millisecond)

	custom := f.sent.ofType(domain.KindCustom)[0]
	assert.Equal(t, "newsletter_signup", custom["event_name"])
	assert.Equal(t, map[string]any{}, custom["properties"])

	view := f.sent.ofType(domain.KindProductView)[0]
	assert.Equal(t, pageURL, view["page_url"])
	assert.Equal(t, 129.99, view["price"])

	purchase := f.sent.ofType(domain.KindPurchase)[0]
	assert.Equal(t, "USD", purchase["currency"])
	assert.Equal(t, []map[string]any{}, purchase["items"])

	assert.Equal(t, 1, f.sent.ofType(domain.KindCartAdd)[0]["quantity"])
	assert.Equal(t, "prod-789", f.sent.ofType(domain.KindCartRemove)[0]["product_id"])
	step := f.sent.ofType(domain.KindCheckoutStep)[0]
	assert.Equal(t, 2, step["step"])
	assert.Equal(t, "shipping", step["step_name"])

	for _, p := range f.sent.all() {
		assert.NotEmpty(t, p["event_id"])
		assert.IsType(t, int64(0), p["ts"])
	}
}

func TestIdentityIsStableAcrossPageViews(t *testing.T) {
	first := newFixture(t, quietConfig())
	resolver := first.resolver

	second := New(quietConfig(), Deps{
		Resolver: resolver,
		Document: capture.NewMemDocument(),
		Page:     capture.NewMemPage(pageURL, capture.Facts{}),
	})
	assert.Equal(t, first.tracker.Session(), second.Session())
}

func TestNonScrollablePageCrossesNoMilestone(t *testing.T) {
	f := newFixture(t, quietConfig())
	f.start(t)

	// content fits the viewport
	f.tracker.Dispatch(capture.Scroll{State: capture.ScrollState{ScrollTop: 0, ScrollHeight: 800, ViewportHeight: 800}})
	require.Eventually(t, func() bool { return f.tracker.Stats().Buffered[string(ScrollEvents)] == 1 }, time.Second, 5*time.Millisecond)
	f.tracker.Dispatch(capture.Scroll{State: capture.ScrollState{ScrollTop: 0, ScrollHeight: 600, ViewportHeight: 800}})
	require.Eventually(t, func() bool { return f.tracker.Stats().Buffered[string(ScrollEvents)] == 2 }, time.Second, 5*time.Millisecond)

	assert.Empty(t, f.sent.ofType(domain.KindScrollDepth))
	stats := f.tracker.Stats()
	assert.Equal(t, []int{25, 50, 75, 100}, stats.RemainingMilestones)
	assert.Equal(t, 0, stats.ScrollDepthMax)

	// the page grows and becomes scrollable
	f.tracker.Dispatch(capture.Scroll{State: capture.ScrollState{ScrollTop: 300, ScrollHeight: 1800, ViewportHeight: 800}})
	require.Eventually(t, func() bool { return len(f.sent.ofType(domain.KindScrollDepth)) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 25, f.sent.ofType(domain.KindScrollDepth)[0]["depth"])

	f.tracker.Unload()
	unloads := f.beacons.ofType(domain.KindPageUnload)
	require.Len(t, unloads, 1)
	assert.Equal(t, 30, unloads[0]["scroll_depth_max"])
}

func TestCloseHonorsDeadlineWhileLocating(t *testing.T) {
	release := make(chan struct{})
	sent := &recorder{}
	tracker := New(quietConfig(), Deps{
		Resolver: identity.NewResolver(identity.NewMemoryStore(), identity.NewMemoryStore()),
		Document: capture.NewMemDocument(),
		Page:     capture.NewMemPage(pageURL, capture.Facts{Title: "Headphones"}),
		// a lookup that ignores cancellation
		Locator: geo.LocatorFunc(func(context.Context) map[string]any {
			<-release
			return geo.Unavailable()
		}),
		Transport: sent,
		Beacon:    &beaconRecorder{},
		Delivery:  delivery.Options{RetryDelay: 20 * time.Millisecond},
	})
	tracker.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	started := time.Now()
	err := tracker.Close(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(started), time.Second)

	close(release)
	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	require.NoError(t, tracker.Close(ctx2))
	assert.Empty(t, sent.ofType(domain.KindPageLoad), "page_load is dropped after unload")
}
