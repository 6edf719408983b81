package database

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"kucukaslan/tracker/domain"
	"kucukaslan/tracker/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payload(session, kind string, ts int64) domain.Payload {
	return domain.Payload{
		"type":        kind,
		"ts":          ts,
		"session_id":  session,
		"user_id":     "u-1",
		"tracking_id": "shop",
		"url":         "https://shop.example.com/",
		"event_id":    session + "-" + kind,
	}
}

func TestMapPayloadToEvent(t *testing.T) {
	p := payload("a1b2-c3d4-e5f6", "page_view", 1_700_000_000_123)
	p["page_title"] = "Home"

	event, err := mapPayloadToEvent(p)
	require.NoError(t, err)
	assert.Equal(t, "page_view", event.Type)
	assert.Equal(t, "a1b2-c3d4-e5f6", event.SessionID)
	assert.Equal(t, "shop", event.TrackingID)
	assert.Equal(t, "https://shop.example.com/", event.URL)
	assert.Equal(t, int64(1_700_000_000_123), event.TS)
	assert.Equal(t, time.UnixMilli(1_700_000_000_123).UTC(), event.Timestamp)

	var stored map[string]any
	require.NoError(t, json.Unmarshal([]byte(event.Payload), &stored))
	assert.Equal(t, "Home", stored["page_title"])

	decoded := domain.Payload{"type": "x", "ts": float64(1_700_000_000_000)}
	event, err = mapPayloadToEvent(decoded)
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000_000), event.TS)
	assert.Empty(t, event.SessionID)

	_, err = mapPayloadToEvent(domain.Payload{"bad": func() {}})
	assert.Error(t, err)
}

func TestToColumnar(t *testing.T) {
	now := time.Now()
	col, err := toColumnar([]domain.Payload{
		payload("s1", "page_load", 1),
		payload("s2", "page_view", 2),
	}, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"page_load", "page_view"}, col.Type)
	assert.Equal(t, []string{"s1", "s2"}, col.SessionID)
	assert.Equal(t, []int64{1, 2}, col.TS)
	assert.Equal(t, []time.Time{now, now}, col.IngestedAt)
	assert.Len(t, col.Payload, 2)
}

func TestMetricGroupExpr(t *testing.T) {
	str := func(s string) *string { return &s }
	assert.Equal(t, "", metricGroupExpr(nil))
	assert.Equal(t, "toString(toStartOfHour(timestamp))", metricGroupExpr(str("hour")))
	assert.Equal(t, "type", metricGroupExpr(str("type")))
	assert.Equal(t, "", metricGroupExpr(str("type; DROP TABLE tracker_events")))
}

func TestDeliveredKey(t *testing.T) {
	assert.Equal(t, "tracker_event:s1-scroll_depth", deliveredKey(payload("s1", "scroll_depth", 42)))

	legacy := payload("s1", "scroll_depth", 42)
	delete(legacy, "event_id")
	assert.Equal(t, "tracker_event:s1|scroll_depth|42", deliveredKey(legacy))
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)

	_, err = store.Get(identity.UserKey)
	assert.ErrorIs(t, err, identity.ErrNotFound)

	require.NoError(t, store.Set(identity.UserKey, "aaaa-bbbb-cccc"))
	require.NoError(t, store.Set(identity.UserKey, "dddd-eeee-ffff"))
	got, err := store.Get(identity.UserKey)
	require.NoError(t, err)
	assert.Equal(t, "dddd-eeee-ffff", got)
	assert.NoError(t, store.HealthCheck(context.Background()))
	require.NoError(t, store.Close())

	// the id survives a restart, like localStorage survives a session
	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	resolver := identity.NewResolver(identity.NewMemoryStore(), reopened)
	assert.Equal(t, "dddd-eeee-ffff", resolver.UserID())
}

type fakeStore struct {
	mu      sync.Mutex
	fail    bool
	batches [][]domain.Payload
}

func (s *fakeStore) SaveEvents(_ context.Context, payloads []domain.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("clickhouse unavailable")
	}
	s.batches = append(s.batches, append([]domain.Payload(nil), payloads...))
	return nil
}

func (s *fakeStore) setFail(v bool) {
	s.mu.Lock()
	s.fail = v
	s.mu.Unlock()
}

func (s *fakeStore) rows() []domain.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Payload
	for _, b := range s.batches {
		out = append(out, b...)
	}
	return out
}

type fakeLog struct {
	mu        sync.Mutex
	delivered map[string]bool
}

func (l *fakeLog) AreEventsDelivered(_ context.Context, payloads []domain.Payload) (map[string]bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]bool, len(payloads))
	for _, p := range payloads {
		out[domain.DedupKey(p)] = l.delivered[domain.DedupKey(p)]
	}
	return out, nil
}

func (l *fakeLog) SetEventsDelivered(_ context.Context, payloads []domain.Payload) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range payloads {
		l.delivered[domain.DedupKey(p)] = true
	}
	return nil
}

func (l *fakeLog) isDelivered(p domain.Payload) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.delivered[domain.DedupKey(p)]
}

func TestClickHouseSinkBatchesAndDeduplicates(t *testing.T) {
	store := &fakeStore{}
	deliveryLog := &fakeLog{delivered: map[string]bool{}}
	sink := NewClickHouseSink(100, 3, time.Hour, store, deliveryLog)
	sink.Start()
	defer sink.Shutdown()

	ctx := context.Background()
	first := payload("s1", "page_load", 1)
	require.NoError(t, sink.Send(ctx, first))
	require.NoError(t, sink.Send(ctx, payload("s1", "page_view", 2)))
	require.NoError(t, sink.Send(ctx, first))

	require.Eventually(t, func() bool { return len(store.rows()) == 2 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return deliveryLog.isDelivered(first) }, time.Second, 5*time.Millisecond)

	// a redelivery after the pipeline retried is skipped
	require.NoError(t, sink.Send(ctx, first))
	require.NoError(t, sink.Send(ctx, payload("s1", "page_hidden", 3)))
	require.NoError(t, sink.Send(ctx, payload("s1", "page_visible", 4)))
	require.Eventually(t, func() bool { return len(store.rows()) == 4 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(4), sink.Inserted())
}

func TestClickHouseSinkRetriesFailedInsert(t *testing.T) {
	store := &fakeStore{fail: true}
	sink := NewClickHouseSink(100, 10, 20*time.Millisecond, store, nil)
	sink.Start()

	require.NoError(t, sink.Send(context.Background(), payload("s1", "custom_event", 1)))
	require.Eventually(t, func() bool { return sink.GetBatchSize() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, store.rows())

	store.setFail(false)
	require.Eventually(t, func() bool { return len(store.rows()) == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, sink.Shutdown())
}

func TestClickHouseSinkFullBuffer(t *testing.T) {
	sink := NewClickHouseSink(1, 10, time.Hour, &fakeStore{}, nil)

	require.NoError(t, sink.Send(context.Background(), payload("s1", "a", 1)))
	assert.ErrorIs(t, sink.Send(context.Background(), payload("s1", "b", 2)), ErrBufferFull)
	assert.Equal(t, 1, sink.GetBufferSize())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sink.Send(ctx, payload("s1", "c", 3)), context.Canceled)
}

func TestClickHouseSinkShutdownFlushesRemaining(t *testing.T) {
	store := &fakeStore{}
	sink := NewClickHouseSink(100, 50, time.Hour, store, nil)
	sink.Start()

	for i := range 5 {
		require.NoError(t, sink.Send(context.Background(), payload("s1", "mouse_click", int64(i))))
	}
	require.NoError(t, sink.Shutdown())
	assert.Len(t, store.rows(), 5)
	require.NoError(t, sink.Shutdown())
}

func TestClickHouseSinkKeepsDistinctEventsInSameMillisecond(t *testing.T) {
	store := &fakeStore{}
	deliveryLog := &fakeLog{delivered: map[string]bool{}}
	sink := NewClickHouseSink(100, 3, time.Hour, store, deliveryLog)
	sink.Start()
	defer sink.Shutdown()

	ctx := context.Background()
	first := payload("s1", "mouse_click", 7)
	first["event_id"] = "e-1"
	second := payload("s1", "mouse_click", 7)
	second["event_id"] = "e-2"
	require.NoError(t, sink.Send(ctx, first))
	require.NoError(t, sink.Send(ctx, second))
	require.NoError(t, sink.Send(ctx, first))

	require.Eventually(t, func() bool { return len(store.rows()) == 2 }, time.Second, 5*time.Millisecond)
	rows := store.rows()
	assert.Equal(t, "e-1", rows[0]["event_id"])
	assert.Equal(t, "e-2", rows[1]["event_id"])
	require.Eventually(t, func() bool {
		return deliveryLog.isDelivered(first) && deliveryLog.isDelivered(second)
	}, time.Second, 5*time.Millisecond)
}
