package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"kucukaslan/tracker/database"
	"kucukaslan/tracker/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBufferDrain(t *testing.T) {
	b := NewEventBuffer()
	_, ok := b.Drain()
	assert.False(t, ok)

	ts := time.UnixMilli(1_700_000_000_000)
	b.Append(LinkClicks, domain.NewEvent(domain.KindLinkClick, map[string]any{"url": "/a"}, ts))
	b.Append(LinkClicks, domain.NewEvent(domain.KindFileDownload, map[string]any{"url": "/b.pdf"}, ts))
	b.Append(ScrollEvents, domain.NewEvent(domain.KindScrollSample, nil, ts))
	b.CountClick()
	b.CountClick()

	batch, ok := b.Drain()
	require.True(t, ok)
	assert.Zero(t, bufferedTotal(b))
	assert.Equal(t, 3, batch.Len())
	require.Len(t, batch.Events[LinkClicks], 2)
	assert.Equal(t, domain.KindLinkClick, batch.Events[LinkClicks][0].Kind())
	assert.Equal(t, domain.KindFileDownload, batch.Events[LinkClicks][1].Kind())
	assert.Equal(t, 2, b.ClickCount(), "click count survives a drain")

	event := batch.Event(ts)
	assert.Equal(t, domain.KindPeriodic, event.Kind())
	raw, err := json.Marshal(event.Payload())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, c := range Categories {
		assert.NotNil(t, decoded[string(c)], c)
	}
	assert.Len(t, decoded[string(LinkClicks)], 2)
	assert.Empty(t, decoded[string(VideoEvents)])
	assert.Equal(t, float64(2), decoded["clickCount"])
	assert.Equal(t, "periodic_events", decoded["type"])
	assert.Equal(t, float64(ts.UnixMilli()), decoded["ts"])
}

func TestEventBufferConcurrentAppendAndDrain(t *testing.T) {
	b := NewEventBuffer()
	const writers, perWriter = 8, 250

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		drained int
	)
	collect := func() {
		if batch, ok := b.Drain(); ok {
			mu.Lock()
			drained += batch.Len()
			mu.Unlock()
		}
	}

	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWriter {
				b.Append(MouseClicks, domain.NewEvent(domain.KindMouseClick, nil, time.Now()))
			}
		}()
	}
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				collect()
			}
		}
	}()
	wg.Wait()
	close(done)
	collect()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, writers*perWriter, drained, "every event is drained exactly once")
}

func TestFlusher(t *testing.T) {
	b := NewEventBuffer()
	var (
		mu     sync.Mutex
		events []domain.Event
	)
	sink := func(e domain.Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	}
	sent := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(events)
	}

	f := NewFlusher(b, 30*time.Millisecond, sink, nil)
	f.Start()
	f.Start()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, sent(), "empty buffers never produce a payload")

	b.Append(FormSubmissions, domain.NewEvent(domain.KindFormSubmit, nil, time.Now()))
	require.Eventually(t, func() bool { return sent() == 1 }, time.Second, 5*time.Millisecond)

	count, last := f.Flushes()
	assert.Equal(t, 1, count)
	assert.False(t, last.IsZero())

	require.NoError(t, f.Shutdown())
	b.Append(FormSubmissions, domain.NewEvent(domain.KindFormSubmit, nil, time.Now()))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, sent(), "no flush after shutdown")
	assert.Equal(t, 1, bufferedTotal(b))
	require.NoError(t, f.Shutdown())
}

func TestFlusherDefaultInterval(t *testing.T) {
	f := NewFlusher(NewEventBuffer(), 0, func(domain.Event) {}, nil)
	assert.Equal(t, DefaultFlushInterval, f.flushInterval)
	assert.False(t, f.Flush())
}

type metricsStub struct {
	got  domain.MetricRequest
	rows []database.MetricResult
	err  error
}

func (m *metricsStub) GetMetrics(_ context.Context, req domain.MetricRequest) ([]database.MetricResult, error) {
	m.got = req
	return m.rows, m.err
}

func TestMetricsService(t *testing.T) {
	_, err := NewMetricsService(nil)
	assert.Error(t, err)

	group := "type"
	stub := &metricsStub{rows: []database.MetricResult{{Bucket: "page_view", TotalEvents: 7, UniqueSessions: 3, UniqueUsers: 2}}}
	svc, err := NewMetricsService(stub)
	require.NoError(t, err)

	resp, err := svc.GetMetrics(context.Background(), &domain.MetricRequest{GroupBy: &group})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, []domain.MetricResult{{Bucket: "page_view", TotalEvents: 7, UniqueSessions: 3, UniqueUsers: 2}}, resp.Metrics)
	assert.Equal(t, &group, stub.got.GroupBy)

	stub.err = errors.New("timeout")
	resp, err = svc.GetMetrics(context.Background(), &domain.MetricRequest{})
	assert.Error(t, err)
	assert.False(t, resp.Success)
}

func bufferedTotal(b *EventBuffer) int {
	total := 0
	for _, n := range b.Sizes() {
		total += n
	}
	return total
}
