package services

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"kucukaslan/tracker/domain"
)

// DefaultFlushInterval is the periodic flush cadence when none is configured.
const DefaultFlushInterval = 7 * time.Second

// Sink receives the packaged periodic_events event.
type Sink func(domain.Event)

// Flusher periodically drains the EventBuffer into one periodic_events event
type Flusher struct {
	buffer        *EventBuffer
	sink          Sink
	flushInterval time.Duration
	now           func() time.Time
	logger        *log.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	mu            sync.Mutex
	isRunning     bool
	flushes       int
	lastFlushTime time.Time
}

// NewFlusher creates a Flusher; a non-positive interval falls back to the default.
func NewFlusher(buffer *EventBuffer, flushInterval time.Duration, sink Sink, logger *log.Logger) *Flusher {
	if flushInterval <= 0 {
		flushInterval = DefaultFlushInterval
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Flusher{
		buffer:        buffer,
		sink:          sink,
		flushInterval: flushInterval,
		now:           time.Now,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start launches the background worker goroutine
func (f *Flusher) Start() {
	f.mu.Lock()
	if f.isRunning {
		f.mu.Unlock()
		return
	}
	f.isRunning = true
	f.mu.Unlock()

	f.wg.Add(1)
	go f.worker()
	f.logger.Println("Flusher started, interval", f.flushInterval)
}

func (f *Flusher) worker() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.ctx.Done():
			return
		case <-ticker.C:
			f.Flush()
		}
	}
}

// Flush drains the buffer and hands one periodic_events event to the sink.
// It reports false when every category was empty and nothing was sent.
func (f *Flusher) Flush() bool {
	batch, ok := f.buffer.Drain()
	if !ok {
		return false
	}

	now := f.now()
	f.sink(batch.Event(now))

	f.mu.Lock()
	f.flushes++
	f.lastFlushTime = now
	f.mu.Unlock()

	f.logger.Printf("Flusher: flushed %d buffered events", batch.Len())
	return true
}

// Shutdown stops the ticker. Buffered events are left for the caller.
func (f *Flusher) Shutdown() error {
	f.mu.Lock()
	if !f.isRunning {
		f.mu.Unlock()
		f.cancel()
		return nil
	}
	f.isRunning = false
	f.mu.Unlock()

	f.cancel()
	f.wg.Wait()
	f.logger.Println("Flusher: shutdown complete")
	return nil
}

// Flushes returns how many periodic_events were emitted and when the last one was.
func (f *Flusher) Flushes() (int, time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flushes, f.lastFlushTime
}
