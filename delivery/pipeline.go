// Package delivery turns events into network requests: immediate sends while
// online, a bounded retry queue drained in batches, and the fire-and-forget
// beacon used at page teardown.
package delivery

import (
	"context"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"kucukaslan/tracker/domain"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBatchSize     = 10
	DefaultRetryDelay    = time.Second
	DefaultQueueCapacity = 1000
)

// Stamper writes the current identity and page URL into an outbound payload.
type Stamper func(domain.Payload)

// Options tune a Pipeline. Zero values take the defaults above.
type Options struct {
	BatchSize     int
	RetryDelay    time.Duration
	QueueCapacity int
	Logger        *log.Logger
}

// Stats is a diagnostics snapshot. It is not synchronized with in-flight
// sends and must not drive correctness decisions.
type Stats = domain.DeliveryStats

// Pipeline is Online until SetOnline(false) and back only on SetOnline(true).
type Pipeline struct {
	transport  Transport
	beacon     Beacon
	stamp      Stamper
	queue      *Queue
	batchSize  int
	retryDelay time.Duration
	logger     *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	online     bool
	draining   bool
	closed     bool
	retryTimer *time.Timer

	sent    atomic.Int64
	failed  atomic.Int64
	beacons atomic.Int64
}

// NewPipeline wires a transport and an optional beacon. A nil stamp leaves
// payloads as rendered.
func NewPipeline(transport Transport, beacon Beacon, stamp Stamper, opts Options) *Pipeline {
	if opts.BatchSize < 1 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.QueueCapacity == 0 {
		opts.QueueCapacity = DefaultQueueCapacity
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if stamp == nil {
		stamp = func(domain.Payload) {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pipeline{
		transport:  transport,
		beacon:     beacon,
		stamp:      stamp,
		queue:      NewQueue(opts.QueueCapacity),
		batchSize:  opts.BatchSize,
		retryDelay: opts.RetryDelay,
		logger:     opts.Logger,
		ctx:        ctx,
		cancel:     cancel,
		online:     true,
	}
}

// Send stamps e and either sends it now (online) or queues it (offline).
// It never blocks on the network.
func (p *Pipeline) Send(e domain.Event) {
	p.dispatch(p.render(e))
}

// Beacon stamps e and hands it to the fire-and-forget primitive. Without a
// beacon it falls back to a normal send.
func (p *Pipeline) Beacon(e domain.Event) {
	payload := p.render(e)
	p.logger.Println("Beacon:", payload["type"])
	if p.beacon != nil && p.beacon.Beacon(payload) {
		p.beacons.Add(1)
		return
	}
	p.dispatch(payload)
}

// SetOnline applies a connectivity signal. Going online drains the queue.
func (p *Pipeline) SetOnline(online bool) {
	p.mu.Lock()
	was := p.online
	p.online = online
	p.mu.Unlock()

	if online && !was {
		p.logger.Println("Connectivity restored, draining", p.queue.Len(), "queued events")
		p.startDrain()
	}
}

func (p *Pipeline) Online() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online
}

// Queue exposes the retry queue for diagnostics.
func (p *Pipeline) Queue() *Queue {
	return p.queue
}

func (p *Pipeline) Stats() Stats {
	return Stats{
		Online:  p.Online(),
		Queued:  p.queue.Len(),
		Dropped: p.queue.Dropped(),
		Sent:    p.sent.Load(),
		Failed:  p.failed.Load(),
		Beacons: p.beacons.Load(),
	}
}

// Close stops scheduling drains and waits for in-flight work until ctx ends.
// Queued payloads stay in the queue.
func (p *Pipeline) Close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	if p.retryTimer != nil {
		p.retryTimer.Stop()
		p.retryTimer = nil
	}
	p.mu.Unlock()
	p.cancel()

	if undelivered := p.queue.Snapshot(); len(undelivered) > 0 {
		p.logger.Println("Closing with", len(undelivered), "undelivered events")
		for _, payload := range undelivered {
			p.logger.Println("Undelivered:", payload["type"], payload["event_id"])
		}
	}
	return WaitGroup(ctx, &p.wg)
}

func (p *Pipeline) render(e domain.Event) domain.Payload {
	payload := e.Payload()
	p.stamp(payload)
	payload["event_id"] = uuid.NewString()
	return payload
}

func (p *Pipeline) dispatch(payload domain.Payload) {
	p.logger.Println("Event:", payload["type"])

	p.mu.Lock()
	if !p.online || p.closed {
		p.enqueueLocked(payload)
		p.mu.Unlock()
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		if err := p.deliver(payload); err != nil {
			p.logger.Println("Error sending event:", err)
			p.mu.Lock()
			p.enqueueLocked(payload)
			p.scheduleRetryLocked()
			p.mu.Unlock()
			return
		}
		p.logger.Println("Event sent successfully")
	}()
}

func (p *Pipeline) deliver(payload domain.Payload) error {
	if err := p.transport.Send(context.Background(), payload); err != nil {
		p.failed.Add(1)
		return err
	}
	p.sent.Add(1)
	return nil
}

func (p *Pipeline) enqueueLocked(payload domain.Payload) {
	if dropped := p.queue.Push(payload); dropped > 0 {
		p.logger.Println("Send queue full, dropped", dropped, "oldest events")
	}
}

// scheduleRetryLocked arms one delayed drain unless a drain is running; a
// running drain re-checks the queue before it exits.
func (p *Pipeline) scheduleRetryLocked() {
	if p.draining || p.closed || !p.online || p.retryTimer != nil {
		return
	}
	p.retryTimer = time.AfterFunc(p.retryDelay, func() {
		p.mu.Lock()
		p.retryTimer = nil
		p.mu.Unlock()
		p.startDrain()
	})
}

func (p *Pipeline) startDrain() {
	p.mu.Lock()
	if p.draining || p.closed || !p.online {
		p.mu.Unlock()
		return
	}
	p.draining = true
	p.wg.Add(1)
	p.mu.Unlock()

	go p.drain()
}

// drain sends the queue in FIFO batches. A batch is dispatched concurrently
// and the next one starts only after the whole batch succeeded; a failed batch
// goes back to the front and the loop waits retryDelay before trying again.
func (p *Pipeline) drain() {
	defer p.wg.Done()

	for {
		if !p.keepDraining() {
			return
		}
		batch := p.queue.PopFront(p.batchSize)
		if len(batch) == 0 {
			continue
		}

		if err := p.sendBatch(batch); err != nil {
			p.logger.Println("Batch send failed:", err)
			if dropped := p.queue.PushFront(batch); dropped > 0 {
				p.logger.Println("Send queue full, dropped", dropped, "oldest events")
			}
			select {
			case <-time.After(p.retryDelay):
			case <-p.ctx.Done():
				p.stopDraining()
				return
			}
		}
	}
}

// keepDraining reports whether another batch should be attempted and clears
// the draining flag when not, under the same lock enqueue uses.
func (p *Pipeline) keepDraining() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.online && !p.closed && p.queue.Len() > 0 {
		return true
	}
	p.draining = false
	return false
}

func (p *Pipeline) stopDraining() {
	p.mu.Lock()
	p.draining = false
	p.mu.Unlock()
}

func (p *Pipeline) sendBatch(batch []domain.Payload) error {
	var g errgroup.Group
	for _, payload := range batch {
		g.Go(func() error {
			return p.deliver(payload)
		})
	}
	return g.Wait()
}
