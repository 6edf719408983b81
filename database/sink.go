package database

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"kucukaslan/tracker/domain"
)

var (
	// ErrBufferFull is returned when the sink's buffer channel is full
	ErrBufferFull = errors.New("event buffer is full")
)

// EventStore persists a batch of payloads
type EventStore interface {
	SaveEvents(ctx context.Context, payloads []domain.Payload) error
}

// DeliveryLog remembers delivered payloads by domain.DedupKey
type DeliveryLog interface {
	AreEventsDelivered(ctx context.Context, payloads []domain.Payload) (map[string]bool, error)
	SetEventsDelivered(ctx context.Context, payloads []domain.Payload) error
}

// ClickHouseSink is a delivery transport that batches payloads into
// ClickHouse. Send only enqueues; a background worker inserts full batches
// and, on a ticker, partial ones. Payloads already recorded in the delivery
// log are skipped.
type ClickHouseSink struct {
	eventChan     chan domain.Payload
	capacity      int
	batchSize     int
	flushInterval time.Duration
	store         EventStore
	deliveryLog   DeliveryLog
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	mu            sync.Mutex
	isRunning     bool
	currentBatch  []domain.Payload
	lastFlushTime time.Time
	inserted      int64
}

// NewClickHouseSink creates a sink. deliveryLog may be nil, which disables
// deduplication.
func NewClickHouseSink(
	capacity int,
	batchSize int,
	flushInterval time.Duration,
	store EventStore,
	deliveryLog DeliveryLog,
) *ClickHouseSink {
	if batchSize < 1 {
		batchSize = 1
	}
	if flushInterval <= 0 {
		flushInterval = time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ClickHouseSink{
		eventChan:     make(chan domain.Payload, capacity),
		capacity:      capacity,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		store:         store,
		deliveryLog:   deliveryLog,
		ctx:           ctx,
		cancel:        cancel,
		currentBatch:  make([]domain.Payload, 0, batchSize),
		lastFlushTime: time.Now(),
	}
}

// Start launches the background worker goroutine that inserts payloads
func (s *ClickHouseSink) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.worker()
	log.Println("ClickHouseSink started")
}

// Send enqueues a payload without blocking. A full buffer is a delivery
// failure, so the pipeline keeps the payload and retries it later.
func (s *ClickHouseSink) Send(ctx context.Context, payload domain.Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s.eventChan <- payload:
		return nil
	default:
		return ErrBufferFull
	}
}

func (s *ClickHouseSink) worker() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.flushRemaining()
			return

		case payload := <-s.eventChan:
			s.mu.Lock()
			s.currentBatch = append(s.currentBatch, payload)
			shouldFlush := len(s.currentBatch) >= s.batchSize
			s.mu.Unlock()

			if shouldFlush {
				s.flushBatch()
			}

		case <-ticker.C:
			s.mu.Lock()
			hasEvents := len(s.currentBatch) > 0
			s.mu.Unlock()

			if hasEvents {
				s.flushBatch()
			}
		}
	}
}

// flushBatch inserts the current batch. A failed insert puts the rows back
// for the next flush as long as the batch stays within capacity.
func (s *ClickHouseSink) flushBatch() {
	s.mu.Lock()
	if len(s.currentBatch) == 0 {
		s.mu.Unlock()
		return
	}

	batch := make([]domain.Payload, len(s.currentBatch))
	copy(batch, s.currentBatch)
	s.currentBatch = s.currentBatch[:0]
	s.mu.Unlock()

	pending := s.filterDelivered(batch)
	if len(pending) == 0 {
		log.Printf("ClickHouseSink: All %d events in batch were already delivered", len(batch))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.store.SaveEvents(ctx, pending); err != nil {
		log.Printf("ClickHouseSink: Failed to insert batch of %d events: %v", len(pending), err)
		s.requeue(pending)
		return
	}

	s.mu.Lock()
	s.inserted += int64(len(pending))
	s.lastFlushTime = time.Now()
	s.mu.Unlock()
	log.Printf("ClickHouseSink: Inserted batch of %d events (filtered from %d)", len(pending), len(batch))

	if s.deliveryLog == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.deliveryLog.SetEventsDelivered(context.Background(), pending); err != nil {
			log.Printf("ClickHouseSink: Failed to mark events as delivered in Redis: %v", err)
		}
	}()
}

func (s *ClickHouseSink) requeue(pending []domain.Payload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.capacity > 0 && len(s.currentBatch)+len(pending) > s.capacity {
		log.Printf("ClickHouseSink: Dropping %d events, retry buffer is full", len(pending))
		return
	}
	s.currentBatch = append(pending, s.currentBatch...)
}

// flushRemaining inserts whatever is buffered during shutdown
func (s *ClickHouseSink) flushRemaining() {
	drained := 0
	for {
		select {
		case payload := <-s.eventChan:
			s.mu.Lock()
			s.currentBatch = append(s.currentBatch, payload)
			s.mu.Unlock()
			drained++
		default:
			if drained > 0 {
				log.Printf("ClickHouseSink: Drained %d events from channel during shutdown", drained)
			}
			s.flushBatch()
			return
		}
	}
}

// filterDelivered drops payloads the delivery log already knows and
// duplicates within the batch itself
func (s *ClickHouseSink) filterDelivered(payloads []domain.Payload) []domain.Payload {
	delivered := map[string]bool{}
	if s.deliveryLog != nil {
		known, err := s.deliveryLog.AreEventsDelivered(context.Background(), payloads)
		if err != nil {
			log.Printf("ClickHouseSink: Redis check failed, assuming all events are new: %v", err)
		} else {
			delivered = known
		}
	}

	pending := make([]domain.Payload, 0, len(payloads))
	seen := make(map[string]bool, len(payloads))
	for _, p := range payloads {
		key := domain.DedupKey(p)
		if delivered[key] || seen[key] {
			continue
		}
		seen[key] = true
		pending = append(pending, p)
	}
	return pending
}

// Shutdown stops the worker after inserting the remaining payloads
func (s *ClickHouseSink) Shutdown() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	log.Println("ClickHouseSink: Initiating graceful shutdown...")
	s.cancel()
	s.wg.Wait()
	log.Println("ClickHouseSink: Shutdown complete")
	return nil
}

// GetBufferSize returns the number of payloads waiting in the channel
func (s *ClickHouseSink) GetBufferSize() int {
	return len(s.eventChan)
}

// GetBatchSize returns the number of payloads in the pending batch
func (s *ClickHouseSink) GetBatchSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.currentBatch)
}

// Inserted returns how many payloads reached ClickHouse
func (s *ClickHouseSink) Inserted() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inserted
}
