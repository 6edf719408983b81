package delivery

import (
	"slices"
	"sync"

	"kucukaslan/tracker/domain"
)

// Queue is the FIFO of payloads waiting for delivery. It is bounded: when a
// push would exceed capacity the oldest payloads are evicted and counted as
// dropped. Eviction trades the oldest data for bounded memory during long
// offline periods.
type Queue struct {
	mu       sync.Mutex
	items    []domain.Payload
	capacity int
	dropped  int
}

// NewQueue returns a queue holding at most capacity payloads; capacity < 1
// means unbounded.
func NewQueue(capacity int) *Queue {
	return &Queue{capacity: capacity}
}

// Push appends payloads at the back and returns how many were evicted.
func (q *Queue) Push(payloads ...domain.Payload) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, payloads...)
	return q.evict()
}

// PushFront puts payloads back at the front, keeping their order. Used to
// requeue a failed batch ahead of everything queued after it.
func (q *Queue) PushFront(payloads []domain.Payload) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(slices.Clone(payloads), q.items...)
	return q.evict()
}

// PopFront removes and returns up to n payloads from the front.
func (q *Queue) PopFront(n int) []domain.Payload {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n <= 0 || len(q.items) == 0 {
		return nil
	}
	n = min(n, len(q.items))
	batch := slices.Clone(q.items[:n])
	q.items = slices.Delete(q.items, 0, n)
	return batch
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped is the total number of payloads evicted so far.
func (q *Queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Snapshot copies the queued payloads in delivery order.
func (q *Queue) Snapshot() []domain.Payload {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.items)
}

func (q *Queue) evict() int {
	if q.capacity < 1 || len(q.items) <= q.capacity {
		return 0
	}
	over := len(q.items) - q.capacity
	q.items = slices.Delete(q.items, 0, over)
	q.dropped += over
	return over
}
