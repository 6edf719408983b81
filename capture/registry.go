package capture

import (
	"slices"
	"sync"
)

// Subscription detaches a listener. Detach is safe to call more than once.
type Subscription interface {
	Detach()
}

type subscriptionFunc func()

func (f subscriptionFunc) Detach() { f() }

func detachOnce(fn func()) Subscription {
	var once sync.Once
	return subscriptionFunc(func() { once.Do(fn) })
}

// Subscriptions collects detach handles so a whole observer set can be torn
// down at once.
type Subscriptions []Subscription

func (s *Subscriptions) Add(sub Subscription) {
	*s = append(*s, sub)
}

// DetachAll detaches every handle and empties the list.
func (s *Subscriptions) DetachAll() {
	for _, sub := range *s {
		sub.Detach()
	}
	*s = nil
}

type handler struct {
	id int
	fn func(Signal)
}

// Registry maps a signal kind to its handlers in registration order.
type Registry struct {
	mu       sync.Mutex
	nextID   int
	handlers map[SignalKind][]handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[SignalKind][]handler)}
}

// On registers fn for every signal of type S.
func On[S Signal](r *Registry, fn func(S)) Subscription {
	var zero S
	kind := zero.SignalKind()

	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.handlers[kind] = append(r.handlers[kind], handler{
		id: id,
		fn: func(s Signal) {
			if typed, ok := s.(S); ok {
				fn(typed)
			}
		},
	})
	r.mu.Unlock()

	return detachOnce(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.handlers[kind] = slices.DeleteFunc(r.handlers[kind], func(h handler) bool { return h.id == id })
	})
}

// Dispatch runs the handlers registered for s's kind and reports how many ran.
// Handlers may register or detach listeners while running.
func (r *Registry) Dispatch(s Signal) int {
	if s == nil {
		return 0
	}
	r.mu.Lock()
	hs := slices.Clone(r.handlers[s.SignalKind()])
	r.mu.Unlock()

	for _, h := range hs {
		h.fn(s)
	}
	return len(hs)
}

// Len is the number of handlers attached for kind.
func (r *Registry) Len(kind SignalKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handlers[kind])
}
