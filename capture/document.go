package capture

import (
	"slices"
	"sync"
)

// Document is the part of the DOM the video tracker needs: a query for the
// video elements present now and a subtree watch for inserted nodes.
type Document interface {
	Videos() []Video
	Observe(fn func(added []Element)) Subscription
}

// MemDocument is an in-memory Document. Insert plays the role of the DOM
// mutation; observers see the inserted top level nodes.
type MemDocument struct {
	mu        sync.Mutex
	videos    []Video
	byKey     map[string]Video
	nextID    int
	observers []observer
}

type observer struct {
	id int
	fn func([]Element)
}

var _ Document = (*MemDocument)(nil)

func NewMemDocument() *MemDocument {
	return &MemDocument{byKey: make(map[string]Video)}
}

func (d *MemDocument) Videos() []Video {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.videos)
}

// Video finds a video previously inserted with the given key.
func (d *MemDocument) Video(key string) (Video, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.byKey[key]
	return v, ok
}

func (d *MemDocument) Observe(fn func(added []Element)) Subscription {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.observers = append(d.observers, observer{id: id, fn: fn})
	d.mu.Unlock()

	return detachOnce(func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.observers = slices.DeleteFunc(d.observers, func(o observer) bool { return o.id == id })
	})
}

// ObserverCount is the number of attached mutation observers.
func (d *MemDocument) ObserverCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.observers)
}

// Insert adds nodes to the document, indexes any videos in their subtrees
// and notifies observers.
func (d *MemDocument) Insert(nodes ...Element) {
	d.mu.Lock()
	for _, n := range nodes {
		Walk(n, func(el Element) {
			v, ok := el.(Video)
			if !ok {
				return
			}
			if _, seen := d.byKey[v.Key()]; seen {
				return
			}
			d.byKey[v.Key()] = v
			d.videos = append(d.videos, v)
		})
	}
	obs := slices.Clone(d.observers)
	d.mu.Unlock()

	for _, o := range obs {
		o.fn(nodes)
	}
}

// VideosIn returns the videos in el's subtree, el included.
func VideosIn(el Element) []Video {
	var out []Video
	Walk(el, func(e Element) {
		if v, ok := e.(Video); ok {
			out = append(out, v)
		}
	})
	return out
}
