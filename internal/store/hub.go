package store

import (
	"context"
	"sync"
)

// Hub fans committed changes out to live queries. Each watcher re-runs its
// query when a changed path falls inside it; bursts of changes coalesce
// into one re-run.
type Hub struct {
	mu       sync.Mutex
	watchers map[*watcher]struct{}
}

type watcher struct {
	q    Query
	kick chan struct{}
}

func NewHub() *Hub {
	return &Hub{watchers: make(map[*watcher]struct{})}
}

// Watch starts a live query. fetch runs the query against the backend.
// Callbacks run on a dedicated goroutine, one at a time. After cancel the
// goroutine exits; a delivery already under way may still complete.
func (h *Hub) Watch(ctx context.Context, q Query, fetch func(context.Context) ([]Document, error), onSnapshot func([]Document), onError func(error)) func() {
	wctx, cancel := context.WithCancel(ctx)
	w := &watcher{q: q, kick: make(chan struct{}, 1)}
	w.kick <- struct{}{}

	h.mu.Lock()
	h.watchers[w] = struct{}{}
	h.mu.Unlock()

	go func() {
		for {
			select {
			case <-wctx.Done():
				return
			case <-w.kick:
			}
			docs, err := fetch(wctx)
			if wctx.Err() != nil {
				return
			}
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			onSnapshot(docs)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.watchers, w)
			h.mu.Unlock()
			cancel()
		})
	}
}

// Change is one committed write as subscriptions see it. Before and After
// hold the document's routing fields on either side of the write; nil means
// the document did not exist there. An opaque change only names the path.
type Change struct {
	Path   string         `json:"path"`
	Before map[string]any `json:"before"`
	After  map[string]any `json:"after"`
	Opaque bool           `json:"opaque,omitempty"`
}

// NewChange keeps the routing fields of before and after.
func NewChange(path string, before, after map[string]any) Change {
	return Change{Path: path, Before: RoutingFields(before), After: RoutingFields(after)}
}

// RoutingFields keeps the top-level values filters can be evaluated on.
// Nested maps are dropped; filters on them are treated as satisfied.
func RoutingFields(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		if _, nested := v.(map[string]any); nested {
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

// Publish wakes every watcher whose result one of changes can alter.
func (h *Hub) Publish(changes []Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for w := range h.watchers {
		for _, c := range changes {
			if w.q.Affects(c) {
				w.wake()
				break
			}
		}
	}
}

// PublishAll wakes every watcher.
func (h *Hub) PublishAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for w := range h.watchers {
		w.wake()
	}
}

// Len returns the number of live watchers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers)
}

func (w *watcher) wake() {
	select {
	case w.kick <- struct{}{}:
	default:
		// a re-run is already pending
	}
}
