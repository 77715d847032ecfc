package extension

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Item is anything registrable: it exposes the identifier used for
// deduplication and the owning plugin (empty for host registrations).
type Item interface {
	ExtensionID() string
	OwnerName() string
}

// Registry is an ordered, deduplicated collection of one extension kind.
type Registry[T Item] struct {
	mu    sync.RWMutex
	kind  string
	order []string
	items map[string]T
	log   *logrus.Logger
}

// NewRegistry creates an empty registry. The kind string appears in warnings.
func NewRegistry[T Item](kind string, log *logrus.Logger) *Registry[T] {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Registry[T]{
		kind:  kind,
		items: make(map[string]T),
		log:   log,
	}
}

// Add registers item. A duplicate identifier is rejected with a warning and
// reported as false; the first registration always wins.
func (r *Registry[T]) Add(item T) bool {
	id := item.ExtensionID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.items[id]; ok {
		r.log.WithFields(logrus.Fields{
			"kind":   r.kind,
			"id":     id,
			"plugin": item.OwnerName(),
			"holder": existing.OwnerName(),
		}).Warn("duplicate extension registration ignored")
		return false
	}

	r.items[id] = item
	r.order = append(r.order, id)
	return true
}

// Remove deletes the item with the given identifier, if present.
func (r *Registry[T]) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return false
	}
	delete(r.items, id)
	for i, n := range r.order {
		if n == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// RemoveAllForOwner deletes every item owned by the named plugin and returns
// the number removed.
func (r *Registry[T]) RemoveAllForOwner(owner string) int {
	if owner == "" {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	kept := r.order[:0]
	for _, id := range r.order {
		if r.items[id].OwnerName() == owner {
			delete(r.items, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
	return removed
}

// Get returns the item with the given identifier.
func (r *Registry[T]) Get(id string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	return item, ok
}

// All returns a copy of the items in registration order. Callers may mutate
// the returned slice freely.
func (r *Registry[T]) All() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out
}

// Len returns the number of registered items.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
