// Package subscription holds the set of data-point identifiers the displayed
// page depends on, and the set of widget kinds present on it.
//
// The registry is rebuilt from scratch on every page change: Clear empties both
// sets and the new page's widgets register their own interests. An identifier
// that was never registered never causes a refresh, even if it has a value.
package subscription

import (
	"sort"
	"sync"

	"github.com/nerrad567/tileboard/internal/demo"
)

// Kind tags a family of widgets. The Core uses the active kinds to decide
// which kind-specific refresh routines a page needs.
type Kind string

// Widget kinds.
const (
	KindPlug        Kind = "plug"
	KindLight       Kind = "light"
	KindHeater      Kind = "heater"
	KindWindow      Kind = "window"
	KindTemperature Kind = "temperature"
	KindMedia       Kind = "media"
	KindDoor        Kind = "door"
	KindHTML        Kind = "html"
	KindCalendar    Kind = "calendar"
	KindText        Kind = "text"
)

// Registry tracks watched identifiers and active widget kinds.
type Registry struct {
	mu      sync.RWMutex
	watched map[string]demo.ValueKind
	kinds   map[Kind]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		watched: make(map[string]demo.ValueKind),
		kinds:   make(map[Kind]struct{}),
	}
}

// Watch adds id to the watched set and kind to the active kinds.
// Registering the same id again is a no-op apart from keeping the first value kind.
// An empty kind only watches the identifier.
func (r *Registry) Watch(id string, kind Kind, valueKind demo.ValueKind) {
	if id == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.watched[id]; !ok {
		r.watched[id] = valueKind
	}
	if kind != "" {
		r.kinds[kind] = struct{}{}
	}
}

// IsWatched reports whether id is registered for the current page.
func (r *Registry) IsWatched(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.watched[id]
	return ok
}

// HasKind reports whether any widget of the given kind is on the current page.
func (r *Registry) HasKind(kind Kind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.kinds[kind]
	return ok
}

// ValueKind returns the value kind declared when id was registered.
func (r *Registry) ValueKind(id string) (demo.ValueKind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	vk, ok := r.watched[id]
	return vk, ok
}

// Clear empties both sets.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.watched = make(map[string]demo.ValueKind)
	r.kinds = make(map[Kind]struct{})
	r.mu.Unlock()
}

// IDs returns the watched identifiers in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.watched))
	for id := range r.watched {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Kinds returns the active widget kinds in sorted order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]Kind, 0, len(r.kinds))
	for k := range r.kinds {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
