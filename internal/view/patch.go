package view

import "sync"

// Op is a kind of element mutation.
type Op string

// Patch operations.
const (
	OpText        Op = "text"
	OpHTML        Op = "html"
	OpAttr        Op = "attr"
	OpStyle       Op = "style"
	OpAddClass    Op = "add_class"
	OpRemoveClass Op = "remove_class"
)

// Patch is one property change of one element.
type Patch struct {
	Element string `json:"el"`
	Op      Op     `json:"op"`
	Name    string `json:"name,omitempty"`
	Value   string `json:"value,omitempty"`
}

// Page is a serialisable copy of a Document.
type Page struct {
	Name     string        `json:"name"`
	Title    string        `json:"title,omitempty"`
	Summary  bool          `json:"summary"`
	Elements []ElementView `json:"elements"`
}

// ElementView is a serialisable copy of an Element.
type ElementView struct {
	ID      string            `json:"id"`
	Kind    string            `json:"kind,omitempty"`
	Parent  string            `json:"parent,omitempty"`
	Attrs   map[string]string `json:"attrs,omitempty"`
	Text    string            `json:"text,omitempty"`
	HTML    string            `json:"html,omitempty"`
	Classes []string          `json:"classes,omitempty"`
	Styles  map[string]string `json:"styles,omitempty"`
}

// EventType identifies what a view Event carries.
type EventType string

// Event types.
const (
	EventPatch        EventType = "patch"
	EventPage         EventType = "page"
	EventReload       EventType = "reload"
	EventConnectivity EventType = "connectivity"
)

// Event is one message to the browsers showing the dashboard.
type Event struct {
	Type      EventType `json:"type"`
	Page      string    `json:"page,omitempty"`
	Patches   []Patch   `json:"patches,omitempty"`
	Document  *Page     `json:"document,omitempty"`
	Connected *bool     `json:"connected,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

// PatchEvent carries the patches of one dispatch.
func PatchEvent(page string, patches []Patch) Event {
	return Event{Type: EventPatch, Page: page, Patches: patches}
}

// PageEvent carries a full page after navigation.
func PageEvent(p Page) Event {
	return Event{Type: EventPage, Page: p.Name, Document: &p}
}

// ReloadEvent tells browsers to reload the whole page.
func ReloadEvent(reason string) Event {
	return Event{Type: EventReload, Reason: reason}
}

// ConnectivityEvent flips the connectivity indicator.
func ConnectivityEvent(connected bool) Event {
	return Event{Type: EventConnectivity, Connected: &connected}
}

// Sink receives view events. Publish must not block for long; it is called
// with the synchronisation core locked.
type Sink interface {
	Publish(ev Event)
}

// Discard is a Sink that drops every event.
var Discard Sink = discardSink{}

type discardSink struct{}

func (discardSink) Publish(Event) {}

// Recorder is a Sink that keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish appends ev.
func (r *Recorder) Publish(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Patches returns every recorded patch in publish order.
func (r *Recorder) Patches() []Patch {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Patch
	for _, ev := range r.events {
		out = append(out, ev.Patches...)
	}
	return out
}

// Count returns the number of recorded events of type t.
func (r *Recorder) Count(t EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
