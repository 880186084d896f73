package core

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/tileboard/internal/demo"
	"github.com/nerrad567/tileboard/internal/state"
	"github.com/nerrad567/tileboard/internal/subscription"
	"github.com/nerrad567/tileboard/internal/view"
	"github.com/nerrad567/tileboard/internal/widget"
)

// defaultQueueSize bounds pending pushes when Config.QueueSize is zero.
const defaultQueueSize = 1024

// Logger defines the logging interface used by the Core.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Observer is told about every store write. Observers are called with the
// Core locked; they must not block or call back into the Core.
type Observer interface {
	Observe(id string, st state.DataPointState)
}

// Interest is one identifier a page widget renders.
type Interest struct {
	ID        string
	Kind      subscription.Kind
	ValueKind demo.ValueKind
}

// Config holds Core settings.
type Config struct {
	// Demo makes RegisterInterest synthesise a value for unknown identifiers.
	Demo bool

	// QueueSize bounds the push queue.
	QueueSize int
}

// Stats are monotonically increasing Core counters.
type Stats struct {
	Updates    uint64 `json:"updates"`
	Dispatches uint64 `json:"dispatches"`
	Panics     uint64 `json:"panics"`
	Reloads    uint64 `json:"reloads"`
}

type update struct {
	id    string
	state state.DataPointState
}

// Core routes value changes to the displayed page.
type Core struct {
	mu        sync.Mutex
	store     *state.Store
	registry  *subscription.Registry
	generator *demo.Generator
	doc       *view.Document
	sink      view.Sink
	logger    Logger
	observers []Observer
	demo      bool
	now       func() time.Time

	connected bool
	failures  int
	onReload  func()

	queue   chan update
	done    chan struct{}
	running atomic.Bool

	updates    atomic.Uint64
	dispatches atomic.Uint64
	panics     atomic.Uint64
	reloads    atomic.Uint64
}

// New creates a Core over store and registry. generator is only used in demo
// mode and may be nil otherwise.
func New(cfg Config, store *state.Store, registry *subscription.Registry, generator *demo.Generator) *Core {
	size := cfg.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	if generator == nil {
		generator = demo.NewGenerator()
	}
	return &Core{
		store:     store,
		registry:  registry,
		generator: generator,
		sink:      view.Discard,
		logger:    noopLogger{},
		demo:      cfg.Demo,
		now:       time.Now,
		queue:     make(chan update, size),
		done:      make(chan struct{}),
	}
}

// SetLogger sets the logger for the Core.
func (c *Core) SetLogger(logger Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if logger == nil {
		logger = noopLogger{}
	}
	c.logger = logger
}

// SetSink sets where view events are published.
func (c *Core) SetSink(sink view.Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sink == nil {
		sink = view.Discard
	}
	c.sink = sink
}

// SetClock replaces the wall clock used by time-dependent routines.
func (c *Core) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// SetReloadHook sets a function run after a hard reload. It is called on its
// own goroutine and may call back into the Core.
func (c *Core) SetReloadHook(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReload = fn
}

// AddObserver registers o for every subsequent store write.
func (c *Core) AddObserver(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// Demo reports whether the Core runs in demo mode.
func (c *Core) Demo() bool { return c.demo }

// Get returns the cached state of id.
func (c *Core) Get(id string) (state.DataPointState, bool) {
	return c.store.Get(id)
}

// Snapshot returns a copy of the Value Store.
func (c *Core) Snapshot() map[string]state.DataPointState {
	return c.store.Snapshot()
}

// ValueKind returns the value kind id was registered with on the current page.
func (c *Core) ValueKind(id string) (demo.ValueKind, bool) {
	return c.registry.ValueKind(id)
}

// IsWatched reports whether the current page renders id.
func (c *Core) IsWatched(id string) bool {
	return c.registry.IsWatched(id)
}

// Stats returns the current counters.
func (c *Core) Stats() Stats {
	return Stats{
		Updates:    c.updates.Load(),
		Dispatches: c.dispatches.Load(),
		Panics:     c.panics.Load(),
		Reloads:    c.reloads.Load(),
	}
}

// OnUpdate applies one value change. The store is always written; the page is
// only refreshed when id is watched.
func (c *Core) OnUpdate(id string, st state.DataPointState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writeLocked(id, st)
	if !c.registry.IsWatched(id) {
		return
	}
	c.dispatchLocked(id)
	c.flushLocked()
}

// Push queues a backend notification for the Run loop. It blocks while the
// queue is full and fails with ErrStopped once Run has exited.
func (c *Core) Push(id string, st state.DataPointState) error {
	select {
	case <-c.done:
		return ErrStopped
	default:
	}
	select {
	case c.queue <- update{id: id, state: st}:
		return nil
	case <-c.done:
		return ErrStopped
	}
}

// Run applies queued pushes in order until ctx is cancelled.
func (c *Core) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return nil
		case u := <-c.queue:
			c.OnUpdate(u.id, u.state)
		}
	}
}

// RegisterInterest adds id to the watched set and kind to the active kinds.
// In demo mode an identifier without a cached value gets a synthetic one of
// valueKind, so Get never misses for a registered identifier.
func (c *Core) RegisterInterest(id string, kind subscription.Kind, valueKind demo.ValueKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registerLocked(Interest{ID: id, Kind: kind, ValueKind: valueKind})
}

// ClearInterest empties the watched set and the active kinds.
func (c *Core) ClearInterest() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registry.Clear()
}

// Navigate replaces the displayed page. The watch set is rebuilt from
// interests, the page is rendered from cached values and published whole.
func (c *Core) Navigate(doc *view.Document, interests []Interest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.registry.Clear()
	c.doc = doc
	for _, in := range interests {
		c.registerLocked(in)
	}
	if doc == nil {
		return
	}

	ids := c.registry.IDs()
	env := c.envLocked()
	for _, id := range ids {
		c.step("visibility", id, widget.Visibility, env)
	}
	for _, id := range ids {
		c.dispatchLocked(id)
	}
	doc.Flush()

	c.sink.Publish(view.PageEvent(doc.Snapshot()))
	c.logger.Info("page opened", "page", doc.Name, "watched", len(ids), "elements", doc.Len())
}

// Page returns a copy of the displayed page.
func (c *Core) Page() (view.Page, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == nil {
		return view.Page{}, false
	}
	return c.doc.Snapshot(), true
}

// Sync calls fn with the displayed page and connectivity while holding the
// Core lock, so no event can be published between the snapshot and whatever
// fn does with it. fn must not call back into the Core.
func (c *Core) Sync(fn func(page view.Page, ok bool, connected bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == nil {
		fn(view.Page{}, false, c.connected)
		return
	}
	fn(c.doc.Snapshot(), true, c.connected)
}

// Connected reports the last known backend connectivity.
func (c *Core) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// SetConnected records a backend connectivity change. The first failure flips
// the connectivity indicator. A second consecutive failure resets the watch
// set and tells browsers to reload.
func (c *Core) SetConnected(connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if connected {
		c.failures = 0
		if !c.connected {
			c.connected = true
			c.sink.Publish(view.ConnectivityEvent(true))
			c.logger.Info("backend connected")
		}
		return
	}

	c.connected = false
	c.failures++
	if c.failures == 1 {
		c.sink.Publish(view.ConnectivityEvent(false))
		c.logger.Warn("backend connection lost")
		return
	}

	c.failures = 0
	c.registry.Clear()
	c.doc = nil
	c.reloads.Add(1)
	c.sink.Publish(view.ReloadEvent("connection lost"))
	c.logger.Error("backend connection lost again, reloading page")
	if hook := c.onReload; hook != nil {
		go hook()
	}
}

func (c *Core) registerLocked(in Interest) {
	if in.ID == "" {
		return
	}
	c.registry.Watch(in.ID, in.Kind, in.ValueKind)
	if c.demo && !c.store.Has(in.ID) {
		c.writeLocked(in.ID, c.generator.Generate(in.ValueKind))
	}
}

func (c *Core) writeLocked(id string, st state.DataPointState) {
	c.store.Set(id, st)
	c.updates.Add(1)
	for _, o := range c.observers {
		o.Observe(id, st)
	}
}

func (c *Core) envLocked() widget.Env {
	return widget.Env{Doc: c.doc, Store: c.store, Logger: c.logger, Now: c.now}
}

// kindRoutine is a refresh routine gated on one widget kind.
type kindRoutine struct {
	kind subscription.Kind
	fn   widget.Routine
}

// kindRoutines run in this order after the common steps.
var kindRoutines = []kindRoutine{
	{subscription.KindPlug, widget.Plug},
	{subscription.KindLight, widget.Light},
	{subscription.KindHeater, widget.Heater},
	{subscription.KindWindow, widget.Window},
	{subscription.KindTemperature, widget.Temperature},
	{subscription.KindMedia, widget.Media},
	{subscription.KindDoor, widget.Door},
	{subscription.KindHTML, widget.Embedded},
	{subscription.KindCalendar, widget.Calendar},
	{subscription.KindText, widget.Text},
}

func (c *Core) dispatchLocked(id string) {
	if c.doc == nil {
		return
	}
	c.dispatches.Add(1)
	env := c.envLocked()

	c.step("visibility", id, widget.Visibility, env)

	if c.doc.Summary {
		c.step("text", id, widget.Text, env)
		c.step("conditions", id, widget.Conditions, env)
		return
	}

	c.step("extra", id, widget.ExtraInfo, env)
	c.step("health", id, widget.Health, env)
	for _, r := range kindRoutines {
		if c.registry.HasKind(r.kind) {
			c.step(string(r.kind), id, r.fn, env)
		}
	}
}

// step runs one routine and contains any panic it raises.
func (c *Core) step(name, id string, fn widget.Routine, env widget.Env) {
	defer func() {
		if r := recover(); r != nil {
			c.panics.Add(1)
			c.logger.Error("refresh routine panicked", "routine", name, "id", id, "panic", r)
		}
	}()
	fn(env, id)
}

func (c *Core) flushLocked() {
	if c.doc == nil {
		return
	}
	patches := c.doc.Flush()
	if len(patches) == 0 {
		return
	}
	c.sink.Publish(view.PatchEvent(c.doc.Name, patches))
}
