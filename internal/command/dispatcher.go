// Package command forwards value writes from the dashboard to the backend.
//
// In live mode a write goes to the backend and the resulting change comes
// back later through the backend's push stream. In demo mode there is no
// backend: the write is turned into a state stamped with the wall clock and
// fed straight into the synchronisation core, so widgets see exactly the
// same update path in both modes.
package command

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/nerrad567/tileboard/internal/demo"
	"github.com/nerrad567/tileboard/internal/state"
)

// Logger defines the logging interface used by the Dispatcher.
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

// Backend is the live write primitive.
type Backend interface {
	SetState(ctx context.Context, id string, value any) error
}

// Updater is the part of the synchronisation core a Dispatcher feeds.
type Updater interface {
	OnUpdate(id string, st state.DataPointState)
	ValueKind(id string) (demo.ValueKind, bool)
}

// Stats are Dispatcher counters.
type Stats struct {
	Sent   uint64 `json:"sent"`
	Failed uint64 `json:"failed"`
}

// Dispatcher routes writes to the backend or, in demo mode, back into the core.
type Dispatcher struct {
	core      Updater
	backend   Backend
	generator *demo.Generator
	demo      bool
	logger    Logger

	sent   atomic.Uint64
	failed atomic.Uint64
}

// NewLive creates a Dispatcher that writes through backend.
func NewLive(core Updater, backend Backend) *Dispatcher {
	return &Dispatcher{core: core, backend: backend, logger: noopLogger{}}
}

// NewDemo creates a Dispatcher that loops writes back into core.
func NewDemo(core Updater, generator *demo.Generator) *Dispatcher {
	if generator == nil {
		generator = demo.NewGenerator()
	}
	return &Dispatcher{core: core, generator: generator, demo: true, logger: noopLogger{}}
}

// SetLogger sets the logger for the Dispatcher.
func (d *Dispatcher) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	d.logger = logger
}

// Demo reports whether writes loop back locally.
func (d *Dispatcher) Demo() bool { return d.demo }

// Stats returns the current counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{Sent: d.sent.Load(), Failed: d.failed.Load()}
}

// Send writes value to id. It never reports failure to the caller; live
// errors are logged and the UI keeps showing the last confirmed state.
//
// In demo mode value is coerced to the value kind id was registered with, or
// generated when value is nil, and applied immediately.
func (d *Dispatcher) Send(ctx context.Context, id string, value any) {
	commandID := uuid.NewString()
	d.sent.Add(1)

	if d.demo {
		kind, _ := d.core.ValueKind(id)
		st := d.generator.Stamp(kind, value)
		d.logger.Debug("demo command applied", "id", id, "value", st.Value, "command_id", commandID)
		d.core.OnUpdate(id, st)
		return
	}

	if d.backend == nil {
		d.failed.Add(1)
		d.logger.Error("command dropped, no backend", "id", id, "command_id", commandID)
		return
	}
	if err := d.backend.SetState(ctx, id, value); err != nil {
		d.failed.Add(1)
		d.logger.Warn("command failed", "id", id, "command_id", commandID, "error", err)
		return
	}
	d.logger.Debug("command sent", "id", id, "value", value, "command_id", commandID)
}
