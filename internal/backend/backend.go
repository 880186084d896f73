package backend

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nerrad567/tileboard/internal/infrastructure/mqtt"
	"github.com/nerrad567/tileboard/internal/state"
)

// reloadAttempt is the reconnect attempt that counts as the second
// consecutive failure. Attempt 1 starts right after the disconnect.
const reloadAttempt = 2

// Logger defines the logging interface used by the backend.
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

// Transport is the subset of *mqtt.Client the backend uses.
type Transport interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Publish(topic string, payload []byte, qos byte, retained bool) error
	SetOnConnect(callback func())
	SetOnDisconnect(callback func(err error))
	SetOnReconnecting(callback func(attempt int))
	IsConnected() bool
	SubscriptionCount() int
	Topics() mqtt.Topics
}

// Updater receives decoded values and connectivity changes.
// *core.Core satisfies it.
type Updater interface {
	Push(id string, st state.DataPointState) error
	SetConnected(connected bool)
}

// Stats are monotonically increasing counters plus the live bus state.
type Stats struct {
	Received      uint64 `json:"received"`
	Rejected      uint64 `json:"rejected"`
	Sent          uint64 `json:"sent"`
	Connected     bool   `json:"connected"`
	Subscriptions int    `json:"subscriptions"`
}

// Backend bridges MQTT state topics and the Core.
type Backend struct {
	transport Transport
	updater   Updater
	topics    mqtt.Topics
	qos       byte
	logger    Logger
	now       func() time.Time

	received atomic.Uint64
	rejected atomic.Uint64
	sent     atomic.Uint64
}

// New creates a Backend. Call Start to subscribe.
func New(transport Transport, updater Updater, qos byte) *Backend {
	return &Backend{
		transport: transport,
		updater:   updater,
		topics:    transport.Topics(),
		qos:       qos,
		logger:    noopLogger{},
		now:       time.Now,
	}
}

// SetLogger sets the logger.
func (b *Backend) SetLogger(logger Logger) {
	if logger != nil {
		b.logger = logger
	}
}

// Start wires the connection callbacks and subscribes to every state topic.
// The broker answers the subscription with the retained snapshot.
func (b *Backend) Start() error {
	b.transport.SetOnConnect(func() {
		b.updater.SetConnected(true)
	})
	b.transport.SetOnDisconnect(func(err error) {
		b.logger.Warn("bus connection lost", "error", err)
		b.updater.SetConnected(false)
	})
	b.transport.SetOnReconnecting(func(attempt int) {
		b.logger.Debug("reconnecting to bus", "attempt", attempt)
		if attempt == reloadAttempt {
			b.updater.SetConnected(false)
		}
	})

	if err := b.transport.Subscribe(b.topics.AllStates(), b.qos, b.HandleState); err != nil {
		return fmt.Errorf("subscribing to state topics: %w", err)
	}
	if b.transport.IsConnected() {
		b.updater.SetConnected(true)
	}
	b.logger.Info("backend subscribed", "topic", b.topics.AllStates())
	return nil
}

// HandleState decodes one state message and queues it on the Core.
func (b *Backend) HandleState(topic string, payload []byte) error {
	id, ok := b.topics.StateID(topic)
	if !ok {
		b.rejected.Add(1)
		return fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}

	st, err := DecodePayload(payload, b.now().UnixMilli())
	if err != nil {
		b.rejected.Add(1)
		return fmt.Errorf("state %s: %w", id, err)
	}

	if err := b.updater.Push(id, st); err != nil {
		return fmt.Errorf("queueing %s: %w", id, err)
	}
	b.received.Add(1)
	return nil
}

// SetState publishes a write request for id. The new value reaches the
// dashboard only when the bus publishes the resulting state.
func (b *Backend) SetState(ctx context.Context, id string, value any) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := EncodePayload(value, b.now().UnixMilli())
	if err != nil {
		return err
	}
	if err := b.transport.Publish(b.topics.Set(id), payload, b.qos, false); err != nil {
		return fmt.Errorf("publishing %s: %w", id, err)
	}
	b.sent.Add(1)
	return nil
}

// Stats returns the backend counters.
func (b *Backend) Stats() Stats {
	return Stats{
		Received:      b.received.Load(),
		Rejected:      b.rejected.Load(),
		Sent:          b.sent.Load(),
		Connected:     b.transport.IsConnected(),
		Subscriptions: b.transport.SubscriptionCount(),
	}
}
