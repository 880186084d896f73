package history

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/nerrad567/tileboard/internal/state"
)

const (
	defaultBufferSize    = 512
	defaultPruneInterval = time.Hour

	// writeTimeout bounds one insert, including the final drain on shutdown.
	writeTimeout = 5 * time.Second
)

// Logger defines the logging interface used by the Writer.
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

// Checkpointer is implemented by databases that can compact their WAL.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// WriterConfig controls the asynchronous journal writer.
type WriterConfig struct {
	// BufferSize bounds queued changes. Zero selects 512.
	BufferSize int

	// Retention prunes entries older than this. Zero keeps everything.
	Retention time.Duration

	// PruneInterval is how often the prune runs. Zero selects one hour.
	PruneInterval time.Duration
}

// WriterStats are monotonically increasing counters.
type WriterStats struct {
	Written uint64 `json:"written"`
	Dropped uint64 `json:"dropped"`
	Failed  uint64 `json:"failed"`
	Pruned  uint64 `json:"pruned"`
}

type change struct {
	id string
	st state.DataPointState
}

// Writer queues Core changes and writes them to a Repository.
type Writer struct {
	repo       Repository
	cfg        WriterConfig
	queue      chan change
	logger     Logger
	checkpoint Checkpointer

	written atomic.Uint64
	dropped atomic.Uint64
	failed  atomic.Uint64
	pruned  atomic.Uint64
}

// NewWriter creates a Writer. Call Run to start writing.
func NewWriter(repo Repository, cfg WriterConfig) *Writer {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	if cfg.PruneInterval <= 0 {
		cfg.PruneInterval = defaultPruneInterval
	}
	return &Writer{
		repo:   repo,
		cfg:    cfg,
		queue:  make(chan change, cfg.BufferSize),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger.
func (w *Writer) SetLogger(logger Logger) {
	if logger != nil {
		w.logger = logger
	}
}

// SetCheckpointer registers a database to checkpoint after each prune.
func (w *Writer) SetCheckpointer(c Checkpointer) {
	w.checkpoint = c
}

// Observe enqueues a change. It never blocks; a full queue drops the change.
func (w *Writer) Observe(id string, st state.DataPointState) {
	select {
	case w.queue <- change{id: id, st: st}:
	default:
		w.dropped.Add(1)
	}
}

// Stats returns the writer counters.
func (w *Writer) Stats() WriterStats {
	return WriterStats{
		Written: w.written.Load(),
		Dropped: w.dropped.Load(),
		Failed:  w.failed.Load(),
		Pruned:  w.pruned.Load(),
	}
}

// Run writes queued changes until ctx is cancelled, then drains the queue.
func (w *Writer) Run(ctx context.Context) {
	var prune <-chan time.Time
	if w.cfg.Retention > 0 {
		ticker := time.NewTicker(w.cfg.PruneInterval)
		defer ticker.Stop()
		prune = ticker.C
		w.prune()
	}

	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case c := <-w.queue:
			w.write(c)
		case <-prune:
			w.prune()
		}
	}
}

func (w *Writer) drain() {
	for {
		select {
		case c := <-w.queue:
			w.write(c)
		default:
			return
		}
	}
}

func (w *Writer) write(c change) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := w.repo.Record(ctx, c.id, c.st); err != nil {
		w.failed.Add(1)
		w.logger.Warn("recording state history failed", "id", c.id, "error", err)
		return
	}
	w.written.Add(1)
}

func (w *Writer) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	n, err := w.repo.Prune(ctx, w.cfg.Retention)
	if err != nil {
		w.logger.Warn("pruning state history failed", "error", err)
		return
	}
	w.pruned.Add(uint64(n)) //nolint:gosec // RowsAffected is never negative
	if n == 0 {
		return
	}
	w.logger.Debug("pruned state history", "rows", n)

	if w.checkpoint != nil {
		if err := w.checkpoint.Checkpoint(ctx); err != nil {
			w.logger.Warn("checkpointing after prune failed", "error", err)
		}
	}
}
