package history

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/tileboard/internal/state"
)

type fakeRepo struct {
	mu        sync.Mutex
	recorded  []string
	recordErr error
	prunes    []time.Duration
	pruneN    int64
}

func (f *fakeRepo) Record(_ context.Context, id string, _ state.DataPointState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, id)
	return nil
}

func (f *fakeRepo) Recent(context.Context, string, int) ([]Entry, error) { return nil, nil }

func (f *fakeRepo) Prune(_ context.Context, olderThan time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prunes = append(f.prunes, olderThan)
	return f.pruneN, nil
}

type fakeCheckpointer struct{ calls int }

func (f *fakeCheckpointer) Checkpoint(context.Context) error {
	f.calls++
	return nil
}

type warnCounter struct {
	noopLogger
	warns int
}

func (w *warnCounter) Warn(string, ...any) { w.warns++ }

func TestWriter_DrainsOnShutdownInOrder(t *testing.T) {
	repo := &fakeRepo{}
	w := NewWriter(repo, WriterConfig{BufferSize: 8})

	for _, id := range []string{"a", "b", "c"} {
		w.Observe(id, state.DataPointState{Value: 1.0})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Run(ctx)

	if got := len(repo.recorded); got != 3 {
		t.Fatalf("recorded %d changes, want 3", got)
	}
	if repo.recorded[0] != "a" || repo.recorded[2] != "c" {
		t.Errorf("recorded = %v, want queue order", repo.recorded)
	}
	if s := w.Stats(); s.Written != 3 || s.Dropped != 0 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestWriter_DropsWhenFull(t *testing.T) {
	w := NewWriter(&fakeRepo{}, WriterConfig{BufferSize: 2})

	for range 5 {
		w.Observe("p", state.DataPointState{})
	}

	if got := w.Stats().Dropped; got != 3 {
		t.Errorf("Dropped = %d, want 3", got)
	}
}

func TestWriter_RecordErrorIsCountedAndLogged(t *testing.T) {
	repo := &fakeRepo{recordErr: errors.New("disk full")}
	logger := &warnCounter{}
	w := NewWriter(repo, WriterConfig{})
	w.SetLogger(logger)

	w.Observe("p", state.DataPointState{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Run(ctx)

	if s := w.Stats(); s.Failed != 1 || s.Written != 0 {
		t.Errorf("Stats() = %+v, want one failure", s)
	}
	if logger.warns != 1 {
		t.Errorf("warnings = %d, want 1", logger.warns)
	}
}

func TestWriter_PrunesOnStartWhenRetentionSet(t *testing.T) {
	tests := []struct {
		name           string
		retention      time.Duration
		pruneN         int64
		wantPrunes     int
		wantCheckpoint int
	}{
		{"no retention", 0, 0, 0, 0},
		{"nothing removed", time.Hour, 0, 1, 0},
		{"rows removed", time.Hour, 4, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{pruneN: tt.pruneN}
			cp := &fakeCheckpointer{}
			w := NewWriter(repo, WriterConfig{Retention: tt.retention})
			w.SetCheckpointer(cp)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			w.Run(ctx)

			if len(repo.prunes) != tt.wantPrunes {
				t.Errorf("prunes = %d, want %d", len(repo.prunes), tt.wantPrunes)
			}
			if cp.calls != tt.wantCheckpoint {
				t.Errorf("checkpoints = %d, want %d", cp.calls, tt.wantCheckpoint)
			}
			if got := w.Stats().Pruned; got != uint64(tt.pruneN) { //nolint:gosec // test values are small
				t.Errorf("Pruned = %d, want %d", got, tt.pruneN)
			}
		})
	}
}

func TestWriter_WritesWhileRunning(t *testing.T) {
	repo := &fakeRepo{}
	w := NewWriter(repo, WriterConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	w.Observe("live", state.DataPointState{Value: 1.0})

	deadline := time.After(2 * time.Second)
	for w.Stats().Written == 0 {
		select {
		case <-deadline:
			t.Fatal("change was not written")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
}
