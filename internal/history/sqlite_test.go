package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/tileboard/internal/infrastructure/database"
	"github.com/nerrad567/tileboard/internal/state"
	_ "github.com/nerrad567/tileboard/migrations"
)

// setupRepo opens a migrated journal in a temp directory.
func setupRepo(t *testing.T) (*SQLiteRepository, *database.DB) {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "journal.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return NewSQLiteRepository(db.DB), db
}

func TestRecordAndRecent(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	changes := []state.DataPointState{
		{Value: 10.0, Timestamp: 1000},
		{Value: true, Timestamp: 3000},
		{Value: "idle", Timestamp: 2000},
	}
	for _, st := range changes {
		if err := repo.Record(ctx, "kitchen.dimmer", st); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	if err := repo.Record(ctx, "hall.light", state.DataPointState{Value: false, Timestamp: 5000}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	entries, err := repo.Recent(ctx, "kitchen.dimmer", 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Recent() returned %d entries, want 3", len(entries))
	}

	// Newest value timestamp first, types preserved through JSON.
	if entries[0].State.Value != true || entries[0].State.Timestamp != 3000 {
		t.Errorf("entries[0] = %+v, want {true 3000}", entries[0].State)
	}
	if entries[1].State.Value != "idle" {
		t.Errorf("entries[1].Value = %#v, want \"idle\"", entries[1].State.Value)
	}
	if entries[2].State.Value != 10.0 {
		t.Errorf("entries[2].Value = %#v, want 10.0", entries[2].State.Value)
	}
	for _, e := range entries {
		if e.PointID != "kitchen.dimmer" {
			t.Errorf("entry for %q leaked into kitchen.dimmer history", e.PointID)
		}
		if e.RecordedAt.IsZero() {
			t.Error("RecordedAt not set")
		}
	}
}

func TestRecent_Limit(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	for i := range 5 {
		if err := repo.Record(ctx, "p", state.DataPointState{Value: i, Timestamp: int64(i)}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	entries, err := repo.Recent(ctx, "p", 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 || entries[0].State.Timestamp != 4 {
		t.Errorf("Recent(2) = %+v, want the two newest", entries)
	}
}

func TestRequiresID(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	if err := repo.Record(ctx, "", state.DataPointState{}); !errors.Is(err, ErrIDRequired) {
		t.Errorf("Record(\"\") error = %v, want ErrIDRequired", err)
	}
	if _, err := repo.Recent(ctx, "", 1); !errors.Is(err, ErrIDRequired) {
		t.Errorf("Recent(\"\") error = %v, want ErrIDRequired", err)
	}
}

func TestPrune(t *testing.T) {
	repo, db := setupRepo(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now.Add(-48 * time.Hour) }
	if err := repo.Record(ctx, "p", state.DataPointState{Value: 1.0, Timestamp: 1}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	repo.now = func() time.Time { return now }
	if err := repo.Record(ctx, "p", state.DataPointState{Value: 2.0, Timestamp: 2}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if _, err := repo.Prune(ctx, 0); !errors.Is(err, ErrInvalidRetention) {
		t.Errorf("Prune(0) error = %v, want ErrInvalidRetention", err)
	}

	n, err := repo.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Prune() removed %d rows, want 1", n)
	}
	if err := db.Checkpoint(ctx); err != nil {
		t.Errorf("Checkpoint() error = %v", err)
	}

	entries, err := repo.Recent(ctx, "p", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 || entries[0].State.Value != 2.0 {
		t.Errorf("after prune = %+v, want only the recent row", entries)
	}
}

func TestClampLimit(t *testing.T) {
	tests := map[int]int{-1: DefaultLimit, 0: DefaultLimit, 10: 10, MaxLimit + 1: MaxLimit}
	for in, want := range tests {
		if got := clampLimit(in); got != want {
			t.Errorf("clampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}
