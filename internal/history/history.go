package history

import (
	"context"
	"errors"
	"time"

	"github.com/nerrad567/tileboard/internal/state"
)

// Query bounds for Recent.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

var (
	// ErrIDRequired is returned when an operation needs a data point id.
	ErrIDRequired = errors.New("history: id is required")

	// ErrInvalidRetention is returned by Prune for a non-positive duration.
	ErrInvalidRetention = errors.New("history: retention must be positive")
)

// Entry is one recorded change.
type Entry struct {
	ID         int64                `json:"id"`
	PointID    string               `json:"point_id"`
	State      state.DataPointState `json:"state"`
	RecordedAt time.Time            `json:"recorded_at"`
}

// Repository stores and retrieves journal entries.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Record appends one change.
	Record(ctx context.Context, id string, st state.DataPointState) error

	// Recent returns the latest entries for id, newest first.
	// limit is clamped to 1..MaxLimit; zero selects DefaultLimit.
	Recent(ctx context.Context, id string, limit int) ([]Entry, error)

	// Prune deletes entries recorded before now-olderThan and returns the count.
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}
