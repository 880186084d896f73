package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/tileboard/internal/state"
)

// SQLiteRepository implements Repository on the state_history table.
//
// Values are stored as JSON text so a bool stays a bool when read back.
// Times are Unix milliseconds.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository creates a repository on an open connection.
// The state_history migration must already be applied.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

// Record inserts one change.
func (r *SQLiteRepository) Record(ctx context.Context, id string, st state.DataPointState) error {
	if id == "" {
		return ErrIDRequired
	}

	value, err := json.Marshal(st.Value)
	if err != nil {
		return fmt.Errorf("marshalling value for %s: %w", id, err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO state_history (point_id, value, ts, recorded_at) VALUES (?, ?, ?, ?)",
		id,
		string(value),
		st.Timestamp,
		r.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("inserting state history: %w", err)
	}
	return nil
}

// Recent returns the newest entries for id ordered by value timestamp.
func (r *SQLiteRepository) Recent(ctx context.Context, id string, limit int) ([]Entry, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	limit = clampLimit(limit)

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, point_id, value, ts, recorded_at
		 FROM state_history
		 WHERE point_id = ?
		 ORDER BY ts DESC, id DESC
		 LIMIT ?`,
		id,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying state history: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			e          Entry
			value      string
			recordedAt int64
		)
		if err := rows.Scan(&e.ID, &e.PointID, &value, &e.State.Timestamp, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning state history: %w", err)
		}
		if err := json.Unmarshal([]byte(value), &e.State.Value); err != nil {
			return nil, fmt.Errorf("unmarshalling value of row %d: %w", e.ID, err)
		}
		e.RecordedAt = time.UnixMilli(recordedAt).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating state history: %w", err)
	}
	return entries, nil
}

// Prune deletes entries recorded more than olderThan ago.
func (r *SQLiteRepository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, ErrInvalidRetention
	}

	cutoff := r.now().Add(-olderThan).UnixMilli()
	result, err := r.db.ExecContext(ctx, "DELETE FROM state_history WHERE recorded_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting state history: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}
