package state

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DataPointState is the last known value of one data point.
type DataPointState struct {
	// Value is a dynamically typed scalar: bool, float64, int, string.
	// Structured payloads (calendar event lists) arrive as JSON-encoded strings.
	Value any `json:"val"`

	// Timestamp is Unix milliseconds. It increases for repeated updates of the
	// same identifier and is used to break ties between competing sources.
	Timestamp int64 `json:"ts"`
}

// NewState stamps value with the current wall-clock time.
func NewState(value any) DataPointState {
	return DataPointState{Value: value, Timestamp: time.Now().UnixMilli()}
}

// Store maps identifier to DataPointState.
type Store struct {
	mu     sync.RWMutex
	values map[string]DataPointState
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{values: make(map[string]DataPointState)}
}

// Get returns the state for id. ok is false if id has never been set.
func (s *Store) Get(id string) (DataPointState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.values[id]
	return st, ok
}

// Has reports whether id has a value.
func (s *Store) Has(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// Set overwrites the state for id unconditionally.
func (s *Store) Set(id string, st DataPointState) {
	s.mu.Lock()
	s.values[id] = st
	s.mu.Unlock()
}

// Len returns the number of cached identifiers.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Snapshot returns a copy of every cached state.
func (s *Store) Snapshot() map[string]DataPointState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

// Value returns the raw value for id, or nil if unknown.
func (s *Store) Value(id string) any {
	st, _ := s.Get(id)
	return st.Value
}

// Timestamp returns the timestamp for id, or 0 if unknown.
func (s *Store) Timestamp(id string) int64 {
	st, _ := s.Get(id)
	return st.Timestamp
}

// Float returns the value of id as a number, or 0.
func (s *Store) Float(id string) float64 {
	return ToFloat(s.Value(id))
}

// Int returns the value of id truncated to an int, or 0.
func (s *Store) Int(id string) int {
	return int(ToFloat(s.Value(id)))
}

// Bool returns the value of id as a boolean, or false.
func (s *Store) Bool(id string) bool {
	return ToBool(s.Value(id))
}

// String returns the value of id formatted as text, or "".
func (s *Store) String(id string) string {
	return ToString(s.Value(id))
}

// ToFloat converts a loosely typed value to float64.
// Unparseable values convert to 0.
func ToFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case int32:
		return float64(val)
	case uint8:
		return float64(val)
	case json.Number:
		f, _ := val.Float64() //nolint:errcheck // neutral default on failure
		return f
	case bool:
		if val {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// ToBool converts a loosely typed value to bool.
// Non-zero numbers and the strings "true", "on", "1" are true.
func ToBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "on", "1", "yes":
			return true
		}
		return false
	case nil:
		return false
	default:
		return ToFloat(val) != 0
	}
}

// ToString formats a loosely typed value as text.
// Whole numbers render without a decimal point.
func ToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	default:
		return fmt.Sprint(val)
	}
}
