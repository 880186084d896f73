// Package state provides the Value Store: the in-memory mapping from data-point
// identifier to its last known value and timestamp.
//
// The store never merges and never deletes. Set always overwrites, so the last
// write wins at the storage layer; any ordering or tie-break decision belongs to
// the caller. Entries for identifiers that are no longer on screen stay cached so
// that re-opening a page does not need another fetch.
//
// Lookups for unknown identifiers never fail. The typed accessors (Float, Bool,
// String, Int) fall back to a neutral zero value so that rendering code can read
// an identifier that has not arrived yet.
//
// # Usage
//
//	store := state.NewStore()
//	store.Set("sensor.temp1", state.DataPointState{Value: 21.5, Timestamp: 1000})
//
//	st, ok := store.Get("sensor.temp1")
//	celsius := store.Float("sensor.temp1") // 21.5, or 0 if unknown
//
// # Thread Safety
//
// Store is safe for concurrent use.
package state
