// Package core is the synchronisation core of the dashboard.
//
// Every value change, whether pushed by the backend or produced by a local
// command, enters through Core.OnUpdate. The core writes it into the Value
// Store, and if the identifier is watched by the displayed page it runs the
// refresh routines for that identifier and publishes the resulting patches.
//
// Dispatch order for a watched identifier:
//
//  1. visibility (data-hidden-id)
//  2. on room summary pages: plain text and conditional formatting, then stop
//  3. extra info strips, hardware health indicators
//  4. kind-specific routines, each only if that widget kind is on the page
//
// Each step runs isolated: a panicking routine is logged and the remaining
// steps still run.
//
// All core state is guarded by one mutex, so operations are serialised.
// Backend pushes go through Push, which queues them in FIFO order for the Run
// loop instead of applying them on the caller's goroutine.
package core
