// Package history keeps a local journal of data point changes in SQLite.
//
// The journal is fed by a Writer registered as a Core observer. The Core
// calls observers while it holds its lock, so the Writer only enqueues;
// a background goroutine performs the inserts and the periodic prune.
// When the queue is full the change is dropped and counted. The journal
// is best effort; the in-memory Value Store remains the source of truth.
//
// Usage:
//
//	repo := history.NewSQLiteRepository(db.DB)
//	w := history.NewWriter(repo, history.WriterConfig{BufferSize: 512, Retention: 7 * 24 * time.Hour})
//	c.AddObserver(w)
//	go w.Run(ctx)
package history
