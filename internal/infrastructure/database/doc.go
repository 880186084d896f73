// Package database provides the SQLite connection behind the value journal.
//
// This package manages:
//   - Opening the database with WAL mode and a busy timeout
//   - Versioned schema migrations read from an fs.FS
//   - Health checks and WAL checkpoints
//
// The database only holds history. Current values live in memory and are
// never read back from SQLite on startup.
//
// Usage:
//
//	db, err := database.Open(database.FromConfig(cfg.Database))
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
