// Package storage provides policy store backends.
//
// # Storage Backends
//
// Every backend implements timeline.Store:
//
//   - Memory: maps behind a mutex, for tests and throwaway runs
//   - SQLite: embedded database via mattn/go-sqlite3 or modernc.org/sqlite
//   - REST: client for the configuration API's snapshot policy routes
//
// # SQLite Backend
//
// The SQLite backend keeps policies and their volume attachments in two
// tables. Pragmas are passed in the DSN so every pooled connection gets
// them:
//
//   - WAL mode for concurrent reads/writes
//   - Busy timeout for handling locks
//   - Foreign keys so attachments cannot outlive their policy
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStore(&storage.SQLiteConfig{
//	    Path:        "data/timeline.db",
//	    Driver:      storage.DriverPureGo,
//	    WALMode:     true,
//	    BusyTimeout: 5 * time.Second,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	created, err := store.Create(ctx, policy)
//	err = store.Attach(ctx, created.ID, "vol-1")
//
// # Errors
//
// Failures are *timeline.StoreError values. Unknown ids unwrap to
// timeline.ErrNotFound; deleting a policy that is still attached unwraps to
// timeline.ErrAttached.
package storage
