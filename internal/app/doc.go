// Package app is the composition root for quotebox and owns the quote
// collection at runtime.
//
// # Components
//
//   - app.go: Open loads config, opens the SQLite store, builds the logger,
//     the remote client and the Engine, and returns them as a Runtime.
//   - engine.go: Engine, the single owner of the collection. Every
//     operation (add, import, export, pick, filter, sync, conflict
//     resolution) goes through it.
//   - poller.go: StartPoller runs a sync cycle immediately and then on a
//     fixed cadence (default 15 seconds).
//
// # Sync cycle
//
//	Sync()
//	 ├─> PushRecord() for each dirty record   (failures stay dirty)
//	 ├─> FetchRemote()                        (failure aborts, nothing changes)
//	 ├─> reconcile.Merge()   under the state lock
//	 ├─> SaveQuotes()        inside the same lock
//	 └─> RecordSync() / SetConflicts()
//
// Cycles are serialized with singleflight: a tick that arrives while a cycle
// is in flight waits for it and shares its result. Fetch failures increment
// the failure counter in state and are retried on the next tick with no
// backoff; two consecutive failures mark the header offline.
//
// # Error handling
//
// Open fails on config parse errors and on a database that cannot be opened.
// After startup nothing is fatal: network errors are logged and counted,
// storage write errors are returned to the caller and the in-memory
// collection is left as it was.
package app
