// Package storage implements the client's durable key/value store, the equivalent of a browser's local storage.
//
// Implementations:
//   - [SQLiteStorage] : rows in the local_storage table, created by the shared migrations
//   - [MemoryStorage] : a map, for tests and for running without a writable disk
//
// A missing key is not an error: Get reports it through its boolean result.
package storage
