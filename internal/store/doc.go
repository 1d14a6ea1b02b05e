// Package store provides SQLite-backed durable storage for save slots.
//
// The store is a string key-value table implementing session.Store, plus an
// append-only log of every write and delete:
//   - saves: current value per key (last write wins)
//   - save_log: one row per put/delete, ordered by a logical seq
//
// # Ordering
//
// Every write takes the next seq inside its transaction. Listings are ordered
// by key; the log is ordered by seq. Wall-clock time is recorded for display
// only and never used for ordering.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
