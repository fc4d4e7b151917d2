// Package store provides SQLite-backed durable storage for atomstore.
//
// The database holds two tables:
//   - snapshots: the compressed aggregation snapshot, one row per name,
//     replaced whole on every save (see SnapshotBackend)
//   - pull_log: an append-only ledger of served pulls (see RecordPull)
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Ledger rows are keyed by UUIDv7 and ordered by an autoincrement seq, so
// history reads are deterministic even when wall clock times collide.
package store
