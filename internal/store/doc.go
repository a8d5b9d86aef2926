// Package store provides SQLite-backed durable storage for verification
// runs.
//
// A run records one verified trace: its content-addressed fingerprint,
// where it came from, the verdict of the reduction, and the per-route
// completion counts. The reduction passes that led to the verdict are
// stored alongside, one row per pass.
//
// Two properties the schema enforces:
//
//   - Idempotency by content: runs carry a UNIQUE fingerprint, so
//     verifying the same trace twice stores it once.
//   - Deterministic reads: every list query orders by an explicit key
//     with a binary-collated id tiebreak, so identical databases always
//     list identically.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
