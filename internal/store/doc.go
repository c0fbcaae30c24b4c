// Package store provides SQLite-backed persistence for conformance run
// reports.
//
// Three tables hold a report:
//   - runs: one row per conformance run (identity, timestamps, verdict)
//   - scenarios: per-scenario counters and verdicts, ordered by position
//   - inconsistencies: unconfirmed success claims, with the target and
//     recovered poses stored as JSON
//
// Reads reconstruct reports deterministically: scenarios by declared
// position, inconsistencies by insert order.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: scenario and inconsistency rows cannot outlive
//     their run
package store
