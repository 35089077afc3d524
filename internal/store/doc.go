// Package store provides the SQLite run journal.
//
// The journal records every run of a suite:
//   - Runs: one row per invocation of the runner, with its environment
//     and final counts
//   - Scenarios: one row per execution, with its status and metadata
//   - Steps: one row per reported step, in running order
//
// Ordering uses the seq columns assigned by the runner, never timestamps.
// Timestamps are kept for reporting only.
//
// The latest finished run is the source of the rerun list: FailedTitles
// returns the titles of its scenarios that did not pass.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
