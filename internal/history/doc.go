// Package history persists completed conversations.
//
// # Overview
//
// All conversations live in a single JSON array stored under one key of an
// injected Storage. Every operation is a whole-value read-modify-write of that
// key; the last writer wins.
//
// The array is ordered most-recently-touched first and capped (50 entries by
// default). Saving an exchange for an (agentId, runId) pair that is already
// stored overwrites that entry in place of duplicating it and moves it to the
// front.
//
// # Failure Policy
//
// History is a convenience. Storage and decoding faults are logged and turn
// into an empty list or a no-op; they never reach the UI as errors. Records
// that fail schema validation are dropped individually.
//
// # Storage Backends
//
//   - MemoryStorage: process-local map, used by tests and --ephemeral
//   - FileStorage: one JSON file per key under a data directory
//   - SQLiteStorage: key/value table via modernc.org/sqlite ("sqlite") or
//     github.com/mattn/go-sqlite3 ("sqlite3")
package history
