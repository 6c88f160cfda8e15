// Package store persists time blocks and settings in a key-value store.
//
// Backends:
//   - "file":   one JSON object file, replaced atomically on every write
//   - "sqlite": a kv table in a SQLite database
//   - "prefs":  Fyne application preferences
//   - "memory": process local map, for tests and dry runs
//
// BlockStore layers the two engine keys on top of any backend.
package store
