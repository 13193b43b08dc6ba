// Package history persists one row per render attempt in SQLite so past runs
// can be listed and failures inspected after the process exits.
//
// The database path comes from paths.history_db. Schema changes bump
// schemaVersion; an older database must be deleted, as the ledger holds no
// state the renderer depends on.
package history
