// Package repositories implements SQLite persistence for the export history.
//
// Every completed run leaves a row in the exports table plus one row per
// written playlist in export_playlists, so past exports can be listed and
// inspected without reopening the output files. Runs support soft deletes via
// deleted_at timestamps and are excluded from queries once deleted.
//
// Key Implementations:
//   - [ExportRepository] : run history with per-playlist summaries and latest-run lookup
//
// Sequence numbers provide stable, human-readable ordering (e.g., export #42)
// independent of UUIDs and creation timestamps. The [NextSequence] function
// atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
