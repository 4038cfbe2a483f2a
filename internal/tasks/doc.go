// Package tasks assembles a user's library into an export document with
// real-time progress reporting.
//
// # Core Operation
//
// [ExportEngine.Run] performs the whole fetch sequence:
//
//  1. Profile: resolves the account the token belongs to
//  2. Liked: saved tracks and albums; the tracks become a synthesized
//     "Liked Songs" playlist leading the playlist sequence
//  3. Playlists: the account's playlist pages, then every playlist's full
//     track list resolved concurrently
//  4. Top: most-listened artists and/or tracks for the chosen time range
//
// Sections are opt-in per run. Sequential section fetches run on the calling
// goroutine; only per-playlist track resolution fans out.
//
// # Fan-out
//
// [ExportEngine.ResolveTracks] drains an index queue with a fixed-size
// worker pool. Workers write disjoint playlist slots, so input order is
// preserved no matter the completion order. Failed resolutions leave the
// playlist's track stub in place and never abort siblings; only an
// authentication failure ends the run, after the batch drains.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and
// optional data for advanced UI rendering. Updates use select with default
// to prevent blocking.
package tasks
