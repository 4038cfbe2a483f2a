// Package models defines domain types and persistence interfaces for the spx export tool.
//
// The package contains two categories of types:
//
// 1. Export data: Opaque API objects flowing through the pipeline
//   - [Item] : A single JSON object from the Spotify API, with typed accessors
//   - [Library] : The assembled export document handed to formatters
//
// 2. Persistent Entities: Database-backed history records
//   - [ExportRecord] : One completed export run with per-section counts
//   - [ExportPlaylistRecord] : One playlist row attached to a run
//
// Export data stays schemaless so the output mirrors whatever the API
// returned. Persistent entities implement the Model interface providing ID
// generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
