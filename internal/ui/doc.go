// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for exporting a library:
//  1. [SectionsView] : Toggle which library sections to export
//  2. [ConfirmView] : Review sections and the output file before starting
//  3. [ExportView] : Monitor real-time progress updates
//  4. [ResultView] : Display run totals, the written file, and unresolved playlists
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the ExportEngine, providing
// non-blocking status reporting while the library loads. Writing the output
// file and recording history stay in the command layer behind [WriteFunc].
//
// Keyboard navigation uses vim-style bindings (j/k, space, enter, esc, y/n, q)
// with contextual help displayed via charmbracelet/bubbles/help.
package ui
