package ui

import (
	"github.com/desertthunder/spx/internal/tasks"
)

// progressUpdateMsg relays one engine progress update into the event loop.
type progressUpdateMsg tasks.ProgressUpdate

// exportDoneMsg signals that the background run finished, successfully or not.
type exportDoneMsg struct {
	result  *tasks.ExportResult
	written string
	err     error
}
