package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchProfile Phase = iota
	FetchLiked
	FetchPlaylists
	ResolveTracklists
	FetchTop
)

func (p Phase) String() string {
	switch p {
	case FetchProfile:
		return "fetch_profile"
	case FetchLiked:
		return "fetch_liked"
	case FetchPlaylists:
		return "fetch_playlists"
	case ResolveTracklists:
		return "resolve_tracklists"
	case FetchTop:
		return "fetch_top"
	default:
		return ""
	}
}

func profileUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchProfile,
		Step:    1,
		Total:   1,
		Message: "Loading user info...",
	}
}

func likedUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLiked,
		Step:    1,
		Total:   2,
		Message: "Loading liked albums and songs...",
	}
}

func playlistsUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    1,
		Total:   1,
		Message: "Loading playlists...",
	}
}

func foundPlaylistsUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d playlists", count),
		Data:    count,
	}
}

func resolvedUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracklists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, name),
	}
}

func resolveFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracklists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

func topUpdate(itemType, timeRange string, step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTop,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Loading top %s (%s)...", itemType, timeRange),
	}
}
