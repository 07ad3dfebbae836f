package tasks

import (
	"fmt"

	"github.com/desertthunder/likesync/internal/models"
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
	FetchLiked Phase = iota
	FetchPlaylist
	Reconcile
	AddTracks
	RemoveTracks
	Complete
	ReadLibrary
	SearchTracks
)

func (p Phase) String() string {
	switch p {
	case FetchLiked:
		return "fetch_liked"
	case FetchPlaylist:
		return "fetch_playlist"
	case Reconcile:
		return "reconcile"
	case AddTracks:
		return "add_tracks"
	case RemoveTracks:
		return "remove_tracks"
	case Complete:
		return "complete"
	case ReadLibrary:
		return "read_library"
	case SearchTracks:
		return "search_tracks"
	default:
		return ""
	}
}

func fetchLikedUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLiked,
		Step:    step,
		Total:   total,
		Message: "Fetching liked tracks...",
	}
}

func fetchPlaylistUpdate(step, total int, playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching playlist %s...", playlistID),
	}
}

func reconcileUpdate(plan *SyncPlan) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Reconcile,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%d to add, %d to remove", len(plan.Delta.ToAdd), len(plan.Delta.ToRemove)),
		Data:    plan,
	}
}

func writeChunkUpdate(op string, step, total, size int) ProgressUpdate {
	phase, verb := AddTracks, "Adding"
	if op == "remove" {
		phase, verb = RemoveTracks, "Removing"
	}
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %d tracks...", step, total, verb, size),
	}
}

func completeUpdate(result *SyncResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Added %d, removed %d, failed %d", len(result.Added), len(result.Removed), result.FailedCount()),
		Data:    result,
	}
}

func readLibraryUpdate(dir string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadLibrary,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Reading local files in %s...", dir),
	}
}

func searchTrackUpdate(step, total int, entry models.LibraryEntry) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, entry.Artist, entry.Title),
		Data:    entry,
	}
}
