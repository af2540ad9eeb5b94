package tasks

import (
	"fmt"

	"github.com/aural-fm/aural/internal/models"
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
	FetchPlaylists Phase = iota
	FetchTracks
	FetchLiked
	ResolveTracks
	Done
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylists:
		return "fetch_playlists"
	case FetchTracks:
		return "fetch_tracks"
	case FetchLiked:
		return "fetch_liked"
	case ResolveTracks:
		return "resolve_tracks"
	case Done:
		return "done"
	default:
		return ""
	}
}

func fetchPlaylistsUpdate(provider string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching playlists from %s...", provider),
	}
}

func fetchTracksUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching tracks: %s", step, total, name),
	}
}

func fetchLikedUpdate(provider string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLiked,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching liked tracks from %s...", provider),
	}
}

func resolveTrackUpdate(step, total int, tr models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, tr.Artist, tr.Title),
	}
}

func importDoneUpdate(result *ImportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase: Done,
		Step:  1,
		Total: 1,
		Message: fmt.Sprintf("Imported %d playlists (%d tracks, %d liked)",
			len(result.Playlists), result.TrackCount, result.LikedCount),
		Data: result,
	}
}

func prefetchDoneUpdate(result *PrefetchResult) ProgressUpdate {
	return ProgressUpdate{
		Phase: Done,
		Step:  1,
		Total: 1,
		Message: fmt.Sprintf("Resolved %d tracks (%d cached, %d failed)",
			result.ResolvedCount, result.CachedCount, result.FailedCount),
		Data: result,
	}
}
