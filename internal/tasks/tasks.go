// package tasks implements long-running library operations.
//
// The core abstraction is Engine, which orchestrates catalog imports and
// stream prefetching. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/aural-fm/aural/internal/models"
	"github.com/aural-fm/aural/internal/services"
	"github.com/aural-fm/aural/internal/shared"
)

// ImportFailure records a playlist whose tracks could not be fully fetched.
type ImportFailure struct {
	PlaylistID   string
	PlaylistName string
	Error        error
}

// ImportResult contains all data from a full library import.
type ImportResult struct {
	Playlists  []models.Playlist // Playlists saved to the library
	TrackCount int               // Tracks imported across all playlists
	LikedCount int               // Saved tracks imported
	Failures   []ImportFailure   // Playlists imported partially or not at all
}

// PrefetchOutcome represents the result of resolving a single track.
type PrefetchOutcome struct {
	Track models.Track
	URL   string
	Error error
}

// PrefetchResult contains the outcome of a prefetch sweep.
type PrefetchResult struct {
	Outcomes      []PrefetchOutcome
	ResolvedCount int
	CachedCount   int
	FailedCount   int
}

// Engine defines the library's long-running operations.
type Engine interface {
	// ImportLibrary pulls the provider's playlists and saved tracks into
	// the local library. Playlists that fail mid-fetch are kept with the
	// tracks retrieved so far and recorded as failures.
	ImportLibrary(ctx context.Context, progress chan<- ProgressUpdate) (*ImportResult, error)

	// ImportPlaylist pulls a single playlist into the local library.
	ImportPlaylist(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) (*models.Playlist, error)

	// Prefetch resolves audio URLs for the given tracks ahead of playback,
	// warming the store's URL cache. Already-cached tracks are skipped.
	Prefetch(ctx context.Context, tracks []models.Track, progress chan<- ProgressUpdate) (*PrefetchResult, error)
}

// Library is the slice of the store the engine writes imports through.
type Library interface {
	SavePlaylist(playlist *models.Playlist) error
	SaveLiked(track models.Track) error
	ResolvedURL(trackID string) (string, bool)
	SaveResolvedURL(trackID, url string) error
}

// TrackResolver locates a playable audio URL for a track.
type TrackResolver interface {
	Resolve(ctx context.Context, track models.Track) (string, error)
}

// LibraryEngine implements Engine against a catalog provider and the local
// store.
type LibraryEngine struct {
	catalog  services.Service
	library  Library
	resolver TrackResolver
	limiter  *rate.Limiter
}

// NewLibraryEngine creates an engine. limiter throttles prefetch resolution
// to keep the sweep polite to public mirrors; nil disables throttling.
func NewLibraryEngine(catalog services.Service, library Library, resolver TrackResolver, limiter *rate.Limiter) *LibraryEngine {
	return &LibraryEngine{
		catalog:  catalog,
		library:  library,
		resolver: resolver,
		limiter:  limiter,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *LibraryEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// ImportLibrary pulls the provider's playlists and saved tracks into the
// local library.
func (e *LibraryEngine) ImportLibrary(ctx context.Context, progress chan<- ProgressUpdate) (*ImportResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog service not initialized", shared.ErrServiceUnavailable)
	}
	if e.library == nil {
		return nil, fmt.Errorf("%w: library store not initialized", shared.ErrServiceUnavailable)
	}

	result := &ImportResult{}

	e.sendProgress(progress, fetchPlaylistsUpdate(e.catalog.Name()))

	playlists, err := e.catalog.GetPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list playlists: %v", shared.ErrAPIRequest, err)
	}

	total := len(playlists)
	for i, playlist := range playlists {
		e.sendProgress(progress, fetchTracksUpdate(i+1, total, playlist.Name))

		tracks, err := e.catalog.GetPlaylistTracks(ctx, playlist.ID)
		if err != nil {
			result.Failures = append(result.Failures, ImportFailure{
				PlaylistID:   playlist.ID,
				PlaylistName: playlist.Name,
				Error:        err,
			})
		}
		if len(tracks) == 0 && err != nil {
			continue
		}

		playlist.Tracks = tracks
		if err := e.library.SavePlaylist(&playlist); err != nil {
			result.Failures = append(result.Failures, ImportFailure{
				PlaylistID:   playlist.ID,
				PlaylistName: playlist.Name,
				Error:        err,
			})
			continue
		}

		result.Playlists = append(result.Playlists, playlist)
		result.TrackCount += len(tracks)
	}

	e.sendProgress(progress, fetchLikedUpdate(e.catalog.Name()))

	liked, err := e.catalog.GetLikedTracks(ctx)
	if err != nil && len(liked) == 0 {
		result.Failures = append(result.Failures, ImportFailure{
			PlaylistName: "liked tracks",
			Error:        err,
		})
	}
	for _, track := range liked {
		if err := e.library.SaveLiked(track); err != nil {
			continue
		}
		result.LikedCount++
	}

	e.sendProgress(progress, importDoneUpdate(result))
	return result, nil
}

// ImportPlaylist pulls a single playlist into the local library.
func (e *LibraryEngine) ImportPlaylist(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) (*models.Playlist, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog service not initialized", shared.ErrServiceUnavailable)
	}
	if e.library == nil {
		return nil, fmt.Errorf("%w: library store not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchPlaylistsUpdate(e.catalog.Name()))

	playlists, err := e.catalog.GetPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list playlists: %v", shared.ErrAPIRequest, err)
	}

	var target *models.Playlist
	for i := range playlists {
		if playlists[i].ID == playlistID || playlists[i].Name == playlistID {
			target = &playlists[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: no playlist matching '%s'", shared.ErrPlaylistNotFound, playlistID)
	}

	e.sendProgress(progress, fetchTracksUpdate(1, 1, target.Name))

	tracks, err := e.catalog.GetPlaylistTracks(ctx, target.ID)
	if err != nil && len(tracks) == 0 {
		return nil, fmt.Errorf("%w: failed to fetch tracks: %v", shared.ErrAPIRequest, err)
	}

	target.Tracks = tracks
	if saveErr := e.library.SavePlaylist(target); saveErr != nil {
		return nil, fmt.Errorf("failed to save playlist: %w", saveErr)
	}

	// err still carries a partial-fetch failure worth surfacing
	return target, err
}

// Prefetch resolves audio URLs for the given tracks ahead of playback.
func (e *LibraryEngine) Prefetch(ctx context.Context, tracks []models.Track, progress chan<- ProgressUpdate) (*PrefetchResult, error) {
	if e.resolver == nil {
		return nil, fmt.Errorf("%w: resolver not initialized", shared.ErrServiceUnavailable)
	}

	result := &PrefetchResult{
		Outcomes: make([]PrefetchOutcome, 0, len(tracks)),
	}

	total := len(tracks)
	for i, track := range tracks {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		e.sendProgress(progress, resolveTrackUpdate(i+1, total, track))

		if e.library != nil {
			if url, ok := e.library.ResolvedURL(track.ID); ok {
				result.Outcomes = append(result.Outcomes, PrefetchOutcome{Track: track, URL: url})
				result.CachedCount++
				continue
			}
		}

		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return result, err
			}
		}

		url, err := e.resolver.Resolve(ctx, track)
		outcome := PrefetchOutcome{Track: track, URL: url, Error: err}
		result.Outcomes = append(result.Outcomes, outcome)

		if err != nil {
			result.FailedCount++
			continue
		}

		result.ResolvedCount++
		if e.library != nil {
			if err := e.library.SaveResolvedURL(track.ID, url); err != nil {
				// cache miss next time, nothing else lost
				continue
			}
		}
	}

	e.sendProgress(progress, prefetchDoneUpdate(result))
	return result, nil
}
