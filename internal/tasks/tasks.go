// package tasks implements the export pipeline that assembles a library document.
//
// The core abstraction is ExportEngine, which sequences the profile, liked,
// playlist, and top-item fetches and fans out per-playlist track resolution
// under a bounded worker pool. Operations emit progress updates via channels
// for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/services"
	"github.com/desertthunder/spx/internal/shared"
)

const defaultWorkers = 5

// Top item type selection for the top section.
const (
	TopArtists = "artists"
	TopTracks  = "tracks"
	TopBoth    = "both"
)

// ExportOpts configures a library export run.
type ExportOpts struct {
	Sections  []services.Section // Which library sections to include
	TopType   string             // artists, tracks, or both
	TimeRange string             // short_term, medium_term, long_term
	TopLimit  int                // 1-50 top items per type
}

func (o ExportOpts) wants(section services.Section) bool {
	for _, s := range o.Sections {
		if s == section {
			return true
		}
	}
	return false
}

// ExportResult carries the assembled library document and run bookkeeping.
type ExportResult struct {
	User     *models.UserProfile // Account the export belongs to
	Library  *models.Library     // Assembled document for the formatters
	Failed   int                 // Playlists left in stub form after resolution failures
	Duration time.Duration       // Wall-clock time spent fetching
}

// ExportEngine assembles a library document from a [services.LibraryService].
type ExportEngine struct {
	service services.LibraryService
	logger  *log.Logger
	workers int
}

// NewExportEngine creates an engine resolving playlists with the given
// worker count. Non-positive workers fall back to the default pool size.
func NewExportEngine(service services.LibraryService, logger *log.Logger, workers int) *ExportEngine {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &ExportEngine{
		service: service,
		logger:  logger,
		workers: workers,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ExportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run assembles the library document for the requested sections.
//
// Sections fetch in a fixed order: profile, liked, playlists, top. When both
// liked and playlists are requested, the synthesized Liked Songs playlist
// leads the playlist sequence. Any error escaping Run means the run is over;
// per-playlist resolution failures are contained and only counted.
func (e *ExportEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: library service not initialized", shared.ErrServiceUnavailable)
	}

	started := time.Now()
	lib := &models.Library{}
	result := &ExportResult{Library: lib}

	e.sendProgress(progress, profileUpdate())
	e.logger.Info("loading user info")

	user, err := e.service.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	result.User = user
	e.logger.Infof("logged in as %s (%s)", user.DisplayName, user.ID)

	if opts.wants(services.SectionLiked) {
		e.sendProgress(progress, likedUpdate())
		e.logger.Info("loading liked albums and songs")

		likedTracks, err := e.service.LikedTracks(ctx)
		if err != nil {
			return result, err
		}
		likedAlbums, err := e.service.LikedAlbums(ctx)
		if err != nil {
			return result, err
		}

		lib.Albums = likedAlbums
		lib.Playlists = append(lib.Playlists, models.Item{"name": "Liked Songs", "tracks": likedTracks})
	}

	if opts.wants(services.SectionPlaylists) {
		e.sendProgress(progress, playlistsUpdate())
		e.logger.Info("loading playlists")

		playlists, err := e.service.Playlists(ctx, user.ID)
		if err != nil {
			return result, err
		}

		e.logger.Infof("found %d playlists", len(playlists))
		e.sendProgress(progress, foundPlaylistsUpdate(len(playlists)))
		if len(playlists) == 0 {
			e.logger.Warn("no playlists found for user")
		}

		failed, err := e.ResolveTracks(ctx, playlists, progress)
		result.Failed = failed
		if err != nil {
			return result, err
		}

		lib.Playlists = append(lib.Playlists, playlists...)
	}

	if opts.wants(services.SectionTop) {
		if err := e.fetchTop(ctx, progress, opts, lib); err != nil {
			return result, err
		}
	}

	result.Duration = time.Since(started)
	return result, nil
}

// fetchTop loads top artists and/or tracks per the run options.
func (e *ExportEngine) fetchTop(ctx context.Context, progress chan<- ProgressUpdate, opts ExportOpts, lib *models.Library) error {
	timeRange := opts.TimeRange
	if timeRange == "" {
		timeRange = "medium_term"
	}
	limit := opts.TopLimit
	if limit <= 0 {
		limit = 50
	}

	topType := opts.TopType
	if topType == "" {
		topType = TopBoth
	}

	if topType == TopArtists || topType == TopBoth {
		e.sendProgress(progress, topUpdate("artists", timeRange, 1, 2))
		e.logger.Infof("loading top artists (%s, limit=%d)", timeRange, limit)

		artists, err := e.service.TopArtists(ctx, timeRange, limit)
		if err != nil {
			return err
		}
		e.logger.Infof("loaded %d top artists", len(artists))
		lib.TopArtists = artists
	}

	if topType == TopTracks || topType == TopBoth {
		e.sendProgress(progress, topUpdate("tracks", timeRange, 2, 2))
		e.logger.Infof("loading top tracks (%s, limit=%d)", timeRange, limit)

		tracks, err := e.service.TopTracks(ctx, timeRange, limit)
		if err != nil {
			return err
		}
		e.logger.Infof("loaded %d top tracks", len(tracks))
		lib.TopTracks = tracks
	}

	return nil
}
