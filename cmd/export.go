package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/spx/internal/formatter"
	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/repositories"
	"github.com/desertthunder/spx/internal/services"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/desertthunder/spx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Export fetches the requested library sections and writes them to a file.
//
// Without --token the browser authorization flow runs first, scoped to the
// requested sections.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd.String("config"))

	sections, err := services.ParseSections(cmd.String("dump"))
	if err != nil {
		return err
	}

	timeRange := cmd.String("time-range")
	if err := services.ValidateTimeRange(timeRange); err != nil {
		return err
	}

	topType := cmd.String("top-type")
	switch topType {
	case tasks.TopArtists, tasks.TopTracks, tasks.TopBoth:
	default:
		return fmt.Errorf("%w: top type must be artists, tracks, or both", shared.ErrInvalidFlag)
	}

	topLimit := cmd.Int("top-limit")
	if topLimit < 1 || topLimit > 50 {
		return fmt.Errorf("%w: top limit must be between 1 and 50", shared.ErrInvalidFlag)
	}

	format := cmd.String("format")
	if format != formatter.FormatJSON && format != formatter.FormatText {
		return fmt.Errorf("%w: format must be json or txt", shared.ErrInvalidFlag)
	}

	file, format := formatter.ResolveOutput(cmd.StringArg("file"), format, r.logger)

	token := cmd.String("token")
	if token == "" {
		if token, err = r.doCapture(ctx, services.ScopesFor(sections)); err != nil {
			return err
		}
	}

	svc, err := r.libraryService(token)
	if err != nil {
		return err
	}

	workers := cmd.Int("workers")
	if workers <= 0 {
		workers = r.config.Export.Workers
	}
	engine := tasks.NewExportEngine(svc, r.logger, workers)

	opts := tasks.ExportOpts{
		Sections:  sections,
		TopType:   topType,
		TimeRange: timeRange,
		TopLimit:  topLimit,
	}

	progress := make(chan tasks.ProgressUpdate, 64)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for update := range progress {
			r.writePlain("→ %s\n", update.Message)
		}
	}()

	result, err := engine.Run(ctx, progress, opts)
	close(progress)
	<-drained
	if err != nil {
		return err
	}

	if err := formatter.WriteExport(result.Library, file, format, timeRange); err != nil {
		return err
	}

	r.recordExport(result, file, format, sections)

	lib := result.Library
	r.writePlainln("✓ Export complete")
	r.writePlain("  Account: %s (%s)\n", result.User.DisplayName, result.User.ID)
	if len(lib.Playlists) > 0 {
		r.writePlain("  Playlists: %d (%d tracks)\n", len(lib.Playlists), countTracks(lib.Playlists))
	}
	if len(lib.Albums) > 0 {
		r.writePlain("  Albums: %d\n", len(lib.Albums))
	}
	if len(lib.TopArtists) > 0 {
		r.writePlain("  Top artists: %d\n", len(lib.TopArtists))
	}
	if len(lib.TopTracks) > 0 {
		r.writePlain("  Top tracks: %d\n", len(lib.TopTracks))
	}
	if result.Failed > 0 {
		r.writePlain("  ⚠ %d playlists kept without tracklists\n", result.Failed)
	}
	r.writePlain("  Wrote %s in %s\n", file, result.Duration.Round(time.Millisecond))

	return nil
}

// recordExport stores run metadata in the history database. History is
// best-effort: a failure here never fails an export that already wrote its file.
func (r *Runner) recordExport(result *tasks.ExportResult, file, format string, sections []services.Section) {
	db, err := shared.NewDatabase(r.config.Database)
	if err != nil {
		r.logger.Warnf("skipping export history: %v", err)
		return
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		r.logger.Warnf("skipping export history: %v", err)
		return
	}

	lib := result.Library
	record := models.NewExportRecord(file, format, services.SectionStrings(sections))
	record.UserID = result.User.ID
	record.UserName = result.User.DisplayName
	record.PlaylistCount = len(lib.Playlists)
	record.TrackCount = countTracks(lib.Playlists)
	record.AlbumCount = len(lib.Albums)
	record.TopArtistCount = len(lib.TopArtists)
	record.TopTrackCount = len(lib.TopTracks)
	record.FailedCount = result.Failed
	record.DurationMS = result.Duration.Milliseconds()

	repo := repositories.NewExportRepository(db)
	if err := repo.Create(record); err != nil {
		r.logger.Warnf("failed to record export: %v", err)
		return
	}

	rows := make([]*models.ExportPlaylistRecord, 0, len(lib.Playlists))
	for i, playlist := range lib.Playlists {
		count, resolved := trackCount(playlist)
		rows = append(rows, models.NewExportPlaylistRecord(record.ID(), i, playlist.Str("name"), count, resolved))
	}
	if err := repo.AddPlaylists(rows); err != nil {
		r.logger.Warnf("failed to record export playlists: %v", err)
		return
	}

	r.logger.Infof("recorded export #%d", record.Sequence)
}

// trackCount reports a playlist's track count and whether its tracklist was
// resolved. Unresolved playlists still carry the API's {href, total} stub, so
// the advertised total stands in for the count.
func trackCount(playlist models.Item) (int, bool) {
	if _, stub := playlist["tracks"].(map[string]any); stub {
		return playlist.Map("tracks").Int("total"), false
	}
	return len(playlist.Items("tracks")), true
}

// countTracks sums resolved tracklist lengths across playlists.
func countTracks(playlists []models.Item) int {
	total := 0
	for _, playlist := range playlists {
		total += len(playlist.Items("tracks"))
	}
	return total
}
