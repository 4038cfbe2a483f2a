package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/repositories"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/urfave/cli/v3"
)

// historyRow is the JSON shape for history output. The record's id and
// timestamps are unexported, so a plain struct carries them across.
type historyRow struct {
	ID        string    `json:"id"`
	Sequence  int       `json:"sequence"`
	CreatedAt time.Time `json:"created_at"`
	File      string    `json:"file"`
	Format    string    `json:"format"`
	Sections  []string  `json:"sections"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Playlists int       `json:"playlists"`
	Tracks    int       `json:"tracks"`
	Albums    int       `json:"albums"`
	Failed    int       `json:"failed,omitempty"`
}

// openHistory opens the history database and wraps it in a repository.
// The caller owns the returned handle.
func (r *Runner) openHistory(configPath string) (*sql.DB, *repositories.ExportRepository, error) {
	r.reloadConfig(configPath)

	db, err := shared.NewDatabase(r.config.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to migrate history database: %w", err)
	}

	return db, repositories.NewExportRepository(db), nil
}

// HistoryList prints recent export runs, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	db, repo, err := r.openHistory(cmd.String("config"))
	if err != nil {
		return err
	}
	defer db.Close()

	criteria := map[string]any{"limit": cmd.Int("limit")}
	if format := cmd.String("format"); format != "" {
		criteria["format"] = format
	}

	records, err := repo.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(historyRows(records), false)
	}

	if len(records) == 0 {
		return r.writePlain("No exports recorded yet.\n")
	}

	r.writePlain("Found %d exports:\n\n", len(records))
	for _, record := range records {
		r.writePlain("#%d  %s\n", record.Sequence, record.CreatedAt().Format(time.DateTime))
		r.writePlain("   File: %s (%s)\n", record.File, record.Format)
		r.writePlain("   Sections: %s\n", record.Sections)
		r.writePlain("   Account: %s\n", record.UserName)
		r.writePlain("   Playlists: %d, tracks: %d", record.PlaylistCount, record.TrackCount)
		if record.FailedCount > 0 {
			r.writePlain(" (%d unresolved)", record.FailedCount)
		}
		r.writePlain("\n\n")
	}

	return nil
}

// HistoryShow prints one export run with its playlist rows. Without an id
// argument the latest run is shown.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	db, repo, err := r.openHistory(cmd.String("config"))
	if err != nil {
		return err
	}
	defer db.Close()

	var record *models.ExportRecord
	if id := cmd.StringArg("id"); id == "" {
		record, err = repo.Latest()
	} else {
		record, err = repo.Get(id)
	}
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Export #%d", record.Sequence))
	r.writePlain("Date: %s\n", record.CreatedAt().Format(time.DateTime))
	r.writePlain("File: %s (%s)\n", record.File, record.Format)
	r.writePlain("Sections: %s\n", record.Sections)
	r.writePlain("Account: %s (%s)\n", record.UserName, record.UserID)
	r.writePlain("Duration: %s\n", record.Duration().Round(time.Millisecond))
	if record.AlbumCount > 0 {
		r.writePlain("Albums: %d\n", record.AlbumCount)
	}
	if record.TopArtistCount > 0 || record.TopTrackCount > 0 {
		r.writePlain("Top items: %d artists, %d tracks\n", record.TopArtistCount, record.TopTrackCount)
	}

	playlists, err := repo.Playlists(record.ID())
	if err != nil {
		return err
	}

	if len(playlists) == 0 {
		r.writePlain("\nNo playlist rows recorded.\n")
		return nil
	}

	r.writePlain("\nPlaylists (%d):\n", len(playlists))
	for _, row := range playlists {
		r.writePlain("%4d. %s (%d tracks)", row.Position+1, row.Name, row.TrackCount)
		if !row.Resolved {
			r.writePlain(" ⚠ unresolved")
		}
		r.writePlain("\n")
	}

	return nil
}

func historyRows(records []*models.ExportRecord) []historyRow {
	rows := make([]historyRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, historyRow{
			ID:        record.ID(),
			Sequence:  record.Sequence,
			CreatedAt: record.CreatedAt(),
			File:      record.File,
			Format:    record.Format,
			Sections:  record.SectionList(),
			UserID:    record.UserID,
			UserName:  record.UserName,
			Playlists: record.PlaylistCount,
			Tracks:    record.TrackCount,
			Albums:    record.AlbumCount,
			Failed:    record.FailedCount,
		})
	}
	return rows
}
