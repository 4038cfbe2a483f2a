package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
)

var _ models.Repository[*models.ExportRecord] = (*ExportRepository)(nil)

// ExportRepository implements models.Repository[*models.ExportRecord] for the
// export history table.
//
// Each run stores one exports row plus one export_playlists row per playlist
// written to the output file, including the synthesized Liked Songs playlist.
type ExportRepository struct {
	db *sql.DB
}

// NewExportRepository creates a new ExportRepository with the given database connection
func NewExportRepository(db *sql.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

// Create inserts a completed run into the history with a generated ID and sequence
func (r *ExportRepository) Create(record *models.ExportRecord) error {
	sequence, err := NextSequence(r.db, "exports")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	record.Sequence = sequence
	record.SetID(shared.GenerateID())

	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO exports (id, sequence, file, format, sections, user_id, user_name,
			playlist_count, track_count, album_count, top_artist_count, top_track_count,
			failed_count, duration_ms, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		record.ID(),
		record.Sequence,
		record.File,
		record.Format,
		record.Sections,
		record.UserID,
		record.UserName,
		record.PlaylistCount,
		record.TrackCount,
		record.AlbumCount,
		record.TopArtistCount,
		record.TopTrackCount,
		record.FailedCount,
		record.DurationMS,
		record.CreatedAt(),
		record.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert export: %v", shared.ErrDatabaseOperation, err)
	}

	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *ExportRepository) Get(id string) (*models.ExportRecord, error) {
	query := `
		SELECT id, sequence, file, format, sections, user_id, user_name,
			playlist_count, track_count, album_count, top_artist_count, top_track_count,
			failed_count, duration_ms, created_at, updated_at, deleted_at
		FROM exports
		WHERE id = ? AND deleted_at IS NULL
	`

	record, err := scanExport(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: export %s", shared.ErrNotFound, id)
	}
	return record, err
}

// Latest retrieves the most recent run in the history
func (r *ExportRepository) Latest() (*models.ExportRecord, error) {
	query := `
		SELECT id, sequence, file, format, sections, user_id, user_name,
			playlist_count, track_count, album_count, top_artist_count, top_track_count,
			failed_count, duration_ms, created_at, updated_at, deleted_at
		FROM exports
		WHERE deleted_at IS NULL
		ORDER BY sequence DESC
		LIMIT 1
	`

	record, err := scanExport(r.db.QueryRow(query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no exports recorded yet", shared.ErrNotFound)
	}
	return record, err
}

// Update rewrites a run's counters, e.g. after backfilling playlist rows
func (r *ExportRepository) Update(record *models.ExportRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	record.SetUpdatedAt(now)

	query := `
		UPDATE exports
		SET file = ?, format = ?, sections = ?, user_id = ?, user_name = ?,
			playlist_count = ?, track_count = ?, album_count = ?, top_artist_count = ?,
			top_track_count = ?, failed_count = ?, duration_ms = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		record.File,
		record.Format,
		record.Sections,
		record.UserID,
		record.UserName,
		record.PlaylistCount,
		record.TrackCount,
		record.AlbumCount,
		record.TopArtistCount,
		record.TopTrackCount,
		record.FailedCount,
		record.DurationMS,
		now,
		record.ID(),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to update export: %v", shared.ErrDatabaseOperation, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: export %s", shared.ErrNotFound, record.ID())
	}

	return nil
}

// Delete soft-deletes a run by ID
func (r *ExportRepository) Delete(id string) error {
	query := `
		UPDATE exports
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete export: %v", shared.ErrDatabaseOperation, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: export %s", shared.ErrNotFound, id)
	}

	return nil
}

// List retrieves runs matching the given criteria, newest first.
//
// Supported criteria: "format" and "user_id" filter, "limit" caps the result.
func (r *ExportRepository) List(criteria map[string]any) ([]*models.ExportRecord, error) {
	query := `
		SELECT id, sequence, file, format, sections, user_id, user_name,
			playlist_count, track_count, album_count, top_artist_count, top_track_count,
			failed_count, duration_ms, created_at, updated_at, deleted_at
		FROM exports
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if format, ok := criteria["format"].(string); ok && format != "" {
		query += " AND format = ?"
		args = append(args, format)
	}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query exports: %v", shared.ErrDatabaseOperation, err)
	}
	defer rows.Close()

	var records []*models.ExportRecord
	for rows.Next() {
		record, err := scanExport(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// AddPlaylists inserts the per-playlist summaries for a run in one transaction.
//
// Positions follow the output file: the Liked Songs playlist, when present,
// sits at position zero.
func (r *ExportRepository) AddPlaylists(records []*models.ExportPlaylistRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO export_playlists (id, export_id, position, name, track_count, resolved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		record.SetID(shared.GenerateID())

		if err := record.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		_, err := stmt.Exec(
			record.ID(),
			record.ExportID,
			record.Position,
			record.Name,
			record.TrackCount,
			record.Resolved,
			record.CreatedAt(),
		)
		if err != nil {
			return fmt.Errorf("%w: failed to insert playlist row: %v", shared.ErrDatabaseOperation, err)
		}
	}

	return tx.Commit()
}

// Playlists retrieves the per-playlist summaries for a run, in output order
func (r *ExportRepository) Playlists(exportID string) ([]*models.ExportPlaylistRecord, error) {
	query := `
		SELECT id, export_id, position, name, track_count, resolved, created_at
		FROM export_playlists
		WHERE export_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, exportID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query playlist rows: %v", shared.ErrDatabaseOperation, err)
	}
	defer rows.Close()

	var records []*models.ExportPlaylistRecord
	for rows.Next() {
		var (
			id         string
			eid        string
			position   int
			name       string
			trackCount int
			resolved   bool
			createdAt  time.Time
		)

		if err := rows.Scan(&id, &eid, &position, &name, &trackCount, &resolved, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist row: %w", err)
		}

		record := models.NewExportPlaylistRecord(eid, position, name, trackCount, resolved)
		record.SetID(id)
		record.SetCreatedAt(createdAt)
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// rowScanner covers both [sql.Row] and [sql.Rows]
type rowScanner interface {
	Scan(dest ...any) error
}

// scanExport scans one history row into a [models.ExportRecord]
func scanExport(row rowScanner) (*models.ExportRecord, error) {
	var (
		id             string
		sequence       int
		file           string
		format         string
		sections       string
		userID         string
		userName       string
		playlistCount  int
		trackCount     int
		albumCount     int
		topArtistCount int
		topTrackCount  int
		failedCount    int
		durationMS     int64
		createdAt      time.Time
		updatedAt      time.Time
		deletedAt      sql.NullTime
	)

	err := row.Scan(&id, &sequence, &file, &format, &sections, &userID, &userName,
		&playlistCount, &trackCount, &albumCount, &topArtistCount, &topTrackCount,
		&failedCount, &durationMS, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan export: %w", err)
	}

	record := models.NewExportRecord(file, format, nil)
	record.Sections = sections
	record.Sequence = sequence
	record.UserID = userID
	record.UserName = userName
	record.PlaylistCount = playlistCount
	record.TrackCount = trackCount
	record.AlbumCount = albumCount
	record.TopArtistCount = topArtistCount
	record.TopTrackCount = topTrackCount
	record.FailedCount = failedCount
	record.DurationMS = durationMS
	record.SetID(id)
	record.SetCreatedAt(createdAt)
	record.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		record.SetDeletedAt(&deletedAt.Time)
	}

	return record, nil
}
