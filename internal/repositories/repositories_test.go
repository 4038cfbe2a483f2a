package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// One connection so every query sees the same :memory: database.
	db, err := shared.NewDatabase(shared.DatabaseConfig{Path: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func sampleRecord() *models.ExportRecord {
	record := models.NewExportRecord("playlists-20250101-120000.json", "json", []string{"liked", "playlists"})
	record.UserID = "u1"
	record.UserName = "Tester"
	record.PlaylistCount = 3
	record.TrackCount = 120
	record.AlbumCount = 4
	record.FailedCount = 1
	record.DurationMS = 4200
	return record
}

func TestExportRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRepository(db)
		record := sampleRecord()

		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create export: %v", err)
		}

		if record.ID() == "" {
			t.Error("export ID should be set after creation")
		}
		if record.Sequence != 1 {
			t.Errorf("expected sequence 1, got %d", record.Sequence)
		}
	})

	t.Run("Create rejects invalid records", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRepository(db)
		record := models.NewExportRecord("", "json", []string{"playlists"})

		if err := repo.Create(record); err == nil {
			t.Fatal("expected validation error for empty file")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRepository(db)
		record := sampleRecord()

		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create export: %v", err)
		}

		retrieved, err := repo.Get(record.ID())
		if err != nil {
			t.Fatalf("failed to get export: %v", err)
		}

		if retrieved.File != record.File {
			t.Errorf("expected file %s, got %s", record.File, retrieved.File)
		}
		if retrieved.TrackCount != 120 {
			t.Errorf("expected 120 tracks, got %d", retrieved.TrackCount)
		}
		if got := retrieved.SectionList(); len(got) != 2 || got[0] != "liked" {
			t.Errorf("expected sections restored, got %v", got)
		}
	})

	t.Run("Get not found", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRepository(db)

		_, err := repo.Get("nonexistent-id")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Latest", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRepository(db)

		if _, err := repo.Latest(); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound on an empty history, got %v", err)
		}

		first := sampleRecord()
		if err := repo.Create(first); err != nil {
			t.Fatalf("failed to create export: %v", err)
		}

		second := sampleRecord()
		second.File = "playlists-20250102-120000.txt"
		second.Format = "txt"
		if err := repo.Create(second); err != nil {
			t.Fatalf("failed to create export: %v", err)
		}

		latest, err := repo.Latest()
		if err != nil {
			t.Fatalf("failed to get latest export: %v", err)
		}
		if latest.ID() != second.ID() {
			t.Errorf("expected the newest run, got %s", latest.File)
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRepository(db)
		record := sampleRecord()

		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create export: %v", err)
		}

		record.TrackCount = 200
		if err := repo.Update(record); err != nil {
			t.Fatalf("failed to update export: %v", err)
		}

		retrieved, err := repo.Get(record.ID())
		if err != nil {
			t.Fatalf("failed to get export: %v", err)
		}
		if retrieved.TrackCount != 200 {
			t.Errorf("expected updated count, got %d", retrieved.TrackCount)
		}
	})

	t.Run("Update not found", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRepository(db)
		record := sampleRecord()
		record.SetID("nonexistent-id")

		if err := repo.Update(record); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRepository(db)
		record := sampleRecord()

		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create export: %v", err)
		}

		if err := repo.Delete(record.ID()); err != nil {
			t.Fatalf("failed to delete export: %v", err)
		}

		if _, err := repo.Get(record.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected the deleted run hidden, got %v", err)
		}

		if err := repo.Delete(record.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound on double delete, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRepository(db)

		for _, format := range []string{"json", "txt", "json"} {
			record := sampleRecord()
			record.Format = format
			if format == "txt" {
				record.File = "playlists-20250103-120000.txt"
			}
			if err := repo.Create(record); err != nil {
				t.Fatalf("failed to create export: %v", err)
			}
		}

		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list exports: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 exports, got %d", len(all))
		}
		if all[0].Sequence != 3 || all[2].Sequence != 1 {
			t.Errorf("expected newest first, got sequences %d..%d", all[0].Sequence, all[2].Sequence)
		}

		filtered, err := repo.List(map[string]any{"format": "txt"})
		if err != nil {
			t.Fatalf("failed to list filtered exports: %v", err)
		}
		if len(filtered) != 1 {
			t.Errorf("expected 1 txt export, got %d", len(filtered))
		}

		limited, err := repo.List(map[string]any{"limit": 2})
		if err != nil {
			t.Fatalf("failed to list limited exports: %v", err)
		}
		if len(limited) != 2 {
			t.Errorf("expected 2 exports, got %d", len(limited))
		}
	})
}

func TestExportPlaylists(t *testing.T) {
	t.Run("AddPlaylists and Playlists round trip", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRepository(db)
		record := sampleRecord()
		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create export: %v", err)
		}

		rows := []*models.ExportPlaylistRecord{
			models.NewExportPlaylistRecord(record.ID(), 0, "Liked Songs", 42, true),
			models.NewExportPlaylistRecord(record.ID(), 1, "Road Trip", 17, true),
			models.NewExportPlaylistRecord(record.ID(), 2, "Broken", 0, false),
		}

		if err := repo.AddPlaylists(rows); err != nil {
			t.Fatalf("failed to add playlist rows: %v", err)
		}

		retrieved, err := repo.Playlists(record.ID())
		if err != nil {
			t.Fatalf("failed to list playlist rows: %v", err)
		}

		if len(retrieved) != 3 {
			t.Fatalf("expected 3 playlist rows, got %d", len(retrieved))
		}
		if retrieved[0].Name != "Liked Songs" || retrieved[0].Position != 0 {
			t.Errorf("expected Liked Songs first, got %+v", retrieved[0])
		}
		if retrieved[2].Resolved {
			t.Error("expected the unresolved playlist flagged")
		}
	})

	t.Run("AddPlaylists with no rows is a no-op", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRepository(db)
		if err := repo.AddPlaylists(nil); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("AddPlaylists rejects rows without an export", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRepository(db)
		rows := []*models.ExportPlaylistRecord{
			models.NewExportPlaylistRecord("", 0, "Orphan", 1, true),
		}

		if err := repo.AddPlaylists(rows); err == nil {
			t.Fatal("expected validation error for missing export id")
		}
	})
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seq1, err := NextSequence(db, "exports")
	if err != nil {
		t.Fatalf("failed to get first sequence: %v", err)
	}

	if seq1 != 1 {
		t.Errorf("expected first sequence to be 1, got %d", seq1)
	}

	seq2, err := NextSequence(db, "exports")
	if err != nil {
		t.Fatalf("failed to get second sequence: %v", err)
	}

	if seq2 != 2 {
		t.Errorf("expected second sequence to be 2, got %d", seq2)
	}
}
