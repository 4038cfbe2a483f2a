package models

import (
	"fmt"
	"strings"
	"time"
)

var (
	_ Model = (*ExportRecord)(nil)
	_ Model = (*ExportPlaylistRecord)(nil)
)

// ExportRecord is one completed export run.
type ExportRecord struct {
	id        string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time

	Sequence       int
	File           string
	Format         string
	Sections       string
	UserID         string
	UserName       string
	PlaylistCount  int
	TrackCount     int
	AlbumCount     int
	TopArtistCount int
	TopTrackCount  int
	FailedCount    int
	DurationMS     int64
}

// NewExportRecord creates a record for a finished run. Counts are filled in
// by the caller before persisting.
func NewExportRecord(file, format string, sections []string) *ExportRecord {
	now := time.Now()
	return &ExportRecord{
		createdAt: now,
		updatedAt: now,
		File:      file,
		Format:    format,
		Sections:  strings.Join(sections, ","),
	}
}

func (e *ExportRecord) ID() string                { return e.id }
func (e *ExportRecord) SetID(id string)           { e.id = id }
func (e *ExportRecord) CreatedAt() time.Time      { return e.createdAt }
func (e *ExportRecord) SetCreatedAt(t time.Time)  { e.createdAt = t }
func (e *ExportRecord) UpdatedAt() time.Time      { return e.updatedAt }
func (e *ExportRecord) SetUpdatedAt(t time.Time)  { e.updatedAt = t }
func (e *ExportRecord) DeletedAt() *time.Time     { return e.deletedAt }
func (e *ExportRecord) SetDeletedAt(t *time.Time) { e.deletedAt = t }

// SectionList splits the stored comma-joined sections.
func (e *ExportRecord) SectionList() []string {
	if e.Sections == "" {
		return nil
	}
	return strings.Split(e.Sections, ",")
}

// Duration returns the run duration recorded for this export.
func (e *ExportRecord) Duration() time.Duration {
	return time.Duration(e.DurationMS) * time.Millisecond
}

// Validate checks that the record holds the fields the history table requires.
func (e *ExportRecord) Validate() error {
	if e.File == "" {
		return fmt.Errorf("export record requires a file path")
	}
	if e.Format != "json" && e.Format != "txt" {
		return fmt.Errorf("export record has unknown format %q", e.Format)
	}
	if e.Sections == "" {
		return fmt.Errorf("export record requires at least one section")
	}
	return nil
}

// ExportPlaylistRecord is one playlist row attached to an export run,
// including the synthesized Liked Songs playlist at position zero.
type ExportPlaylistRecord struct {
	id        string
	createdAt time.Time

	ExportID   string
	Position   int
	Name       string
	TrackCount int
	Resolved   bool
}

// NewExportPlaylistRecord creates a playlist row for the run identified by exportID.
func NewExportPlaylistRecord(exportID string, position int, name string, trackCount int, resolved bool) *ExportPlaylistRecord {
	return &ExportPlaylistRecord{
		createdAt:  time.Now(),
		ExportID:   exportID,
		Position:   position,
		Name:       name,
		TrackCount: trackCount,
		Resolved:   resolved,
	}
}

func (p *ExportPlaylistRecord) ID() string               { return p.id }
func (p *ExportPlaylistRecord) SetID(id string)          { p.id = id }
func (p *ExportPlaylistRecord) CreatedAt() time.Time     { return p.createdAt }
func (p *ExportPlaylistRecord) SetCreatedAt(t time.Time) { p.createdAt = t }
func (p *ExportPlaylistRecord) UpdatedAt() time.Time     { return p.createdAt }

// Validate checks that the row references a run and carries a name.
func (p *ExportPlaylistRecord) Validate() error {
	if p.ExportID == "" {
		return fmt.Errorf("playlist record requires an export id")
	}
	if p.Name == "" {
		return fmt.Errorf("playlist record requires a name")
	}
	if p.Position < 0 {
		return fmt.Errorf("playlist record position must not be negative")
	}
	return nil
}
