// package models defines the data model for the library export tool
package models

import (
	"time"
)

// Item is a JSON object from the Spotify API, kept opaque.
//
// The export pipeline performs no schema validation on items; accessors
// return zero values for missing or differently typed fields and the
// formatters decide which fields to read.
type Item map[string]any

// Str returns the string at key, or "" when absent or not a string.
func (i Item) Str(key string) string {
	if v, ok := i[key].(string); ok {
		return v
	}
	return ""
}

// Int returns the integer at key. JSON numbers decode as float64, so both
// representations are accepted.
func (i Item) Int(key string) int {
	switch v := i[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// Map returns the nested object at key, or nil when absent.
func (i Item) Map(key string) Item {
	switch v := i[key].(type) {
	case map[string]any:
		return Item(v)
	case Item:
		return v
	}
	return nil
}

// Items returns the array of objects at key.
//
// Handles both freshly decoded JSON ([]any of maps) and slices already
// materialized as []Item, e.g. a playlist's resolved tracks.
func (i Item) Items(key string) []Item {
	switch v := i[key].(type) {
	case []Item:
		return v
	case []any:
		out := make([]Item, 0, len(v))
		for _, el := range v {
			if m, ok := el.(map[string]any); ok {
				out = append(out, Item(m))
			}
		}
		return out
	}
	return nil
}

// Strs returns the string elements of the array at key, e.g. an artist's
// genre list.
func (i Item) Strs(key string) []string {
	switch v := i[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, el := range v {
			if s, ok := el.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Has reports whether key is present with a non-nil value.
func (i Item) Has(key string) bool {
	v, ok := i[key]
	return ok && v != nil
}

// Library is the in-memory export handed to formatters.
//
// Playlists holds the synthesized Liked Songs playlist (when requested)
// followed by the user's own playlists, in API order. Top sections stay nil
// when their section wasn't requested or returned nothing.
type Library struct {
	Playlists  []Item `json:"playlists"`
	Albums     []Item `json:"albums"`
	TopArtists []Item `json:"top_artists,omitempty"`
	TopTracks  []Item `json:"top_tracks,omitempty"`
}

// UserProfile identifies the account being exported.
type UserProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Model defines the base interface for persistent records in the export history.
type Model interface {
	ID() string           // ID returns the unique identifier for this record
	CreatedAt() time.Time // CreatedAt returns when this record was created
	UpdatedAt() time.Time // UpdatedAt returns when this record was last updated
	Validate() error      // Validate checks if the record's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific record types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new record into the database
	Get(id string) (T, error)                  // Get retrieves a record by its ID
	Update(model T) error                      // Update modifies an existing record in the database
	Delete(id string) error                    // Delete removes a record from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all records matching the given criteria
}
