// package services defines interface LibraryService for reading a user's
// Spotify library over HTTP
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
)

// LibraryService is the read surface of a Spotify library consumed by the
// export engine.
type LibraryService interface {
	// CurrentUser fetches the profile of the account that owns the token.
	CurrentUser(ctx context.Context) (*models.UserProfile, error)

	// Playlists lists the playlists owned by or followed from the given account.
	Playlists(ctx context.Context, userID string) ([]models.Item, error)

	// PlaylistTracks walks a playlist's track pages via its tracks href.
	PlaylistTracks(ctx context.Context, href string) ([]models.Item, error)

	// LikedTracks lists every track saved to the user's library.
	LikedTracks(ctx context.Context) ([]models.Item, error)

	// LikedAlbums lists every album saved to the user's library.
	LikedAlbums(ctx context.Context) ([]models.Item, error)

	// TopArtists lists the user's most listened artists for a time range.
	TopArtists(ctx context.Context, timeRange string, limit int) ([]models.Item, error)

	// TopTracks lists the user's most listened tracks for a time range.
	TopTracks(ctx context.Context, timeRange string, limit int) ([]models.Item, error)

	// Name returns the name of the provider (e.g., "Spotify")
	Name() string
}

// Section selects one part of the library to export.
type Section string

const (
	SectionLiked     Section = "liked"
	SectionPlaylists Section = "playlists"
	SectionTop       Section = "top"
)

// TimeRanges lists the windows the top-item endpoints accept.
var TimeRanges = []string{"short_term", "medium_term", "long_term"}

// ParseSections splits a comma-separated section list, deduplicates it, and
// returns it in export order (liked first so the synthesized Liked Songs
// playlist leads the document).
func ParseSections(raw string) ([]Section, error) {
	seen := map[Section]bool{}
	for _, part := range strings.Split(raw, ",") {
		switch s := Section(strings.TrimSpace(part)); s {
		case SectionLiked, SectionPlaylists, SectionTop:
			seen[s] = true
		default:
			return nil, fmt.Errorf("%w: unknown section %q (expected liked, playlists, or top)", shared.ErrInvalidFlag, part)
		}
	}

	var sections []Section
	for _, s := range []Section{SectionLiked, SectionPlaylists, SectionTop} {
		if seen[s] {
			sections = append(sections, s)
		}
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: no sections requested", shared.ErrInvalidFlag)
	}
	return sections, nil
}

// SectionStrings converts sections back to their flag names.
func SectionStrings(sections []Section) []string {
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = string(s)
	}
	return out
}

// ScopesFor returns the OAuth scopes the chosen sections require. Playlist
// and liked exports share the library scopes; top items need their own.
func ScopesFor(sections []Section) []string {
	var scopes []string
	for _, s := range sections {
		if s == SectionLiked || s == SectionPlaylists {
			scopes = append(scopes, "playlist-read-private", "playlist-read-collaborative", "user-library-read")
			break
		}
	}
	for _, s := range sections {
		if s == SectionTop {
			scopes = append(scopes, "user-top-read")
			break
		}
	}
	return scopes
}

// ValidateToken rejects strings that cannot be a Spotify access token.
// Real tokens are long opaque blobs; anything shorter is a paste error.
func ValidateToken(token string) error {
	if strings.TrimSpace(token) == "" || len(token) < 50 {
		return fmt.Errorf("%w: token should be a long alphanumeric string", shared.ErrInvalidToken)
	}
	return nil
}

// ValidateTimeRange checks a --time-range flag value.
func ValidateTimeRange(timeRange string) error {
	for _, tr := range TimeRanges {
		if tr == timeRange {
			return nil
		}
	}
	return fmt.Errorf("%w: time range must be one of %s", shared.ErrInvalidFlag, strings.Join(TimeRanges, ", "))
}
