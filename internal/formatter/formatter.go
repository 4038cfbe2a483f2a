// package formatter renders a fetched library to its output formats (JSON and tab-separated text)
package formatter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
)

const (
	FormatJSON = "json"
	FormatText = "txt"
)

// DefaultFilename builds a timestamped output path for the given format,
// e.g. playlists-20250102-150405.json
func DefaultFilename(format string) string {
	return fmt.Sprintf("playlists-%s.%s", shared.Timestamp(time.Now()), format)
}

// ResolveOutput reconciles the output path with the requested format.
//
// A provided filename wins: its extension selects the format, and anything
// other than .json or .txt falls back to tab-separated text with a warning.
// Without a filename a timestamped one is generated from the format flag.
func ResolveOutput(file, format string, logger *log.Logger) (string, string) {
	if file == "" {
		return DefaultFilename(format), format
	}

	switch strings.ToLower(filepath.Ext(file)) {
	case ".json":
		return file, FormatJSON
	case ".txt":
		return file, FormatText
	default:
		if logger != nil {
			logger.Warnf("unrecognized extension on %q, writing tab-separated text", file)
		}
		return file, FormatText
	}
}

// ExportToJSON renders the library as a compact JSON document.
//
// The playlists and albums keys are always present, even when empty; the
// top sections appear only when they hold items.
func ExportToJSON(lib *models.Library) ([]byte, error) {
	out := *lib
	if out.Playlists == nil {
		out.Playlists = []models.Item{}
	}
	if out.Albums == nil {
		out.Albums = []models.Item{}
	}
	return shared.MarshalJSON(out, false)
}

// ExportToText renders the library as tab-separated text with CRLF line
// endings. The playlist section is always written; liked albums and the
// top sections appear only when populated.
func ExportToText(lib *models.Library, timeRange string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("Playlists: \r\n\r\n")
	for _, playlist := range lib.Playlists {
		buf.WriteString(playlist.Str("name") + "\r\n")
		for _, item := range playlist.Items("tracks") {
			if !item.Has("track") {
				continue
			}
			track := item.Map("track")
			album := track.Map("album")
			fmt.Fprintf(&buf, "%s\t%s\t%s\t%s\t%s\r\n",
				track.Str("name"), artistNames(track), album.Str("name"),
				track.Str("uri"), album.Str("release_date"))
		}
		buf.WriteString("\r\n")
	}

	if len(lib.Albums) > 0 {
		buf.WriteString("Liked Albums: \r\n\r\n")
		for _, item := range lib.Albums {
			album := item.Map("album")
			fmt.Fprintf(&buf, "%s\t%s\t-\t%s\t%s\r\n",
				album.Str("name"), artistNames(album),
				album.Str("uri"), album.Str("release_date"))
		}
	}

	label := titleTimeRange(timeRange)
	if len(lib.TopArtists) > 0 {
		fmt.Fprintf(&buf, "\r\nTop Artists (%s): \r\n\r\n", label)
		for i, artist := range lib.TopArtists {
			genres := strings.Join(artist.Strs("genres"), ", ")
			if genres == "" {
				genres = "No genres"
			}
			fmt.Fprintf(&buf, "%d\t%s\t%s\t%d followers\t%s\r\n",
				i+1, artist.Str("name"), genres,
				artist.Map("followers").Int("total"), artist.Str("uri"))
		}
	}

	if len(lib.TopTracks) > 0 {
		fmt.Fprintf(&buf, "\r\nTop Tracks (%s): \r\n\r\n", label)
		for i, track := range lib.TopTracks {
			album := track.Map("album")
			fmt.Fprintf(&buf, "%d\t%s\t%s\t%s\t%s\t%s\r\n",
				i+1, track.Str("name"), artistNames(track), album.Str("name"),
				track.Str("uri"), album.Str("release_date"))
		}
	}

	return buf.Bytes(), nil
}

// WriteExport renders the library in the given format and writes it to path.
func WriteExport(lib *models.Library, path, format, timeRange string) error {
	var data []byte
	var err error

	switch format {
	case FormatJSON:
		data, err = ExportToJSON(lib)
	case FormatText:
		data, err = ExportToText(lib, timeRange)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return fmt.Errorf("failed to render %s export: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// artistNames joins the artist names on a track or album with commas.
func artistNames(owner models.Item) string {
	artists := owner.Items("artists")
	names := make([]string, 0, len(artists))
	for _, artist := range artists {
		names = append(names, artist.Str("name"))
	}
	return strings.Join(names, ", ")
}

// titleTimeRange turns a time_range value into its section label,
// e.g. "medium_term" becomes "Medium Term".
func titleTimeRange(timeRange string) string {
	words := strings.Split(timeRange, "_")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}
