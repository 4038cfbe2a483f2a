package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/repositories"
	"github.com/desertthunder/spx/internal/services"
	"github.com/desertthunder/spx/internal/shared"
	tu "github.com/desertthunder/spx/internal/testing"
	"github.com/urfave/cli/v3"
)

// testConfig points the history database at a temp dir so runs don't leave
// files behind.
func testConfig(t *testing.T) *shared.Config {
	t.Helper()
	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "spx.db")
	return config
}

func testRunner(config *shared.Config, service services.LibraryService) (*Runner, *bytes.Buffer) {
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:  config,
		Service: service,
		Logger:  shared.NewLogger(io.Discard),
		Output:  output,
	})
	return runner, output
}

func runCommand(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "spx", Commands: runner.register()}
	return app.Run(context.Background(), append([]string{"spx"}, args...))
}

// libraryMock returns a service with one liked track, one liked album, and
// one playlist whose tracklist resolves.
func libraryMock() *tu.MockService {
	return &tu.MockService{
		Profile: &models.UserProfile{ID: "u1", DisplayName: "User One"},
		Liked:   []models.Item{{"track": map[string]any{"name": "Liked One"}}},
		Albums:  []models.Item{{"album": map[string]any{"name": "First Album"}}},
		Lists: []models.Item{{
			"name":   "Mix",
			"tracks": map[string]any{"href": "h1", "total": float64(1)},
		}},
		Resolved: map[string][]models.Item{
			"h1": {{"track": map[string]any{"name": "Song One"}}},
		},
	}
}

func TestExportCommand(t *testing.T) {
	t.Run("writes the requested sections to a json file", func(t *testing.T) {
		runner, output := testRunner(testConfig(t), libraryMock())
		path := filepath.Join(t.TempDir(), "out.json")

		err := runCommand(t, runner, "export", "--token", testToken, "--dump", "liked,playlists", path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), "✓ Export complete") {
			t.Errorf("expected completion message, got %q", output.String())
		}
		if !strings.Contains(output.String(), "Account: User One (u1)") {
			t.Errorf("expected account line, got %q", output.String())
		}

		var doc struct {
			Playlists []map[string]any `json:"playlists"`
			Albums    []map[string]any `json:"albums"`
		}
		if err := json.Unmarshal([]byte(tu.MustReadFile(t, path)), &doc); err != nil {
			t.Fatalf("export file is not valid JSON: %v", err)
		}

		if len(doc.Playlists) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(doc.Playlists))
		}
		if doc.Playlists[0]["name"] != "Liked Songs" {
			t.Errorf("expected Liked Songs first, got %v", doc.Playlists[0]["name"])
		}
		if doc.Playlists[1]["name"] != "Mix" {
			t.Errorf("expected Mix second, got %v", doc.Playlists[1]["name"])
		}
		if len(doc.Albums) != 1 {
			t.Errorf("expected 1 album, got %d", len(doc.Albums))
		}
	})

	t.Run("defaults produce a timestamped text file", func(t *testing.T) {
		dir := t.TempDir()
		wd := tu.MustGetwd(t)
		tu.MustChdir(t, dir)
		defer os.Chdir(wd)

		runner, output := testRunner(testConfig(t), libraryMock())

		if err := runCommand(t, runner, "export", "--token", testToken); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		matches, err := filepath.Glob(filepath.Join(dir, "playlists-*.txt"))
		if err != nil || len(matches) != 1 {
			t.Fatalf("expected one timestamped text file, got %v (%v)", matches, err)
		}

		content := tu.MustReadFile(t, matches[0])
		if !strings.HasPrefix(content, "Playlists: \r\n\r\n") {
			t.Errorf("expected text header, got %q", content[:min(len(content), 40)])
		}
		if !strings.Contains(content, "Mix\r\n") {
			t.Errorf("expected playlist name in file, got %q", content)
		}
		if !strings.Contains(output.String(), "✓ Export complete") {
			t.Errorf("expected completion message, got %q", output.String())
		}
	})

	t.Run("records the run in history", func(t *testing.T) {
		config := testConfig(t)
		runner, _ := testRunner(config, libraryMock())
		path := filepath.Join(t.TempDir(), "out.json")

		if err := runCommand(t, runner, "export", "--token", testToken, "--dump", "liked,playlists", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		db, err := shared.NewDatabase(config.Database)
		if err != nil {
			t.Fatalf("failed to open history database: %v", err)
		}
		defer db.Close()

		repo := repositories.NewExportRepository(db)
		record, err := repo.Latest()
		if err != nil {
			t.Fatalf("expected a recorded run, got %v", err)
		}

		if record.File != path {
			t.Errorf("expected file %s, got %s", path, record.File)
		}
		if record.UserID != "u1" {
			t.Errorf("expected user u1, got %s", record.UserID)
		}
		if record.PlaylistCount != 2 || record.TrackCount != 2 {
			t.Errorf("expected 2 playlists with 2 tracks, got %d/%d", record.PlaylistCount, record.TrackCount)
		}
		if record.AlbumCount != 1 {
			t.Errorf("expected 1 album, got %d", record.AlbumCount)
		}

		rows, err := repo.Playlists(record.ID())
		if err != nil {
			t.Fatalf("expected playlist rows, got %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 playlist rows, got %d", len(rows))
		}
		if rows[0].Name != "Liked Songs" || !rows[0].Resolved {
			t.Errorf("expected resolved Liked Songs first, got %+v", rows[0])
		}
	})

	t.Run("rejects an unknown section", func(t *testing.T) {
		runner, _ := testRunner(testConfig(t), libraryMock())

		err := runCommand(t, runner, "export", "--token", testToken, "--dump", "bogus")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("rejects a bad time range", func(t *testing.T) {
		runner, _ := testRunner(testConfig(t), libraryMock())

		err := runCommand(t, runner, "export", "--token", testToken, "--time-range", "weekly")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("rejects an out of range top limit", func(t *testing.T) {
		runner, _ := testRunner(testConfig(t), libraryMock())

		err := runCommand(t, runner, "export", "--token", testToken, "--top-limit", "51")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("rejects an unknown format", func(t *testing.T) {
		runner, _ := testRunner(testConfig(t), libraryMock())

		err := runCommand(t, runner, "export", "--token", testToken, "--format", "yaml")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("rejects an implausible token", func(t *testing.T) {
		runner, _ := testRunner(testConfig(t), nil)

		err := runCommand(t, runner, "export", "--token", "short")
		if !errors.Is(err, shared.ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("auth failures surface", func(t *testing.T) {
		mock := libraryMock()
		mock.Err = fmt.Errorf("%w: token expired", shared.ErrAuthFailed)
		runner, _ := testRunner(testConfig(t), mock)

		err := runCommand(t, runner, "export", "--token", testToken, filepath.Join(t.TempDir(), "out.json"))
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})
}

func TestHistoryCommands(t *testing.T) {
	seed := func(t *testing.T) (*shared.Config, []string) {
		t.Helper()
		config := testConfig(t)
		dir := t.TempDir()
		paths := []string{
			filepath.Join(dir, "first.json"),
			filepath.Join(dir, "second.txt"),
		}

		runner, _ := testRunner(config, libraryMock())
		if err := runCommand(t, runner, "export", "--token", testToken, "--dump", "liked,playlists", paths[0]); err != nil {
			t.Fatalf("failed to seed first export: %v", err)
		}
		if err := runCommand(t, runner, "export", "--token", testToken, paths[1]); err != nil {
			t.Fatalf("failed to seed second export: %v", err)
		}
		return config, paths
	}

	t.Run("list shows runs newest first", func(t *testing.T) {
		config, _ := seed(t)
		runner, output := testRunner(config, nil)

		if err := runCommand(t, runner, "history", "list"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		text := output.String()
		if !strings.Contains(text, "Found 2 exports:") {
			t.Errorf("expected 2 exports, got %q", text)
		}
		if strings.Index(text, "#2") > strings.Index(text, "#1") {
			t.Error("expected the newest run first")
		}
	})

	t.Run("list filters by format", func(t *testing.T) {
		config, paths := seed(t)
		runner, output := testRunner(config, nil)

		if err := runCommand(t, runner, "history", "list", "--format", "json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		text := output.String()
		if !strings.Contains(text, "Found 1 exports:") {
			t.Errorf("expected 1 export, got %q", text)
		}
		if !strings.Contains(text, paths[0]) {
			t.Errorf("expected the json run, got %q", text)
		}
	})

	t.Run("list emits machine readable rows", func(t *testing.T) {
		config, _ := seed(t)
		runner, output := testRunner(config, nil)

		if err := runCommand(t, runner, "history", "list", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var rows []historyRow
		if err := json.Unmarshal(output.Bytes(), &rows); err != nil {
			t.Fatalf("expected valid JSON, got %v", err)
		}
		if len(rows) != 2 || rows[0].Sequence != 2 {
			t.Errorf("expected newest-first rows, got %+v", rows)
		}
		if rows[1].UserName != "User One" {
			t.Errorf("expected account name, got %q", rows[1].UserName)
		}
	})

	t.Run("list reports empty history", func(t *testing.T) {
		runner, output := testRunner(testConfig(t), nil)

		if err := runCommand(t, runner, "history", "list"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "No exports recorded yet.") {
			t.Errorf("expected empty notice, got %q", output.String())
		}
	})

	t.Run("show prints the latest run with playlists", func(t *testing.T) {
		config, paths := seed(t)
		runner, output := testRunner(config, nil)

		if err := runCommand(t, runner, "history", "show"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		text := output.String()
		if !strings.Contains(text, "Export #2") {
			t.Errorf("expected the latest run, got %q", text)
		}
		if !strings.Contains(text, paths[1]) {
			t.Errorf("expected the latest file, got %q", text)
		}
		if !strings.Contains(text, "Playlists (1):") || !strings.Contains(text, "Mix") {
			t.Errorf("expected playlist rows, got %q", text)
		}
	})

	t.Run("show resolves a specific id", func(t *testing.T) {
		config, _ := seed(t)

		db, err := shared.NewDatabase(config.Database)
		if err != nil {
			t.Fatalf("failed to open history database: %v", err)
		}
		records, err := repositories.NewExportRepository(db).List(nil)
		db.Close()
		if err != nil || len(records) != 2 {
			t.Fatalf("expected 2 seeded records, got %v (%v)", records, err)
		}

		runner, output := testRunner(config, nil)
		if err := runCommand(t, runner, "history", "show", records[1].ID()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Export #1") {
			t.Errorf("expected the first run, got %q", output.String())
		}
	})

	t.Run("show errors on an unknown id", func(t *testing.T) {
		config, _ := seed(t)
		runner, _ := testRunner(config, nil)

		err := runCommand(t, runner, "history", "show", "not-a-real-id")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestAPICommand(t *testing.T) {
	apiRunner := func(resp *http.Response) (*Runner, *bytes.Buffer) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config:     shared.DefaultConfig(),
			HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)},
			Logger:     shared.NewLogger(io.Discard),
			Output:     output,
		})
		return runner, output
	}

	t.Run("prints the json response", func(t *testing.T) {
		runner, output := apiRunner(tu.JSONResponse(200, `{"id":"u1"}`))

		if err := runCommand(t, runner, "api", "get", "--token", testToken, "me"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), `"id": "u1"`) {
			t.Errorf("expected pretty JSON, got %q", output.String())
		}
	})

	t.Run("prints a curl command when asked", func(t *testing.T) {
		runner, output := apiRunner(tu.JSONResponse(200, `{}`))

		if err := runCommand(t, runner, "api", "get", "--token", testToken, "--curl", "me"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		text := output.String()
		if !strings.Contains(text, "curl -H 'Authorization: Bearer ") {
			t.Errorf("expected a curl command, got %q", text)
		}
		if !strings.Contains(text, "api.spotify.com/v1/me") {
			t.Errorf("expected the request URL, got %q", text)
		}
	})

	t.Run("surfaces api errors", func(t *testing.T) {
		runner, _ := apiRunner(tu.JSONResponse(404, `{"error":{"status":404}}`))

		err := runCommand(t, runner, "api", "get", "--token", testToken, "me/nope")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if err == nil || !strings.Contains(err.Error(), "status 404") {
			t.Errorf("expected the status in the message, got %v", err)
		}
	})

	t.Run("rejects short tokens", func(t *testing.T) {
		runner, _ := apiRunner(tu.JSONResponse(200, `{}`))

		err := runCommand(t, runner, "api", "get", "--token", "short", "me")
		if !errors.Is(err, shared.ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("requires a path", func(t *testing.T) {
		runner, _ := apiRunner(tu.JSONResponse(200, `{}`))

		err := runCommand(t, runner, "api", "get", "--token", testToken)
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestSetupCommand(t *testing.T) {
	t.Run("creates config and database", func(t *testing.T) {
		dir := t.TempDir()
		wd := tu.MustGetwd(t)
		tu.MustChdir(t, dir)
		defer os.Chdir(wd)

		runner, output := testRunner(nil, nil)

		if err := runCommand(t, runner, "setup"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "config.toml"))
		tu.AssertFileExists(t, filepath.Join(dir, "spx.db"))
		if !strings.Contains(output.String(), "✓ Setup complete") {
			t.Errorf("expected confirmation, got %q", output.String())
		}
	})

	t.Run("reruns keep the existing config", func(t *testing.T) {
		dir := t.TempDir()
		wd := tu.MustGetwd(t)
		tu.MustChdir(t, dir)
		defer os.Chdir(wd)

		runner, _ := testRunner(nil, nil)
		if err := runCommand(t, runner, "setup"); err != nil {
			t.Fatalf("first setup failed: %v", err)
		}

		before := tu.MustReadFile(t, filepath.Join(dir, "config.toml"))

		again, output := testRunner(nil, nil)
		if err := runCommand(t, again, "setup"); err != nil {
			t.Fatalf("second setup failed: %v", err)
		}

		if tu.MustReadFile(t, filepath.Join(dir, "config.toml")) != before {
			t.Error("expected the config file to be left alone")
		}
		if !strings.Contains(output.String(), "✓ Setup complete") {
			t.Errorf("expected confirmation, got %q", output.String())
		}
	})
}
