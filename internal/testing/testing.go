// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/desertthunder/spx/internal/models"
)

// MockService is a test double for [services.LibraryService]
type MockService struct {
	Profile    *models.UserProfile
	Lists      []models.Item
	Liked      []models.Item
	Albums     []models.Item
	Artists    []models.Item
	Songs      []models.Item
	Resolved   map[string][]models.Item
	ResolveErr map[string]error
	Err        error
}

func (m *MockService) CurrentUser(ctx context.Context) (*models.UserProfile, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Profile == nil {
		return &models.UserProfile{ID: "mock", DisplayName: "Mock User"}, nil
	}
	return m.Profile, nil
}

func (m *MockService) Playlists(ctx context.Context, userID string) ([]models.Item, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Lists, nil
}

func (m *MockService) PlaylistTracks(ctx context.Context, href string) ([]models.Item, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if err, ok := m.ResolveErr[href]; ok {
		return nil, err
	}
	return m.Resolved[href], nil
}

func (m *MockService) LikedTracks(ctx context.Context) ([]models.Item, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Liked, nil
}

func (m *MockService) LikedAlbums(ctx context.Context) ([]models.Item, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Albums, nil
}

func (m *MockService) TopArtists(ctx context.Context, timeRange string, limit int) ([]models.Item, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Artists, nil
}

func (m *MockService) TopTracks(ctx context.Context, timeRange string, limit int) ([]models.Item, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Songs, nil
}

func (m *MockService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// SeqRoundTripper replays queued responses in order, repeating the final
// entry once the queue is exhausted. Useful for retry paths where httptest
// can't produce transport-level errors.
type SeqRoundTripper struct {
	responses []*http.Response
	errs      []error
	calls     int
}

func NewSeqRoundTripper() *SeqRoundTripper {
	return &SeqRoundTripper{}
}

func (s *SeqRoundTripper) Add(r *http.Response, e error) *SeqRoundTripper {
	s.responses = append(s.responses, r)
	s.errs = append(s.errs, e)
	return s
}

func (s *SeqRoundTripper) Calls() int { return s.calls }

func (s *SeqRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	i := s.calls
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	s.calls++
	return s.responses[i], s.errs[i]
}

// JSONResponse builds a response carrying the given JSON body.
func JSONResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
