// Spotify API implementation of [LibraryService]
//
// Endpoint shapes based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1/"

	// DefaultClientID identifies the registered public app for the implicit
	// grant flow. Implicit grant has no client secret, so shipping the id in
	// the binary is the intended usage.
	DefaultClientID = "5c098bcc800e45d49e476265bc9b6934"

	defaultTries  = 3
	progressEvery = 15 * time.Second
)

var _ LibraryService = (*SpotifyService)(nil)

// SpotifyService reads a user's library through the Spotify Web API.
//
// Every request goes through [SpotifyService.Get], which owns authentication,
// rate limiting, and the retry budget. Paginated endpoints layer
// [SpotifyService.List] on top. The service is safe for concurrent use once
// the token is installed: the token is only read after that point.
type SpotifyService struct {
	config   *oauth2.Config
	token    *oauth2.Token
	base     string
	client   *http.Client
	limiter  *rate.Limiter
	logger   *log.Logger
	tries    int
	maxPages int
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewSpotifyService creates a Spotify client from the export configuration.
// Zero values in cfg.Export fall back to defaults; a zero rate limit
// disables client-side pacing entirely.
func NewSpotifyService(cfg *shared.Config, logger *log.Logger) *SpotifyService {
	clientID := cfg.Credentials.Spotify.ClientID
	if clientID == "" {
		clientID = DefaultClientID
	}

	tries := cfg.Export.Retries
	if tries <= 0 {
		tries = defaultTries
	}

	var limiter *rate.Limiter
	if cfg.Export.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Export.RateLimit), 1)
	}

	return &SpotifyService{
		config: &oauth2.Config{
			ClientID:    clientID,
			RedirectURL: cfg.Server.RedirectURI(),
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyAuthURL,
				TokenURL: spotifyTokenURL,
			},
		},
		base:     spotifyBaseURL,
		client:   http.DefaultClient,
		limiter:  limiter,
		logger:   shared.WithLogger(logger, "service", "spotify"),
		tries:    tries,
		maxPages: cfg.Export.MaxPages,
		sleep:    sleepContext,
	}
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Authenticate installs the access token for all subsequent requests.
// Implicit grant tokens cannot be refreshed; a 401 later means the hour is up
// and the user has to authorize again.
func (s *SpotifyService) Authenticate(token string) error {
	if err := ValidateToken(token); err != nil {
		return err
	}
	s.token = &oauth2.Token{AccessToken: token, TokenType: "Bearer"}
	return nil
}

// Token returns the installed access token, or "" before authentication.
func (s *SpotifyService) Token() string {
	if s.token == nil {
		return ""
	}
	return s.token.AccessToken
}

// SetClient overrides the HTTP client, primarily for tests.
func (s *SpotifyService) SetClient(client *http.Client) {
	s.client = client
}

// SetBaseURL points the client at a different API root, primarily for tests.
func (s *SpotifyService) SetBaseURL(base string) {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	s.base = base
}

// AuthURL returns the authorization URL for the implicit grant flow. The
// oauth2 package assumes the code flow, so the response type is overridden.
func (s *SpotifyService) AuthURL(state string, scopes []string) string {
	cfg := *s.config
	cfg.Scopes = scopes
	return cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("response_type", "token"))
}

// requestURL resolves a relative path against the API base and attaches
// params. Continuation URLs from the API arrive fully qualified and may
// already carry a query string, so params append with '&' in that case.
func (s *SpotifyService) requestURL(rawURL string, params url.Values) string {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = s.base + rawURL
	}
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		rawURL += sep + params.Encode()
	}
	return rawURL
}

// Get fetches a single resource, retrying transient failures.
//
// Rate limits (429) wait 10s per attempt made, since the server explicitly
// asked the client to slow down. Other HTTP errors, transport failures, and
// malformed JSON wait 2s per attempt. A 401 never retries: the token is dead
// and no backoff will revive it.
func (s *SpotifyService) Get(ctx context.Context, rawURL string, params url.Values) (models.Item, error) {
	if s.token == nil {
		return nil, fmt.Errorf("%w: no access token installed", shared.ErrAuthFailed)
	}

	target := s.requestURL(rawURL, params)

	var lastErr error
	for attempt := 1; attempt <= s.tries; attempt++ {
		item, err := s.fetch(ctx, target)
		if err == nil {
			return item, nil
		}
		if errors.Is(err, shared.ErrAuthFailed) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		if attempt == s.tries {
			break
		}

		wait := time.Duration(2*attempt) * time.Second
		if errors.Is(err, shared.ErrRateLimited) {
			wait = time.Duration(10*attempt) * time.Second
		}

		s.logger.Warnf("retrying (attempt %d/%d) after %s: %v", attempt, s.tries, wait, err)
		if err := s.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: %d attempts for %s: %v", shared.ErrRetriesExhausted, s.tries, target, lastErr)
}

// fetch performs one authenticated request and classifies the outcome.
func (s *SpotifyService) fetch(ctx context.Context, target string) (models.Item, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %s returned 401", shared.ErrAuthFailed, target)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s returned 429", shared.ErrRateLimited, target)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: %s returned %d", shared.ErrAPIRequest, target, resp.StatusCode)
	}

	var item models.Item
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidJSON, err)
	}

	return item, nil
}

// List walks a paginated resource to completion in next-link order.
//
// Page N+1's URL is only known after fetching page N, so the walk is
// inherently sequential. Continuation URLs already encode their cursor and
// get no extra params. Progress lands in the log at most once per 15 seconds
// to keep multi-thousand-item walks quiet.
func (s *SpotifyService) List(ctx context.Context, rawURL string, params url.Values) ([]models.Item, error) {
	page, err := s.Get(ctx, rawURL, params)
	if err != nil {
		return nil, err
	}

	items := page.Items("items")
	lastLogged := time.Now()
	pages := 1

	for {
		next := page.Str("next")
		if next == "" {
			break
		}
		if s.maxPages > 0 && pages >= s.maxPages {
			s.logger.Warnf("stopping after %d pages of %s; %d of %d items loaded", pages, rawURL, len(items), page.Int("total"))
			break
		}

		if time.Since(lastLogged) >= progressEvery {
			s.logger.Infof("loaded %d/%d items", len(items), page.Int("total"))
			lastLogged = time.Now()
		}

		if page, err = s.Get(ctx, next, nil); err != nil {
			return nil, err
		}
		items = append(items, page.Items("items")...)
		pages++
	}

	return items, nil
}

// CurrentUser fetches the profile of the account that owns the token.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*models.UserProfile, error) {
	item, err := s.Get(ctx, "me", nil)
	if err != nil {
		return nil, err
	}
	return &models.UserProfile{ID: item.Str("id"), DisplayName: item.Str("display_name")}, nil
}

// Playlists lists the playlists visible on the given account's profile.
func (s *SpotifyService) Playlists(ctx context.Context, userID string) ([]models.Item, error) {
	path := fmt.Sprintf("users/%s/playlists", url.PathEscape(userID))
	return s.List(ctx, path, url.Values{"limit": {"100"}})
}

// PlaylistTracks walks a playlist's track pages via its tracks href.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, href string) ([]models.Item, error) {
	return s.List(ctx, href, url.Values{"limit": {"100"}})
}

// LikedTracks lists every track saved to the user's library.
func (s *SpotifyService) LikedTracks(ctx context.Context) ([]models.Item, error) {
	return s.List(ctx, "me/tracks", url.Values{"limit": {"50"}})
}

// LikedAlbums lists every album saved to the user's library.
func (s *SpotifyService) LikedAlbums(ctx context.Context) ([]models.Item, error) {
	return s.List(ctx, "me/albums", url.Values{"limit": {"50"}})
}

// TopArtists lists the user's most listened artists for a time range.
func (s *SpotifyService) TopArtists(ctx context.Context, timeRange string, limit int) ([]models.Item, error) {
	return s.topItems(ctx, "artists", timeRange, limit)
}

// TopTracks lists the user's most listened tracks for a time range.
func (s *SpotifyService) TopTracks(ctx context.Context, timeRange string, limit int) ([]models.Item, error) {
	return s.topItems(ctx, "tracks", timeRange, limit)
}

func (s *SpotifyService) topItems(ctx context.Context, itemType, timeRange string, limit int) ([]models.Item, error) {
	params := url.Values{
		"time_range": {timeRange},
		"limit":      {strconv.Itoa(limit)},
	}
	return s.List(ctx, "me/top/"+itemType, params)
}

// sleepContext sleeps for d unless ctx ends first.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
