// API service for making raw HTTP requests against the Spotify Web API
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/spx/internal/shared"
)

// APIService issues raw authenticated requests for the api debug command.
// Unlike [SpotifyService] it performs no retries and no pagination; the
// point is to see exactly what one request returns.
type APIService struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewAPIService creates a raw API client bound to the given access token.
func NewAPIService(token string, client *http.Client) *APIService {
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    spotifyBaseURL,
		token:      token,
		httpClient: client,
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Get performs a single GET request to the specified path and returns the
// raw response. The path may carry its own query string.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	fullURL := a.baseURL + strings.TrimPrefix(path, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// URL returns the absolute URL Get would request for path.
func (a *APIService) URL(path string) string {
	return a.baseURL + strings.TrimPrefix(path, "/")
}
