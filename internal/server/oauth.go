package server

import (
	"fmt"
	"net/http"
	"regexp"
	"sync"

	"github.com/charmbracelet/log"
)

// tokenPattern extracts the access token from the bridged query string.
var tokenPattern = regexp.MustCompile(`access_token=([^&]*)`)

// CaptureResult contains the outcome of an implicit grant authorization flow.
type CaptureResult struct {
	Token string
	err   error
}

func (c *CaptureResult) Error() error {
	return c.err
}

// CaptureHandler completes the implicit grant flow for a CLI run.
// Implements the Handler interface for registration with a Router.
//
// The provider delivers the access token in the URL fragment, which the
// browser never sends to any server. /redirect returns a page whose only job
// is to have client-side script re-request /token with the fragment converted
// to a query string; /token extracts the token and finishes the flow.
//
// The handler is single-use: malformed or repeated hits keep it listening,
// and once a token is captured every further request gets a 404.
type CaptureHandler struct {
	logger     *log.Logger
	resultChan chan CaptureResult
	once       sync.Once
	captured   bool
	mu         sync.Mutex
}

// NewCaptureHandler creates a capture handler that reports through logger.
func NewCaptureHandler(logger *log.Logger) *CaptureHandler {
	return &CaptureHandler{
		logger:     logger,
		resultChan: make(chan CaptureResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CaptureHandler) Routes() []string {
	return []string{"/redirect", "/token"}
}

// ServeHTTP dispatches the two capture endpoints.
func (h *CaptureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.mu.Lock()
	done := h.captured
	h.mu.Unlock()
	if done {
		http.NotFound(w, r)
		return
	}

	switch r.URL.Path {
	case "/redirect":
		h.serveBridge(w)
	case "/token":
		h.serveToken(w, r)
	default:
		http.NotFound(w, r)
	}
}

// serveBridge answers the provider redirect. The token rides in the URL
// fragment, so the page re-requests /token with the fragment as the query.
func (h *CaptureHandler) serveBridge(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `<script>location.replace("token?" + location.hash.slice(1));</script>`)
}

// serveToken extracts the bridged token and completes the flow.
func (h *CaptureHandler) serveToken(w http.ResponseWriter, r *http.Request) {
	match := tokenPattern.FindStringSubmatch(r.URL.RawQuery)
	if match == nil || match[1] == "" {
		h.logger.Warnf("malformed token callback, still listening: %q", r.URL.RawQuery)
		http.Error(w, "Missing access_token", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	if h.captured {
		h.mu.Unlock()
		http.NotFound(w, r)
		return
	}
	h.captured = true
	h.mu.Unlock()

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `<script>close()</script>Thanks! You may now close this window.`)

	h.logger.Info("received access token from Spotify")
	h.Send(CaptureResult{Token: match[1]})
}

// Send sends the capture result through the channel (only once).
func (h *CaptureHandler) Send(result CaptureResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *CaptureHandler) Result() <-chan CaptureResult {
	return h.resultChan
}
