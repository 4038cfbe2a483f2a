package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/spx/internal/server"
	"github.com/desertthunder/spx/internal/services"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Auth runs the browser authorization flow and prints the captured token so
// later runs can pass it with --token instead of reauthorizing.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd.String("config"))

	sections, err := services.ParseSections(cmd.String("dump"))
	if err != nil {
		return err
	}

	token, err := r.doCapture(ctx, services.ScopesFor(sections))
	if err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("Access token (valid for about an hour):\n\n%s\n\n", token)
	r.writePlain("Reuse it with: spx export --token <token>\n")

	return nil
}

// doCapture executes the implicit grant flow with a local HTTP server and
// returns the captured access token.
//
// The server must listen on the exact host and port registered as the app's
// redirect URI; the capture handler bridges the URL fragment back to it.
func (r *Runner) doCapture(ctx context.Context, scopes []string) (string, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := services.NewSpotifyService(r.config, r.logger).AuthURL(state, scopes)

	handler := server.NewCaptureHandler(r.logger)
	router := server.NewBasicRouter()
	router.Use(server.RequestLog(r.logger))
	router.Handler(handler)

	serverAddr := r.config.Server.Addr()
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting capture server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	// The listener is released on every exit path, timeout and cancellation
	// included, so a failed run never holds the registered port.
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.CaptureResult

	select {
	case result = <-handler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return "", fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timeout.C:
		return "", fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	if result.Error() != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrCaptureFailed, result.Error())
	}

	if result.Token == "" {
		return "", fmt.Errorf("%w: no token received", shared.ErrCaptureFailed)
	}

	return result.Token, nil
}
