package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
)

// ResolveTracks replaces each playlist's track stub with its full track list,
// walking the paginated tracks href under a fixed-size worker pool.
//
// Playlists keep their input order: workers take indices off a shared queue
// and each writes only its own playlist, so completion order never reorders
// the sequence. A failed resolution is logged and leaves that playlist in
// stub form without aborting siblings. Authentication failures are the
// exception: the batch still drains (every remaining fetch fails fast on the
// dead token), and the first one is returned once the pool settles.
//
// Returns the number of playlists left unresolved.
func (e *ExportEngine) ResolveTracks(ctx context.Context, playlists []models.Item, progress chan<- ProgressUpdate) (int, error) {
	if len(playlists) == 0 {
		return 0, nil
	}

	workers := e.workers
	if workers > len(playlists) {
		workers = len(playlists)
	}

	jobs := make(chan int, len(playlists))
	for i := range playlists {
		jobs <- i
	}
	close(jobs)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
		failed    int
		authErr   error
	)

	total := len(playlists)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				playlist := playlists[i]
				name := playlist.Str("name")
				err := e.resolveOne(ctx, playlist)

				mu.Lock()
				completed++
				step := completed
				if err != nil {
					failed++
					if authErr == nil && errors.Is(err, shared.ErrAuthFailed) {
						authErr = err
					}
				}
				mu.Unlock()

				if err != nil {
					e.logger.Warnf("failed to load playlist %q, keeping stub: %v", name, err)
					e.sendProgress(progress, resolveFailedUpdate(step, total, name, err))
				} else {
					e.sendProgress(progress, resolvedUpdate(step, total, name))
				}
			}
		}()
	}

	wg.Wait()

	if authErr != nil {
		return failed, authErr
	}
	return failed, nil
}

// resolveOne swaps a playlist's track paging stub for the full walk.
func (e *ExportEngine) resolveOne(ctx context.Context, playlist models.Item) error {
	stub := playlist.Map("tracks")
	href := stub.Str("href")
	if href == "" {
		return fmt.Errorf("%w: playlist %q has no tracks href", shared.ErrTrackResolution, playlist.Str("name"))
	}

	e.logger.Infof("loading playlist %q (%d songs)", playlist.Str("name"), stub.Int("total"))

	items, err := e.service.PlaylistTracks(ctx, href)
	if err != nil {
		if errors.Is(err, shared.ErrAuthFailed) {
			return err
		}
		return fmt.Errorf("%w: %v", shared.ErrTrackResolution, err)
	}

	playlist["tracks"] = items
	return nil
}
