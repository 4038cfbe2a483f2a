package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spx/internal/services"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet performs a single authenticated GET against the Spotify Web API and
// prints the response, for poking at endpoints the exporter doesn't cover.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path argument is required (e.g. me/playlists)", shared.ErrMissingArgument)
	}

	token := cmd.String("token")
	if err := services.ValidateToken(token); err != nil {
		return err
	}

	api := services.NewAPIService(token, r.httpClient)

	if cmd.Bool("curl") {
		r.writePlain("%s\n\n", shared.BuildCurlCommand(api.URL(path), token))
	}

	r.logger.Info("GET request", "path", path, "token", shared.RedactToken(token))

	resp, err := api.Get(ctx, path)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, cmd.Bool("pretty"))
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}
