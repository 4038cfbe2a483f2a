package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spx/internal/formatter"
	"github.com/desertthunder/spx/internal/services"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/desertthunder/spx/internal/tasks"
	"github.com/desertthunder/spx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive section picker and runs the export from there.
//
// Authorization happens before the program starts; the token has to cover
// every section because the pick comes later.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd.String("config"))

	format := cmd.String("format")
	if format != formatter.FormatJSON && format != formatter.FormatText {
		return fmt.Errorf("%w: format must be json or txt", shared.ErrInvalidFlag)
	}

	file, format := formatter.ResolveOutput(cmd.StringArg("file"), format, r.logger)

	token := cmd.String("token")
	if token == "" {
		allSections := []services.Section{services.SectionLiked, services.SectionPlaylists, services.SectionTop}
		var err error
		if token, err = r.doCapture(ctx, services.ScopesFor(allSections)); err != nil {
			return err
		}
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/spx-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.logger = fileLogger

	svc, err := r.libraryService(token)
	if err != nil {
		return err
	}

	engine := tasks.NewExportEngine(svc, r.logger, r.config.Export.Workers)

	opts := tasks.ExportOpts{
		TopType:   tasks.TopBoth,
		TimeRange: "medium_term",
		TopLimit:  50,
	}

	write := func(result *tasks.ExportResult, sections []services.Section) (string, error) {
		if err := formatter.WriteExport(result.Library, file, format, opts.TimeRange); err != nil {
			return "", err
		}
		r.recordExport(result, file, format, sections)
		return file, nil
	}

	model := ui.NewModel(ctx, engine, opts, file, format, write)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
