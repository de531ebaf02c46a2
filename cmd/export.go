package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/gnx/internal/dataset"
	"github.com/desertthunder/gnx/internal/formatter"
	"github.com/desertthunder/gnx/internal/services"
	"github.com/desertthunder/gnx/internal/shared"
	"github.com/desertthunder/gnx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Export writes a whole sheet, in PageID order, to a file. With --all every sheet is exported.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("all") {
		if cmd.String("sheet") != "" || cmd.String("output") != "" {
			return fmt.Errorf("%w: --all cannot be combined with --sheet or --output", shared.ErrInvalidArgument)
		}
		return r.exportAll(ctx, cmd, store)
	}

	sheet, err := resolveSheet(ctx, store, cmd.String("sheet"))
	if err != nil {
		return err
	}

	d, err := dataset.Load(ctx, store, sheet)
	if err != nil {
		return err
	}

	format := cmd.String("format")
	path, err := formatter.WriteExport(d, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("exported sheet", "sheet", sheet, "format", format, "rows", d.Len(), "path", path)
	return r.writePlain("✓ Exported %d rows from %s to %s\n", d.Len(), sheet, path)
}

func (r *Runner) exportAll(ctx context.Context, cmd *cli.Command, store services.Service) error {
	sheets, err := dataset.SheetNames(ctx, store)
	if err != nil {
		return err
	}

	engine := tasks.NewEngine(store, r.logger)
	progress := make(chan tasks.ProgressUpdate, len(sheets)*2+1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := engine.BulkExport(ctx, progress, sheets, tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("dir"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  float64(r.config.Spreadsheet.RequestsPerMinute) / 60,
	})
	close(progress)
	wg.Wait()
	if err != nil {
		return err
	}

	r.writePlainHeader("Export Summary")
	r.writePlain("Sheets:     %d\n", result.TotalSheets)
	r.writePlain("Successful: %d\n", result.SuccessfulExports)
	r.writePlain("Failed:     %d\n", result.FailedExports)
	r.writePlain("Directory:  %s\n", result.OutputDirectory)
	return r.writePlain("Manifest:   %s\n", result.ManifestPath)
}
