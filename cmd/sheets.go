package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/gnx/internal/dataset"
	"github.com/desertthunder/gnx/internal/formatter"
	"github.com/desertthunder/gnx/internal/services"
	"github.com/desertthunder/gnx/internal/shared"
	"github.com/urfave/cli/v3"
)

// resolveSheet returns name, or the newest sheet when name is empty.
func resolveSheet(ctx context.Context, store services.Service, name string) (string, error) {
	if name != "" {
		return name, nil
	}
	names, err := dataset.SheetNames(ctx, store)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", fmt.Errorf("%w: the spreadsheet has no sheets", shared.ErrNoSheet)
	}
	return names[0], nil
}

// SheetsList prints sheet names newest first.
func (r *Runner) SheetsList(ctx context.Context, cmd *cli.Command) error {
	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	names, err := dataset.SheetNames(ctx, store)
	if err != nil {
		return err
	}
	r.logger.Info("listed sheets", "store", store.Name(), "count", len(names))

	if cmd.Bool("json") {
		return r.writeJSON(names, true)
	}
	for _, name := range names {
		r.writePlain("%s\n", name)
	}
	return nil
}

// SheetsShow prints one row selected by --id or --position.
func (r *Runner) SheetsShow(ctx context.Context, cmd *cli.Command) error {
	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	sheet, err := resolveSheet(ctx, store, cmd.String("sheet"))
	if err != nil {
		return err
	}

	d, err := dataset.Load(ctx, store, sheet)
	if err != nil {
		return err
	}

	position := int(cmd.Int("position"))
	if cmd.IsSet("id") {
		id := int(cmd.Int("id"))
		if position = d.Position(id); position == 0 {
			return fmt.Errorf("%w: PageID %d in sheet %q", shared.ErrRowNotFound, id, sheet)
		}
	}

	view, err := formatter.NewRowView(d, position)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(view, true)
	}
	return r.writePlain("%s", view.String())
}
