package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/gnx/internal/dataset"
	"github.com/desertthunder/gnx/internal/models"
	"github.com/desertthunder/gnx/internal/services"
	"github.com/desertthunder/gnx/internal/shared"
)

// Journal records commit attempts. [repositories.CommitRepository] satisfies it.
type Journal interface {
	Create(c *models.Commit) error
	Update(c *models.Commit) error
}

// Editor owns the edit buffer of the displayed row and commits it to the store.
type Editor struct {
	store   services.Service
	journal Journal
	logger  *log.Logger

	data   *dataset.Dataset
	id     int
	buffer string
	active bool
}

// NewEditor creates an editor writing to store. journal and logger may be nil.
func NewEditor(store services.Service, journal Journal, logger *log.Logger) *Editor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Editor{store: store, journal: journal, logger: logger}
}

// Begin seeds the buffer with the Story of row id in d.
func (e *Editor) Begin(d *dataset.Dataset, id int) {
	row, ok := d.Row(id)
	if !ok {
		e.Reset()
		return
	}
	e.data, e.id, e.active = d, id, true
	e.buffer = row.Story()
}

// Reset discards the buffer.
func (e *Editor) Reset() {
	e.data, e.id, e.buffer, e.active = nil, 0, "", false
}

// Edit replaces the buffer. Ignored when no row is displayed.
func (e *Editor) Edit(text string) {
	if e.active {
		e.buffer = text
	}
}

func (e *Editor) Active() bool   { return e.active }
func (e *Editor) Buffer() string { return e.buffer }

// Dirty reports whether the buffer differs from the row's Story.
func (e *Editor) Dirty() bool {
	if !e.active {
		return false
	}
	row, _ := e.data.Row(e.id)
	return e.buffer != row.Story()
}

// Commit writes the buffer into the Story cell of the row whose PageID is the displayed id.
//
// The row is located in the store at commit time. On success the in-memory Story takes the
// committed value and the buffer is kept.
func (e *Editor) Commit(ctx context.Context) error {
	if !e.active {
		return shared.ErrNoRow
	}

	sheet := e.data.Sheet
	row, _ := e.data.Row(e.id)
	commit := models.NewCommit(sheet, e.id, row.Story(), e.buffer)
	e.record(commit)

	err := e.write(ctx, commit)
	e.record(commit.Resolve(err))
	if err != nil {
		return err
	}

	e.data.SetStory(e.id, commit.Value)
	e.logger.Info("story committed", "sheet", sheet, "page_id", e.id, "row", commit.Row, "column", commit.Column)
	return nil
}

func (e *Editor) write(ctx context.Context, commit *models.Commit) error {
	col := e.data.Column(models.ColumnStory)
	if col == 0 {
		return fmt.Errorf("%w (missing %s)", shared.ErrValidation, models.ColumnStory)
	}

	row, err := e.store.LocateRow(ctx, commit.Sheet, commit.PageID)
	if err != nil {
		if errors.Is(err, shared.ErrRowNotFound) || errors.Is(err, shared.ErrStore) {
			return err
		}
		return fmt.Errorf("%w: %v", shared.ErrStore, err)
	}
	commit.Located(row, col)

	if err := e.store.WriteCell(ctx, commit.Sheet, row, col, commit.Value); err != nil {
		if errors.Is(err, shared.ErrStore) {
			return err
		}
		return fmt.Errorf("%w: %v", shared.ErrStore, err)
	}
	return nil
}

// record saves c to the journal when one is configured. Journal failures never fail a commit.
func (e *Editor) record(c *models.Commit) {
	if e.journal == nil {
		return
	}

	var err error
	switch {
	case c.ID() != "":
		err = e.journal.Update(c)
	case c.Status == models.CommitPending:
		err = e.journal.Create(c)
	default:
		// the pending entry was never stored
		return
	}
	if err != nil {
		e.logger.Warn("failed to record commit", "sheet", c.Sheet, "page_id", c.PageID, "error", err)
	}
}
