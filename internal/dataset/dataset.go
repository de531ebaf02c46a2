// package dataset loads one sheet of the notebook into rows ordered by PageID
package dataset

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/desertthunder/gnx/internal/models"
	"github.com/desertthunder/gnx/internal/services"
	"github.com/desertthunder/gnx/internal/shared"
)

// Dataset is a loaded sheet. IDs are ascending and position p (1-based) displays IDs[p-1].
type Dataset struct {
	Sheet  string
	Header []string
	IDs    []int
	rows   map[int]models.Row
}

// Load fetches sheet from store and indexes its rows by PageID.
//
// Blank rows are skipped. A PageID that does not parse as an integer, or appears twice,
// fails the whole load with [shared.ErrFormat].
func Load(ctx context.Context, store services.Service, sheet string) (*Dataset, error) {
	table, err := store.FetchRows(ctx, sheet)
	if err != nil {
		if !errors.Is(err, shared.ErrStore) && !errors.Is(err, shared.ErrSheetNotFound) {
			err = fmt.Errorf("%w: %v", shared.ErrStore, err)
		}
		return nil, err
	}
	return FromTable(table)
}

// FromTable indexes an already fetched [models.Table].
func FromTable(table *models.Table) (*Dataset, error) {
	d := &Dataset{
		Sheet:  table.Sheet,
		Header: slices.Clone(table.Header),
		rows:   make(map[int]models.Row, len(table.Rows)),
	}

	rows := slices.DeleteFunc(slices.Clone(table.Rows), func(r models.Row) bool {
		return shared.IsBlank(slices.Collect(maps.Values(r)))
	})
	if len(rows) == 0 {
		return d, nil
	}
	if table.ColumnIndex(models.ColumnPageID) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no %s column", shared.ErrValidation, table.Sheet, models.ColumnPageID)
	}

	for _, row := range rows {
		raw := strings.TrimSpace(row[models.ColumnPageID])
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q in sheet %q", shared.ErrFormat, raw, table.Sheet)
		}
		if _, dup := d.rows[id]; dup {
			return nil, fmt.Errorf("%w: duplicate PageID %d in sheet %q", shared.ErrFormat, id, table.Sheet)
		}
		d.rows[id] = row
		d.IDs = append(d.IDs, id)
	}
	slices.Sort(d.IDs)
	return d, nil
}

// Len returns the number of addressable rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.IDs)
}

// ID returns the PageID displayed at the 1-based position.
func (d *Dataset) ID(position int) (int, bool) {
	if position < 1 || position > d.Len() {
		return 0, false
	}
	return d.IDs[position-1], true
}

// Row returns the row with PageID id.
func (d *Dataset) Row(id int) (models.Row, bool) {
	if d == nil {
		return nil, false
	}
	r, ok := d.rows[id]
	return r, ok
}

// At returns the PageID and row displayed at the 1-based position.
func (d *Dataset) At(position int) (int, models.Row, bool) {
	id, ok := d.ID(position)
	if !ok {
		return 0, nil, false
	}
	return id, d.rows[id], true
}

// Position returns the 1-based position of id, or 0 when the sheet has no such row.
func (d *Dataset) Position(id int) int {
	if d == nil {
		return 0
	}
	if i, ok := slices.BinarySearch(d.IDs, id); ok {
		return i + 1
	}
	return 0
}

// Column returns the 1-based sheet column of name, or 0 when absent.
func (d *Dataset) Column(name string) int {
	return slices.Index(d.Header, name) + 1
}

// SetStory replaces the in-memory Story of the row with PageID id.
func (d *Dataset) SetStory(id int, story string) {
	if r, ok := d.rows[id]; ok {
		r[models.ColumnStory] = story
	}
}

// Validate reports the required fields row is missing.
func Validate(row models.Row) error {
	if missing := row.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w (missing %s)", shared.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// SheetNames lists the store's sheets, newest name first.
func SheetNames(ctx context.Context, store services.Service) ([]string, error) {
	names, err := store.ListSheetNames(ctx)
	if err != nil {
		if !errors.Is(err, shared.ErrStore) {
			err = fmt.Errorf("%w: %v", shared.ErrStore, err)
		}
		return nil, err
	}
	names = slices.Clone(names)
	slices.Sort(names)
	slices.Reverse(names)
	return names, nil
}
