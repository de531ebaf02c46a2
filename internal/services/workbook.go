// Excel workbook implementation of [Service]
package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/gnx/internal/models"
	"github.com/desertthunder/gnx/internal/shared"
	"github.com/xuri/excelize/v2"
)

// WorkbookService implements the [Service] interface for a local .xlsx workbook.
//
// Writes are saved to path immediately. A service without a path keeps changes in memory.
type WorkbookService struct {
	path string
	file *excelize.File
	mu   sync.Mutex
}

// OpenWorkbook opens the workbook at path.
func OpenWorkbook(path string) (*WorkbookService, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook %s: %v", shared.ErrStore, path, err)
	}
	return &WorkbookService{path: path, file: f}, nil
}

// NewWorkbookService wraps an open workbook. An empty path keeps writes in memory.
func NewWorkbookService(f *excelize.File, path string) *WorkbookService {
	return &WorkbookService{path: path, file: f}
}

func (w *WorkbookService) Name() string {
	return "Workbook"
}

// Close releases the workbook's temporary files.
func (w *WorkbookService) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// ListSheetNames returns worksheet names in tab order.
func (w *WorkbookService) ListSheetNames(ctx context.Context) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.GetSheetList(), nil
}

// FetchRows reads every row of the sheet.
func (w *WorkbookService) FetchRows(ctx context.Context, sheet string) (*models.Table, error) {
	values, err := w.rows(sheet)
	if err != nil {
		return nil, err
	}
	return models.NewTable(sheet, values), nil
}

// LocateRow searches the PageID column of the sheet.
func (w *WorkbookService) LocateRow(ctx context.Context, sheet string, id int) (int, error) {
	values, err := w.rows(sheet)
	if err != nil {
		return 0, err
	}
	return locateRow(sheet, values, id)
}

// WriteCell sets one cell as a string and saves the workbook.
func (w *WorkbookService) WriteCell(ctx context.Context, sheet string, row, col int, value string) error {
	if err := checkCell(row, col); err != nil {
		return err
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.exists(sheet); err != nil {
		return err
	}
	if err := w.file.SetCellStr(sheet, cell, value); err != nil {
		return fmt.Errorf("%w: failed to set %s!%s: %v", shared.ErrStore, sheet, cell, err)
	}
	if w.path == "" {
		return nil
	}
	if err := w.file.SaveAs(w.path); err != nil {
		return fmt.Errorf("%w: failed to save workbook: %v", shared.ErrStore, err)
	}
	return nil
}

func (w *WorkbookService) rows(sheet string) ([][]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.exists(sheet); err != nil {
		return nil, err
	}
	values, err := w.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", shared.ErrStore, sheet, err)
	}
	return values, nil
}

func (w *WorkbookService) exists(sheet string) error {
	if idx, err := w.file.GetSheetIndex(sheet); err != nil || idx < 0 {
		return fmt.Errorf("%w: %q", shared.ErrSheetNotFound, sheet)
	}
	return nil
}
