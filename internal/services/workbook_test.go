package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/desertthunder/gnx/internal/models"
	"github.com/desertthunder/gnx/internal/shared"
	"github.com/xuri/excelize/v2"
)

// newTestWorkbook builds a two sheet notebook in memory.
func newTestWorkbook(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })

	if err := f.SetSheetName("Sheet1", "2024-01"); err != nil {
		t.Fatalf("failed to rename sheet: %v", err)
	}
	if _, err := f.NewSheet("2024-02"); err != nil {
		t.Fatalf("failed to add sheet: %v", err)
	}

	rows := [][]any{
		{"PageID", "DateTime", "Story", "Video URL"},
		{3, "2024-01-03", "third", "https://v/3"},
		{1, "2024-01-01", "first", "https://v/1"},
		{42, "2024-01-42", "answer", "https://v/42"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("2024-01", cell, &row); err != nil {
			t.Fatalf("failed to write row %d: %v", i+1, err)
		}
	}
	return f
}

func TestWorkbookService(t *testing.T) {
	ctx := context.Background()

	t.Run("Name", func(t *testing.T) {
		if svc := NewWorkbookService(excelize.NewFile(), ""); svc.Name() != "Workbook" {
			t.Errorf("expected name to be 'Workbook', got %s", svc.Name())
		}
	})

	t.Run("ListSheetNames", func(t *testing.T) {
		svc := NewWorkbookService(newTestWorkbook(t), "")
		names, err := svc.ListSheetNames(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(names) != 2 || names[0] != "2024-01" || names[1] != "2024-02" {
			t.Errorf("unexpected names %v", names)
		}
	})

	t.Run("FetchRows", func(t *testing.T) {
		svc := NewWorkbookService(newTestWorkbook(t), "")
		table, err := svc.FetchRows(ctx, "2024-01")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(table.Rows) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(table.Rows))
		}
		if got := table.Rows[2][models.ColumnPageID]; got != "42" {
			t.Errorf("expected numeric PageID to read back as 42, got %q", got)
		}

		empty, err := svc.FetchRows(ctx, "2024-02")
		if err != nil {
			t.Fatalf("expected no error for empty sheet, got %v", err)
		}
		if len(empty.Rows) != 0 {
			t.Errorf("expected no rows, got %d", len(empty.Rows))
		}
	})

	t.Run("unknown sheet", func(t *testing.T) {
		svc := NewWorkbookService(newTestWorkbook(t), "")
		if _, err := svc.FetchRows(ctx, "1999-12"); !errors.Is(err, shared.ErrSheetNotFound) {
			t.Errorf("expected ErrSheetNotFound, got %v", err)
		}
		if err := svc.WriteCell(ctx, "1999-12", 2, 3, "x"); !errors.Is(err, shared.ErrSheetNotFound) {
			t.Errorf("expected ErrSheetNotFound, got %v", err)
		}
	})

	t.Run("LocateRow", func(t *testing.T) {
		svc := NewWorkbookService(newTestWorkbook(t), "")
		row, err := svc.LocateRow(ctx, "2024-01", 1)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if row != 3 {
			t.Errorf("expected row 3, got %d", row)
		}

		if _, err := svc.LocateRow(ctx, "2024-01", 2); !errors.Is(err, shared.ErrRowNotFound) {
			t.Errorf("expected ErrRowNotFound, got %v", err)
		}
	})

	t.Run("WriteCell saves to disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notebook.xlsx")
		f := newTestWorkbook(t)
		if err := f.SaveAs(path); err != nil {
			t.Fatalf("failed to save fixture: %v", err)
		}

		svc, err := OpenWorkbook(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer svc.Close()

		if err := svc.WriteCell(ctx, "2024-01", 4, 3, "=not a formula"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		reopened, err := OpenWorkbook(path)
		if err != nil {
			t.Fatalf("failed to reopen: %v", err)
		}
		defer reopened.Close()

		table, err := reopened.FetchRows(ctx, "2024-01")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := table.Rows[2].Story(); got != "=not a formula" {
			t.Errorf("expected story to be written verbatim, got %q", got)
		}
		if got := table.Rows[1].Story(); got != "first" {
			t.Errorf("expected neighbouring row untouched, got %q", got)
		}
	})

	t.Run("OpenWorkbook missing file", func(t *testing.T) {
		_, err := OpenWorkbook(filepath.Join(t.TempDir(), "missing.xlsx"))
		if !errors.Is(err, shared.ErrStore) {
			t.Errorf("expected ErrStore, got %v", err)
		}
	})
}

func TestLocateRow(t *testing.T) {
	values := [][]string{
		{"Story", "PageID"},
		{"7", "1"},
		{"x", " 7 "},
	}

	tests := []struct {
		name    string
		values  [][]string
		id      int
		want    int
		wantErr error
	}{
		{name: "matches PageID column only", values: values, id: 7, want: 3},
		{name: "not found", values: values, id: 9, wantErr: shared.ErrRowNotFound},
		{name: "empty sheet", values: nil, id: 1, wantErr: shared.ErrRowNotFound},
		{name: "no PageID header", values: [][]string{{"Story"}, {"1"}}, id: 1, wantErr: shared.ErrValidation},
		{name: "short rows are skipped", values: [][]string{{"Story", "PageID"}, {"only"}, {"y", "5"}}, id: 5, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := locateRow("s", tt.values, tt.id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("locateRow() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFromConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("workbook backend", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notebook.xlsx")
		if err := newTestWorkbook(t).SaveAs(path); err != nil {
			t.Fatalf("failed to save fixture: %v", err)
		}

		config := shared.DefaultConfig()
		config.Store.Backend = shared.BackendWorkbook
		config.Store.WorkbookPath = path

		svc, err := FromConfig(ctx, config)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if svc.Name() != "Workbook" {
			t.Errorf("expected workbook store, got %s", svc.Name())
		}
	})

	t.Run("sheets backend without credentials", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Spreadsheet.ID = "book"

		if _, err := FromConfig(ctx, config); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("sheets backend with token", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Spreadsheet.ID = "book"
		config.Credentials.Google.RefreshToken = "r"

		svc, err := FromConfig(ctx, config)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if svc.Name() != "Google Sheets" {
			t.Errorf("expected sheets store, got %s", svc.Name())
		}
	})
}
