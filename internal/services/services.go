// package services defines interface Service for reading and writing spreadsheet-backed notebooks
//
// Google Sheets, local xlsx workbooks
package services

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/desertthunder/gnx/internal/models"
	"github.com/desertthunder/gnx/internal/shared"
)

// Service defines the interface for sheet stores the notebook reads rows from and writes stories to.
type Service interface {
	// ListSheetNames returns sheet names in workbook order.
	ListSheetNames(ctx context.Context) ([]string, error)

	// FetchRows returns every row of the sheet keyed by the header row.
	FetchRows(ctx context.Context, sheet string) (*models.Table, error)

	// LocateRow returns the 1-based sheet row whose PageID equals id.
	// Returns [shared.ErrRowNotFound] when no row matches.
	LocateRow(ctx context.Context, sheet string, id int) (int, error)

	// WriteCell overwrites the cell at the 1-based row and column with value.
	WriteCell(ctx context.Context, sheet string, row, col int, value string) error

	// Name returns the name of the store (e.g., "Google Sheets", "Workbook")
	Name() string
}

// FromConfig builds the [Service] selected by the store backend in config.
func FromConfig(ctx context.Context, config *shared.Config) (Service, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Store.Backend {
	case shared.BackendWorkbook:
		return OpenWorkbook(config.Store.WorkbookPath)
	default:
		svc := NewSheetsService(config.Spreadsheet.ID, config.Spreadsheet.Title,
			WithRateLimit(config.Spreadsheet.RequestsPerMinute))
		creds, err := GoogleCredentials(config.Credentials.Google)
		if err != nil {
			return nil, err
		}
		if err := svc.Authenticate(ctx, creds); err != nil {
			return nil, err
		}
		return svc, nil
	}
}

// GoogleCredentials flattens the configured Google credentials into the map accepted by
// [SheetsService.Authenticate].
func GoogleCredentials(g shared.GoogleConfig) (map[string]string, error) {
	creds := map[string]string{
		"client_id":     g.ClientID,
		"client_secret": g.ClientSecret,
		"access_token":  g.AccessToken,
		"refresh_token": g.RefreshToken,
	}
	if g.ServiceAccountFile != "" {
		data, err := os.ReadFile(g.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read service account file: %v", shared.ErrMissingCredentials, err)
		}
		creds["service_account_json"] = string(data)
	}
	return creds, nil
}

// locateRow finds the sheet row whose PageID cell parses to id.
//
// values[0] is the header and sits on sheet row 1. Only the PageID column is searched.
func locateRow(sheet string, values [][]string, id int) (int, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("%w: PageID %d in sheet %q", shared.ErrRowNotFound, id, sheet)
	}

	col := slices.Index(values[0], models.ColumnPageID)
	if col < 0 {
		return 0, fmt.Errorf("%w: sheet %q has no %s column", shared.ErrValidation, sheet, models.ColumnPageID)
	}

	for i, raw := range values[1:] {
		if col >= len(raw) {
			continue
		}
		if v, err := strconv.Atoi(strings.TrimSpace(raw[col])); err == nil && v == id {
			return i + 2, nil
		}
	}
	return 0, fmt.Errorf("%w: PageID %d in sheet %q", shared.ErrRowNotFound, id, sheet)
}

func checkCell(row, col int) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("%w: cell (%d, %d) is outside the sheet", shared.ErrInvalidArgument, row, col)
	}
	return nil
}
