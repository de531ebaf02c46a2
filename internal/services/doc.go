// Package services defines the [Service] interface for sheet stores and implements it for Google Sheets and
// local Excel workbooks.
//
// # Service Interface
//
// A sheet store holds named sheets of rows. The notebook only needs four operations: list sheet names, fetch
// every row of a sheet, locate the row holding a PageID, and overwrite a single cell.
//
// # Google Sheets Implementation
//
// [SheetsService] talks to the Sheets REST API (v4) with an [oauth2] authenticated client. Credentials are
// either a service account key or a stored user token obtained with `gnx auth login`; the [oauth2.Client]
// refreshes expired tokens using the refresh token.
//
// When no spreadsheet id is configured the spreadsheet is resolved by title through the Drive API.
// Requests are paced by a [rate.Limiter] to stay under the per-user quota.
//
// # Workbook Implementation
//
// [WorkbookService] reads and writes a local .xlsx file with excelize. Every cell write is saved to disk
// immediately.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrStore] : HTTP request, decode, or file failure
//   - [shared.ErrSheetNotFound] : sheet name not present in the workbook
//   - [shared.ErrRowNotFound] : no row carries the requested PageID
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//
// Row positions and column positions are 1-based, with the header on row 1.
package services
