// Google Sheets API implementation of [Service]
//
// Response types based on https://developers.google.com/sheets/api/reference/rest
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/gnx/internal/models"
	"github.com/desertthunder/gnx/internal/shared"
	"github.com/xuri/excelize/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
)

const (
	sheetsBaseURL = "https://sheets.googleapis.com/v4"
	driveBaseURL  = "https://www.googleapis.com/drive/v3"

	spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"
)

// GoogleScopes grants read/write access to spreadsheets and lookup of spreadsheets by title.
var GoogleScopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive.readonly",
}

type sheetProperties struct {
	SheetID int    `json:"sheetId"`
	Title   string `json:"title"`
	Index   int    `json:"index"`
}

// Spreadsheet is the subset of the spreadsheet resource used to list sheets.
type Spreadsheet struct {
	SpreadsheetID string `json:"spreadsheetId"`
	Sheets        []struct {
		Properties sheetProperties `json:"properties"`
	} `json:"sheets"`
}

// ValueRange holds cell values for an A1 range.
type ValueRange struct {
	Range          string     `json:"range"`
	MajorDimension string     `json:"majorDimension"`
	Values         [][]string `json:"values"`
}

// UpdateValuesResponse is returned by a values update.
type UpdateValuesResponse struct {
	SpreadsheetID string `json:"spreadsheetId"`
	UpdatedRange  string `json:"updatedRange"`
	UpdatedCells  int    `json:"updatedCells"`
}

type driveFileList struct {
	Files []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"files"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// SheetsService implements the [Service] interface for the Google Sheets API.
type SheetsService struct {
	spreadsheetID string
	title         string
	baseURL       string
	driveURL      string
	httpClient    *http.Client
	limiter       *rate.Limiter
	mu            sync.Mutex
}

// SheetsOption configures a [SheetsService].
type SheetsOption func(*SheetsService)

// WithBaseURLs points the service at alternative Sheets and Drive endpoints.
func WithBaseURLs(sheets, drive string) SheetsOption {
	return func(s *SheetsService) {
		s.baseURL = strings.TrimSuffix(sheets, "/")
		s.driveURL = strings.TrimSuffix(drive, "/")
	}
}

// WithHTTPClient sets an already authenticated client.
func WithHTTPClient(client *http.Client) SheetsOption {
	return func(s *SheetsService) { s.httpClient = client }
}

// WithRateLimit paces requests to perMinute, with a small burst. Zero or negative disables pacing.
func WithRateLimit(perMinute int) SheetsOption {
	return func(s *SheetsService) {
		if perMinute <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 5)
	}
}

// NewSheetsService creates a service for the spreadsheet with the given id.
//
// When id is empty, the spreadsheet named title is looked up on first use.
func NewSheetsService(id, title string, opts ...SheetsOption) *SheetsService {
	s := &SheetsService{
		spreadsheetID: id,
		title:         title,
		baseURL:       sheetsBaseURL,
		driveURL:      driveBaseURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GoogleOAuthConfig returns the OAuth2 client configuration for the installed-app login flow.
func GoogleOAuthConfig(g shared.GoogleConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		RedirectURL:  g.RedirectURI,
		Scopes:       GoogleScopes,
		Endpoint:     google.Endpoint,
	}
}

// Authenticate builds the authenticated HTTP client.
//
// Expects either "service_account_json", or an "access_token"/"refresh_token" pair together with
// "client_id" and "client_secret" so expired tokens can be refreshed.
func (s *SheetsService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if key := credentials["service_account_json"]; key != "" {
		creds, err := google.CredentialsFromJSON(ctx, []byte(key), GoogleScopes...)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidCredentials, err)
		}
		s.httpClient = oauth2.NewClient(ctx, creds.TokenSource)
		return nil
	}

	access, refresh := credentials["access_token"], credentials["refresh_token"]
	if access == "" && refresh == "" {
		return fmt.Errorf("%w: service account key or stored token required, run `gnx auth login`",
			shared.ErrMissingCredentials)
	}

	config := GoogleOAuthConfig(shared.GoogleConfig{
		ClientID:     credentials["client_id"],
		ClientSecret: credentials["client_secret"],
	})
	// an empty access token is refreshed on the first request
	token := &oauth2.Token{AccessToken: access, RefreshToken: refresh, TokenType: "Bearer"}
	s.httpClient = config.Client(ctx, token)
	return nil
}

func (s *SheetsService) Name() string {
	return "Google Sheets"
}

// SpreadsheetID returns the configured or resolved spreadsheet id.
func (s *SheetsService) SpreadsheetID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.spreadsheetID != "" {
		return s.spreadsheetID, nil
	}
	if s.title == "" {
		return "", fmt.Errorf("%w: spreadsheet id or title is required", shared.ErrInvalidConfig)
	}

	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(s.title, "'", `\'`), spreadsheetMimeType)
	endpoint := s.driveURL + "/files?" + url.Values{"q": {q}, "fields": {"files(id,name)"}}.Encode()

	var files driveFileList
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &files); err != nil {
		return "", err
	}
	if len(files.Files) == 0 {
		return "", fmt.Errorf("%w: no spreadsheet titled %q", shared.ErrStore, s.title)
	}

	s.spreadsheetID = files.Files[0].ID
	return s.spreadsheetID, nil
}

// ListSheetNames returns the sheet titles in tab order.
func (s *SheetsService) ListSheetNames(ctx context.Context) ([]string, error) {
	id, err := s.SpreadsheetID(ctx)
	if err != nil {
		return nil, err
	}

	var doc Spreadsheet
	endpoint := fmt.Sprintf("%s/spreadsheets/%s?fields=%s", s.baseURL, url.PathEscape(id),
		url.QueryEscape("sheets.properties(sheetId,title,index)"))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &doc); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(doc.Sheets))
	for _, sh := range doc.Sheets {
		names = append(names, sh.Properties.Title)
	}
	return names, nil
}

// FetchRows reads every populated cell of the sheet.
func (s *SheetsService) FetchRows(ctx context.Context, sheet string) (*models.Table, error) {
	values, err := s.values(ctx, sheet)
	if err != nil {
		return nil, err
	}
	return models.NewTable(sheet, values), nil
}

// LocateRow searches the PageID column of a fresh read of the sheet.
func (s *SheetsService) LocateRow(ctx context.Context, sheet string, id int) (int, error) {
	values, err := s.values(ctx, sheet)
	if err != nil {
		return 0, err
	}
	return locateRow(sheet, values, id)
}

// WriteCell overwrites one cell. Values are written RAW so a story starting with "=" stays text.
func (s *SheetsService) WriteCell(ctx context.Context, sheet string, row, col int, value string) error {
	if err := checkCell(row, col); err != nil {
		return err
	}
	id, err := s.SpreadsheetID(ctx)
	if err != nil {
		return err
	}

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	a1 := quoteSheet(sheet) + "!" + cell

	body := ValueRange{Range: a1, MajorDimension: "ROWS", Values: [][]string{{value}}}
	endpoint := fmt.Sprintf("%s/spreadsheets/%s/values/%s?valueInputOption=RAW", s.baseURL, url.PathEscape(id),
		url.PathEscape(a1))

	var resp UpdateValuesResponse
	if err := s.doRequest(ctx, http.MethodPut, endpoint, body, &resp); err != nil {
		return err
	}
	if resp.UpdatedCells > 1 {
		return fmt.Errorf("%w: expected one updated cell, got %d", shared.ErrStore, resp.UpdatedCells)
	}
	return nil
}

func (s *SheetsService) values(ctx context.Context, sheet string) ([][]string, error) {
	id, err := s.SpreadsheetID(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/spreadsheets/%s/values/%s?majorDimension=ROWS", s.baseURL, url.PathEscape(id),
		url.PathEscape(quoteSheet(sheet)))

	var vr ValueRange
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &vr); err != nil {
		return nil, err
	}
	return vr.Values, nil
}

// doRequest performs an authenticated request to a Google API endpoint and decodes the JSON response.
func (s *SheetsService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if s.httpClient == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrStore, err)
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %v", shared.ErrStore, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrStore, err)
		}
	}

	return nil
}

// statusError converts a non-2xx response into an error, keeping Google's error message when present.
func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var ae apiError
	if err := json.Unmarshal(data, &ae); err == nil && ae.Error.Message != "" {
		if strings.Contains(ae.Error.Message, "Unable to parse range") {
			return fmt.Errorf("%w: %s", shared.ErrSheetNotFound, ae.Error.Message)
		}
		return fmt.Errorf("%w: status %d: %s", shared.ErrStore, resp.StatusCode, ae.Error.Message)
	}
	return fmt.Errorf("%w: status %d", shared.ErrStore, resp.StatusCode)
}

// quoteSheet quotes a sheet name for use in A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
