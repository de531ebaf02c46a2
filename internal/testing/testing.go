// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/gnx/internal/models"
	"github.com/desertthunder/gnx/internal/shared"
)

// Write records one [MockStore.WriteCell] call.
type Write struct {
	Sheet string
	Row   int
	Col   int
	Value string
}

// MockStore is an in-memory test double for [services.Service].
//
// Sheets keep their raw cell grid, header first, so writes land where a real store would put them.
type MockStore struct {
	mu     sync.Mutex
	names  []string
	values map[string][][]string

	Fetches []string
	Locates []int
	Writes  []Write

	ListErr   error
	FetchErr  error
	LocateErr error
	WriteErr  error
}

func NewMockStore() *MockStore {
	return &MockStore{values: map[string][][]string{}}
}

// AddSheet appends a sheet with the given cell grid.
func (m *MockStore) AddSheet(name string, values [][]string) *MockStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[name]; !ok {
		m.names = append(m.names, name)
	}
	m.values[name] = cloneGrid(values)
	return m
}

// Cell returns the value at the 1-based row and column, or "" when the cell is empty.
func (m *MockStore) Cell(sheet string, row, col int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	grid := m.values[sheet]
	if row < 1 || row > len(grid) || col < 1 || col > len(grid[row-1]) {
		return ""
	}
	return grid[row-1][col-1]
}

func (m *MockStore) Name() string { return "mock" }

func (m *MockStore) ListSheetNames(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return slices.Clone(m.names), nil
}

func (m *MockStore) FetchRows(ctx context.Context, sheet string) (*models.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fetches = append(m.Fetches, sheet)
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	grid, ok := m.values[sheet]
	if !ok {
		return nil, fmt.Errorf("%w: %q", shared.ErrSheetNotFound, sheet)
	}
	return models.NewTable(sheet, cloneGrid(grid)), nil
}

func (m *MockStore) LocateRow(ctx context.Context, sheet string, id int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Locates = append(m.Locates, id)
	if m.LocateErr != nil {
		return 0, m.LocateErr
	}
	grid, ok := m.values[sheet]
	if !ok {
		return 0, fmt.Errorf("%w: %q", shared.ErrSheetNotFound, sheet)
	}
	if len(grid) == 0 {
		return 0, shared.ErrRowNotFound
	}
	col := slices.Index(grid[0], models.ColumnPageID)
	if col < 0 {
		return 0, shared.ErrValidation
	}
	for i, row := range grid[1:] {
		if col < len(row) {
			if v, err := strconv.Atoi(strings.TrimSpace(row[col])); err == nil && v == id {
				return i + 2, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: PageID %d", shared.ErrRowNotFound, id)
}

func (m *MockStore) WriteCell(ctx context.Context, sheet string, row, col int, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Writes = append(m.Writes, Write{Sheet: sheet, Row: row, Col: col, Value: value})
	if m.WriteErr != nil {
		return m.WriteErr
	}
	grid, ok := m.values[sheet]
	if !ok {
		return fmt.Errorf("%w: %q", shared.ErrSheetNotFound, sheet)
	}
	for len(grid) < row {
		grid = append(grid, nil)
	}
	for len(grid[row-1]) < col {
		grid[row-1] = append(grid[row-1], "")
	}
	grid[row-1][col-1] = value
	m.values[sheet] = grid
	return nil
}

func cloneGrid(values [][]string) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = slices.Clone(row)
	}
	return out
}

// MockJournal is an in-memory commit journal.
type MockJournal struct {
	mu      sync.Mutex
	Commits []*models.Commit
	Err     error
}

func (j *MockJournal) Create(c *models.Commit) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Err != nil {
		return j.Err
	}
	c.SetID(shared.GenerateID())
	c.SetSequence(len(j.Commits) + 1)
	j.Commits = append(j.Commits, c)
	return nil
}

func (j *MockJournal) Update(c *models.Commit) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.Err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
