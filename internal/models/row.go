package models

import "slices"

// Column names the notebook relies on.
const (
	ColumnPageID   = "PageID"
	ColumnStory    = "Story"
	ColumnVideoURL = "Video URL"
	ColumnDateTime = "DateTime"
)

// RequiredColumns must be present on a row before its detail can be displayed.
var RequiredColumns = []string{ColumnPageID, ColumnStory, ColumnVideoURL}

// Row maps column name to cell value for one spreadsheet row.
type Row map[string]string

// Has reports whether the row exposes column, even if its value is empty.
func (r Row) Has(column string) bool {
	_, ok := r[column]
	return ok
}

// Missing returns the required columns the row does not expose, in [RequiredColumns] order.
func (r Row) Missing() []string {
	var missing []string
	for _, c := range RequiredColumns {
		if !r.Has(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

func (r Row) Story() string    { return r[ColumnStory] }
func (r Row) VideoURL() string { return r[ColumnVideoURL] }
func (r Row) DateTime() string { return r[ColumnDateTime] }

// Clone returns a copy that can be modified without touching r.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is a sheet as fetched from a store: the header in column order and the data rows in sheet order.
type Table struct {
	Sheet  string
	Header []string
	Rows   []Row
}

// ColumnIndex returns the 1-based position of column in the header, or 0 when absent.
func (t *Table) ColumnIndex(column string) int {
	return slices.Index(t.Header, column) + 1
}

// NewTable builds a [Table] from raw cell values where values[0] is the header row.
//
// Short rows are padded with empty strings and cells beyond the header are dropped,
// matching how spreadsheet APIs omit trailing empty cells. When a header name repeats, only
// its first column is read, the same column [Table.ColumnIndex] reports for writes.
func NewTable(sheet string, values [][]string) *Table {
	t := &Table{Sheet: sheet}
	if len(values) == 0 {
		return t
	}

	t.Header = append([]string(nil), values[0]...)
	for _, raw := range values[1:] {
		row := make(Row, len(t.Header))
		for i, col := range t.Header {
			if col == "" || t.ColumnIndex(col) != i+1 {
				continue
			}
			if i < len(raw) {
				row[col] = raw[i]
			} else {
				row[col] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
