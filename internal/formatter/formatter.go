// package formatter provides functions to export sheet data to various formats (CSV, Markdown, plain text, xlsx)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/gnx/internal/dataset"
	"github.com/desertthunder/gnx/internal/models"
	"github.com/desertthunder/gnx/internal/shared"
	"github.com/xuri/excelize/v2"
)

// Format names accepted by [Export].
const (
	FormatCSV      = "csv"
	FormatMarkdown = "md"
	FormatText     = "txt"
	FormatXLSX     = "xlsx"
)

// Columns is the column order used by every export.
var Columns = []string{models.ColumnPageID, models.ColumnDateTime, models.ColumnStory, models.ColumnVideoURL}

// RowView is one row as shown by `sheets show`.
type RowView struct {
	Sheet    string `json:"sheet"`
	Position int    `json:"position"`
	Count    int    `json:"count"`
	PageID   int    `json:"page_id"`
	DateTime string `json:"date_time,omitempty"`
	Story    string `json:"story"`
	VideoURL string `json:"video_url"`
}

// NewRowView describes the row at the 1-based position of d.
func NewRowView(d *dataset.Dataset, position int) (*RowView, error) {
	id, row, ok := d.At(position)
	if !ok {
		return nil, fmt.Errorf("%w: %d not in 1..%d", shared.ErrOutOfRange, position, d.Len())
	}
	if err := dataset.Validate(row); err != nil {
		return nil, err
	}
	return &RowView{
		Sheet:    d.Sheet,
		Position: position,
		Count:    d.Len(),
		PageID:   id,
		DateTime: row.DateTime(),
		Story:    row.Story(),
		VideoURL: row.VideoURL(),
	}, nil
}

// ToJSON renders v as indented JSON.
func (v *RowView) ToJSON() ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// String renders v for the terminal.
func (v *RowView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sheet:     %s (%d/%d)\n", v.Sheet, v.Position, v.Count)
	fmt.Fprintf(&b, "PageID:    %d\n", v.PageID)
	if v.DateTime != "" {
		fmt.Fprintf(&b, "DateTime:  %s\n", v.DateTime)
	}
	fmt.Fprintf(&b, "Video URL: %s\n\n", v.VideoURL)
	b.WriteString(v.Story)
	b.WriteString("\n")
	return b.String()
}

// records returns the rows of d in PageID order, one cell per [Columns] entry.
func records(d *dataset.Dataset) [][]string {
	out := make([][]string, 0, d.Len())
	for _, id := range d.IDs {
		row, _ := d.Row(id)
		out = append(out, []string{strconv.Itoa(id), row.DateTime(), row.Story(), row.VideoURL()})
	}
	return out
}

// ExportToCSV converts a Dataset to CSV format with columns: PageID, DateTime, Story, Video URL
func ExportToCSV(d *dataset.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(Columns); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, record := range records(d) {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a Dataset to Markdown with one section per row
func ExportToMarkdown(d *dataset.Dataset) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", d.Sheet)
	fmt.Fprintf(&buf, "**Rows**: %d\n\n", d.Len())

	for _, r := range records(d) {
		fmt.Fprintf(&buf, "## %s\n\n", r[0])
		if r[1] != "" {
			fmt.Fprintf(&buf, "*%s*\n\n", r[1])
		}
		if r[3] != "" {
			fmt.Fprintf(&buf, "[Video](%s)\n\n", r[3])
		}
		if r[2] != "" {
			fmt.Fprintf(&buf, "%s\n\n", r[2])
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Dataset to plain text format
func ExportToText(d *dataset.Dataset) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Sheet: %s\n", d.Sheet)
	fmt.Fprintf(&buf, "Rows: %d\n\n", d.Len())

	for i, r := range records(d) {
		fmt.Fprintf(&buf, "%d. [%s] %s\n", i+1, r[0], shared.Truncate(strings.ReplaceAll(r[2], "\n", " "), 72))
	}

	return buf.Bytes(), nil
}

// ExportToWorkbook converts a Dataset to an xlsx workbook with a single sheet named after it
func ExportToWorkbook(d *dataset.Dataset) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	name := d.Sheet
	if name == "" {
		name = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	rows := append([][]string{Columns}, records(d)...)
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(name, cell, &r); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ValidateFormat reports whether format names an exporter.
func ValidateFormat(format string) error {
	switch format {
	case FormatCSV, FormatMarkdown, FormatText, FormatXLSX:
		return nil
	}
	return fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, format)
}

// Export renders d in the named format.
func Export(d *dataset.Dataset, format string) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(d)
	case FormatMarkdown:
		return ExportToMarkdown(d)
	case FormatText:
		return ExportToText(d)
	case FormatXLSX:
		return ExportToWorkbook(d)
	default:
		return nil, ValidateFormat(format)
	}
}

// WriteExport exports d to path in the named format.
//
// Defaults to {sheet}.{format} as the filename.
func WriteExport(d *dataset.Dataset, format, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s.%s", d.Sheet, format)
	}

	data, err := Export(d, format)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return path, nil
}

// ManifestEntry describes one sheet of a bulk export.
type ManifestEntry struct {
	Sheet  string `json:"sheet"`
	Rows   int    `json:"rows"`
	Status string `json:"status"`
	File   string `json:"file,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Manifest summarizes a bulk export and is written next to the exported files.
type Manifest struct {
	Format            string          `json:"format"`
	ExportedAt        time.Time       `json:"exported_at"`
	TotalSheets       int             `json:"total_sheets"`
	SuccessfulExports int             `json:"successful_exports"`
	FailedExports     int             `json:"failed_exports"`
	Sheets            []ManifestEntry `json:"sheets"`
}

// WriteBulkExportManifest writes m as indented JSON to path.
func WriteBulkExportManifest(m Manifest, path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
