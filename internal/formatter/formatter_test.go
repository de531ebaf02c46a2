package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/gnx/internal/dataset"
	"github.com/desertthunder/gnx/internal/models"
	"github.com/desertthunder/gnx/internal/shared"
	th "github.com/desertthunder/gnx/internal/testing"
	"github.com/xuri/excelize/v2"
)

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	d, err := dataset.FromTable(models.NewTable("2024-01", [][]string{
		{"PageID", "DateTime", "Story", "Video URL"},
		{"2", "2024-01-02", "Second, with a comma", "https://v/2"},
		{"1", "2024-01-01", "First story\nover two lines", "https://v/1"},
	}))
	if err != nil {
		t.Fatalf("failed to build dataset: %v", err)
	}
	return d
}

func TestExporters(t *testing.T) {
	d := testDataset(t)

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(d)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "PageID,DateTime,Story,Video URL\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, `"Second, with a comma"`) {
			t.Errorf("CSV should quote fields with commas, got: %s", output)
		}
		if strings.Index(output, "https://v/1") > strings.Index(output, "https://v/2") {
			t.Errorf("CSV rows should be in PageID order, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(d)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{"# 2024-01", "**Rows**: 2", "## 1", "*2024-01-01*", "[Video](https://v/1)", "First story\nover two lines"} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(d)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Sheet: 2024-01") {
			t.Errorf("Text missing sheet name")
		}
		if !strings.Contains(output, "1. [1] First story over two lines") {
			t.Errorf("Text should flatten stories, got: %s", output)
		}
	})

	t.Run("ExportToWorkbook", func(t *testing.T) {
		data, err := ExportToWorkbook(d)
		if err != nil {
			t.Fatalf("ExportToWorkbook failed: %v", err)
		}

		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("failed to read workbook: %v", err)
		}
		defer f.Close()

		rows, err := f.GetRows("2024-01")
		if err != nil {
			t.Fatalf("failed to read rows: %v", err)
		}
		if len(rows) != 3 || rows[1][0] != "1" || rows[2][2] != "Second, with a comma" {
			t.Errorf("unexpected rows %v", rows)
		}
	})

	t.Run("Export unknown format", func(t *testing.T) {
		if _, err := Export(d, "pdf"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("empty dataset", func(t *testing.T) {
		empty, _ := dataset.FromTable(models.NewTable("empty", nil))
		data, err := ExportToCSV(empty)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		if string(data) != "PageID,DateTime,Story,Video URL\n" {
			t.Errorf("expected header only, got %q", data)
		}
	})
}

func TestWriteExport(t *testing.T) {
	d := testDataset(t)

	t.Run("WithDefaultPath", func(t *testing.T) {
		tempDir := t.TempDir()
		originalDir := th.MustGetwd(t)
		th.MustChdir(t, tempDir)
		defer th.MustChdir(t, originalDir)

		path, err := WriteExport(d, FormatCSV, "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if path != "2024-01.csv" {
			t.Errorf("expected default path 2024-01.csv, got %s", path)
		}
		th.AssertFileExists(t, path)
	})

	t.Run("WithCustomPath", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.md")
		got, err := WriteExport(d, FormatMarkdown, path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
		if content := th.MustReadFile(t, path); !strings.Contains(content, "# 2024-01") {
			t.Errorf("unexpected content %s", content)
		}
	})

	t.Run("UnwritablePath", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "out.txt")
		if _, err := WriteExport(d, FormatText, path); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}

func TestRowView(t *testing.T) {
	d := testDataset(t)

	v, err := NewRowView(d, 2)
	if err != nil {
		t.Fatalf("NewRowView failed: %v", err)
	}
	if v.PageID != 2 || v.Count != 2 || v.VideoURL != "https://v/2" {
		t.Errorf("unexpected view %+v", v)
	}

	data, err := v.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["page_id"] != float64(2) {
		t.Errorf("expected page_id 2, got %v", decoded["page_id"])
	}

	if !strings.Contains(v.String(), "PageID:    2") {
		t.Errorf("unexpected text %s", v.String())
	}

	if _, err := NewRowView(d, 3); !errors.Is(err, shared.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestWriteBulkExportManifest(t *testing.T) {
	t.Run("WithFailedExports", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "export_manifest.json")
		manifest := Manifest{
			Format:            FormatMarkdown,
			TotalSheets:       2,
			SuccessfulExports: 1,
			FailedExports:     1,
			Sheets: []ManifestEntry{
				{Sheet: "2024-01", Rows: 3, Status: "success", File: "2024-01.md"},
				{Sheet: "2023-12", Status: "failed", Error: "invalid PageID format"},
			},
		}

		if err := WriteBulkExportManifest(manifest, path); err != nil {
			t.Fatalf("WriteBulkExportManifest failed: %v", err)
		}

		var got Manifest
		if err := json.Unmarshal([]byte(th.MustReadFile(t, path)), &got); err != nil {
			t.Fatalf("invalid manifest: %v", err)
		}
		if got.Format != FormatMarkdown || got.FailedExports != 1 || len(got.Sheets) != 2 {
			t.Errorf("unexpected manifest %+v", got)
		}
		if got.Sheets[1].Error != "invalid PageID format" || got.Sheets[1].File != "" {
			t.Errorf("unexpected failed entry %+v", got.Sheets[1])
		}
	})

	t.Run("UnwritablePath", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "manifest.json")
		if err := WriteBulkExportManifest(Manifest{}, path); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}
