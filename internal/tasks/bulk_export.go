package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/gnx/internal/dataset"
	"github.com/desertthunder/gnx/internal/formatter"
	"github.com/desertthunder/gnx/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultWorkers = 4
	maxWorkers     = 10
	manifestName   = "export_manifest.json"
)

// BulkExportOpts contains configuration for bulk sheet exports.
type BulkExportOpts struct {
	Format     string  // Export format: csv, md, txt, xlsx
	OutputDir  string  // Base output directory (default: gnx_export_{epoch})
	NumWorkers int     // Concurrent workers (default: 4, at most 10)
	RateLimit  float64 // Sheet fetches per second (default: 1)
}

// SheetExportResult is the outcome for one sheet.
type SheetExportResult struct {
	Sheet string
	Rows  int
	File  string
	Err   error
}

// BulkExportResult summarizes a bulk export. Results are in the order the sheets were requested.
type BulkExportResult struct {
	TotalSheets       int
	SuccessfulExports int
	FailedExports     int
	Results           []SheetExportResult
	OutputDirectory   string
	ManifestPath      string
}

type exportJob struct {
	index int
	sheet string
	file  string
}

type exportOutcome struct {
	index  int
	result SheetExportResult
}

// BulkExport exports every named sheet with a worker pool.
//
// Partial failures are reported per sheet. An error is returned only when nothing could be
// attempted (bad options, cancelled context before start) or the manifest cannot be written.
func (e *Engine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	sheets []string,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: sheet store not initialized", shared.ErrServiceUnavailable)
	}
	if err := formatter.ValidateFormat(opts.Format); err != nil {
		return nil, err
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("gnx_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 1.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalSheets:     len(sheets),
		OutputDirectory: opts.OutputDir,
		Results:         make([]SheetExportResult, len(sheets)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan exportJob)
	outcomes := make(chan exportOutcome, len(sheets))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, prog, limiter, jobs, outcomes, len(sheets), opts)
	}

	names := fileNames(sheets, opts.Format)
	go func() {
		defer close(jobs)
		for i, sheet := range sheets {
			select {
			case <-ctx.Done():
				return
			case jobs <- exportJob{index: i, sheet: sheet, file: names[i]}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	seen := make([]bool, len(sheets))
	completed := 0
	for o := range outcomes {
		completed++
		seen[o.index] = true
		result.Results[o.index] = o.result
		if o.result.Err == nil {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(sheets), o.result.Sheet, o.result.Rows))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(sheets), o.result.Sheet, o.result.Err))
		}
	}

	for i, ok := range seen {
		if !ok {
			result.Results[i] = SheetExportResult{Sheet: sheets[i], Err: ctx.Err()}
			result.FailedExports++
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, manifestName)
	e.sendProgress(prog, manifestUpdate(manifestPath))
	if err := formatter.WriteBulkExportManifest(result.manifest(opts.Format), manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	e.logger.Info("bulk export finished", "sheets", len(sheets), "failed", result.FailedExports, "dir", opts.OutputDir)
	return result, nil
}

// exportWorker exports sheets from jobs until the channel closes or ctx is cancelled.
func (e *Engine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	prog chan<- ProgressUpdate,
	limiter *rate.Limiter,
	jobs <-chan exportJob,
	outcomes chan<- exportOutcome,
	total int,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			outcomes <- exportOutcome{job.index, SheetExportResult{Sheet: job.sheet, Err: err}}
			continue
		}
		e.sendProgress(prog, loadingSheetUpdate(job.index+1, total, job.sheet))
		outcomes <- exportOutcome{job.index, e.exportSheet(ctx, job.sheet, job.file, opts)}
	}
}

func (e *Engine) exportSheet(ctx context.Context, sheet, file string, opts BulkExportOpts) SheetExportResult {
	result := SheetExportResult{Sheet: sheet}

	d, err := dataset.Load(ctx, e.store, sheet)
	if err != nil {
		result.Err = err
		return result
	}
	result.Rows = d.Len()

	path := filepath.Join(opts.OutputDir, file)
	if result.File, err = formatter.WriteExport(d, opts.Format, path); err != nil {
		result.Err = err
	}
	return result
}

// fileName keeps sheet names like "2024/01" from escaping the output directory.
func fileName(sheet, format string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, sheet)
	if name == "" || name == "." || name == ".." {
		name = "sheet"
	}
	return name + "." + format
}

// fileNames assigns each sheet its own file. A name already taken by an earlier sheet gets a
// numeric suffix, so "a/b" and "a_b" export to "a_b.csv" and "a_b-2.csv".
func fileNames(sheets []string, format string) []string {
	names := make([]string, len(sheets))
	taken := make(map[string]bool, len(sheets)+1)
	taken[manifestName] = true
	for i, sheet := range sheets {
		name := fileName(sheet, format)
		base := strings.TrimSuffix(name, "."+format)
		for n := 2; taken[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s-%d.%s", base, n, format)
		}
		taken[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

func (r *BulkExportResult) manifest(format string) formatter.Manifest {
	m := formatter.Manifest{
		Format:            format,
		ExportedAt:        time.Now().UTC(),
		TotalSheets:       r.TotalSheets,
		SuccessfulExports: r.SuccessfulExports,
		FailedExports:     r.FailedExports,
		Sheets:            make([]formatter.ManifestEntry, len(r.Results)),
	}
	for i, res := range r.Results {
		entry := formatter.ManifestEntry{Sheet: res.Sheet, Rows: res.Rows, File: res.File, Status: "success"}
		if res.Err != nil {
			entry.Status, entry.File, entry.Error = "failed", "", res.Err.Error()
		}
		m.Sheets[i] = entry
	}
	return m
}
