package tasks

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/gnx/internal/services"
)

// ProgressUpdate represents a progress event during a long-running operation.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Phase of a task
type Phase int

const (
	LoadSheet Phase = iota
	ExportSheet
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case LoadSheet:
		return "load_sheet"
	case ExportSheet:
		return "export_sheet"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

// Engine runs tasks against a single sheet store.
type Engine struct {
	store  services.Service
	logger *log.Logger
}

// NewEngine creates an [Engine]. A nil logger discards output.
func NewEngine(store services.Service, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{store: store, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func loadingSheetUpdate(step, total int, sheet string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadSheet,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Loading: %s...", step, total, sheet),
	}
}

func exportCompletedUpdate(step, total int, sheet string, rows int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSheet,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d rows)", step, total, sheet, rows),
	}
}

func exportFailedUpdate(step, total int, sheet string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSheet,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, sheet, err),
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing manifest: %s", path),
	}
}
