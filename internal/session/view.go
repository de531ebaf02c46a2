package session

import (
	"errors"

	"github.com/charmbracelet/log"
)

// RenderModel is one immutable snapshot of everything a view displays.
type RenderModel struct {
	Store         string
	Sheets        []string
	SelectedSheet string
	HasSheet      bool

	Position      int
	Count         int
	PrevEnabled   bool
	NextEnabled   bool
	SliderEnabled bool

	// ID is the displayed PageID when HasRow is set.
	ID     int
	HasRow bool
	// Detail is false when the displayed row is missing required fields.
	Detail   bool
	DateTime string
	Story    string
	VideoURL string

	Buffer string
	Dirty  bool

	Err    error
	Notice string
}

// Message returns the inline error text, or "" when there is none.
func (m RenderModel) Message() string {
	if m.Err == nil {
		return ""
	}
	return m.Err.Error()
}

// Failed reports whether the inline error matches target.
func (m RenderModel) Failed(target error) bool {
	return m.Err != nil && errors.Is(m.Err, target)
}

// View receives every render model the session produces.
//
// Render is called with the session locked, so it must not call back into the session.
type View interface {
	Render(RenderModel)
}

// ViewFunc adapts a function to [View].
type ViewFunc func(RenderModel)

func (f ViewFunc) Render(m RenderModel) { f(m) }

// LogView logs each snapshot at debug level.
func LogView(logger *log.Logger) View {
	return ViewFunc(func(m RenderModel) {
		logger.Debug("render",
			"sheet", m.SelectedSheet, "position", m.Position, "count", m.Count,
			"page_id", m.ID, "dirty", m.Dirty, "error", m.Message())
	})
}
