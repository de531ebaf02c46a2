// package session ties a sheet store, the navigator and the story editor into one interactive session
//
// Every call that changes state ends with a single reconciliation pass that builds a [RenderModel]
// and pushes it to all bound views.
package session

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/gnx/internal/dataset"
	"github.com/desertthunder/gnx/internal/navigator"
	"github.com/desertthunder/gnx/internal/services"
	"github.com/desertthunder/gnx/internal/shared"
)

// CommitNotice is shown after a story is written.
const CommitNotice = "Story updated successfully!"

// Session is the state of one user connection.
type Session struct {
	mu     sync.Mutex
	store  services.Service
	logger *log.Logger

	nav    *navigator.Navigator
	data   *dataset.Dataset
	editor *Editor
	sheets []string
	views  []View

	journal Journal
	err     error
	notice  string
	model   RenderModel
}

// Option configures a [Session].
type Option func(*Session)

// WithJournal records commit attempts to j.
func WithJournal(j Journal) Option {
	return func(s *Session) { s.journal = j }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithView binds v before the session opens.
func WithView(v View) Option {
	return func(s *Session) { s.views = append(s.views, v) }
}

// New creates a session over store. Call [Session.Open] before use.
func New(store services.Service, opts ...Option) *Session {
	s := &Session{store: store, nav: navigator.New()}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	s.editor = NewEditor(store, s.journal, s.logger)
	s.model = s.build()
	return s
}

// Open lists the sheets and selects the first one.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	s.nav = navigator.New()
	s.editor.Reset()
	s.data = nil

	names, err := dataset.SheetNames(ctx, s.store)
	if err != nil {
		s.err = err
		s.reconcile()
		return err
	}
	s.sheets = names
	s.logger.Info("session opened", "store", s.store.Name(), "sheets", len(names))

	if len(names) == 0 {
		s.reconcile()
		return nil
	}
	s.apply(ctx, navigator.SelectEvent(names[0]))
	return s.err
}

// Close unbinds every view and drops loaded state.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views = nil
	s.sheets = nil
	s.nav = navigator.New()
	s.editor.Reset()
	s.data = nil
	s.reset()
	s.model = s.build()
}

// Bind adds v and renders the current snapshot to it.
func (s *Session) Bind(v View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views = append(s.views, v)
	v.Render(s.model)
}

// Model returns the latest snapshot.
func (s *Session) Model() RenderModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// Dispatch applies one batch of navigation inputs.
//
// A sheet change discards the edit buffer and reloads the sheet. A position change starts
// editing the newly displayed row. Rejected inputs are reported on the model and returned.
func (s *Session) Dispatch(ctx context.Context, events ...navigator.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.apply(ctx, events...)
	return s.err
}

// Select is a single sheet selection.
func (s *Session) Select(ctx context.Context, sheet string) error {
	return s.Dispatch(ctx, navigator.SelectEvent(sheet))
}

func (s *Session) Previous(ctx context.Context) error {
	return s.Dispatch(ctx, navigator.PreviousEvent())
}

func (s *Session) Next(ctx context.Context) error {
	return s.Dispatch(ctx, navigator.NextEvent())
}

// SetPosition moves the slider to v.
func (s *Session) SetPosition(ctx context.Context, v int) error {
	return s.Dispatch(ctx, navigator.PositionEvent(v))
}

// Goto displays the row whose PageID is id.
func (s *Session) Goto(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()

	p := s.data.Position(id)
	if p == 0 {
		s.err = fmt.Errorf("%w: PageID %d", shared.ErrRowNotFound, id)
		s.reconcile()
		return s.err
	}
	s.apply(ctx, navigator.PositionEvent(p))
	return s.err
}

// Reload fetches the selected sheet again, keeping the position when it is still in range.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()

	if _, ok := s.nav.Sheet(); !ok {
		s.err = shared.ErrNoSheet
		s.reconcile()
		return s.err
	}
	s.load(ctx)
	s.begin()
	s.reconcile()
	return s.err
}

// Edit replaces the edit buffer.
func (s *Session) Edit(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.editor.Edit(text)
	s.reconcile()
}

// Commit writes the edit buffer to the displayed row's Story cell.
// Neither the position nor the selected sheet changes.
func (s *Session) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()

	if err := s.editor.Commit(ctx); err != nil {
		s.logger.Error("commit failed", "error", err)
		s.err = err
	} else {
		s.notice = CommitNotice
	}
	s.reconcile()
	return s.err
}

// CommitRow replaces the buffer with text and commits it, but only while PageID id of sheet
// is still the displayed row. Callers that captured the row before an asynchronous hop use
// this so a navigation in between cannot redirect the write.
func (s *Session) CommitRow(ctx context.Context, sheet string, id int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()

	if !s.displays(sheet, id) {
		s.err = fmt.Errorf("%w: PageID %d in sheet %q is no longer displayed", shared.ErrNoRow, id, sheet)
		s.logger.Warn("stale commit rejected", "sheet", sheet, "id", id)
		s.reconcile()
		return s.err
	}

	s.editor.Edit(text)
	if err := s.editor.Commit(ctx); err != nil {
		s.logger.Error("commit failed", "error", err)
		s.err = err
	} else {
		s.notice = CommitNotice
	}
	s.reconcile()
	return s.err
}

// displays reports whether the editor is seeded from PageID id of sheet.
func (s *Session) displays(sheet string, id int) bool {
	selected, ok := s.nav.Sheet()
	if !ok || selected != sheet || !s.editor.Active() {
		return false
	}
	shown, _, ok := s.data.At(s.nav.Position())
	return ok && shown == id
}

func (s *Session) reset() {
	s.err, s.notice = nil, ""
}

// apply runs events through the navigator and reconciles once.
func (s *Session) apply(ctx context.Context, events ...navigator.Event) {
	change, err := s.nav.Apply(events...)
	if err != nil {
		s.err = err
	}
	if change.Sheet {
		s.editor.Reset()
		s.load(ctx)
	}
	if change.Any() {
		s.begin()
	}
	s.reconcile()
}

// load fetches the selected sheet. On failure the sheet stays selected with no rows.
func (s *Session) load(ctx context.Context) {
	sheet, _ := s.nav.Sheet()
	d, err := dataset.Load(ctx, s.store, sheet)
	if err != nil {
		s.logger.Error("failed to load sheet", "sheet", sheet, "error", err)
		s.data = nil
		s.nav.SetCount(0)
		s.err = err
		return
	}
	s.data = d
	s.nav.SetCount(d.Len())
	s.logger.Info("loaded sheet", "sheet", sheet, "rows", d.Len())
}

// begin seeds the editor from the displayed row, or clears it when the row cannot be shown.
func (s *Session) begin() {
	id, row, ok := s.data.At(s.nav.Position())
	if !ok || dataset.Validate(row) != nil {
		s.editor.Reset()
		return
	}
	s.editor.Begin(s.data, id)
}

// build computes the snapshot for the current state.
func (s *Session) build() RenderModel {
	sheet, selected := s.nav.Sheet()
	m := RenderModel{
		Store:         s.store.Name(),
		Sheets:        slices.Clone(s.sheets),
		SelectedSheet: sheet,
		HasSheet:      selected,
		Position:      s.nav.Position(),
		Count:         s.nav.Count(),
		PrevEnabled:   s.nav.CanPrevious(),
		NextEnabled:   s.nav.CanNext(),
		SliderEnabled: s.nav.SliderEnabled(),
		Buffer:        s.editor.Buffer(),
		Dirty:         s.editor.Dirty(),
		Err:           s.err,
		Notice:        s.notice,
	}

	if id, row, ok := s.data.At(m.Position); ok {
		m.ID, m.HasRow = id, true
		m.DateTime = row.DateTime()
		if err := dataset.Validate(row); err != nil {
			if m.Err == nil {
				m.Err = err
			}
		} else {
			m.Detail = true
			m.Story = row.Story()
			m.VideoURL = row.VideoURL()
		}
	}
	return m
}

// reconcile builds one snapshot and pushes it to every bound view.
func (s *Session) reconcile() {
	s.model = s.build()
	for _, v := range s.views {
		v.Render(s.model)
	}
}
