package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/gnx/internal/session"
	"github.com/desertthunder/gnx/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	DetailView ViewState = iota
	SheetListView
	GotoView
)

// gotoTarget selects how [GotoView] reads its input.
type gotoTarget int

const (
	gotoPosition gotoTarget = iota
	gotoPageID
)

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	session *session.Session
	updates chan session.RenderModel
	view    ViewState
	target  gotoTarget
	editing bool
	busy    int
	width   int
	height  int
	model   session.RenderModel
	sheets  list.Model
	story   textarea.Model
	slider  progress.Model
	input   textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap
	notice  string
	err     error

	openURL   func(string) error
	copyToClp func(string) error
}

// channelView forwards render models to the TUI, keeping only the latest unread snapshot.
type channelView chan session.RenderModel

func (c channelView) Render(m session.RenderModel) {
	for {
		select {
		case c <- m:
			return
		default:
			select {
			case <-c:
			default:
			}
		}
	}
}

// NewModel creates a TUI bound to s. The session is opened by [Model.Init].
func NewModel(ctx context.Context, s *session.Session) *Model {
	story := textarea.New()
	story.Placeholder = "No story yet"
	story.ShowLineNumbers = false
	story.CharLimit = 0

	input := textinput.New()
	input.CharLimit = 9

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.muted

	sheets := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	sheets.Title = "Sheets"

	m := &Model{
		ctx:       ctx,
		session:   s,
		updates:   make(chan session.RenderModel, 1),
		view:      DetailView,
		sheets:    sheets,
		story:     story,
		slider:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		input:     input,
		spinner:   sp,
		help:      help.New(),
		keys:      newKeyMap(),
		openURL:   shared.OpenBrowser,
		copyToClp: clipboard.WriteAll,
	}
	s.Bind(channelView(m.updates))
	return m
}

// Init opens the session, which lists the sheets and displays the first row of the newest one.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForRender(), m.run(m.session.Open))
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if m.busy == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)

	case tea.KeyMsg:
		switch m.view {
		case SheetListView:
			return m.handleSheetListKeys(msg)
		case GotoView:
			return m.handleGotoKeys(msg)
		default:
			if m.editing {
				return m.handleEditorKeys(msg)
			}
			return m.handleDetailKeys(msg)
		}
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgRender:
		m.apply(msg.data.(session.RenderModel))
		return m, tea.Batch(m.waitForRender(), tea.SetWindowTitle(m.windowTitle()))
	case MsgDone:
		if m.busy > 0 {
			m.busy--
		}
	case MsgNotice:
		data := msg.data.(struct {
			text string
			err  error
		})
		m.notice, m.err = data.text, data.err
	}
	return m, nil
}

// apply takes a new snapshot from the session.
//
// The editor keeps the user's text while editing the same row; any other change reseeds it from the buffer.
func (m *Model) apply(rm session.RenderModel) {
	rowChanged := rm.SelectedSheet != m.model.SelectedSheet || rm.ID != m.model.ID || rm.HasRow != m.model.HasRow
	sheetsChanged := strings.Join(rm.Sheets, "\x00") != strings.Join(m.model.Sheets, "\x00") ||
		rm.SelectedSheet != m.model.SelectedSheet
	m.model = rm

	if rowChanged || !rm.Detail {
		m.editing = false
		m.story.Blur()
	}
	if rowChanged || !m.editing {
		m.story.SetValue(rm.Buffer)
	}
	if sheetsChanged {
		m.sheets.SetItems(sheetItems(rm.Sheets, rm.SelectedSheet))
		for i, name := range rm.Sheets {
			if name == rm.SelectedSheet {
				m.sheets.Select(i)
			}
		}
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.sheets.SetSize(width-4, height-4)
	m.story.SetWidth(max(width-6, 20))
	m.story.SetHeight(max(height-16, 3))
	m.slider.Width = max(width-30, 10)
	m.help.Width = width
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice, m.err = "", nil
	s := m.session

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.prev):
		return m, m.run(s.Previous)
	case key.Matches(msg, m.keys.next):
		return m, m.run(s.Next)
	case key.Matches(msg, m.keys.first):
		if m.model.SliderEnabled {
			return m, m.run(func(ctx context.Context) error { return s.SetPosition(ctx, 1) })
		}
	case key.Matches(msg, m.keys.last):
		if m.model.SliderEnabled {
			count := m.model.Count
			return m, m.run(func(ctx context.Context) error { return s.SetPosition(ctx, count) })
		}
	case key.Matches(msg, m.keys.sheets):
		m.view = SheetListView
	case key.Matches(msg, m.keys.goTo):
		return m, m.startGoto(gotoPosition)
	case key.Matches(msg, m.keys.find):
		return m, m.startGoto(gotoPageID)
	case key.Matches(msg, m.keys.reload):
		return m, m.run(s.Reload)
	case key.Matches(msg, m.keys.edit, m.keys.enter):
		if m.model.Detail {
			m.editing = true
			return m, m.story.Focus()
		}
	case key.Matches(msg, m.keys.commit):
		return m, m.commit()
	case key.Matches(msg, m.keys.open):
		return m, m.handOff(m.openURL, "Opened video in browser")
	case key.Matches(msg, m.keys.copy):
		return m, m.handOff(m.copyToClp, "Copied video URL")
	}
	return m, nil
}

func (m *Model) handleEditorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.editing = false
		m.story.Blur()
		return m, nil
	case key.Matches(msg, m.keys.commit):
		return m, m.commit()
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.story, cmd = m.story.Update(msg)
	return m, cmd
}

func (m *Model) handleSheetListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.sheets.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.back):
			m.view = DetailView
			return m, nil
		case key.Matches(msg, m.keys.enter):
			m.view = DetailView
			if item, ok := m.sheets.SelectedItem().(sheetItem); ok {
				name := item.name
				return m, m.run(func(ctx context.Context) error { return m.session.Select(ctx, name) })
			}
			return m, nil
		case msg.Type == tea.KeyCtrlC:
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.sheets, cmd = m.sheets.Update(msg)
	return m, cmd
}

func (m *Model) handleGotoKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = DetailView
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.view = DetailView
		m.input.Blur()

		v, err := strconv.Atoi(strings.TrimSpace(m.input.Value()))
		if err != nil {
			m.err = fmt.Errorf("%w: %q is not a number", shared.ErrInvalidInput, m.input.Value())
			return m, nil
		}
		if m.target == gotoPageID {
			return m, m.run(func(ctx context.Context) error { return m.session.Goto(ctx, v) })
		}
		return m, m.run(func(ctx context.Context) error { return m.session.SetPosition(ctx, v) })
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) startGoto(target gotoTarget) tea.Cmd {
	if !m.model.SliderEnabled {
		return nil
	}
	m.view, m.target = GotoView, target
	m.input.SetValue("")
	if target == gotoPageID {
		m.input.Placeholder = "PageID"
	} else {
		m.input.Placeholder = fmt.Sprintf("1-%d", m.model.Count)
	}
	return m.input.Focus()
}

// commit sends the editor text to the session and writes it to the store.
func (m *Model) commit() tea.Cmd {
	if !m.model.Detail {
		return nil
	}
	sheet, id, text := m.model.SelectedSheet, m.model.ID, m.story.Value()
	return m.run(func(ctx context.Context) error {
		return m.session.CommitRow(ctx, sheet, id, text)
	})
}

// dirty reports whether the editor differs from the stored story.
func (m *Model) dirty() bool {
	return m.model.Detail && m.story.Value() != m.model.Story
}

func (m *Model) handOff(fn func(string) error, done string) tea.Cmd {
	url := m.model.VideoURL
	if !m.model.Detail || url == "" {
		return nil
	}
	return func() tea.Msg {
		if err := fn(url); err != nil {
			return noticeMsg("", err)
		}
		return noticeMsg(done, nil)
	}
}

// run calls fn on the session off the event loop. The render model arrives separately through the bound view.
func (m *Model) run(fn func(context.Context) error) tea.Cmd {
	m.busy++
	return tea.Batch(
		func() tea.Msg { return doneMsg(fn(m.ctx)) },
		m.spinner.Tick,
	)
}

func (m *Model) waitForRender() tea.Cmd {
	return func() tea.Msg {
		select {
		case rm := <-m.updates:
			return renderMsg(rm)
		case <-m.ctx.Done():
			return nil
		}
	}
}
