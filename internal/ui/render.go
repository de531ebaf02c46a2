package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/desertthunder/gnx/internal/shared"
)

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SheetListView:
		return m.renderSheetList()
	case GotoView:
		return m.renderGoto()
	default:
		return m.renderDetail()
	}
}

func (m *Model) renderHeader() string {
	title := "Game Notebook"
	if m.model.Store != "" {
		title = fmt.Sprintf("%s · %s", title, m.model.Store)
	}
	if m.busy > 0 {
		title = fmt.Sprintf("%s %s", title, m.spinner.View())
	}
	return styles.title.Render(title)
}

// renderSlider draws the position as a bar with the previous/next controls either side.
func (m *Model) renderSlider() string {
	rm := m.model
	prev, next := styles.muted.Render("◀"), styles.muted.Render("▶")
	if rm.PrevEnabled {
		prev = styles.label.Render("◀")
	}
	if rm.NextEnabled {
		next = styles.label.Render("▶")
	}

	ratio := 0.0
	if rm.Count > 1 {
		ratio = float64(rm.Position-1) / float64(rm.Count-1)
	} else if rm.Count == 1 {
		ratio = 1
	}
	return fmt.Sprintf("%s %s %s  %d/%d", prev, m.slider.ViewAs(ratio), next, rm.Position, rm.Count)
}

func (m *Model) renderDetail() string {
	var b strings.Builder
	rm := m.model

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch {
	case !rm.HasSheet && len(rm.Sheets) == 0:
		if rm.Err == nil {
			b.WriteString(styles.muted.Render("No sheets to display."))
			b.WriteString("\n")
		}
	case !rm.SliderEnabled:
		fmt.Fprintf(&b, "%s %s\n\n", styles.label.Render("Sheet:"), rm.SelectedSheet)
		if rm.Err == nil {
			b.WriteString(styles.muted.Render("This sheet has no rows."))
			b.WriteString("\n")
		}
	default:
		fmt.Fprintf(&b, "%s %s\n", styles.label.Render("Sheet:"), rm.SelectedSheet)
		b.WriteString(m.renderSlider())
		b.WriteString("\n\n")
		b.WriteString(m.renderRow())
	}

	if msg := m.message(); msg != "" {
		b.WriteString("\n")
		b.WriteString(msg)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m *Model) renderRow() string {
	var b strings.Builder
	rm := m.model

	line := fmt.Sprintf("%s %d", styles.label.Render("PageID:"), rm.ID)
	if rm.DateTime != "" {
		line = fmt.Sprintf("%s  %s", line, styles.muted.Render(rm.DateTime))
	}
	b.WriteString(line)
	b.WriteString("\n")

	if !rm.Detail {
		return b.String()
	}

	fmt.Fprintf(&b, "%s %s\n\n", styles.label.Render("Video:"), rm.VideoURL)

	label := "Story"
	if m.dirty() {
		label += styles.warn.Render(" (modified)")
	}
	b.WriteString(styles.label.Render(label))
	b.WriteString("\n")

	box := styles.editor
	if m.editing {
		box = styles.focus
	}
	b.WriteString(box.Render(m.story.View()))
	b.WriteString("\n")
	return b.String()
}

// message prefers a local error, then the session error, then notices.
func (m *Model) message() string {
	switch {
	case m.err != nil:
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	case m.model.Err != nil:
		return styles.err.Render(fmt.Sprintf("Error: %v", m.model.Err))
	case m.notice != "":
		return styles.ok.Render("✓ " + m.notice)
	case m.model.Notice != "":
		return styles.ok.Render("✓ " + m.model.Notice)
	}
	return ""
}

func (m *Model) renderHelp() string {
	var bindings []key.Binding
	switch {
	case m.editing:
		bindings = []key.Binding{m.keys.commit, m.keys.back}
	case m.model.Detail:
		bindings = []key.Binding{m.keys.prev, m.keys.next, m.keys.edit, m.keys.commit, m.keys.open, m.keys.copy, m.keys.sheets, m.keys.goTo, m.keys.quit}
	case m.model.SliderEnabled:
		bindings = []key.Binding{m.keys.prev, m.keys.next, m.keys.sheets, m.keys.goTo, m.keys.quit}
	default:
		bindings = []key.Binding{m.keys.sheets, m.keys.reload, m.keys.quit}
	}
	return styles.help.Render(m.help.ShortHelpView(bindings))
}

func (m *Model) renderSheetList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.back}
	return fmt.Sprintf("%s\n\n%s", m.sheets.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderGoto() string {
	prompt := fmt.Sprintf("Go to position (1-%d)", m.model.Count)
	if m.target == gotoPageID {
		prompt = "Go to PageID"
	}
	title := styles.title.Render(prompt)
	helpKeys := []key.Binding{m.keys.enter, m.keys.back}
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.input.View(), m.help.ShortHelpView(helpKeys))
}

// windowTitle names the displayed row with a short story preview.
func (m *Model) windowTitle() string {
	if !m.model.HasRow {
		return "gnx"
	}
	title := fmt.Sprintf("gnx · %s #%d", m.model.SelectedSheet, m.model.ID)
	if preview := shared.Truncate(strings.ReplaceAll(m.model.Story, "\n", " "), 40); preview != "" {
		title += " " + preview
	}
	return title
}
