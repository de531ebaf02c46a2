// Package ui implements the interactive notebook pager using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [DetailView] : the displayed row with the slider, previous/next controls and the story editor
//  2. [SheetListView] : pick the sheet to page through
//  3. [GotoView] : jump to a position or a PageID
//
// The [Model] never owns notebook state. Every key press becomes a call on a [session.Session] run as a [tea.Cmd],
// and the session pushes its render model back through a channel that the model waits on, one snapshot at a time.
//
// Keyboard navigation uses vim-style bindings (h/l, g/G, i, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
