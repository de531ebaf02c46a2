package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	prev   key.Binding
	next   key.Binding
	first  key.Binding
	last   key.Binding
	sheets key.Binding
	goTo   key.Binding
	find   key.Binding
	edit   key.Binding
	commit key.Binding
	open   key.Binding
	copy   key.Binding
	reload key.Binding
	enter  key.Binding
	back   key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		prev:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous")),
		next:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		first:  key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first")),
		last:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last")),
		sheets: key.NewBinding(key.WithKeys("s", "tab"), key.WithHelp("s", "sheets")),
		goTo:   key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "go to position")),
		find:   key.NewBinding(key.WithKeys("#"), key.WithHelp("#", "go to PageID")),
		edit:   key.NewBinding(key.WithKeys("i", "e"), key.WithHelp("i", "edit story")),
		commit: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "commit")),
		open:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open video")),
		copy:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy video URL")),
		reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.prev, k.next, k.edit, k.commit, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.prev, k.next, k.first, k.last},
		{k.sheets, k.goTo, k.find, k.reload},
		{k.edit, k.commit, k.back},
		{k.open, k.copy, k.quit},
	}
}
