package ui

import (
	"github.com/charmbracelet/bubbles/list"
)

var _ list.Item = sheetItem{}

// sheetItem wraps a sheet name to implement [list.Item].
type sheetItem struct {
	name     string
	selected bool
}

func (i sheetItem) FilterValue() string { return i.name }
func (i sheetItem) Title() string       { return i.name }
func (i sheetItem) Description() string {
	if i.selected {
		return "currently displayed"
	}
	return ""
}

func sheetItems(names []string, selected string) []list.Item {
	items := make([]list.Item, len(names))
	for i, name := range names {
		items[i] = sheetItem{name: name, selected: name == selected}
	}
	return items
}
