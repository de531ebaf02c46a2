// package navigator tracks which sheet is selected and which row position is displayed
//
// Position is 1-based and always within 1..N while a non-empty sheet is selected.
package navigator

import (
	"fmt"

	"github.com/desertthunder/gnx/internal/shared"
)

// EventKind identifies a navigation input.
type EventKind int

const (
	SelectSheet EventKind = iota
	Previous
	Next
	SetPosition
)

func (k EventKind) String() string {
	switch k {
	case SelectSheet:
		return "select-sheet"
	case Previous:
		return "previous"
	case Next:
		return "next"
	case SetPosition:
		return "set-position"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is one navigation input. Sheet is read by [SelectSheet], Value by [SetPosition].
type Event struct {
	Kind  EventKind
	Sheet string
	Value int
}

func SelectEvent(sheet string) Event { return Event{Kind: SelectSheet, Sheet: sheet} }
func PreviousEvent() Event           { return Event{Kind: Previous} }
func NextEvent() Event               { return Event{Kind: Next} }
func PositionEvent(v int) Event      { return Event{Kind: SetPosition, Value: v} }

// Change describes what a transition altered.
type Change struct {
	Sheet    bool
	Position bool
}

// Any reports whether observable state changed.
func (c Change) Any() bool { return c.Sheet || c.Position }

// Navigator is the navigation state of one session.
//
// The zero value has no sheet selected and position 1.
type Navigator struct {
	sheet    string
	selected bool
	position int
	count    int
}

func New() *Navigator {
	return &Navigator{position: 1}
}

// Sheet returns the selected sheet and whether one is selected.
func (n *Navigator) Sheet() (string, bool) { return n.sheet, n.selected }

// Position returns the 1-based position.
func (n *Navigator) Position() int {
	if n.position < 1 {
		return 1
	}
	return n.position
}

// Count returns N, the number of rows in the selected sheet.
func (n *Navigator) Count() int { return n.count }

func (n *Navigator) CanPrevious() bool { return n.count > 0 && n.Position() > 1 }
func (n *Navigator) CanNext() bool     { return n.Position() < n.count }

// SliderEnabled reports whether a position can be chosen directly.
func (n *Navigator) SliderEnabled() bool { return n.count > 0 }

// Select makes sheet the selected sheet and resets the position to 1.
// Selecting the already selected sheet changes nothing.
func (n *Navigator) Select(sheet string) Change {
	if n.selected && n.sheet == sheet {
		return Change{}
	}
	n.sheet, n.selected = sheet, true
	n.position, n.count = 1, 0
	return Change{Sheet: true, Position: true}
}

// SetCount records N after the selected sheet has loaded, clamping the position into range.
func (n *Navigator) SetCount(count int) {
	n.count = max(count, 0)
	switch {
	case n.position < 1 || n.count == 0:
		n.position = 1
	case n.position > n.count:
		n.position = n.count
	}
}

// Previous moves back one row. No-op at position 1.
func (n *Navigator) Previous() Change {
	if !n.CanPrevious() {
		return Change{}
	}
	n.position--
	return Change{Position: true}
}

// Next moves forward one row. No-op at position N.
func (n *Navigator) Next() Change {
	if !n.CanNext() {
		return Change{}
	}
	n.position++
	return Change{Position: true}
}

// SetPosition moves to v. Values outside 1..N are rejected with [shared.ErrOutOfRange].
func (n *Navigator) SetPosition(v int) (Change, error) {
	if v < 1 || v > n.count {
		return Change{}, fmt.Errorf("%w: %d not in 1..%d", shared.ErrOutOfRange, v, n.count)
	}
	if v == n.Position() {
		return Change{}, nil
	}
	n.position = v
	return Change{Position: true}, nil
}

// Apply runs one interaction cycle.
//
// A sheet change in the batch wins: every position input of the batch is discarded and the
// position is 1. Reselecting the current sheet is not a change. Otherwise events apply in
// order and the first rejected value is returned alongside the change made by the others.
func (n *Navigator) Apply(events ...Event) (Change, error) {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Kind != SelectSheet {
			continue
		}
		if c := n.Select(events[i].Sheet); c.Any() {
			return c, nil
		}
		break
	}

	var change Change
	var firstErr error
	for _, e := range events {
		var c Change
		switch e.Kind {
		case Previous:
			c = n.Previous()
		case Next:
			c = n.Next()
		case SetPosition:
			var err error
			if c, err = n.SetPosition(e.Value); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		change.Position = change.Position || c.Position
	}
	return change, firstErr
}
