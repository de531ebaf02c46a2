package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/gnx/internal/session"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgRender MsgKind = iota
	MsgDone
	MsgNotice
)

// renderMsg is the constructor for [MsgRender]
func renderMsg(m session.RenderModel) Msg {
	return Msg{kind: MsgRender, data: m}
}

// doneMsg is the constructor for [MsgDone], sent when a session call returns
func doneMsg(err error) Msg {
	return Msg{kind: MsgDone, data: err}
}

// noticeMsg is the constructor for [MsgNotice], for local hand-offs (browser, clipboard)
func noticeMsg(text string, err error) Msg {
	return Msg{
		kind: MsgNotice,
		data: struct {
			text string
			err  error
		}{text, err},
	}
}
