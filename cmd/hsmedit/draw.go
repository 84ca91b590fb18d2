package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/hsm-toolkit/pkg/interact"
)

// Styles
var (
	styleDefault    = tcell.StyleDefault
	styleTitle      = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo    = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleMsgSuccess = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleHelp       = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleInput      = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	styleBorder     = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// Flash pattern: normal(0-125) -> inverted(125-250) -> normal(250-375) -> inverted(375-500) -> normal(500+)
const flashPeriod = 500

func flashInverted(elapsed int64) bool {
	if elapsed < 0 || elapsed >= flashPeriod {
		return false
	}
	phase := elapsed / 125
	return phase == 1 || phase == 3
}

func shouldFlash(t MessageType) bool {
	return t != MsgInfo
}

func (ed *Editor) draw() {
	ed.screen.Clear()
	w, h := ed.screen.Size()

	if d := ed.active(); d != nil && h > barRows {
		c := newCellCanvas(w, h-barRows, ed.offset, d.Config().Theme.Background)
		d.Paint(c)
		c.flush(ed.screen, 0, 0)
	}

	switch ed.mode {
	case ModeInput:
		ed.drawInputBox(w, h)
	case ModeHelp:
		ed.drawHelp(w, h)
	}

	ed.drawStatusBar(w, h)
}

func (ed *Editor) drawStatusBar(w, h int) {
	y := h - 1

	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	// Diagram info
	d := ed.active()
	info := "[New]"
	if d != nil {
		info = ed.title(d)
		if ed.modified[d.ID] {
			info += " *"
		}
		if n := ed.ws.Len(); n > 1 {
			info = fmt.Sprintf("%s (%d open)", info, n)
		}
	}
	ed.drawString(1, y, truncate(info, w/3), styleStatus)

	modeStr := ed.modeString()
	ed.drawString(w/2-len(modeStr)/2, y, modeStr, styleStatus)

	if ed.message != "" {
		style := styleMsgInfo
		switch ed.messageType {
		case MsgError:
			style = styleMsgError
		case MsgSuccess:
			style = styleMsgSuccess
		}
		if ed.messageFlashStart > 0 && shouldFlash(ed.messageType) &&
			flashInverted(nowMillis()-ed.messageFlashStart) {
			style = style.Reverse(true)
		}
		msg := truncate(ed.message, w/2)
		ed.drawString(w-len([]rune(msg))-2, y, msg, style)
	}

	// Help bar
	y = h - 2
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
	ed.drawString(1, y, ed.helpString(), styleHelp)
}

func (ed *Editor) drawInputBox(w, h int) {
	boxW := 50
	boxH := 3
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	ed.drawBox(boxX, boxY, boxW, boxH, styleInput)

	// Show the tail of long input
	text := ed.inputBuffer + "_"
	room := boxW - 4 - len([]rune(ed.inputPrompt))
	if r := []rune(text); room > 0 && len(r) > room {
		text = string(r[len(r)-room:])
	}
	ed.drawString(boxX+2, boxY+1, ed.inputPrompt, styleInput)
	ed.drawString(boxX+2+len([]rune(ed.inputPrompt)), boxY+1, text, styleInput)
}

var helpLines = []string{
	"Mouse",
	"  drag             move a state; drop into a container to nest it",
	"  drag corner      resize a container with explicit bounds",
	"  drag label       move a transition label",
	"  right click      cancel the current gesture",
	"  wheel            scroll",
	"",
	"States",
	"  a                add a child (or a root state at the pointer)",
	"  p / P / l        make parent / parallel / leaf",
	"  e, Enter         rename",
	"  d, Del           delete",
	"  t                new transition from the selection",
	"  x                toggle explicit bounds",
	"  n                move every root into the first",
	"",
	"Diagrams",
	"  Tab              next diagram       N  new diagram",
	"  s / S            save / save as     o  open",
	"  w                close              r  render and view",
	"  c                compact            q  quit",
}

func (ed *Editor) drawHelp(w, h int) {
	boxW := 0
	for _, l := range helpLines {
		boxW = max(boxW, len([]rune(l)))
	}
	boxW += 4
	boxH := len(helpLines) + 2
	boxX := max((w-boxW)/2, 0)
	boxY := max((h-barRows-boxH)/2, 0)

	ed.drawBox(boxX, boxY, boxW, boxH, styleDefault)
	title := " Help "
	ed.drawString(boxX+(boxW-len(title))/2, boxY, title, styleTitle)
	for i, l := range helpLines {
		ed.drawString(boxX+2, boxY+1+i, l, styleDefault)
	}
}

func (ed *Editor) drawBox(x, y, w, h int, style tcell.Style) {
	// Corners
	ed.screen.SetContent(x, y, '┌', nil, styleBorder)
	ed.screen.SetContent(x+w-1, y, '┐', nil, styleBorder)
	ed.screen.SetContent(x, y+h-1, '└', nil, styleBorder)
	ed.screen.SetContent(x+w-1, y+h-1, '┘', nil, styleBorder)

	// Horizontal borders
	for i := x + 1; i < x+w-1; i++ {
		ed.screen.SetContent(i, y, '─', nil, styleBorder)
		ed.screen.SetContent(i, y+h-1, '─', nil, styleBorder)
	}

	// Vertical borders
	for i := y + 1; i < y+h-1; i++ {
		ed.screen.SetContent(x, i, '│', nil, styleBorder)
		ed.screen.SetContent(x+w-1, i, '│', nil, styleBorder)
	}

	// Fill
	for row := y + 1; row < y+h-1; row++ {
		for col := x + 1; col < x+w-1; col++ {
			ed.screen.SetContent(col, row, ' ', nil, style)
		}
	}
}

func (ed *Editor) drawString(x, y int, s string, style tcell.Style) {
	i := 0
	for _, r := range s {
		ed.screen.SetContent(x+i, y, r, nil, style)
		i++
	}
}

func (ed *Editor) modeString() string {
	switch ed.mode {
	case ModeInput:
		return "INPUT"
	case ModeHelp:
		return "HELP"
	}
	d := ed.active()
	if d == nil {
		return ""
	}
	switch d.Controller().Gesture() {
	case interact.GestureDrag:
		return "MOVE"
	case interact.GestureResize:
		return "RESIZE"
	case interact.GestureLabel:
		return "LABEL"
	case interact.GestureConnect:
		return "CONNECT"
	}
	return ""
}

func (ed *Editor) helpString() string {
	switch ed.mode {
	case ModeInput:
		return "Type text  Enter:Confirm  Esc:Cancel"
	case ModeHelp:
		return "Any key:Close"
	}
	if d := ed.active(); d != nil && d.Controller().Gesture() == interact.GestureConnect {
		return "Click:Target  Esc:Cancel"
	}
	return "a:Add  p/P/l:Kind  e:Rename  d:Delete  t:Transition  x:Resize  Tab:Next  s:Save  ?:Help  q:Quit"
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:max(maxLen, 0)])
	}
	return string(r[:maxLen-3]) + "..."
}
