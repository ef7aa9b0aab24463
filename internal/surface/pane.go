package surface

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/gridmux/internal/layout"
	"github.com/dshills/gridmux/internal/term"
)

// Status is the run state shown in a pane's title bar.
type Status int

const (
	// StatusRunning means the pane's process is alive.
	StatusRunning Status = iota
	// StatusExitOK means the process exited with code 0.
	StatusExitOK
	// StatusExitFail means the process exited with a nonzero code.
	StatusExitFail
)

// Pane is one rectangle of the surface: a one-row title bar above an
// emulated terminal screen fed by a session's PTY output.
type Pane struct {
	rect      layout.Rect
	label     string
	focused   bool
	scrolling bool
	status    Status

	screen *term.Screen
	parser *term.Parser
}

func newPane(rect layout.Rect, label string, scrollback int) *Pane {
	cols, rows := contentSize(rect)
	screen := term.NewScreen(cols, rows, scrollback)
	return &Pane{
		rect:   rect,
		label:  label,
		screen: screen,
		parser: term.NewParser(screen),
	}
}

// contentSize is the pane area left for process output: the rectangle
// minus the title bar. One-row panes give up the bar instead.
func contentSize(rect layout.Rect) (cols, rows int) {
	if rect.H >= 2 {
		return rect.W, rect.H - 1
	}
	return rect.W, rect.H
}

// ContentSize returns the emulated screen size in cells.
func (p *Pane) ContentSize() (cols, rows int) {
	return contentSize(p.rect)
}

// Rect returns the pane's outer rectangle.
func (p *Pane) Rect() layout.Rect { return p.rect }

// Feed interprets process output into the pane's screen.
func (p *Pane) Feed(data []byte) {
	p.parser.Parse(data)
}

// FeedString interprets s into the pane's screen.
func (p *Pane) FeedString(s string) {
	p.parser.ParseString(s)
}

// SetLabel sets the title-bar text.
func (p *Pane) SetLabel(label string) { p.label = label }

// SetTitleFunc registers a callback for titles the process sets via
// OSC escape sequences.
func (p *Pane) SetTitleFunc(fn func(string)) { p.parser.SetTitleFunc(fn) }

// SetFocused toggles the focus visual on the title bar.
func (p *Pane) SetFocused(focused bool) { p.focused = focused }

// SetStatus records the process state for the title bar.
func (p *Pane) SetStatus(status Status) { p.status = status }

// EnterScroll puts the pane into scroll mode.
func (p *Pane) EnterScroll() { p.scrolling = true }

// Scrolling reports whether the pane is in scroll mode.
func (p *Pane) Scrolling() bool { return p.scrolling }

// ScrollBy moves the scroll view; positive is further back.
func (p *Pane) ScrollBy(lines int) { p.screen.ScrollView(lines) }

// ResetScroll leaves scroll mode and snaps the view back to live
// output. Used when focus moves away from the pane.
func (p *Pane) ResetScroll() {
	p.scrolling = false
	p.screen.ResetView()
}

// Resize moves the pane to a new rectangle, resizing its screen.
func (p *Pane) Resize(rect layout.Rect) {
	p.rect = rect
	cols, rows := contentSize(rect)
	p.screen.Resize(cols, rows)
}

// Title bar styles.
var (
	styleBarFocused = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGreen)
	styleBarBlurred = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGray)
	styleBarScroll  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
	styleBarExitOK  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorTeal)
	styleBarFailed  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorRed)
)

func (p *Pane) barStyle() tcell.Style {
	switch {
	case p.scrolling:
		return styleBarScroll
	case p.status == StatusExitFail:
		return styleBarFailed
	case p.status == StatusExitOK:
		return styleBarExitOK
	case p.focused:
		return styleBarFocused
	default:
		return styleBarBlurred
	}
}

func (p *Pane) barText() string {
	text := p.label
	if p.scrolling {
		text += " [scroll]"
	}
	if p.focused {
		return fmt.Sprintf(" %s ", text)
	}
	return fmt.Sprintf(" %s", text)
}

// draw paints the pane onto the tcell screen.
func (p *Pane) draw(ts tcell.Screen) {
	y := p.rect.Y
	if p.rect.H >= 2 {
		p.drawBar(ts, y)
		y++
	}
	_, rows := contentSize(p.rect)
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < p.rect.W; cx++ {
			cell := p.screen.ViewCell(cx, cy)
			ts.SetContent(p.rect.X+cx, y+cy, cell.Rune, nil, cellStyle(cell))
		}
	}
}

func (p *Pane) drawBar(ts tcell.Screen, y int) {
	style := p.barStyle()
	text := []rune(p.barText())
	for x := 0; x < p.rect.W; x++ {
		r := ' '
		if x < len(text) {
			r = text[x]
		}
		ts.SetContent(p.rect.X+x, y, r, nil, style)
	}
}

// cellStyle converts an emulated cell to a tcell style.
func cellStyle(c term.Cell) tcell.Style {
	style := tcell.StyleDefault.
		Foreground(tcellColor(c.FG)).
		Background(tcellColor(c.BG))
	if c.Attr&term.AttrBold != 0 {
		style = style.Bold(true)
	}
	if c.Attr&term.AttrDim != 0 {
		style = style.Dim(true)
	}
	if c.Attr&term.AttrItalic != 0 {
		style = style.Italic(true)
	}
	if c.Attr&term.AttrUnderline != 0 {
		style = style.Underline(true)
	}
	if c.Attr&term.AttrBlink != 0 {
		style = style.Blink(true)
	}
	if c.Attr&term.AttrReverse != 0 {
		style = style.Reverse(true)
	}
	if c.Attr&term.AttrStrike != 0 {
		style = style.StrikeThrough(true)
	}
	return style
}

func tcellColor(c term.Color) tcell.Color {
	switch {
	case c.Default:
		return tcell.ColorDefault
	case c.Index >= 0:
		return tcell.PaletteColor(c.Index)
	default:
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	}
}
