// Package term provides the in-process terminal substrate for panes:
// PTY allocation, an ANSI escape interpreter, and a cell screen buffer
// with integrated scrollback.
//
// Nothing in this package locks. Screens are mutated only from the
// application event loop, which serializes PTY output, keyboard input,
// and timer callbacks onto a single goroutine.
package term

// Color is a terminal color: the default color, one of the 256 indexed
// colors, or a direct RGB value.
type Color struct {
	R, G, B uint8
	Index   int // -1 for RGB, 0-255 for indexed
	Default bool
}

// DefaultColor selects the terminal's default foreground or background.
var DefaultColor = Color{Default: true}

// IndexedColor returns a color from the 256-color palette.
func IndexedColor(index int) Color {
	if index < 0 {
		index = 0
	}
	if index > 255 {
		index = 255
	}
	return Color{Index: index}
}

// RGBColor returns a direct-color value.
func RGBColor(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, Index: -1}
}

// Attr is a bit set of text attributes.
type Attr uint8

const (
	AttrBold Attr = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrReverse
	AttrStrike
)

// Cell is one character cell.
type Cell struct {
	Rune rune
	FG   Color
	BG   Color
	Attr Attr
}

func emptyCell() Cell {
	return Cell{Rune: ' ', FG: DefaultColor, BG: DefaultColor}
}

type line struct {
	cells []Cell
}

func newLine(width int) *line {
	l := &line{cells: make([]Cell, width)}
	l.clear(0, width)
	return l
}

func (l *line) clear(from, to int) {
	if from < 0 {
		from = 0
	}
	if to > len(l.cells) {
		to = len(l.cells)
	}
	for i := from; i < to; i++ {
		l.cells[i] = emptyCell()
	}
}

// pen is the brush state applied to newly written cells.
type pen struct {
	fg   Color
	bg   Color
	attr Attr
}

func defaultPen() pen {
	return pen{fg: DefaultColor, bg: DefaultColor}
}

// Screen is a terminal screen buffer plus scrollback. Lines scrolled
// off the top of the screen are retained (up to the scrollback limit)
// and exposed through a view offset for scroll mode.
type Screen struct {
	width  int
	height int
	lines  []*line

	history    []*line
	scrollback int
	view       int // lines scrolled back into history; 0 = live

	cursorX int
	cursorY int

	scrollTop    int
	scrollBottom int
	autoWrap     bool

	cur   pen
	saved struct {
		x, y int
		pen  pen
	}
}

// DefaultScrollback is the scrollback retained per pane when the
// configuration does not say otherwise.
const DefaultScrollback = 2000

// NewScreen creates a screen buffer. Width and height must be at least
// 1; scrollback <= 0 selects DefaultScrollback.
func NewScreen(width, height, scrollback int) *Screen {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if scrollback <= 0 {
		scrollback = DefaultScrollback
	}
	s := &Screen{
		width:        width,
		height:       height,
		lines:        make([]*line, height),
		scrollback:   scrollback,
		scrollBottom: height - 1,
		autoWrap:     true,
		cur:          defaultPen(),
	}
	for i := range s.lines {
		s.lines[i] = newLine(width)
	}
	return s
}

// Width returns the screen width in cells.
func (s *Screen) Width() int { return s.width }

// Height returns the screen height in cells.
func (s *Screen) Height() int { return s.height }

// Cursor returns the cursor position.
func (s *Screen) Cursor() (x, y int) { return s.cursorX, s.cursorY }

// Cell returns the live cell at (x, y), ignoring the view offset.
func (s *Screen) Cell(x, y int) Cell {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return emptyCell()
	}
	return s.lines[y].cells[x]
}

// ViewCell returns the cell visible at (x, y) under the current view
// offset: scrolled-back history first, then the top of the live screen.
func (s *Screen) ViewCell(x, y int) Cell {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return emptyCell()
	}
	if y < s.view {
		h := s.history[len(s.history)-s.view+y]
		if x < len(h.cells) {
			return h.cells[x]
		}
		return emptyCell()
	}
	return s.Cell(x, y-s.view)
}

// Scrolled reports whether the view is offset into history.
func (s *Screen) Scrolled() bool { return s.view > 0 }

// ScrollView moves the view offset by delta lines (positive = further
// back in history), clamped to the retained history.
func (s *Screen) ScrollView(delta int) {
	s.view += delta
	if s.view < 0 {
		s.view = 0
	}
	if s.view > len(s.history) {
		s.view = len(s.history)
	}
}

// ResetView returns the view to the live screen.
func (s *Screen) ResetView() { s.view = 0 }

// HistoryLen returns the number of retained scrollback lines.
func (s *Screen) HistoryLen() int { return len(s.history) }

// WriteRune writes r at the cursor with the current pen and advances,
// wrapping and scrolling as needed.
func (s *Screen) WriteRune(r rune) {
	if s.cursorX >= s.width {
		if s.autoWrap {
			s.cursorX = 0
			s.LineFeed()
		} else {
			s.cursorX = s.width - 1
		}
	}
	if s.cursorY < 0 || s.cursorY >= s.height {
		return
	}
	s.lines[s.cursorY].cells[s.cursorX] = Cell{Rune: r, FG: s.cur.fg, BG: s.cur.bg, Attr: s.cur.attr}
	s.cursorX++
}

// CarriageReturn moves the cursor to column 0.
func (s *Screen) CarriageReturn() { s.cursorX = 0 }

// LineFeed moves the cursor down, scrolling the region when it is at
// the bottom margin.
func (s *Screen) LineFeed() {
	if s.cursorY >= s.scrollBottom {
		s.scrollUp(1)
	} else {
		s.cursorY++
	}
}

// ReverseLineFeed moves the cursor up, scrolling down at the top margin.
func (s *Screen) ReverseLineFeed() {
	if s.cursorY <= s.scrollTop {
		s.scrollDown(1)
	} else {
		s.cursorY--
	}
}

// MoveCursor moves the cursor to (x, y), clamped to the screen.
func (s *Screen) MoveCursor(x, y int) {
	s.cursorX = clamp(x, 0, s.width-1)
	s.cursorY = clamp(y, 0, s.height-1)
}

// MoveCursorBy moves the cursor relative to its position.
func (s *Screen) MoveCursorBy(dx, dy int) {
	s.MoveCursor(s.cursorX+dx, s.cursorY+dy)
}

// scrollUp scrolls the scroll region up n lines. Lines leaving a
// full-width top margin enter scrollback.
func (s *Screen) scrollUp(n int) {
	top, bottom := s.scrollTop, s.scrollBottom
	if n <= 0 || top > bottom {
		return
	}
	if n > bottom-top+1 {
		n = bottom - top + 1
	}
	if top == 0 {
		for i := 0; i < n; i++ {
			s.pushHistory(s.lines[top+i])
		}
	}
	for y := top; y <= bottom-n; y++ {
		s.lines[y] = s.lines[y+n]
	}
	for y := bottom - n + 1; y <= bottom; y++ {
		s.lines[y] = newLine(s.width)
	}
}

func (s *Screen) scrollDown(n int) {
	top, bottom := s.scrollTop, s.scrollBottom
	if n <= 0 || top > bottom {
		return
	}
	if n > bottom-top+1 {
		n = bottom - top + 1
	}
	for y := bottom; y >= top+n; y-- {
		s.lines[y] = s.lines[y-n]
	}
	for y := top; y < top+n; y++ {
		s.lines[y] = newLine(s.width)
	}
}

func (s *Screen) pushHistory(l *line) {
	cp := &line{cells: make([]Cell, len(l.cells))}
	copy(cp.cells, l.cells)
	s.history = append(s.history, cp)
	if len(s.history) > s.scrollback {
		s.history = s.history[len(s.history)-s.scrollback:]
	}
}

// SetScrollRegion sets the scroll margins (0-indexed, inclusive).
func (s *Screen) SetScrollRegion(top, bottom int) {
	top = clamp(top, 0, s.height-1)
	bottom = clamp(bottom, 0, s.height-1)
	if top >= bottom {
		return
	}
	s.scrollTop = top
	s.scrollBottom = bottom
	s.cursorX = 0
	s.cursorY = 0
}

// SetAutoWrap enables or disables wrapping at the right margin.
func (s *Screen) SetAutoWrap(on bool) { s.autoWrap = on }

// ClearScreen erases cells per the ED parameter: below, above, or all.
func (s *Screen) ClearScreen(mode int) {
	switch mode {
	case 1: // cursor to top
		for y := 0; y < s.cursorY; y++ {
			s.lines[y].clear(0, s.width)
		}
		s.lines[s.cursorY].clear(0, s.cursorX+1)
	case 2, 3: // everything
		for _, l := range s.lines {
			l.clear(0, s.width)
		}
	default: // cursor to bottom
		s.lines[s.cursorY].clear(s.cursorX, s.width)
		for y := s.cursorY + 1; y < s.height; y++ {
			s.lines[y].clear(0, s.width)
		}
	}
}

// ClearLine erases cells on the cursor line per the EL parameter.
func (s *Screen) ClearLine(mode int) {
	switch mode {
	case 1:
		s.lines[s.cursorY].clear(0, s.cursorX+1)
	case 2:
		s.lines[s.cursorY].clear(0, s.width)
	default:
		s.lines[s.cursorY].clear(s.cursorX, s.width)
	}
}

// InsertLines inserts n blank lines at the cursor inside the region.
func (s *Screen) InsertLines(n int) {
	if s.cursorY < s.scrollTop || s.cursorY > s.scrollBottom {
		return
	}
	oldTop := s.scrollTop
	s.scrollTop = s.cursorY
	s.scrollDown(n)
	s.scrollTop = oldTop
}

// DeleteLines deletes n lines at the cursor inside the region.
func (s *Screen) DeleteLines(n int) {
	if s.cursorY < s.scrollTop || s.cursorY > s.scrollBottom {
		return
	}
	oldTop := s.scrollTop
	s.scrollTop = s.cursorY
	// Lines deleted mid-screen are discarded, not history.
	if s.cursorY != 0 {
		s.scrollUpNoHistory(n)
	} else {
		s.scrollUp(n)
	}
	s.scrollTop = oldTop
}

func (s *Screen) scrollUpNoHistory(n int) {
	top, bottom := s.scrollTop, s.scrollBottom
	if n <= 0 || top > bottom {
		return
	}
	if n > bottom-top+1 {
		n = bottom - top + 1
	}
	for y := top; y <= bottom-n; y++ {
		s.lines[y] = s.lines[y+n]
	}
	for y := bottom - n + 1; y <= bottom; y++ {
		s.lines[y] = newLine(s.width)
	}
}

// InsertChars inserts n blank cells at the cursor, shifting right.
func (s *Screen) InsertChars(n int) {
	l := s.lines[s.cursorY]
	if n <= 0 || s.cursorX >= s.width {
		return
	}
	if n > s.width-s.cursorX {
		n = s.width - s.cursorX
	}
	for x := s.width - 1; x >= s.cursorX+n; x-- {
		l.cells[x] = l.cells[x-n]
	}
	l.clear(s.cursorX, s.cursorX+n)
}

// DeleteChars deletes n cells at the cursor, shifting left.
func (s *Screen) DeleteChars(n int) {
	l := s.lines[s.cursorY]
	if n <= 0 || s.cursorX >= s.width {
		return
	}
	if n > s.width-s.cursorX {
		n = s.width - s.cursorX
	}
	for x := s.cursorX; x < s.width-n; x++ {
		l.cells[x] = l.cells[x+n]
	}
	l.clear(s.width-n, s.width)
}

// EraseChars blanks n cells at the cursor without shifting.
func (s *Screen) EraseChars(n int) {
	s.lines[s.cursorY].clear(s.cursorX, s.cursorX+n)
}

// Pen accessors used by the parser's SGR handling.

// SetForeground sets the pen foreground.
func (s *Screen) SetForeground(c Color) { s.cur.fg = c }

// SetBackground sets the pen background.
func (s *Screen) SetBackground(c Color) { s.cur.bg = c }

// AddAttr sets attribute bits on the pen.
func (s *Screen) AddAttr(a Attr) { s.cur.attr |= a }

// ClearAttr clears attribute bits on the pen.
func (s *Screen) ClearAttr(a Attr) { s.cur.attr &^= a }

// ResetPen restores the default pen.
func (s *Screen) ResetPen() { s.cur = defaultPen() }

// SaveCursor records cursor position and pen for RestoreCursor.
func (s *Screen) SaveCursor() {
	s.saved.x, s.saved.y = s.cursorX, s.cursorY
	s.saved.pen = s.cur
}

// RestoreCursor restores the state recorded by SaveCursor.
func (s *Screen) RestoreCursor() {
	s.cursorX, s.cursorY = s.saved.x, s.saved.y
	s.cur = s.saved.pen
}

// Resize grows or shrinks the screen, preserving content where it fits.
func (s *Screen) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	next := make([]*line, height)
	for y := 0; y < height; y++ {
		next[y] = newLine(width)
		if y < len(s.lines) {
			copy(next[y].cells, s.lines[y].cells)
		}
	}
	s.lines = next
	s.width = width
	s.height = height
	s.scrollTop = 0
	s.scrollBottom = height - 1
	s.cursorX = clamp(s.cursorX, 0, width-1)
	s.cursorY = clamp(s.cursorY, 0, height-1)
	s.view = 0
}

// Reset returns the screen to its initial state. Scrollback survives.
func (s *Screen) Reset() {
	for _, l := range s.lines {
		l.clear(0, s.width)
	}
	s.cursorX = 0
	s.cursorY = 0
	s.scrollTop = 0
	s.scrollBottom = s.height - 1
	s.autoWrap = true
	s.cur = defaultPen()
	s.view = 0
}

// Text returns the live screen contents as newline-joined rows.
// Intended for tests and diagnostics.
func (s *Screen) Text() string {
	buf := make([]rune, 0, s.height*(s.width+1))
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			buf = append(buf, s.lines[y].cells[x].Rune)
		}
		if y < s.height-1 {
			buf = append(buf, '\n')
		}
	}
	return string(buf)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
