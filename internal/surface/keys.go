package surface

import (
	"github.com/gdamore/tcell/v2"
)

// ControlByte maps a letter to its control byte (Ctrl-A → 0x01).
func ControlByte(r rune) byte {
	return byte(r) & 0x1f
}

// IsChord reports whether ev is the activator chord Ctrl-<activator>.
// tcell reports Ctrl-letter as KeyCtrlA..KeyCtrlZ (offsets from
// KeyCtrlSpace), never as a rune, but the rune form is accepted too
// for terminals that deliver one.
func IsChord(ev *tcell.EventKey, activator rune) bool {
	if ev.Modifiers()&tcell.ModCtrl == 0 {
		return false
	}
	if k := ev.Key(); k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return 'a'+rune(k-tcell.KeyCtrlA) == activator
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == activator
}

// EncodeKey converts a tcell key event into the byte sequence a shell
// expects on its PTY. A nil return means the key has no encoding and
// should be dropped.
func EncodeKey(ev *tcell.EventKey) []byte {
	switch ev.Key() {
	case tcell.KeyRune:
		buf := []byte(string(ev.Rune()))
		if ev.Modifiers()&tcell.ModAlt != 0 {
			return append([]byte{0x1b}, buf...)
		}
		return buf
	case tcell.KeyEnter:
		return []byte{'\r'}
	case tcell.KeyTab:
		return []byte{'\t'}
	case tcell.KeyBacktab:
		return []byte("\x1b[Z")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return []byte{0x7f}
	case tcell.KeyEscape:
		return []byte{0x1b}
	case tcell.KeyUp:
		return []byte("\x1b[A")
	case tcell.KeyDown:
		return []byte("\x1b[B")
	case tcell.KeyRight:
		return []byte("\x1b[C")
	case tcell.KeyLeft:
		return []byte("\x1b[D")
	case tcell.KeyHome:
		return []byte("\x1b[H")
	case tcell.KeyEnd:
		return []byte("\x1b[F")
	case tcell.KeyInsert:
		return []byte("\x1b[2~")
	case tcell.KeyDelete:
		return []byte("\x1b[3~")
	case tcell.KeyPgUp:
		return []byte("\x1b[5~")
	case tcell.KeyPgDn:
		return []byte("\x1b[6~")
	case tcell.KeyF1:
		return []byte("\x1bOP")
	case tcell.KeyF2:
		return []byte("\x1bOQ")
	case tcell.KeyF3:
		return []byte("\x1bOR")
	case tcell.KeyF4:
		return []byte("\x1bOS")
	case tcell.KeyF5:
		return []byte("\x1b[15~")
	case tcell.KeyF6:
		return []byte("\x1b[17~")
	case tcell.KeyF7:
		return []byte("\x1b[18~")
	case tcell.KeyF8:
		return []byte("\x1b[19~")
	case tcell.KeyF9:
		return []byte("\x1b[20~")
	case tcell.KeyF10:
		return []byte("\x1b[21~")
	case tcell.KeyF11:
		return []byte("\x1b[23~")
	case tcell.KeyF12:
		return []byte("\x1b[24~")
	}
	// Control keys arrive as offsets from KeyCtrlSpace; the offset is
	// the control byte itself (Ctrl-A → 0x01, Ctrl-_ → 0x1f).
	if k := ev.Key(); k >= tcell.KeyCtrlSpace && k <= tcell.KeyCtrlUnderscore {
		return []byte{byte(k - tcell.KeyCtrlSpace)}
	}
	return nil
}
