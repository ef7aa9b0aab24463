// Package mux is the keyboard state machine: it decides, one key at a
// time, whether input goes to the focused session or is interpreted as
// a multiplexer command behind the activator chord.
//
// Transitions are pure: Step never touches a pane or a process, it
// returns effects for the caller to apply. That keeps the machine
// testable without a terminal.
package mux

import "fmt"

// Phase is the machine's input-routing state.
type Phase int

const (
	// PhaseNormal forwards every non-chord key to the focused session.
	PhaseNormal Phase = iota
	// PhasePrefix interprets the next key as a command.
	PhasePrefix
	// PhasePost swallows exactly one key before returning to normal.
	PhasePost
)

func (p Phase) String() string {
	switch p {
	case PhaseNormal:
		return "normal"
	case PhasePrefix:
		return "prefix"
	case PhasePost:
		return "post"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Code classifies the non-rune keys the machine cares about.
type Code int

const (
	// CodeRune is a printable key; Key.Rune carries it.
	CodeRune Code = iota
	// CodeLeft is the left arrow.
	CodeLeft
	// CodeRight is the right arrow.
	CodeRight
	// CodeOther is any other key.
	CodeOther
)

// Key is one keyboard event as the machine sees it. The caller sets
// Chord when the event is the activator chord Ctrl-<activator>.
type Key struct {
	Chord bool
	Code  Code
	Rune  rune
}

// State is the machine's mutable state: the phase plus the focus
// pointer over the ordered session list.
type State struct {
	Phase Phase
	Focus int
	Count int
}

// Effect is an instruction for the event loop to carry out.
type Effect interface{ muxEffect() }

// DisableInput stops delivery of keys to the focused session.
type DisableInput struct{}

// EnableInput resumes delivery of keys to the focused session.
type EnableInput struct{}

// Forward delivers the triggering key to the focused session.
type Forward struct{}

// InjectChord sends the activator's literal control byte to the
// focused session.
type InjectChord struct{}

// FocusChange moves focus between sessions.
type FocusChange struct {
	From int
	To   int
}

// ResetScroll snaps the named pane back to live output.
type ResetScroll struct{ Index int }

// EnterScroll puts the named pane into scroll mode.
type EnterScroll struct{ Index int }

// Quit terminates the whole program.
type Quit struct{}

func (DisableInput) muxEffect() {}
func (EnableInput) muxEffect()  {}
func (Forward) muxEffect()      {}
func (InjectChord) muxEffect()  {}
func (FocusChange) muxEffect()  {}
func (ResetScroll) muxEffect()  {}
func (EnterScroll) muxEffect()  {}
func (Quit) muxEffect()         {}

// Machine holds the activator configuration. The state itself is
// passed through Step so transitions stay pure.
type Machine struct {
	Activator rune
}

// Step applies one key to the state and returns the effects to apply.
func (m Machine) Step(st State, k Key) (State, []Effect) {
	switch st.Phase {
	case PhaseNormal:
		if k.Chord {
			st.Phase = PhasePrefix
			return st, []Effect{DisableInput{}}
		}
		return st, []Effect{Forward{}}

	case PhasePrefix:
		return m.stepPrefix(st, k)

	case PhasePost:
		if k.Chord {
			st.Phase = PhasePrefix
			return st, []Effect{DisableInput{}}
		}
		// The one-key swallow: input comes back on, but this key is
		// consumed and never reaches the session.
		st.Phase = PhaseNormal
		return st, []Effect{EnableInput{}}
	}
	return st, nil
}

func (m Machine) stepPrefix(st State, k Key) (State, []Effect) {
	st.Phase = PhasePost

	switch {
	case k.Chord, k.Code == CodeRune && k.Rune == m.Activator:
		return st, []Effect{InjectChord{}}

	case k.Code == CodeLeft:
		from := st.Focus
		st.Focus = (st.Focus - 1 + st.Count) % st.Count
		return st, []Effect{ResetScroll{Index: from}, FocusChange{From: from, To: st.Focus}}

	case k.Code == CodeRight, k.Code == CodeRune && k.Rune == ' ':
		from := st.Focus
		st.Focus = (st.Focus + 1) % st.Count
		return st, []Effect{ResetScroll{Index: from}, FocusChange{From: from, To: st.Focus}}

	case k.Code == CodeRune && k.Rune == 'v':
		return st, []Effect{EnterScroll{Index: st.Focus}}

	case k.Code == CodeRune && k.Rune == 'k':
		return st, []Effect{Quit{}}
	}

	// Unrecognized command: no effect, but the state still advances.
	return st, nil
}
