package app

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/gridmux/internal/layout"
	"github.com/dshills/gridmux/internal/mux"
	"github.com/dshills/gridmux/internal/session"
	"github.com/dshills/gridmux/internal/surface"
)

// loop is the single goroutine that mutates program state. Keyboard
// events, session output, exits, and restart timers all funnel here.
func (a *App) loop() error {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	a.surf.ChannelEvents(events, quit)

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return ErrQuit
			}
			if err := a.handleTerminal(ev); err != nil {
				return err
			}
		case ev := <-a.manager.Events():
			if err := a.handleSession(ev); err != nil {
				return err
			}
		}
		a.surf.Render()
	}
}

func (a *App) handleTerminal(ev tcell.Event) error {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev)
	case *tcell.EventResize:
		a.relayout()
	}
	return nil
}

func (a *App) handleKey(ev *tcell.EventKey) error {
	chord := surface.IsChord(ev, a.cfg.Activator)

	// Scroll mode owns the keyboard for the focused pane, but only
	// while the machine is in its normal phase: the chord always
	// breaks through, and a pending prefix command must reach the
	// machine, not the scroll view.
	if p := a.panes[a.state.Focus]; p.Scrolling() && !chord && a.state.Phase == mux.PhaseNormal {
		a.handleScrollKey(p, ev)
		return nil
	}

	st, effects := a.machine.Step(a.state, muxKey(ev, chord))
	a.state = st
	for _, effect := range effects {
		if err := a.apply(effect, ev); err != nil {
			return err
		}
	}
	return nil
}

// muxKey reduces a tcell event to the shape the state machine reads.
func muxKey(ev *tcell.EventKey, chord bool) mux.Key {
	k := mux.Key{Chord: chord, Code: mux.CodeOther}
	switch ev.Key() {
	case tcell.KeyRune:
		k.Code = mux.CodeRune
		k.Rune = ev.Rune()
	case tcell.KeyLeft:
		k.Code = mux.CodeLeft
	case tcell.KeyRight:
		k.Code = mux.CodeRight
	}
	return k
}

func (a *App) apply(effect mux.Effect, ev *tcell.EventKey) error {
	switch effect := effect.(type) {
	case mux.DisableInput:
		a.inputOn = false
	case mux.EnableInput:
		a.inputOn = true
	case mux.Forward:
		if a.inputOn {
			if data := surface.EncodeKey(ev); data != nil {
				a.manager.Write(data)
			}
		}
	case mux.InjectChord:
		a.manager.Write([]byte{surface.ControlByte(a.cfg.Activator)})
	case mux.FocusChange:
		a.panes[effect.From].SetFocused(false)
		a.panes[effect.To].SetFocused(true)
		a.manager.SetFocus(effect.To)
		a.log.WithField("focus", effect.To).Debug("focus moved")
	case mux.ResetScroll:
		a.panes[effect.Index].ResetScroll()
	case mux.EnterScroll:
		a.panes[effect.Index].EnterScroll()
	case mux.Quit:
		return ErrQuit
	}
	return nil
}

// handleScrollKey services a pane in scroll mode.
func (a *App) handleScrollKey(p *surface.Pane, ev *tcell.EventKey) {
	_, page := p.ContentSize()
	switch ev.Key() {
	case tcell.KeyUp:
		p.ScrollBy(1)
	case tcell.KeyDown:
		p.ScrollBy(-1)
	case tcell.KeyPgUp:
		p.ScrollBy(page)
	case tcell.KeyPgDn:
		p.ScrollBy(-page)
	case tcell.KeyEscape:
		p.ResetScroll()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'k':
			p.ScrollBy(1)
		case 'j':
			p.ScrollBy(-1)
		case 'q':
			p.ResetScroll()
		}
	}
}

func (a *App) handleSession(ev session.Event) error {
	switch ev := ev.(type) {
	case session.OutputEvent:
		a.manager.HandleOutput(ev)
	case session.ExitEvent:
		shutdown := a.manager.HandleExit(ev)
		a.setExitStatus(ev)
		if shutdown {
			return ErrQuit
		}
	case session.RestartEvent:
		a.manager.HandleRestart(ev)
		if s := a.manager.Session(ev.Index); s != nil && s.State() == session.StateRunning {
			a.panes[ev.Index].SetStatus(surface.StatusRunning)
		}
	}
	return nil
}

func (a *App) setExitStatus(ev session.ExitEvent) {
	s := a.manager.Session(ev.Index)
	if s == nil || s.State() == session.StateRestarting {
		return
	}
	if ev.Code == 0 {
		a.panes[ev.Index].SetStatus(surface.StatusExitOK)
	} else {
		a.panes[ev.Index].SetStatus(surface.StatusExitFail)
	}
}

// relayout recomputes rectangles for the new terminal size. When the
// screen shrinks below what the tree needs, the old layout stays until
// it fits again.
func (a *App) relayout() {
	width, height := a.surf.Size()
	rects, err := layout.Assign(a.tree, layout.Rect{W: width, H: height})
	if err != nil {
		a.log.WithError(err).Warn("resize ignored")
		return
	}
	for i, p := range a.panes {
		p.Resize(rects[i])
		if s := a.manager.Session(i); s != nil {
			if err := s.ResizePTY(); err != nil {
				a.log.WithError(err).Warn("pty resize failed")
			}
		}
	}
}
