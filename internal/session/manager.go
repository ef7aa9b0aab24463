package session

import (
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dshills/gridmux/internal/spec"
	"github.com/dshills/gridmux/internal/term"
)

// Event is posted to the manager's channel by session goroutines and
// timers. The app loop is the only consumer; all state changes happen
// there.
type Event interface{ sessionEvent() }

// OutputEvent carries PTY output from one session.
type OutputEvent struct {
	Index int
	Data  []byte
}

// ExitEvent reports that a session's process finished.
type ExitEvent struct {
	Index int
	Code  int
	Err   error // non-nil when the spawn itself failed
}

// RestartEvent fires when a delayed respawn comes due.
type RestartEvent struct {
	Index int
}

func (OutputEvent) sessionEvent()  {}
func (ExitEvent) sessionEvent()    {}
func (RestartEvent) sessionEvent() {}

// respawnFloor keeps a command whose spawn itself fails from spinning
// the CPU. Ordinary exits restart as configured, immediately when no
// delay was given.
const respawnFloor = time.Second

// Manager supervises all sessions of a run.
type Manager struct {
	shell    string
	wait     bool
	log      logrus.FieldLogger
	events   chan Event
	sessions []*Session
	focus    int
	finished int
	closing  bool
}

// NewManager creates a manager that runs commands under shell -c.
// When wait is set the program stays up after every session exits.
func NewManager(shell string, wait bool, log logrus.FieldLogger) *Manager {
	return &Manager{
		shell:  shell,
		wait:   wait,
		log:    log,
		events: make(chan Event, 64),
	}
}

// Events returns the channel session goroutines report on.
func (m *Manager) Events() <-chan Event { return m.events }

// Sessions returns all sessions in pane order.
func (m *Manager) Sessions() []*Session { return m.sessions }

// Session returns the session at index, or nil.
func (m *Manager) Session(index int) *Session {
	if index < 0 || index >= len(m.sessions) {
		return nil
	}
	return m.sessions[index]
}

// Focus returns the index of the focused session.
func (m *Manager) Focus() int { return m.focus }

// Provision creates one session per leaf command, in traversal order,
// and spawns them all. The leaf carrying the focus option (or the
// first leaf) becomes the focused session.
func (m *Manager) Provision(leaves []*spec.Command, panes []Pane) error {
	if len(leaves) != len(panes) {
		return fmt.Errorf("session: %d commands but %d panes", len(leaves), len(panes))
	}
	for i, leaf := range leaves {
		delay := 0
		if leaf.Delay != nil {
			delay = *leaf.Delay
		}
		s := &Session{
			Index:   i,
			ID:      uuid.New(),
			Command: leaf.Command,
			Title:   leaf.Label(),
			Restart: leaf.Restart,
			Delay:   delay,
			Focus:   leaf.Focus,
			pane:    panes[i],
		}
		m.sessions = append(m.sessions, s)
		if leaf.Focus {
			m.focus = i
		}
	}
	for _, s := range m.sessions {
		m.spawn(s)
	}
	return nil
}

// spawn starts the session's process and its reader goroutine. Spawn
// failures are reported like exits so the restart path applies.
func (m *Manager) spawn(s *Session) {
	cols, rows := s.pane.ContentSize()
	cmd := exec.Command(m.shell, "-c", s.Command)
	cmd.Env = append(cmd.Environ(), "TERM=xterm-256color")

	pty, err := term.StartPTY(cmd, cols, rows)
	if err != nil {
		m.log.WithError(err).WithField("command", s.Command).Error("spawn failed")
		s.state = StateExited
		s.exitCode = -1
		go func(idx int) {
			m.events <- ExitEvent{Index: idx, Code: -1, Err: err}
		}(s.Index)
		return
	}

	s.cmd = cmd
	s.pty = pty
	s.state = StateRunning
	m.log.WithFields(logrus.Fields{
		"session": s.ID,
		"index":   s.Index,
		"command": s.Command,
	}).Info("session started")

	go m.read(s.Index, pty, cmd)
}

// read pumps PTY output into the event channel until the process
// exits, then reports the exit code.
func (m *Manager) read(index int, pty term.PTY, cmd *exec.Cmd) {
	buf := make([]byte, 4096)
	for {
		n, err := pty.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			m.events <- OutputEvent{Index: index, Data: data}
		}
		if err != nil {
			break
		}
	}

	code := 0
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			code = -1
		}
	}
	pty.Close()
	m.events <- ExitEvent{Index: index, Code: code}
}

// HandleOutput feeds output into the session's pane.
func (m *Manager) HandleOutput(ev OutputEvent) {
	if s := m.Session(ev.Index); s != nil {
		s.pane.Feed(ev.Data)
	}
}

// HandleExit records the exit, writes the banner into the pane, and
// schedules a restart when the session asks for one. It returns true
// when the whole program should shut down: every session has finished
// for good and wait mode is off.
func (m *Manager) HandleExit(ev ExitEvent) (shutdown bool) {
	s := m.Session(ev.Index)
	if s == nil {
		return false
	}
	s.state = StateExited
	s.exitCode = ev.Code
	m.log.WithFields(logrus.Fields{
		"session": s.ID,
		"code":    ev.Code,
	}).Info("session exited")

	s.pane.Feed(exitBanner(ev.Code, ev.Err))

	if s.Restart && !m.closing {
		s.state = StateRestarting
		delay := time.Duration(s.Delay) * time.Second
		if ev.Err != nil && delay < respawnFloor {
			delay = respawnFloor
		}
		idx := s.Index
		if delay == 0 {
			go func() { m.events <- RestartEvent{Index: idx} }()
			return false
		}
		s.pane.Feed([]byte(fmt.Sprintf("\x1b[33m[gridmux] restarting in %s\x1b[0m\r\n", delay)))
		time.AfterFunc(delay, func() {
			m.events <- RestartEvent{Index: idx}
		})
		return false
	}

	m.finished++
	if m.finished >= len(m.sessions) && !m.wait {
		return true
	}
	return false
}

// HandleRestart respawns a session whose delay elapsed.
func (m *Manager) HandleRestart(ev RestartEvent) {
	s := m.Session(ev.Index)
	if s == nil || s.state != StateRestarting || m.closing {
		return
	}
	m.spawn(s)
}

// Write sends input to the focused session.
func (m *Manager) Write(data []byte) {
	if s := m.Session(m.focus); s != nil {
		if err := s.Write(data); err != nil {
			m.log.WithError(err).Warn("pty write failed")
		}
	}
}

// SetFocus moves focus to index. Out-of-range indexes are ignored.
func (m *Manager) SetFocus(index int) {
	if index >= 0 && index < len(m.sessions) {
		m.focus = index
	}
}

// FocusNext moves focus to the next session, wrapping around. It
// returns the previous and new indexes.
func (m *Manager) FocusNext() (from, to int) {
	from = m.focus
	m.focus = (m.focus + 1) % len(m.sessions)
	return from, m.focus
}

// FocusPrev moves focus to the previous session, wrapping around.
func (m *Manager) FocusPrev() (from, to int) {
	from = m.focus
	m.focus = (m.focus - 1 + len(m.sessions)) % len(m.sessions)
	return from, m.focus
}

// KillFocused terminates the focused session's process.
func (m *Manager) KillFocused() {
	if s := m.Session(m.focus); s != nil {
		s.Kill()
	}
}

// Shutdown kills every running session and stops future restarts.
// Exit events still drain through the channel afterwards.
func (m *Manager) Shutdown() {
	m.closing = true
	for _, s := range m.sessions {
		s.Kill()
	}
}

// Running reports how many sessions are currently alive.
func (m *Manager) Running() int {
	n := 0
	for _, s := range m.sessions {
		if s.state == StateRunning {
			n++
		}
	}
	return n
}

// exitBanner renders the line written into a pane when its process
// finishes: green for success, red otherwise.
func exitBanner(code int, err error) []byte {
	switch {
	case err != nil:
		return []byte(fmt.Sprintf("\x1b[31m[gridmux] failed to start: %v\x1b[0m\r\n", err))
	case code == 0:
		return []byte("\x1b[32m[gridmux] exited\x1b[0m\r\n")
	default:
		return []byte(fmt.Sprintf("\x1b[31m[gridmux] exited with code %d\x1b[0m\r\n", code))
	}
}
