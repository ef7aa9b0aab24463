// Package session starts and supervises one shell command per pane. A
// Manager owns every session, restarts the ones marked for it, and
// decides when the whole program should shut down.
package session

import (
	"fmt"
	"os/exec"

	"github.com/google/uuid"

	"github.com/dshills/gridmux/internal/term"
)

// State is a session's lifecycle phase.
type State int

const (
	// StateStarting means the process has not been spawned yet.
	StateStarting State = iota
	// StateRunning means the process is alive.
	StateRunning
	// StateExited means the process exited and will not restart.
	StateExited
	// StateRestarting means the process exited and a respawn is pending.
	StateRestarting
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateRestarting:
		return "restarting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Pane is the slice of the rendering surface a session writes into.
type Pane interface {
	Feed(data []byte)
	ContentSize() (cols, rows int)
}

// Session is one supervised shell command bound to a pane.
type Session struct {
	Index   int
	ID      uuid.UUID
	Command string
	Title   string
	Restart bool
	Delay   int // seconds between exit and respawn
	Focus   bool

	pane     Pane
	pty      term.PTY
	cmd      *exec.Cmd
	state    State
	exitCode int
}

// State returns the session's current phase.
func (s *Session) State() State { return s.state }

// ExitCode returns the last exit code. Meaningful once the state is
// StateExited or StateRestarting.
func (s *Session) ExitCode() int { return s.exitCode }

// Write sends input bytes to the session's PTY. Input to a dead
// session is dropped.
func (s *Session) Write(data []byte) error {
	if s.pty == nil || s.state != StateRunning {
		return nil
	}
	_, err := s.pty.Write(data)
	return err
}

// ResizePTY tells the kernel the session's new terminal size.
func (s *Session) ResizePTY() error {
	if s.pty == nil {
		return nil
	}
	cols, rows := s.pane.ContentSize()
	return s.pty.Resize(cols, rows)
}

// Kill terminates the process. The exit is still reported through the
// manager's event channel by the reader goroutine.
func (s *Session) Kill() {
	if s.cmd != nil && s.cmd.Process != nil && s.state == StateRunning {
		_ = s.cmd.Process.Kill()
	}
}
