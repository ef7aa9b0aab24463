package term

import (
	"errors"
	"os"
	"os/exec"
)

// Package errors.
var (
	// ErrClosed indicates a write or resize on a closed PTY.
	ErrClosed = errors.New("pty closed")

	// ErrInvalidSize indicates a size with zero columns or rows.
	ErrInvalidSize = errors.New("invalid size")
)

// PTY is the master side of a pseudo-terminal.
type PTY interface {
	// File returns the master file descriptor.
	File() *os.File

	// Read reads process output from the PTY.
	Read(p []byte) (n int, err error)

	// Write writes input to the process.
	Write(p []byte) (n int, err error)

	// Resize changes the PTY window size.
	Resize(cols, rows int) error

	// Close closes the master side.
	Close() error
}

// StartPTY starts cmd with a newly allocated PTY of the given size as
// its controlling terminal. The slave side is closed in this process
// once the command has started.
func StartPTY(cmd *exec.Cmd, cols, rows int) (PTY, error) {
	if cols < 1 || rows < 1 {
		return nil, ErrInvalidSize
	}
	return startPTY(cmd, cols, rows)
}
