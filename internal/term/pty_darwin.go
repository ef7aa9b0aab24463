//go:build darwin

package term

import (
	"os"
	"os/exec"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

func startPTY(cmd *exec.Cmd, cols, rows int) (PTY, error) {
	master, err := os.OpenFile("/dev/ptmx", os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	slavePath, err := ptsName(master)
	if err != nil {
		master.Close()
		return nil, err
	}
	slave, err := os.OpenFile(slavePath, os.O_RDWR, 0)
	if err != nil {
		master.Close()
		return nil, err
	}

	p := &darwinPTY{master: master}
	if err := p.Resize(cols, rows); err != nil {
		master.Close()
		slave.Close()
		return nil, err
	}

	cmd.Stdin = slave
	cmd.Stdout = slave
	cmd.Stderr = slave
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setsid = true
	cmd.SysProcAttr.Setctty = true

	if err := cmd.Start(); err != nil {
		master.Close()
		slave.Close()
		return nil, err
	}

	slave.Close()
	return p, nil
}

type darwinPTY struct {
	master *os.File
}

func (p *darwinPTY) File() *os.File { return p.master }

func (p *darwinPTY) Read(buf []byte) (int, error) { return p.master.Read(buf) }

func (p *darwinPTY) Write(data []byte) (int, error) { return p.master.Write(data) }

func (p *darwinPTY) Resize(cols, rows int) error {
	if cols < 1 || rows < 1 {
		return ErrInvalidSize
	}
	ws := unix.Winsize{Row: uint16(rows), Col: uint16(cols)}
	return unix.IoctlSetWinsize(int(p.master.Fd()), unix.TIOCSWINSZ, &ws)
}

func (p *darwinPTY) Close() error { return p.master.Close() }

// ptsName resolves the slave path via TIOCPTYGNAME.
func ptsName(master *os.File) (string, error) {
	var name [128]byte
	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		master.Fd(),
		uintptr(unix.TIOCPTYGNAME),
		uintptr(unsafe.Pointer(&name[0])),
	)
	if errno != 0 {
		return "", errno
	}
	end := 0
	for end < len(name) && name[end] != 0 {
		end++
	}
	return string(name[:end]), nil
}
