//go:build linux

package term

import (
	"os"
	"os/exec"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"
)

func startPTY(cmd *exec.Cmd, cols, rows int) (PTY, error) {
	master, slave, err := openPTY()
	if err != nil {
		return nil, err
	}

	p := &unixPTY{master: master}
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

	// The child holds the slave; the parent only needs the master.
	slave.Close()
	return p, nil
}

// openPTY allocates a master/slave pair via /dev/ptmx.
func openPTY() (*os.File, *os.File, error) {
	master, err := os.OpenFile("/dev/ptmx", os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}

	if err := unix.IoctlSetPointerInt(int(master.Fd()), unix.TIOCSPTLCK, 0); err != nil {
		master.Close()
		return nil, nil, err
	}

	n, err := unix.IoctlGetUint32(int(master.Fd()), unix.TIOCGPTN)
	if err != nil {
		master.Close()
		return nil, nil, err
	}

	slave, err := os.OpenFile("/dev/pts/"+strconv.Itoa(int(n)), os.O_RDWR, 0)
	if err != nil {
		master.Close()
		return nil, nil, err
	}
	return master, slave, nil
}

type unixPTY struct {
	master *os.File
}

func (p *unixPTY) File() *os.File { return p.master }

func (p *unixPTY) Read(buf []byte) (int, error) { return p.master.Read(buf) }

func (p *unixPTY) Write(data []byte) (int, error) { return p.master.Write(data) }

func (p *unixPTY) Resize(cols, rows int) error {
	if cols < 1 || rows < 1 {
		return ErrInvalidSize
	}
	ws := unix.Winsize{Row: uint16(rows), Col: uint16(cols)}
	return unix.IoctlSetWinsize(int(p.master.Fd()), unix.TIOCSWINSZ, &ws)
}

func (p *unixPTY) Close() error { return p.master.Close() }
