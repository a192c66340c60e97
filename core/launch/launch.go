// Package launch starts external commands in their own process groups and
// registers them in the job table.
package launch

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/tinysh/tinysh/core/job"
)

// Launcher forks, establishes the child's process group, arranges its
// redirection and tracks it as a job.
//
// Child endpoints must be real files: launched jobs are reaped by the
// signal monitor, never by cmd.Wait, so exec.Cmd cannot be handed writers
// that would need copy goroutines.
type Launcher struct {
	Table *job.Table

	ChildStdin  *os.File
	ChildStdout *os.File
	ChildStderr *os.File

	// Out and ErrOut carry the shell's own banners and diagnostics.
	Out    io.Writer
	ErrOut io.Writer

	// Verbose reports job registrations as they happen.
	Verbose bool
}

func New(table *job.Table, out, errOut io.Writer) *Launcher {
	return &Launcher{
		Table:       table,
		ChildStdin:  os.Stdin,
		ChildStdout: os.Stdout,
		ChildStderr: os.Stderr,
		Out:         out,
		ErrOut:      errOut,
	}
}

// Launch runs argv as a new job. cmdline is the raw line for display,
// trailing newline included. Foreground launches block until the job is no
// longer in the foreground; background launches print the job banner and
// return immediately. Failures abort only this command, never the shell.
func (l *Launcher) Launch(argv []string, cmdline string, background bool) {
	argv, redir, err := splitRedirects(argv)
	if err != nil {
		fmt.Fprintf(l.ErrOut, "%v\n", err)
		return
	}
	if len(argv) == 0 {
		return
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	// A fresh process group per job keeps keyboard signals aimed at the
	// terminal's foreground group away from the shell itself.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var toClose []*os.File
	defer func() {
		for _, f := range toClose {
			f.Close()
		}
	}()

	switch {
	case redir.in != "":
		f, err := redir.openIn()
		if err != nil {
			fmt.Fprintf(l.ErrOut, "open: %v\n", err)
			return
		}
		toClose = append(toClose, f)
		cmd.Stdin = f
	case background:
		// Background jobs must not compete for the terminal.
		f, err := os.Open(os.DevNull)
		if err != nil {
			fmt.Fprintf(l.ErrOut, "open: %v\n", err)
			return
		}
		toClose = append(toClose, f)
		cmd.Stdin = f
	default:
		cmd.Stdin = l.ChildStdin
	}

	if redir.out != "" {
		f, err := redir.openOut()
		if err != nil {
			fmt.Fprintf(l.ErrOut, "open: %v\n", err)
			return
		}
		toClose = append(toClose, f)
		cmd.Stdout = f
	} else {
		cmd.Stdout = l.ChildStdout
	}
	cmd.Stderr = l.ChildStderr

	// Closed again by the monitor's drain; holding it across start and
	// registration means a child that exits instantly cannot be reaped
	// before it is in the table.
	l.Table.HoldReaping()

	if err := cmd.Start(); err != nil {
		l.Table.ReleaseReaping()
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(l.ErrOut, "%s: Command not found.\n", argv[0])
		} else {
			fmt.Fprintf(l.ErrOut, "%s: %v\n", argv[0], err)
		}
		return
	}

	pid := cmd.Process.Pid
	state := job.Foreground
	if background {
		state = job.Background
	}

	if !l.Table.Add(pid, state, cmdline) {
		// Table full. The untracked process could never be waited on or
		// signaled as a job again, so kill the group instead.
		_ = unix.Kill(-pid, unix.SIGKILL)
		l.Table.ReleaseReaping()
		fmt.Fprintf(l.ErrOut, "Tried to create too many jobs\n")
		return
	}
	// Banners print before the gate reopens: an instantly-exiting job must
	// not be reaped out of the table before its job ID is read back.
	jid := l.Table.JIDFor(pid)
	if l.Verbose {
		fmt.Fprintf(l.Out, "Added job [%d] %d %s", jid, pid, cmdline)
	}
	if background {
		fmt.Fprintf(l.Out, "[%d] (%d) %s", jid, pid, cmdline)
	}
	l.Table.ReleaseReaping()

	if !background {
		l.Table.WaitNotForeground(pid)
	}
}
