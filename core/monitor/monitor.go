// Package monitor owns the shell's asynchronous signal handling: reaping
// children on SIGCHLD and forwarding keyboard signals to the foreground
// process group.
package monitor

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/tinysh/tinysh/core/job"
)

// WaitStatus is the subset of unix.WaitStatus the monitor inspects.
// unix.WaitStatus satisfies it; tests inject synthetic statuses.
type WaitStatus interface {
	Exited() bool
	Signaled() bool
	Signal() syscall.Signal
	Stopped() bool
	StopSignal() syscall.Signal
}

// WaitFunc reaps one child with a pending status change without blocking.
// It returns pid <= 0 when no child has anything to report.
type WaitFunc func() (int, WaitStatus)

// KillFunc delivers a signal. A negative pid targets the whole group.
type KillFunc func(pid int, sig syscall.Signal) error

// Monitor receives kernel signals on a channel and applies the resulting
// job-state changes to the table. It never calls back into dispatch logic;
// the dispatch loop observes the table through WaitNotForeground.
type Monitor struct {
	Table *job.Table
	// Out receives the terminated/stopped banners.
	Out io.Writer

	wait WaitFunc
	kill KillFunc
	exit func(code int)

	ch   chan os.Signal
	done chan struct{}
	wg   sync.WaitGroup
}

func New(table *job.Table, out io.Writer) *Monitor {
	return &Monitor{
		Table: table,
		Out:   out,
		wait:  waitAnyChild,
		kill: func(pid int, sig syscall.Signal) error {
			return unix.Kill(pid, sig)
		},
		exit: os.Exit,
	}
}

func waitAnyChild() (int, WaitStatus) {
	var ws unix.WaitStatus
	// WNOHANG: report, never block on a still-running child.
	// WUNTRACED: stopped children are status changes too.
	pid, err := unix.Wait4(-1, &ws, unix.WNOHANG|unix.WUNTRACED, nil)
	if err != nil {
		return -1, ws
	}
	return pid, ws
}

// Start subscribes to the job-control signals and runs the monitor loop.
func (m *Monitor) Start() {
	// Reading the terminal from a non-foreground group would otherwise
	// suspend the shell itself.
	signal.Ignore(syscall.SIGTTIN, syscall.SIGTTOU)

	m.ch = make(chan os.Signal, 16)
	m.done = make(chan struct{})
	signal.Notify(m.ch, syscall.SIGCHLD, syscall.SIGINT, syscall.SIGTSTP, syscall.SIGQUIT)

	m.wg.Add(1)
	go m.loop()
}

// Stop unsubscribes and waits for the monitor goroutine to finish.
func (m *Monitor) Stop() {
	signal.Stop(m.ch)
	close(m.done)
	m.wg.Wait()
}

func (m *Monitor) loop() {
	defer m.wg.Done()

	for {
		select {
		case sig := <-m.ch:
			switch sig {
			case syscall.SIGCHLD:
				m.Reap()
			case syscall.SIGINT:
				m.ForwardToForeground(syscall.SIGINT)
			case syscall.SIGTSTP:
				m.ForwardToForeground(syscall.SIGTSTP)
			case syscall.SIGQUIT:
				fmt.Fprintf(m.Out, "Terminating after receipt of SIGQUIT signal\n")
				m.exit(1)
			}
		case <-m.done:
			return
		}
	}
}

// Reap drains every child with a pending status change in one pass.
// Normal exits leave silently; kills are reported then removed; stops
// flip the job to Stopped but keep it tracked, so the table only ever
// records confirmed kernel state.
func (m *Monitor) Reap() {
	m.Table.HoldReaping()
	defer m.Table.ReleaseReaping()

	for {
		pid, ws := m.wait()
		if pid <= 0 {
			return
		}
		m.apply(pid, ws)
	}
}

func (m *Monitor) apply(pid int, ws WaitStatus) {
	switch {
	case ws.Stopped():
		jid := m.Table.JIDFor(pid)
		m.Table.SetState(pid, job.Stopped)
		fmt.Fprintf(m.Out, "Job [%d] (%d) stopped by signal %d\n", jid, pid, int(ws.StopSignal()))

	case ws.Signaled():
		fmt.Fprintf(m.Out, "Job [%d] (%d) terminated by signal %d\n", m.Table.JIDFor(pid), pid, int(ws.Signal()))
		m.Table.Remove(pid)

	case ws.Exited():
		m.Table.Remove(pid)
	}
}

// ForwardToForeground relays a keyboard signal to the foreground job's
// whole process group. No-op when nothing is in the foreground. The job's
// state is not touched here; only the confirmed status from Reap does that.
func (m *Monitor) ForwardToForeground(sig syscall.Signal) {
	pid := m.Table.ForegroundPID()
	if pid == 0 {
		return
	}
	_ = m.kill(-pid, sig)
}
