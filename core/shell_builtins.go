package core

import (
	"fmt"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/tinysh/tinysh/core/job"
)

// builtin executes argv if it names a built-in command and reports whether
// it did.
func (s *Shell) builtin(argv []string) bool {
	switch argv[0] {
	case "quit":
		s.quitting = true
		return true
	case "jobs":
		s.builtinJobs()
		return true
	case "bg", "fg":
		s.builtinBgFg(argv)
		return true
	case "kill":
		s.builtinKill(argv)
		return true
	}
	return false
}

// builtinJobs prints every live job in slot order.
func (s *Shell) builtinJobs() {
	for _, j := range s.Table.Jobs() {
		fmt.Fprintf(s.out, "[%d] (%d) %s %s", j.JID, j.PID, s.stateLabel(j.State), j.Cmdline)
	}
}

func (s *Shell) stateLabel(st job.State) string {
	if !s.shouldColor() {
		return st.String()
	}
	switch st {
	case job.Stopped:
		return stoppedColor.Sprint(st.String())
	case job.Background:
		return runningColor.Sprint(st.String())
	default:
		return st.String()
	}
}

// builtinBgFg moves a job to the background or foreground. bg resumes the
// group and returns to the prompt; fg resumes the group and waits until
// the job leaves the foreground.
func (s *Shell) builtinBgFg(argv []string) {
	if len(argv) < 2 {
		fmt.Fprintf(s.errOut, "%s command requires PID or %%jobid argument\n", argv[0])
		return
	}

	j, ok := s.resolveTarget(argv[0], argv[1])
	if !ok {
		return
	}

	switch argv[0] {
	case "bg":
		s.Table.SetState(j.PID, job.Background)
		fmt.Fprintf(s.out, "[%d] (%d) %s", j.JID, j.PID, j.Cmdline)
		_ = s.signal(-j.PID, syscall.SIGCONT)
	case "fg":
		s.Table.SetState(j.PID, job.Foreground)
		_ = s.signal(-j.PID, syscall.SIGCONT)
		s.Table.WaitNotForeground(j.PID)
	}
}

// builtinKill sends a signal (SIGTERM unless -s says otherwise) to a
// job's whole process group. Target resolution matches bg/fg.
func (s *Shell) builtinKill(argv []string) {
	b := &SimpleBuiltin{
		Use:   "kill [-s signal] %jobid|pid",
		Short: "Send a signal to a job's process group.",
	}
	sigName := b.Flags().StringLong("signal", 's', "TERM", "name or number of the signal to send")

	b.Run(argv, s.out, s.errOut, func(args []string) int {
		if len(args) == 0 {
			fmt.Fprintf(s.errOut, "kill command requires PID or %%jobid argument\n")
			return 1
		}

		sig, ok := lookupSignal(*sigName)
		if !ok {
			fmt.Fprintf(s.errOut, "kill: %s: invalid signal specification\n", *sigName)
			return 1
		}

		j, ok := s.resolveTarget("kill", args[0])
		if !ok {
			return 1
		}

		if err := s.signal(-j.PID, sig); err != nil {
			fmt.Fprintf(s.errOut, "kill: %v\n", err)
			return 1
		}
		return 0
	})
}

// resolveTarget parses a %jobid or pid reference into a live job,
// reporting a diagnostic when resolution fails.
func (s *Shell) resolveTarget(name, arg string) (job.Job, bool) {
	switch {
	case strings.HasPrefix(arg, "%"):
		jid, err := strconv.Atoi(arg[1:])
		if err != nil {
			fmt.Fprintf(s.errOut, "%s: argument must be a PID or %%jobid\n", name)
			return job.Job{}, false
		}
		j, ok := s.Table.ByJID(jid)
		if !ok {
			fmt.Fprintf(s.errOut, "%s: No such job\n", arg)
			return job.Job{}, false
		}
		return j, true

	case arg != "" && arg[0] >= '0' && arg[0] <= '9':
		pid, err := strconv.Atoi(arg)
		if err != nil {
			fmt.Fprintf(s.errOut, "%s: argument must be a PID or %%jobid\n", name)
			return job.Job{}, false
		}
		j, ok := s.Table.ByPID(pid)
		if !ok {
			fmt.Fprintf(s.errOut, "(%d): No such process\n", pid)
			return job.Job{}, false
		}
		return j, true

	default:
		fmt.Fprintf(s.errOut, "%s: argument must be a PID or %%jobid\n", name)
		return job.Job{}, false
	}
}

// lookupSignal resolves a name like TERM or SIGTERM, or a number.
func lookupSignal(name string) (syscall.Signal, bool) {
	if n, err := strconv.Atoi(name); err == nil && n > 0 {
		return syscall.Signal(n), true
	}

	upper := strings.ToUpper(name)
	if !strings.HasPrefix(upper, "SIG") {
		upper = "SIG" + upper
	}
	if sig := unix.SignalNum(upper); sig != 0 {
		return sig, true
	}
	return 0, false
}
