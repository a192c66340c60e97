// Package core implements the interactive shell: the read/eval loop, the
// built-in commands and the wiring between the launcher, the job table and
// the signal monitor.
package core

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"syscall"

	"github.com/abiosoft/readline"
	"github.com/anmitsu/go-shlex"
	"github.com/fatih/color"
	"golang.org/x/sys/unix"

	"github.com/tinysh/tinysh/core/config"
	"github.com/tinysh/tinysh/core/job"
	"github.com/tinysh/tinysh/core/launch"
	"github.com/tinysh/tinysh/core/monitor"
)

const DefaultPrompt = "tsh> "

var (
	promptColor  = color.New(color.FgGreen, color.Bold)
	stoppedColor = color.New(color.FgRed, color.Bold)
	runningColor = color.New(color.FgGreen)
)

type Shell struct {
	Config   *config.Configuration
	Table    *job.Table
	Launcher *launch.Launcher
	Monitor  *monitor.Monitor
	Readline *readline.Instance

	// NoPrompt suppresses the prompt, handy for automatic testing.
	NoPrompt bool

	out    io.Writer
	errOut io.Writer

	signal func(pid int, sig syscall.Signal) error

	quitting bool
}

func NewShell(cfg *config.Configuration) (*Shell, error) {
	rlCfg := &readline.Config{
		Prompt:      cfg.Prompt,
		HistoryFile: cfg.HistoryPath(),
	}
	if err := rlCfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return nil, err
	}

	table := job.NewTable()

	// Diagnostics share stdout so everything lands on one stream in
	// scripted runs.
	launcher := launch.New(table, os.Stdout, os.Stdout)
	launcher.Verbose = cfg.Verbose

	return &Shell{
		Config:   cfg,
		Table:    table,
		Launcher: launcher,
		Monitor:  monitor.New(table, os.Stdout),
		Readline: rl,
		out:      os.Stdout,
		errOut:   os.Stdout,
		signal: func(pid int, sig syscall.Signal) error {
			return unix.Kill(pid, sig)
		},
	}, nil
}

// Run executes the shell's read/eval loop. Returns the process exit code:
// 0 on quit or end of input.
func (s *Shell) Run() int {
	s.Monitor.Start()
	defer s.Monitor.Stop()

	for !s.quitting {
		s.Readline.SetPrompt(s.prompt())
		line, err := s.Readline.Readline()

		switch {
		case err == io.EOF:
			return 0 // Input closed (ctrl-d), quit.

		case err == readline.ErrInterrupt:
			// The monitor already forwarded the signal; drop the line.
			continue

		case err != nil:
			log.Printf("Error readline: %v", err)
			continue

		case len(strings.TrimSpace(line)) == 0:
			continue
		}

		s.Eval(line)
	}
	return 0
}

// Eval tokenizes and dispatches a single command line.
func (s *Shell) Eval(line string) {
	tokens, err := shlex.Split(line, true)
	if err != nil {
		fmt.Fprintf(s.errOut, "syntax error: %v\n", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	// A trailing & requests background execution.
	background := false
	last := tokens[len(tokens)-1]
	switch {
	case last == "&":
		background = true
		tokens = tokens[:len(tokens)-1]
	case strings.HasSuffix(last, "&"):
		background = true
		tokens[len(tokens)-1] = strings.TrimSuffix(last, "&")
	}
	if len(tokens) == 0 || tokens[0] == "" {
		return
	}

	if s.builtin(tokens) {
		return
	}

	// Banners display the line verbatim, trailing newline included.
	s.Launcher.Launch(tokens, line+"\n", background)
}

func (s *Shell) Close() error {
	return s.Readline.Close()
}

func (s *Shell) prompt() string {
	if s.NoPrompt {
		return ""
	}

	p := s.Config.Prompt
	if p == "" {
		p = DefaultPrompt
	}
	if s.shouldColor() {
		return promptColor.Sprint(p)
	}
	return p
}

func (s *Shell) shouldColor() bool {
	switch s.Config.Color {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return !color.NoColor
	}
}
