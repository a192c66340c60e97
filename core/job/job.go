// Package job tracks the shell's process groups in a fixed-capacity table.
//
// State transitions and enabling actions:
//
//	Foreground -> Stopped    : keyboard suspend
//	Stopped    -> Foreground : fg command
//	Stopped    -> Background : bg command
//	Background -> Foreground : fg command
//
// At most one job is Foreground at a time.
package job

// State is a job's position in the job-control lifecycle.
type State int

const (
	// Empty marks an unused table slot.
	Empty State = iota
	// Foreground jobs own the keyboard; the dispatch loop waits on them.
	Foreground
	// Background jobs run without blocking the dispatch loop.
	Background
	// Stopped jobs have been suspended and can be resumed with bg or fg.
	Stopped
)

// String renders the state the way the jobs builtin displays it.
func (s State) String() string {
	switch s {
	case Foreground:
		return "Foreground"
	case Background:
		return "Running"
	case Stopped:
		return "Stopped"
	default:
		return "Empty"
	}
}

// Job is one tracked process group.
type Job struct {
	// PID of the group leader. Every job is launched as the leader of its
	// own process group, so this doubles as the group ID.
	PID int
	// JID is the small shell-assigned job number shown to the user.
	JID int
	State State
	// Cmdline is the literal line that launched the job, trailing newline
	// included. Banners print it verbatim.
	Cmdline string
}
