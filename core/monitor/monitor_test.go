package monitor

import (
	"bytes"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinysh/tinysh/core/job"
)

type fakeStatus struct {
	exited   bool
	signaled bool
	sig      syscall.Signal
	stopped  bool
	stopSig  syscall.Signal
}

func (f fakeStatus) Exited() bool               { return f.exited }
func (f fakeStatus) Signaled() bool             { return f.signaled }
func (f fakeStatus) Signal() syscall.Signal     { return f.sig }
func (f fakeStatus) Stopped() bool              { return f.stopped }
func (f fakeStatus) StopSignal() syscall.Signal { return f.stopSig }

type reapEvent struct {
	pid int
	ws  fakeStatus
}

// queueWaiter feeds synthetic wait statuses, then reports no more children.
func queueWaiter(events []reapEvent) WaitFunc {
	return func() (int, WaitStatus) {
		if len(events) == 0 {
			return 0, fakeStatus{}
		}
		ev := events[0]
		events = events[1:]
		return ev.pid, ev.ws
	}
}

func newTestMonitor(events []reapEvent) (*Monitor, *bytes.Buffer) {
	out := &bytes.Buffer{}
	m := New(job.NewTable(), out)
	m.wait = queueWaiter(events)
	return m, out
}

func TestReapExitedJobLeavesSilently(t *testing.T) {
	m, out := newTestMonitor([]reapEvent{
		{pid: 101, ws: fakeStatus{exited: true}},
	})
	require.True(t, m.Table.Add(101, job.Background, "sleep 1 &\n"))

	m.Reap()

	assert.Empty(t, out.String())
	assert.Empty(t, m.Table.Jobs())
}

func TestReapSignaledJobPrintsAndRemoves(t *testing.T) {
	m, out := newTestMonitor([]reapEvent{
		{pid: 101, ws: fakeStatus{signaled: true, sig: syscall.SIGINT}},
	})
	require.True(t, m.Table.Add(101, job.Foreground, "sleep 5\n"))

	m.Reap()

	assert.Equal(t, "Job [1] (101) terminated by signal 2\n", out.String())
	assert.Empty(t, m.Table.Jobs())
}

func TestReapStoppedJobStaysTracked(t *testing.T) {
	m, out := newTestMonitor([]reapEvent{
		{pid: 101, ws: fakeStatus{stopped: true, stopSig: syscall.SIGTSTP}},
	})
	require.True(t, m.Table.Add(101, job.Foreground, "sleep 5\n"))

	m.Reap()

	assert.Equal(t, "Job [1] (101) stopped by signal 20\n", out.String())
	j, ok := m.Table.ByPID(101)
	require.True(t, ok)
	assert.Equal(t, job.Stopped, j.State)
}

func TestReapDrainsEveryPendingChild(t *testing.T) {
	m, out := newTestMonitor([]reapEvent{
		{pid: 101, ws: fakeStatus{exited: true}},
		{pid: 102, ws: fakeStatus{signaled: true, sig: syscall.SIGKILL}},
		{pid: 103, ws: fakeStatus{stopped: true, stopSig: syscall.SIGSTOP}},
	})
	require.True(t, m.Table.Add(101, job.Background, "a &\n"))
	require.True(t, m.Table.Add(102, job.Background, "b &\n"))
	require.True(t, m.Table.Add(103, job.Foreground, "c\n"))

	m.Reap()

	assert.Equal(t,
		"Job [2] (102) terminated by signal 9\n"+
			"Job [3] (103) stopped by signal 19\n",
		out.String())

	require.Len(t, m.Table.Jobs(), 1)
	assert.Equal(t, 0, m.Table.ForegroundPID())
}

func TestReapUntrackedChildIsIgnored(t *testing.T) {
	// A child that was never registered (e.g. killed when the table was
	// full) reaps without output or table churn.
	m, out := newTestMonitor([]reapEvent{
		{pid: 999, ws: fakeStatus{exited: true}},
	})

	m.Reap()

	assert.Empty(t, out.String())
	assert.Empty(t, m.Table.Jobs())
}

func TestForwardToForeground(t *testing.T) {
	cases := []struct {
		name     string
		setup    func(table *job.Table)
		sig      syscall.Signal
		wantPID  int
		wantSent bool
	}{
		{
			name: "interrupt goes to the whole foreground group",
			setup: func(table *job.Table) {
				table.Add(101, job.Background, "a &\n")
				table.Add(102, job.Foreground, "b\n")
			},
			sig:      syscall.SIGINT,
			wantPID:  -102,
			wantSent: true,
		},
		{
			name: "suspend goes to the whole foreground group",
			setup: func(table *job.Table) {
				table.Add(102, job.Foreground, "b\n")
			},
			sig:      syscall.SIGTSTP,
			wantPID:  -102,
			wantSent: true,
		},
		{
			name:     "no foreground job is a no-op",
			setup:    func(table *job.Table) { table.Add(101, job.Background, "a &\n") },
			sig:      syscall.SIGINT,
			wantSent: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, _ := newTestMonitor(nil)
			tc.setup(m.Table)

			var sentPID int
			var sentSig syscall.Signal
			sent := false
			m.kill = func(pid int, sig syscall.Signal) error {
				sentPID, sentSig, sent = pid, sig, true
				return nil
			}

			m.ForwardToForeground(tc.sig)

			assert.Equal(t, tc.wantSent, sent)
			if tc.wantSent {
				assert.Equal(t, tc.wantPID, sentPID)
				assert.Equal(t, tc.sig, sentSig)
			}
		})
	}
}

func TestForwardDoesNotChangeState(t *testing.T) {
	m, _ := newTestMonitor(nil)
	require.True(t, m.Table.Add(102, job.Foreground, "b\n"))
	m.kill = func(pid int, sig syscall.Signal) error { return nil }

	m.ForwardToForeground(syscall.SIGTSTP)

	// Only a confirmed stop status from the reaper flips the state.
	j, ok := m.Table.ByPID(102)
	require.True(t, ok)
	assert.Equal(t, job.Foreground, j.State)
}
