package job

import "sync"

const (
	// Capacity bounds the number of concurrently tracked jobs. A full
	// table is a designed resource limit, not an error in the shell.
	Capacity = 16

	// jidWrap is where the job ID counter restarts from 1.
	jidWrap = 1 << 16
)

// Table is the registry of live jobs. It is shared between the dispatch
// goroutine and the signal monitor's goroutine; every operation takes the
// table lock, and every mutation wakes waiters so WaitNotForeground can
// re-check.
//
// The reap gate is a second lock held by the launcher across start and
// registration, and by the monitor across a reap drain. It guarantees a
// child that dies instantly cannot be reaped before it is in the table.
type Table struct {
	mu   sync.Mutex
	cond *sync.Cond

	reapGate sync.Mutex

	slots   [Capacity]Job
	nextJID int
}

func NewTable() *Table {
	t := &Table{nextJID: 1}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// Add registers a process group in the first free slot and assigns it the
// next job ID. Returns false if pid is invalid or the table is full.
func (t *Table) Add(pid int, state State, cmdline string) bool {
	if pid < 1 {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.slots {
		if t.slots[i].State != Empty {
			continue
		}
		t.slots[i] = Job{
			PID:     pid,
			JID:     t.nextJID,
			State:   state,
			Cmdline: cmdline,
		}
		t.nextJID++
		if t.nextJID > jidWrap {
			t.nextJID = 1
		}
		t.cond.Broadcast()
		return true
	}
	return false
}

// Remove deletes the job for pid. The next job ID is recomputed as one past
// the largest live ID, so IDs stay small after frees.
func (t *Table) Remove(pid int) bool {
	if pid < 1 {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.slots {
		if t.slots[i].PID == pid && t.slots[i].State != Empty {
			t.slots[i] = Job{}
			t.nextJID = t.maxJIDLocked() + 1
			t.cond.Broadcast()
			return true
		}
	}
	return false
}

// SetState transitions the job for pid. Returns false if pid is untracked.
func (t *Table) SetState(pid int, state State) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.slots {
		if t.slots[i].PID == pid && t.slots[i].State != Empty {
			t.slots[i].State = state
			t.cond.Broadcast()
			return true
		}
	}
	return false
}

// ByPID finds a live job by process ID.
func (t *Table) ByPID(pid int) (Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.byPIDLocked(pid)
}

func (t *Table) byPIDLocked(pid int) (Job, bool) {
	if pid < 1 {
		return Job{}, false
	}
	for i := range t.slots {
		if t.slots[i].PID == pid && t.slots[i].State != Empty {
			return t.slots[i], true
		}
	}
	return Job{}, false
}

// ByJID finds a live job by job ID.
func (t *Table) ByJID(jid int) (Job, bool) {
	if jid < 1 {
		return Job{}, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.slots {
		if t.slots[i].JID == jid && t.slots[i].State != Empty {
			return t.slots[i], true
		}
	}
	return Job{}, false
}

// JIDFor maps a process ID to its job ID, 0 if untracked.
func (t *Table) JIDFor(pid int) int {
	if j, ok := t.ByPID(pid); ok {
		return j.JID
	}
	return 0
}

// ForegroundPID returns the pid of the current foreground job, 0 if none.
func (t *Table) ForegroundPID() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.slots {
		if t.slots[i].State == Foreground {
			return t.slots[i].PID
		}
	}
	return 0
}

// Jobs returns the live jobs in slot order, stable for display.
func (t *Table) Jobs() []Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []Job
	for i := range t.slots {
		if t.slots[i].State != Empty {
			out = append(out, t.slots[i])
		}
	}
	return out
}

// MaxJID returns the largest allocated job ID, 0 when the table is empty.
func (t *Table) MaxJID() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.maxJIDLocked()
}

func (t *Table) maxJIDLocked() int {
	max := 0
	for i := range t.slots {
		if t.slots[i].State != Empty && t.slots[i].JID > max {
			max = t.slots[i].JID
		}
	}
	return max
}

// WaitNotForeground blocks until pid is no longer the foreground job:
// either the monitor removed it, or it was stopped or demoted. This is the
// only place the dispatch flow waits on asynchronous state; it observes the
// table and never reaps the child itself.
func (t *Table) WaitNotForeground(pid int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for {
		j, ok := t.byPIDLocked(pid)
		if !ok || j.State != Foreground {
			return
		}
		t.cond.Wait()
	}
}

// HoldReaping stops the monitor from reaping until ReleaseReaping. The
// launcher holds this across start+registration; the monitor holds it
// across each drain.
func (t *Table) HoldReaping() { t.reapGate.Lock() }

// ReleaseReaping re-opens the reap gate.
func (t *Table) ReleaseReaping() { t.reapGate.Unlock() }
