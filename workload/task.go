package workload

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/llxisdsh/pb"
)

// Kind is the role of a task.
type Kind uint8

const (
	Reader Kind = iota
	Writer
)

func (k Kind) String() string {
	if k == Writer {
		return "writer"
	}
	return "reader"
}

// Phase is where a task is in its cycle:
// Idle → Requesting → Reading | Writing → Idle.
type Phase uint8

const (
	Idle Phase = iota
	Requesting
	Reading
	Writing
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Requesting:
		return "requesting"
	case Reading:
		return "reading"
	case Writing:
		return "writing"
	}
	return fmt.Sprintf("Phase(%d)", uint8(p))
}

// TaskID names a task. Index starts at 1 within each kind.
type TaskID struct {
	Kind  Kind
	Index int
}

func (id TaskID) String() string {
	return fmt.Sprintf("%s-%d", id.Kind, id.Index)
}

func compareTaskID(a, b TaskID) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}

// Window is one access to the shared value: the interval between
// acquiring and releasing the lock as seen by the task.
type Window struct {
	Task  TaskID
	Cycle int
	Start time.Time
	End   time.Time
	// Value is what a reader saw, or what a writer stored.
	Value int64
}

// Overlaps reports whether w and o share an instant.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// TaskStats summarizes one task after the run.
type TaskStats struct {
	ID      TaskID
	Cycles  int
	Waited  time.Duration
	Held    time.Duration
	Windows []Window
}

// recorder collects per-task stats. Each entry is created once and then
// only touched by its own task, so entries need no locking of their own.
type recorder struct {
	tasks pb.MapOf[TaskID, *TaskStats]
}

// task returns the stats entry for id, creating it on first use.
func (r *recorder) task(id TaskID) *TaskStats {
	st, _ := r.tasks.ProcessEntry(
		id,
		func(l *pb.EntryOf[TaskID, *TaskStats]) (*pb.EntryOf[TaskID, *TaskStats], *TaskStats, bool) {
			if l != nil {
				return l, l.Value, true
			}
			st := &TaskStats{ID: id}
			return &pb.EntryOf[TaskID, *TaskStats]{Value: st}, st, false
		},
	)
	return st
}

func (st *TaskStats) record(w Window, waited time.Duration) {
	st.Cycles++
	st.Waited += waited
	st.Held += w.End.Sub(w.Start)
	st.Windows = append(st.Windows, w)
}

// snapshot returns every task sorted by ID. Call only after all tasks
// have finished.
func (r *recorder) snapshot() []TaskStats {
	var out []TaskStats
	r.tasks.Range(func(_ TaskID, st *TaskStats) bool {
		out = append(out, *st)
		return true
	})
	slices.SortFunc(out, func(a, b TaskStats) int {
		return compareTaskID(a.ID, b.ID)
	})
	return out
}
