package workload

import (
	"fmt"
	"slices"
	"time"

	"go.uber.org/multierr"

	"github.com/llxisdsh/fairrw"
)

// Report is the outcome of a run.
type Report struct {
	Policy  fairrw.Policy
	Initial int64
	Final   int64
	Reads   int
	Writes  int
	Elapsed time.Duration
	// Tasks is sorted by kind, then index.
	Tasks []TaskStats
	// Windows holds every access window, sorted by start time.
	Windows []Window
	// Lock is the state of the lock after the run.
	Lock fairrw.Stats
}

func newReport(cfg Config, tasks []TaskStats, final int64, lock fairrw.Stats, elapsed time.Duration) *Report {
	rep := &Report{
		Policy:  cfg.Policy,
		Initial: cfg.Initial,
		Final:   final,
		Elapsed: elapsed,
		Tasks:   tasks,
		Lock:    lock,
	}
	for _, st := range tasks {
		if st.ID.Kind == Writer {
			rep.Writes += st.Cycles
		} else {
			rep.Reads += st.Cycles
		}
		rep.Windows = append(rep.Windows, st.Windows...)
	}
	slices.SortStableFunc(rep.Windows, func(a, b Window) int {
		return a.Start.Compare(b.Start)
	})
	return rep
}

// Overlaps returns every pair of windows that shared an instant while at
// least one of them was a write.
func (r *Report) Overlaps() [][2]Window {
	var out [][2]Window
	for i, a := range r.Windows {
		for _, b := range r.Windows[i+1:] {
			if !b.Start.Before(a.End) {
				break
			}
			if (a.Task.Kind == Writer || b.Task.Kind == Writer) && a.Overlaps(b) {
				out = append(out, [2]Window{a, b})
			}
		}
	}
	return out
}

// MaxConcurrentReaders returns the largest number of read windows that were
// open at the same instant.
func (r *Report) MaxConcurrentReaders() int {
	type edge struct {
		at    time.Time
		delta int
	}
	var edges []edge
	for _, w := range r.Windows {
		if w.Task.Kind == Reader {
			edges = append(edges, edge{w.Start, 1}, edge{w.End, -1})
		}
	}
	// Ends sort before starts at the same instant: touching windows do
	// not count as concurrent.
	slices.SortFunc(edges, func(a, b edge) int {
		if c := a.at.Compare(b.at); c != 0 {
			return c
		}
		return a.delta - b.delta
	})
	cur, best := 0, 0
	for _, e := range edges {
		cur += e.delta
		best = max(best, cur)
	}
	return best
}

// Check verifies the invariants a correct lock guarantees: the final value
// counts every write, no write overlapped another access, every read saw a
// value inside the range the writers produced, and the lock ended idle.
func (r *Report) Check() error {
	var err error
	if want := r.Initial + int64(r.Writes); r.Final != want {
		err = multierr.Append(err, fmt.Errorf("final value %d, want %d", r.Final, want))
	}
	for _, p := range r.Overlaps() {
		err = multierr.Append(err, fmt.Errorf("%s cycle %d overlaps %s cycle %d",
			p[0].Task, p[0].Cycle, p[1].Task, p[1].Cycle))
	}
	for _, w := range r.Windows {
		if w.Task.Kind == Reader && (w.Value < r.Initial || w.Value > r.Final) {
			err = multierr.Append(err, fmt.Errorf("%s cycle %d read %d outside [%d, %d]",
				w.Task, w.Cycle, w.Value, r.Initial, r.Final))
		}
	}
	if l := r.Lock; l.Readers != 0 || l.PendingWriters != 0 || l.Holder != fairrw.HolderNone {
		err = multierr.Append(err, fmt.Errorf("lock not idle: %+v", l))
	}
	return err
}
