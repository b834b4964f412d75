package workload

import (
	"context"
	"math/rand/v2"
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/llxisdsh/fairrw"
)

type runner struct {
	cfg   Config
	log   *zap.Logger
	value *fairrw.Shared[int64]
	// final mirrors value as of the last write, so the report does not
	// take a read of its own.
	final atomic.Int64
	start fairrw.Latch
	rec   recorder
}

// Run starts cfg.Readers reader tasks and cfg.Writers writer tasks against
// one shared value and waits for all of them to finish their cycles.
//
// Readers read the value while holding the lock for a random time. Writers
// read it, hold, and store the value plus one, so any break in mutual
// exclusion shows up as a lost update in the report.
//
// ctx is checked between cycles; an access window that has started always
// completes.
func Run(ctx context.Context, options ...Option) (*Report, error) {
	return RunConfig(ctx, NewConfig(options...))
}

// RunConfig is Run with an explicit Config.
func RunConfig(ctx context.Context, cfg Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lock := cfg.Lock
	if lock == nil {
		lock = fairrw.NewRWLock(fairrw.WithPolicy(cfg.Policy))
	} else {
		cfg.Policy = lock.Policy()
	}
	r := &runner{
		cfg:   cfg,
		log:   cfg.Logger.With(zap.Stringer("policy", cfg.Policy)),
		value: fairrw.NewShared(lock, cfg.Initial),
	}
	r.final.Store(cfg.Initial)

	g, ctx := errgroup.WithContext(ctx)
	total := cfg.Readers + cfg.Writers
	for i := range cfg.Readers {
		r.spawn(ctx, g, TaskID{Kind: Reader, Index: i + 1})
	}
	for i := range cfg.Writers {
		r.spawn(ctx, g, TaskID{Kind: Writer, Index: i + 1})
	}

	// Release everyone at once so contention starts together.
	for r.start.Waiters() < total {
		runtime.Gosched()
	}
	began := cfg.Clock.Now()
	r.log.Info("workload started",
		zap.Int("readers", cfg.Readers),
		zap.Int("writers", cfg.Writers),
		zap.Int("cycles", cfg.Cycles),
		zap.Duration("max_hold", cfg.MaxHold),
	)
	r.start.Open()

	err := g.Wait()
	rep := newReport(cfg, r.rec.snapshot(), r.final.Load(), lock.Stats(), cfg.Clock.Since(began))
	if err != nil {
		r.log.Warn("workload interrupted", zap.Error(err))
		return rep, err
	}
	r.log.Info("workload finished",
		zap.Int64("final", rep.Final),
		zap.Int("reads", rep.Reads),
		zap.Int("writes", rep.Writes),
		zap.Duration("elapsed", rep.Elapsed),
	)
	return rep, nil
}

func (r *runner) spawn(ctx context.Context, g *errgroup.Group, id TaskID) {
	st := r.rec.task(id)
	rng := rand.New(rand.NewPCG(r.cfg.Seed, taskStream(id)))
	log := r.log.With(zap.Stringer("task", id))
	g.Go(func() error {
		r.start.Wait()
		for cycle := range r.cfg.Cycles {
			if err := ctx.Err(); err != nil {
				return err
			}
			log.Debug("cycle", zap.Int("cycle", cycle), zap.Stringer("phase", Requesting))
			asked := r.cfg.Clock.Now()
			if id.Kind == Writer {
				r.write(log, st, rng, cycle, asked)
			} else {
				r.read(log, st, rng, cycle, asked)
			}
			log.Debug("cycle", zap.Int("cycle", cycle), zap.Stringer("phase", Idle))
		}
		return nil
	})
}

func (r *runner) read(log *zap.Logger, st *TaskStats, rng *rand.Rand, cycle int, asked time.Time) {
	r.value.Read(func(v int64) {
		w := Window{Task: st.ID, Cycle: cycle, Start: r.cfg.Clock.Now(), Value: v}
		log.Info("cycle", zap.Int("cycle", cycle), zap.Stringer("phase", Reading), zap.Int64("value", v))
		r.hold(rng)
		w.End = r.cfg.Clock.Now()
		st.record(w, w.Start.Sub(asked))
	})
}

func (r *runner) write(log *zap.Logger, st *TaskStats, rng *rand.Rand, cycle int, asked time.Time) {
	r.value.Update(func(x int64) int64 {
		w := Window{Task: st.ID, Cycle: cycle, Start: r.cfg.Clock.Now(), Value: x + 1}
		log.Info("cycle", zap.Int("cycle", cycle), zap.Stringer("phase", Writing), zap.Int64("value", x))
		r.hold(rng)
		w.End = r.cfg.Clock.Now()
		st.record(w, w.Start.Sub(asked))
		r.final.Store(x + 1)
		return x + 1
	})
}

func (r *runner) hold(rng *rand.Rand) {
	if r.cfg.MaxHold <= 0 {
		return
	}
	r.cfg.Clock.Sleep(time.Duration(rng.Int64N(int64(r.cfg.MaxHold))))
}

// taskStream gives every task its own PRNG stream so that tasks of one run
// do not share hold times.
func taskStream(id TaskID) uint64 {
	return uint64(id.Kind)<<32 | uint64(id.Index)
}
