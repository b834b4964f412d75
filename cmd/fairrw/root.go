package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/llxisdsh/fairrw"
	"github.com/llxisdsh/fairrw/metrics"
	"github.com/llxisdsh/fairrw/workload"
)

var errCheckFailed = errors.New("invariant check failed")

type flags struct {
	readers   int
	writers   int
	cycles    int
	maxHold   time.Duration
	seed      uint64
	initial   int64
	policy    string
	logLevel  string
	logFormat string
}

func (f *flags) register(fs *pflag.FlagSet) {
	fs.IntVarP(&f.readers, "readers", "r", workload.DefaultReaders, "number of reader tasks")
	fs.IntVarP(&f.writers, "writers", "w", workload.DefaultWriters, "number of writer tasks")
	fs.IntVarP(&f.cycles, "cycles", "c", workload.DefaultCycles, "lock cycles per task")
	fs.DurationVar(&f.maxHold, "max-hold", workload.DefaultMaxHold, "upper bound of simulated work per access")
	fs.Uint64Var(&f.seed, "seed", workload.DefaultSeed, "seed for hold times")
	fs.Int64Var(&f.initial, "initial", 0, "initial value of the shared resource")
	fs.StringVar(&f.policy, "policy", fairrw.WriterPreferred.String(), "writer-preferred or arrival-order")
	fs.StringVar(&f.logLevel, "log-level", "info", "debug, info, warn or error")
	fs.StringVar(&f.logFormat, "log-format", "console", "console or json")
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "fairrw",
		Short:         "Drive readers and writers through a fair RWLock",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(f.logLevel, f.logFormat)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if err := run(cmd, &f, logger); err != nil {
				logger.Error("run failed", zap.Error(err))
				return err
			}
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func run(cmd *cobra.Command, f *flags, logger *zap.Logger) error {
	policy, err := fairrw.ParsePolicy(f.policy)
	if err != nil {
		return err
	}
	lock := fairrw.NewRWLock(fairrw.WithPolicy(policy))
	reg := prometheus.NewRegistry()
	if err := reg.Register(metrics.NewCollector("workload", lock)); err != nil {
		return err
	}

	rep, err := workload.Run(cmd.Context(),
		workload.WithReaders(f.readers),
		workload.WithWriters(f.writers),
		workload.WithCycles(f.cycles),
		workload.WithMaxHold(f.maxHold),
		workload.WithSeed(f.seed),
		workload.WithInitial(f.initial),
		workload.WithLock(lock),
		workload.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	if err := logMetrics(logger, reg); err != nil {
		return err
	}
	for _, st := range rep.Tasks {
		logger.Info("task summary",
			zap.Stringer("task", st.ID),
			zap.Int("cycles", st.Cycles),
			zap.Duration("waited", st.Waited),
			zap.Duration("held", st.Held),
		)
	}
	if err := rep.Check(); err != nil {
		return fmt.Errorf("%w: %w", errCheckFailed, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d reads, %d writes, value %d -> %d in %v\n",
		rep.Policy, rep.Reads, rep.Writes, rep.Initial, rep.Final, rep.Elapsed.Round(time.Millisecond))
	return nil
}

// logMetrics logs every gauge and counter in reg, the same values a
// scraper would see.
func logMetrics(logger *zap.Logger, reg prometheus.Gatherer) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	fields := make([]zap.Field, 0, len(families))
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			v := m.GetGauge().GetValue() + m.GetCounter().GetValue()
			fields = append(fields, zap.Float64(mf.GetName(), v))
		}
	}
	logger.Info("lock metrics", fields...)
	return nil
}

func newLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	var cfg zap.Config
	switch format {
	case "json":
		cfg = zap.NewProductionConfig()
	case "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
