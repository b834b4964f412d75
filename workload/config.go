// Package workload drives a fairrw.RWLock with a configurable population of
// reader and writer tasks and records what every task observed.
package workload

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/llxisdsh/fairrw"
)

// ErrInvalidConfig is wrapped by every error returned from Config.Validate.
var ErrInvalidConfig = errors.New("workload: invalid config")

// Defaults mirror the classic demo: a handful of readers and writers, four
// cycles each, holds of up to twenty seconds.
const (
	DefaultReaders = 3
	DefaultWriters = 3
	DefaultCycles  = 4
	DefaultMaxHold = 20 * time.Second
	DefaultSeed    = 1
)

// Config describes one workload run.
type Config struct {
	// Readers and Writers are the number of tasks of each kind.
	Readers int
	Writers int
	// Cycles is how many times every task acquires and releases the lock.
	Cycles int
	// MaxHold bounds the simulated work inside each access window.
	// Hold times are drawn uniformly from [0, MaxHold).
	MaxHold time.Duration
	// Seed makes hold times reproducible. Every task derives its own
	// stream from it.
	Seed uint64
	// Initial is the starting value of the shared resource.
	Initial int64
	// Policy is handed to the lock under test.
	Policy fairrw.Policy
	// Lock, if set, is used instead of a fresh lock and its policy
	// overrides Policy. Callers use it to observe the lock while the
	// workload runs.
	Lock *fairrw.RWLock
	// Clock supplies Now and Sleep. Tests pass a fake clock.
	Clock clockwork.Clock
	// Logger narrates task lifecycle events.
	Logger *zap.Logger
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the configuration used when no option is given.
func DefaultConfig() Config {
	return Config{
		Readers: DefaultReaders,
		Writers: DefaultWriters,
		Cycles:  DefaultCycles,
		MaxHold: DefaultMaxHold,
		Seed:    DefaultSeed,
		Policy:  fairrw.WriterPreferred,
		Clock:   clockwork.NewRealClock(),
		Logger:  zap.NewNop(),
	}
}

// NewConfig applies options on top of DefaultConfig.
func NewConfig(options ...Option) Config {
	cfg := DefaultConfig()
	for _, o := range options {
		o(&cfg)
	}
	return cfg
}

// Validate reports the first setting that cannot be run.
func (c Config) Validate() error {
	switch {
	case c.Readers < 0:
		return fmt.Errorf("%w: readers = %d", ErrInvalidConfig, c.Readers)
	case c.Writers < 0:
		return fmt.Errorf("%w: writers = %d", ErrInvalidConfig, c.Writers)
	case c.Readers+c.Writers == 0:
		return fmt.Errorf("%w: no tasks", ErrInvalidConfig)
	case c.Cycles <= 0:
		return fmt.Errorf("%w: cycles = %d", ErrInvalidConfig, c.Cycles)
	case c.MaxHold < 0:
		return fmt.Errorf("%w: max hold = %v", ErrInvalidConfig, c.MaxHold)
	case c.Policy != fairrw.WriterPreferred && c.Policy != fairrw.ArrivalOrder:
		return fmt.Errorf("%w: policy = %v", ErrInvalidConfig, c.Policy)
	case c.Clock == nil:
		return fmt.Errorf("%w: nil clock", ErrInvalidConfig)
	case c.Logger == nil:
		return fmt.Errorf("%w: nil logger", ErrInvalidConfig)
	}
	return nil
}

func WithReaders(n int) Option {
	return func(c *Config) { c.Readers = n }
}

func WithWriters(n int) Option {
	return func(c *Config) { c.Writers = n }
}

func WithCycles(n int) Option {
	return func(c *Config) { c.Cycles = n }
}

// WithMaxHold sets the upper bound of simulated work. Zero disables
// holding entirely.
func WithMaxHold(d time.Duration) Option {
	return func(c *Config) { c.MaxHold = d }
}

func WithSeed(seed uint64) Option {
	return func(c *Config) { c.Seed = seed }
}

func WithInitial(v int64) Option {
	return func(c *Config) { c.Initial = v }
}

func WithPolicy(p fairrw.Policy) Option {
	return func(c *Config) { c.Policy = p }
}

// WithLock runs the workload against an existing, idle lock.
func WithLock(l *fairrw.RWLock) Option {
	return func(c *Config) {
		c.Lock = l
		if l != nil {
			c.Policy = l.Policy()
		}
	}
}

func WithClock(clock clockwork.Clock) Option {
	return func(c *Config) { c.Clock = clock }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Config) { c.Logger = l }
}
