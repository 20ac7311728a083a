// Package race holds a set of independent congruence engines (Knuth-Bendix,
// Todd-Coxeter, pair-closure) and drives them concurrently, taking whichever
// finishes first (spec §4.I). No engine is ever parallelised internally;
// all intra-engine parallelism lives here.
package race

import (
	"runtime"
	"sync"

	"github.com/coregx/congru/presentation"
)

// Runner is the capability set a race coordinator needs from an engine: run
// to completion or cancellation, report the outcome, and be killable from
// another goroutine (spec §9 "Polymorphism": a small capability set rather
// than an inheritance hierarchy).
type Runner interface {
	Run() error
	Kill()
	Killed() bool
	Finished() bool
	Success() bool
}

// UntilRunner is the optional capability backing Coordinator.RunUntil: an
// engine that can stop early once an external predicate is satisfied.
type UntilRunner interface {
	Runner
	RunUntil(pred func() bool) error
}

// Config controls how many OS threads a Coordinator is willing to use.
type Config struct {
	// MaxThreads caps the number of runners raced concurrently. Default:
	// runtime.GOMAXPROCS(0).
	MaxThreads int
}

// DefaultConfig returns MaxThreads set to the current GOMAXPROCS.
func DefaultConfig() Config {
	return Config{MaxThreads: runtime.GOMAXPROCS(0)}
}

// Coordinator races a fixed set of runners and remembers the winner, so
// repeated queries after a race don't re-run it (spec §4.I "winner_index is
// stable across repeated calls to winner()").
type Coordinator struct {
	mu      sync.Mutex
	cfg     Config
	runners []Runner
	winner  int // index into runners, or -1
	ran     bool
}

// New creates a Coordinator with no runners installed yet.
func New(cfg Config) *Coordinator {
	if cfg.MaxThreads <= 0 {
		cfg.MaxThreads = runtime.GOMAXPROCS(0)
	}
	return &Coordinator{cfg: cfg, winner: -1}
}

// Add installs r as one of the runners to race. Must be called before Run.
func (c *Coordinator) Add(r Runner) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runners = append(c.runners, r)
}

// NrRunners returns how many runners are installed.
func (c *Coordinator) NrRunners() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.runners)
}

// Run races every installed runner to completion, returning the first to
// report Success. A single runner, or MaxThreads == 1, takes the
// single-threaded fast path (spec §4.I): if any runner already reports
// Success, it's taken without running anything; otherwise runners are run
// in turn and the first success wins. With more than one runner and
// MaxThreads > 1, every runner races in its own goroutine and the first to
// succeed kills the rest.
func (c *Coordinator) Run() (Runner, error) {
	c.mu.Lock()
	if c.ran {
		w := c.winnerLocked()
		c.mu.Unlock()
		if w == nil {
			return nil, presentation.ErrUndecidable
		}
		return w, nil
	}
	runners := append([]Runner(nil), c.runners...)
	maxThreads := c.cfg.MaxThreads
	c.mu.Unlock()

	if len(runners) == 0 {
		return nil, presentation.ErrNoRunners
	}

	var idx int
	var err error
	if maxThreads <= 1 || len(runners) == 1 {
		idx, err = runSingleThreaded(runners)
	} else {
		idx, err = runParallel(runners)
	}

	c.mu.Lock()
	c.ran = true
	c.winner = idx
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return runners[idx], nil
}

// RunUntil races every installed runner, but each one stops as soon as
// pred reports true (spec §4.I: "run_until(pred) is implemented by
// delegating to each runner's run_until(pred)"). Runners that don't
// implement UntilRunner fall back to a plain Run.
func (c *Coordinator) RunUntil(pred func() bool) (Runner, error) {
	c.mu.Lock()
	runners := append([]Runner(nil), c.runners...)
	maxThreads := c.cfg.MaxThreads
	c.mu.Unlock()

	if len(runners) == 0 {
		return nil, presentation.ErrNoRunners
	}

	run := func(r Runner) error {
		if u, ok := r.(UntilRunner); ok {
			return u.RunUntil(pred)
		}
		return r.Run()
	}

	var idx int
	var err error
	if maxThreads <= 1 || len(runners) == 1 {
		idx, err = runSingleThreadedWith(runners, run)
	} else {
		idx, err = runParallelWith(runners, run)
	}

	c.mu.Lock()
	c.ran = true
	c.winner = idx
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return runners[idx], nil
}

func runSingleThreaded(runners []Runner) (int, error) {
	return runSingleThreadedWith(runners, Runner.Run)
}

func runSingleThreadedWith(runners []Runner, run func(Runner) error) (int, error) {
	for i, r := range runners {
		if r.Success() {
			return i, nil
		}
	}
	for i, r := range runners {
		if err := run(r); err == nil && r.Success() {
			return i, nil
		}
	}
	return -1, presentation.ErrUndecidable
}

func runParallel(runners []Runner) (int, error) {
	return runParallelWith(runners, Runner.Run)
}

func runParallelWith(runners []Runner, run func(Runner) error) (int, error) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	winner := -1

	for i, r := range runners {
		wg.Add(1)
		go func(i int, r Runner) {
			defer wg.Done()
			err := run(r)
			if err != nil || !r.Success() {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if winner == -1 {
				winner = i
				for j, other := range runners {
					if j != i {
						other.Kill()
					}
				}
			}
		}(i, r)
	}
	wg.Wait()

	if winner == -1 {
		return -1, presentation.ErrUndecidable
	}
	return winner, nil
}

// Winner returns the runner selected by the last Run/RunUntil call, or nil
// if none has succeeded (including if Run hasn't been called yet).
func (c *Coordinator) Winner() Runner {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.winnerLocked()
}

func (c *Coordinator) winnerLocked() Runner {
	if c.winner < 0 || c.winner >= len(c.runners) {
		return nil
	}
	return c.runners[c.winner]
}

// WinnerIndex returns the index of the winning runner within Add order, or
// -1 if there is none yet.
func (c *Coordinator) WinnerIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.winner
}

// FindRunner returns the first installed runner of dynamic type T, and
// true, or the zero value and false if none matches (spec §4.I
// "find_runner<T>()"). A free function rather than a method since Go
// methods cannot carry their own type parameters.
func FindRunner[T Runner](c *Coordinator) (T, bool) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.runners {
		if t, ok := r.(T); ok {
			return t, true
		}
	}
	return zero, false
}
