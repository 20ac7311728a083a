package race

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/coregx/congru/runner"
)

// fakeRunner is a minimal Runner for exercising the coordinator without
// pulling in a real congruence engine.
type fakeRunner struct {
	runner.Runner
	delay   time.Duration
	succeed bool
	runs    int
	mu      sync.Mutex
}

func (f *fakeRunner) Run() error {
	f.mu.Lock()
	f.runs++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.Runner.Killed() {
		return errors.New("killed")
	}
	f.Runner.SetSuccess(f.succeed)
	if !f.succeed {
		return errors.New("did not succeed")
	}
	return nil
}

func (f *fakeRunner) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

func TestCoordinatorSingleThreadedTakesExistingSuccess(t *testing.T) {
	c := New(Config{MaxThreads: 1})
	a := &fakeRunner{succeed: false}
	b := &fakeRunner{succeed: true}
	b.SetSuccess(true)
	c.Add(a)
	c.Add(b)

	w, err := c.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if w != Runner(b) {
		t.Fatal("expected the already-successful runner to win without running")
	}
	if a.runCount() != 0 {
		t.Fatalf("expected runner a to never run, ran %d times", a.runCount())
	}
}

func TestCoordinatorSingleThreadedRunsInOrder(t *testing.T) {
	c := New(Config{MaxThreads: 1})
	a := &fakeRunner{succeed: false}
	b := &fakeRunner{succeed: true}
	c.Add(a)
	c.Add(b)

	w, err := c.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if w != Runner(b) {
		t.Fatal("expected runner b to win")
	}
	if a.runCount() != 1 || b.runCount() != 1 {
		t.Fatalf("expected each runner to run once, got a=%d b=%d", a.runCount(), b.runCount())
	}
}

func TestCoordinatorAllFailReturnsUndecidable(t *testing.T) {
	c := New(Config{MaxThreads: 1})
	c.Add(&fakeRunner{succeed: false})
	c.Add(&fakeRunner{succeed: false})

	if _, err := c.Run(); err == nil {
		t.Fatal("expected an error when no runner succeeds")
	}
}

func TestCoordinatorNoRunners(t *testing.T) {
	c := New(DefaultConfig())
	if _, err := c.Run(); err == nil {
		t.Fatal("expected an error with no runners installed")
	}
}

func TestCoordinatorParallelFastRunnerWinsAndKillsSlow(t *testing.T) {
	c := New(Config{MaxThreads: 2})
	fast := &fakeRunner{succeed: true, delay: time.Millisecond}
	slow := &fakeRunner{succeed: true, delay: 50 * time.Millisecond}
	c.Add(fast)
	c.Add(slow)

	w, err := c.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if w != Runner(fast) {
		t.Fatal("expected the fast runner to win")
	}
	if !slow.Killed() {
		t.Fatal("expected the slow runner to be killed once the fast one won")
	}
}

func TestCoordinatorWinnerIndexStable(t *testing.T) {
	c := New(Config{MaxThreads: 1})
	a := &fakeRunner{succeed: false}
	b := &fakeRunner{succeed: true}
	c.Add(a)
	c.Add(b)

	if _, err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	idx1 := c.WinnerIndex()
	idx2 := c.WinnerIndex()
	if idx1 != idx2 || idx1 != 1 {
		t.Fatalf("WinnerIndex() = %d then %d, want 1 both times", idx1, idx2)
	}
	if c.Winner() != Runner(b) {
		t.Fatal("expected repeated Winner() calls to return the same runner")
	}
}

// taggedRunner lets TestFindRunner distinguish one concrete type from
// fakeRunner by embedding it.
type taggedRunner struct {
	*fakeRunner
}

func TestFindRunner(t *testing.T) {
	c := New(Config{MaxThreads: 1})
	plain := &fakeRunner{succeed: true}
	tagged := &taggedRunner{fakeRunner: &fakeRunner{succeed: true}}
	c.Add(plain)
	c.Add(tagged)

	got, ok := FindRunner[*taggedRunner](c)
	if !ok || got != tagged {
		t.Fatalf("FindRunner[*taggedRunner] = %v, %v, want %v, true", got, ok, tagged)
	}

	if _, ok := FindRunner[*fakeRunner](c); !ok {
		t.Fatal("expected FindRunner[*fakeRunner] to match the plain runner")
	}
}
