package runner

import (
	"testing"
	"time"
)

func TestRunCompletesOnStepperDone(t *testing.T) {
	var r Runner
	n := 0
	r.Run(func() bool {
		n++
		return n == 3
	})
	if n != 3 {
		t.Fatalf("n = %d, want 3", n)
	}
	if !r.Finished() {
		t.Fatal("expected Finished() == true")
	}
}

func TestKillStopsRun(t *testing.T) {
	var r Runner
	n := 0
	r.Run(func() bool {
		n++
		if n == 2 {
			r.Kill()
		}
		return false
	})
	if n != 2 {
		t.Fatalf("n = %d, want 2", n)
	}
	if r.Finished() {
		t.Fatal("expected Finished() == false after Kill")
	}
	if !r.Killed() {
		t.Fatal("expected Killed() == true")
	}
}

func TestRunForTimesOut(t *testing.T) {
	var r Runner
	r.RunFor(5*time.Millisecond, func() bool {
		time.Sleep(time.Millisecond)
		return false
	})
	if r.Finished() {
		t.Fatal("expected Finished() == false on timeout")
	}
	if !r.TimedOut() {
		t.Fatal("expected TimedOut() == true")
	}
}

func TestRunUntilPredicate(t *testing.T) {
	var r Runner
	n := 0
	r.RunUntil(func() bool { return n >= 5 }, func() bool {
		n++
		return false
	})
	if n != 5 {
		t.Fatalf("n = %d, want 5", n)
	}
	if r.Finished() {
		t.Fatal("expected Finished() == false, stopped by predicate not stepper")
	}
}

func TestReportIntervalGating(t *testing.T) {
	var r Runner
	if r.Report() {
		t.Fatal("Report() should be false with no interval configured")
	}
	r.SetReportInterval(time.Millisecond)
	if !r.Report() {
		t.Fatal("expected first Report() after SetReportInterval to be true")
	}
	if r.Report() {
		t.Fatal("expected immediate second Report() to be false")
	}
	time.Sleep(2 * time.Millisecond)
	if !r.Report() {
		t.Fatal("expected Report() to be true after interval elapsed")
	}
}

func TestConfigureInvokesOnReport(t *testing.T) {
	var r Runner
	calls := 0
	r.Configure(&ReportingContext{Interval: time.Millisecond, OnReport: func() { calls++ }})
	n := 0
	r.Run(func() bool {
		n++
		if n == 1 {
			time.Sleep(2 * time.Millisecond)
		}
		return n == 2
	})
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestConfigureNilDisablesReporting(t *testing.T) {
	var r Runner
	r.Configure(&ReportingContext{Interval: time.Nanosecond, OnReport: func() { t.Fatal("should not be called") }})
	r.Configure(nil)
	r.Run(func() bool { return true })
}

func TestResetClearsState(t *testing.T) {
	var r Runner
	r.Kill()
	r.SetSuccess(true)
	r.Run(func() bool { return true })
	r.Reset()
	if r.Killed() || r.Finished() || r.Success() || r.TimedOut() {
		t.Fatal("expected all flags cleared after Reset")
	}
}
