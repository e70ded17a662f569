package engine

import (
	"testing"
	"time"

	"github.com/mousemapper/mousemapper/internal/config"
	"github.com/mousemapper/mousemapper/internal/sink"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	if !cond() {
		t.Fatalf("condition not met within %s", timeout)
	}
}

func TestRepeatOnHoldSecondPressIsAbsorbed(t *testing.T) {
	s := sink.NewMock()
	r := NewMacroRunner(s)
	def := config.MacroDef{
		Name:       "hold",
		Mode:       config.ModeRepeatOnHold,
		IntervalMs: 500,
		Actions:    []config.MacroAction{{Click: "KEY_A"}},
	}

	r.Start(30, def)
	waitFor(t, 100*time.Millisecond, func() bool { return r.ActiveCount() == 1 })
	r.Start(30, def) // autorepeat re-press: must be a no-op

	if r.ActiveCount() != 1 {
		t.Fatalf("expected exactly one active timer, got %d", r.ActiveCount())
	}

	r.Stop(30)
	waitFor(t, 100*time.Millisecond, func() bool { return r.ActiveCount() == 0 })
}

func TestRepeatOnHoldClicksOnEachInterval(t *testing.T) {
	s := sink.NewMock()
	r := NewMacroRunner(s)
	def := config.MacroDef{
		Name:       "hold",
		Mode:       config.ModeRepeatOnHold,
		IntervalMs: 10,
		Actions:    []config.MacroAction{{Click: "KEY_A"}},
	}
	r.Start(30, def)
	waitFor(t, time.Second, func() bool { return len(s.Batches()) >= 4 })
	r.Stop(30)
}

func TestToggleSurvivesReleaseAndCancelsOnSecondPress(t *testing.T) {
	s := sink.NewMock()
	r := NewMacroRunner(s)
	def := config.MacroDef{
		Name:       "toggle",
		Mode:       config.ModeToggle,
		IntervalMs: 10,
		Actions:    []config.MacroAction{{Click: "KEY_A"}},
	}

	r.Start(31, def)
	waitFor(t, 100*time.Millisecond, func() bool { return r.ActiveCount() == 1 })

	r.Stop(31) // the release event: Toggle must ignore it
	time.Sleep(50 * time.Millisecond)
	if r.ActiveCount() != 1 {
		t.Fatalf("expected toggle to survive release, active=%d", r.ActiveCount())
	}

	r.Start(31, def) // second press cancels
	waitFor(t, 100*time.Millisecond, func() bool { return r.ActiveCount() == 0 })
}

func TestSequenceRunsActionsInOrderAndIsNotTracked(t *testing.T) {
	s := sink.NewMock()
	r := NewMacroRunner(s)
	def := config.MacroDef{
		Name: "seq",
		Mode: config.ModeSequence,
		Actions: []config.MacroAction{
			{Press: "KEY_A"},
			{DelayMs: 5},
			{Release: "KEY_A"},
			{Click: "KEY_B"},
		},
	}
	r.Start(32, def)

	waitFor(t, time.Second, func() bool { return len(s.Batches()) >= 4 })
	if r.ActiveCount() != 0 {
		t.Fatalf("sequence macros must not be tracked in active, got %d", r.ActiveCount())
	}

	batches := s.Batches()
	if batches[0][0].Value != 1 { // press
		t.Errorf("expected first batch to be a press")
	}
	if batches[1][0].Value != 0 { // release
		t.Errorf("expected second batch to be a release")
	}
}

func TestStopAllCancelsEverything(t *testing.T) {
	s := sink.NewMock()
	r := NewMacroRunner(s)
	def := config.MacroDef{Mode: config.ModeRepeatOnHold, IntervalMs: 500, Actions: []config.MacroAction{{Click: "KEY_A"}}}
	r.Start(1, def)
	r.Start(2, def)
	waitFor(t, 100*time.Millisecond, func() bool { return r.ActiveCount() == 2 })

	r.StopAll()
	waitFor(t, 100*time.Millisecond, func() bool { return r.ActiveCount() == 0 })
}

func TestJitteredIntervalNeverGoesBelowOneMillisecond(t *testing.T) {
	s := sink.NewMock()
	r := NewMacroRunner(s)
	def := config.MacroDef{IntervalMs: 1, JitterMs: 100}
	for i := 0; i < 50; i++ {
		if d := r.jitteredInterval(def); d < time.Millisecond {
			t.Fatalf("jittered interval below floor: %s", d)
		}
	}
}
