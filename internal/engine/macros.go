package engine

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/mousemapper/mousemapper/internal/config"
	"github.com/mousemapper/mousemapper/internal/keycode"
	"github.com/mousemapper/mousemapper/internal/logger"
	"github.com/mousemapper/mousemapper/internal/sink"
)

// MacroRunner holds, per trigger KeyCode, the cancellation signal for an
// in-flight timer and whether a Toggle macro is currently armed, and
// dispatches the three macro modes over it.
type MacroRunner struct {
	mu          sync.Mutex
	sink        sink.Sink
	active      map[uint16]chan struct{}
	toggleState map[uint16]bool
	rng         *mathrand.Rand
	log         interface {
		Warn(msg interface{}, kv ...interface{})
	}
}

// NewMacroRunner builds a runner writing through the given sink. The jitter
// RNG is seeded once from OS entropy (crypto/rand); no determinism guarantee
// is made across invocations.
func NewMacroRunner(s sink.Sink) *MacroRunner {
	return &MacroRunner{
		sink:        s,
		active:      make(map[uint16]chan struct{}),
		toggleState: make(map[uint16]bool),
		rng:         mathrand.New(mathrand.NewSource(seedFromEntropy())),
		log:         logger.With("component", "macros"),
	}
}

func seedFromEntropy() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(buf[:]))
}

// Start dispatches def on trigger's press, by mode.
func (r *MacroRunner) Start(trigger uint16, def config.MacroDef) {
	switch def.Mode {
	case config.ModeRepeatOnHold:
		r.startRepeatOnHold(trigger, def)
	case config.ModeSequence:
		r.startSequence(def)
	case config.ModeToggle:
		r.startToggle(trigger, def)
	default:
		r.log.Warn("unknown macro mode, ignoring", "mode", def.Mode, "macro", def.Name)
	}
}

func (r *MacroRunner) startRepeatOnHold(trigger uint16, def config.MacroDef) {
	r.mu.Lock()
	if _, exists := r.active[trigger]; exists {
		r.mu.Unlock()
		return
	}
	cancel := make(chan struct{})
	r.active[trigger] = cancel
	r.mu.Unlock()

	go r.repeatTask(cancel, def)
}

func (r *MacroRunner) startSequence(def config.MacroDef) {
	go r.sequenceTask(def)
}

func (r *MacroRunner) startToggle(trigger uint16, def config.MacroDef) {
	r.mu.Lock()
	if r.toggleState[trigger] {
		r.toggleState[trigger] = false
		if cancel, ok := r.active[trigger]; ok {
			close(cancel)
			delete(r.active, trigger)
		}
		r.mu.Unlock()
		return
	}
	r.toggleState[trigger] = true
	cancel := make(chan struct{})
	r.active[trigger] = cancel
	r.mu.Unlock()

	armed := def
	armed.InitialDelayMs = 0
	go r.repeatTask(cancel, armed)
}

// Stop is the button-release path: RepeatOnHold cancels its timer; Toggle
// ignores the release entirely.
func (r *MacroRunner) Stop(trigger uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.toggleState[trigger] {
		return
	}
	if cancel, ok := r.active[trigger]; ok {
		close(cancel)
		delete(r.active, trigger)
	}
}

// StopAll cancels every active timer and clears both tables. Called on
// engine shutdown.
func (r *MacroRunner) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for trigger, cancel := range r.active {
		close(cancel)
		delete(r.active, trigger)
	}
	for trigger := range r.toggleState {
		delete(r.toggleState, trigger)
	}
}

// repeatTask runs an optional initial delay (raced against cancellation),
// then loops actions followed by a jittered interval sleep, each racing
// cancellation.
func (r *MacroRunner) repeatTask(cancel <-chan struct{}, def config.MacroDef) {
	if def.InitialDelayMs > 0 {
		if r.sleepOrCancel(time.Duration(def.InitialDelayMs)*time.Millisecond, cancel) {
			return
		}
	}

	for {
		for _, action := range def.Actions {
			select {
			case <-cancel:
				return
			default:
			}
			if r.executeAction(action, cancel) {
				return
			}
		}

		select {
		case <-cancel:
			return
		default:
		}
		if r.sleepOrCancel(r.jitteredInterval(def), cancel) {
			return
		}
	}
}

// sequenceTask runs a one-shot action list to completion with real delays;
// it is not tracked in `active` and is not cancellable.
func (r *MacroRunner) sequenceTask(def config.MacroDef) {
	for _, action := range def.Actions {
		r.executeActionAsync(action)
	}
}

// executeAction performs one action of a repeat/toggle body, racing a Delay
// action's sleep against cancellation; it returns true if cancelled.
func (r *MacroRunner) executeAction(action config.MacroAction, cancel <-chan struct{}) bool {
	switch {
	case action.DelayMs > 0:
		return r.sleepOrCancel(time.Duration(action.DelayMs)*time.Millisecond, cancel)
	case action.Click != "":
		r.emit(action.Click, r.sink.Click)
	case action.Press != "":
		r.emit(action.Press, r.sink.Press)
	case action.Release != "":
		r.emit(action.Release, r.sink.Release)
	}
	return false
}

// executeActionAsync is the Sequence-mode counterpart of executeAction: real
// (uncancellable) delays, same click/press/release dispatch.
func (r *MacroRunner) executeActionAsync(action config.MacroAction) {
	switch {
	case action.DelayMs > 0:
		time.Sleep(time.Duration(action.DelayMs) * time.Millisecond)
	case action.Click != "":
		r.emit(action.Click, r.sink.Click)
	case action.Press != "":
		r.emit(action.Press, r.sink.Press)
	case action.Release != "":
		r.emit(action.Release, r.sink.Release)
	}
}

func (r *MacroRunner) emit(name string, fn func(uint16) error) {
	code, ok := keycode.Parse(name)
	if !ok {
		r.log.Warn("macro action names unknown key, skipping", "name", name)
		return
	}
	if err := fn(code); err != nil {
		r.log.Warn("macro sink write failed", "err", err)
	}
}

// jitteredInterval computes the next sleep: interval, or
// max(1, interval + uniform(-jitter, +jitter)) when jitter_ms != 0.
func (r *MacroRunner) jitteredInterval(def config.MacroDef) time.Duration {
	if def.JitterMs == 0 {
		return time.Duration(def.IntervalMs) * time.Millisecond
	}
	r.mu.Lock()
	delta := r.rng.Int63n(int64(2*def.JitterMs+1)) - int64(def.JitterMs)
	r.mu.Unlock()

	ms := int64(def.IntervalMs) + delta
	if ms < 1 {
		ms = 1
	}
	return time.Duration(ms) * time.Millisecond
}

// sleepOrCancel suspends for d, racing cancel; it returns true if cancel won.
func (r *MacroRunner) sleepOrCancel(d time.Duration, cancel <-chan struct{}) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-cancel:
		return true
	case <-timer.C:
		return false
	}
}

// ActiveCount reports how many timers are currently alive (a test helper
// for asserting that cancellation actually tears timers down).
func (r *MacroRunner) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}
