// Package engine implements the event mapper, macro runner, and supervisor
// that together turn a grabbed source device's event stream into a
// re-mapped stream written to a virtual sink.
package engine

import (
	"github.com/mousemapper/mousemapper/internal/config"
	"github.com/mousemapper/mousemapper/internal/device"
	"github.com/mousemapper/mousemapper/internal/keycode"
	"github.com/mousemapper/mousemapper/internal/logger"
	"github.com/mousemapper/mousemapper/internal/sink"
)

// BindingMap is a numeric-KeyCode-to-output lookup, unique by trigger code;
// MacroMap is a macro-name-to-definition lookup. Both are derived fresh from
// the active profile on every LoadConfig call.
type BindingMap map[uint16]config.BindingOutput
type MacroMap map[string]config.MacroDef

// Mapper is the single-threaded consumer that turns one source event into
// zero or more output events, consulting BindingMap/MacroMap and dispatching
// to the macro runner for Macro-bound bindings.
type Mapper struct {
	bindings BindingMap
	macros   MacroMap
	runner   *MacroRunner
	log      interface {
		Warn(msg interface{}, kv ...interface{})
	}
}

// NewMapper builds a mapper writing macro output through s. LoadConfig must
// be called before Process sees any events with real bindings; an empty
// mapper simply passes everything through.
func NewMapper(s sink.Sink) *Mapper {
	return &Mapper{
		bindings: make(BindingMap),
		macros:   make(MacroMap),
		runner:   NewMacroRunner(s),
		log:      logger.With("component", "mapper"),
	}
}

// LoadConfig rebuilds BindingMap and MacroMap from profile. Input names that
// keycode.Parse can't resolve are logged and skipped, not fatal.
// Duplicate input codes: last-wins.
func (m *Mapper) LoadConfig(profile *config.Profile) {
	bindings := make(BindingMap, len(profile.Bindings))
	for _, b := range profile.Bindings {
		code, ok := keycode.Parse(b.Input)
		if !ok {
			m.log.Warn("binding names unknown input key, skipping", "input", b.Input)
			continue
		}
		bindings[code] = b.BindingOutput
	}

	macros := make(MacroMap, len(profile.Macros))
	for _, def := range profile.Macros {
		macros[def.Name] = def
	}

	m.bindings = bindings
	m.macros = macros
}

// Process maps one source event to zero or more output events.
func (m *Mapper) Process(ev device.Event) []device.Event {
	if !ev.IsKey() {
		return []device.Event{ev}
	}

	out, bound := m.bindings[ev.Code]
	if !bound {
		return []device.Event{ev}
	}

	if out.IsMacro() {
		return m.processMacro(out.Macro, ev)
	}

	target, ok := keycode.Parse(out.Key)
	if !ok {
		m.log.Warn("binding target names unknown key, passing through", "target", out.Key)
		return []device.Event{ev}
	}
	return []device.Event{device.NewKeyEvent(target, ev.Value)}
}

// processMacro dispatches a Macro-bound event to the runner. An unknown
// macro name passes the triggering event through unchanged instead of
// silently swallowing it.
func (m *Mapper) processMacro(name string, ev device.Event) []device.Event {
	def, ok := m.macros[name]
	if !ok {
		m.log.Warn("binding references unknown macro, passing through", "macro", name)
		return []device.Event{ev}
	}

	switch ev.Value {
	case device.KeyPress:
		m.runner.Start(ev.Code, def)
	case device.KeyRelease:
		m.runner.Stop(ev.Code)
	case device.KeyRepeat:
		// swallowed: autorepeat must never re-trigger a macro
	}
	return nil
}

// StopAllMacros forwards to the runner; called by the supervisor on
// shutdown.
func (m *Mapper) StopAllMacros() { m.runner.StopAll() }
