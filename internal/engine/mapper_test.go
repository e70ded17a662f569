package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mousemapper/mousemapper/internal/config"
	"github.com/mousemapper/mousemapper/internal/device"
	"github.com/mousemapper/mousemapper/internal/keycode"
	"github.com/mousemapper/mousemapper/internal/sink"
)

func TestProcessPassesThroughNonKeyEvents(t *testing.T) {
	m := NewMapper(sink.NewMock())
	rel := device.Event{Type: device.EvRel, Code: 0, Value: 5}
	out := m.Process(rel)
	require.Len(t, out, 1)
	assert.Equal(t, rel, out[0])
}

func TestProcessPassesThroughUnboundKey(t *testing.T) {
	m := NewMapper(sink.NewMock())
	a, _ := keycode.Parse("KEY_A")
	ev := device.NewKeyEvent(a, device.KeyPress)
	out := m.Process(ev)
	require.Len(t, out, 1)
	assert.Equal(t, ev, out[0])
}

func TestProcessRemapsBoundKey(t *testing.T) {
	m := NewMapper(sink.NewMock())
	m.LoadConfig(&config.Profile{
		Bindings: []config.Binding{
			{Input: "KEY_A", BindingOutput: config.BindingOutput{Key: "KEY_B"}},
		},
	})

	a, _ := keycode.Parse("KEY_A")
	b, _ := keycode.Parse("KEY_B")

	press := m.Process(device.NewKeyEvent(a, device.KeyPress))
	require.Len(t, press, 1)
	assert.Equal(t, b, press[0].Code)
	assert.Equal(t, device.KeyPress, press[0].Value)

	release := m.Process(device.NewKeyEvent(a, device.KeyRelease))
	require.Len(t, release, 1)
	assert.Equal(t, device.KeyRelease, release[0].Value)
}

func TestProcessUnparseableTargetPassesThrough(t *testing.T) {
	m := NewMapper(sink.NewMock())
	m.LoadConfig(&config.Profile{
		Bindings: []config.Binding{
			{Input: "KEY_A", BindingOutput: config.BindingOutput{Key: "NOT_A_REAL_KEY_NAME"}},
		},
	})
	a, _ := keycode.Parse("KEY_A")
	ev := device.NewKeyEvent(a, device.KeyPress)
	out := m.Process(ev)
	require.Len(t, out, 1)
	assert.Equal(t, ev, out[0])
}

func TestProcessMacroBindingEmitsNothingAndStartsRunner(t *testing.T) {
	s := sink.NewMock()
	m := NewMapper(s)
	m.LoadConfig(&config.Profile{
		Bindings: []config.Binding{
			{Input: "KEY_A", BindingOutput: config.BindingOutput{Macro: "rapid"}},
		},
		Macros: []config.MacroDef{
			{
				Name: "rapid",
				Mode: config.ModeSequence,
				Actions: []config.MacroAction{
					{Click: "KEY_B"},
				},
			},
		},
	})

	a, _ := keycode.Parse("KEY_A")
	out := m.Process(device.NewKeyEvent(a, device.KeyPress))
	assert.Empty(t, out)
	waitFor(t, time.Second, func() bool { return len(s.Batches()) >= 2 })
}

func TestProcessMacroAutorepeatIsSwallowed(t *testing.T) {
	s := sink.NewMock()
	m := NewMapper(s)
	m.LoadConfig(&config.Profile{
		Bindings: []config.Binding{
			{Input: "KEY_A", BindingOutput: config.BindingOutput{Macro: "hold"}},
		},
		Macros: []config.MacroDef{
			{Name: "hold", Mode: config.ModeRepeatOnHold, IntervalMs: 50, Actions: []config.MacroAction{{Click: "KEY_B"}}},
		},
	})
	a, _ := keycode.Parse("KEY_A")
	out := m.Process(device.NewKeyEvent(a, device.KeyRepeat))
	assert.Empty(t, out)
	assert.Equal(t, 0, m.runner.ActiveCount())
}

func TestProcessUnboundMacroNamePassesThrough(t *testing.T) {
	s := sink.NewMock()
	m := NewMapper(s)
	m.LoadConfig(&config.Profile{
		Bindings: []config.Binding{
			{Input: "KEY_A", BindingOutput: config.BindingOutput{Macro: "does_not_exist"}},
		},
	})
	a, _ := keycode.Parse("KEY_A")
	ev := device.NewKeyEvent(a, device.KeyPress)
	out := m.Process(ev)
	require.Len(t, out, 1)
	assert.Equal(t, ev, out[0])
}

func TestLoadConfigDuplicateInputsLastWins(t *testing.T) {
	m := NewMapper(sink.NewMock())
	m.LoadConfig(&config.Profile{
		Bindings: []config.Binding{
			{Input: "KEY_A", BindingOutput: config.BindingOutput{Key: "KEY_B"}},
			{Input: "KEY_A", BindingOutput: config.BindingOutput{Key: "KEY_C"}},
		},
	})
	a, _ := keycode.Parse("KEY_A")
	c, _ := keycode.Parse("KEY_C")
	out := m.Process(device.NewKeyEvent(a, device.KeyPress))
	require.Len(t, out, 1)
	assert.Equal(t, c, out[0].Code)
}

func TestLoadConfigSkipsUnparseableInput(t *testing.T) {
	m := NewMapper(sink.NewMock())
	m.LoadConfig(&config.Profile{
		Bindings: []config.Binding{
			{Input: "NOT_A_REAL_KEY_NAME", BindingOutput: config.BindingOutput{Key: "KEY_B"}},
		},
	})
	assert.Len(t, m.bindings, 0)
}
