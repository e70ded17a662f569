// Package keycode implements the bidirectional mapping between symbolic key
// names ("KEY_A", "BTN_LEFT", ...) and the numeric Linux input event codes
// they name. Numeric values come from golang-evdev's exported
// code constants rather than hand-copied literals, so this table can never
// drift from what the device reader and virtual sink actually exchange.
package keycode

import (
	"strconv"
	"strings"

	"github.com/gvalkov/golang-evdev"
)

// byName is the canonical symbolic-name table. Mouse/button names are stored
// as given; keyboard names are always looked up with the KEY_ prefix present.
var byName = map[string]uint16{
	// Mouse buttons.
	"BTN_LEFT":    evdev.BTN_LEFT,
	"BTN_RIGHT":   evdev.BTN_RIGHT,
	"BTN_MIDDLE":  evdev.BTN_MIDDLE,
	"BTN_SIDE":    evdev.BTN_SIDE,
	"BTN_EXTRA":   evdev.BTN_EXTRA,
	"BTN_FORWARD": evdev.BTN_FORWARD,
	"BTN_BACK":    evdev.BTN_BACK,
	"BTN_TASK":    evdev.BTN_TASK,

	// Top row and digits.
	"KEY_ESC":       evdev.KEY_ESC,
	"KEY_1":         evdev.KEY_1,
	"KEY_2":         evdev.KEY_2,
	"KEY_3":         evdev.KEY_3,
	"KEY_4":         evdev.KEY_4,
	"KEY_5":         evdev.KEY_5,
	"KEY_6":         evdev.KEY_6,
	"KEY_7":         evdev.KEY_7,
	"KEY_8":         evdev.KEY_8,
	"KEY_9":         evdev.KEY_9,
	"KEY_0":         evdev.KEY_0,
	"KEY_MINUS":     evdev.KEY_MINUS,
	"KEY_EQUAL":     evdev.KEY_EQUAL,
	"KEY_BACKSPACE": evdev.KEY_BACKSPACE,
	"KEY_TAB":       evdev.KEY_TAB,

	// Letters.
	"KEY_A": evdev.KEY_A, "KEY_B": evdev.KEY_B, "KEY_C": evdev.KEY_C,
	"KEY_D": evdev.KEY_D, "KEY_E": evdev.KEY_E, "KEY_F": evdev.KEY_F,
	"KEY_G": evdev.KEY_G, "KEY_H": evdev.KEY_H, "KEY_I": evdev.KEY_I,
	"KEY_J": evdev.KEY_J, "KEY_K": evdev.KEY_K, "KEY_L": evdev.KEY_L,
	"KEY_M": evdev.KEY_M, "KEY_N": evdev.KEY_N, "KEY_O": evdev.KEY_O,
	"KEY_P": evdev.KEY_P, "KEY_Q": evdev.KEY_Q, "KEY_R": evdev.KEY_R,
	"KEY_S": evdev.KEY_S, "KEY_T": evdev.KEY_T, "KEY_U": evdev.KEY_U,
	"KEY_V": evdev.KEY_V, "KEY_W": evdev.KEY_W, "KEY_X": evdev.KEY_X,
	"KEY_Y": evdev.KEY_Y, "KEY_Z": evdev.KEY_Z,

	"KEY_LEFTBRACE":  evdev.KEY_LEFTBRACE,
	"KEY_RIGHTBRACE": evdev.KEY_RIGHTBRACE,
	"KEY_ENTER":      evdev.KEY_ENTER,
	"KEY_SEMICOLON":  evdev.KEY_SEMICOLON,
	"KEY_APOSTROPHE": evdev.KEY_APOSTROPHE,
	"KEY_GRAVE":      evdev.KEY_GRAVE,
	"KEY_BACKSLASH":  evdev.KEY_BACKSLASH,
	"KEY_COMMA":      evdev.KEY_COMMA,
	"KEY_DOT":        evdev.KEY_DOT,
	"KEY_SLASH":      evdev.KEY_SLASH,

	// Modifiers.
	"KEY_LEFTCTRL":   evdev.KEY_LEFTCTRL,
	"KEY_RIGHTCTRL":  evdev.KEY_RIGHTCTRL,
	"KEY_LEFTSHIFT":  evdev.KEY_LEFTSHIFT,
	"KEY_RIGHTSHIFT": evdev.KEY_RIGHTSHIFT,
	"KEY_LEFTALT":    evdev.KEY_LEFTALT,
	"KEY_RIGHTALT":   evdev.KEY_RIGHTALT,
	"KEY_CAPSLOCK":   evdev.KEY_CAPSLOCK,
	"KEY_SPACE":      evdev.KEY_SPACE,

	// Function keys.
	"KEY_F1": evdev.KEY_F1, "KEY_F2": evdev.KEY_F2, "KEY_F3": evdev.KEY_F3,
	"KEY_F4": evdev.KEY_F4, "KEY_F5": evdev.KEY_F5, "KEY_F6": evdev.KEY_F6,
	"KEY_F7": evdev.KEY_F7, "KEY_F8": evdev.KEY_F8, "KEY_F9": evdev.KEY_F9,
	"KEY_F10": evdev.KEY_F10, "KEY_F11": evdev.KEY_F11, "KEY_F12": evdev.KEY_F12,

	// Navigation cluster.
	"KEY_HOME":     evdev.KEY_HOME,
	"KEY_UP":       evdev.KEY_UP,
	"KEY_PAGEUP":   evdev.KEY_PAGEUP,
	"KEY_LEFT":     evdev.KEY_LEFT,
	"KEY_RIGHT":    evdev.KEY_RIGHT,
	"KEY_END":      evdev.KEY_END,
	"KEY_DOWN":     evdev.KEY_DOWN,
	"KEY_PAGEDOWN": evdev.KEY_PAGEDOWN,
	"KEY_INSERT":   evdev.KEY_INSERT,
	"KEY_DELETE":   evdev.KEY_DELETE,
}

// byCode is the reverse table, built once from byName.
var byCode = func() map[uint16]string {
	m := make(map[uint16]string, len(byName))
	for name, code := range byName {
		// Mouse button names take priority over any numeric collision;
		// none of the canonical BTN_*/KEY_* values actually collide, but
		// range over map order is unspecified so collisions (were any to
		// exist) would be non-deterministic without a priority rule.
		if _, exists := m[code]; exists && strings.HasPrefix(name, "KEY_") {
			continue
		}
		m[code] = name
	}
	return m
}()

// Parse resolves a symbolic key name to its numeric code: upper-case the
// input, recognize canonical button names directly, otherwise ensure a
// KEY_ prefix and look the result up in the table, and finally fall back
// to parsing the original string as a decimal integer.
func Parse(name string) (uint16, bool) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if code, ok := byName[upper]; ok {
		return code, true
	}
	if !strings.HasPrefix(upper, "KEY_") && !strings.HasPrefix(upper, "BTN_") {
		if code, ok := byName["KEY_"+upper]; ok {
			return code, true
		}
	}
	if n, err := strconv.ParseUint(name, 10, 16); err == nil {
		return uint16(n), true
	}
	return 0, false
}

// String produces a stable display name for code: the canonical symbolic
// name if known, otherwise its decimal value.
func String(code uint16) string {
	if name, ok := byCode[code]; ok {
		return name
	}
	return strconv.Itoa(int(code))
}
