// Package device owns the evdev-facing data model: input events, capability
// descriptions, and the exclusive-grab reader that streams events off a
// source device.
package device

import (
	"strconv"
	"time"
)

// EventType mirrors the Linux kernel's input_event type field.
type EventType uint16

// Event types the engine cares about. Values match <linux/input-event-codes.h>.
const (
	EvSyn EventType = 0x00
	EvKey EventType = 0x01
	EvRel EventType = 0x02
	EvAbs EventType = 0x03
	EvMsc EventType = 0x04
)

// String renders the symbolic name used on the observation channel:
// "EV_SYN", "EV_KEY", ..., or "EV_<n>" for anything unrecognized.
func (t EventType) String() string {
	switch t {
	case EvSyn:
		return "EV_SYN"
	case EvKey:
		return "EV_KEY"
	case EvRel:
		return "EV_REL"
	case EvAbs:
		return "EV_ABS"
	case EvMsc:
		return "EV_MSC"
	default:
		return "EV_" + strconv.Itoa(int(t))
	}
}

// KeyCode is a 16-bit Linux input event code (a KEY_*, BTN_*, REL_*, or ABS_*
// constant, depending on the event type it is paired with).
type KeyCode uint16

// Key value conventions for EvKey events.
const (
	KeyRelease int32 = 0
	KeyPress   int32 = 1
	KeyRepeat  int32 = 2
)

// Event is the engine's wire-independent representation of a single kernel
// input_event record.
type Event struct {
	Type  EventType
	Code  uint16
	Value int32
	Time  time.Time
}

// NewKeyEvent builds a KEY event with the given press/release/repeat value.
func NewKeyEvent(code uint16, value int32) Event {
	return Event{Type: EvKey, Code: code, Value: value, Time: time.Now()}
}

// NewSyn builds a SYN_REPORT event.
func NewSyn() Event {
	return Event{Type: EvSyn, Code: 0, Value: 0, Time: time.Now()}
}

// IsSyn reports whether this event is a SYN_REPORT.
func (e Event) IsSyn() bool { return e.Type == EvSyn }

// IsKey reports whether this event is a key/button event.
func (e Event) IsKey() bool { return e.Type == EvKey }
