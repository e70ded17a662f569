// Package sink owns the virtual uinput output device: the component that
// mirrors a source evdev device's capabilities and replays transformed
// events through it.
package sink

import "github.com/mousemapper/mousemapper/internal/device"

// VirtualDeviceName is the name advertised to the kernel for every sink
// created by this package.
const VirtualDeviceName = "MouseMapper Virtual Device"

// Sink is the contract the mapper and macro runner emit through. A single
// Sink is shared between the mapper's hot path and every macro timer, so
// every implementation must serialize concurrent Emit calls itself.
type Sink interface {
	// Emit writes batch to the device in order, as a single logical
	// write. Callers are responsible for appending SYN_REPORT events
	// themselves where the protocol requires one.
	Emit(batch []device.Event) error

	// Press emits a single KEY press followed by a SYN_REPORT.
	Press(code uint16) error
	// Release emits a single KEY release followed by a SYN_REPORT.
	Release(code uint16) error
	// Click emits a press+SYN, then, as a second separate write, a
	// release+SYN, so downstream consumers see two distinct report frames.
	Click(code uint16) error

	Close() error
}
