package device

import (
	"fmt"

	"github.com/gvalkov/golang-evdev"
)

// Candidate describes one evdev node for the "mousemapper devices" listing,
// with enough detail for a user to pick a --device value or write a
// DeviceSelector.
type Candidate struct {
	Path    string
	Name    string
	Vendor  uint16
	Product uint16
}

// ListCandidates enumerates accessible /dev/input/event* nodes.
func ListCandidates() ([]Candidate, error) {
	devs, err := evdev.ListInputDevices("/dev/input/event*")
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}
	out := make([]Candidate, 0, len(devs))
	for _, d := range devs {
		out = append(out, Candidate{
			Path:    d.Fn,
			Name:    d.Name,
			Vendor:  d.Vendor,
			Product: d.Product,
		})
		d.File.Close()
	}
	return out, nil
}

// Matches reports whether this candidate satisfies a DeviceSelector's
// non-empty fields, in path > vendor/product > name priority order.
func (c Candidate) Matches(path, name string, vendor, product uint16) bool {
	if path != "" {
		return c.Path == path
	}
	if vendor != 0 || product != 0 {
		return c.Vendor == vendor && c.Product == product
	}
	if name != "" {
		return c.Name == name
	}
	return false
}
