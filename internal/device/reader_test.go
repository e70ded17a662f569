package device

import (
	"errors"
	"syscall"
	"testing"
)

func TestIsWouldBlock(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"eagain errno", syscall.EAGAIN, true},
		{"wrapped eagain", errors.New("read /dev/input/event3: resource temporarily unavailable"), true},
		{"unrelated error", errors.New("input/output error"), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := isWouldBlock(c.err); got != c.want {
				t.Errorf("isWouldBlock(%v) = %v, want %v", c.err, got, c.want)
			}
		})
	}
}

func TestCapabilitiesHasKey(t *testing.T) {
	caps := Capabilities{Keys: []uint16{272, 273, 274}}
	if !caps.HasKey(272) {
		t.Error("expected HasKey(272) to be true")
	}
	if caps.HasKey(999) {
		t.Error("expected HasKey(999) to be false")
	}
}

func TestCandidateMatches(t *testing.T) {
	c := Candidate{Path: "/dev/input/event3", Name: "Acme Mouse", Vendor: 0x46d, Product: 0xc069}

	if !c.Matches("/dev/input/event3", "", 0, 0) {
		t.Error("path match should succeed")
	}
	if c.Matches("/dev/input/event4", "", 0, 0) {
		t.Error("path mismatch should fail")
	}
	if !c.Matches("", "", 0x46d, 0xc069) {
		t.Error("vendor/product match should succeed when path is empty")
	}
	if !c.Matches("", "Acme Mouse", 0, 0) {
		t.Error("name match should succeed when path and vendor/product are empty")
	}
	if c.Matches("", "", 0, 0) {
		t.Error("empty selector should never match")
	}
}

func TestEventTypeString(t *testing.T) {
	cases := map[EventType]string{
		EvSyn:       "EV_SYN",
		EvKey:       "EV_KEY",
		EvRel:       "EV_REL",
		EvAbs:       "EV_ABS",
		EvMsc:       "EV_MSC",
		EventType(7): "EV_7",
	}
	for in, want := range cases {
		if got := in.String(); got != want {
			t.Errorf("EventType(%d).String() = %q, want %q", in, got, want)
		}
	}
}
