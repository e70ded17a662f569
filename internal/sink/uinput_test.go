package sink

import (
	"testing"

	"github.com/mousemapper/mousemapper/internal/device"
)

func TestWidenedKeyRangeBounds(t *testing.T) {
	codes := widenedKeyRange()
	if len(codes) != 248 {
		t.Fatalf("expected 248 codes, got %d", len(codes))
	}
	if codes[0] != 1 || codes[len(codes)-1] != 248 {
		t.Fatalf("expected range [1,248], got [%d,%d]", codes[0], codes[len(codes)-1])
	}
}

func TestWireEventMarshalLength(t *testing.T) {
	e := wireFor(device.NewKeyEvent(30, device.KeyPress))
	buf := e.marshal()
	if len(buf) != 24 {
		t.Fatalf("expected 24-byte input_event, got %d", len(buf))
	}
	if buf[16] != byte(device.EvKey) || buf[17] != 0 {
		t.Fatalf("unexpected type bytes: %v", buf[16:18])
	}
}

func TestMockClickTwoWrites(t *testing.T) {
	m := NewMock()
	if err := m.Click(30); err != nil {
		t.Fatal(err)
	}
	batches := m.Batches()
	if len(batches) != 2 {
		t.Fatalf("expected click to produce 2 separate writes, got %d", len(batches))
	}
	if batches[0][0].Value != device.KeyPress {
		t.Errorf("expected first batch to be a press, got value %d", batches[0][0].Value)
	}
	if batches[1][0].Value != device.KeyRelease {
		t.Errorf("expected second batch to be a release, got value %d", batches[1][0].Value)
	}
	for _, b := range batches {
		if len(b) != 2 || !b[1].IsSyn() {
			t.Errorf("expected each batch to end with a SYN_REPORT, got %v", b)
		}
	}
}

func TestMockEmitPreservesOrder(t *testing.T) {
	m := NewMock()
	in := []device.Event{
		device.NewKeyEvent(1, device.KeyPress),
		device.NewSyn(),
		device.NewKeyEvent(1, device.KeyRelease),
		device.NewSyn(),
	}
	if err := m.Emit(in); err != nil {
		t.Fatal(err)
	}
	out := m.Events()
	if len(out) != len(in) {
		t.Fatalf("expected %d events, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i].Code != in[i].Code || out[i].Value != in[i].Value {
			t.Errorf("event %d mismatch: got %+v, want %+v", i, out[i], in[i])
		}
	}
}
