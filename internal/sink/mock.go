package sink

import (
	"sync"

	"github.com/mousemapper/mousemapper/internal/device"
)

// Mock is a recording Sink for tests, grounded on other_examples'
// bnema-uinputd-go MockUinputDevice: it satisfies the real interface while
// keeping every emitted batch in memory for assertions.
type Mock struct {
	mu      sync.Mutex
	batches [][]device.Event
	closed  bool
}

// NewMock returns an empty recording sink.
func NewMock() *Mock { return &Mock{} }

func (m *Mock) Emit(batch []device.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]device.Event, len(batch))
	copy(cp, batch)
	m.batches = append(m.batches, cp)
	return nil
}

func (m *Mock) Press(code uint16) error {
	return m.Emit([]device.Event{device.NewKeyEvent(code, device.KeyPress), device.NewSyn()})
}

func (m *Mock) Release(code uint16) error {
	return m.Emit([]device.Event{device.NewKeyEvent(code, device.KeyRelease), device.NewSyn()})
}

func (m *Mock) Click(code uint16) error {
	if err := m.Press(code); err != nil {
		return err
	}
	return m.Release(code)
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Batches returns a snapshot of every batch emitted so far, in order.
func (m *Mock) Batches() [][]device.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]device.Event, len(m.batches))
	copy(out, m.batches)
	return out
}

// Events flattens every emitted batch into a single ordered slice.
func (m *Mock) Events() []device.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []device.Event
	for _, b := range m.batches {
		out = append(out, b...)
	}
	return out
}

// Closed reports whether Close has been called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ Sink = (*Mock)(nil)
var _ Sink = (*Uinput)(nil)
