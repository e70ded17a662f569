package device

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gvalkov/golang-evdev"
)

var errEAGAIN = syscall.EAGAIN

func absTimeval(ev evdev.InputEvent) time.Time {
	return time.Unix(ev.Time.Sec, ev.Time.Usec*int64(time.Microsecond))
}

// Sentinel error kinds, wrapped with fmt.Errorf("...: %w", ...) at the
// point of origin so callers can distinguish them with errors.Is.
var (
	ErrDeviceOpen  = errors.New("device open failed")
	ErrGrabFailed  = errors.New("grab failed")
	ErrReaderError = errors.New("reader error")
)

// Reader holds an exclusive grab on a source evdev device and streams its
// events onto a channel. There is no destructor to rely on, so every
// caller must call Close on each path that follows a successful Open.
type Reader struct {
	dev     *evdev.InputDevice
	path    string
	mu      sync.Mutex
	grabbed bool
	closed  bool
}

// Open opens the evdev node at path. It does not grab the device; call
// Grab separately once the virtual sink is ready to receive events.
func Open(path string) (*Reader, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDeviceOpen, path, err)
	}
	return &Reader{dev: dev, path: path}, nil
}

// Path returns the device node path this reader was opened from.
func (r *Reader) Path() string { return r.path }

// Name returns the kernel-reported device name.
func (r *Reader) Name() string { return r.dev.Name }

// Capabilities reports the source device's key, relative-axis, and
// absolute-axis support, for the virtual sink to mirror.
func (r *Reader) Capabilities() (Capabilities, error) {
	return capabilitiesOf(r.dev)
}

// Grab requests exclusive delivery of this device's events to this file
// descriptor (EVIOCGRAB). Idempotent: grabbing twice is a no-op.
func (r *Reader) Grab() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.grabbed {
		return nil
	}
	if err := r.dev.Grab(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrGrabFailed, r.path, err)
	}
	r.grabbed = true
	return nil
}

// Ungrab releases a previously acquired grab. Idempotent.
func (r *Reader) Ungrab() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ungrabLocked()
}

func (r *Reader) ungrabLocked() error {
	if !r.grabbed {
		return nil
	}
	err := r.dev.Release()
	r.grabbed = false
	if err != nil {
		return fmt.Errorf("ungrab %s: %w", r.path, err)
	}
	return nil
}

// Close releases the grab (if held) and the underlying file descriptor.
// Safe to call more than once.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if err := r.ungrabLocked(); err != nil {
		log.With("component", "device").Warn("failed to release grab on close", "path", r.path, "err", err)
	}
	if r.dev.File != nil {
		return r.dev.File.Close()
	}
	return nil
}

// ReadLoop blocks reading events off the device and pushes each onto out,
// in arrival order, until either the device returns a non-EAGAIN I/O error
// or out's consumer stops receiving (detected via the done channel closing).
// Callers run it on its own goroutine, dedicated to this blocking read.
func (r *Reader) ReadLoop(out chan<- Event, done <-chan struct{}) error {
	for {
		events, err := r.dev.Read()
		if err != nil {
			if isWouldBlock(err) {
				continue
			}
			return fmt.Errorf("%w: %v", ErrReaderError, err)
		}
		for _, ev := range events {
			e := Event{
				Type:  EventType(ev.Type),
				Code:  ev.Code,
				Value: ev.Value,
				Time:  absTimeval(ev),
			}
			select {
			case out <- e:
			case <-done:
				return nil
			}
		}
	}
}

func isWouldBlock(err error) bool {
	return strings.Contains(err.Error(), "resource temporarily unavailable") ||
		errors.Is(err, errEAGAIN)
}
