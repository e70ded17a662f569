package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mousemapper/mousemapper/internal/config"
	"github.com/mousemapper/mousemapper/internal/device"
	"github.com/mousemapper/mousemapper/internal/keycode"
	"github.com/mousemapper/mousemapper/internal/logger"
	"github.com/mousemapper/mousemapper/internal/sink"
)

// CommandKind enumerates the supervisor's control channel vocabulary:
// Start, Stop, ReloadConfig, Shutdown.
type CommandKind int

const (
	CmdStart CommandKind = iota
	CmdStop
	CmdReloadConfig
	CmdShutdown
)

// Command is one entry on the supervisor's command channel.
type Command struct {
	Kind CommandKind
	Path string
}

// ObservationKind enumerates the supervisor's outward-facing observation
// vocabulary: RawEvent, StatusUpdate, Error.
type ObservationKind int

const (
	ObsRawEvent ObservationKind = iota
	ObsStatus
	ObsError
)

// Observation is one entry on the supervisor's observation channel.
type Observation struct {
	Kind      ObservationKind
	EventType string
	Code      string
	Value     int32
	Timestamp string
	Text      string
}

func rawEventObservation(ev device.Event) Observation {
	code := fmt.Sprintf("%d", ev.Code)
	if ev.IsKey() {
		code = keycode.String(ev.Code)
	}
	sec := ev.Time.Unix() % 1000
	usec := int64(ev.Time.Nanosecond() / 1000)
	return Observation{
		Kind:      ObsRawEvent,
		EventType: ev.Type.String(),
		Code:      code,
		Value:     ev.Value,
		Timestamp: fmt.Sprintf("%d.%06d", sec, usec),
	}
}

func statusObservation(text string) Observation {
	return Observation{Kind: ObsStatus, Text: text}
}

func errorObservation(err error) Observation {
	return Observation{Kind: ObsError, Text: err.Error()}
}

// observationCapacity bounds the outward-facing channel: it is not
// guaranteed to be drained promptly, so it drops the newest observation
// rather than blocking the engine loop when full.
const observationCapacity = 256

// Supervisor owns the command and observation channels and runs the single
// active engine instance's event loop, implementing the Start/Stop/
// ReloadConfig/Shutdown state machine.
type Supervisor struct {
	commands     chan Command
	observations chan Observation
	stopped      chan struct{}
	dropped      atomic.Uint64

	mu         sync.Mutex
	cancel     context.CancelFunc
	running    bool
	devicePath string
}

// NewSupervisor constructs a supervisor with a bounded observation channel.
// Call Run in its own goroutine, then send Commands.
func NewSupervisor() *Supervisor {
	return &Supervisor{
		commands:     make(chan Command, 8),
		observations: make(chan Observation, observationCapacity),
		stopped:      make(chan struct{}),
	}
}

// Commands returns the channel callers send Command values on.
func (s *Supervisor) Commands() chan<- Command { return s.commands }

// Observations returns the channel callers receive Observation values from.
func (s *Supervisor) Observations() <-chan Observation { return s.observations }

// DroppedObservations reports how many observations have been discarded
// because the bounded channel was full.
func (s *Supervisor) DroppedObservations() uint64 { return s.dropped.Load() }

func (s *Supervisor) emit(obs Observation) {
	select {
	case s.observations <- obs:
	default:
		s.dropped.Add(1)
		logger.Warn("observation channel full, dropping", "kind", obs.Kind)
	}
}

// Run processes commands until Shutdown is received or ctx is cancelled.
// It is the supervisor's own cooperative task.
func (s *Supervisor) Run(ctx context.Context) {
	defer close(s.stopped)
	for {
		select {
		case <-ctx.Done():
			s.stopCurrent()
			return
		case cmd, ok := <-s.commands:
			if !ok {
				s.stopCurrent()
				return
			}
			if s.handle(ctx, cmd) {
				return
			}
		}
	}
}

// handle processes one command; it returns true if the supervisor loop
// should exit (Shutdown).
func (s *Supervisor) handle(ctx context.Context, cmd Command) bool {
	switch cmd.Kind {
	case CmdStart:
		s.start(ctx, cmd.Path)
	case CmdStop:
		s.stopCurrent()
		s.emit(statusObservation("engine stopped"))
	case CmdReloadConfig:
		path := s.currentPath()
		s.stopCurrent()
		s.start(ctx, path)
	case CmdShutdown:
		s.stopCurrent()
		s.emit(statusObservation("supervisor shut down"))
		return true
	}
	return false
}

func (s *Supervisor) currentPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.devicePath
}

// start opens the reader, builds the sink, acquires the grab, loads the
// mapper, and spawns the reader-to-mapper loop. Any failure
// reports an Error observation and leaves no engine running.
func (s *Supervisor) start(parent context.Context, path string) {
	s.stopCurrent()

	reader, err := device.Open(path)
	if err != nil {
		s.emit(errorObservation(err))
		return
	}

	caps, err := reader.Capabilities()
	if err != nil {
		reader.Close()
		s.emit(errorObservation(fmt.Errorf("read capabilities: %w", err)))
		return
	}

	virtualSink, err := sink.FromSource(caps)
	if err != nil {
		reader.Close()
		s.emit(errorObservation(fmt.Errorf("build sink: %w", err)))
		return
	}

	if err := reader.Grab(); err != nil {
		virtualSink.Close()
		reader.Close()
		s.emit(errorObservation(err))
		return
	}

	mapper := NewMapper(virtualSink)
	if profile := config.Get().ActiveProfileOrFirst(); profile != nil {
		mapper.LoadConfig(profile)
	}

	ctx, cancel := context.WithCancel(parent)
	s.mu.Lock()
	s.cancel = cancel
	s.running = true
	s.devicePath = path
	s.mu.Unlock()

	events := make(chan device.Event)
	done := make(chan struct{})
	go func() {
		if err := reader.ReadLoop(events, done); err != nil {
			s.emit(errorObservation(err))
		}
		close(events)
	}()

	go s.runEngineLoop(ctx, reader, virtualSink, mapper, events, done)

	s.emit(statusObservation(fmt.Sprintf("engine started on %s", path)))
}

func (s *Supervisor) runEngineLoop(ctx context.Context, reader *device.Reader, virtualSink sink.Sink, mapper *Mapper, events <-chan device.Event, done chan<- struct{}) {
	defer func() {
		mapper.StopAllMacros()
		close(done)
		virtualSink.Close()
		reader.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !ev.IsSyn() && ev.Type != device.EvMsc {
				s.emit(rawEventObservation(ev))
			}
			out := mapper.Process(ev)
			if len(out) == 0 {
				continue
			}
			if err := virtualSink.Emit(out); err != nil {
				s.emit(errorObservation(err))
			}
		}
	}
}

func (s *Supervisor) stopCurrent() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.running = false
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Shutdown sends a Shutdown command and waits up to 2 seconds for the
// supervisor's Run loop to return; beyond that, the reader's own Close has
// already released the grab regardless.
func (s *Supervisor) Shutdown() {
	s.commands <- Command{Kind: CmdShutdown}
	select {
	case <-s.stopped:
	case <-time.After(2 * time.Second):
	}
}
