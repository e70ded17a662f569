package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mousemapper/mousemapper/internal/device"
)

func TestSupervisorShutdownWithNoEngineRunning(t *testing.T) {
	sup := NewSupervisor()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sup.Run(ctx)

	done := make(chan struct{})
	go func() {
		sup.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Shutdown did not return")
	}
}

func TestSupervisorStartFailureEmitsErrorObservation(t *testing.T) {
	sup := NewSupervisor()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sup.Run(ctx)

	sup.Commands() <- Command{Kind: CmdStart, Path: "/nonexistent/device/for/tests"}

	select {
	case obs := <-sup.Observations():
		if obs.Kind != ObsError {
			t.Fatalf("expected an error observation opening a missing device, got kind=%d text=%q", obs.Kind, obs.Text)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no observation received")
	}
}

func TestRawEventObservationFormatsTimestamp(t *testing.T) {
	ev := device.Event{Type: device.EvKey, Code: 30, Value: 1, Time: time.Unix(1234, 500000)}
	obs := rawEventObservation(ev)
	if obs.Kind != ObsRawEvent {
		t.Fatalf("expected ObsRawEvent, got %d", obs.Kind)
	}
	if obs.EventType != "EV_KEY" {
		t.Errorf("expected EV_KEY, got %s", obs.EventType)
	}
	wantPrefix := fmt.Sprintf("%d.", int64(1234)%1000)
	if !strings.HasPrefix(obs.Timestamp, wantPrefix) {
		t.Errorf("expected timestamp to start with %q, got %q", wantPrefix, obs.Timestamp)
	}
}
