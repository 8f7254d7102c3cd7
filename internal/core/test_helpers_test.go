package core

import (
	"strconv"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event, kind EventKind, wait time.Duration) {
	t.Helper()

	deadline := time.After(wait)
	for {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event %v: %+v", kind, ev)
			}
		case <-deadline:
			return
		}
	}
}

// sequentialIDs returns a room id generator yielding r1, r2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "r" + strconv.Itoa(n)
	}
}

func newTestCoordinator(t *testing.T) (*Coordinator, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC))
	return NewCoordinator(CoordinatorOptions{NewRoomID: sequentialIDs(), Clock: mock}), mock
}

// eventsFor flattens deliveries into the events connID receives, in order.
func eventsFor(deliveries []Delivery, connID string) []*Event {
	var out []*Event
	for _, d := range deliveries {
		for _, id := range d.To {
			if id == connID {
				out = append(out, d.Event)
			}
		}
	}
	return out
}

func findKind(events []*Event, kind EventKind) *Event {
	for _, ev := range events {
		if ev.Kind == kind {
			return ev
		}
	}
	return nil
}

func countKind(events []*Event, kind EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
