package socketio

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/buzzer-server/internal/config"
	"github.com/vovakirdan/buzzer-server/internal/core"
	"github.com/vovakirdan/buzzer-server/internal/proto"
)

type emitted struct {
	event string
	args  []interface{}
}

type fakeConn struct {
	ch chan emitted
}

func newFakeConn() *fakeConn {
	return &fakeConn{ch: make(chan emitted, 64)}
}

func (f *fakeConn) Emit(event string, v ...interface{}) {
	f.ch <- emitted{event: event, args: v}
}

func (f *fakeConn) waitFor(t *testing.T, event string) emitted {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e := <-f.ch:
			if e.event == event {
				return e
			}
		case <-timeout:
			t.Fatalf("timeout waiting for %s", event)
		}
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := zerolog.Nop()
	hub := core.NewHub(nil, &logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	cfg := config.Default()
	cfg.AckTimeout = time.Second
	return NewServer(hub, &cfg, &logger)
}

func TestSocketRoomFlow(t *testing.T) {
	s := newTestServer(t)
	host, player := newFakeConn(), newFakeConn()
	s.connect("sid-host", host)
	s.connect("sid-player", player)

	s.createRoom(host, "sid-host", "")
	created := host.waitFor(t, "roomCreated")
	roomID, ok := created.args[0].(string)
	if !ok || roomID == "" {
		t.Fatalf("unexpected roomCreated args %v", created.args)
	}

	if s.joinRoom(player, "sid-player", "missing") {
		t.Fatalf("join of unknown room should be false")
	}
	if !s.joinRoom(player, "sid-player", roomID) {
		t.Fatalf("join should be true")
	}
	host.waitFor(t, "notification")

	s.dispatch("sid-player", &core.Command{Kind: core.CommandBuzz})
	for _, conn := range []*fakeConn{host, player} {
		e := conn.waitFor(t, "buzzer")
		if _, ok := e.args[0].(proto.EventBuzzer); !ok {
			t.Fatalf("unexpected buzzer payload %T", e.args[0])
		}
	}

	if got := s.leaveRoom(host, "sid-host"); got != "You are the host. Close the room instead of leaving it." {
		t.Fatalf("unexpected host leave reply %q", got)
	}
	host.waitFor(t, "hostLeaveRoomAttempt")

	if got := s.leaveRoom(player, "sid-player"); got != "success" {
		t.Fatalf("unexpected leave reply %q", got)
	}
}

func TestSocketValidation(t *testing.T) {
	s := newTestServer(t)
	conn := newFakeConn()
	s.connect("sid", conn)

	s.createRoom(conn, "sid", "sometimes")
	e := conn.waitFor(t, "error")
	if perr, ok := e.args[0].(*proto.Error); !ok || perr.Code != core.ErrCodeValidation {
		t.Fatalf("unexpected error payload %v", e.args)
	}

	if s.joinRoom(conn, "sid", "") {
		t.Fatalf("empty room id should be refused")
	}
	conn.waitFor(t, "error")
}

func TestSocketDisconnectClosesHostRoom(t *testing.T) {
	s := newTestServer(t)
	host, player := newFakeConn(), newFakeConn()
	s.connect("h", host)
	s.connect("p", player)

	s.createRoom(host, "h", "multiple")
	roomID := host.waitFor(t, "roomCreated").args[0].(string)
	if !s.joinRoom(player, "p", roomID) {
		t.Fatalf("join should succeed")
	}

	s.disconnect("h", "transport close")
	player.waitFor(t, "roomClosed")

	if s.dispatch("h", &core.Command{Kind: core.CommandBuzz}) {
		t.Fatalf("dispatch after disconnect should fail")
	}
}

func TestAwaitTimesOut(t *testing.T) {
	s := newTestServer(t)
	s.ackTimeout = 10 * time.Millisecond
	if ack := s.await(make(chan *core.Event)); ack != nil {
		t.Fatalf("expected nil on timeout, got %+v", ack)
	}

	closed := make(chan *core.Event)
	close(closed)
	if ack := s.await(closed); ack != nil {
		t.Fatalf("expected nil on closed reply, got %+v", ack)
	}
}

func TestOriginAllowed(t *testing.T) {
	patterns := []string{"example.com", "*.example.org"}
	cases := map[string]bool{
		"":                        true,
		"https://example.com":     true,
		"https://app.example.org": true,
		"https://evil.com":        false,
		"http://example.com:8080": false,
	}
	for origin, want := range cases {
		if got := originAllowed(origin, patterns); got != want {
			t.Fatalf("originAllowed(%q) = %v, want %v", origin, got, want)
		}
	}
	if !originAllowed("https://anything", nil) {
		t.Fatalf("no patterns should allow all")
	}
}
