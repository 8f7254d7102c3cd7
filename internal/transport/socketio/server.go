// Package socketio serves the buzzer protocol to socket.io clients that use
// the event names of the legacy browser client.
package socketio

import (
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	gosocketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/buzzer-server/internal/config"
	"github.com/vovakirdan/buzzer-server/internal/core"
	"github.com/vovakirdan/buzzer-server/internal/proto"
)

const namespace = "/"

// emitter is the part of a socket.io connection the bridge writes to.
type emitter interface {
	Emit(event string, v ...interface{})
}

// Server bridges socket.io connections to the hub.
type Server struct {
	io         *gosocketio.Server
	hub        *core.Hub
	clients    *xsync.MapOf[string, *core.Client]
	buffer     int
	ackTimeout time.Duration
	origins    []string
	log        *zerolog.Logger
}

// NewServer builds a socket.io server with polling and websocket transports.
func NewServer(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) *Server {
	s := &Server{
		hub:        hub,
		clients:    xsync.NewMapOf[string, *core.Client](),
		buffer:     cfg.EventBuffer,
		ackTimeout: cfg.AckTimeout,
		origins:    cfg.AllowedOrigins,
		log:        logger,
	}
	if s.ackTimeout <= 0 {
		s.ackTimeout = 5 * time.Second
	}

	s.io = gosocketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&polling.Transport{CheckOrigin: s.checkOrigin},
			&websocket.Transport{CheckOrigin: s.checkOrigin},
		},
	})
	s.routes()
	return s
}

func (s *Server) routes() {
	s.io.OnConnect(namespace, func(c gosocketio.Conn) error {
		return s.connect(c.ID(), c)
	})

	s.io.OnEvent(namespace, "createRoom", func(c gosocketio.Conn, mode string) {
		s.createRoom(c, c.ID(), mode)
	})
	s.io.OnEvent(namespace, "joinRoom", func(c gosocketio.Conn, roomID string) bool {
		return s.joinRoom(c, c.ID(), roomID)
	})
	s.io.OnEvent(namespace, "leaveRoom", func(c gosocketio.Conn) string {
		return s.leaveRoom(c, c.ID())
	})
	s.io.OnEvent(namespace, "closeRoom", func(c gosocketio.Conn) {
		s.dispatch(c.ID(), &core.Command{Kind: core.CommandCloseRoom})
	})
	s.io.OnEvent(namespace, "buzzer", func(c gosocketio.Conn) {
		s.dispatch(c.ID(), &core.Command{Kind: core.CommandBuzz})
	})
	s.io.OnEvent(namespace, "setName", func(c gosocketio.Conn, name string) {
		s.setName(c, c.ID(), name)
	})
	s.io.OnEvent(namespace, "message", func(c gosocketio.Conn, text string) {
		s.message(c, c.ID(), text)
	})

	s.io.OnDisconnect(namespace, func(c gosocketio.Conn, reason string) {
		s.disconnect(c.ID(), reason)
	})
	s.io.OnError(namespace, func(c gosocketio.Conn, err error) {
		ev := s.log.Warn().Err(err)
		if c != nil {
			ev = ev.Str("sid", c.ID())
		}
		ev.Msg("socket.io error")
	})
}

// Serve runs the socket.io accept loop until Close.
func (s *Server) Serve() error {
	return s.io.Serve()
}

// Close stops the accept loop and drops every session.
func (s *Server) Close() error {
	return s.io.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.io.ServeHTTP(w, r)
}

func (s *Server) connect(sid string, e emitter) error {
	client := core.NewClient(uuid.NewString(), s.buffer)
	if err := s.hub.RegisterClient(client); err != nil {
		return fmt.Errorf("register session %s: %w", sid, err)
	}
	s.clients.Store(sid, client)
	go s.forward(e, client)
	s.log.Debug().Str("sid", sid).Str("conn_id", client.ID).Msg("socket.io connected")
	return nil
}

func (s *Server) disconnect(sid, reason string) {
	client, ok := s.clients.LoadAndDelete(sid)
	if !ok {
		return
	}
	s.hub.UnregisterClient(client)
	s.log.Debug().Str("sid", sid).Str("conn_id", client.ID).Str("reason", reason).Msg("socket.io disconnected")
}

// forward emits hub events until the hub drops the client.
func (s *Server) forward(e emitter, client *core.Client) {
	for ev := range client.Events {
		out := proto.FromEvent(ev)
		if out.Type == proto.OutboundTypeError {
			e.Emit(proto.OutboundTypeError, out.Error)
			continue
		}
		e.Emit(out.Event, out.Data)
	}
}

func (s *Server) createRoom(e emitter, sid, mode string) {
	buzzMode, err := core.ParseBuzzMode(mode)
	if err != nil {
		e.Emit(proto.OutboundTypeError, &proto.Error{Code: core.ErrCodeValidation, Msg: err.Error()})
		return
	}
	s.dispatch(sid, &core.Command{Kind: core.CommandCreateRoom, Mode: buzzMode})
}

func (s *Server) joinRoom(e emitter, sid, roomID string) bool {
	if perr := proto.Validate(&proto.JoinRoomData{RoomID: roomID}); perr != nil {
		e.Emit(proto.OutboundTypeError, perr)
		return false
	}
	reply := make(chan *core.Event, 1)
	if !s.dispatch(sid, &core.Command{Kind: core.CommandJoinRoom, Room: roomID, Reply: reply}) {
		return false
	}
	ack := s.await(reply)
	return ack != nil && ack.OK
}

// leaveRoom answers with the acknowledgement text. A refused host also gets
// the hostLeaveRoomAttempt event older clients listen for.
func (s *Server) leaveRoom(e emitter, sid string) string {
	reply := make(chan *core.Event, 1)
	if !s.dispatch(sid, &core.Command{Kind: core.CommandLeaveRoom, Reply: reply}) {
		return ""
	}
	ack := s.await(reply)
	if ack == nil {
		return ""
	}
	if ack.Kind == core.EventHostLeaveRejected {
		e.Emit(ack.Kind.String(), ack.Text)
	}
	return ack.Text
}

func (s *Server) setName(e emitter, sid, name string) {
	if perr := proto.Validate(&proto.SetNameData{Name: name}); perr != nil {
		e.Emit(proto.OutboundTypeError, perr)
		return
	}
	s.dispatch(sid, &core.Command{Kind: core.CommandSetName, Name: name})
}

func (s *Server) message(e emitter, sid, text string) {
	if perr := proto.Validate(&proto.MessageData{Text: text}); perr != nil {
		e.Emit(proto.OutboundTypeError, perr)
		return
	}
	s.dispatch(sid, &core.Command{Kind: core.CommandSendMessage, Text: text})
}

// dispatch queues cmd for the session's client. It reports false when the
// session is unknown or already dropped by the hub.
func (s *Server) dispatch(sid string, cmd *core.Command) bool {
	client, ok := s.clients.Load(sid)
	if !ok {
		s.log.Debug().Str("sid", sid).Str("command", cmd.Kind.String()).Msg("command for unknown session")
		return false
	}
	select {
	case client.Commands <- cmd:
		return true
	case <-client.Done():
		return false
	}
}

// await returns the first acknowledgement on reply, or nil if the hub closed
// it without one or the timeout passed.
func (s *Server) await(reply <-chan *core.Event) *core.Event {
	timer := time.NewTimer(s.ackTimeout)
	defer timer.Stop()

	select {
	case ack, ok := <-reply:
		if !ok {
			return nil
		}
		return ack
	case <-timer.C:
		s.log.Warn().Dur("timeout", s.ackTimeout).Msg("acknowledgement timed out")
		return nil
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	return originAllowed(r.Header.Get("Origin"), s.origins)
}

// originAllowed matches the Origin host against the configured patterns.
// No patterns, or a request without an Origin header, is always allowed.
func originAllowed(origin string, patterns []string) bool {
	if len(patterns) == 0 || origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Host)
	for _, p := range patterns {
		if ok, err := path.Match(strings.ToLower(p), host); err == nil && ok {
			return true
		}
	}
	return false
}
