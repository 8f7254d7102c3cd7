package core

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
)

type envelope struct {
	client *Client
	cmd    *Command
}

// Hub serializes every client command through the Coordinator on a single
// goroutine and delivers the resulting events in the order they were decided.
type Hub struct {
	coord      *Coordinator
	clients    *xsync.MapOf[string, *Client]
	register   chan *Client
	unregister chan *Client
	inbox      chan envelope
	stopped    chan struct{}
	log        *zerolog.Logger
}

// NewHub creates a hub around coord. A nil coord gets a default one.
func NewHub(coord *Coordinator, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if coord == nil {
		coord = NewCoordinator(CoordinatorOptions{Logger: logger})
	}
	return &Hub{
		coord:      coord,
		clients:    xsync.NewMapOf[string, *Client](),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbox:      make(chan envelope, 256),
		stopped:    make(chan struct{}),
		log:        logger,
	}
}

// Coordinator exposes the state machine for read-only queries.
func (h *Hub) Coordinator() *Coordinator {
	return h.coord
}

// Run processes registrations and commands until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case c := <-h.register:
			h.handleRegister(ctx, c)
		case c := <-h.unregister:
			h.handleUnregister(c)
		case env := <-h.inbox:
			if current, ok := h.clients.Load(env.client.ID); !ok || current != env.client {
				if env.cmd.Reply != nil {
					close(env.cmd.Reply)
				}
				continue
			}
			h.deliver(h.coord.Handle(env.client.ID, env.cmd), env.cmd)
			if env.cmd.Reply != nil {
				close(env.cmd.Reply)
			}
		}
	}
}

// RegisterClient attaches a client. It returns ErrHubStopped without effect
// once the hub has stopped.
func (h *Hub) RegisterClient(c *Client) error {
	select {
	case h.register <- c:
		return nil
	case <-h.stopped:
		return ErrHubStopped
	}
}

// UnregisterClient runs disconnect cleanup for the client.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}

func (h *Hub) handleRegister(ctx context.Context, c *Client) {
	deliveries, err := h.coord.Connect(c.ID)
	if err != nil {
		h.log.Error().Err(err).Str("conn_id", c.ID).Msg("register client")
		close(c.done)
		close(c.Events)
		return
	}
	h.clients.Store(c.ID, c)
	h.deliver(deliveries, nil)
	go h.pump(ctx, c)
}

func (h *Hub) handleUnregister(c *Client) {
	current, ok := h.clients.Load(c.ID)
	if !ok || current != c {
		return
	}
	h.deliver(h.coord.Disconnect(c.ID), nil)
	h.clients.Delete(c.ID)
	close(c.done)
	close(c.Events)
}

// pump forwards a client's commands into the shared inbox.
func (h *Hub) pump(ctx context.Context, c *Client) {
	for {
		select {
		case cmd := <-c.Commands:
			if cmd == nil {
				continue
			}
			select {
			case h.inbox <- envelope{client: c, cmd: cmd}:
			case <-c.done:
				return
			case <-ctx.Done():
				return
			}
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) deliver(deliveries []Delivery, cmd *Command) {
	for _, d := range deliveries {
		if cmd != nil && cmd.Reply != nil && d.Event.Kind.IsAck() {
			select {
			case cmd.Reply <- d.Event:
			default:
				h.log.Warn().Str("event", d.Event.Kind.String()).Msg("reply channel full, dropping ack")
			}
			continue
		}
		for _, id := range d.To {
			c, ok := h.clients.Load(id)
			if !ok {
				continue
			}
			select {
			case c.Events <- d.Event:
			default:
				// Drop if slow consumer.
				h.log.Warn().Str("conn_id", id).Str("event", d.Event.Kind.String()).Msg("client buffer full, event dropped")
			}
		}
	}
}

func (h *Hub) shutdown() {
	h.clients.Range(func(id string, c *Client) bool {
		h.clients.Delete(id)
		close(c.done)
		close(c.Events)
		return true
	})
	h.log.Info().Msg("hub stopped")
}
