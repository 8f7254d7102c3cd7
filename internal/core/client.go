package core

const defaultClientBuffer = 32

// Client is a connection as seen by the hub. Transports push commands into
// Commands and drain Events; the hub closes Events when the client is gone.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event
	done     chan struct{}
}

// NewClient constructs a client with initialized channels.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = defaultClientBuffer
	}
	return &Client{
		ID:       id,
		Commands: make(chan *Command, buffer),
		Events:   make(chan *Event, buffer),
		done:     make(chan struct{}),
	}
}

// Done is closed once the hub has dropped the client.
func (c *Client) Done() <-chan struct{} {
	return c.done
}
