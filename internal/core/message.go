package core

import "fmt"

// Message is a chat line relayed to a room.
type Message struct {
	Room string
	From string
	Text string
}

// String renders the line the way clients display it.
func (m Message) String() string {
	return fmt.Sprintf("%s: %s", m.From, m.Text)
}
