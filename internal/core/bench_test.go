package core

import (
	"context"
	"strconv"
	"testing"
)

func benchmarkRoomBuzz(b *testing.B, recipients int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, nil)
	go hub.Run(ctx)

	host := NewClient("host", 64)
	hub.RegisterClient(host)
	host.Commands <- &Command{Kind: CommandCreateRoom, Mode: BuzzMultiple}
	var roomID string
	for ev := range host.Events {
		if ev.Kind == EventRoomCreated {
			roomID = ev.Room
			break
		}
	}

	clients := make([]*Client, 0, recipients)
	for i := range recipients {
		c := NewClient("c"+strconv.Itoa(i), 64)
		hub.RegisterClient(c)
		c.Commands <- &Command{Kind: CommandJoinRoom, Room: roomID}
		clients = append(clients, c)
	}

	// Drain events for all but the first recipient to avoid channel backpressure.
	target := clients[0]
	go func() {
		for range host.Events {
		}
	}()
	for _, c := range clients[1:] {
		go func(cl *Client) {
			for range cl.Events {
			}
		}(c)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		host.Commands <- &Command{Kind: CommandBuzz}
		for ev := range target.Events {
			if ev.Kind == EventBuzzer {
				break
			}
		}
	}
}

func BenchmarkRoomBuzz_10(b *testing.B)  { benchmarkRoomBuzz(b, 10) }
func BenchmarkRoomBuzz_100(b *testing.B) { benchmarkRoomBuzz(b, 100) }
func BenchmarkRoomBuzz_500(b *testing.B) { benchmarkRoomBuzz(b, 500) }
