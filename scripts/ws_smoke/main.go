package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/buzzer-server/internal/proto"
)

// frame mirrors proto.Outbound with the payload left raw.
type frame struct {
	Type  string          `json:"type"`
	ID    string          `json:"id"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	name := flag.String("name", "tester", "display name of the buzzing player")
	mode := flag.String("mode", "single", "buzz mode of the room: single or multiple")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	host, err := dial(ctx, *addr)
	if err != nil {
		return err
	}
	defer host.Close(websocket.StatusNormalClosure, "bye")

	player, err := dial(ctx, *addr)
	if err != nil {
		return err
	}
	defer player.Close(websocket.StatusNormalClosure, "bye")

	if err := send(ctx, host, proto.InboundTypeCreateRoom, "create", proto.CreateRoomData{BuzzMode: *mode}); err != nil {
		return err
	}
	created, err := await(ctx, host, "roomCreated")
	if err != nil {
		return err
	}
	var roomID string
	if err := json.Unmarshal(created.Data, &roomID); err != nil {
		return fmt.Errorf("decode room id: %w", err)
	}
	fmt.Printf("Room created: %s (mode=%s)\n", roomID, *mode)

	if err := send(ctx, player, proto.InboundTypeJoinRoom, "join", proto.JoinRoomData{RoomID: roomID}); err != nil {
		return err
	}
	joined, err := await(ctx, player, "joinRoom")
	if err != nil {
		return err
	}
	var ack proto.JoinAck
	if err := json.Unmarshal(joined.Data, &ack); err != nil || !ack.OK {
		return fmt.Errorf("join refused: %s", joined.Data)
	}
	fmt.Println("Player joined")

	if err := send(ctx, player, proto.InboundTypeSetName, "", proto.SetNameData{Name: *name}); err != nil {
		return err
	}
	if err := send(ctx, player, proto.InboundTypeBuzzer, "", nil); err != nil {
		return err
	}

	buzz, err := await(ctx, host, "buzzer")
	if err != nil {
		return err
	}
	var evt proto.EventBuzzer
	if err := json.Unmarshal(buzz.Data, &evt); err != nil {
		return fmt.Errorf("decode buzzer: %w", err)
	}
	fmt.Printf("Buzz: name=%s at=%s ts=%d\n", evt.Name, evt.Timestamp, evt.TS)

	return send(ctx, host, proto.InboundTypeCloseRoom, "", nil)
}

func dial(ctx context.Context, addr string) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return conn, nil
}

func send(ctx context.Context, conn *websocket.Conn, typ, id string, data any) error {
	in := proto.Inbound{Type: typ, ID: id}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", typ, err)
		}
		in.Data = raw
	}
	if err := wsjson.Write(ctx, conn, in); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}

// await prints frames until the named event arrives.
func await(ctx context.Context, conn *websocket.Conn, event string) (frame, error) {
	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			return frame{}, fmt.Errorf("read: %w", err)
		}
		if f.Error != nil {
			return frame{}, fmt.Errorf("server error %s: %s", f.Error.Code, f.Error.Msg)
		}
		if f.Event == event {
			return f, nil
		}
		fmt.Printf("Received %s event=%s data=%s\n", f.Type, f.Event, f.Data)
	}
}
