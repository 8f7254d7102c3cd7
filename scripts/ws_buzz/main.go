package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/buzzer-server/internal/proto"
)

type frame struct {
	Type  string          `json:"type"`
	ID    string          `json:"id"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

const help = `Commands:
  create [single|multiple]   create a room and host it
  join <roomId>              join a room
  name <display name>        change your name
  buzz                       press the buzzer
  say <text>                 send a message to the room
  leave                      leave the room
  close                      close your room (host only)`

func main() {
	if err := run(); err != nil {
		log.Printf("ws_buzz: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	name := flag.String("name", "", "display name to set after connecting")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if *name != "" {
		if err := send(ctx, conn, proto.InboundTypeSetName, proto.SetNameData{Name: *name}); err != nil {
			return err
		}
	}

	fmt.Printf("Connected to %s\n%s\n", *addr, help)

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn)
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		switch {
		case f.Type == proto.OutboundTypeError && f.Error != nil:
			fmt.Printf("! %s: %s\n", f.Error.Code, f.Error.Msg)
		case f.Event == "buzzer":
			var evt proto.EventBuzzer
			if err := json.Unmarshal(f.Data, &evt); err != nil {
				log.Printf("unmarshal buzzer: %v", err)
				continue
			}
			fmt.Printf("BUZZ %s at %s\n", evt.Name, evt.Timestamp)
		case f.Event == "users":
			var users []proto.User
			if err := json.Unmarshal(f.Data, &users); err != nil {
				log.Printf("unmarshal users: %v", err)
				continue
			}
			names := make([]string, 0, len(users))
			for _, u := range users {
				if u.IsHost {
					names = append(names, u.Name+" (host)")
					continue
				}
				names = append(names, u.Name)
			}
			fmt.Printf("users: %s\n", strings.Join(names, ", "))
		default:
			fmt.Printf("%s %s: %s\n", f.Type, f.Event, f.Data)
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if err := dispatch(ctx, conn, strings.TrimSpace(line)); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}

func dispatch(ctx context.Context, conn *websocket.Conn, line string) error {
	verb, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch verb {
	case "":
		return nil
	case "create":
		return send(ctx, conn, proto.InboundTypeCreateRoom, proto.CreateRoomData{BuzzMode: arg})
	case "join":
		return send(ctx, conn, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: arg})
	case "name":
		return send(ctx, conn, proto.InboundTypeSetName, proto.SetNameData{Name: arg})
	case "buzz":
		return send(ctx, conn, proto.InboundTypeBuzzer, nil)
	case "say":
		return send(ctx, conn, proto.InboundTypeMessage, proto.MessageData{Text: arg})
	case "leave":
		return send(ctx, conn, proto.InboundTypeLeaveRoom, nil)
	case "close":
		return send(ctx, conn, proto.InboundTypeCloseRoom, nil)
	default:
		fmt.Println(help)
		return nil
	}
}

func send(ctx context.Context, conn *websocket.Conn, typ string, data any) error {
	in := proto.Inbound{Type: typ}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", typ, err)
		}
		in.Data = raw
	}
	return wsjson.Write(ctx, conn, in)
}
