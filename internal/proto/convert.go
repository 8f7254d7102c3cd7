package proto

import (
	"github.com/vovakirdan/buzzer-server/internal/core"
)

// BuzzTimeLayout renders buzz times the way browsers print a local time.
const BuzzTimeLayout = "3:04:05 PM"

// FromEvent converts a core event into its wire form. Acknowledgements keep
// the request id of the command they answer.
func FromEvent(event *core.Event) Outbound {
	switch event.Kind {
	case core.EventUsers:
		return Outbound{Type: OutboundTypeEvent, Event: event.Kind.String(), Data: Users(event.Users)}
	case core.EventNotification, core.EventMessage, core.EventRoomClosed, core.EventBuzzRejected:
		return Outbound{Type: OutboundTypeEvent, Event: event.Kind.String(), Data: event.Text}
	case core.EventBuzzer:
		if event.Buzz == nil {
			return Outbound{Type: OutboundTypeEvent, Event: event.Kind.String()}
		}
		return Outbound{
			Type:  OutboundTypeEvent,
			Event: event.Kind.String(),
			Data: EventBuzzer{
				Name:      event.Buzz.Name,
				Timestamp: event.Buzz.At.Local().Format(BuzzTimeLayout),
				TS:        event.Buzz.At.UnixMilli(),
			},
		}
	case core.EventRoomCreated:
		return Outbound{Type: OutboundTypeAck, ID: event.RequestID, Event: event.Kind.String(), Data: event.Room}
	case core.EventJoinAck:
		return Outbound{Type: OutboundTypeAck, ID: event.RequestID, Event: event.Kind.String(), Data: JoinAck{OK: event.OK, RoomID: event.Room}}
	case core.EventLeaveAck, core.EventHostLeaveRejected:
		return Outbound{Type: OutboundTypeAck, ID: event.RequestID, Event: event.Kind.String(), Data: event.Text}
	case core.EventError:
		if event.Error == nil {
			return Outbound{Type: OutboundTypeError, Error: &Error{Code: "unknown", Msg: "unknown error"}}
		}
		return Outbound{Type: OutboundTypeError, ID: event.RequestID, Error: &Error{Code: event.Error.Code, Msg: event.Error.Message}}
	default:
		return Outbound{Type: OutboundTypeEvent}
	}
}

// Users converts a membership snapshot.
func Users(members []core.Member) []User {
	out := make([]User, 0, len(members))
	for _, m := range members {
		out = append(out, User{ID: m.ID, Name: m.Name, IsHost: m.IsHost})
	}
	return out
}
