package http

import (
	"encoding/json"
	"fmt"

	"github.com/vovakirdan/buzzer-server/internal/core"
	"github.com/vovakirdan/buzzer-server/internal/proto"
)

// inboundToCommand maps a client frame to a hub command. A non-nil error
// frame means the frame was rejected and nothing should reach the hub.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	cmd := &core.Command{RequestID: inbound.ID}

	switch inbound.Type {
	case proto.InboundTypeCreateRoom:
		var data proto.CreateRoomData
		if perr := decodeData(inbound.Data, &data); perr != nil {
			return nil, perr
		}
		mode, err := core.ParseBuzzMode(data.BuzzMode)
		if err != nil {
			return nil, &proto.Error{Code: core.ErrCodeValidation, Msg: err.Error()}
		}
		cmd.Kind = core.CommandCreateRoom
		cmd.Mode = mode
	case proto.InboundTypeJoinRoom:
		var data proto.JoinRoomData
		if perr := decodeData(inbound.Data, &data); perr != nil {
			return nil, perr
		}
		cmd.Kind = core.CommandJoinRoom
		cmd.Room = data.RoomID
	case proto.InboundTypeSetName:
		var data proto.SetNameData
		if perr := decodeData(inbound.Data, &data); perr != nil {
			return nil, perr
		}
		cmd.Kind = core.CommandSetName
		cmd.Name = data.Name
	case proto.InboundTypeMessage:
		var data proto.MessageData
		if perr := decodeData(inbound.Data, &data); perr != nil {
			return nil, perr
		}
		cmd.Kind = core.CommandSendMessage
		cmd.Text = data.Text
	case proto.InboundTypeBuzzer:
		cmd.Kind = core.CommandBuzz
	case proto.InboundTypeLeaveRoom:
		cmd.Kind = core.CommandLeaveRoom
	case proto.InboundTypeCloseRoom:
		cmd.Kind = core.CommandCloseRoom
	default:
		return nil, &proto.Error{Code: core.ErrCodeUnknownType, Msg: fmt.Sprintf("unknown message type %q", inbound.Type)}
	}
	return cmd, nil
}

// decodeData unmarshals and validates a frame payload. A missing payload
// decodes to the zero value so validation decides whether it was required.
func decodeData(raw json.RawMessage, dst any) *proto.Error {
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, dst); err != nil {
			return &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed data: " + err.Error()}
		}
	}
	return proto.Validate(dst)
}
