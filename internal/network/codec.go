package network

import (
	"encoding/json"
	"fmt"
)

// Client message type discriminators.
const (
	TypeJoin        = "join"
	TypeSpawnDice   = "spawn_dice"
	TypeRemoveDice  = "remove_dice"
	TypeRoll        = "roll"
	TypeUpdateColor = "update_color"
	TypeDragStart   = "drag_start"
	TypeDragMove    = "drag_move"
	TypeDragEnd     = "drag_end"
	TypeLeave       = "leave"
)

// Server message type discriminators.
const (
	TypeRoomState       = "room_state"
	TypePlayerJoined    = "player_joined"
	TypePlayerLeft      = "player_left"
	TypeDiceSpawned     = "dice_spawned"
	TypeDiceRemoved     = "dice_removed"
	TypeRollStarted     = "roll_started"
	TypePhysicsSnapshot = "physics_snapshot"
	TypeDieSettled      = "die_settled"
	TypeRollComplete    = "roll_complete"
	TypeError           = "error"
)

// typeProbe reads just the discriminator out of a frame; the remaining
// fields are decoded straight from the same bytes into the payload struct
// the type names, since every message is one flat JSON object rather than
// a "type" wrapped around a nested "payload".
type typeProbe struct {
	Type string `json:"type"`
}

// ClientMessage is the result of decoding one client frame: Type names which
// of the Payload fields is populated.
type ClientMessage struct {
	Type string

	Join        *JoinPayload
	SpawnDice   *SpawnDicePayload
	RemoveDice  *RemoveDicePayload
	UpdateColor *UpdateColorPayload
	DragStart   *DragStartPayload
	DragMove    *DragMovePayload
	DragEnd     *DragEndPayload
}

// DecodeClientMessage parses a single text frame into a ClientMessage.
func DecodeClientMessage(data []byte) (*ClientMessage, error) {
	var probe typeProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}

	msg := &ClientMessage{Type: probe.Type}

	switch probe.Type {
	case TypeJoin:
		var p JoinPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode join: %w", err)
		}
		msg.Join = &p
	case TypeSpawnDice:
		var p SpawnDicePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode spawn_dice: %w", err)
		}
		msg.SpawnDice = &p
	case TypeRemoveDice:
		var p RemoveDicePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode remove_dice: %w", err)
		}
		msg.RemoveDice = &p
	case TypeRoll, TypeLeave:
		// no payload fields beyond "type"
	case TypeUpdateColor:
		var p UpdateColorPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode update_color: %w", err)
		}
		msg.UpdateColor = &p
	case TypeDragStart:
		var p DragStartPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode drag_start: %w", err)
		}
		msg.DragStart = &p
	case TypeDragMove:
		var p DragMovePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode drag_move: %w", err)
		}
		msg.DragMove = &p
	case TypeDragEnd:
		var p DragEndPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode drag_end: %w", err)
		}
		msg.DragEnd = &p
	default:
		return nil, fmt.Errorf("unknown message type %q", probe.Type)
	}

	return msg, nil
}

// EncodeServerMessage adds the type discriminator to a payload and
// serializes it to a flat JSON text frame: payload must marshal to a JSON
// object, whose fields end up at the same level as "type" rather than
// nested under a "payload" key.
func EncodeServerMessage(msgType string, payload any) ([]byte, error) {
	return mergeTypeField(msgType, payload)
}

// mergeTypeField marshals payload to a JSON object and re-marshals it with
// a "type" key injected, so every outbound frame is a single flat object:
// {"type":"room_state","roomId":"...",...} rather than a wrapper around a
// nested payload.
func mergeTypeField(msgType string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("flatten payload: %w", err)
	}

	typeJSON, err := json.Marshal(msgType)
	if err != nil {
		return nil, err
	}
	fields["type"] = typeJSON

	return json.Marshal(fields)
}
