// Package network defines the wire protocol: JSON text frames with a
// snake_case "type" discriminator and camelCase payload fields living flat
// at the top level of the same object, plus the error codes exchanged
// between client and server.
package network

// DiceType identifies a die's polyhedron shape.
type DiceType string

const (
	D4  DiceType = "d4"
	D6  DiceType = "d6"
	D8  DiceType = "d8"
	D10 DiceType = "d10"
	D12 DiceType = "d12"
	D20 DiceType = "d20"
)

// MaxFaceValue returns the highest face value this die type can show.
// d10 is the odd one out: its faces carry values 0-9, not 1-10.
func (t DiceType) MaxFaceValue() int {
	switch t {
	case D4:
		return 4
	case D6:
		return 6
	case D8:
		return 8
	case D10:
		return 9
	case D12:
		return 12
	case D20:
		return 20
	default:
		return 0
	}
}

// Valid reports whether t is one of the known dice types.
func (t DiceType) Valid() bool {
	switch t {
	case D4, D6, D8, D10, D12, D20:
		return true
	default:
		return false
	}
}

// Error codes exchanged in ErrorPayload.Code.
const (
	ErrCodeRoomFull       = "ROOM_FULL"
	ErrCodeInvalidName    = "INVALID_NAME"
	ErrCodeDiceLimit      = "DICE_LIMIT"
	ErrCodePlayerNotFound = "PLAYER_NOT_FOUND"
	ErrCodeNotOwner       = "NOT_OWNER"
	ErrCodeNotDragger     = "NOT_DRAGGER"
	ErrCodeAlreadyDragged = "ALREADY_DRAGGED"
	ErrCodeDieNotFound    = "DIE_NOT_FOUND"
	ErrCodeNotJoined      = "NOT_JOINED"
	ErrCodeAlreadyJoined  = "ALREADY_JOINED"
	ErrCodeInvalidMessage = "INVALID_MESSAGE"
	ErrCodeRoomNotFound   = "ROOM_NOT_FOUND"
)

// --- Client -> server payloads ---
//
// Each payload struct is decoded directly from the full message frame, so
// field tags below describe the wire shape exactly: a flat JSON object
// carrying "type" alongside these fields, e.g.
// {"type":"join","roomId":"abc123","displayName":"Alice","color":"#F00"}.

// JoinPayload is sent as the "join" message.
type JoinPayload struct {
	RoomID      string `json:"roomId"`
	DisplayName string `json:"displayName"`
	Color       string `json:"color"`
}

// SpawnDiceEntry describes a single die requested in a spawn_dice message.
// The id is client-supplied: the client assigns it so it can correlate the
// die it sees spawned with the one it asked for.
type SpawnDiceEntry struct {
	ID       string   `json:"id"`
	DiceType DiceType `json:"diceType"`
}

// SpawnDicePayload is sent as the "spawn_dice" message.
type SpawnDicePayload struct {
	Dice []SpawnDiceEntry `json:"dice"`
}

// RemoveDicePayload is sent as the "remove_dice" message.
type RemoveDicePayload struct {
	DiceIDs []string `json:"diceIds"`
}

// UpdateColorPayload is sent as the "update_color" message.
type UpdateColorPayload struct {
	Color string `json:"color"`
}

// DragStartPayload is sent as the "drag_start" message.
type DragStartPayload struct {
	DieID         string     `json:"dieId"`
	GrabOffset    [3]float32 `json:"grabOffset"`
	WorldPosition [3]float32 `json:"worldPosition"`
}

// DragMovePayload is sent as the "drag_move" message.
type DragMovePayload struct {
	DieID         string     `json:"dieId"`
	WorldPosition [3]float32 `json:"worldPosition"`
}

// VelocityHistoryEntry is one sample in a drag_end message's recorded
// position history, used to derive a release (throw) velocity.
type VelocityHistoryEntry struct {
	Position [3]float32 `json:"position"`
	Time     float64    `json:"time"`
}

// DragEndPayload is sent as the "drag_end" message.
type DragEndPayload struct {
	DieID           string                 `json:"dieId"`
	VelocityHistory []VelocityHistoryEntry `json:"velocityHistory"`
}

// --- Server -> client payloads ---
//
// EncodeServerMessage marshals each payload struct below to a JSON object
// and adds the "type" discriminator to that same object, so the payload
// fields sit at the same top level as "type" on the wire, matching the
// client -> server shape.

// PlayerInfo describes a player in room state/join broadcasts.
type PlayerInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Color       string `json:"color"`
}

// DiceState describes a die's full state, used in room_state and dice_spawned.
type DiceState struct {
	ID       string     `json:"id"`
	OwnerID  string     `json:"ownerId"`
	DiceType DiceType   `json:"diceType"`
	Position [3]float32 `json:"position"`
	Rotation [4]float32 `json:"rotation"`
}

// DiceSnapshot is the compact per-tick form sent in physics_snapshot.
type DiceSnapshot struct {
	ID string     `json:"id"`
	P  [3]float32 `json:"p"`
	R  [4]float32 `json:"r"`
}

// DieResult pairs a settled die with its final face value.
type DieResult struct {
	DiceID    string   `json:"diceId"`
	DiceType  DiceType `json:"diceType"`
	FaceValue int      `json:"faceValue"`
}

// RoomStatePayload is sent as "room_state" immediately after a successful join.
type RoomStatePayload struct {
	RoomID  string       `json:"roomId"`
	Players []PlayerInfo `json:"players"`
	Dice    []DiceState  `json:"dice"`
}

// PlayerJoinedPayload is sent as "player_joined".
type PlayerJoinedPayload struct {
	Player PlayerInfo `json:"player"`
}

// PlayerLeftPayload is sent as "player_left".
type PlayerLeftPayload struct {
	PlayerID string `json:"playerId"`
}

// DiceSpawnedPayload is sent as "dice_spawned".
type DiceSpawnedPayload struct {
	OwnerID string      `json:"ownerId"`
	Dice    []DiceState `json:"dice"`
}

// DiceRemovedPayload is sent as "dice_removed".
type DiceRemovedPayload struct {
	DiceIDs []string `json:"diceIds"`
}

// RollStartedPayload is sent as "roll_started".
type RollStartedPayload struct {
	PlayerID string   `json:"playerId"`
	DiceIDs  []string `json:"diceIds"`
}

// PhysicsSnapshotPayload is sent as "physics_snapshot".
type PhysicsSnapshotPayload struct {
	Tick uint64         `json:"tick"`
	Dice []DiceSnapshot `json:"dice"`
}

// DieSettledPayload is sent as "die_settled".
type DieSettledPayload struct {
	DiceID    string     `json:"diceId"`
	FaceValue int        `json:"faceValue"`
	Position  [3]float32 `json:"position"`
	Rotation  [4]float32 `json:"rotation"`
}

// RollCompletePayload is sent as "roll_complete".
type RollCompletePayload struct {
	PlayerID string      `json:"playerId"`
	Results  []DieResult `json:"results"`
	Total    int         `json:"total"`
}

// ErrorPayload is sent as "error".
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
