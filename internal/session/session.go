// Package session implements the per-connection WebSocket handler: one
// Session per client, with its own read and write goroutines, dispatching
// decoded messages against a join-gated state machine.
package session

import (
	"fmt"
	"time"

	"github.com/g3n/engine/math32"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/donovan-yohan/dicetable-server/internal/game"
	"github.com/donovan-yohan/dicetable-server/internal/network"
	"github.com/donovan-yohan/dicetable-server/internal/roommanager"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 8192
)

// Session represents a single connected client: unjoined until it sends a
// "join" message, then bound to one room and one player for its lifetime.
type Session struct {
	id     string
	ws     *websocket.Conn
	rooms  *roommanager.Manager
	logger *zap.Logger

	send chan []byte
	done chan struct{}

	player *game.Player
	room   *game.Room
}

// NewSession wraps an upgraded websocket connection.
func NewSession(ws *websocket.Conn, rooms *roommanager.Manager, logger *zap.Logger) *Session {
	return &Session{
		id:     uuid.NewString(),
		ws:     ws,
		rooms:  rooms,
		logger: logger,
		send:   make(chan []byte, 256),
		done:   make(chan struct{}),
	}
}

// Send queues data for the write pump. Delivery is ordered and lossless: a
// full buffer means the client has fallen far enough behind that it can no
// longer be kept in sync, so the connection is torn down rather than
// silently dropping the message.
func (s *Session) Send(data []byte) error {
	select {
	case s.send <- data:
		return nil
	case <-s.done:
		return fmt.Errorf("connection closed")
	default:
		s.Close()
		return fmt.Errorf("send buffer full, closing connection")
	}
}

// Close shuts down the connection. Safe to call more than once.
func (s *Session) Close() error {
	select {
	case <-s.done:
		return nil
	default:
		close(s.done)
	}
	return s.ws.Close()
}

// RemoteAddr returns the client's address for logging.
func (s *Session) RemoteAddr() string {
	return s.ws.RemoteAddr().String()
}

// Run starts the session's read and write pumps and blocks until the
// connection closes, tearing down room membership on exit.
func (s *Session) Run() {
	go s.writePump()
	s.readPump()
	s.leaveRoom()
}

func (s *Session) writePump() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in write pump", zap.String("player_id", s.id), zap.Any("recover", r), zap.Stack("stack"))
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer s.Close()

	for {
		select {
		case <-s.done:
			return

		case msg := <-s.send:
			s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Session) readPump() {
	defer s.Close()

	s.ws.SetReadLimit(maxMessageSize)
	s.ws.SetReadDeadline(time.Now().Add(pongWait))
	s.ws.SetPongHandler(func(string) error {
		s.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-s.done:
			return
		default:
		}

		_, data, err := s.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Debug("read error", zap.Error(err))
			}
			return
		}

		s.dispatch(data)
	}
}

// dispatch decodes and routes one inbound frame. A panic while handling a
// single message is recovered and logged rather than allowed to kill this
// connection's read loop: a bad message from one client must not cascade.
func (s *Session) dispatch(data []byte) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic handling message",
				zap.String("player_id", s.id),
				zap.Any("recover", r),
				zap.Stack("stack"))
		}
	}()

	msg, err := network.DecodeClientMessage(data)
	if err != nil {
		s.sendError(network.ErrCodeInvalidMessage, err.Error())
		return
	}

	if s.room == nil && msg.Type != network.TypeJoin {
		s.sendError(network.ErrCodeNotJoined, "must join a room first")
		return
	}

	switch msg.Type {
	case network.TypeJoin:
		s.handleJoin(msg.Join)
	case network.TypeSpawnDice:
		s.handleSpawnDice(msg.SpawnDice)
	case network.TypeRemoveDice:
		s.handleRemoveDice(msg.RemoveDice)
	case network.TypeRoll:
		s.handleRoll()
	case network.TypeUpdateColor:
		s.handleUpdateColor(msg.UpdateColor)
	case network.TypeDragStart:
		s.handleDragStart(msg.DragStart)
	case network.TypeDragMove:
		s.handleDragMove(msg.DragMove)
	case network.TypeDragEnd:
		s.handleDragEnd(msg.DragEnd)
	case network.TypeLeave:
		s.handleLeave()
	}
}

func (s *Session) handleJoin(p *network.JoinPayload) {
	if s.room != nil {
		s.sendError(network.ErrCodeAlreadyJoined, "already joined a room")
		return
	}
	if p == nil {
		s.sendError(network.ErrCodeInvalidMessage, "missing join payload")
		return
	}

	room, ok := s.rooms.GetRoom(p.RoomID)
	if !ok {
		s.sendError(network.ErrCodeRoomNotFound, "room not found")
		return
	}

	player, err := room.AddPlayer(s.id, p.DisplayName, p.Color, s)
	if err != nil {
		s.sendError(errCode(err), joinErrorMessage(err, room))
		return
	}

	s.player = player
	s.room = room

	s.sendMessage(network.TypeRoomState, room.BuildRoomState())

	room.BroadcastExcept(mustEncode(network.TypePlayerJoined, network.PlayerJoinedPayload{
		Player: network.PlayerInfo{ID: s.id, DisplayName: p.DisplayName, Color: p.Color},
	}), s.id)

	s.logger.Info("player joined room", zap.String("player_id", s.id), zap.String("room_id", room.ID))
}

func (s *Session) handleSpawnDice(p *network.SpawnDicePayload) {
	if p == nil {
		return
	}
	entries := make([]game.DiceSpawnRequest, 0, len(p.Dice))
	for _, entry := range p.Dice {
		if entry.DiceType.Valid() && entry.ID != "" {
			entries = append(entries, game.DiceSpawnRequest{ID: entry.ID, Type: entry.DiceType})
		}
	}

	spawned, err := s.room.SpawnDice(s.player.ID, entries)
	if err != nil {
		if err == game.ErrDiceLimit {
			s.sendError(errCode(err), fmt.Sprintf("Table is full (%d/%d dice)", s.room.DiceCount(), game.MaxDice))
			return
		}
		s.sendError(errCode(err), err.Error())
		return
	}

	states := make([]network.DiceState, 0, len(spawned))
	for _, d := range spawned {
		if state, ok := s.room.GetDiceState(d.ID); ok {
			states = append(states, state)
		}
	}
	s.room.Broadcast(mustEncode(network.TypeDiceSpawned, network.DiceSpawnedPayload{
		Dice:    states,
		OwnerID: s.player.ID,
	}))
}

func (s *Session) handleRemoveDice(p *network.RemoveDicePayload) {
	if p == nil {
		return
	}
	removed := s.room.RemoveDice(s.player.ID, p.DiceIDs)
	if len(removed) > 0 {
		s.room.Broadcast(mustEncode(network.TypeDiceRemoved, network.DiceRemovedPayload{DiceIDs: removed}))
	}
}

func (s *Session) handleRoll() {
	rolled, err := s.room.RollPlayerDice(s.player.ID)
	if err != nil {
		s.sendError(errCode(err), err.Error())
		return
	}

	s.room.Broadcast(mustEncode(network.TypeRollStarted, network.RollStartedPayload{
		PlayerID: s.player.ID,
		DiceIDs:  rolled,
	}))

	if s.room.TryStartSimulationLoop() {
		go runSimulationLoop(s.room, s.logger)
	}
}

func (s *Session) handleUpdateColor(p *network.UpdateColorPayload) {
	if p == nil {
		return
	}
	// Per the wire protocol, update_color never triggers a broadcast.
	_ = s.room.UpdateColor(s.player.ID, p.Color)
}

func (s *Session) handleDragStart(p *network.DragStartPayload) {
	if p == nil {
		return
	}
	// Drag errors (unknown die, not the owner, already held) are not sent
	// to the client; they are only logged.
	if err := s.room.DragStart(s.player.ID, p.DieID, arrayToVec3(p.GrabOffset), arrayToVec3(p.WorldPosition)); err != nil {
		s.logger.Debug("drag_start ignored", zap.String("player_id", s.id), zap.Error(err))
	}
}

func (s *Session) handleDragMove(p *network.DragMovePayload) {
	if p == nil {
		return
	}
	if err := s.room.DragMove(s.player.ID, p.DieID, arrayToVec3(p.WorldPosition)); err != nil {
		s.logger.Debug("drag_move ignored", zap.String("player_id", s.id), zap.Error(err))
	}
}

func (s *Session) handleDragEnd(p *network.DragEndPayload) {
	if p == nil {
		return
	}
	history := make([]game.ThrowSample, 0, len(p.VelocityHistory))
	for _, entry := range p.VelocityHistory {
		history = append(history, game.ThrowSample{
			Position: arrayToVec3(entry.Position),
			TimeMs:   entry.Time,
		})
	}
	if err := s.room.DragEnd(s.player.ID, p.DieID, history); err != nil {
		s.logger.Debug("drag_end ignored", zap.String("player_id", s.id), zap.Error(err))
		return
	}

	if s.room.TryStartSimulationLoop() {
		go runSimulationLoop(s.room, s.logger)
	}
}

func (s *Session) handleLeave() {
	s.leaveRoom()
}

func (s *Session) leaveRoom() {
	if s.room == nil || s.player == nil {
		return
	}

	removedDice := s.room.RemovePlayer(s.player.ID)
	if len(removedDice) > 0 {
		s.room.Broadcast(mustEncode(network.TypeDiceRemoved, network.DiceRemovedPayload{DiceIDs: removedDice}))
	}
	s.room.Broadcast(mustEncode(network.TypePlayerLeft, network.PlayerLeftPayload{PlayerID: s.player.ID}))

	s.logger.Info("player left room", zap.String("player_id", s.player.ID), zap.String("room_id", s.room.ID))
	s.room = nil
	s.player = nil
}

func (s *Session) sendMessage(msgType string, payload any) {
	s.Send(mustEncode(msgType, payload))
}

func (s *Session) sendError(code, message string) {
	s.Send(mustEncode(network.TypeError, network.ErrorPayload{Code: code, Message: message}))
}

func mustEncode(msgType string, payload any) []byte {
	data, err := network.EncodeServerMessage(msgType, payload)
	if err != nil {
		// Every payload type here is a plain struct of JSON-marshalable
		// fields; a marshal failure would indicate a programming error,
		// not a runtime condition callers can recover from.
		panic(err)
	}
	return data
}

// joinErrorMessage produces the exact wire text for a failed join, per
// error code, falling back to a generic "failed to join" message for any
// code without a fixed wire string.
func joinErrorMessage(err error, room *game.Room) string {
	switch errCode(err) {
	case network.ErrCodeRoomFull:
		return fmt.Sprintf("Room is full (%d/%d players)", room.PlayerCount(), game.MaxPlayers)
	case network.ErrCodeInvalidName:
		return "Display name must be 1-20 characters"
	default:
		return fmt.Sprintf("Failed to join: %s", errCode(err))
	}
}

func errCode(err error) string {
	if re, ok := err.(*game.RoomError); ok {
		return re.Code()
	}
	return network.ErrCodeInvalidMessage
}

func arrayToVec3(a [3]float32) math32.Vector3 {
	return math32.Vector3{X: a[0], Y: a[1], Z: a[2]}
}
