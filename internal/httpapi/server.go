// Package httpapi registers the server's HTTP surface: the WebSocket
// upgrade endpoint, a load-balancer health check, and the room
// create/lookup routes.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/donovan-yohan/dicetable-server/internal/config"
	"github.com/donovan-yohan/dicetable-server/internal/network"
	"github.com/donovan-yohan/dicetable-server/internal/roommanager"
	"github.com/donovan-yohan/dicetable-server/internal/session"
)

// Server wires the HTTP mux to the room registry.
type Server struct {
	cfg        *config.ServerConfig
	rooms      *roommanager.Manager
	upgrader   websocket.Upgrader
	logger     *zap.Logger
	instanceID string
}

// NewServer constructs the HTTP surface. instanceID identifies this
// process in a multi-instance deployment; it is surfaced on /health and
// the room routes so a client can tell which instance it landed on.
func NewServer(cfg *config.ServerConfig, rooms *roommanager.Manager, logger *zap.Logger, instanceID string) *Server {
	return &Server{
		cfg:        cfg,
		rooms:      rooms,
		instanceID: instanceID,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.CORSOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == cfg.CORSOrigin
			},
		},
		logger: logger,
	}
}

// Mux builds the route table; Handler wraps it in CORS middleware.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/{id}", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/rooms", s.handleCreateRoom)
	mux.HandleFunc("/api/rooms/{id}", s.handleGetRoom)
	return mux
}

// Handler returns the CORS-wrapped root handler, suitable for passing to
// http.Server.Handler.
func (s *Server) Handler() http.Handler {
	return s.withCORS(s.Mux())
}

// withCORS applies the server's single-origin allow-list (or a permissive
// wildcard when CORS_ORIGIN is unset) to every route, answering preflight
// OPTIONS requests directly.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := "*"
		if s.cfg.CORSOrigin != "" {
			origin = s.cfg.CORSOrigin
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")
	room, ok := s.rooms.GetRoom(roomID)
	if !ok {
		s.writeJSONError(w, http.StatusNotFound, network.ErrCodeRoomNotFound, "room not found")
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sess := session.NewSession(ws, s.rooms, s.logger)
	s.logger.Info("connection opened",
		zap.String("remote_addr", ws.RemoteAddr().String()),
		zap.String("room_id", room.ID),
	)
	go sess.Run()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":     "ok",
		"instanceId": s.instanceID,
	})
}

// handleCreateRoom allocates a new empty room and returns its id, for
// clients that want to create a table before sharing its link.
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	room := s.rooms.CreateRoom()
	s.writeJSON(w, http.StatusCreated, map[string]string{
		"roomId":     room.ID,
		"instanceId": s.instanceID,
	})
}

// handleGetRoom reports a single room's current occupancy, or 404 if it
// doesn't exist (including if it has since been idle-reclaimed).
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")
	room, ok := s.rooms.GetRoom(roomID)
	if !ok {
		s.writeJSONError(w, http.StatusNotFound, network.ErrCodeRoomNotFound, "room not found")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"roomId":     room.ID,
		"playerCount": room.PlayerCount(),
		"diceCount":   room.DiceCount(),
		"instanceId":  s.instanceID,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, map[string]string{"error": code, "message": message})
}
