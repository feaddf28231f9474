// Package main implements the dice table server.
//
// Architecture overview:
// - Clients connect over WebSocket to /ws/{id} and exchange JSON text frames
// - Each room runs its own physics simulation loop while a roll is live
// - A background sweep reclaims rooms that have sat idle too long
//
// Connection flow:
// 1. Client connects to /ws/{id} for an existing room
// 2. Client sends a "join" message naming the same room id
// 3. Server adds the player to that room and replies with "room_state"
// 4. Client spawns/rolls/drags dice; server broadcasts state to the table
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/donovan-yohan/dicetable-server/internal/config"
	"github.com/donovan-yohan/dicetable-server/internal/httpapi"
	"github.com/donovan-yohan/dicetable-server/internal/roommanager"
)

func main() {
	cfg := config.LoadFromEnv()

	logger, err := newLogger(cfg)
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("=================================")
	logger.Info("  Dice Table Server")
	logger.Info("=================================")
	logger.Info("config", zap.String("host", cfg.Host), zap.Int("port", cfg.Port),
		zap.Int("physics_hz", config.PhysicsTickRate),
		zap.Int("max_players_per_room", config.MaxPlayersPerRoom),
		zap.Int("max_dice_per_room", config.MaxDicePerRoom))
	logger.Info("=================================")

	rooms := roommanager.NewManager(logger)

	go func() {
		ticker := time.NewTicker(config.RoomCleanupIntervalSecs * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			if removed := rooms.CleanupStaleRooms(); removed > 0 {
				logger.Info("reclaimed idle rooms", zap.Int("count", removed))
			}
		}
	}()

	instanceID := newInstanceID()
	server := httpapi.NewServer(cfg, rooms, logger, instanceID)

	logger.Info("listening", zap.String("addr", cfg.Addr()), zap.String("instance_id", instanceID))
	if err := http.ListenAndServe(cfg.Addr(), server.Handler()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// newInstanceID generates a short random identifier for this process,
// surfaced on /health and the room routes so a client behind a load
// balancer can tell which instance it's talking to.
func newInstanceID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(buf)
}

func newLogger(cfg *config.ServerConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.LogFormat == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
