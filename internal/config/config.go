// Package config holds process-wide server configuration, loaded entirely
// from the environment. There is no file-based config layer: the dice
// table server keeps no state on disk, so a config file would imply a
// persistence story this server doesn't have.
package config

import (
	"os"
	"strconv"
)

const (
	// DefaultHost is the interface the HTTP/WebSocket listener binds to.
	DefaultHost = "0.0.0.0"
	// DefaultPort is the HTTP/WebSocket listener port.
	DefaultPort = 8080

	// MaxPlayersPerRoom caps concurrent players in a single room.
	MaxPlayersPerRoom = 8
	// MaxDicePerRoom caps total dice live on one table at once.
	MaxDicePerRoom = 30
	// IdleRoomTimeoutSecs is how long an empty room may sit before reclamation.
	IdleRoomTimeoutSecs = 1800
	// RoomCleanupIntervalSecs is how often the reclamation sweep runs.
	RoomCleanupIntervalSecs = 300

	// PhysicsTickRate is the fixed simulation step rate, in Hz.
	PhysicsTickRate = 60
	// SnapshotTickDivisor gates how often a physics_snapshot is considered
	// for broadcast: every Nth tick. Default is 1 (every tick); the
	// snapshot itself is still conditional on motion (see room.go).
	SnapshotTickDivisor = 1
)

// ServerConfig holds the runtime configuration for the dice table server.
type ServerConfig struct {
	Host       string
	Port       int
	CORSOrigin string // empty means permissive (allow any origin)
	LogLevel   string
	LogFormat  string
}

// DefaultServerConfig returns the configuration used when no environment
// overrides are present.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:       DefaultHost,
		Port:       DefaultPort,
		CORSOrigin: "",
		LogLevel:   "info",
		LogFormat:  "json",
	}
}

// LoadFromEnv returns a ServerConfig seeded with defaults and overridden by
// HOST, PORT, CORS_ORIGIN, LOG_LEVEL and LOG_FORMAT when set.
func LoadFromEnv() *ServerConfig {
	cfg := DefaultServerConfig()

	if v := os.Getenv("HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Port = port
		}
	}
	if v := os.Getenv("CORS_ORIGIN"); v != "" {
		cfg.CORSOrigin = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
