// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file, and environment variables (highest precedence).
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in sensible defaults for every setting
//  2. Config File: optional YAML file for persistent settings
//  3. Environment Variables: override any setting
//
// Config is immutable after Load() returns and safe for concurrent read
// access from multiple goroutines.
type Config struct {
	Hub       HubConfig       `koanf:"hub"`
	Transport TransportConfig `koanf:"transport"`
	TLS       TLSConfig       `koanf:"tls"`
	Database  DatabaseConfig  `koanf:"database"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// HubConfig holds the hub's own network and room-behavior settings.
//
// Environment Variables:
//   - HUB_HOST: bind address (default: 0.0.0.0)
//   - HUB_PORT: HTTPS/HTTP listen port (default: 4443)
//   - SINGLE_ROOM_MODE: run with exactly one standing room (default: false)
//   - BAND_NAME: display name for the single standing room (default: "Jam Room")
//   - ROOM_REAP_INTERVAL: how often the empty-room reaper scans (default: 30s)
//   - SWAGGER_ENABLED: serve OpenAPI docs at /swagger/* (default: true)
type HubConfig struct {
	Host             string        `koanf:"host"`
	Port             int           `koanf:"port"`
	SingleRoomMode   bool          `koanf:"single_room_mode"`
	BandName         string        `koanf:"band_name"`
	RoomReapInterval time.Duration `koanf:"room_reap_interval"`
	SwaggerEnabled   bool          `koanf:"swagger_enabled"`
}

// TransportConfig holds settings for spawning and supervising the
// externally-provided audio transport binary (jacktrip).
//
// Environment Variables:
//   - TRANSPORT_BIN: path to the transport executable (default: jacktrip)
//   - TRANSPORT_BASE_PORT: first UDP port in the allocatable range (default: 61000)
//   - TRANSPORT_PORT_RANGE: number of UDP ports in the allocatable range (default: 200)
//   - TRANSPORT_CHANNELS: audio channel count passed to each transport (default: 2)
//   - TRANSPORT_STOP_GRACE: time to wait after SIGTERM before SIGKILL (default: 5s)
type TransportConfig struct {
	Bin        string        `koanf:"bin"`
	BasePort   int           `koanf:"base_port"`
	PortRange  int           `koanf:"port_range"`
	Channels   int           `koanf:"channels"`
	StopGrace  time.Duration `koanf:"stop_grace"`
	JackLspBin string        `koanf:"jack_lsp_bin"`
	JackConnectBin string    `koanf:"jack_connect_bin"`
	JackDisconnectBin string `koanf:"jack_disconnect_bin"`
}

// TLSConfig holds certificate settings. If SSL_CERTFILE/SSL_KEYFILE point
// to files that don't yet exist, the hub generates and persists a
// self-signed certificate at those paths on first startup.
//
// Environment Variables:
//   - SSL_CERTFILE: path to the PEM certificate (default: /data/certs/hub.crt)
//   - SSL_KEYFILE: path to the PEM private key (default: /data/certs/hub.key)
type TLSConfig struct {
	CertFile string `koanf:"cert_file"`
	KeyFile  string `koanf:"key_file"`
}

// DatabaseConfig holds the embedded DuckDB settings for the credential
// store's users and sessions tables.
//
// Environment Variables:
//   - DUCKDB_PATH: database file path (default: /data/jackdaw.duckdb)
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// SecurityConfig holds authentication, authorization, and HTTP security
// settings.
//
// Environment Variables:
//   - BCRYPT_COST: bcrypt hashing cost (default: 12)
//   - RATE_LIMIT_REQUESTS: requests allowed per window (default: 100)
//   - RATE_LIMIT_WINDOW: rate limit window (default: 1m)
//   - CORS_ORIGINS: comma-separated list of allowed origins (default: *)
//   - CASBIN_MODEL_PATH: override path to the casbin model file (optional)
//   - CASBIN_POLICY_PATH: override path to the casbin policy file (optional)
type SecurityConfig struct {
	BcryptCost      int           `koanf:"bcrypt_cost"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	CasbinModelPath string        `koanf:"casbin_model_path"`
	CasbinPolicyPath string       `koanf:"casbin_policy_path"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr returns the host:port string to bind the HTTP server to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Hub.Host, c.Hub.Port)
}
