// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where a config file is searched for,
// in priority order. The first one found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/jackdaw/config.yaml",
	"/etc/jackdaw/config.yml",
}

// ConfigPathEnvVar overrides the config file search with an explicit path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Hub: HubConfig{
			Host:             "0.0.0.0",
			Port:             4443,
			SingleRoomMode:   false,
			BandName:         "Jam Room",
			RoomReapInterval: 30 * time.Second,
			SwaggerEnabled:   true,
		},
		Transport: TransportConfig{
			Bin:               "jacktrip",
			BasePort:          61000,
			PortRange:         200,
			Channels:          2,
			StopGrace:         5 * time.Second,
			JackLspBin:        "jack_lsp",
			JackConnectBin:    "jack_connect",
			JackDisconnectBin: "jack_disconnect",
		},
		TLS: TLSConfig{
			CertFile: "/data/certs/hub.crt",
			KeyFile:  "/data/certs/hub.key",
		},
		Database: DatabaseConfig{
			Path: "/data/jackdaw.duckdb",
		},
		Security: SecurityConfig{
			BcryptCost:      12,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// envMappings maps lowercased env var names to koanf dotted paths.
var envMappings = map[string]string{
	"hub_host":             "hub.host",
	"hub_port":             "hub.port",
	"single_room_mode":     "hub.single_room_mode",
	"band_name":            "hub.band_name",
	"room_reap_interval":   "hub.room_reap_interval",
	"swagger_enabled":      "hub.swagger_enabled",

	"transport_bin":          "transport.bin",
	"transport_base_port":    "transport.base_port",
	"transport_port_range":   "transport.port_range",
	"transport_channels":     "transport.channels",
	"transport_stop_grace":   "transport.stop_grace",
	"jack_lsp_bin":           "transport.jack_lsp_bin",
	"jack_connect_bin":       "transport.jack_connect_bin",
	"jack_disconnect_bin":    "transport.jack_disconnect_bin",

	"ssl_certfile": "tls.cert_file",
	"ssl_keyfile":  "tls.key_file",

	"duckdb_path": "database.path",

	"bcrypt_cost":         "security.bcrypt_cost",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"cors_origins":        "security.cors_origins",
	"casbin_model_path":   "security.casbin_model_path",
	"casbin_policy_path":  "security.casbin_policy_path",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

func envTransformFunc(key string) string {
	key = strings.ToLower(key)
	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}

// Load reads configuration from defaults, an optional YAML file, and
// environment variables, in that order of increasing precedence.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// processSliceFields converts comma-separated env var strings into slices
// for fields koanf's env provider would otherwise leave as a bare string.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}
