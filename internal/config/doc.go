// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

/*
Package config provides centralized configuration management for the hub.

Configuration is assembled from three layers, in order of increasing
precedence: built-in defaults, an optional YAML config file, and
environment variables. Loading is performed once at startup via Load(),
after which the returned *Config is immutable and safe for concurrent
read access.

# Environment Variables

Hub:
  - HUB_HOST, HUB_PORT
  - SINGLE_ROOM_MODE, BAND_NAME
  - ROOM_REAP_INTERVAL
  - SWAGGER_ENABLED

Transport:
  - TRANSPORT_BIN, TRANSPORT_BASE_PORT, TRANSPORT_PORT_RANGE
  - TRANSPORT_CHANNELS, TRANSPORT_STOP_GRACE
  - JACK_LSP_BIN, JACK_CONNECT_BIN, JACK_DISCONNECT_BIN

TLS:
  - SSL_CERTFILE, SSL_KEYFILE

Database:
  - DUCKDB_PATH

Security:
  - BCRYPT_COST
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW
  - CORS_ORIGINS
  - CASBIN_MODEL_PATH, CASBIN_POLICY_PATH

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# See Also

  - internal/logging: zerolog initialization driven by LoggingConfig
  - internal/authz: casbin enforcer driven by the Casbin* settings
*/
package config
