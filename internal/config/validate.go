// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

package config

import (
	"fmt"
	"time"
)

// Validate checks that configuration values are internally consistent
// and within sane bounds.
func (c *Config) Validate() error {
	if err := c.validateHub(); err != nil {
		return err
	}
	if err := c.validateTransport(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateHub() error {
	if c.Hub.Port < 1 || c.Hub.Port > 65535 {
		return fmt.Errorf("HUB_PORT must be between 1 and 65535")
	}
	if c.Hub.SingleRoomMode && c.Hub.BandName == "" {
		return fmt.Errorf("BAND_NAME must be set when SINGLE_ROOM_MODE=true")
	}
	if c.Hub.RoomReapInterval < time.Second {
		return fmt.Errorf("ROOM_REAP_INTERVAL must be at least 1s")
	}
	return nil
}

func (c *Config) validateTransport() error {
	if c.Transport.Bin == "" {
		return fmt.Errorf("TRANSPORT_BIN must not be empty")
	}
	if c.Transport.BasePort < 1024 || c.Transport.BasePort > 65000 {
		return fmt.Errorf("TRANSPORT_BASE_PORT must be between 1024 and 65000")
	}
	if c.Transport.PortRange < 1 || c.Transport.BasePort+c.Transport.PortRange > 65535 {
		return fmt.Errorf("TRANSPORT_PORT_RANGE must be positive and fit below port 65535")
	}
	if c.Transport.Channels < 1 || c.Transport.Channels > 64 {
		return fmt.Errorf("TRANSPORT_CHANNELS must be between 1 and 64")
	}
	if c.Transport.StopGrace <= 0 {
		return fmt.Errorf("TRANSPORT_STOP_GRACE must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.BcryptCost < 10 || c.Security.BcryptCost > 16 {
		return fmt.Errorf("BCRYPT_COST must be between 10 and 16")
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive")
	}
	if c.Security.RateLimitWindow < time.Second {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s")
	}
	if len(c.Security.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must not be empty")
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

var validLogFormats = map[string]bool{
	"json": true, "console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
