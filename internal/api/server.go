// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

// Package api serves the hub's REST surface: authentication, room
// lifecycle, audio graph queries and mutations, user administration,
// health, metrics and OpenAPI documentation. It is the only package
// that is allowed to translate domain errors into HTTP status codes.
package api

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/applebiter/jackdaw/internal/audiograph"
	"github.com/applebiter/jackdaw/internal/authz"
	"github.com/applebiter/jackdaw/internal/config"
	"github.com/applebiter/jackdaw/internal/credential"
	"github.com/applebiter/jackdaw/internal/logging"
	"github.com/applebiter/jackdaw/internal/rooms"
	"github.com/applebiter/jackdaw/internal/websocket"
)

// Server bundles every dependency the HTTP surface needs and implements
// suture.Service so the orchestrator can supervise it on the api layer.
type Server struct {
	cfg         *config.Config
	credentials *credential.Store
	registry    *rooms.Registry
	graph       *audiograph.Adapter
	authz       *authz.Kernel
	hub         *websocket.Hub

	cert tls.Certificate
	http *http.Server
}

// NewServer builds the HTTP server and its router. It does not bind a
// listener until Serve is called.
func NewServer(cfg *config.Config, credentials *credential.Store, registry *rooms.Registry, graph *audiograph.Adapter, kernel *authz.Kernel, hub *websocket.Hub, cert tls.Certificate) *Server {
	s := &Server{
		cfg:         cfg,
		credentials: credentials,
		registry:    registry,
		graph:       graph,
		authz:       kernel,
		hub:         hub,
		cert:        cert,
	}
	s.http = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.routes(),
		TLSConfig:    &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12},
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// String implements fmt.Stringer for suture's logging.
func (s *Server) String() string {
	return "api-server"
}

// Serve implements suture.Service. It binds the configured address,
// serves TLS, and shuts down cleanly when ctx is canceled.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.cfg.Addr()).Msg("api server listening")
		errCh <- s.http.ListenAndServeTLS("", "")
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api server shutdown failed: %w", err)
		}
		return ctx.Err()
	}
}
