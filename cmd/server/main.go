// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

// Package main is the entry point for the Jackdaw collaboration hub.
//
// Jackdaw coordinates JackTrip-based low-latency audio sharing: it elects
// a single owner on first registration, lets members create and join
// named rooms, spawns a supervised JackTrip process per room, and
// exposes the live JACK port graph over a REST API and a WebSocket
// broadcast so a patchbay UI can watch and, with permission, rewire
// connections.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered Koanf v2 load (defaults, config file, env vars)
//  2. Logging: zerolog, configured from Config.Logging
//  3. Credential store: DuckDB-backed users/sessions, first register wins owner
//  4. Port allocator: bounded UDP range for transport processes
//  5. Transport supervisor: spawns/kills jacktrip per room
//  6. Room registry: in-memory rooms, backed by the port allocator and transport supervisor
//  7. Audio graph adapter: circuit-broken jack_lsp/jack_connect/jack_disconnect
//  8. Permission kernel: Casbin RBAC (owner/member)
//  9. Patchbay hub: WebSocket fan-out of graph change notifications
//  10. TLS certificate: load from disk or generate and persist a self-signed one
//  11. HTTP API server: REST routes plus the /ws/patchbay upgrade
//  12. Supervisor tree: rooms/broker/api layers, one root context
//
// # Configuration
//
// Environment variables are documented alongside each config struct in
// internal/config. The most commonly set ones:
//
//	HUB_PORT, SINGLE_ROOM_MODE, BAND_NAME
//	TRANSPORT_BIN, TRANSPORT_BASE_PORT, TRANSPORT_PORT_RANGE, TRANSPORT_CHANNELS
//	SSL_CERTFILE, SSL_KEYFILE
//	DUCKDB_PATH
//	BCRYPT_COST, RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, CORS_ORIGINS
//
// # Signal Handling
//
// SIGINT/SIGTERM trigger a graceful shutdown: the supervisor tree stops
// the API layer first, then the broker and rooms layers, each within its
// configured timeout. A second signal during shutdown forces an
// immediate exit.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/applebiter/jackdaw/internal/api"
	"github.com/applebiter/jackdaw/internal/audiograph"
	"github.com/applebiter/jackdaw/internal/authz"
	"github.com/applebiter/jackdaw/internal/config"
	"github.com/applebiter/jackdaw/internal/credential"
	"github.com/applebiter/jackdaw/internal/logging"
	"github.com/applebiter/jackdaw/internal/portalloc"
	"github.com/applebiter/jackdaw/internal/rooms"
	"github.com/applebiter/jackdaw/internal/supervisor"
	"github.com/applebiter/jackdaw/internal/tlsutil"
	"github.com/applebiter/jackdaw/internal/transport"
	"github.com/applebiter/jackdaw/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", cfg.Addr()).
		Bool("single_room_mode", cfg.Hub.SingleRoomMode).
		Str("db_path", cfg.Database.Path).
		Msg("starting jackdaw hub")

	credentials, err := credential.New(&cfg.Database, cfg.Security.BcryptCost)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open credential store")
	}
	defer func() {
		if err := credentials.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing credential store")
		}
	}()

	ports := portalloc.New(cfg.Transport.BasePort, cfg.Transport.PortRange)
	transports := transport.New(cfg.Transport.Bin, cfg.Transport.StopGrace)
	registry := rooms.New(ports, transports, cfg.Hub.SingleRoomMode, cfg.Security.BcryptCost)

	graph := audiograph.New(cfg.Transport.JackLspBin, cfg.Transport.JackConnectBin, cfg.Transport.JackDisconnectBin)

	kernel, err := authz.New(cfg.Security.CasbinModelPath, cfg.Security.CasbinPolicyPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load permission kernel")
	}

	hub := websocket.NewHub(api.NewGraphMutator(graph))

	cert, err := tlsutil.LoadOrGenerate(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.Hub.Host)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load or generate TLS certificate")
	}

	server := api.NewServer(cfg, credentials, registry, graph, kernel, hub, cert)

	if cfg.Hub.SingleRoomMode {
		if _, err := registry.Create(context.Background(), rooms.CreateRequest{
			Name:            cfg.Hub.BandName,
			MaxParticipants: 8,
			Channels:        cfg.Transport.Channels,
		}); err != nil {
			logging.Fatal().Err(err).Msg("failed to create standing single room")
		}
		logging.Info().Str("room", cfg.Hub.BandName).Msg("single-room mode: standing room created")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slogLogger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create supervisor tree")
	}

	tree.AddRoomsService(&rooms.ReaperService{Registry: registry, Interval: cfg.Hub.RoomReapInterval})
	tree.AddBrokerService(hub)
	tree.AddAPIService(server)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal, starting graceful shutdown")
		cancel()

		sig = <-sigCh
		logging.Warn().Str("signal", sig.String()).Msg("received second shutdown signal, forcing exit")
		os.Exit(1)
	}()

	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree error")
		}
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("service failed to stop within timeout")
		}
	}

	logging.Info().Msg("jackdaw hub stopped gracefully")
}
