// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

package api

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/applebiter/jackdaw/internal/logging"
	wshub "github.com/applebiter/jackdaw/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handlePatchbayWS upgrades an authenticated request to a WebSocket and
// registers it with the graph hub. Bearer auth already ran as part of
// the route group, so the resolved user is available on the context.
func (s *Server) handlePatchbayWS(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("failed to upgrade websocket connection")
		return
	}

	client := wshub.NewClient(s.hub, conn, user.ID, user.HasPatchbayAccess)
	s.hub.Register <- client
	client.Start(r.Context())
}
