// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

package api

import (
	"context"
	"net/http"

	"github.com/applebiter/jackdaw/internal/validation"
)

type graphMutationRequest struct {
	Source string `json:"source" validate:"required"`
	Dest   string `json:"dest" validate:"required"`
}

func (s *Server) handleGraphSnapshot(w http.ResponseWriter, r *http.Request) {
	graph, err := s.graph.Snapshot(r.Context())
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, graph)
}

func (s *Server) handleGraphConnect(w http.ResponseWriter, r *http.Request) {
	var req graphMutationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeError(w, http.StatusBadRequest, verr.Error())
		return
	}

	if err := s.graph.Connect(r.Context(), req.Source, req.Dest); err != nil {
		mapError(w, err)
		return
	}

	go s.hub.BroadcastGraphChange(context.Background())
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleGraphDisconnect(w http.ResponseWriter, r *http.Request) {
	var req graphMutationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeError(w, http.StatusBadRequest, verr.Error())
		return
	}

	if err := s.graph.Disconnect(r.Context(), req.Source, req.Dest); err != nil {
		mapError(w, err)
		return
	}

	go s.hub.BroadcastGraphChange(context.Background())
	writeJSON(w, http.StatusOK, nil)
}
