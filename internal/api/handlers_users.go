// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type setPermissionsRequest struct {
	HasPatchbayAccess bool `json:"has_patchbay_access"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.credentials.ListUsers(r.Context())
	if err != nil {
		mapError(w, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSetPermissions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req setPermissionsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := s.credentials.Grant(r.Context(), id, req.HasPatchbayAccess); err != nil {
		mapError(w, err)
		return
	}

	user, err := s.credentials.GetByID(r.Context(), id)
	if err != nil {
		mapError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}
