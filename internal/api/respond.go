// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/applebiter/jackdaw/internal/audiograph"
	"github.com/applebiter/jackdaw/internal/credential"
	"github.com/applebiter/jackdaw/internal/logging"
	"github.com/applebiter/jackdaw/internal/portalloc"
	"github.com/applebiter/jackdaw/internal/rooms"
)

// errorBody is the hub's flat error response shape: {"error": "..."}, not
// a nested envelope.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error().Err(err).Msg("failed to encode response body")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

// mapError inspects a domain error and writes the appropriate status
// code and bare JSON error body, per the hub's status mapping:
// 400 validation, 401 auth, 403 authz, 404 not found, 409 conflict,
// 503 resource exhaustion, 500 unexpected.
func mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, credential.ErrInvalidCredentials),
		errors.Is(err, credential.ErrSessionNotFound):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, credential.ErrInvalidName),
		errors.Is(err, credential.ErrInvalidPassword):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, credential.ErrNameTaken),
		errors.Is(err, rooms.ErrNameTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, credential.ErrUserNotFound),
		errors.Is(err, rooms.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, rooms.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, rooms.ErrNotIn):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, rooms.ErrBadPassphrase):
		writeError(w, http.StatusBadRequest, "bad passphrase")
	case errors.Is(err, rooms.ErrRoomFull):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, portalloc.ErrExhausted):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, audiograph.ErrPortNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, audiograph.ErrIncompatibleDirection):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logging.Error().Err(err).Msg("unhandled internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
