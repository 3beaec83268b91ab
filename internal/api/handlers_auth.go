// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

package api

import (
	"net/http"

	"github.com/applebiter/jackdaw/internal/credential"
	"github.com/applebiter/jackdaw/internal/validation"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=64"`
	Password string `json:"password" validate:"required,min=8"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type loginRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email,omitempty"`
	IsOwner           bool   `json:"is_owner"`
	HasPatchbayAccess bool   `json:"has_patchbay_access"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeError(w, http.StatusBadRequest, verr.Error())
		return
	}

	user, err := s.credentials.Register(r.Context(), req.Name, req.Password, req.Email)
	if err != nil {
		mapError(w, err)
		return
	}

	session, err := s.credentials.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		mapError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{Token: session.Token, User: toUserResponse(user)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeError(w, http.StatusBadRequest, verr.Error())
		return
	}

	session, err := s.credentials.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		mapError(w, err)
		return
	}

	user, err := s.credentials.GetByID(r.Context(), session.UserID)
	if err != nil {
		mapError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Token: session.Token, User: toUserResponse(user)})
}

func toUserResponse(u *credential.User) userResponse {
	return userResponse{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		IsOwner:           u.IsOwner,
		HasPatchbayAccess: u.HasPatchbayAccess,
	}
}
