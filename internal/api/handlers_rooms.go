// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/applebiter/jackdaw/internal/rooms"
	"github.com/applebiter/jackdaw/internal/validation"
)

type createRoomRequest struct {
	Name            string `json:"name" validate:"required,min=1,max=64"`
	Passphrase      string `json:"passphrase" validate:"omitempty,min=4"`
	MaxParticipants int    `json:"max_participants" validate:"omitempty,min=1,max=64"`
}

type joinRoomRequest struct {
	Passphrase string `json:"passphrase"`
}

type roomResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	CreatorID       string    `json:"creator_id"`
	CreatedAt       time.Time `json:"created_at"`
	HasPassphrase   bool      `json:"has_passphrase"`
	MaxParticipants int       `json:"max_participants"`
	Participants    []string  `json:"participants,omitempty"`
	ParticipantCount int      `json:"participant_count,omitempty"`
}

type joinResponse struct {
	Room roomResponse `json:"room"`
	Port int          `json:"port"`
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	items := s.registry.List(r.Context())
	out := make([]roomResponse, 0, len(items))
	for _, item := range items {
		out = append(out, roomResponse{
			ID:               item.ID,
			Name:             item.Name,
			CreatorID:        item.CreatorID,
			CreatedAt:        item.CreatedAt,
			HasPassphrase:    item.HasPassphrase,
			MaxParticipants:  item.MaxParticipants,
			ParticipantCount: item.Participants,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeError(w, http.StatusBadRequest, verr.Error())
		return
	}

	user := userFromContext(r.Context())
	room, err := s.registry.Create(r.Context(), rooms.CreateRequest{
		Name:            req.Name,
		CreatorID:       user.ID,
		Passphrase:      req.Passphrase,
		MaxParticipants: req.MaxParticipants,
		Channels:        s.cfg.Transport.Channels,
	})
	if err != nil {
		mapError(w, err)
		return
	}

	go s.hub.BroadcastGraphChange(context.Background())

	writeJSON(w, http.StatusCreated, toRoomResponse(room))
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	room, err := s.registry.Get(r.Context(), id)
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomResponse(room))
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req joinRoomRequest
	_ = decodeJSON(r, &req) // passphrase optional, missing body is fine for public rooms

	user := userFromContext(r.Context())
	info, err := s.registry.Join(r.Context(), id, user.ID, req.Passphrase)
	if err != nil {
		mapError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, joinResponse{Room: toRoomResponse(info.Room), Port: info.Port})
}

func (s *Server) handleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user := userFromContext(r.Context())

	if err := s.registry.Leave(r.Context(), id, user.ID); err != nil {
		mapError(w, err)
		return
	}

	go s.hub.BroadcastGraphChange(context.Background())
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user := userFromContext(r.Context())

	if err := s.registry.Destroy(r.Context(), id, user.ID, "creator"); err != nil {
		mapError(w, err)
		return
	}

	go s.hub.BroadcastGraphChange(context.Background())
	writeJSON(w, http.StatusOK, nil)
}

func toRoomResponse(room *rooms.Room) roomResponse {
	return roomResponse{
		ID:              room.ID,
		Name:            room.Name,
		CreatorID:       room.CreatorID,
		CreatedAt:       room.CreatedAt,
		HasPassphrase:   len(room.PassphraseDigest) > 0,
		MaxParticipants: room.MaxParticipants,
		Participants:    room.Participants,
	}
}
