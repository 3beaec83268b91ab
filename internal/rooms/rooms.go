// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

// Package rooms implements the in-memory room registry: creation,
// membership, passphrase gating and the state machine that ties a
// room's lifetime to its transport process. Rooms and port allocations
// are never persisted - a restart starts with zero rooms.
package rooms

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/applebiter/jackdaw/internal/logging"
	"github.com/applebiter/jackdaw/internal/metrics"
	"github.com/applebiter/jackdaw/internal/transport"
)

var (
	ErrNotFound      = errors.New("rooms: room not found")
	ErrBadPassphrase = errors.New("rooms: incorrect passphrase")
	ErrRoomFull       = errors.New("rooms: room is at capacity")
	ErrNameTaken      = errors.New("rooms: a room with that name already exists")
	ErrForbidden      = errors.New("rooms: caller is not the room creator")
	ErrDestroyed      = errors.New("rooms: room has been destroyed")
	ErrNotIn          = errors.New("rooms: caller is not a participant in this room")
)

const defaultMaxParticipants = 8

// State is a room's lifecycle state.
type State string

const (
	StateActive    State = "ACTIVE"
	StateDestroyed State = "DESTROYED"
)

// Room is a single collaboration session and its transport process.
type Room struct {
	ID               string
	Name             string
	CreatorID        string
	CreatedAt        time.Time
	PassphraseDigest []byte
	MaxParticipants  int
	Port             int
	Participants     []string // ordered by join; seeded with the creator when CreatorID is set
	State            State

	mu      sync.Mutex
	handle  *transport.Handle
}

// ListItem is the public, read-only view of a room returned by List.
type ListItem struct {
	ID              string
	Name            string
	CreatorID       string
	CreatedAt       time.Time
	HasPassphrase   bool
	MaxParticipants int
	Participants    int
}

// JoinInfo is returned to a caller who successfully joins a room.
type JoinInfo struct {
	Room *Room
	Port int
}

// CreateRequest describes a room to create.
type CreateRequest struct {
	Name            string
	CreatorID       string
	Passphrase      string // empty means public
	MaxParticipants int
	Channels        int
}

// PortAllocator is the subset of internal/portalloc.Allocator the
// registry depends on.
type PortAllocator interface {
	Acquire() (int, error)
	Release(port int)
}

// TransportSpawner is the subset of internal/transport.Supervisor the
// registry depends on.
type TransportSpawner interface {
	Spawn(ctx context.Context, spec transport.Spec, onDeath transport.DeathHandler) (*transport.Handle, error)
	Stop(handle *transport.Handle) error
}

// Registry holds every active room in memory.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	byName   map[string]string // name -> id, name collision check outside single-room mode

	ports      PortAllocator
	transports TransportSpawner

	singleRoomMode bool
	bcryptCost     int

	// deathLogSometimes throttles the transport-death warning log during
	// a death storm (e.g. the JACK server itself crashes, taking every
	// room's jacktrip process down at once) - metrics still record every
	// death, only the log line is deduplicated.
	deathLogSometimes rate.Sometimes
}

// New creates an empty Registry.
func New(ports PortAllocator, transports TransportSpawner, singleRoomMode bool, bcryptCost int) *Registry {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Registry{
		rooms:             make(map[string]*Room),
		byName:            make(map[string]string),
		ports:             ports,
		transports:        transports,
		singleRoomMode:    singleRoomMode,
		bcryptCost:        bcryptCost,
		deathLogSometimes: rate.Sometimes{Interval: 5 * time.Second},
	}
}

// Create allocates a transport port, spawns its transport process, and
// registers a new room. In single-room mode, creating a room while one
// already exists destroys the existing room first.
func (r *Registry) Create(ctx context.Context, req CreateRequest) (*Room, error) {
	if req.MaxParticipants <= 0 {
		req.MaxParticipants = defaultMaxParticipants
	}

	var replaced []*transport.Handle
	r.mu.Lock()
	if r.singleRoomMode && len(r.rooms) > 0 {
		for id, old := range r.rooms {
			if old.handle != nil {
				replaced = append(replaced, old.handle)
			}
			r.destroyLocked(id, "single_room_replaced")
		}
	} else if existingID, taken := r.byName[req.Name]; taken {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %q (existing id %s)", ErrNameTaken, req.Name, existingID)
	}
	r.mu.Unlock()

	for _, h := range replaced {
		if err := r.transports.Stop(h); err != nil {
			logging.Warn().Err(err).Msg("failed to stop transport of replaced room")
		}
	}

	port, err := r.ports.Acquire()
	if err != nil {
		return nil, err
	}

	room := &Room{
		ID:              uuid.New().String(),
		Name:            req.Name,
		CreatorID:       req.CreatorID,
		CreatedAt:       time.Now(),
		MaxParticipants: req.MaxParticipants,
		Port:            port,
		State:           StateActive,
	}
	if req.CreatorID != "" {
		room.Participants = []string{req.CreatorID}
	}

	if req.Passphrase != "" {
		digest, err := bcrypt.GenerateFromPassword([]byte(req.Passphrase), r.bcryptCost)
		if err != nil {
			r.ports.Release(port)
			return nil, fmt.Errorf("failed to hash room passphrase: %w", err)
		}
		room.PassphraseDigest = digest
	}

	clientName := "jackdaw-" + room.ID[:8]
	handle, err := r.transports.Spawn(ctx, transport.Spec{
		Mode:       transport.ModeServer,
		Port:       port,
		Channels:   req.Channels,
		ClientName: clientName,
	}, r.onTransportDeath)
	if err != nil {
		r.ports.Release(port)
		return nil, fmt.Errorf("failed to spawn transport for room: %w", err)
	}
	room.handle = handle

	r.mu.Lock()
	r.rooms[room.ID] = room
	r.byName[room.Name] = room.ID
	r.mu.Unlock()

	metrics.RoomsActive.Set(float64(r.countLocked()))
	metrics.RoomsCreatedTotal.Inc()
	metrics.RoomParticipants.WithLabelValues(room.ID).Set(float64(len(room.Participants)))

	logging.Info().Str("room_id", room.ID).Str("name", room.Name).Int("port", port).Msg("room created")

	return room, nil
}

// List returns a snapshot of every active room.
func (r *Registry) List(_ context.Context) []ListItem {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]ListItem, 0, len(r.rooms))
	for _, room := range r.rooms {
		room.mu.Lock()
		items = append(items, ListItem{
			ID:              room.ID,
			Name:            room.Name,
			CreatorID:       room.CreatorID,
			CreatedAt:       room.CreatedAt,
			HasPassphrase:   len(room.PassphraseDigest) > 0,
			MaxParticipants: room.MaxParticipants,
			Participants:    len(room.Participants),
		})
		room.mu.Unlock()
	}
	return items
}

// Get returns a room by ID.
func (r *Registry) Get(_ context.Context, id string) (*Room, error) {
	r.mu.RLock()
	room, ok := r.rooms[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return room, nil
}

// Join adds userID to the room's participant list, checking its
// passphrase if one is set. Rejoining a room the user is already in is
// a no-op success.
func (r *Registry) Join(_ context.Context, id, userID, passphrase string) (*JoinInfo, error) {
	r.mu.RLock()
	room, ok := r.rooms[id]
	r.mu.RUnlock()
	if !ok {
		metrics.RecordJoinAttempt("not_found")
		return nil, ErrNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.State != StateActive {
		metrics.RecordJoinAttempt("not_found")
		return nil, ErrDestroyed
	}

	for _, p := range room.Participants {
		if p == userID {
			metrics.RecordJoinAttempt("success")
			return &JoinInfo{Room: room, Port: room.Port}, nil
		}
	}

	if len(room.PassphraseDigest) > 0 {
		if err := bcrypt.CompareHashAndPassword(room.PassphraseDigest, []byte(passphrase)); err != nil {
			metrics.RecordJoinAttempt("bad_passphrase")
			return nil, ErrBadPassphrase
		}
	}

	if len(room.Participants) >= room.MaxParticipants {
		metrics.RecordJoinAttempt("full")
		return nil, ErrRoomFull
	}

	room.Participants = append(room.Participants, userID)
	metrics.RoomParticipants.WithLabelValues(room.ID).Set(float64(len(room.Participants)))
	metrics.RecordJoinAttempt("success")

	return &JoinInfo{Room: room, Port: room.Port}, nil
}

// Leave removes userID from a room's participant list. When the last
// participant leaves, the room is destroyed - unless the registry is
// running in single-room mode, where the standing room persists empty
// rather than being torn down.
func (r *Registry) Leave(ctx context.Context, id, userID string) error {
	r.mu.RLock()
	room, ok := r.rooms[id]
	r.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	room.mu.Lock()
	remaining := room.Participants[:0:0]
	found := false
	for _, p := range room.Participants {
		if p == userID {
			found = true
			continue
		}
		remaining = append(remaining, p)
	}
	room.Participants = remaining
	empty := len(room.Participants) == 0
	room.mu.Unlock()

	if !found {
		return ErrNotIn
	}

	metrics.RoomParticipants.WithLabelValues(room.ID).Set(float64(len(room.Participants)))

	if empty && !r.singleRoomMode {
		r.Destroy(ctx, id, room.CreatorID, "empty")
	}
	return nil
}

// Destroy stops a room's transport and removes it from the registry.
// When reason is "creator", callerID must be the room's creator;
// for any other reason (the reaper's "empty", leave-triggered "empty")
// callerID is not checked.
func (r *Registry) Destroy(ctx context.Context, id, callerID, reason string) error {
	r.mu.Lock()
	room, ok := r.rooms[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	if reason == "creator" && room.CreatorID != callerID {
		r.mu.Unlock()
		return ErrForbidden
	}
	r.destroyLocked(id, reason)
	r.mu.Unlock()

	if room.handle != nil {
		if err := r.transports.Stop(room.handle); err != nil {
			logging.Warn().Str("room_id", id).Err(err).Msg("failed to stop transport during room destroy")
		}
	}
	return nil
}

// destroyLocked removes the room from both indexes and marks it
// destroyed. Callers must hold r.mu.
func (r *Registry) destroyLocked(id, reason string) {
	room, ok := r.rooms[id]
	if !ok {
		return
	}
	delete(r.rooms, id)
	delete(r.byName, room.Name)
	r.ports.Release(room.Port)

	room.mu.Lock()
	room.State = StateDestroyed
	room.mu.Unlock()

	metrics.RoomsActive.Set(float64(len(r.rooms)))
	metrics.RecordRoomDestroyed(reason)

	logging.Info().Str("room_id", id).Str("reason", reason).Msg("room destroyed")
}

func (r *Registry) countLocked() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// onTransportDeath is the DeathHandler passed to the transport
// supervisor on Spawn. An unexpected transport exit immediately
// destroys its room rather than leaving a zombie entry for the reaper
// to eventually clean up.
func (r *Registry) onTransportDeath(handle *transport.Handle, err error) {
	r.mu.RLock()
	var roomID string
	for id, room := range r.rooms {
		if room.handle == handle {
			roomID = id
			break
		}
	}
	r.mu.RUnlock()

	if roomID == "" {
		return
	}

	metrics.TransportDeaths.WithLabelValues(roomID).Inc()
	r.deathLogSometimes.Do(func() {
		logging.Warn().Str("room_id", roomID).Err(err).Msg("transport process died, destroying room")
	})

	r.mu.Lock()
	r.destroyLocked(roomID, "transport_failure")
	r.mu.Unlock()
}

// ReapEmpty runs in a background goroutine, periodically destroying any
// room that has no participants left. This is a belt-and-suspenders
// pass alongside the immediate destroy in Leave, for rooms vacated by a
// dead transport mid-reconnect window.
func (r *Registry) ReapEmpty(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reapOnce()
		}
	}
}

// ReaperService adapts ReapEmpty to suture.Service so the orchestrator
// can supervise the reap loop on the rooms layer.
type ReaperService struct {
	Registry *Registry
	Interval time.Duration
}

func (s *ReaperService) Serve(ctx context.Context) error {
	s.Registry.ReapEmpty(ctx, s.Interval)
	return ctx.Err()
}

func (s *ReaperService) String() string {
	return "room-reaper"
}

// reapOnce destroys every empty room. It is a no-op in single-room
// mode, where the standing room persists empty until the process
// restarts.
func (r *Registry) reapOnce() {
	if r.singleRoomMode {
		return
	}

	r.mu.RLock()
	var empty []string
	for id, room := range r.rooms {
		room.mu.Lock()
		if len(room.Participants) == 0 {
			empty = append(empty, id)
		}
		room.mu.Unlock()
	}
	r.mu.RUnlock()

	for _, id := range empty {
		_ = r.Destroy(context.Background(), id, "", "empty")
	}
}
