// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

package rooms

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/applebiter/jackdaw/internal/transport"
)

type fakePorts struct {
	mu   sync.Mutex
	next int
	held map[int]struct{}
}

func newFakePorts() *fakePorts {
	return &fakePorts{next: 60000, held: make(map[int]struct{})}
}

func (f *fakePorts) Acquire() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	port := f.next
	f.next++
	f.held[port] = struct{}{}
	return port, nil
}

func (f *fakePorts) Release(port int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.held, port)
}

type fakeTransports struct {
	mu       sync.Mutex
	handles  map[*transport.Handle]transport.DeathHandler
	spawnErr error
}

func newFakeTransports() *fakeTransports {
	return &fakeTransports{handles: make(map[*transport.Handle]transport.DeathHandler)}
}

func (f *fakeTransports) Spawn(_ context.Context, spec transport.Spec, onDeath transport.DeathHandler) (*transport.Handle, error) {
	if f.spawnErr != nil {
		return nil, f.spawnErr
	}
	h := &transport.Handle{Spec: spec}
	f.mu.Lock()
	f.handles[h] = onDeath
	f.mu.Unlock()
	return h, nil
}

func (f *fakeTransports) Stop(h *transport.Handle) error {
	f.mu.Lock()
	delete(f.handles, h)
	f.mu.Unlock()
	return nil
}

func (f *fakeTransports) kill(h *transport.Handle, err error) {
	f.mu.Lock()
	onDeath := f.handles[h]
	f.mu.Unlock()
	if onDeath != nil {
		onDeath(h, err)
	}
}

func newTestRegistry(singleRoom bool) (*Registry, *fakePorts, *fakeTransports) {
	ports := newFakePorts()
	transports := newFakeTransports()
	return New(ports, transports, singleRoom, 4), ports, transports
}

func TestCreateRoomSucceeds(t *testing.T) {
	reg, _, _ := newTestRegistry(false)
	room, err := reg.Create(context.Background(), CreateRequest{Name: "jam", CreatorID: "alice"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if room.CreatorID != "alice" {
		t.Errorf("CreatorID = %q, want alice", room.CreatorID)
	}
	if len(room.Participants) != 1 || room.Participants[0] != "alice" {
		t.Errorf("Participants = %v, want [alice]", room.Participants)
	}
	if room.State != StateActive {
		t.Errorf("State = %q, want ACTIVE", room.State)
	}
}

func TestCreateDuplicateNameFails(t *testing.T) {
	reg, _, _ := newTestRegistry(false)
	_, err := reg.Create(context.Background(), CreateRequest{Name: "jam", CreatorID: "alice"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err = reg.Create(context.Background(), CreateRequest{Name: "jam", CreatorID: "bob"})
	if !errors.Is(err, ErrNameTaken) {
		t.Errorf("Create() error = %v, want ErrNameTaken", err)
	}
}

func TestCreateSingleRoomModeReplacesExisting(t *testing.T) {
	reg, _, _ := newTestRegistry(true)
	first, err := reg.Create(context.Background(), CreateRequest{Name: "jam", CreatorID: "alice"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	second, err := reg.Create(context.Background(), CreateRequest{Name: "session2", CreatorID: "bob"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := reg.Get(context.Background(), first.ID)
	if err == nil {
		t.Errorf("expected first room to be gone, got %+v", got)
	}
	if _, err := reg.Get(context.Background(), second.ID); err != nil {
		t.Errorf("expected second room to exist, got error %v", err)
	}
}

func TestJoinWithPassphrase(t *testing.T) {
	reg, _, _ := newTestRegistry(false)
	room, err := reg.Create(context.Background(), CreateRequest{Name: "jam", CreatorID: "alice", Passphrase: "secret"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := reg.Join(context.Background(), room.ID, "bob", "wrong"); !errors.Is(err, ErrBadPassphrase) {
		t.Errorf("Join() with wrong passphrase error = %v, want ErrBadPassphrase", err)
	}

	if _, err := reg.Join(context.Background(), room.ID, "bob", "secret"); err != nil {
		t.Errorf("Join() with correct passphrase error = %v, want nil", err)
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	reg, _, _ := newTestRegistry(false)
	room, _ := reg.Create(context.Background(), CreateRequest{Name: "jam", CreatorID: "alice"})

	if _, err := reg.Join(context.Background(), room.ID, "alice", ""); err != nil {
		t.Errorf("rejoin by creator error = %v, want nil", err)
	}
	if len(room.Participants) != 1 {
		t.Errorf("Participants = %v, want len 1 after idempotent rejoin", room.Participants)
	}
}

func TestJoinRespectsCapacity(t *testing.T) {
	reg, _, _ := newTestRegistry(false)
	room, _ := reg.Create(context.Background(), CreateRequest{Name: "jam", CreatorID: "alice", MaxParticipants: 2})

	if _, err := reg.Join(context.Background(), room.ID, "bob", ""); err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	if _, err := reg.Join(context.Background(), room.ID, "carol", ""); !errors.Is(err, ErrRoomFull) {
		t.Errorf("Join() over capacity error = %v, want ErrRoomFull", err)
	}
}

func TestLeaveLastParticipantDestroysRoom(t *testing.T) {
	reg, ports, _ := newTestRegistry(false)
	room, _ := reg.Create(context.Background(), CreateRequest{Name: "jam", CreatorID: "alice"})

	if err := reg.Leave(context.Background(), room.ID, "alice"); err != nil {
		t.Fatalf("Leave() error = %v", err)
	}
	if _, err := reg.Get(context.Background(), room.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after last leave error = %v, want ErrNotFound", err)
	}
	if _, held := ports.held[room.Port]; held {
		t.Error("expected port to be released after room destroyed")
	}
}

func TestLeaveSingleRoomModePersistsEmpty(t *testing.T) {
	reg, ports, _ := newTestRegistry(true)
	room, _ := reg.Create(context.Background(), CreateRequest{Name: "band", CreatorID: ""})

	if _, err := reg.Join(context.Background(), room.ID, "alice", ""); err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	if err := reg.Leave(context.Background(), room.ID, "alice"); err != nil {
		t.Fatalf("Leave() error = %v", err)
	}

	got, err := reg.Get(context.Background(), room.ID)
	if err != nil {
		t.Fatalf("Get() after last leave in single-room mode error = %v, want nil", err)
	}
	if len(got.Participants) != 0 {
		t.Errorf("Participants = %v, want empty", got.Participants)
	}
	if _, held := ports.held[room.Port]; !held {
		t.Error("expected standing room's port to remain held")
	}
}

func TestLeaveByNonParticipantReturnsErrNotIn(t *testing.T) {
	reg, _, _ := newTestRegistry(false)
	room, _ := reg.Create(context.Background(), CreateRequest{Name: "jam", CreatorID: "alice"})

	if err := reg.Leave(context.Background(), room.ID, "bob"); !errors.Is(err, ErrNotIn) {
		t.Errorf("Leave() by non-participant error = %v, want ErrNotIn", err)
	}
}

func TestReapEmptySkipsSingleRoomMode(t *testing.T) {
	reg, _, _ := newTestRegistry(true)
	room, _ := reg.Create(context.Background(), CreateRequest{Name: "band", CreatorID: ""})

	reg.reapOnce()

	if _, err := reg.Get(context.Background(), room.ID); err != nil {
		t.Errorf("Get() after reap in single-room mode error = %v, want nil", err)
	}
}

func TestDestroyRequiresCreator(t *testing.T) {
	reg, _, _ := newTestRegistry(false)
	room, _ := reg.Create(context.Background(), CreateRequest{Name: "jam", CreatorID: "alice"})

	if err := reg.Destroy(context.Background(), room.ID, "bob", "creator"); !errors.Is(err, ErrForbidden) {
		t.Errorf("Destroy() by non-creator error = %v, want ErrForbidden", err)
	}
	if err := reg.Destroy(context.Background(), room.ID, "alice", "creator"); err != nil {
		t.Errorf("Destroy() by creator error = %v, want nil", err)
	}
}

func TestTransportDeathDestroysRoom(t *testing.T) {
	reg, _, transports := newTestRegistry(false)
	room, _ := reg.Create(context.Background(), CreateRequest{Name: "jam", CreatorID: "alice"})

	var handle *transport.Handle
	for h := range transports.handles {
		handle = h
	}
	transports.kill(handle, errors.New("boom"))

	if _, err := reg.Get(context.Background(), room.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after transport death error = %v, want ErrNotFound", err)
	}
}

func TestListReturnsAllActiveRooms(t *testing.T) {
	reg, _, _ := newTestRegistry(false)
	reg.Create(context.Background(), CreateRequest{Name: "jam1", CreatorID: "alice"})
	reg.Create(context.Background(), CreateRequest{Name: "jam2", CreatorID: "bob"})

	items := reg.List(context.Background())
	if len(items) != 2 {
		t.Errorf("List() returned %d items, want 2", len(items))
	}
}

func TestReapEmptyDestroysVacantRooms(t *testing.T) {
	reg, _, _ := newTestRegistry(false)
	room, _ := reg.Create(context.Background(), CreateRequest{Name: "jam", CreatorID: "alice"})

	room.mu.Lock()
	room.Participants = nil
	room.mu.Unlock()

	reg.reapOnce()

	if _, err := reg.Get(context.Background(), room.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after reap error = %v, want ErrNotFound", err)
	}
}
