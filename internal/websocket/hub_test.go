// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

package websocket

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/applebiter/jackdaw/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

type stubGraph struct {
	snapshot    interface{}
	snapshotErr error
	connectErr  error
	disconnErr  error
	lastConnect PortPair
	lastDisconn PortPair
}

func (s *stubGraph) Snapshot(ctx context.Context) (interface{}, error) {
	if s.snapshotErr != nil {
		return nil, s.snapshotErr
	}
	if s.snapshot == nil {
		return map[string]string{"status": "ok"}, nil
	}
	return s.snapshot, nil
}

func (s *stubGraph) Connect(ctx context.Context, source, dest string) error {
	s.lastConnect = PortPair{Source: source, Dest: dest}
	return s.connectErr
}

func (s *stubGraph) Disconnect(ctx context.Context, source, dest string) error {
	s.lastDisconn = PortPair{Source: source, Dest: dest}
	return s.disconnErr
}

func setupHub(t *testing.T, graph GraphMutator) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(graph)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = hub.RunWithContext(ctx) }()
	time.Sleep(10 * time.Millisecond)
	return hub, cancel
}

func createTestClient(hub *Hub, canMutate bool) *Client {
	return &Client{hub: hub, send: make(chan Message, 256), canMutate: canMutate, id: clientIDCounter.Add(1)}
}

func registerClient(hub *Hub, client *Client) {
	hub.Register <- client
	time.Sleep(20 * time.Millisecond)
}

func TestNewHub(t *testing.T) {
	hub := NewHub(&stubGraph{})

	if hub == nil {
		t.Fatal("NewHub returned nil")
	}

	checks := []struct {
		name   string
		check  bool
		errMsg string
	}{
		{"clients map", hub.clients != nil, "clients map not initialized"},
		{"broadcast channel", hub.broadcast != nil, "broadcast channel not initialized"},
		{"Register channel", hub.Register != nil, "Register channel not initialized"},
		{"Unregister channel", hub.Unregister != nil, "Unregister channel not initialized"},
		{"empty clients", len(hub.clients) == 0, "clients map should be empty"},
	}

	for _, c := range checks {
		if !c.check {
			t.Error(c.errMsg)
		}
	}
}

func TestHubSendsSnapshotOnRegister(t *testing.T) {
	graph := &stubGraph{snapshot: map[string]int{"ports": 4}}
	hub, cancel := setupHub(t, graph)
	defer cancel()

	client := createTestClient(hub, true)
	registerClient(hub, client)

	select {
	case msg := <-client.send:
		if msg.Type != MessageTypeSnapshot {
			t.Errorf("expected snapshot message, got %s", msg.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
}

func TestHubRegisterUpdatesClientCount(t *testing.T) {
	hub, cancel := setupHub(t, &stubGraph{})
	defer cancel()

	if got := hub.GetClientCount(); got != 0 {
		t.Fatalf("expected 0 clients initially, got %d", got)
	}

	c1 := createTestClient(hub, true)
	registerClient(hub, c1)
	<-c1.send // drain initial snapshot

	if got := hub.GetClientCount(); got != 1 {
		t.Fatalf("expected 1 client, got %d", got)
	}

	hub.Unregister <- c1
	time.Sleep(20 * time.Millisecond)

	if got := hub.GetClientCount(); got != 0 {
		t.Fatalf("expected 0 clients after unregister, got %d", got)
	}
}

func TestHandleClientMessageRejectsMutationWithoutAccess(t *testing.T) {
	graph := &stubGraph{}
	hub, cancel := setupHub(t, graph)
	defer cancel()

	client := createTestClient(hub, false)
	registerClient(hub, client)
	<-client.send // drain snapshot

	hub.HandleClientMessage(context.Background(), client, Message{
		Type: MessageTypeConnect,
		Data: PortPair{Source: "a", Dest: "b"},
	})

	select {
	case msg := <-client.send:
		if msg.Type != MessageTypeError {
			t.Errorf("expected error message, got %s", msg.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for error response")
	}

	if graph.lastConnect.Source != "" {
		t.Error("graph.Connect should not have been called")
	}
}

func TestHandleClientMessageConnectBroadcasts(t *testing.T) {
	graph := &stubGraph{}
	hub, cancel := setupHub(t, graph)
	defer cancel()

	client := createTestClient(hub, true)
	registerClient(hub, client)
	<-client.send // drain initial snapshot

	hub.HandleClientMessage(context.Background(), client, Message{
		Type: MessageTypeConnect,
		Data: PortPair{Source: "send_1:1", Dest: "receive_1:1"},
	})

	select {
	case msg := <-client.send:
		if msg.Type != MessageTypeSnapshot {
			t.Errorf("expected snapshot broadcast after connect, got %s", msg.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for post-connect snapshot")
	}

	if graph.lastConnect != (PortPair{Source: "send_1:1", Dest: "receive_1:1"}) {
		t.Errorf("unexpected connect call: %+v", graph.lastConnect)
	}
}

func TestHandleClientMessageConnectFailureSendsError(t *testing.T) {
	graph := &stubGraph{connectErr: errors.New("incompatible direction")}
	hub, cancel := setupHub(t, graph)
	defer cancel()

	client := createTestClient(hub, true)
	registerClient(hub, client)
	<-client.send

	hub.HandleClientMessage(context.Background(), client, Message{
		Type: MessageTypeConnect,
		Data: PortPair{Source: "a", Dest: "b"},
	})

	select {
	case msg := <-client.send:
		if msg.Type != MessageTypeError {
			t.Errorf("expected error message, got %s", msg.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for error response")
	}

	if hub.GetClientCount() != 1 {
		t.Error("client should not be disconnected after a rejected mutation")
	}
}

func TestHandleClientMessageMalformedPortPair(t *testing.T) {
	hub, cancel := setupHub(t, &stubGraph{})
	defer cancel()

	client := createTestClient(hub, true)
	registerClient(hub, client)
	<-client.send

	hub.HandleClientMessage(context.Background(), client, Message{
		Type: MessageTypeConnect,
		Data: map[string]string{"source": "a"},
	})

	select {
	case msg := <-client.send:
		if msg.Type != MessageTypeError {
			t.Errorf("expected error message, got %s", msg.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for error response")
	}
}

func TestHandleClientMessageRefreshAllowedWithoutAccess(t *testing.T) {
	hub, cancel := setupHub(t, &stubGraph{})
	defer cancel()

	client := createTestClient(hub, false)
	registerClient(hub, client)
	<-client.send

	hub.HandleClientMessage(context.Background(), client, Message{Type: MessageTypeRefresh})

	select {
	case msg := <-client.send:
		if msg.Type != MessageTypeSnapshot {
			t.Errorf("expected snapshot message, got %s", msg.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for refresh snapshot")
	}
}

func TestBroadcastGraphChangeReachesAllClients(t *testing.T) {
	hub, cancel := setupHub(t, &stubGraph{})
	defer cancel()

	clients := make([]*Client, 3)
	for i := range clients {
		clients[i] = createTestClient(hub, true)
		registerClient(hub, clients[i])
		<-clients[i].send // drain initial snapshot
	}

	hub.BroadcastGraphChange(context.Background())

	for _, c := range clients {
		select {
		case msg := <-c.send:
			if msg.Type != MessageTypeSnapshot {
				t.Errorf("expected snapshot message, got %s", msg.Type)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for broadcast")
		}
	}
}

func TestBroadcastDropsSlowClient(t *testing.T) {
	hub, cancel := setupHub(t, &stubGraph{})
	defer cancel()

	slow := createTestClient(hub, true)
	registerClient(hub, slow)
	// Deliberately do not drain slow.send, then fill it past capacity.
	for i := 0; i < cap(slow.send)+10; i++ {
		hub.broadcastToClients(Message{Type: MessageTypeSnapshot})
	}

	if hub.GetClientCount() != 0 {
		t.Error("slow client should have been dropped")
	}
}

func TestRunWithContextStopsOnCancel(t *testing.T) {
	hub := NewHub(&stubGraph{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("hub did not stop after context cancellation")
	}
}
