// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/applebiter/jackdaw/internal/logging"
	"github.com/applebiter/jackdaw/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types exchanged over the /ws/patchbay socket. connect, disconnect
// and refresh are client-originated; connect and disconnect require
// patchbay access, refresh does not. snapshot and error are
// server-originated.
const (
	MessageTypeSnapshot   = "snapshot"
	MessageTypeConnect    = "connect"
	MessageTypeDisconnect = "disconnect"
	MessageTypeRefresh    = "refresh"
	MessageTypeError      = "error"
	MessageTypePing       = "ping"
	MessageTypePong       = "pong"
)

// Message is the wire format for every frame sent over the socket.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// PortPair is the payload of a client-originated connect/disconnect message.
type PortPair struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
}

// GraphMutator is the subset of the audio graph adapter the hub needs to
// serve snapshot requests and apply client-originated mutations.
type GraphMutator interface {
	Snapshot(ctx context.Context) (interface{}, error)
	Connect(ctx context.Context, source, dest string) error
	Disconnect(ctx context.Context, source, dest string) error
}

// Hub maintains the set of active patchbay connections and fans out graph
// change notifications to all of them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
	graph      GraphMutator
}

// NewHub creates a new Hub backed by the given graph mutator.
func NewHub(graph GraphMutator) *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		graph:      graph,
	}
}

// Serve implements suture.Service by running the hub's event loop until
// ctx is canceled.
func (h *Hub) Serve(ctx context.Context) error {
	return h.RunWithContext(ctx)
}

// String implements fmt.Stringer for supervisor logging.
func (h *Hub) String() string {
	return "patchbay-hub"
}

// RunWithContext runs the hub's event loop until ctx is canceled. Designed
// for use as a suture.Service.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
			h.sendSnapshot(ctx, client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()
	metrics.WSConnections.Set(float64(count))
	logging.Info().Int("total_clients", count).Msg("patchbay websocket client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	count := len(h.clients)
	h.mu.Unlock()
	metrics.WSConnections.Set(float64(count))
	logging.Info().Int("total_clients", count).Msg("patchbay websocket client disconnected")
}

func (h *Hub) sendSnapshot(ctx context.Context, client *Client) {
	snap, err := h.graph.Snapshot(ctx)
	if err != nil {
		h.sendTo(client, Message{Type: MessageTypeError, Data: err.Error()})
		return
	}
	h.sendTo(client, Message{Type: MessageTypeSnapshot, Data: snap})
}

func (h *Hub) sendTo(client *Client, msg Message) {
	select {
	case client.send <- msg:
	default:
		metrics.WSMessagesDropped.Inc()
	}
}

// HandleClientMessage processes a client-originated connect/disconnect/
// refresh request. Errors are returned to the originating client alone,
// without closing the socket.
func (h *Hub) HandleClientMessage(ctx context.Context, client *Client, msg Message) {
	if !client.canMutate && msg.Type != MessageTypeRefresh {
		h.sendTo(client, Message{Type: MessageTypeError, Data: "patchbay access required"})
		return
	}

	metrics.WSMessagesReceived.WithLabelValues(msg.Type).Inc()

	switch msg.Type {
	case MessageTypeRefresh:
		h.sendSnapshot(ctx, client)
	case MessageTypeConnect, MessageTypeDisconnect:
		pair, ok := decodePortPair(msg.Data)
		if !ok {
			h.sendTo(client, Message{Type: MessageTypeError, Data: "malformed port pair"})
			return
		}
		var err error
		if msg.Type == MessageTypeConnect {
			err = h.graph.Connect(ctx, pair.Source, pair.Dest)
		} else {
			err = h.graph.Disconnect(ctx, pair.Source, pair.Dest)
		}
		metrics.RecordGraphMutation(msg.Type, err)
		if err != nil {
			h.sendTo(client, Message{Type: MessageTypeError, Data: err.Error()})
			return
		}
		h.BroadcastGraphChange(ctx)
	default:
		h.sendTo(client, Message{Type: MessageTypeError, Data: "unknown message type"})
	}
}

func decodePortPair(data interface{}) (PortPair, bool) {
	raw, err := json.Marshal(data)
	if err != nil {
		return PortPair{}, false
	}
	var pair PortPair
	if err := json.Unmarshal(raw, &pair); err != nil {
		return PortPair{}, false
	}
	if pair.Source == "" || pair.Dest == "" {
		return PortPair{}, false
	}
	return pair, true
}

// BroadcastGraphChange sends a fresh snapshot to every connected client.
// Used after any connect/disconnect and after room create, leave and
// delete requests on the HTTP API.
func (h *Hub) BroadcastGraphChange(ctx context.Context) {
	snap, err := h.graph.Snapshot(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("failed to build graph snapshot for broadcast")
		return
	}
	h.enqueue(Message{Type: MessageTypeSnapshot, Data: snap})
}

func (h *Hub) enqueue(message Message) {
	select {
	case h.broadcast <- message:
	default:
		logging.Warn().Msg("broadcast channel full, dropping graph snapshot")
	}
}

func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
			metrics.WSMessagesSent.Inc()
		default:
			metrics.WSMessagesDropped.Inc()
			toRemove = append(toRemove, client)
		}
	}
	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
	}
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	count := h.GetClientCount()
	h.closeAllClients()
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(shutdownReason(ctx))).
		Int("clients_closed", count).
		Msg("patchbay websocket hub stopped")
}

func shutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.WSConnections.Set(0)
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MarshalMessage converts a message to JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
