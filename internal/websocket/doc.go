// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

/*
Package websocket implements the patchbay graph hub served at /ws/patchbay.

Every upgraded connection receives a full snapshot of the JACK audio graph
immediately on connect, and a fresh snapshot again after another client
connects or disconnects a pair of ports, or after a room is created, left
or deleted through the HTTP API. A room destroyed by the empty-room reaper
or by its transport process exiting triggers no broadcast.

Clients holding patchbay access may send connect/disconnect requests; any
authenticated client may send a refresh request. A rejected request is
answered with an error frame addressed to the requesting client alone -
the connection is never closed because of it.

Message Types:

Server to client:
  - snapshot: the full current graph, sent on connect and after any mutation
  - error: a rejected request, addressed only to the client that sent it

Client to server:
  - connect: join two ports named in the message data (requires patchbay access)
  - disconnect: sever two previously joined ports (requires patchbay access)
  - refresh: request an out-of-band snapshot

Architecture:

The package implements a hub-and-spoke pattern. The hub runs a single
event loop goroutine that owns the client set, so no locking is required
around Register/Unregister/broadcast handling. Each client has two
goroutines:
  - readPump: reads client messages, dispatches connect/disconnect/refresh
  - writePump: writes queued messages, sends pings

Determinism:

Client IDs are assigned from a monotonic atomic counter and the client set
is sorted by ID before every broadcast or shutdown pass, so delivery order
never depends on Go's randomized map iteration. A client whose send
channel is full during a broadcast is dropped rather than allowed to
block the loop.

Configuration:

  - writeWait: 10 seconds
  - pongWait: 60 seconds
  - pingPeriod: 54 seconds
  - maxMessageSize: 512 KB

See Also:

  - github.com/gorilla/websocket: underlying WebSocket library
  - internal/audiograph: the GraphMutator implementation backing the hub
  - internal/api: HTTP upgrade handler and bearer authentication
*/
package websocket
