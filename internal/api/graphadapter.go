// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

package api

import (
	"context"

	"github.com/applebiter/jackdaw/internal/audiograph"
)

// GraphMutator adapts *audiograph.Adapter's concretely-typed Snapshot to
// the websocket package's GraphMutator interface, which returns
// interface{} so the hub has no compile-time dependency on the audio
// graph adapter's types.
type GraphMutator struct {
	adapter *audiograph.Adapter
}

// NewGraphMutator wraps an audio graph adapter for use as the graph
// WebSocket hub's mutator.
func NewGraphMutator(adapter *audiograph.Adapter) *GraphMutator {
	return &GraphMutator{adapter: adapter}
}

func (g *GraphMutator) Snapshot(ctx context.Context) (interface{}, error) {
	return g.adapter.Snapshot(ctx)
}

func (g *GraphMutator) Connect(ctx context.Context, source, dest string) error {
	return g.adapter.Connect(ctx, source, dest)
}

func (g *GraphMutator) Disconnect(ctx context.Context, source, dest string) error {
	return g.adapter.Disconnect(ctx, source, dest)
}
