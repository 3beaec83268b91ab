// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

// Package transport spawns and supervises the external JackTrip
// processes that carry audio for each room. The hub never patches audio
// itself and never enables JackTrip's own auto-patch behavior - every
// port connection in the JACK graph is made explicitly through
// internal/audiograph.
package transport

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/applebiter/jackdaw/internal/logging"
	"github.com/applebiter/jackdaw/internal/metrics"
)

// Mode selects whether a spawned process runs as a JackTrip hub server or
// as a client connecting to one.
type Mode string

const (
	ModeServer Mode = "server"
	ModeClient Mode = "client"
)

// DeathHandler is invoked exactly once, from a dedicated goroutine, when
// a supervised process exits for any reason - clean stop or crash.
type DeathHandler func(handle *Handle, err error)

// Spec describes a transport process to spawn.
type Spec struct {
	Mode      Mode
	Port      int    // -B (server) / -P (client) port
	Channels  int    // -n channel count
	RemoteHost string // client mode only, -C target
	ClientName string // -J
}

// Handle is a supervised, running (or exited) transport process.
type Handle struct {
	ID        string
	Spec      Spec
	cmd       *exec.Cmd
	mu        sync.Mutex
	alive     bool
	stopGrace time.Duration
}

// Supervisor spawns and tracks transport processes.
type Supervisor struct {
	bin       string
	stopGrace time.Duration

	mu       sync.Mutex
	handles  map[string]*Handle
}

// New creates a Supervisor that spawns bin (typically "jacktrip"),
// giving each process stopGrace to exit cleanly after SIGTERM before it
// is force-killed.
func New(bin string, stopGrace time.Duration) *Supervisor {
	return &Supervisor{
		bin:       bin,
		stopGrace: stopGrace,
		handles:   make(map[string]*Handle),
	}
}

// Spawn starts a new transport process and begins supervising it.
// onDeath is called from a background goroutine once the process exits.
func (s *Supervisor) Spawn(ctx context.Context, spec Spec, onDeath DeathHandler) (*Handle, error) {
	args, err := buildArgs(spec)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	cmd := exec.CommandContext(context.Background(), s.bin, args...) //nolint:gocritic // process must outlive request ctx
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		metrics.RecordTransportSpawn(time.Since(start), err)
		return nil, fmt.Errorf("failed to start transport process: %w", err)
	}
	metrics.RecordTransportSpawn(time.Since(start), nil)
	metrics.TransportActive.Inc()

	handle := &Handle{
		ID:        uuid.New().String(),
		Spec:      spec,
		cmd:       cmd,
		alive:     true,
		stopGrace: s.stopGrace,
	}

	s.mu.Lock()
	s.handles[handle.ID] = handle
	s.mu.Unlock()

	go s.watch(handle, onDeath)

	logging.Info().
		Str("transport_id", handle.ID).
		Str("mode", string(spec.Mode)).
		Int("port", spec.Port).
		Msg("spawned transport process")

	return handle, nil
}

func (s *Supervisor) watch(handle *Handle, onDeath DeathHandler) {
	err := handle.cmd.Wait()

	handle.mu.Lock()
	handle.alive = false
	handle.mu.Unlock()

	s.mu.Lock()
	delete(s.handles, handle.ID)
	s.mu.Unlock()

	metrics.TransportActive.Dec()

	logging.Info().Str("transport_id", handle.ID).Err(err).Msg("transport process exited")

	if onDeath != nil {
		onDeath(handle, err)
	}
}

// Stop sends SIGTERM, waits up to the configured grace period, then
// SIGKILLs if the process has not exited.
func (s *Supervisor) Stop(handle *Handle) error {
	handle.mu.Lock()
	alive := handle.alive
	handle.mu.Unlock()
	if !alive {
		return nil
	}

	if err := handle.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		if isProcessGone(err) {
			return nil
		}
		return fmt.Errorf("failed to signal transport process: %w", err)
	}

	done := make(chan struct{})
	go func() {
		for {
			handle.mu.Lock()
			alive := handle.alive
			handle.mu.Unlock()
			if !alive {
				close(done)
				return
			}
			time.Sleep(50 * time.Millisecond)
		}
	}()

	select {
	case <-done:
		return nil
	case <-time.After(handle.stopGrace):
		if err := handle.cmd.Process.Kill(); err != nil && !isProcessGone(err) {
			return fmt.Errorf("failed to kill transport process: %w", err)
		}
		return nil
	}
}

// Alive reports whether the given handle's process is still running.
func (h *Handle) Alive() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.alive
}

func isProcessGone(err error) bool {
	return err != nil && (err == syscall.ESRCH || err.Error() == "os: process already finished")
}

func buildArgs(spec Spec) ([]string, error) {
	channels := spec.Channels
	if channels <= 0 {
		channels = 2
	}

	switch spec.Mode {
	case ModeServer:
		if spec.Port <= 0 {
			return nil, fmt.Errorf("transport: server mode requires a port")
		}
		args := []string{
			"-S",
			"-B", strconv.Itoa(spec.Port),
			"-n", strconv.Itoa(channels),
		}
		if spec.ClientName != "" {
			args = append(args, "-J", spec.ClientName)
		}
		return args, nil
	case ModeClient:
		if spec.RemoteHost == "" || spec.Port <= 0 {
			return nil, fmt.Errorf("transport: client mode requires a remote host and port")
		}
		args := []string{
			"-C", spec.RemoteHost,
			"-P", strconv.Itoa(spec.Port),
			"-n", strconv.Itoa(channels),
		}
		if spec.ClientName != "" {
			args = append(args, "-J", spec.ClientName)
		}
		return args, nil
	default:
		return nil, fmt.Errorf("transport: unknown mode %q", spec.Mode)
	}
}
