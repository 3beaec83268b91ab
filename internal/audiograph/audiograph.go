// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

// Package audiograph adapts the live JACK audio graph by shelling out to
// jack_lsp, jack_connect and jack_disconnect - there is no Go binding for
// JACK's client library, so the CLI tools are the adapter's wire
// protocol. Every call is wrapped in a circuit breaker: a JACK server
// that stops responding should fail fast for every caller rather than
// let each request pile up behind the same dead process.
package audiograph

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/applebiter/jackdaw/internal/logging"
	"github.com/applebiter/jackdaw/internal/metrics"
)

// ErrIncompatibleDirection is returned by Connect when the two named
// ports are not a valid output->input pair. Direction is read from
// JACK's own port metadata, not guessed from naming conventions.
var ErrIncompatibleDirection = errors.New("audiograph: ports are not an output/input pair")

// ErrPortNotFound is returned when a named port does not exist in the
// current graph.
var ErrPortNotFound = errors.New("audiograph: port not found")

// Direction is a JACK port's data flow direction.
type Direction string

const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// Port is a single JACK port.
type Port struct {
	Name        string    `json:"name"`
	Direction   Direction `json:"direction"`
	Connections []string  `json:"connections"`
}

// Graph is a full snapshot of the JACK port graph.
type Graph struct {
	Ports []Port `json:"ports"`
}

// Adapter talks to a running JACK server via its CLI tools.
type Adapter struct {
	lspBin        string
	connectBin    string
	disconnectBin string
	breaker       *gobreaker.CircuitBreaker[[]byte]
}

// New creates an Adapter. lspBin/connectBin/disconnectBin are the paths
// to jack_lsp/jack_connect/jack_disconnect (or just their names, if on
// PATH).
func New(lspBin, connectBin, disconnectBin string) *Adapter {
	settings := gobreaker.Settings{
		Name:        "jack-cli",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.GraphCircuitState.Set(stateValue(to))
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("audio graph circuit breaker state change")
		},
	}

	return &Adapter{
		lspBin:        orDefault(lspBin, "jack_lsp"),
		connectBin:    orDefault(connectBin, "jack_connect"),
		disconnectBin: orDefault(disconnectBin, "jack_disconnect"),
		breaker:       gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Snapshot returns the full current port graph.
func (a *Adapter) Snapshot(ctx context.Context) (*Graph, error) {
	start := time.Now()
	out, err := a.run(ctx, a.breaker, a.lspBin, "-c", "-p")
	metrics.GraphQueryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to query jack graph: %w", err)
	}
	return parseLsp(out), nil
}

// Connect joins an output port to an input port. Direction is verified
// against JACK's own port metadata before attempting the connection.
func (a *Adapter) Connect(ctx context.Context, source, dest string) error {
	if err := a.verifyDirections(ctx, source, dest); err != nil {
		return err
	}
	_, err := a.run(ctx, a.breaker, a.connectBin, source, dest)
	metrics.RecordGraphMutation("connect", err)
	if err != nil {
		return fmt.Errorf("failed to connect %s to %s: %w", source, dest, err)
	}
	return nil
}

// Disconnect severs a previously made connection.
func (a *Adapter) Disconnect(ctx context.Context, source, dest string) error {
	_, err := a.run(ctx, a.breaker, a.disconnectBin, source, dest)
	metrics.RecordGraphMutation("disconnect", err)
	if err != nil {
		return fmt.Errorf("failed to disconnect %s from %s: %w", source, dest, err)
	}
	return nil
}

func (a *Adapter) verifyDirections(ctx context.Context, source, dest string) error {
	graph, err := a.Snapshot(ctx)
	if err != nil {
		return err
	}

	var src, dst *Port
	for i := range graph.Ports {
		p := &graph.Ports[i]
		if p.Name == source {
			src = p
		}
		if p.Name == dest {
			dst = p
		}
	}
	if src == nil || dst == nil {
		return ErrPortNotFound
	}
	if src.Direction != DirectionOutput || dst.Direction != DirectionInput {
		return ErrIncompatibleDirection
	}
	return nil
}

func (a *Adapter) run(ctx context.Context, breaker *gobreaker.CircuitBreaker[[]byte], bin string, args ...string) ([]byte, error) {
	return breaker.Execute(func() ([]byte, error) {
		cmd := exec.CommandContext(ctx, bin, args...)
		out, err := cmd.Output()
		if err != nil {
			return nil, err
		}
		return out, nil
	})
}

// parseLsp parses `jack_lsp -c -p` output. Each port starts a new
// unindented line; its properties and connections follow on indented
// lines until the next unindented line.
func parseLsp(out []byte) *Graph {
	graph := &Graph{}
	scanner := bufio.NewScanner(strings.NewReader(string(out)))

	var current *Port
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			if current != nil {
				graph.Ports = append(graph.Ports, *current)
			}
			current = &Port{Name: strings.TrimSpace(line)}
			continue
		}
		if current == nil {
			continue
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "properties:") {
			props := strings.TrimPrefix(trimmed, "properties:")
			if strings.Contains(props, "input") {
				current.Direction = DirectionInput
			} else if strings.Contains(props, "output") {
				current.Direction = DirectionOutput
			}
			continue
		}

		current.Connections = append(current.Connections, trimmed)
	}
	if current != nil {
		graph.Ports = append(graph.Ports, *current)
	}
	return graph
}
