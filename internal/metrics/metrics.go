// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the hub's core subsystems: credential
// store, port allocator, transport supervisor, audio graph adapter, room
// registry, HTTP API, and the graph WebSocket hub.

var (
	// Credential Store Metrics
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jackdaw_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"operation", "result"}, // operation: register, login; result: success, failure
	)

	AuthHashDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jackdaw_auth_hash_duration_seconds",
			Help:    "Duration of password hashing operations",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jackdaw_active_sessions",
			Help: "Current number of active bearer token sessions",
		},
	)

	// Port Allocator Metrics
	PortsAllocated = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jackdaw_ports_allocated",
			Help: "Current number of UDP transport ports allocated",
		},
	)

	PortAllocationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jackdaw_port_allocation_failures_total",
			Help: "Total number of port allocation attempts that failed due to exhaustion",
		},
	)

	// Transport Supervisor Metrics
	TransportSpawnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jackdaw_transport_spawns_total",
			Help: "Total number of transport process spawn attempts",
		},
		[]string{"result"}, // success, failure
	)

	TransportSpawnDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jackdaw_transport_spawn_duration_seconds",
			Help:    "Duration of starting a transport process (exec start only)",
			Buckets: prometheus.DefBuckets,
		},
	)

	TransportDeaths = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jackdaw_transport_deaths_total",
			Help: "Total number of transport processes that exited unexpectedly",
		},
		[]string{"room_id"},
	)

	TransportActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jackdaw_transport_active",
			Help: "Current number of running transport processes",
		},
	)

	// Audio Graph Adapter Metrics
	GraphQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jackdaw_graph_query_duration_seconds",
			Help:    "Duration of audio graph snapshot queries",
			Buckets: prometheus.DefBuckets,
		},
	)

	GraphMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jackdaw_graph_mutations_total",
			Help: "Total number of audio graph connect/disconnect operations",
		},
		[]string{"operation", "result"}, // operation: connect, disconnect
	)

	GraphCircuitState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jackdaw_graph_circuit_state",
			Help: "Audio graph command circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Room Registry Metrics
	RoomsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jackdaw_rooms_active",
			Help: "Current number of active rooms",
		},
	)

	RoomsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jackdaw_rooms_created_total",
			Help: "Total number of rooms created",
		},
	)

	RoomsDestroyedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jackdaw_rooms_destroyed_total",
			Help: "Total number of rooms destroyed",
		},
		[]string{"reason"}, // empty, transport_failure, single_room_replaced
	)

	RoomParticipants = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jackdaw_room_participants",
			Help: "Current number of participants in a room",
		},
		[]string{"room_id"},
	)

	JoinAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jackdaw_room_join_attempts_total",
			Help: "Total number of room join attempts",
		},
		[]string{"result"}, // success, bad_passphrase, full, not_found
	)

	// HTTP API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jackdaw_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jackdaw_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jackdaw_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jackdaw_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Graph WebSocket Hub Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jackdaw_ws_connections",
			Help: "Current number of active patchbay WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jackdaw_ws_messages_sent_total",
			Help: "Total number of WebSocket broadcast messages sent",
		},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jackdaw_ws_messages_dropped_total",
			Help: "Total number of WebSocket messages dropped due to a full client backlog",
		},
	)

	WSMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jackdaw_ws_messages_received_total",
			Help: "Total number of client-originated WebSocket messages",
		},
		[]string{"type"}, // connect, disconnect, refresh
	)
)

// RecordAuthAttempt records a register/login attempt outcome.
func RecordAuthAttempt(operation string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	AuthAttemptsTotal.WithLabelValues(operation, result).Inc()
}

// RecordTransportSpawn records a transport process spawn attempt.
func RecordTransportSpawn(duration time.Duration, err error) {
	if err != nil {
		TransportSpawnsTotal.WithLabelValues("failure").Inc()
		return
	}
	TransportSpawnsTotal.WithLabelValues("success").Inc()
	TransportSpawnDuration.Observe(duration.Seconds())
}

// RecordGraphMutation records a connect/disconnect request outcome.
func RecordGraphMutation(operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	GraphMutationsTotal.WithLabelValues(operation, result).Inc()
}

// RecordJoinAttempt records a room join attempt outcome.
func RecordJoinAttempt(result string) {
	JoinAttemptsTotal.WithLabelValues(result).Inc()
}

// RecordAPIRequest records a completed API request.
func RecordAPIRequest(method, route, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRoomDestroyed records a room being torn down.
func RecordRoomDestroyed(reason string) {
	RoomsDestroyedTotal.WithLabelValues(reason).Inc()
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
