// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

/*
Package metrics provides Prometheus instrumentation for the hub.

Metrics are exposed at the /health endpoint's sibling /metrics route in
Prometheus text format:

	curl -k https://localhost:4443/metrics

# Available Metrics

Credential store:
  - jackdaw_auth_attempts_total{operation,result}
  - jackdaw_auth_hash_duration_seconds
  - jackdaw_active_sessions

Port allocator:
  - jackdaw_ports_allocated
  - jackdaw_port_allocation_failures_total

Transport supervisor:
  - jackdaw_transport_spawns_total{result}
  - jackdaw_transport_spawn_duration_seconds
  - jackdaw_transport_deaths_total{room_id}
  - jackdaw_transport_active

Audio graph adapter:
  - jackdaw_graph_query_duration_seconds
  - jackdaw_graph_mutations_total{operation,result}
  - jackdaw_graph_circuit_state

Room registry:
  - jackdaw_rooms_active
  - jackdaw_rooms_created_total
  - jackdaw_rooms_destroyed_total{reason}
  - jackdaw_room_participants{room_id}
  - jackdaw_room_join_attempts_total{result}

HTTP API:
  - jackdaw_api_requests_total{method,route,status_code}
  - jackdaw_api_request_duration_seconds{method,route}
  - jackdaw_api_rate_limit_hits_total{route}

Graph WebSocket hub:
  - jackdaw_ws_connections
  - jackdaw_ws_messages_sent_total
  - jackdaw_ws_messages_dropped_total
  - jackdaw_ws_messages_received_total{type}

# Cardinality

room_id labels are bounded by the number of concurrently active rooms,
which single-room mode caps at one and multi-room mode caps only by port
range exhaustion (see internal/portalloc). route labels are the matched
chi route patterns, not raw request paths; a request that matches no
route is labelled with its raw path.
*/
package metrics
