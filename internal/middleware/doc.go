// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

/*
Package middleware provides HTTP middleware components shared across the
hub's API surface, independent of the route-specific auth and rate-limit
middleware in internal/api.

Key Components:

  - Request ID: UUID-based request tracking for distributed tracing
  - Prometheus Metrics: HTTP request/response instrumentation

Usage Example - Request ID:

	http.HandleFunc("/rooms", middleware.RequestID(handler))

	func handler(w http.ResponseWriter, r *http.Request) {
	    requestID := r.Context().Value(middleware.RequestIDKey).(string)
	    log.Printf("[%s] processing request", requestID)
	}

Usage Example - Metrics:

	http.HandleFunc("/rooms", middleware.PrometheusMetrics(handler))

Thread Safety:

Both middleware use context.Context (immutable per request) and the
Prometheus client's internal atomic operations; neither holds mutable
shared state beyond what those libraries already guard.

See Also:

  - internal/api: route handlers and the auth/rate-limit middleware stack
  - internal/metrics: Prometheus metric definitions
*/
package middleware
