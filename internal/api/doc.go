// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

/*
Package api serves the hub's HTTP surface and the /ws/patchbay upgrade
route over a single TLS listener.

Every route except /auth/register, /auth/login, /health, /metrics and
/swagger/* requires a Bearer token resolved through internal/credential.
Casbin-backed role checks (internal/authz) gate listing, viewing,
creating and joining rooms and the /users routes. Room creator and
membership checks (leave, delete) and per-user patchbay access
(/jack/connect, /jack/disconnect) are plain Go comparisons on routes that
carry no role check, since they are data-dependent rather than
role-dependent.

Responses are bare JSON objects - {"error": "..."} on failure, the
resource itself on success - not a nested envelope.
*/
package api
