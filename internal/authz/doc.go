// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

/*
Package authz answers one question for the HTTP and WebSocket layers:
may this subject perform this action on this resource.

It wraps a casbin.SyncedEnforcer configured with a small RBAC model of two
roles - owner and member - loaded from an embedded model.conf/policy.csv
pair, or from files on disk when CASBIN_MODEL_PATH/CASBIN_POLICY_PATH are
set.

Room membership, room creator checks, and per-user patchbay access are
NOT modeled here. The creator and membership checks are plain Go
comparisons in internal/rooms, and patchbay access is a flag on the
credential.User checked by the api package's patchbay middleware.
Casbin gates viewing, creating and joining rooms and the /users
administration routes (listing users, granting patchbay access);
leaving or deleting a room and the /jack routes make no Authorize call.
*/
package authz
