// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/applebiter/jackdaw/internal/authz"
	"github.com/applebiter/jackdaw/internal/credential"
)

type contextKey string

const userContextKey contextKey = "api_user"

// adapt wraps an http.HandlerFunc middleware signature so it can be
// registered with chi's Use(), which expects
// func(http.Handler) http.Handler.
func adapt(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// bearerAuth resolves the Authorization header's bearer token to a
// credential.User and stores it on the request context. Missing or
// invalid tokens are rejected with 401 before the wrapped handler runs.
func (s *Server) bearerAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		user, err := s.credentials.Resolve(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

func userFromContext(ctx context.Context) *credential.User {
	user, _ := ctx.Value(userContextKey).(*credential.User)
	return user
}

// requireRole authorizes the request's resolved user against the
// permission kernel for the given resource/action pair, writing 403 on
// denial. Must run after bearerAuth.
func (s *Server) requireRole(resource, action string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFromContext(r.Context())
		if user == nil {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		role := authz.RoleFor(user.IsOwner)
		if err := s.authz.Authorize(r.Context(), role, resource, action); err != nil {
			writeError(w, http.StatusForbidden, "permission denied")
			return
		}
		next(w, r)
	}
}

// requirePatchbayAccess rejects graph mutation requests from a user
// without HasPatchbayAccess. This is a per-user data flag, not a casbin
// role, so it is checked here rather than through the permission
// kernel.
func (s *Server) requirePatchbayAccess(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFromContext(r.Context())
		if user == nil {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if !user.HasPatchbayAccess {
			writeError(w, http.StatusForbidden, "patchbay access required")
			return
		}
		next(w, r)
	}
}
