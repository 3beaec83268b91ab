// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/applebiter/jackdaw/docs"
	appmiddleware "github.com/applebiter/jackdaw/internal/middleware"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(adapt(appmiddleware.RequestID))
	r.Use(adapt(appmiddleware.PrometheusMetrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(s.cfg.Security.RateLimitReqs, s.cfg.Security.RateLimitWindow))

	r.Get("/health", s.handleHealth)
	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(adapt(s.bearerAuth))

		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", s.requireRole("rooms", "view", s.handleListRooms))
			r.Post("/", s.requireRole("rooms", "create", s.handleCreateRoom))
			r.Get("/{id}", s.requireRole("rooms", "view", s.handleGetRoom))
			r.Post("/{id}/join", s.requireRole("rooms", "join", s.handleJoinRoom))
			r.Post("/{id}/leave", s.handleLeaveRoom)
			r.Delete("/{id}", s.handleDeleteRoom)
		})

		r.Route("/jack", func(r chi.Router) {
			r.Get("/graph", s.handleGraphSnapshot)
			r.Post("/connect", s.requirePatchbayAccess(s.handleGraphConnect))
			r.Post("/disconnect", s.requirePatchbayAccess(s.handleGraphDisconnect))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.requireRole("users", "grant", s.handleListUsers))
			r.Post("/{id}/permissions", s.requireRole("users", "grant", s.handleSetPermissions))
		})

		r.Get("/ws/patchbay", s.handlePatchbayWS)
	})

	if s.cfg.Hub.SwaggerEnabled {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	}

	r.Handle("/metrics", promhttp.Handler())

	return r
}
