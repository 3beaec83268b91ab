// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

// Package docs registers the hub's OpenAPI document with swaggo so
// http-swagger can serve it at /swagger/*.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Jackdaw Hub API",
        "description": "Collaboration hub for JackTrip-based low-latency audio sharing.",
        "version": "1.0"
    },
    "basePath": "/",
    "paths": {
        "/auth/register": {
            "post": {
                "summary": "Register a new account",
                "tags": ["auth"],
                "responses": { "201": { "description": "created" } }
            }
        },
        "/auth/login": {
            "post": {
                "summary": "Log in and obtain a bearer token",
                "tags": ["auth"],
                "responses": { "200": { "description": "ok" } }
            }
        },
        "/rooms": {
            "get": {
                "summary": "List active rooms",
                "tags": ["rooms"],
                "security": [{"Bearer": []}],
                "responses": { "200": { "description": "ok" } }
            },
            "post": {
                "summary": "Create a room",
                "tags": ["rooms"],
                "security": [{"Bearer": []}],
                "responses": { "201": { "description": "created" } }
            }
        },
        "/rooms/{id}": {
            "get": {
                "summary": "Get a room",
                "tags": ["rooms"],
                "security": [{"Bearer": []}],
                "responses": { "200": { "description": "ok" } }
            },
            "delete": {
                "summary": "Delete a room (creator only)",
                "tags": ["rooms"],
                "security": [{"Bearer": []}],
                "responses": { "200": { "description": "ok" } }
            }
        },
        "/rooms/{id}/join": {
            "post": {
                "summary": "Join a room",
                "tags": ["rooms"],
                "security": [{"Bearer": []}],
                "responses": { "200": { "description": "ok" } }
            }
        },
        "/rooms/{id}/leave": {
            "post": {
                "summary": "Leave a room",
                "tags": ["rooms"],
                "security": [{"Bearer": []}],
                "responses": { "200": { "description": "ok" } }
            }
        },
        "/jack/graph": {
            "get": {
                "summary": "Snapshot the current JACK port graph",
                "tags": ["graph"],
                "security": [{"Bearer": []}],
                "responses": { "200": { "description": "ok" } }
            }
        },
        "/jack/connect": {
            "post": {
                "summary": "Connect two JACK ports (requires patchbay access)",
                "tags": ["graph"],
                "security": [{"Bearer": []}],
                "responses": { "200": { "description": "ok" } }
            }
        },
        "/jack/disconnect": {
            "post": {
                "summary": "Disconnect two JACK ports (requires patchbay access)",
                "tags": ["graph"],
                "security": [{"Bearer": []}],
                "responses": { "200": { "description": "ok" } }
            }
        },
        "/users": {
            "get": {
                "summary": "List registered users (owner only)",
                "tags": ["users"],
                "security": [{"Bearer": []}],
                "responses": { "200": { "description": "ok" } }
            }
        },
        "/users/{id}/permissions": {
            "post": {
                "summary": "Grant or revoke patchbay access (owner only)",
                "tags": ["users"],
                "security": [{"Bearer": []}],
                "responses": { "200": { "description": "ok" } }
            }
        },
        "/health": {
            "get": {
                "summary": "Liveness check",
                "tags": ["ops"],
                "responses": { "200": { "description": "ok" } }
            }
        }
    },
    "securityDefinitions": {
        "Bearer": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so that other packages can
// modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"https"},
	Title:            "Jackdaw Hub API",
	Description:      "Collaboration hub for JackTrip-based low-latency audio sharing.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
