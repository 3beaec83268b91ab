// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

// Package authz is the hub's permission kernel. It answers a single
// question - may this subject perform this action on this resource - via
// a Casbin RBAC model with two roles, owner and member. Room-membership
// and room-creator checks are not modeled here; they are plain Go
// comparisons in internal/rooms, evaluated after Authorize passes.
package authz

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Role is a casbin subject. Owner inherits every member permission.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// ErrDenied is returned by Authorize when the subject lacks the permission.
var ErrDenied = errors.New("authz: permission denied")

// Kernel wraps a Casbin synced enforcer loaded from either the embedded
// model/policy or files on disk, when configured with paths.
type Kernel struct {
	enforcer *casbin.SyncedEnforcer
}

// New loads the permission kernel. modelPath/policyPath override the
// embedded defaults when non-empty and the files exist.
func New(modelPath, policyPath string) (*Kernel, error) {
	m, err := loadModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	policy := embeddedPolicy
	if policyPath != "" && fileExists(policyPath) {
		data, err := os.ReadFile(policyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read policy file: %w", err)
		}
		policy = string(data)
	}

	if err := loadPolicy(enforcer, policy); err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	return &Kernel{enforcer: enforcer}, nil
}

func loadModel(modelPath string) (model.Model, error) {
	if modelPath != "" && fileExists(modelPath) {
		return model.NewModelFromFile(modelPath)
	}
	return model.NewModelFromString(embeddedModel)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) < 2 {
			continue
		}

		switch parts[0] {
		case "p":
			if len(parts) < 4 {
				continue
			}
			if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
			}
		case "g":
			if len(parts) < 3 {
				continue
			}
			if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", parts[1:], err)
			}
		}
	}
	return nil
}

// Authorize returns nil when role may perform action on resource, and
// ErrDenied otherwise.
func (k *Kernel) Authorize(ctx context.Context, role Role, resource, action string) error {
	allowed, err := k.enforcer.Enforce(string(role), resource, action)
	if err != nil {
		return fmt.Errorf("authz: enforcement failed: %w", err)
	}
	if !allowed {
		return ErrDenied
	}
	return nil
}

// RoleFor derives the casbin subject for a user based on ownership.
func RoleFor(isOwner bool) Role {
	if isOwner {
		return RoleOwner
	}
	return RoleMember
}
