// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain records: users, roles and visit logs.
package model

import (
	"database/sql"
	"strings"
	"time"

	"github.com/olegiv/weblab-go/internal/rbac"
)

// Role is a named user category. The Admin and User roles are seeded at
// bootstrap and treated as immutable reference data afterwards.
type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// User represents an account in the user directory.
type User struct {
	ID           int64         `json:"id"`
	Login        string        `json:"login"`
	PasswordHash string        `json:"-"` // Never expose in JSON
	LastName     string        `json:"last_name"`
	FirstName    string        `json:"first_name"`
	MiddleName   string        `json:"middle_name"`
	RoleID       sql.NullInt64 `json:"role_id"`
	RoleName     string        `json:"role_name"` // Joined from roles; empty when no role assigned
	IsActive     bool          `json:"is_active"`
	CreatedAt    time.Time     `json:"created_at"`
}

// FullName joins last, first and middle names, skipping empty parts.
func (u User) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{u.LastName, u.FirstName, u.MiddleName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// IsAdmin returns true if the user holds the Admin role.
func (u User) IsAdmin() bool {
	return u.RoleName == rbac.RoleAdmin
}

// HasRight reports whether the user's role grants the capability.
func (u User) HasRight(capability string) bool {
	return rbac.HasRight(u.RoleName, capability)
}

// VisitLog is one recorded page visit. Rows are append-only; the
// application never mutates or deletes them outside retention cleanup.
type VisitLog struct {
	ID        int64         `json:"id"`
	Path      string        `json:"path"`
	UserID    sql.NullInt64 `json:"user_id"` // NULL for anonymous visitors
	Browser   string        `json:"browser"`
	OS        string        `json:"os"`
	Country   string        `json:"country"`
	CreatedAt time.Time     `json:"created_at"`
}
