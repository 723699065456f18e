// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/weblab-go/internal/auth"
	"github.com/olegiv/weblab-go/internal/rbac"
)

// Demo account credentials created by SeedDemoUsers.
const (
	DemoAdminLogin    = "admin"
	DemoAdminPassword = "AdminPassword123!"
	DemoUserLogin     = "user"
	DemoUserPassword  = "UserPassword123!"
)

// SeedRoles creates the Admin and User roles if they do not exist yet.
// Roles are reference data; nothing ever updates or deletes them.
func SeedRoles(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	seed := []struct {
		name, description string
	}{
		{rbac.RoleAdmin, "Administrator"},
		{rbac.RoleUser, "Regular User"},
	}

	for _, s := range seed {
		_, err := queries.GetRoleByName(ctx, s.name)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking role %q: %w", s.name, err)
		}
		if _, err := queries.CreateRole(ctx, s.name, s.description); err != nil {
			return fmt.Errorf("creating role %q: %w", s.name, err)
		}
		slog.Info("created seed role", "name", s.name)
	}

	return nil
}

// SeedDemoUsers creates the demo admin and user accounts if absent.
// Opt-in via configuration; intended for lab environments only.
func SeedDemoUsers(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	accounts := []struct {
		login, password, roleName, lastName, firstName string
	}{
		{DemoAdminLogin, DemoAdminPassword, rbac.RoleAdmin, "User", "Admin"},
		{DemoUserLogin, DemoUserPassword, rbac.RoleUser, "User", "Regular"},
	}

	for _, a := range accounts {
		_, err := queries.GetUserByLogin(ctx, a.login)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking user %q: %w", a.login, err)
		}

		role, err := queries.GetRoleByName(ctx, a.roleName)
		if err != nil {
			return fmt.Errorf("looking up role %q: %w", a.roleName, err)
		}

		passwordHash, err := auth.HashPassword(a.password)
		if err != nil {
			return fmt.Errorf("hashing password for %q: %w", a.login, err)
		}

		user, err := queries.CreateUser(ctx, CreateUserParams{
			Login:        a.login,
			PasswordHash: passwordHash,
			LastName:     a.lastName,
			FirstName:    a.firstName,
			RoleID:       sql.NullInt64{Int64: role.ID, Valid: true},
			CreatedAt:    time.Now(),
		})
		if err != nil {
			return fmt.Errorf("creating user %q: %w", a.login, err)
		}

		slog.Info("created demo user", "id", user.ID, "login", user.Login, "role", a.roleName)
	}

	return nil
}
