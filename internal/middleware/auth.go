// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, visit logging and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/weblab-go/internal/model"
	"github.com/olegiv/weblab-go/internal/rbac"
	"github.com/olegiv/weblab-go/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyUser is the context key holding the authenticated user.
const ContextKeyUser ContextKey = "user"

// Session keys.
const (
	SessionKeyUserID    = "user_id"
	SessionKeyFlash     = "flash"
	SessionKeyFlashType = "flash_type"
)

// InsufficientRightsNotice is the user-visible message shown when a
// permission check denies access.
const InsufficientRightsNotice = "You do not have enough rights to access this page"

// LoginURL builds the login entry point URL preserving the originally
// requested destination, so a successful login resumes there.
func LoginURL(r *http.Request) string {
	next := r.URL.RequestURI()
	if next == "" || next == "/" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}

// SafeNext validates a post-login redirect target taken from the request.
// Only same-site relative paths are allowed; anything else falls back to
// the root.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}

// RequireAuth creates middleware that requires an authenticated session.
// Unauthenticated callers are redirected to the login page with the
// requested destination preserved.
func RequireAuth(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				http.Redirect(w, r, LoginURL(r), http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoadUser creates middleware that loads the current user into the request
// context. A stale session pointing at a deleted user is destroyed.
func LoadUser(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil {
				_ = sm.Destroy(r.Context())
				http.Redirect(w, r, LoginURL(r), http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRight creates middleware that requires the authenticated user's
// role to grant a capability. Unauthenticated callers go to the login
// page; authenticated callers without the capability get a flash notice
// and a redirect to the landing page. The decision is recomputed on every
// request from the caller's current role.
func RequireRight(sm *scs.SessionManager, capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				http.Redirect(w, r, LoginURL(r), http.StatusSeeOther)
				return
			}

			if !rbac.HasRight(user.RoleName, capability) {
				slog.Warn("access denied",
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", user.ID,
					"user_role", user.RoleName,
					"capability", capability,
				)
				sm.Put(r.Context(), SessionKeyFlash, InsufficientRightsNotice)
				sm.Put(r.Context(), SessionKeyFlashType, "error")
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUser retrieves the current user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(model.User)
	if !ok {
		return nil
	}
	return &user
}

// GetUserID returns the current user's ID from context, or 0 if not found.
func GetUserID(r *http.Request) int64 {
	if user := GetUser(r); user != nil {
		return user.ID
	}
	return 0
}
