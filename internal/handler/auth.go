// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/weblab-go/internal/auth"
	"github.com/olegiv/weblab-go/internal/middleware"
	"github.com/olegiv/weblab-go/internal/render"
	"github.com/olegiv/weblab-go/internal/store"
)

// AuthHandler handles authentication routes.
type AuthHandler struct {
	queries         *store.Queries
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		queries:         store.New(db),
		renderer:        renderer,
		sessionManager:  sm,
		loginProtection: lp,
	}
}

// LoginFormData holds data for the login page template.
type LoginFormData struct {
	Login string
	Next  string
}

// LoginForm renders the login page. Already-authenticated users are sent
// to their destination directly.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	next := middleware.SafeNext(r.URL.Query().Get("next"))

	if userID := h.sessionManager.GetInt64(r.Context(), middleware.SessionKeyUserID); userID > 0 {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}

	if err := h.renderer.Render(w, r, "pages/login", render.TemplateData{
		Title: "Sign in",
		Data:  LoginFormData{Next: next},
	}); err != nil {
		logAndInternalError(w, "failed to render login page", "error", err)
	}
}

// Login handles the login form submission. A successful login resumes at
// the preserved next destination.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectLogin) {
		return
	}

	login := r.FormValue("login")
	password := r.FormValue("password")
	next := middleware.SafeNext(r.FormValue("next"))
	loginURL := loginURLWithNext(next)

	if login == "" || password == "" {
		flashError(w, r, h.renderer, loginURL, "Login and password are required")
		return
	}

	clientAddr := clientIP(r)
	if h.loginProtection != nil && !h.loginProtection.CheckIPRateLimit(clientAddr) {
		slog.Warn("login rate limit exceeded", "ip", clientAddr)
		flashError(w, r, h.renderer, loginURL, "Too many login requests, slow down")
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(login); locked {
			flashError(w, r, h.renderer, loginURL,
				fmt.Sprintf("Account is temporarily locked, try again in %s", formatDuration(remaining)))
			return
		}
	}

	user, err := h.queries.GetUserByLogin(r.Context(), login)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.Debug("login attempt for non-existent user", "login", login)
		} else {
			slog.Error("database error during login", "error", err)
		}
		// Record failed attempt even for non-existent users to prevent enumeration
		h.recordFailure(w, r, login, loginURL)
		return
	}

	valid, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("password check error", "error", err)
		flashError(w, r, h.renderer, loginURL, noticeInvalidCredentials)
		return
	}
	if !valid || !user.IsActive {
		slog.Debug("invalid login attempt", "login", login, "active", user.IsActive)
		h.recordFailure(w, r, login, loginURL)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.ClearFailedAttempts(login)
	}

	// Re-hash password if it uses outdated parameters
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(password); err == nil {
			if err := h.queries.UpdateUserPassword(r.Context(), user.ID, newHash); err != nil {
				slog.Error("failed to re-hash password", "error", err, "user_id", user.ID)
			}
		}
	}

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	slog.Info("user logged in", "user_id", user.ID, "login", user.Login)

	h.renderer.SetFlash(r, "Welcome, "+user.FullName(), "success")
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Logout handles user logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessionManager.GetInt64(r.Context(), middleware.SessionKeyUserID)

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	slog.Info("user logged out", "user_id", userID)
	flashAndRedirect(w, r, h.renderer, redirectLogin, "You have been signed out", "info")
}

// recordFailure records a failed login attempt and redirects with the
// appropriate notice.
func (h *AuthHandler) recordFailure(w http.ResponseWriter, r *http.Request, login, loginURL string) {
	if h.loginProtection != nil {
		if locked, lockDuration := h.loginProtection.RecordFailedAttempt(login); locked {
			flashError(w, r, h.renderer, loginURL,
				fmt.Sprintf("Too many failed attempts, account locked for %s", formatDuration(lockDuration)))
			return
		}
	}
	flashError(w, r, h.renderer, loginURL, noticeInvalidCredentials)
}

// loginURLWithNext builds the login URL preserving a safe next target.
func loginURLWithNext(next string) string {
	if next == "" || next == "/" {
		return redirectLogin
	}
	return redirectLogin + "?next=" + url.QueryEscape(next)
}

// clientIP strips the port from RemoteAddr. Behind chi's RealIP middleware
// this is the originating client address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
