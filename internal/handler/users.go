// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/weblab-go/internal/auth"
	"github.com/olegiv/weblab-go/internal/middleware"
	"github.com/olegiv/weblab-go/internal/model"
	"github.com/olegiv/weblab-go/internal/render"
	"github.com/olegiv/weblab-go/internal/store"
	"github.com/olegiv/weblab-go/internal/validate"
)

// UsersHandler handles the user directory and account management routes.
type UsersHandler struct {
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager) *UsersHandler {
	return &UsersHandler{
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
	}
}

// UsersListData holds data for the user directory template.
type UsersListData struct {
	Users         []model.User
	CurrentUserID int64
	TotalUsers    int64
}

// Index handles GET / - the user directory listing.
func (h *UsersHandler) Index(w http.ResponseWriter, r *http.Request) {
	users, err := h.queries.ListUsers(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list users", "error", err)
		return
	}

	data := UsersListData{
		Users:         users,
		CurrentUserID: middleware.GetUserID(r),
		TotalUsers:    int64(len(users)),
	}

	if err := h.renderer.Render(w, r, "pages/users_list", render.TemplateData{
		Title: "Users",
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "failed to render user directory", "error", err)
	}
}

// View handles GET /users/{id} - a single account page (self-or-admin).
func (h *UsersHandler) View(w http.ResponseWriter, r *http.Request) {
	target, ok := h.requireTarget(w, r)
	if !ok {
		return
	}
	if !h.requireSelfOrAdmin(w, r, target.ID) {
		return
	}

	if err := h.renderer.Render(w, r, "pages/user_view", render.TemplateData{
		Title: target.FullName(),
		Data:  target,
	}); err != nil {
		logAndInternalError(w, "failed to render user page", "error", err)
	}
}

// UserFormData holds data for the user create/edit form template.
type UserFormData struct {
	User       *model.User
	Roles      []model.Role
	FormValues map[string]string
	IsEdit     bool
	CanSetRole bool
}

// NewForm handles GET /users/new - displays the new account form.
// Reaching it requires the create_user capability (Admin only).
func (h *UsersHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderUserForm(w, r, UserFormData{
		FormValues: map[string]string{},
		CanSetRole: true,
	}, "New user")
}

// Create handles POST /users/new - creates a new account.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectUsersNew) {
		return
	}

	login := strings.TrimSpace(r.FormValue("login"))
	password := r.FormValue("password")
	lastName := strings.TrimSpace(r.FormValue("last_name"))
	firstName := strings.TrimSpace(r.FormValue("first_name"))
	middleName := strings.TrimSpace(r.FormValue("middle_name"))
	roleIDStr := r.FormValue("role_id")

	formValues := map[string]string{
		"login":       login,
		"last_name":   lastName,
		"first_name":  firstName,
		"middle_name": middleName,
		"role_id":     roleIDStr,
	}
	reRender := func(message string) {
		h.renderer.SetFlash(r, message, "error")
		h.renderUserForm(w, r, UserFormData{FormValues: formValues, CanSetRole: true}, "New user")
	}

	if err := validate.CheckLogin(login); err != nil {
		reRender(loginErrorMessage(err))
		return
	}
	if err := validate.CheckPassword(password); err != nil {
		reRender(passwordErrorMessage(err))
		return
	}
	if firstName == "" {
		reRender("First name is required")
		return
	}

	roleID, err := h.parseRoleID(r, roleIDStr)
	if err != nil {
		reRender("Unknown role")
		return
	}

	if _, err := h.queries.GetUserByLogin(r.Context(), login); err == nil {
		reRender("A user with this login already exists")
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		logAndInternalError(w, "failed to check login uniqueness", "error", err)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		logAndInternalError(w, "failed to hash password", "error", err)
		return
	}

	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Login:        login,
		PasswordHash: hash,
		LastName:     lastName,
		FirstName:    firstName,
		MiddleName:   middleName,
		RoleID:       roleID,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		slog.Error("failed to create user", "error", err, "login", login)
		reRender("Error creating user")
		return
	}

	slog.Info("user created", "user_id", user.ID, "login", user.Login, "by", middleware.GetUserID(r))
	flashSuccess(w, r, h.renderer, fmt.Sprintf(redirectUsersID, user.ID), "User created")
}

// EditForm handles GET /users/{id}/edit (self-or-admin).
func (h *UsersHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	target, ok := h.requireTarget(w, r)
	if !ok {
		return
	}
	if !h.requireSelfOrAdmin(w, r, target.ID) {
		return
	}

	caller := middleware.GetUser(r)
	h.renderUserForm(w, r, UserFormData{
		User: &target,
		FormValues: map[string]string{
			"last_name":   target.LastName,
			"first_name":  target.FirstName,
			"middle_name": target.MiddleName,
			"role_id":     nullInt64String(target.RoleID),
		},
		IsEdit:     true,
		CanSetRole: caller != nil && caller.IsAdmin(),
	}, "Edit "+target.FullName())
}

// Edit handles POST /users/{id}/edit. A non-Admin submitting a role change
// gets a notice and keeps the current role, but the other submitted fields
// still apply.
func (h *UsersHandler) Edit(w http.ResponseWriter, r *http.Request) {
	target, ok := h.requireTarget(w, r)
	if !ok {
		return
	}
	if !h.requireSelfOrAdmin(w, r, target.ID) {
		return
	}

	editURL := fmt.Sprintf(redirectUsersIDEdit, target.ID)
	if !parseFormOrRedirect(w, r, h.renderer, editURL) {
		return
	}

	lastName := strings.TrimSpace(r.FormValue("last_name"))
	firstName := strings.TrimSpace(r.FormValue("first_name"))
	middleName := strings.TrimSpace(r.FormValue("middle_name"))
	roleIDStr := r.FormValue("role_id")

	if firstName == "" {
		flashError(w, r, h.renderer, editURL, "First name is required")
		return
	}

	caller := middleware.GetUser(r)
	roleID := target.RoleID
	roleTampered := false

	if roleIDStr != "" {
		submitted, err := h.parseRoleID(r, roleIDStr)
		if err != nil {
			flashError(w, r, h.renderer, editURL, "Unknown role")
			return
		}
		switch {
		case caller != nil && caller.IsAdmin():
			roleID = submitted
		case submitted != target.RoleID:
			// Role stays as-is; the rest of the form is still applied.
			roleTampered = true
		}
	}

	if err := h.queries.UpdateUser(r.Context(), store.UpdateUserParams{
		ID:         target.ID,
		LastName:   lastName,
		FirstName:  firstName,
		MiddleName: middleName,
		RoleID:     roleID,
	}); err != nil {
		slog.Error("failed to update user", "error", err, "user_id", target.ID)
		flashError(w, r, h.renderer, editURL, "Error updating user")
		return
	}

	slog.Info("user updated", "user_id", target.ID, "by", middleware.GetUserID(r))

	viewURL := fmt.Sprintf(redirectUsersID, target.ID)
	if roleTampered {
		slog.Warn("role change rejected", "user_id", target.ID, "by", middleware.GetUserID(r))
		flashError(w, r, h.renderer, viewURL, noticeCannotChangeRole)
		return
	}
	flashSuccess(w, r, h.renderer, viewURL, "User updated")
}

// Delete handles POST /users/{id}/delete. Reaching it requires the
// delete_user capability (Admin only).
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	target, ok := h.requireTarget(w, r)
	if !ok {
		return
	}

	if target.ID == middleware.GetUserID(r) {
		flashError(w, r, h.renderer, redirectRoot, "You cannot delete your own account")
		return
	}

	if err := h.queries.DeleteUser(r.Context(), target.ID); err != nil {
		slog.Error("failed to delete user", "error", err, "user_id", target.ID)
		flashError(w, r, h.renderer, redirectRoot, "Error deleting user")
		return
	}

	slog.Info("user deleted", "user_id", target.ID, "by", middleware.GetUserID(r))
	flashSuccess(w, r, h.renderer, redirectRoot, "User deleted")
}

// ChangePasswordForm handles GET /change-password.
func (h *UsersHandler) ChangePasswordForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "pages/change_password", render.TemplateData{
		Title: "Change password",
	}); err != nil {
		logAndInternalError(w, "failed to render change-password page", "error", err)
	}
}

// ChangePassword handles POST /change-password. The old password must
// verify and the new one is entered twice and validated.
func (h *UsersHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUser(r)
	if caller == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, redirectChangePassword) {
		return
	}

	oldPassword := r.FormValue("old_password")
	newPassword := r.FormValue("new_password")
	confirm := r.FormValue("new_password_confirm")

	valid, err := auth.CheckPassword(oldPassword, caller.PasswordHash)
	if err != nil || !valid {
		flashError(w, r, h.renderer, redirectChangePassword, "Current password is incorrect")
		return
	}
	if newPassword != confirm {
		flashError(w, r, h.renderer, redirectChangePassword, "New passwords do not match")
		return
	}
	if err := validate.CheckPassword(newPassword); err != nil {
		flashError(w, r, h.renderer, redirectChangePassword, passwordErrorMessage(err))
		return
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		logAndInternalError(w, "failed to hash password", "error", err)
		return
	}
	if err := h.queries.UpdateUserPassword(r.Context(), caller.ID, hash); err != nil {
		slog.Error("failed to update password", "error", err, "user_id", caller.ID)
		flashError(w, r, h.renderer, redirectChangePassword, "Error updating password")
		return
	}

	slog.Info("password changed", "user_id", caller.ID)
	flashSuccess(w, r, h.renderer, fmt.Sprintf(redirectUsersID, caller.ID), "Password updated")
}

// requireTarget loads the user addressed by the {id} route parameter.
func (h *UsersHandler) requireTarget(w http.ResponseWriter, r *http.Request) (model.User, bool) {
	id, ok := parseIDParam(r)
	if !ok {
		flashError(w, r, h.renderer, redirectRoot, noticeUserNotFound)
		return model.User{}, false
	}

	target, err := h.queries.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			flashError(w, r, h.renderer, redirectRoot, noticeUserNotFound)
		} else {
			slog.Error("failed to get user", "error", err, "user_id", id)
			flashError(w, r, h.renderer, redirectRoot, "Error loading user")
		}
		return model.User{}, false
	}
	return target, true
}

// requireSelfOrAdmin enforces the self-or-admin rule for account pages.
// The decision is recomputed per request from the caller's current role.
func (h *UsersHandler) requireSelfOrAdmin(w http.ResponseWriter, r *http.Request, targetID int64) bool {
	caller := middleware.GetUser(r)
	if caller == nil {
		http.Redirect(w, r, middleware.LoginURL(r), http.StatusSeeOther)
		return false
	}
	if !caller.IsAdmin() && caller.ID != targetID {
		slog.Warn("access denied", "path", r.URL.Path, "user_id", caller.ID, "target_id", targetID)
		flashError(w, r, h.renderer, redirectRoot, noticeInsufficientRights)
		return false
	}
	return true
}

// parseRoleID resolves a submitted role_id form value against the roles
// table. An empty value means no role.
func (h *UsersHandler) parseRoleID(r *http.Request, roleIDStr string) (sql.NullInt64, error) {
	if roleIDStr == "" {
		return sql.NullInt64{}, nil
	}
	id, err := strconv.ParseInt(roleIDStr, 10, 64)
	if err != nil {
		return sql.NullInt64{}, err
	}
	roles, err := h.queries.ListRoles(r.Context())
	if err != nil {
		return sql.NullInt64{}, err
	}
	for _, role := range roles {
		if role.ID == id {
			return sql.NullInt64{Int64: id, Valid: true}, nil
		}
	}
	return sql.NullInt64{}, errors.New("unknown role")
}

// renderUserForm renders the shared create/edit form.
func (h *UsersHandler) renderUserForm(w http.ResponseWriter, r *http.Request, data UserFormData, title string) {
	roles, err := h.queries.ListRoles(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list roles", "error", err)
		return
	}
	data.Roles = roles

	if err := h.renderer.Render(w, r, "pages/user_form", render.TemplateData{
		Title: title,
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "failed to render user form", "error", err)
	}
}

// nullInt64String formats a nullable ID for form values.
func nullInt64String(v sql.NullInt64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(v.Int64, 10)
}
