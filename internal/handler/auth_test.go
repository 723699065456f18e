// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/olegiv/weblab-go/internal/middleware"
	"github.com/olegiv/weblab-go/internal/rbac"
)

func postLoginRequest(t *testing.T, h *AuthHandler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, RouteLogin, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = requestWithSession(h.sessionManager, req)
	w := httptest.NewRecorder()

	h.Login(w, req)
	return w
}

func TestAuthHandler_Login_Success(t *testing.T) {
	db, sm := testHandlerSetup(t)
	renderer := testRenderer(t, sm)
	user := createTestUser(t, db, testUser{Login: "ivanov", LastName: "Ivanov", Role: rbac.RoleUser})

	h := NewAuthHandler(db, renderer, sm, nil)

	form := url.Values{}
	form.Set("login", "ivanov")
	form.Set("password", testPassword)
	form.Set("next", "/logs")

	req := httptest.NewRequest(http.MethodPost, RouteLogin, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = requestWithSession(sm, req)
	w := httptest.NewRecorder()

	h.Login(w, req)

	assertRedirect(t, w, w.Code, "/logs")

	if got := sm.GetInt64(req.Context(), middleware.SessionKeyUserID); got != user.ID {
		t.Errorf("session user_id = %d; want %d", got, user.ID)
	}
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	db, sm := testHandlerSetup(t)
	renderer := testRenderer(t, sm)
	createTestUser(t, db, testUser{Login: "ivanov", Role: rbac.RoleUser})

	h := NewAuthHandler(db, renderer, sm, nil)

	form := url.Values{}
	form.Set("login", "ivanov")
	form.Set("password", "WrongPassword1")

	w := postLoginRequest(t, h, form)

	assertRedirect(t, w, w.Code, RouteLogin)
}

func TestAuthHandler_Login_UnknownUser(t *testing.T) {
	db, sm := testHandlerSetup(t)
	renderer := testRenderer(t, sm)

	h := NewAuthHandler(db, renderer, sm, nil)

	form := url.Values{}
	form.Set("login", "nobody")
	form.Set("password", "Password123")

	w := postLoginRequest(t, h, form)

	// Same redirect as a wrong password, no account enumeration
	assertRedirect(t, w, w.Code, RouteLogin)
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	db, sm := testHandlerSetup(t)
	renderer := testRenderer(t, sm)

	h := NewAuthHandler(db, renderer, sm, nil)

	w := postLoginRequest(t, h, url.Values{})

	assertRedirect(t, w, w.Code, RouteLogin)
}

func TestAuthHandler_Login_PreservesNextOnFailure(t *testing.T) {
	db, sm := testHandlerSetup(t)
	renderer := testRenderer(t, sm)

	h := NewAuthHandler(db, renderer, sm, nil)

	form := url.Values{}
	form.Set("login", "nobody")
	form.Set("password", "Password123")
	form.Set("next", "/users/3/edit")

	w := postLoginRequest(t, h, form)

	assertRedirect(t, w, w.Code, "/login?next=%2Fusers%2F3%2Fedit")
}

func TestAuthHandler_Login_Lockout(t *testing.T) {
	db, sm := testHandlerSetup(t)
	renderer := testRenderer(t, sm)
	createTestUser(t, db, testUser{Login: "ivanov", Role: rbac.RoleUser})

	lp := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		IPRateLimit:       1000,
		IPBurst:           1000,
		MaxFailedAttempts: 2,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})
	h := NewAuthHandler(db, renderer, sm, lp)

	form := url.Values{}
	form.Set("login", "ivanov")
	form.Set("password", "WrongPassword1")

	for i := 0; i < 2; i++ {
		postLoginRequest(t, h, form)
	}

	if locked, _ := lp.IsAccountLocked("ivanov"); !locked {
		t.Fatal("account should be locked after max failed attempts")
	}

	// Even the correct password is rejected while locked
	form.Set("password", testPassword)
	w := postLoginRequest(t, h, form)
	assertRedirect(t, w, w.Code, RouteLogin)
}

func TestAuthHandler_LoginForm_AuthenticatedRedirect(t *testing.T) {
	db, sm := testHandlerSetup(t)
	renderer := testRenderer(t, sm)

	h := NewAuthHandler(db, renderer, sm, nil)

	req := httptest.NewRequest(http.MethodGet, "/login?next=/logs", nil)
	req = requestWithSession(sm, req)
	sm.Put(req.Context(), middleware.SessionKeyUserID, int64(1))
	w := httptest.NewRecorder()

	h.LoginForm(w, req)

	assertRedirect(t, w, w.Code, "/logs")
}

func TestAuthHandler_LoginForm_Renders(t *testing.T) {
	db, sm := testHandlerSetup(t)
	renderer := testRenderer(t, sm)

	h := NewAuthHandler(db, renderer, sm, nil)

	req := httptest.NewRequest(http.MethodGet, "/login?next=/users/5", nil)
	req = requestWithSession(sm, req)
	w := httptest.NewRecorder()

	h.LoginForm(w, req)

	assertStatus(t, w.Code, http.StatusOK)
	if !strings.Contains(w.Body.String(), `name="next" value="/users/5"`) {
		t.Error("login form should carry the next destination")
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	db, sm := testHandlerSetup(t)
	renderer := testRenderer(t, sm)

	h := NewAuthHandler(db, renderer, sm, nil)

	req := httptest.NewRequest(http.MethodGet, RouteLogout, nil)
	req = requestWithSession(sm, req)
	sm.Put(req.Context(), middleware.SessionKeyUserID, int64(1))
	w := httptest.NewRecorder()

	h.Logout(w, req)

	assertRedirect(t, w, w.Code, RouteLogin)
	if got := sm.GetInt64(req.Context(), middleware.SessionKeyUserID); got != 0 {
		t.Errorf("session user_id = %d after logout; want 0", got)
	}
}

func TestLoginURLWithNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"", "/login"},
		{"/", "/login"},
		{"/logs", "/login?next=%2Flogs"},
		{"/users/3/edit", "/login?next=%2Fusers%2F3%2Fedit"},
	}

	for _, tt := range tests {
		if got := loginURLWithNext(tt.next); got != tt.want {
			t.Errorf("loginURLWithNext(%q) = %q; want %q", tt.next, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30 seconds"},
		{time.Minute, "1 minute"},
		{15 * time.Minute, "15 minutes"},
		{time.Hour, "1 hour"},
		{3 * time.Hour, "3 hours"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q; want %q", tt.d, got, tt.want)
		}
	}
}
