// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"io/fs"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/weblab-go/internal/auth"
	"github.com/olegiv/weblab-go/internal/middleware"
	"github.com/olegiv/weblab-go/internal/model"
	"github.com/olegiv/weblab-go/internal/rbac"
	"github.com/olegiv/weblab-go/internal/render"
	"github.com/olegiv/weblab-go/internal/store"
	"github.com/olegiv/weblab-go/internal/testutil"
	"github.com/olegiv/weblab-go/web"
)

// testPassword is the plaintext behind every account created with
// createTestUser.
const testPassword = "Password123"

var (
	testPasswordHashOnce sync.Once
	testPasswordHash     string
)

// testHandlerSetup creates a migrated in-memory database with seeded roles
// and a session manager.
func testHandlerSetup(t *testing.T) (*sql.DB, *scs.SessionManager) {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	if err := store.SeedRoles(context.Background(), db); err != nil {
		t.Fatalf("failed to seed roles: %v", err)
	}

	sm := scs.New()
	sm.Lifetime = 24 * time.Hour
	return db, sm
}

// testRenderer builds a renderer over the embedded production templates.
func testRenderer(t *testing.T, sm *scs.SessionManager) *render.Renderer {
	t.Helper()

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("failed to get templates fs: %v", err)
	}
	r, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sm,
		IsDev:          true,
	})
	if err != nil {
		t.Fatalf("failed to create renderer: %v", err)
	}
	return r
}

// testUser describes an account to create in the test database.
type testUser struct {
	Login     string
	LastName  string
	FirstName string
	Role      string // "" leaves the account without a role
}

// createTestUser creates an account and returns it with the role joined,
// the way GetUserByID would load it.
func createTestUser(t *testing.T, db *sql.DB, u testUser) model.User {
	t.Helper()

	testPasswordHashOnce.Do(func() {
		hash, err := auth.HashPassword(testPassword)
		if err != nil {
			t.Fatalf("failed to hash test password: %v", err)
		}
		testPasswordHash = hash
	})

	ctx := context.Background()
	queries := store.New(db)

	var roleID sql.NullInt64
	if u.Role != "" {
		role, err := queries.GetRoleByName(ctx, u.Role)
		if err != nil {
			t.Fatalf("failed to look up role %q: %v", u.Role, err)
		}
		roleID = sql.NullInt64{Int64: role.ID, Valid: true}
	}

	if u.FirstName == "" {
		u.FirstName = "Test"
	}

	created, err := queries.CreateUser(ctx, store.CreateUserParams{
		Login:        u.Login,
		PasswordHash: testPasswordHash,
		LastName:     u.LastName,
		FirstName:    u.FirstName,
		RoleID:       roleID,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	user, err := queries.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("failed to reload test user: %v", err)
	}
	return user
}

// createAdmin creates an Admin account.
func createAdmin(t *testing.T, db *sql.DB, login string) model.User {
	t.Helper()
	return createTestUser(t, db, testUser{Login: login, FirstName: "Admin", Role: rbac.RoleAdmin})
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// requestWithSession wraps a request with session context.
func requestWithSession(sm *scs.SessionManager, r *http.Request) *http.Request {
	ctx, err := sm.Load(r.Context(), "")
	if err != nil {
		return r
	}
	return r.WithContext(ctx)
}

// requestWithUser puts an authenticated user into the request context.
func requestWithUser(r *http.Request, user model.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.ContextKeyUser, user))
}

// assertStatus checks if the response status code matches the expected value.
func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d; want %d", got, want)
	}
}

// assertRedirect checks for a 303 redirect to the given location.
func assertRedirect(t *testing.T, w interface {
	Header() http.Header
}, code int, location string) {
	t.Helper()
	if code != http.StatusSeeOther {
		t.Errorf("status = %d; want %d", code, http.StatusSeeOther)
	}
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("Location = %q; want %q", got, location)
	}
}
