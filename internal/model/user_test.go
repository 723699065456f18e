// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"testing"

	"github.com/olegiv/weblab-go/internal/rbac"
)

func TestUserFullName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{
			name: "all parts",
			user: User{LastName: "Ivanov", FirstName: "Ivan", MiddleName: "Ivanovich"},
			want: "Ivanov Ivan Ivanovich",
		},
		{
			name: "no middle name",
			user: User{LastName: "Ivanov", FirstName: "Ivan"},
			want: "Ivanov Ivan",
		},
		{
			name: "first name only",
			user: User{FirstName: "Ivan"},
			want: "Ivan",
		},
		{
			name: "empty",
			user: User{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.FullName(); got != tt.want {
				t.Errorf("FullName() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestUserIsAdmin(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{rbac.RoleAdmin, true},
		{rbac.RoleUser, false},
		{"admin", false},
		{"", false},
	}

	for _, tt := range tests {
		u := &User{RoleName: tt.role}
		if got := u.IsAdmin(); got != tt.want {
			t.Errorf("IsAdmin() with role %q = %v; want %v", tt.role, got, tt.want)
		}
	}
}

func TestUserHasRight(t *testing.T) {
	admin := &User{RoleName: rbac.RoleAdmin}
	user := &User{RoleName: rbac.RoleUser}
	norole := &User{}

	if !admin.HasRight(rbac.CapDeleteUser) {
		t.Error("admin should hold delete_user")
	}
	if !user.HasRight(rbac.CapEditSelf) {
		t.Error("user should hold edit_self")
	}
	if user.HasRight(rbac.CapCreateUser) {
		t.Error("user should not hold create_user")
	}
	if norole.HasRight(rbac.CapViewSelf) {
		t.Error("user without role should hold nothing")
	}
}
