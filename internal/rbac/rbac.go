// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package rbac decides whether a role grants a capability. The decision is
// a pure function over the role name passed in by the caller; nothing is
// read from request context or other ambient state.
package rbac

// Seed role names.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// Capabilities checked at route boundaries.
const (
	CapCreateUser  = "create_user"
	CapEditUser    = "edit_user"
	CapDeleteUser  = "delete_user"
	CapEditSelf    = "edit_self"
	CapViewSelf    = "view_self"
	CapViewOwnLogs = "view_own_logs"
)

// userCapabilities is the fixed set granted to the User role.
var userCapabilities = map[string]bool{
	CapEditSelf:    true,
	CapViewSelf:    true,
	CapViewOwnLogs: true,
}

// HasRight reports whether roleName grants capability. The function is
// total: every role/capability pair has a defined outcome. An empty role
// name means no role assigned and denies everything; Admin is granted
// everything, including capabilities unknown to this package; unrecognized
// roles are denied everything.
func HasRight(roleName, capability string) bool {
	switch roleName {
	case "":
		return false
	case RoleAdmin:
		return true
	case RoleUser:
		return userCapabilities[capability]
	default:
		return false
	}
}

// IsSelfOrAdmin implements the self-or-admin rule: an operation on a
// specific account is allowed when the caller is an Admin or the caller is
// the account's owner.
func IsSelfOrAdmin(roleName string, callerID, targetID int64) bool {
	if roleName == RoleAdmin {
		return true
	}
	return callerID == targetID
}
