// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/olegiv/weblab-go/internal/model"
)

// Queries wraps a database handle with typed query methods.
type Queries struct {
	db *sql.DB
}

// New creates a Queries instance for the given database.
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

const userColumns = `u.id, u.login, u.password_hash, u.last_name, u.first_name,
	u.middle_name, u.role_id, COALESCE(r.name, ''), u.is_active, u.created_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.LastName, &u.FirstName,
		&u.MiddleName, &u.RoleID, &u.RoleName, &u.IsActive, &u.CreatedAt)
	return u, err
}

// GetUserByID returns a user with its role name joined in.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+`
		FROM users u LEFT JOIN roles r ON r.id = u.role_id
		WHERE u.id = ?`, id)
	return scanUser(row)
}

// GetUserByLogin returns a user by its unique login.
func (q *Queries) GetUserByLogin(ctx context.Context, login string) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+`
		FROM users u LEFT JOIN roles r ON r.id = u.role_id
		WHERE u.login = ?`, login)
	return scanUser(row)
}

// ListUsers returns all users ordered by id.
func (q *Queries) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+userColumns+`
		FROM users u LEFT JOIN roles r ON r.id = u.role_id
		ORDER BY u.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers returns the total number of users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// CreateUserParams holds the fields for creating a user.
type CreateUserParams struct {
	Login        string
	PasswordHash string
	LastName     string
	FirstName    string
	MiddleName   string
	RoleID       sql.NullInt64
	CreatedAt    time.Time
}

// CreateUser inserts a new user and returns the stored record.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO users
		(login, password_hash, last_name, first_name, middle_name, role_id, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?)`,
		arg.Login, arg.PasswordHash, arg.LastName, arg.FirstName, arg.MiddleName,
		arg.RoleID, arg.CreatedAt)
	if err != nil {
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return q.GetUserByID(ctx, id)
}

// UpdateUserParams holds the editable user fields.
type UpdateUserParams struct {
	ID         int64
	LastName   string
	FirstName  string
	MiddleName string
	RoleID     sql.NullInt64
}

// UpdateUser updates the name fields and role of a user.
func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) error {
	_, err := q.db.ExecContext(ctx, `UPDATE users
		SET last_name = ?, first_name = ?, middle_name = ?, role_id = ?
		WHERE id = ?`,
		arg.LastName, arg.FirstName, arg.MiddleName, arg.RoleID, arg.ID)
	return err
}

// UpdateUserPassword replaces the stored password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := q.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`,
		passwordHash, id)
	return err
}

// DeleteUser removes a user. Visit logs referencing it keep their rows with
// user_id set to NULL.
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

// ListRoles returns all roles ordered by id.
func (q *Queries) ListRoles(ctx context.Context) ([]model.Role, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name, description FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		var r model.Role
		if err := rows.Scan(&r.ID, &r.Name, &r.Description); err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

// GetRoleByName returns a role by its unique name.
func (q *Queries) GetRoleByName(ctx context.Context, name string) (model.Role, error) {
	var r model.Role
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, description FROM roles WHERE name = ?`, name).
		Scan(&r.ID, &r.Name, &r.Description)
	return r, err
}

// CreateRole inserts a new role.
func (q *Queries) CreateRole(ctx context.Context, name, description string) (model.Role, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO roles (name, description) VALUES (?, ?)`, name, description)
	if err != nil {
		return model.Role{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Role{}, err
	}
	return model.Role{ID: id, Name: name, Description: description}, nil
}

// CreateVisitParams holds the fields for one visit log row.
type CreateVisitParams struct {
	Path      string
	UserID    sql.NullInt64
	Browser   string
	OS        string
	Country   string
	CreatedAt time.Time
}

// CreateVisit appends a visit log row.
func (q *Queries) CreateVisit(ctx context.Context, arg CreateVisitParams) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO visit_logs
		(path, user_id, browser, os, country, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		arg.Path, arg.UserID, arg.Browser, arg.OS, arg.Country, arg.CreatedAt)
	return err
}

// ListVisitsParams selects a page of visit logs, optionally restricted to
// one user.
type ListVisitsParams struct {
	UserID sql.NullInt64 // restrict to this user when valid
	Limit  int64
	Offset int64
}

// ListVisits returns visit logs newest first.
func (q *Queries) ListVisits(ctx context.Context, arg ListVisitsParams) ([]model.VisitLog, error) {
	query := `SELECT id, path, user_id, browser, os, country, created_at
		FROM visit_logs`
	args := []any{}
	if arg.UserID.Valid {
		query += ` WHERE user_id = ?`
		args = append(args, arg.UserID.Int64)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []model.VisitLog
	for rows.Next() {
		var v model.VisitLog
		if err := rows.Scan(&v.ID, &v.Path, &v.UserID, &v.Browser, &v.OS,
			&v.Country, &v.CreatedAt); err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// CountVisits returns the number of visit logs, optionally restricted to
// one user.
func (q *Queries) CountVisits(ctx context.Context, userID sql.NullInt64) (int64, error) {
	var n int64
	var err error
	if userID.Valid {
		err = q.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM visit_logs WHERE user_id = ?`, userID.Int64).Scan(&n)
	} else {
		err = q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM visit_logs`).Scan(&n)
	}
	return n, err
}

// PageStatsRow is one aggregated per-path visit count.
type PageStatsRow struct {
	Path  string `json:"path"`
	Count int64  `json:"count"`
}

// PageStats returns visit counts grouped by path, most visited first.
func (q *Queries) PageStats(ctx context.Context) ([]PageStatsRow, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT path, COUNT(*) AS cnt
		FROM visit_logs GROUP BY path ORDER BY cnt DESC, path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []PageStatsRow
	for rows.Next() {
		var s PageStatsRow
		if err := rows.Scan(&s.Path, &s.Count); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// UserStatsRow is one aggregated per-user visit count. UserID 0 with an
// empty FullName is the anonymous bucket.
type UserStatsRow struct {
	UserID   int64  `json:"user_id"`
	FullName string `json:"full_name"`
	Count    int64  `json:"count"`
}

// UserStats returns visit counts per registered user (including users with
// no visits), plus one anonymous bucket when unauthenticated visits exist.
// Rows are ordered by count descending.
func (q *Queries) UserStats(ctx context.Context) ([]UserStatsRow, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT u.id, u.last_name, u.first_name, u.middle_name,
			COUNT(v.id) AS cnt
		FROM users u LEFT JOIN visit_logs v ON v.user_id = u.id
		GROUP BY u.id ORDER BY cnt DESC, u.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []UserStatsRow
	for rows.Next() {
		var u model.User
		var s UserStatsRow
		if err := rows.Scan(&s.UserID, &u.LastName, &u.FirstName, &u.MiddleName,
			&s.Count); err != nil {
			return nil, err
		}
		s.FullName = u.FullName()
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var anonymous int64
	if err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM visit_logs WHERE user_id IS NULL`).Scan(&anonymous); err != nil {
		return nil, fmt.Errorf("counting anonymous visits: %w", err)
	}
	if anonymous > 0 {
		stats = append(stats, UserStatsRow{Count: anonymous})
		sort.SliceStable(stats, func(i, j int) bool {
			return stats[i].Count > stats[j].Count
		})
	}

	return stats, nil
}

// DeleteVisitsBefore removes visit logs older than the cutoff. Returns the
// number of deleted rows.
func (q *Queries) DeleteVisitsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM visit_logs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
