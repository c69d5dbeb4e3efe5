// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including User, Article, and department handling.
package model

import (
	"database/sql"
	"time"
)

// DeptAll is the all-access department code. Users tagged with it see
// every article regardless of department scoping.
const DeptAll = "SUDO"

// DeptGeneral is the shared department visible to authors of every department.
const DeptGeneral = "General"

// KnownDepartments lists the department codes an article may be tagged with.
var KnownDepartments = []string{
	"Engineering",
	"Marketing",
	"Operations",
	DeptGeneral,
}

// IsKnownDepartment reports whether dept is a valid article department.
func IsKnownDepartment(dept string) bool {
	for _, d := range KnownDepartments {
		if d == dept {
			return true
		}
	}
	return false
}

// User represents an author account.
type User struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Never expose in JSON
	Name         string       `json:"name"`
	Dept         string       `json:"dept"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	LastLoginAt  sql.NullTime `json:"last_login_at,omitempty"`
}

// HasAllAccess returns true if the user belongs to the all-access department.
func (u *User) HasAllAccess() bool {
	return u.Dept == DeptAll
}

// VisibleDepartments returns the article departments the user may list.
// A nil slice means every department (all-access).
func (u *User) VisibleDepartments() []string {
	if u.HasAllAccess() {
		return nil
	}
	return []string{u.Dept, DeptGeneral}
}
