// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"strings"
	"time"
)

// Visibility is the publication state of an article.
type Visibility int

// Article visibility states.
const (
	Draft Visibility = iota
	Published
)

// Legacy visibility strings as persisted by the store. The database column
// is a text tri-state (TRUE/FALSE/NULL); decoding and encoding happen only
// at the store boundary.
const (
	legacyVisibleTrue  = "TRUE"
	legacyVisibleFalse = "FALSE"
)

// String returns the badge label for the visibility state.
func (v Visibility) String() string {
	if v == Published {
		return "PUBLISHED"
	}
	return "DRAFT"
}

// IsPublished returns true if the article is publicly visible.
func (v Visibility) IsPublished() bool {
	return v == Published
}

// ParseVisibility decodes a stored legacy visibility value. A value is
// visible iff it equals, case-insensitively for the string forms, "true"
// or "1". NULL and everything else is Draft.
func ParseVisibility(raw sql.NullString) Visibility {
	if !raw.Valid {
		return Draft
	}
	s := strings.TrimSpace(raw.String)
	if strings.EqualFold(s, "true") || s == "1" {
		return Published
	}
	return Draft
}

// EncodeVisibility returns the canonical stored string for a visibility
// state. Writes always persist one of the two canonical values, never the
// looser forms accepted by ParseVisibility.
func EncodeVisibility(v Visibility) string {
	if v.IsPublished() {
		return legacyVisibleTrue
	}
	return legacyVisibleFalse
}

// Article represents an authored article.
type Article struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	HTML       string     `json:"html"`
	Department string     `json:"department"`
	Author     string     `json:"author"`
	Visibility Visibility `json:"visibility"`
	CreatedAt  time.Time  `json:"created_at"`
}
