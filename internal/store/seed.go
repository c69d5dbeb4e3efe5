// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/newsdesk-go/internal/auth"
	"github.com/olegiv/newsdesk-go/internal/model"
)

// Default editor credentials
const (
	DefaultEditorEmail    = "editor@example.com"
	DefaultEditorPassword = "changeme"
	DefaultEditorName     = "Editor"
)

// Seed creates initial data in the database. The default editor belongs to
// the all-access department so a fresh install can manage every article.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	// Check if the default editor already exists
	_, err := queries.GetUserByEmail(ctx, DefaultEditorEmail)
	if err == nil {
		slog.Info("default editor already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for default editor: %w", err)
	}

	passwordHash, err := auth.HashPassword(DefaultEditorPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        DefaultEditorEmail,
		PasswordHash: passwordHash,
		Name:         DefaultEditorName,
		Dept:         model.DeptAll,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating default editor: %w", err)
	}

	slog.Info("created default editor",
		"id", user.ID,
		"email", user.Email,
		"password", DefaultEditorPassword,
	)

	return nil
}
