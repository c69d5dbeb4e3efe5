// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/olegiv/newsdesk-go/internal/model"
	"github.com/olegiv/newsdesk-go/internal/store"
	"github.com/olegiv/newsdesk-go/internal/testutil"
)

func TestCreateAndGetUser(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	q := store.New(db)
	ctx := context.Background()

	now := time.Now()
	created, err := q.CreateUser(ctx, store.CreateUserParams{
		Email:        "writer@example.com",
		PasswordHash: "hash",
		Name:         "Writer",
		Dept:         "Marketing",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("created user has zero id")
	}
	if created.LastLoginAt.Valid {
		t.Error("new user already has a last login time")
	}

	byID, err := q.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if byID.Email != "writer@example.com" || byID.Dept != "Marketing" {
		t.Errorf("fetched user mismatch: %+v", byID)
	}

	byEmail, err := q.GetUserByEmail(ctx, "writer@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Errorf("GetUserByEmail id = %d, want %d", byEmail.ID, created.ID)
	}
}

func TestGetUserMissing(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	q := store.New(db)
	ctx := context.Background()

	if _, err := q.GetUserByID(ctx, 42); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetUserByID(missing) error = %v", err)
	}
	if _, err := q.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetUserByEmail(missing) error = %v", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	q := store.New(db)
	ctx := context.Background()

	now := time.Now()
	params := store.CreateUserParams{
		Email:        "dup@example.com",
		PasswordHash: "hash",
		Name:         "First",
		Dept:         model.DeptGeneral,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := q.CreateUser(ctx, params); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := q.CreateUser(ctx, params); err == nil {
		t.Error("duplicate email accepted")
	}
}

func TestUpdateUserLastLogin(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	q := store.New(db)
	ctx := context.Background()

	now := time.Now()
	u, err := q.CreateUser(ctx, store.CreateUserParams{
		Email:        "login@example.com",
		PasswordHash: "hash",
		Name:         "Login",
		Dept:         model.DeptGeneral,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	loginTime := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	err = q.UpdateUserLastLogin(ctx, store.UpdateUserLastLoginParams{
		ID:          u.ID,
		LastLoginAt: loginTime,
	})
	if err != nil {
		t.Fatalf("UpdateUserLastLogin: %v", err)
	}

	got, err := q.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if !got.LastLoginAt.Valid {
		t.Fatal("last login not recorded")
	}
	if !got.LastLoginAt.Time.Equal(loginTime) {
		t.Errorf("last login = %v, want %v", got.LastLoginAt.Time, loginTime)
	}
}

func TestSeedCreatesDefaultEditor(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.Seed(ctx, db); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	q := store.New(db)
	u, err := q.GetUserByEmail(ctx, store.DefaultEditorEmail)
	if err != nil {
		t.Fatalf("seeded editor missing: %v", err)
	}
	if u.Dept != model.DeptAll {
		t.Errorf("seeded editor dept = %q, want all-access", u.Dept)
	}

	// Seeding twice must not duplicate or fail.
	if err := store.Seed(ctx, db); err != nil {
		t.Fatalf("second Seed: %v", err)
	}
}
