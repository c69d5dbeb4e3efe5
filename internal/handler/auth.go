// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/newsdesk-go/internal/auth"
	"github.com/olegiv/newsdesk-go/internal/middleware"
	"github.com/olegiv/newsdesk-go/internal/render"
	"github.com/olegiv/newsdesk-go/internal/store"
)

// AuthHandler handles login and logout.
type AuthHandler struct {
	queries         *store.Queries
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		queries:         store.New(db),
		renderer:        renderer,
		sessionManager:  sm,
		loginProtection: lp,
	}
}

// loginData feeds the login template.
type loginData struct {
	Error string
}

// LoginForm renders the login page. Authenticated users go straight to the
// portal.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if userID := h.sessionManager.GetInt64(r.Context(), middleware.SessionKeyUserID); userID > 0 {
		http.Redirect(w, r, RouteAuthorPortal, http.StatusSeeOther)
		return
	}

	if err := h.renderer.Render(w, r, "login", render.TemplateData{
		Title: "Login",
		Data:  loginData{},
	}); err != nil {
		logAndInternalError(w, "rendering login form", "error", err)
	}
}

// Login handles the login form submission. On success the session cookie is
// issued and the author lands on the portal; on failure the form is
// re-rendered with a 401 status and an error message.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLoginError(w, r, http.StatusBadRequest, "Invalid form data")
		return
	}

	email := r.FormValue("username")
	password := r.FormValue("password")

	if email == "" || password == "" {
		h.renderLoginError(w, r, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			h.renderLoginError(w, r, http.StatusUnauthorized,
				fmt.Sprintf("Account locked, try again in %s", formatDuration(remaining)))
			return
		}
	}

	user, err := h.queries.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.Debug("login attempt for non-existent user", "email", email)
		} else {
			slog.Error("database error during login", "error", err)
		}
		// Record failed attempts for unknown accounts too, to prevent
		// user enumeration through lockout behavior.
		h.recordFailure(email)
		h.renderLoginError(w, r, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	valid, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("password check error", "error", err)
		h.renderLoginError(w, r, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if !valid {
		slog.Debug("invalid password attempt", "email", email)
		h.recordFailure(email)
		h.renderLoginError(w, r, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	if err := h.queries.UpdateUserLastLogin(r.Context(), store.UpdateUserLastLoginParams{
		ID:          user.ID,
		LastLoginAt: time.Now(),
	}); err != nil {
		// Don't block login on this error
		slog.Error("failed to update last login time", "error", err, "user_id", user.ID)
	}

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}

	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	http.Redirect(w, r, RouteAuthorPortal, http.StatusFound)
}

// Logout destroys the session and returns to the login form.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}
	flashAndRedirect(w, r, h.renderer, RouteLogin, "You have been logged out", "success")
}

func (h *AuthHandler) recordFailure(email string) {
	if h.loginProtection == nil {
		return
	}
	if locked, duration := h.loginProtection.RecordFailedAttempt(email); locked {
		slog.Warn("account locked after failed logins", "email", email, "duration", duration.String())
	}
}

func (h *AuthHandler) renderLoginError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if err := h.renderer.RenderStatus(w, r, status, "login", render.TemplateData{
		Title: "Login",
		Data:  loginData{Error: message},
	}); err != nil {
		logAndInternalError(w, "rendering login error", "error", err)
	}
}

// formatDuration renders a duration in whole seconds, minutes or hours for
// user-facing lockout messages.
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		n := int(d.Hours())
		if n == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", n)
	case d >= time.Minute:
		n := int(d.Minutes())
		if n == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", n)
	default:
		n := int(d.Seconds())
		if n == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", n)
	}
}
