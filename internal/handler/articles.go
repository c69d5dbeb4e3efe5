// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/newsdesk-go/internal/middleware"
	"github.com/olegiv/newsdesk-go/internal/model"
	"github.com/olegiv/newsdesk-go/internal/store"
)

// maxArticleBodyBytes caps the JSON payload accepted by the article API.
const maxArticleBodyBytes = 1 << 20 // 1 MB

// ArticlesHandler implements the JSON article API used by the portal pages.
type ArticlesHandler struct {
	queries *store.Queries
}

// NewArticlesHandler creates a new ArticlesHandler.
func NewArticlesHandler(db *sql.DB) *ArticlesHandler {
	return &ArticlesHandler{queries: store.New(db)}
}

// articlePayload is the request body for article create and update.
type articlePayload struct {
	Title      string `json:"title"`
	HTML       string `json:"html"`
	Department string `json:"department"`
}

// validate checks the payload before anything touches the database.
func (p *articlePayload) validate() error {
	p.Title = strings.TrimSpace(p.Title)
	p.Department = strings.TrimSpace(p.Department)
	if p.Title == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(p.HTML) == "" {
		return errors.New("article content is required")
	}
	if p.Department == "" {
		return errors.New("department is required")
	}
	if !model.IsKnownDepartment(p.Department) {
		return fmt.Errorf("unknown department %q", p.Department)
	}
	return nil
}

// decodeArticlePayload reads and validates the JSON body shared by the
// create and update routes.
func decodeArticlePayload(w http.ResponseWriter, r *http.Request) (articlePayload, bool) {
	var payload articlePayload
	r.Body = http.MaxBytesReader(w, r.Body, maxArticleBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return payload, false
	}
	if err := payload.validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return payload, false
	}
	return payload, true
}

// authorName resolves the byline from the authenticated user. A missing
// profile is a server fault: the auth middleware already vouched for the
// session.
func authorName(w http.ResponseWriter, r *http.Request) (string, bool) {
	user := middleware.GetUser(r)
	if user == nil || user.Name == "" {
		slog.Error("authenticated request without user profile", "path", r.URL.Path)
		writeJSONError(w, http.StatusInternalServerError, "Error fetching user profile")
		return "", false
	}
	return user.Name, true
}

// Submit creates a new draft article.
func (h *ArticlesHandler) Submit(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeArticlePayload(w, r)
	if !ok {
		return
	}
	author, ok := authorName(w, r)
	if !ok {
		return
	}

	article, err := h.queries.CreateArticle(r.Context(), store.CreateArticleParams{
		Title:      payload.Title,
		HTML:       payload.HTML,
		Department: payload.Department,
		Author:     author,
		Visibility: model.Draft,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		slog.Error("creating article", "error", err, "author", author)
		writeJSONError(w, http.StatusInternalServerError, "Error saving article")
		return
	}

	slog.Info("article created", "article_id", article.ID, "author", author, "department", article.Department)
	writeJSONSuccess(w, "Article submitted successfully", nil)
}

// Update overwrites an article's title, body and department. The byline is
// re-derived from the session rather than trusted from the client.
func (h *ArticlesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Article not found")
		return
	}

	payload, ok := decodeArticlePayload(w, r)
	if !ok {
		return
	}
	author, ok := authorName(w, r)
	if !ok {
		return
	}

	if _, err := h.queries.GetArticleByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONError(w, http.StatusNotFound, "Article not found")
			return
		}
		slog.Error("loading article for update", "error", err, "article_id", id)
		writeJSONError(w, http.StatusInternalServerError, "Error updating article")
		return
	}

	if err := h.queries.UpdateArticle(r.Context(), store.UpdateArticleParams{
		ID:         id,
		Title:      payload.Title,
		HTML:       payload.HTML,
		Department: payload.Department,
		Author:     author,
	}); err != nil {
		slog.Error("updating article", "error", err, "article_id", id)
		writeJSONError(w, http.StatusInternalServerError, "Error updating article")
		return
	}

	slog.Info("article updated", "article_id", id, "author", author)
	writeJSONSuccess(w, "Article updated successfully", map[string]any{
		"redirectUrl": fmt.Sprintf("/article/%d", id),
	})
}

// ToggleVisibility publishes or unpublishes an article.
func (h *ArticlesHandler) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Article not found")
		return
	}

	var payload struct {
		Visible any `json:"visible"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxArticleBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	visibility := model.Draft
	if parseBoolish(payload.Visible) {
		visibility = model.Published
	}

	if err := h.queries.UpdateArticleVisibility(r.Context(), store.UpdateArticleVisibilityParams{
		ID:         id,
		Visibility: visibility,
	}); err != nil {
		slog.Error("updating article visibility", "error", err, "article_id", id)
		writeJSONError(w, http.StatusInternalServerError, "Error updating visibility")
		return
	}

	slog.Info("article visibility updated", "article_id", id, "visibility", visibility.String())
	writeJSONSuccess(w, "Visibility updated successfully", nil)
}

// Delete removes an article. Deleting an already-deleted article succeeds.
func (h *ArticlesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Article not found")
		return
	}

	if err := h.queries.DeleteArticle(r.Context(), id); err != nil {
		slog.Error("deleting article", "error", err, "article_id", id)
		writeJSONError(w, http.StatusInternalServerError, "Error deleting article")
		return
	}

	slog.Info("article deleted", "article_id", id)
	writeJSONSuccess(w, "Article deleted successfully", nil)
}
