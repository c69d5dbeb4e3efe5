// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/newsdesk-go/internal/middleware"
	"github.com/olegiv/newsdesk-go/internal/model"
	"github.com/olegiv/newsdesk-go/internal/render"
	"github.com/olegiv/newsdesk-go/internal/store"
	"github.com/olegiv/newsdesk-go/internal/view"
)

// PortalHandler renders the author-facing pages: the dashboard and the
// article creation and edit forms.
type PortalHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(db *sql.DB, renderer *render.Renderer) *PortalHandler {
	return &PortalHandler{
		queries:  store.New(db),
		renderer: renderer,
	}
}

// portalData feeds the authorportal template.
type portalData struct {
	Name     string
	Articles []view.ArticleView
	LoadErr  bool
}

// editorData feeds the blogwrite and blogedit templates.
type editorData struct {
	Departments []string
	Article     *view.EditArticle
}

// Dashboard renders the department-scoped article listing for the
// authenticated author.
func (h *PortalHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	// The display name may fall back; article scoping may not widen.
	name := "User"
	depts := []string{model.DeptGeneral}
	if user := middleware.GetUser(r); user != nil {
		name = user.Name
		depts = user.VisibleDepartments()
	}

	var (
		articles []model.Article
		err      error
	)
	if depts == nil {
		articles, err = h.queries.ListArticles(r.Context())
	} else {
		articles, err = h.queries.ListArticlesByDepartments(r.Context(), depts)
	}

	data := portalData{Name: name}
	if err != nil {
		slog.Error("loading portal articles", "error", err)
		data.LoadErr = true
		if renderErr := h.renderer.RenderStatus(w, r, http.StatusInternalServerError, "authorportal", render.TemplateData{
			Title: "Author Portal",
			Data:  data,
		}); renderErr != nil {
			logAndInternalError(w, "rendering author portal", "error", renderErr)
		}
		return
	}
	data.Articles = view.PortalArticles(articles)

	if err := h.renderer.Render(w, r, "authorportal", render.TemplateData{
		Title: "Author Portal",
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "rendering author portal", "error", err)
	}
}

// NewForm renders the article creation form.
func (h *PortalHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "blogwrite", render.TemplateData{
		Title: "New Article",
		Data:  editorData{Departments: model.KnownDepartments},
	}); err != nil {
		logAndInternalError(w, "rendering article form", "error", err)
	}
}

// EditForm renders the edit form for an existing article.
func (h *PortalHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "Article not found", http.StatusNotFound)
		return
	}

	article, err := h.queries.GetArticleByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Article not found", http.StatusNotFound)
			return
		}
		logAndInternalError(w, "loading article for edit", "error", err, "article_id", id)
		return
	}

	edit := view.NewEditArticle(article)
	if err := h.renderer.Render(w, r, "blogedit", render.TemplateData{
		Title: "Edit Article",
		Data: editorData{
			Departments: model.KnownDepartments,
			Article:     &edit,
		},
	}); err != nil {
		logAndInternalError(w, "rendering edit form", "error", err)
	}
}
