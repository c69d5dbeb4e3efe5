// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"database/sql"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/olegiv/newsdesk-go/internal/render"
	"github.com/olegiv/newsdesk-go/internal/store"
	"github.com/olegiv/newsdesk-go/internal/view"
)

// PublicHandler serves the unauthenticated pages: landing, blog listing,
// article detail and the markdown-backed static pages.
type PublicHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
	markdown goldmark.Markdown
	content  fs.FS
}

// NewPublicHandler creates a new PublicHandler. content holds the markdown
// sources for the static pages.
func NewPublicHandler(db *sql.DB, renderer *render.Renderer, content fs.FS) *PublicHandler {
	return &PublicHandler{
		queries:  store.New(db),
		renderer: renderer,
		markdown: goldmark.New(
			goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
		),
		content: content,
	}
}

// blogData feeds the public blog listing template.
type blogData struct {
	Articles []view.ArticleView
}

// articleData feeds the article detail template.
type articleData struct {
	Title    string
	Body     template.HTML
	Author   string
	Dept     string
	DeptSlug string
	Date     string
	ReadTime int
	NotFound bool
}

// staticData feeds the static page template.
type staticData struct {
	Heading string
	Body    template.HTML
}

// Home renders the landing page.
func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "index", render.TemplateData{
		Title: "Home",
	}); err != nil {
		logAndInternalError(w, "rendering home page", "error", err)
	}
}

// Blog renders the published-article listing.
func (h *PublicHandler) Blog(w http.ResponseWriter, r *http.Request) {
	articles, err := h.queries.ListVisibleArticles(r.Context())
	if err != nil {
		slog.Error("loading blog articles", "error", err)
		h.renderError(w, r, http.StatusInternalServerError, "Error loading articles")
		return
	}

	if err := h.renderer.Render(w, r, "blog", render.TemplateData{
		Title: "Blog",
		Data:  blogData{Articles: view.PublicArticles(articles)},
	}); err != nil {
		logAndInternalError(w, "rendering blog page", "error", err)
	}
}

// Article renders a single article. Unknown ids get the detail template in
// its not-found state rather than a bare error page.
func (h *PublicHandler) Article(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.renderArticleNotFound(w, r)
		return
	}

	article, err := h.queries.GetArticleByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.renderArticleNotFound(w, r)
			return
		}
		slog.Error("loading article", "error", err, "article_id", id)
		h.renderError(w, r, http.StatusInternalServerError, "Error loading article")
		return
	}

	caser := cases.Title(language.English)
	if err := h.renderer.Render(w, r, "blogdisplay", render.TemplateData{
		Title: article.Title,
		Data: articleData{
			Title:    article.Title,
			Body:     template.HTML(article.HTML),
			Author:   article.Author,
			Dept:     caser.String(article.Department),
			DeptSlug: strings.ToLower(article.Department),
			Date:     article.CreatedAt.Format("Jan 2, 2006"),
			ReadTime: view.ReadTime(article.HTML),
		},
	}); err != nil {
		logAndInternalError(w, "rendering article page", "error", err)
	}
}

// About renders the about page from its markdown source.
func (h *PublicHandler) About(w http.ResponseWriter, r *http.Request) {
	h.renderStatic(w, r, "About", "about.md")
}

// Contact renders the contact page from its markdown source.
func (h *PublicHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.renderStatic(w, r, "Contact", "contact.md")
}

// NotFound is the catch-all for unmatched routes.
func (h *PublicHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "Page not found")
}

func (h *PublicHandler) renderArticleNotFound(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.RenderStatus(w, r, http.StatusNotFound, "blogdisplay", render.TemplateData{
		Title: "Not Found",
		Data: articleData{
			Title:    "Article not found",
			Dept:     "SYSTEM",
			DeptSlug: "system",
			NotFound: true,
		},
	}); err != nil {
		logAndInternalError(w, "rendering article not found", "error", err)
	}
}

func (h *PublicHandler) renderStatic(w http.ResponseWriter, r *http.Request, title, file string) {
	source, err := fs.ReadFile(h.content, file)
	if err != nil {
		logAndInternalError(w, "reading static page source", "error", err, "file", file)
		return
	}

	var buf bytes.Buffer
	if err := h.markdown.Convert(source, &buf); err != nil {
		logAndInternalError(w, "converting static page markdown", "error", err, "file", file)
		return
	}

	if err := h.renderer.Render(w, r, "static", render.TemplateData{
		Title: title,
		Data: staticData{
			Heading: title,
			Body:    template.HTML(buf.String()),
		},
	}); err != nil {
		logAndInternalError(w, "rendering static page", "error", err)
	}
}

// errorData feeds the error template.
type errorData struct {
	StatusCode int
	Message    string
}

func (h *PublicHandler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if err := h.renderer.RenderStatus(w, r, status, "error", render.TemplateData{
		Title: http.StatusText(status),
		Data: errorData{
			StatusCode: status,
			Message:    message,
		},
	}); err != nil {
		slog.Error("rendering error page", "error", err)
		http.Error(w, message, status)
	}
}
