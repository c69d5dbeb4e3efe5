// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package view converts article records into presentation data: excerpts,
// read-time estimates, visibility badges and formatted dates.
package view

import (
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/olegiv/newsdesk-go/internal/model"
)

// Excerpt budgets and markers per listing.
const (
	PortalExcerptLen = 150
	PublicExcerptLen = 200

	PortalExcerptMarker = "..."
	PublicExcerptMarker = "... Read More"
)

// WordsPerMinute is the reading speed the read-time estimate assumes.
const WordsPerMinute = 150

var (
	// Line-break and paragraph-close markup becomes a double space before
	// stripping, so adjacent paragraphs do not run into each other.
	breakTagRe      = regexp.MustCompile(`(?i)<br\s*/?>`)
	paragraphEndRe  = regexp.MustCompile(`(?i)</p>`)
	stripTagsPolicy = bluemonday.StrictPolicy()
)

// deptTitle renders a department code for display. Casers are stateful, so
// one is created per call rather than shared.
func deptTitle(dept string) string {
	return cases.Title(language.English).String(dept)
}

// ArticleView is the presentation shape consumed by listing templates.
type ArticleView struct {
	ID        int64
	Title     string
	Excerpt   string
	Author    string
	Dept      string
	DeptSlug  string
	Badge     string
	Published bool
	ReadTime  int
	Date      string
	CreatedAt time.Time
}

// Excerpt produces a plain-text preview of an HTML body: break/paragraph
// markup becomes double spaces, remaining tags are stripped, the text is
// truncated to maxLen characters and marker is appended.
func Excerpt(body string, maxLen int, marker string) string {
	text := breakTagRe.ReplaceAllString(body, "  ")
	text = paragraphEndRe.ReplaceAllString(text, "  ")
	text = stripTagsPolicy.Sanitize(text)
	// The sanitizer entity-escapes its output; undo that so templates do
	// not double-escape.
	text = html.UnescapeString(text)

	if runes := []rune(text); len(runes) > maxLen {
		text = string(runes[:maxLen])
	}
	return text + marker
}

// ReadTime estimates reading minutes from the whitespace-split word count
// of the HTML body, floored at one minute.
func ReadTime(body string) int {
	words := len(strings.Fields(body))
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// newArticleView builds an ArticleView with the given excerpt budget.
func newArticleView(a model.Article, maxLen int, marker string) ArticleView {
	return ArticleView{
		ID:        a.ID,
		Title:     a.Title,
		Excerpt:   Excerpt(a.HTML, maxLen, marker),
		Author:    a.Author,
		Dept:      deptTitle(a.Department),
		DeptSlug:  strings.ToLower(a.Department),
		Badge:     a.Visibility.String(),
		Published: a.Visibility.IsPublished(),
		ReadTime:  ReadTime(a.HTML),
		Date:      a.CreatedAt.Format("Jan 2, 2006"),
		CreatedAt: a.CreatedAt,
	}
}

// PortalArticle builds the view used by the author dashboard listing.
func PortalArticle(a model.Article) ArticleView {
	return newArticleView(a, PortalExcerptLen, PortalExcerptMarker)
}

// PublicArticle builds the view used by the public blog listing.
func PublicArticle(a model.Article) ArticleView {
	return newArticleView(a, PublicExcerptLen, PublicExcerptMarker)
}

// EditArticle carries the raw article fields into the edit form, where the
// body must round-trip unmodified.
type EditArticle struct {
	ID         int64
	Title      string
	HTML       string
	Department string
	Published  bool
}

// NewEditArticle builds the edit-form view for an article.
func NewEditArticle(a model.Article) EditArticle {
	return EditArticle{
		ID:         a.ID,
		Title:      a.Title,
		HTML:       a.HTML,
		Department: a.Department,
		Published:  a.Visibility.IsPublished(),
	}
}

// PortalArticles maps articles to dashboard views.
func PortalArticles(articles []model.Article) []ArticleView {
	views := make([]ArticleView, len(articles))
	for i, a := range articles {
		views[i] = PortalArticle(a)
	}
	return views
}

// PublicArticles maps articles to public listing views.
func PublicArticles(articles []model.Article) []ArticleView {
	views := make([]ArticleView, len(articles))
	for i, a := range articles {
		views[i] = PublicArticle(a)
	}
	return views
}
