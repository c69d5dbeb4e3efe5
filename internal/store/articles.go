// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/olegiv/newsdesk-go/internal/model"
)

const articleColumns = `id, title, html, department, author, visible, created_at`

// visibleTruePredicate matches every stored value the legacy dataset uses
// for "published". It mirrors model.ParseVisibility so listing and display
// can never disagree.
const visibleTruePredicate = `visible IS NOT NULL AND (LOWER(TRIM(visible)) = 'true' OR TRIM(visible) = '1')`

func scanArticle(row scanner) (model.Article, error) {
	var (
		a   model.Article
		raw sql.NullString
	)
	err := row.Scan(&a.ID, &a.Title, &a.HTML, &a.Department, &a.Author, &raw, &a.CreatedAt)
	if err != nil {
		return model.Article{}, err
	}
	a.Visibility = model.ParseVisibility(raw)
	return a, nil
}

func (q *Queries) listArticles(ctx context.Context, query string, args ...any) ([]model.Article, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var articles []model.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// ListArticles returns every article, most recent first.
func (q *Queries) ListArticles(ctx context.Context) ([]model.Article, error) {
	return q.listArticles(ctx,
		`SELECT `+articleColumns+` FROM articles ORDER BY id DESC`)
}

// ListArticlesByDepartments returns articles whose department is in depts,
// most recent first.
func (q *Queries) ListArticlesByDepartments(ctx context.Context, depts []string) ([]model.Article, error) {
	if len(depts) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(depts)), ", ")
	args := make([]any, len(depts))
	for i, d := range depts {
		args[i] = d
	}
	return q.listArticles(ctx,
		`SELECT `+articleColumns+` FROM articles
		 WHERE department IN (`+placeholders+`)
		 ORDER BY id DESC`, args...)
}

// ListVisibleArticles returns published articles only, most recent first.
func (q *Queries) ListVisibleArticles(ctx context.Context) ([]model.Article, error) {
	return q.listArticles(ctx,
		`SELECT `+articleColumns+` FROM articles
		 WHERE `+visibleTruePredicate+`
		 ORDER BY id DESC`)
}

// GetArticleByID fetches a single article. Returns sql.ErrNoRows if missing.
func (q *Queries) GetArticleByID(ctx context.Context, id int64) (model.Article, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	return scanArticle(row)
}

// CreateArticleParams holds the fields required to create an article.
// Visibility is always persisted as a canonical string; new articles start
// as drafts unless the caller says otherwise.
type CreateArticleParams struct {
	Title      string
	HTML       string
	Department string
	Author     string
	Visibility model.Visibility
	CreatedAt  time.Time
}

// CreateArticle inserts an article and returns the stored row.
func (q *Queries) CreateArticle(ctx context.Context, arg CreateArticleParams) (model.Article, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO articles (title, html, department, author, visible, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+articleColumns,
		arg.Title, arg.HTML, arg.Department, arg.Author,
		model.EncodeVisibility(arg.Visibility), arg.CreatedAt)
	return scanArticle(row)
}

// UpdateArticleParams holds the fields overwritten by a full update.
// Author is re-derived by the caller from the acting session, never taken
// from client input.
type UpdateArticleParams struct {
	ID         int64
	Title      string
	HTML       string
	Department string
	Author     string
}

// UpdateArticle overwrites title, html, department and author on the
// targeted article.
func (q *Queries) UpdateArticle(ctx context.Context, arg UpdateArticleParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE articles SET title = ?, html = ?, department = ?, author = ?
		WHERE id = ?`,
		arg.Title, arg.HTML, arg.Department, arg.Author, arg.ID)
	return err
}

// UpdateArticleVisibilityParams holds the fields for a visibility change.
type UpdateArticleVisibilityParams struct {
	ID         int64
	Visibility model.Visibility
}

// UpdateArticleVisibility persists one of the two canonical visibility
// strings. Idempotent: setting the current state is not an error.
func (q *Queries) UpdateArticleVisibility(ctx context.Context, arg UpdateArticleVisibilityParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE articles SET visible = ? WHERE id = ?`,
		model.EncodeVisibility(arg.Visibility), arg.ID)
	return err
}

// DeleteArticle removes an article by id. Deleting a missing id is not an
// error.
func (q *Queries) DeleteArticle(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	return err
}
