// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/newsdesk-go/internal/auth"
	"github.com/olegiv/newsdesk-go/internal/handler"
	"github.com/olegiv/newsdesk-go/internal/middleware"
	"github.com/olegiv/newsdesk-go/internal/model"
	"github.com/olegiv/newsdesk-go/internal/render"
	"github.com/olegiv/newsdesk-go/internal/session"
	"github.com/olegiv/newsdesk-go/internal/store"
	"github.com/olegiv/newsdesk-go/internal/testutil"
	"github.com/olegiv/newsdesk-go/web"
)

const (
	testEmail    = "reporter@example.com"
	testPassword = "a-strong-test-password"
	testName     = "Riley Reporter"
	testDept     = "Engineering"
)

type testApp struct {
	server  *httptest.Server
	client  *http.Client
	db      *sql.DB
	queries *store.Queries
}

// newTestApp wires the full route table the way the binary does, minus CSRF
// and rate limiting, and returns a client with a cookie jar.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	queries := store.New(db)

	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	now := time.Now()
	_, err = queries.CreateUser(context.Background(), store.CreateUserParams{
		Email:        testEmail,
		PasswordHash: hash,
		Name:         testName,
		Dept:         testDept,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	sm := session.New(db, true)

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("templates fs: %v", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sm,
		IsDev:          true,
	})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	contentFS, err := fs.Sub(web.Content, "content")
	if err != nil {
		t.Fatalf("content fs: %v", err)
	}

	authHandler := handler.NewAuthHandler(db, renderer, sm, nil)
	portalHandler := handler.NewPortalHandler(db, renderer)
	articlesHandler := handler.NewArticlesHandler(db)
	publicHandler := handler.NewPublicHandler(db, renderer, contentFS)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)

	r.Get(handler.RouteRoot, publicHandler.Home)
	r.Get(handler.RouteBlog, publicHandler.Blog)
	r.Get(handler.RouteArticleID, publicHandler.Article)
	r.Get(handler.RouteAbout, publicHandler.About)
	r.Get(handler.RouteContact, publicHandler.Contact)

	r.Get(handler.RouteLogin, authHandler.LoginForm)
	r.Post(handler.RouteLogin, authHandler.Login)
	r.Get(handler.RouteLogout, authHandler.Logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(sm))
		r.Use(middleware.LoadUser(sm, db))
		r.Get(handler.RouteAuthorPortal, portalHandler.Dashboard)
		r.Get(handler.RouteNewArticle, portalHandler.NewForm)
		r.Get(handler.RouteEditArticle, portalHandler.EditForm)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJSON(sm))
		r.Use(middleware.LoadUserJSON(sm, db))
		r.Post(handler.RouteSubmitArticle, articlesHandler.Submit)
		r.Post(handler.RouteToggleVisibility, articlesHandler.ToggleVisibility)
		r.Delete(handler.RouteDeleteArticle, articlesHandler.Delete)
		r.Put(handler.RouteUpdateArticle, articlesHandler.Update)
	})

	r.NotFound(publicHandler.NotFound)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testApp{server: server, client: client, db: db, queries: queries}
}

func (app *testApp) login(t *testing.T) {
	t.Helper()
	resp := app.postForm(t, "/login", url.Values{
		"username": {testEmail},
		"password": {testPassword},
	})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("login status = %d, want 302", resp.StatusCode)
	}
}

func (app *testApp) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := app.client.Get(app.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func (app *testApp) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := app.client.PostForm(app.server.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func (app *testApp) sendJSON(t *testing.T, method, path string, payload any) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshaling payload: %v", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, app.server.URL+path, body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return string(data)
}

func decodeEnvelope(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var envelope map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding JSON envelope: %v", err)
	}
	return envelope
}

func TestLoginSuccess(t *testing.T) {
	app := newTestApp(t)

	resp := app.postForm(t, "/login", url.Values{
		"username": {testEmail},
		"password": {testPassword},
	})
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/authorportal" {
		t.Errorf("Location = %q", loc)
	}

	cookies := app.client.Jar.Cookies(mustParseURL(t, app.server.URL))
	found := false
	for _, c := range cookies {
		if c.Name == "session" {
			found = true
		}
	}
	if !found {
		t.Error("no session cookie after login")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	app := newTestApp(t)

	resp := app.postForm(t, "/login", url.Values{
		"username": {testEmail},
		"password": {"not-the-password"},
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Invalid username or password") {
		t.Error("error message missing from re-rendered login form")
	}
}

func TestLoginUnknownUser(t *testing.T) {
	app := newTestApp(t)

	resp := app.postForm(t, "/login", url.Values{
		"username": {"ghost@example.com"},
		"password": {"whatever"},
	})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestPortalRequiresAuth(t *testing.T) {
	app := newTestApp(t)

	resp := app.get(t, "/authorportal")
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("Location = %q", loc)
	}
}

func TestAPIRequiresAuthJSON(t *testing.T) {
	app := newTestApp(t)

	resp := app.sendJSON(t, http.MethodDelete, "/delete-article/1", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	envelope := decodeEnvelope(t, resp)
	if envelope["success"] != false || envelope["message"] != "Not authenticated" {
		t.Errorf("envelope = %v", envelope)
	}
}

func TestSubmitArticle(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp := app.sendJSON(t, http.MethodPost, "/submit-article", map[string]string{
		"title":      "Deploy Window",
		"html":       "<p>Friday at noon.</p>",
		"department": "Engineering",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	envelope := decodeEnvelope(t, resp)
	if envelope["success"] != true {
		t.Fatalf("envelope = %v", envelope)
	}

	articles, err := app.queries.ListArticles(context.Background())
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("got %d articles", len(articles))
	}
	a := articles[0]
	if a.Title != "Deploy Window" || a.Department != "Engineering" {
		t.Errorf("stored article mismatch: %+v", a)
	}
	// The byline comes from the session profile, and new articles start as
	// drafts.
	if a.Author != testName {
		t.Errorf("author = %q, want %q", a.Author, testName)
	}
	if a.Visibility != model.Draft {
		t.Errorf("visibility = %v, want draft", a.Visibility)
	}
}

func TestSubmitArticleValidation(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	tests := []struct {
		name    string
		payload map[string]string
	}{
		{"missing title", map[string]string{"html": "<p>x</p>", "department": "General"}},
		{"missing content", map[string]string{"title": "T", "department": "General"}},
		{"missing department", map[string]string{"title": "T", "html": "<p>x</p>"}},
		{"unknown department", map[string]string{"title": "T", "html": "<p>x</p>", "department": "Finance"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := app.sendJSON(t, http.MethodPost, "/submit-article", tt.payload)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			envelope := decodeEnvelope(t, resp)
			if envelope["success"] != false {
				t.Errorf("envelope = %v", envelope)
			}
		})
	}

	// Nothing was inserted for any invalid payload.
	articles, err := app.queries.ListArticles(context.Background())
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("invalid submissions created %d articles", len(articles))
	}
}

func TestToggleVisibility(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	a, err := app.queries.CreateArticle(context.Background(), store.CreateArticleParams{
		Title:      "Toggle Me",
		HTML:       "<p>body</p>",
		Department: "General",
		Author:     testName,
		Visibility: model.Draft,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}

	resp := app.sendJSON(t, http.MethodPost, "/toggle-visibility/"+itoa(a.ID), map[string]any{
		"visible": true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	envelope := decodeEnvelope(t, resp)
	if envelope["message"] != "Visibility updated successfully" {
		t.Errorf("message = %v", envelope["message"])
	}

	var raw string
	if err := app.db.QueryRow(`SELECT visible FROM articles WHERE id = ?`, a.ID).Scan(&raw); err != nil {
		t.Fatalf("reading raw visibility: %v", err)
	}
	if raw != "TRUE" {
		t.Errorf("stored visibility = %q, want canonical TRUE", raw)
	}

	// String and numeric forms of the flag are accepted too.
	resp = app.sendJSON(t, http.MethodPost, "/toggle-visibility/"+itoa(a.ID), map[string]any{
		"visible": "false",
	})
	_ = readBody(t, resp)
	if err := app.db.QueryRow(`SELECT visible FROM articles WHERE id = ?`, a.ID).Scan(&raw); err != nil {
		t.Fatalf("reading raw visibility: %v", err)
	}
	if raw != "FALSE" {
		t.Errorf("stored visibility = %q, want canonical FALSE", raw)
	}
}

func TestUpdateArticle(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	a, err := app.queries.CreateArticle(context.Background(), store.CreateArticleParams{
		Title:      "Original",
		HTML:       "<p>old</p>",
		Department: "General",
		Author:     "Someone Else",
		Visibility: model.Published,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}

	resp := app.sendJSON(t, http.MethodPut, "/update-article/"+itoa(a.ID), map[string]string{
		"title":      "Revised",
		"html":       "<p>new</p>",
		"department": "Marketing",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	envelope := decodeEnvelope(t, resp)
	if envelope["redirectUrl"] != "/article/"+itoa(a.ID) {
		t.Errorf("redirectUrl = %v", envelope["redirectUrl"])
	}

	got, err := app.queries.GetArticleByID(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("GetArticleByID: %v", err)
	}
	if got.Title != "Revised" || got.Department != "Marketing" {
		t.Errorf("update not applied: %+v", got)
	}
	// Byline re-derived from the acting session, not kept from before.
	if got.Author != testName {
		t.Errorf("author = %q, want %q", got.Author, testName)
	}
}

func TestUpdateMissingArticle(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp := app.sendJSON(t, http.MethodPut, "/update-article/999999", map[string]string{
		"title":      "T",
		"html":       "<p>x</p>",
		"department": "General",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	_ = readBody(t, resp)
}

func TestDeleteArticle(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	a, err := app.queries.CreateArticle(context.Background(), store.CreateArticleParams{
		Title:      "Doomed",
		HTML:       "<p>x</p>",
		Department: "General",
		Author:     testName,
		Visibility: model.Draft,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}

	resp := app.sendJSON(t, http.MethodDelete, "/delete-article/"+itoa(a.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	envelope := decodeEnvelope(t, resp)
	if envelope["message"] != "Article deleted successfully" {
		t.Errorf("message = %v", envelope["message"])
	}

	articles, err := app.queries.ListArticles(context.Background())
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("%d articles remain after delete", len(articles))
	}
}

func TestArticleDetailNotFound(t *testing.T) {
	app := newTestApp(t)

	resp := app.get(t, "/article/999999")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Article not found") {
		t.Error("not-found page missing message")
	}
	if !strings.Contains(body, "SYSTEM") {
		t.Error("not-found page missing SYSTEM department tag")
	}
}

func TestBlogShowsOnlyPublished(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	_, err := app.queries.CreateArticle(ctx, store.CreateArticleParams{
		Title: "Secret Draft", HTML: "<p>hidden</p>", Department: "General",
		Author: testName, Visibility: model.Draft, CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}
	_, err = app.queries.CreateArticle(ctx, store.CreateArticleParams{
		Title: "Public News", HTML: "<p>visible</p>", Department: "General",
		Author: testName, Visibility: model.Published, CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}

	resp := app.get(t, "/blog")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Public News") {
		t.Error("published article missing from blog")
	}
	if strings.Contains(body, "Secret Draft") {
		t.Error("draft leaked into public blog")
	}
	if !strings.Contains(body, "... Read More") {
		t.Error("public excerpt marker missing")
	}
}

func TestPortalDepartmentScoping(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	for _, dept := range []string{"Engineering", "Marketing", "General"} {
		_, err := app.queries.CreateArticle(ctx, store.CreateArticleParams{
			Title: dept + " Story", HTML: "<p>x</p>", Department: dept,
			Author: testName, Visibility: model.Draft, CreatedAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("CreateArticle: %v", err)
		}
	}

	app.login(t)
	resp := app.get(t, "/authorportal")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := readBody(t, resp)

	if !strings.Contains(body, testName) {
		t.Error("portal missing author name")
	}
	// The Engineering author sees Engineering and General, not Marketing.
	if !strings.Contains(body, "Engineering Story") || !strings.Contains(body, "General Story") {
		t.Error("portal missing in-scope articles")
	}
	if strings.Contains(body, "Marketing Story") {
		t.Error("portal shows out-of-scope department")
	}
}

func TestLoginFormRedirectsWhenAuthenticated(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp := app.get(t, "/login")
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/authorportal" {
		t.Errorf("Location = %q", loc)
	}
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp := app.get(t, "/logout")
	_ = readBody(t, resp)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("logout status = %d, want 303", resp.StatusCode)
	}

	resp = app.get(t, "/authorportal")
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("portal after logout = %d, want redirect", resp.StatusCode)
	}
}

func TestStaticPages(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/about", "/contact"} {
		resp := app.get(t, path)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s = %d", path, resp.StatusCode)
		}
		body := readBody(t, resp)
		if !strings.Contains(body, "<h1") {
			t.Errorf("%s page missing heading", path)
		}
	}
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parsing URL %q: %v", raw, err)
	}
	return u
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
