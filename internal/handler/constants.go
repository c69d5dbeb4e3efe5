// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route paths.
const (
	RouteRoot             = "/"
	RouteLogin            = "/login"
	RouteLogout           = "/logout"
	RouteAuthorPortal     = "/authorportal"
	RouteNewArticle       = "/New"
	RouteSubmitArticle    = "/submit-article"
	RouteArticleID        = "/article/{id}"
	RouteBlog             = "/blog"
	RouteToggleVisibility = "/toggle-visibility/{id}"
	RouteDeleteArticle    = "/delete-article/{id}"
	RouteEditArticle      = "/edit-article/{id}"
	RouteUpdateArticle    = "/update-article/{id}"
	RouteContact          = "/contact"
	RouteAbout            = "/about"
)

// HeaderContentType is the canonical Content-Type header name.
const HeaderContentType = "Content-Type"
