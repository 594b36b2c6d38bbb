// cmd/api/routes.go
package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// routes registers all HTTP endpoints and returns the configured router wrapped
// in the recoverPanic, rateLimit, and authenticate middlewares.
//
// Middleware chain (outermost → innermost):
//
//	recoverPanic → rateLimit → authenticate → router
//
// authenticate resolves the caller's identity for every request (silently
// degrading to anonymous), so the per-route requireAuthenticated and
// requireAdmin guards only have to inspect the request context.
//
// Current endpoints:
//
//	JSON API:
//	  GET    /v1/healthcheck         – service status
//	  POST   /v1/users/register      – create an account
//	  POST   /v1/users/login         – exchange credentials for a token
//	  POST   /v1/books               – create a new book (authenticated)
//	  GET    /v1/books               – list books (paginated, sortable)
//	  GET    /v1/books/:id           – retrieve a single book by ID
//	  PATCH  /v1/books/:id           – partially update a book (authenticated)
//	  DELETE /v1/books/:id           – delete a book by ID (authenticated)
//
//	Web UI:
//	  GET    /                       – paginated catalog page
//	  GET/POST /login, /register     – session forms (httponly cookie)
//	  GET    /logout                 – clear the session cookie
//
//	Admin UI (admin only):
//	  GET    /admin                  – book management table
//	  GET/POST /admin/books/create   – create via form
//	  GET/POST /admin/books/edit/:id – edit via form
//	  POST   /admin/books/delete/:id – delete via form
//	  GET    /admin/export           – download the catalog as JSON or CSV
//	  POST   /admin/import           – upload a CSV or JSON file
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	// Override the default httprouter error handlers to return JSON responses.
	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)

	// User account routes
	router.HandlerFunc(http.MethodPost, "/v1/users/register", app.registerUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/users/login", app.loginUserHandler)

	// Book CRUD routes; every mutating route requires an authenticated caller.
	router.HandlerFunc(http.MethodPost, "/v1/books", app.requireAuthenticated(app.createBookHandler))
	router.HandlerFunc(http.MethodGet, "/v1/books/:id", app.showBookHandler)
	router.HandlerFunc(http.MethodGet, "/v1/books", app.listBooksHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/books/:id", app.requireAuthenticated(app.updateBookHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/books/:id", app.requireAuthenticated(app.deleteBookHandler))

	// Server-rendered web UI
	router.HandlerFunc(http.MethodGet, "/", app.homePageHandler)
	router.HandlerFunc(http.MethodGet, "/login", app.loginPageHandler)
	router.HandlerFunc(http.MethodPost, "/login", app.loginSubmitHandler)
	router.HandlerFunc(http.MethodGet, "/register", app.registerPageHandler)
	router.HandlerFunc(http.MethodPost, "/register", app.registerSubmitHandler)
	router.HandlerFunc(http.MethodGet, "/logout", app.logoutHandler)

	// Admin surface; every route is gated on an admin account.
	router.HandlerFunc(http.MethodGet, "/admin", app.requireAdmin(app.adminHomeHandler))
	router.HandlerFunc(http.MethodGet, "/admin/books/create", app.requireAdmin(app.adminCreateBookPageHandler))
	router.HandlerFunc(http.MethodPost, "/admin/books/create", app.requireAdmin(app.adminCreateBookSubmitHandler))
	router.HandlerFunc(http.MethodGet, "/admin/books/edit/:id", app.requireAdmin(app.adminEditBookPageHandler))
	router.HandlerFunc(http.MethodPost, "/admin/books/edit/:id", app.requireAdmin(app.adminEditBookSubmitHandler))
	router.HandlerFunc(http.MethodPost, "/admin/books/delete/:id", app.requireAdmin(app.adminDeleteBookHandler))
	router.HandlerFunc(http.MethodGet, "/admin/export", app.requireAdmin(app.adminExportHandler))
	router.HandlerFunc(http.MethodPost, "/admin/import", app.requireAdmin(app.adminImportHandler))

	// Wrap with middleware: recoverPanic is outermost so it catches panics
	// from rateLimit, authenticate, and router alike.
	return app.recoverPanic(app.rateLimit(app.authenticate(router)))
}
