// cmd/api/web.go
// Handlers for the server-rendered web surface: the public catalog page and
// the session (login/register/logout) flows. Sessions are just the same
// access tokens the JSON API uses, carried in an httponly cookie.
package main

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/aoideee/bookcatalog/internal/data"
	"github.com/aoideee/bookcatalog/internal/validator"
)

// webPageSize is the number of books shown per page on the catalog page.
const webPageSize = 10

// sessionCookieName is the cookie carrying the web session's access token.
const sessionCookieName = "access_token"

// homePageData is the template data for the public catalog page.
type homePageData struct {
	User       *data.User
	Books      []*data.Book
	Page       int
	TotalPages int
	PrevPage   int
	NextPage   int
	SortBy     string
	Order      string
}

// authPageData is the template data for the login and register pages.
type authPageData struct {
	User    *data.User
	Message string
}

// homePageHandler handles GET /.
// It renders the paginated catalog with optional sorting by title or
// published year.
func (app *applicationDependencies) homePageHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	page := app.readInt(qs, "page", 1)
	if page < 1 {
		page = 1
	}

	filters := data.Filters{
		Skip:         (page - 1) * webPageSize,
		Limit:        webPageSize,
		SortBy:       app.readString(qs, "sort_by", ""),
		Order:        app.readString(qs, "order", "asc"),
		SortSafeList: []string{"title", "published_year"},
	}

	books, _, err := app.models.Books.GetAll(filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	total, err := app.models.Books.Count()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	pageData := homePageData{
		User:       app.contextGetUser(r),
		Books:      books,
		Page:       page,
		TotalPages: (total + webPageSize - 1) / webPageSize,
		PrevPage:   page - 1,
		NextPage:   page + 1,
		SortBy:     filters.SortBy,
		Order:      filters.Order,
	}

	app.render(w, r, http.StatusOK, "index.html", pageData)
}

// loginPageHandler handles GET /login.
// Signed-in users are sent back to the catalog.
func (app *applicationDependencies) loginPageHandler(w http.ResponseWriter, r *http.Request) {
	if !app.contextGetUser(r).IsAnonymous() {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	app.render(w, r, http.StatusOK, "login.html", authPageData{User: data.AnonymousUser})
}

// loginSubmitHandler handles POST /login.
// On success it stores a freshly issued access token in an httponly cookie
// and redirects to the catalog; on failure it re-renders the form with a
// message rather than exposing which part of the credentials was wrong.
func (app *applicationDependencies) loginSubmitHandler(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := app.models.Users.GetByUsername(username)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.render(w, r, http.StatusUnauthorized, "login.html",
				authPageData{User: data.AnonymousUser, Message: "Invalid credentials"})
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if !app.credentials.Verify(password, user.PasswordHash) {
		app.render(w, r, http.StatusUnauthorized, "login.html",
			authPageData{User: data.AnonymousUser, Message: "Invalid credentials"})
		return
	}

	token, err := app.tokens.Issue(user.Username)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(app.config.token.ttl.Seconds()),
	})

	http.Redirect(w, r, "/", http.StatusFound)
}

// registerPageHandler handles GET /register.
// Signed-in users are sent back to the catalog.
func (app *applicationDependencies) registerPageHandler(w http.ResponseWriter, r *http.Request) {
	if !app.contextGetUser(r).IsAnonymous() {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	app.render(w, r, http.StatusOK, "register.html", authPageData{User: data.AnonymousUser})
}

// registerSubmitHandler handles POST /register.
// It creates a regular account and redirects to the login page; validation
// failures and duplicate usernames re-render the form with a message.
func (app *applicationDependencies) registerSubmitHandler(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	v := validator.New()
	data.ValidateUser(v, username, password)
	if !v.Valid() {
		app.render(w, r, http.StatusUnprocessableEntity, "register.html",
			authPageData{User: data.AnonymousUser, Message: validationMessage(v)})
		return
	}

	hash, err := app.credentials.Hash(password)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	user := &data.User{Username: username, PasswordHash: hash}

	err = app.models.Users.Insert(user)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateUsername):
			app.render(w, r, http.StatusConflict, "register.html",
				authPageData{User: data.AnonymousUser, Message: "User already exists"})
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	http.Redirect(w, r, "/login", http.StatusFound)
}

// logoutHandler handles GET /logout.
// Tokens are stateless and cannot be revoked server-side, so logging out just
// clears the session cookie.
func (app *applicationDependencies) logoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/login", http.StatusFound)
}

// validationMessage flattens a validator's field errors into a single line
// suitable for a form banner, with the fields in a stable order.
func validationMessage(v *validator.Validator) string {
	fields := make([]string, 0, len(v.Errors))
	for field := range v.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+" "+v.Errors[field])
	}
	return strings.Join(parts, "; ")
}
