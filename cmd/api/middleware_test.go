package main

import (
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aoideee/bookcatalog/internal/auth"
	"github.com/aoideee/bookcatalog/internal/data"
)

// newTestApplication builds an applicationDependencies with a mocked database,
// a real token service, and a logger that discards output.
func newTestApplication(t *testing.T) (*applicationDependencies, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	app := &applicationDependencies{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		models:      data.NewModels(db),
		tokens:      auth.NewTokenService("test-secret", time.Hour),
		credentials: auth.NewCredentialStore(bcrypt.MinCost),
	}
	return app, mock
}

// expectUserLookup queues a successful GetByUsername for the given account.
func expectUserLookup(mock sqlmock.Sqlmock, username string, isAdmin bool) {
	mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
		WithArgs(username).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "password_hash", "is_admin", "created_at"}).
			AddRow(int64(1), username, []byte("digest"), isAdmin, time.Now()))
}

// identityProbe is a terminal handler that records the resolved user.
func identityProbe(app *applicationDependencies, captured **data.User) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*captured = app.contextGetUser(r)
		w.WriteHeader(http.StatusOK)
	}
}

func TestAuthenticate_NoTokenIsAnonymous(t *testing.T) {
	app, _ := newTestApplication(t)

	var user *data.User
	handler := app.authenticate(identityProbe(app, &user))

	r := httptest.NewRequest(http.MethodGet, "/v1/books", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, user)
	assert.True(t, user.IsAnonymous())
}

func TestAuthenticate_BearerHeader(t *testing.T) {
	app, mock := newTestApplication(t)
	expectUserLookup(mock, "alice", false)

	token, err := app.tokens.Issue("alice")
	require.NoError(t, err)

	var user *data.User
	handler := app.authenticate(identityProbe(app, &user))

	r := httptest.NewRequest(http.MethodGet, "/v1/books", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.IsAnonymous())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthenticate_SessionCookie(t *testing.T) {
	app, mock := newTestApplication(t)
	expectUserLookup(mock, "alice", false)

	token, err := app.tokens.Issue("alice")
	require.NoError(t, err)

	var user *data.User
	handler := app.authenticate(identityProbe(app, &user))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthenticate_HeaderWinsOverCookie(t *testing.T) {
	app, mock := newTestApplication(t)
	expectUserLookup(mock, "header-user", false)

	headerToken, err := app.tokens.Issue("header-user")
	require.NoError(t, err)
	cookieToken, err := app.tokens.Issue("cookie-user")
	require.NoError(t, err)

	var user *data.User
	handler := app.authenticate(identityProbe(app, &user))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+headerToken)
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: cookieToken})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.NotNil(t, user)
	assert.Equal(t, "header-user", user.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthenticate_BadTokensDegradeToAnonymous(t *testing.T) {
	app, mock := newTestApplication(t)

	expired, err := app.tokens.IssueWithTTL("alice", -time.Minute)
	require.NoError(t, err)

	foreign, err := auth.NewTokenService("other-secret", time.Hour).Issue("alice")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "expired", token: expired},
		{name: "wrong secret", token: foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var user *data.User
			handler := app.authenticate(identityProbe(app, &user))

			r := httptest.NewRequest(http.MethodGet, "/v1/books", nil)
			r.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			// No user lookup happens and the request is not rejected.
			assert.Equal(t, http.StatusOK, w.Code)
			require.NotNil(t, user)
			assert.True(t, user.IsAnonymous())
		})
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthenticate_UnknownSubjectIsAnonymous(t *testing.T) {
	app, mock := newTestApplication(t)

	// The token is valid but the account it names has since been removed.
	mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	token, err := app.tokens.Issue("ghost")
	require.NoError(t, err)

	var user *data.User
	handler := app.authenticate(identityProbe(app, &user))

	r := httptest.NewRequest(http.MethodGet, "/v1/books", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, user)
	assert.True(t, user.IsAnonymous())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequireAuthenticated(t *testing.T) {
	app, mock := newTestApplication(t)

	next := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }
	handler := app.authenticate(app.requireAuthenticated(next))

	// Anonymous caller is rejected with 401.
	r := httptest.NewRequest(http.MethodPost, "/v1/books", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// An authenticated caller passes through.
	expectUserLookup(mock, "alice", false)
	token, err := app.tokens.Issue("alice")
	require.NoError(t, err)

	r = httptest.NewRequest(http.MethodPost, "/v1/books", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequireAdmin(t *testing.T) {
	app, mock := newTestApplication(t)

	next := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }
	handler := app.authenticate(app.requireAdmin(next))

	// Anonymous caller gets 403, not 401: the admin surface does not
	// distinguish "log in first" from "not allowed".
	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A signed-in non-admin also gets 403.
	expectUserLookup(mock, "alice", false)
	token, err := app.tokens.Issue("alice")
	require.NoError(t, err)

	r = httptest.NewRequest(http.MethodGet, "/admin", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// An admin passes through.
	expectUserLookup(mock, "root", true)
	token, err = app.tokens.Issue("root")
	require.NoError(t, err)

	r = httptest.NewRequest(http.MethodGet, "/admin", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
