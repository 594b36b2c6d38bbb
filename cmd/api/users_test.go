package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterUserHandler(t *testing.T) {
	app, mock := newTestApplication(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("alice", sqlmock.AnyArg(), false).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "created_at"}).
			AddRow(int64(1), time.Now()))

	body := `{"username": "alice", "password": "s3cret-pass"}`
	r := httptest.NewRequest(http.MethodPost, "/v1/users/register", strings.NewReader(body))
	w := httptest.NewRecorder()
	app.registerUserHandler(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		User struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
			IsAdmin  bool   `json:"is_admin"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "alice", response.User.Username)
	assert.False(t, response.User.IsAdmin, "self-registration never grants admin")
	assert.NotContains(t, w.Body.String(), "password", "the response must not echo credentials")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterUserHandler_ValidationFailure(t *testing.T) {
	app, _ := newTestApplication(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "blank username", body: `{"username": "  ", "password": "s3cret-pass"}`},
		{name: "short password", body: `{"username": "alice", "password": "short"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/v1/users/register", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			app.registerUserHandler(w, r)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		})
	}
}

func TestRegisterUserHandler_DuplicateUsername(t *testing.T) {
	app, mock := newTestApplication(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("alice", sqlmock.AnyArg(), false).
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "users_username_key"`))

	body := `{"username": "alice", "password": "s3cret-pass"}`
	r := httptest.NewRequest(http.MethodPost, "/v1/users/register", strings.NewReader(body))
	w := httptest.NewRecorder()
	app.registerUserHandler(w, r)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginUserHandler(t *testing.T) {
	app, mock := newTestApplication(t)

	hash, err := app.credentials.Hash("s3cret-pass")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "password_hash", "is_admin", "created_at"}).
			AddRow(int64(1), "alice", hash, false, time.Now()))

	body := `{"username": "alice", "password": "s3cret-pass"}`
	r := httptest.NewRequest(http.MethodPost, "/v1/users/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	app.loginUserHandler(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "bearer", response.TokenType)

	// The issued token round-trips through the validator.
	subject, ok := app.tokens.Validate(response.AccessToken)
	assert.True(t, ok)
	assert.Equal(t, "alice", subject)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginUserHandler_RejectsBadCredentials(t *testing.T) {
	app, mock := newTestApplication(t)

	hash, err := app.credentials.Hash("s3cret-pass")
	require.NoError(t, err)

	// Wrong password for an existing account.
	mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "password_hash", "is_admin", "created_at"}).
			AddRow(int64(1), "alice", hash, false, time.Now()))

	body := `{"username": "alice", "password": "wrong-password"}`
	r := httptest.NewRequest(http.MethodPost, "/v1/users/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	app.loginUserHandler(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	wrongPasswordBody := w.Body.String()

	// Unknown account.
	mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	body = `{"username": "ghost", "password": "s3cret-pass"}`
	r = httptest.NewRequest(http.MethodPost, "/v1/users/login", strings.NewReader(body))
	w = httptest.NewRecorder()
	app.loginUserHandler(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Both failures look identical, so the endpoint does not reveal which
	// usernames exist.
	assert.Equal(t, wrongPasswordBody, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
