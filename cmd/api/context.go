// cmd/api/context.go
// Helpers for carrying the resolved identity through the request context.
package main

import (
	"context"
	"net/http"

	"github.com/aoideee/bookcatalog/internal/data"
)

// contextKey is a private type so our context keys can never collide with
// keys set by other packages.
type contextKey string

// userContextKey is the key under which the resolved *data.User is stored.
const userContextKey = contextKey("user")

// contextSetUser returns a copy of the request with user stored in its context.
func (app *applicationDependencies) contextSetUser(r *http.Request, user *data.User) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	return r.WithContext(ctx)
}

// contextGetUser retrieves the resolved user from the request context.
// The authenticate middleware runs on every request, so a missing value means
// a programming error rather than an unauthenticated caller.
func (app *applicationDependencies) contextGetUser(r *http.Request) *data.User {
	user, ok := r.Context().Value(userContextKey).(*data.User)
	if !ok {
		panic("missing user value in request context")
	}
	return user
}
