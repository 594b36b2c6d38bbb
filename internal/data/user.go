// internal/data/user.go
// User accounts and the anonymous-identity sentinel.
package data

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/aoideee/bookcatalog/internal/validator"
)

// User represents a registered account. The password hash never appears in
// JSON responses.
type User struct {
	ID           int64     `json:"id"`         // Unique identifier assigned by the database
	Username     string    `json:"username"`   // Unique login name
	PasswordHash []byte    `json:"-"`          // bcrypt digest, never serialized
	IsAdmin      bool      `json:"is_admin"`   // Grants access to the /admin surface
	CreatedAt    time.Time `json:"created_at"` // Timestamp when the account was created
}

// AnonymousUser is the identity of every request that carries no valid token.
// Resolving a request never fails: a missing, malformed, expired, or
// unrecognized token all degrade to this sentinel, and the authorization
// middleware decides whether anonymous access is acceptable.
var AnonymousUser = &User{}

// IsAnonymous reports whether u is the AnonymousUser sentinel.
func (u *User) IsAnonymous() bool {
	return u == AnonymousUser
}

// ValidateUser checks registration input: a non-blank username of sane length
// and a password long enough to be worth hashing but within bcrypt's 72-byte
// input limit.
func ValidateUser(v *validator.Validator, username, password string) {
	v.Check(validator.NotBlank(username), "username", "must be provided")
	v.Check(len(username) <= 100, "username", "must not be more than 100 characters long")
	v.Check(len(password) >= 8, "password", "must be at least 8 characters long")
	v.Check(len(password) <= 72, "password", "must not be more than 72 characters long")
}

// UserModel wraps a *sql.DB connection and provides methods for creating and
// looking up user accounts.
type UserModel struct {
	DB *sql.DB // Shared database connection pool
}

// Insert adds a new user record. The database-assigned ID and creation
// timestamp are written back into the user struct. A username that is already
// taken trips the unique constraint and is reported as ErrDuplicateUsername.
func (m UserModel) Insert(user *User) error {
	query := `
		INSERT INTO users (username, password_hash, is_admin)
		VALUES ($1, $2, $3)
		RETURNING user_id, created_at`

	err := m.DB.QueryRow(query, user.Username, user.PasswordHash, user.IsAdmin).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), `unique constraint "users_username_key"`):
			return ErrDuplicateUsername
		default:
			return err
		}
	}

	return nil
}

// GetByUsername retrieves a single user by their unique username.
// Returns ErrRecordNotFound if no such user exists.
func (m UserModel) GetByUsername(username string) (*User, error) {
	query := `
		SELECT user_id, username, password_hash, is_admin, created_at
		FROM users
		WHERE username = $1`

	var user User
	err := m.DB.QueryRow(query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.CreatedAt,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &user, nil
}
