// internal/data/schema.go
// Initial table creation. There is no migration tooling in this project; the
// schema is created on startup if it does not already exist.
package data

import "database/sql"

// InitSchema creates the users, authors, books, and book_authors tables if
// they are missing. The unique constraints on users.username and authors.name
// back the application-level duplicate checks, and the ON DELETE CASCADE on
// book_authors keeps join rows from outliving their book.
func InitSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id bigserial PRIMARY KEY,
			username text UNIQUE NOT NULL,
			password_hash bytea NOT NULL,
			is_admin boolean NOT NULL DEFAULT false,
			created_at timestamp(0) with time zone NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS authors (
			author_id bigserial PRIMARY KEY,
			name text UNIQUE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS books (
			book_id bigserial PRIMARY KEY,
			title text NOT NULL,
			genre text NOT NULL,
			published_year integer NOT NULL,
			created_at timestamp(0) with time zone NOT NULL DEFAULT now(),
			updated_at timestamp(0) with time zone NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS book_authors (
			book_id bigint NOT NULL REFERENCES books (book_id) ON DELETE CASCADE,
			author_id bigint NOT NULL REFERENCES authors (author_id),
			PRIMARY KEY (book_id, author_id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
