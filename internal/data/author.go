// internal/data/author.go
// Authors are never created or deleted through their own endpoints; they come
// into existence lazily when a book references a name the catalog has not
// seen before, and they are only ever touched through book associations.
package data

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
)

// Author represents a single author record. Names are globally unique,
// enforced by a database constraint on authors.name.
type Author struct {
	ID   int64  `json:"id"`   // Unique identifier assigned by the database
	Name string `json:"name"` // Author's name, unique across the catalog
}

// resolveAuthors maps each name to an existing author row or creates a new
// one, inside the caller's transaction. Duplicate names in the input are
// collapsed; the returned slice preserves first-seen order. A concurrent
// insert of the same new name trips the unique constraint on authors.name and
// surfaces as ErrDuplicateAuthor rather than silently duplicating the author.
func resolveAuthors(tx *sql.Tx, names []string) ([]Author, error) {
	authors := []Author{}
	seen := make(map[string]bool)

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		var author Author
		err := tx.QueryRow(`SELECT author_id, name FROM authors WHERE name = $1`, name).
			Scan(&author.ID, &author.Name)

		if errors.Is(err, sql.ErrNoRows) {
			err = tx.QueryRow(`INSERT INTO authors (name) VALUES ($1) RETURNING author_id, name`, name).
				Scan(&author.ID, &author.Name)
			if err != nil && strings.Contains(err.Error(), `unique constraint "authors_name_key"`) {
				return nil, ErrDuplicateAuthor
			}
		}
		if err != nil {
			return nil, err
		}

		authors = append(authors, author)
	}

	return authors, nil
}

// linkAuthors inserts one book_authors join row per author, inside the
// caller's transaction.
func linkAuthors(tx *sql.Tx, bookID int64, authors []Author) error {
	for _, author := range authors {
		_, err := tx.Exec(
			`INSERT INTO book_authors (book_id, author_id) VALUES ($1, $2)`,
			bookID, author.ID,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// authorsForBooks fetches the authors for every book in bookIDs with a single
// query, returning them grouped by book ID. This is the eager-join companion
// to Get and GetAll; callers never trigger per-book author queries.
func (m BookModel) authorsForBooks(bookIDs []int64) (map[int64][]Author, error) {
	query := `
		SELECT ba.book_id, a.author_id, a.name
		FROM book_authors ba
		INNER JOIN authors a ON a.author_id = ba.author_id
		WHERE ba.book_id = ANY($1)
		ORDER BY a.name`

	rows, err := m.DB.Query(query, pq.Array(bookIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	authorsByBook := make(map[int64][]Author)

	for rows.Next() {
		var bookID int64
		var author Author
		err := rows.Scan(&bookID, &author.ID, &author.Name)
		if err != nil {
			return nil, err
		}
		authorsByBook[bookID] = append(authorsByBook[bookID], author)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return authorsByBook, nil
}
