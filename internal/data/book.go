// Package data provides the data models and database interaction logic
// for the book catalog service.
package data

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aoideee/bookcatalog/internal/validator"
)

// Genres is the fixed set of genres a book may belong to.
var Genres = []string{"Fiction", "Non-Fiction", "Science", "History"}

// MinPublishedYear is the earliest publication year the catalog accepts.
const MinPublishedYear = 1800

// Book represents a single book record stored in the database, together with
// its full set of authors. The model layer always returns books with the
// Authors slice populated; there is no lazy association loading.
type Book struct {
	ID            int64     `json:"id"`             // Unique identifier assigned by the database
	Title         string    `json:"title"`          // Title of the book
	Genre         string    `json:"genre"`          // One of the values in Genres
	PublishedYear int       `json:"published_year"` // Year the book was published
	Authors       []Author  `json:"authors"`        // All authors of the book (order not significant)
	CreatedAt     time.Time `json:"created_at"`     // Timestamp when the record was created
	UpdatedAt     time.Time `json:"updated_at"`     // Timestamp when the record was last modified
}

// CreateBookInput holds the fields a client must supply when creating a new book.
// Authors is a list of author names; each is resolved to an existing author
// record or a new one is created.
type CreateBookInput struct {
	Title         string   `json:"title"`
	Genre         string   `json:"genre"`
	PublishedYear int      `json:"published_year"`
	Authors       []string `json:"authors"`
}

// UpdateBookInput holds the fields a client may supply when partially updating
// a book. Every field is a pointer so we can distinguish between "not provided"
// (nil) and "intentionally set". Supplying Authors, even as an empty list,
// replaces the book's entire author set.
type UpdateBookInput struct {
	Title         *string   `json:"title"`
	Genre         *string   `json:"genre"`
	PublishedYear *int      `json:"published_year"`
	Authors       *[]string `json:"authors"`
}

// ValidateBook checks the field-level rules shared by direct creation, form
// submission, and bulk import: a non-blank title, a recognized genre, a
// publication year between MinPublishedYear and the current calendar year,
// and a non-blank name for every author.
func ValidateBook(v *validator.Validator, book *Book) {
	v.Check(validator.NotBlank(book.Title), "title", "must be provided")
	v.Check(validator.In(book.Genre, Genres...), "genre", "must be one of Fiction, Non-Fiction, Science, History")
	v.Check(book.PublishedYear >= MinPublishedYear, "published_year", fmt.Sprintf("must be %d or later", MinPublishedYear))
	v.Check(book.PublishedYear <= time.Now().Year(), "published_year", "must not be in the future")
	for _, author := range book.Authors {
		v.Check(validator.NotBlank(author.Name), "authors", "author names must be non-empty")
	}
}

// BookModel wraps a *sql.DB connection and provides methods for creating,
// reading, updating, and deleting book records and their author associations.
type BookModel struct {
	DB *sql.DB // Shared database connection pool
}

// Insert adds a new book record and its author associations in a single
// transaction. Each name in authorNames is resolved to an existing author or
// a new author row is created. After a successful insert the database-assigned
// ID, timestamps, and resolved authors are written back into the book struct.
func (m BookModel) Insert(book *Book, authorNames []string) error {
	tx, err := m.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO books (title, genre, published_year)
		VALUES ($1, $2, $3)
		RETURNING book_id, created_at, updated_at`

	err = tx.QueryRow(query, book.Title, book.Genre, book.PublishedYear).
		Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return err
	}

	authors, err := resolveAuthors(tx, authorNames)
	if err != nil {
		return err
	}

	err = linkAuthors(tx, book.ID, authors)
	if err != nil {
		return err
	}

	book.Authors = authors
	return tx.Commit()
}

// Get retrieves a single book by its primary key, with its authors eagerly
// loaded. Returns ErrRecordNotFound if no book with the given id exists.
func (m BookModel) Get(id int64) (*Book, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT book_id, title, genre, published_year, created_at, updated_at
		FROM books
		WHERE book_id = $1`

	var book Book
	err := m.DB.QueryRow(query, id).Scan(
		&book.ID,
		&book.Title,
		&book.Genre,
		&book.PublishedYear,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	authorsByBook, err := m.authorsForBooks([]int64{book.ID})
	if err != nil {
		return nil, err
	}
	book.Authors = authorsByBook[book.ID]
	if book.Authors == nil {
		book.Authors = []Author{}
	}

	return &book, nil
}

// GetAll retrieves a paginated, sorted list of books with their authors
// eagerly attached. It uses a COUNT(*) OVER() window function so the page and
// the total count need only one round-trip; the authors for the whole page
// are then fetched in a single second query.
// Returns the book slice and pagination Metadata.
func (m BookModel) GetAll(filters Filters) ([]*Book, Metadata, error) {
	// Build query dynamically using the validated sort column and direction.
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), book_id, title, genre, published_year, created_at, updated_at
		FROM books
		ORDER BY %s %s, book_id ASC
		LIMIT $1 OFFSET $2`, filters.sortColumn(), filters.sortDirection())

	rows, err := m.DB.Query(query, filters.limit(), filters.offset())
	if err != nil {
		return nil, Metadata{}, err
	}
	// Always close the result set when we are done to free the database connection.
	defer rows.Close()

	totalRecords := 0
	books := []*Book{}
	bookIDs := []int64{}

	for rows.Next() {
		var book Book
		err := rows.Scan(
			&totalRecords, // COUNT(*) OVER() – same value on every row
			&book.ID,
			&book.Title,
			&book.Genre,
			&book.PublishedYear,
			&book.CreatedAt,
			&book.UpdatedAt,
		)
		if err != nil {
			return nil, Metadata{}, err
		}
		book.Authors = []Author{}
		books = append(books, &book)
		bookIDs = append(bookIDs, book.ID)
	}

	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	// Attach the authors for every book on this page.
	if len(bookIDs) > 0 {
		authorsByBook, err := m.authorsForBooks(bookIDs)
		if err != nil {
			return nil, Metadata{}, err
		}
		for _, book := range books {
			if authors, ok := authorsByBook[book.ID]; ok {
				book.Authors = authors
			}
		}
	}

	metadata := calculateMetadata(totalRecords, filters.Skip, filters.Limit)
	return books, metadata, nil
}

// Count returns the total number of books in the catalog. The web UI uses it
// for its pagination math.
func (m BookModel) Count() (int, error) {
	var count int
	err := m.DB.QueryRow(`SELECT count(*) FROM books`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Update saves the modified fields of book back to the database. The caller
// (handler) is responsible for the read-modify-write of partial updates; this
// method always writes the full row. When authorNames is non-nil the book's
// author associations are fully replaced — an empty slice clears them — using
// the same resolve-or-create logic as Insert, all in one transaction.
// Returns ErrRecordNotFound if the book no longer exists.
func (m BookModel) Update(book *Book, authorNames *[]string) error {
	tx, err := m.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE books
		SET title = $1, genre = $2, published_year = $3, updated_at = CURRENT_TIMESTAMP
		WHERE book_id = $4
		RETURNING updated_at`

	err = tx.QueryRow(query, book.Title, book.Genre, book.PublishedYear, book.ID).
		Scan(&book.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	if authorNames != nil {
		_, err = tx.Exec(`DELETE FROM book_authors WHERE book_id = $1`, book.ID)
		if err != nil {
			return err
		}

		authors, err := resolveAuthors(tx, *authorNames)
		if err != nil {
			return err
		}

		err = linkAuthors(tx, book.ID, authors)
		if err != nil {
			return err
		}

		book.Authors = authors
	}

	return tx.Commit()
}

// Delete removes the book with the given id from the database. The
// book_authors join rows are removed by the ON DELETE CASCADE constraint.
// Returns ErrRecordNotFound if no matching record exists, so a second delete
// of the same id reports not-found rather than failing.
func (m BookModel) Delete(id int64) error {
	// Guard against obviously bad IDs before touching the database.
	if id < 1 {
		return ErrRecordNotFound
	}

	query := `DELETE FROM books WHERE book_id = $1`

	result, err := m.DB.Exec(query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	// If no rows were deleted, the book didn't exist.
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}

	return nil
}
