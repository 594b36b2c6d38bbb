// internal/data/models.go
package data

import (
	"database/sql"
	"errors"
	"math"
)

// Models is a top-level container that groups all database model types together.
// It is passed around the application via applicationDependencies so every handler
// has access to the database without importing sql directly.
type Models struct {
	Books BookModel // Handles the books table and the book_authors join table
	Users UserModel // Handles the users table
}

// NewModels constructs a Models value wired up to the given database connection pool.
// Call this once during application startup and store the result in applicationDependencies.
func NewModels(db *sql.DB) Models {
	return Models{
		Books: BookModel{DB: db},
		Users: UserModel{DB: db},
	}
}

// Sentinel errors returned by the model layer. Handlers match on these with
// errors.Is and translate them into the appropriate HTTP responses.
var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateAuthor   = errors.New("duplicate author")
)

// Filters holds pagination and sorting parameters extracted from URL query strings.
type Filters struct {
	Skip         int      // Number of records to skip from the start of the result set
	Limit        int      // Maximum number of records to return
	SortBy       string   // Column name to sort by; anything outside SortSafeList falls back to storage order
	Order        string   // "asc" or "desc"; anything else is treated as "asc"
	SortSafeList []string // Allowed sort columns to prevent SQL injection
}

// sortColumn returns the validated column name for ORDER BY. An unrecognized
// SortBy value falls back to book_id, the storage-default order.
func (f Filters) sortColumn() string {
	for _, safe := range f.SortSafeList {
		if f.SortBy == safe {
			return f.SortBy
		}
	}
	return "book_id"
}

// sortDirection returns "ASC" or "DESC" based on the Order value.
func (f Filters) sortDirection() string {
	if f.Order == "desc" {
		return "DESC"
	}
	return "ASC"
}

// limit returns the SQL LIMIT value.
func (f Filters) limit() int { return f.Limit }

// offset returns the SQL OFFSET value.
func (f Filters) offset() int { return f.Skip }

// Metadata contains pagination information returned alongside list responses.
type Metadata struct {
	CurrentPage  int `json:"current_page,omitempty"`
	PageSize     int `json:"page_size,omitempty"`
	FirstPage    int `json:"first_page,omitempty"`
	LastPage     int `json:"last_page,omitempty"`
	TotalRecords int `json:"total_records,omitempty"`
}

// calculateMetadata computes page metadata from the total record count and the
// skip/limit values used for the query.
func calculateMetadata(totalRecords, skip, limit int) Metadata {
	if totalRecords == 0 || limit < 1 {
		return Metadata{}
	}
	return Metadata{
		CurrentPage:  (skip / limit) + 1,
		PageSize:     limit,
		FirstPage:    1,
		LastPage:     int(math.Ceil(float64(totalRecords) / float64(limit))),
		TotalRecords: totalRecords,
	}
}
