// cmd/api/handlers.go
// This file contains the JSON API handlers for the books resource, plus the
// healthcheck. Each handler is a method on *applicationDependencies so it has
// access to the logger, models, and auth services.
package main

import (
	"errors"
	"net/http"

	"github.com/aoideee/bookcatalog/internal/data"
	"github.com/aoideee/bookcatalog/internal/validator"
)

// healthcheckHandler handles GET /v1/healthcheck.
// It reports the service status, runtime environment, and version.
func (app *applicationDependencies) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	payload := envelope{
		"status": "available",
		"system_info": map[string]string{
			"environment": app.config.environment,
			"version":     appVersion,
		},
	}

	err := app.writeJSON(w, http.StatusOK, payload, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createBookHandler handles POST /v1/books (authenticated callers only).
// It reads a JSON body containing the new book's details and author names,
// validates the shared field rules, inserts the book together with its
// resolved author associations, and responds with the created book and a
// 201 Created status.
func (app *applicationDependencies) createBookHandler(w http.ResponseWriter, r *http.Request) {
	var input data.CreateBookInput

	// Decode the incoming JSON body into our input struct using the safe readJSON helper.
	// readJSON enforces a 1MB limit, rejects unknown fields, and ensures a single value.
	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// Map the input fields onto a new Book struct. The author names ride along
	// as Author values so the shared validation can inspect them.
	book := &data.Book{
		Title:         input.Title,
		Genre:         input.Genre,
		PublishedYear: input.PublishedYear,
	}
	for _, name := range input.Authors {
		book.Authors = append(book.Authors, data.Author{Name: name})
	}

	v := validator.New()
	data.ValidateBook(v, book)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	// Persist the book and its author associations in one transaction.
	// Insert() writes the generated ID, timestamps, and resolved authors back
	// into book.
	err = app.models.Books.Insert(book, input.Authors)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	// Respond with the fully-populated book and a 201 Created status.
	err = app.writeJSON(w, http.StatusCreated, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showBookHandler handles GET /v1/books/:id.
// It parses the :id URL parameter and returns the matching book with its
// authors eagerly loaded. Responds 404 if no book with that ID exists.
func (app *applicationDependencies) showBookHandler(w http.ResponseWriter, r *http.Request) {
	// readIDParam extracts and validates the :id URL parameter.
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	book, err := app.models.Books.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listBooksHandler handles GET /v1/books.
// Supported query parameters: skip, limit, sort_by (title or published_year;
// anything else falls back to storage order), and order (asc or desc).
// The response includes pagination metadata alongside the book list.
func (app *applicationDependencies) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	filters := data.Filters{
		Skip:         app.readInt(qs, "skip", 0),
		Limit:        app.readInt(qs, "limit", 10),
		SortBy:       app.readString(qs, "sort_by", ""),
		Order:        app.readString(qs, "order", "asc"),
		SortSafeList: []string{"title", "published_year"},
	}

	// Clamp obviously bad pagination values rather than erroring.
	if filters.Skip < 0 {
		filters.Skip = 0
	}
	if filters.Limit < 1 || filters.Limit > 100 {
		filters.Limit = 10
	}

	books, metadata, err := app.models.Books.GetAll(filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"books": books, "metadata": metadata}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateBookHandler handles PATCH /v1/books/:id (authenticated callers only).
// It reads a partial JSON body (UpdateBookInput), fetches the existing book,
// applies only the non-nil fields from the input, revalidates, and saves the
// changes. Supplying authors — even as an empty list — replaces the book's
// entire author set. Responds 404 if the book does not exist.
func (app *applicationDependencies) updateBookHandler(w http.ResponseWriter, r *http.Request) {
	// Parse and validate the :id URL parameter.
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	book, err := app.models.Books.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	// Decode the partial update fields from the request body.
	var input data.UpdateBookInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// Apply only the fields that were actually provided in the request body.
	// Each field is a pointer; nil means "not provided, leave as-is".
	if input.Title != nil {
		book.Title = *input.Title
	}
	if input.Genre != nil {
		book.Genre = *input.Genre
	}
	if input.PublishedYear != nil {
		book.PublishedYear = *input.PublishedYear
	}
	if input.Authors != nil {
		book.Authors = []data.Author{}
		for _, name := range *input.Authors {
			book.Authors = append(book.Authors, data.Author{Name: name})
		}
	}

	v := validator.New()
	data.ValidateBook(v, book)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	// Persist the updated book; the author set is replaced only when the
	// request actually supplied one.
	err = app.models.Books.Update(book, input.Authors)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	// Respond with the updated book.
	err = app.writeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteBookHandler handles DELETE /v1/books/:id (authenticated callers only).
// It parses the :id URL parameter, deletes the matching record and its author
// associations, and responds with a confirmation message.
// Responds 404 if no book with that ID exists, so deleting twice is safe.
func (app *applicationDependencies) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	// Parse and validate the :id URL parameter.
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.models.Books.Delete(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	// Respond with a success message.
	err = app.writeJSON(w, http.StatusOK, envelope{"message": "book successfully deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
