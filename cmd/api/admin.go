// cmd/api/admin.go
// Handlers for the administrative surface: form-based book management and the
// bulk import/export pipeline. Every route here sits behind requireAdmin.
package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aoideee/bookcatalog/internal/data"
	"github.com/aoideee/bookcatalog/internal/transfer"
	"github.com/aoideee/bookcatalog/internal/validator"
)

const (
	// adminListLimit caps the book table on the admin home page.
	adminListLimit = 100
	// exportLimit caps how many books an export fetches.
	exportLimit = 1000
	// maxImportBytes caps the size of an uploaded import file.
	maxImportBytes = 10 << 20 // 10 MB
)

// adminHomeData is the template data for the admin home page.
type adminHomeData struct {
	User  *data.User
	Books []*data.Book
}

// adminBookFormData is the template data for the create and edit book forms.
type adminBookFormData struct {
	User        *data.User
	Book        *data.Book
	Authors     string // comma-separated author names, as the form expects
	Genres      []string
	CurrentYear int
}

// adminHomeHandler handles GET /admin.
// It renders the book management table with the first hundred books.
func (app *applicationDependencies) adminHomeHandler(w http.ResponseWriter, r *http.Request) {
	books, _, err := app.models.Books.GetAll(data.Filters{Limit: adminListLimit})
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.render(w, r, http.StatusOK, "admin_home.html", adminHomeData{
		User:  app.contextGetUser(r),
		Books: books,
	})
}

// adminCreateBookPageHandler handles GET /admin/books/create.
func (app *applicationDependencies) adminCreateBookPageHandler(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, http.StatusOK, "admin_create_book.html", adminBookFormData{
		User:        app.contextGetUser(r),
		Genres:      data.Genres,
		CurrentYear: time.Now().Year(),
	})
}

// adminCreateBookSubmitHandler handles POST /admin/books/create.
// The authors field is a comma-separated list of names, split and trimmed the
// same way the bulk import does it.
func (app *applicationDependencies) adminCreateBookSubmitHandler(w http.ResponseWriter, r *http.Request) {
	book, authors, err := app.readBookForm(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	data.ValidateBook(v, book)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Books.Insert(book, authors)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	http.Redirect(w, r, "/admin", http.StatusFound)
}

// adminEditBookPageHandler handles GET /admin/books/edit/:id.
// Responds 404 if the book does not exist.
func (app *applicationDependencies) adminEditBookPageHandler(w http.ResponseWriter, r *http.Request) {
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

	names := make([]string, 0, len(book.Authors))
	for _, author := range book.Authors {
		names = append(names, author.Name)
	}

	app.render(w, r, http.StatusOK, "admin_edit_book.html", adminBookFormData{
		User:        app.contextGetUser(r),
		Book:        book,
		Authors:     strings.Join(names, ", "),
		Genres:      data.Genres,
		CurrentYear: time.Now().Year(),
	})
}

// adminEditBookSubmitHandler handles POST /admin/books/edit/:id.
// The form always submits the full set of fields, so the author associations
// are always replaced. Responds 404 if the book does not exist.
func (app *applicationDependencies) adminEditBookSubmitHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	book, authors, err := app.readBookForm(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	book.ID = id

	v := validator.New()
	data.ValidateBook(v, book)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Books.Update(book, &authors)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	http.Redirect(w, r, "/admin", http.StatusFound)
}

// adminDeleteBookHandler handles POST /admin/books/delete/:id.
// Deleting a book that is already gone is not an error on this surface; the
// admin lands back on the table either way.
func (app *applicationDependencies) adminDeleteBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.models.Books.Delete(id)
	if err != nil && !errors.Is(err, data.ErrRecordNotFound) {
		app.serverErrorResponse(w, r, err)
		return
	}

	http.Redirect(w, r, "/admin", http.StatusFound)
}

// adminExportHandler handles GET /admin/export?format=json|csv.
// It serializes up to exportLimit books in storage-default order and tags the
// response for download with an attachment filename.
func (app *applicationDependencies) adminExportHandler(w http.ResponseWriter, r *http.Request) {
	format := app.readString(r.URL.Query(), "format", "json")

	books, _, err := app.models.Books.GetAll(data.Filters{Limit: exportLimit})
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	payload, filename, err := transfer.Export(books, format)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	contentType := "application/json"
	if strings.HasSuffix(filename, ".csv") {
		contentType = "text/csv"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Write(payload)
}

// adminImportHandler handles POST /admin/import.
// It feeds the uploaded file through the transfer pipeline and redirects back
// to the admin table; the admin re-queries the catalog to see the result.
// Unsupported extensions, malformed JSON, and mid-batch JSON failures all
// surface as 400s.
func (app *applicationDependencies) adminImportHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	result, err := app.pipeline.Import(header.Filename, file)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	app.logger.Info("catalog import complete",
		"filename", header.Filename,
		"imported", result.Imported,
		"skipped", result.Skipped,
	)

	http.Redirect(w, r, "/admin", http.StatusFound)
}

// readBookForm parses the shared create/edit form fields into a Book plus the
// raw author names for the association rewrite.
func (app *applicationDependencies) readBookForm(r *http.Request) (*data.Book, []string, error) {
	err := r.ParseForm()
	if err != nil {
		return nil, nil, err
	}

	year, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("published_year")))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid published_year %q", r.PostFormValue("published_year"))
	}

	authors := transfer.SplitAuthors(r.PostFormValue("authors"))

	book := &data.Book{
		Title:         strings.TrimSpace(r.PostFormValue("title")),
		Genre:         r.PostFormValue("genre"),
		PublishedYear: year,
	}
	for _, name := range authors {
		book.Authors = append(book.Authors, data.Author{Name: name})
	}

	return book, authors, nil
}
