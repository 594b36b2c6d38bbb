// Package transfer implements the bulk import/export pipeline that converts
// between the persisted catalog and CSV/JSON file representations.
//
// The two import formats deliberately use different failure strategies:
//
//   - CSV is partial-tolerant: a row that fails validation or persistence is
//     skipped and the batch continues.
//   - JSON is all-or-abort: a payload that fails to decode imports nothing,
//     and a record that fails mid-batch aborts the remaining records (rows
//     already inserted stay committed).
package transfer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aoideee/bookcatalog/internal/data"
	"github.com/aoideee/bookcatalog/internal/validator"
)

// Errors returned by Import. Handlers translate both into 400 responses.
var (
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrMalformedPayload  = errors.New("malformed JSON payload")
)

// Catalog is the slice of the model layer the pipeline needs. data.BookModel
// satisfies it; tests substitute an in-memory implementation.
type Catalog interface {
	Insert(book *data.Book, authorNames []string) error
}

// Pipeline parses uploaded catalog files into validated book records and
// persists them.
type Pipeline struct {
	catalog Catalog
}

// NewPipeline returns a Pipeline that persists imported books via catalog.
func NewPipeline(catalog Catalog) *Pipeline {
	return &Pipeline{catalog: catalog}
}

// ImportResult reports what happened to a batch: how many records were
// persisted and, for the CSV path, how many rows were skipped.
type ImportResult struct {
	Imported int
	Skipped  int
}

// Import dispatches on the uploaded filename's extension and runs the
// matching import strategy. Any extension other than .csv or .json fails
// immediately with ErrUnsupportedFormat; no partial processing is attempted.
func (p *Pipeline) Import(filename string, r io.Reader) (ImportResult, error) {
	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".csv"):
		return p.importCSV(r)
	case strings.HasSuffix(strings.ToLower(filename), ".json"):
		return p.importJSON(r)
	default:
		return ImportResult{}, ErrUnsupportedFormat
	}
}

// csvColumns are the header names an import file must provide. Extra columns
// (such as the id column produced by export) are ignored.
var csvColumns = []string{"title", "genre", "published_year", "authors"}

// importCSV is the partial-tolerant strategy: every row is validated and
// persisted independently, and a bad row only increments the skip count.
func (p *Pipeline) importCSV(r io.Reader) (ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows; they fail per-row below
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		// An empty or unreadable file imports nothing; the CSV path never
		// aborts the request.
		return ImportResult{}, nil
	}

	// Map the expected columns to their positions in this file's header.
	columns := make(map[string]int)
	for i, name := range header {
		columns[strings.TrimSpace(strings.ToLower(name))] = i
	}

	var result ImportResult

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Skipped++
			continue
		}

		row := make(map[string]string, len(csvColumns))
		ok := true
		for _, col := range csvColumns {
			idx, found := columns[col]
			if !found || idx >= len(record) {
				ok = false
				break
			}
			row[col] = record[idx]
		}
		if !ok {
			result.Skipped++
			continue
		}

		err = p.importRecord(row["title"], row["genre"], row["published_year"], SplitAuthors(row["authors"]))
		if err != nil {
			result.Skipped++
			continue
		}
		result.Imported++
	}

	return result, nil
}

// jsonBook is the shape of one record in a JSON import payload.
type jsonBook struct {
	Title         string      `json:"title"`
	Genre         string      `json:"genre"`
	PublishedYear int         `json:"published_year"`
	Authors       jsonAuthors `json:"authors"`
}

// jsonAuthors accepts the two author encodings found in the wild: a plain
// list of name strings, or a list of {id, name} objects as produced by the
// JSON export. Both normalize to a list of names.
type jsonAuthors []string

func (a *jsonAuthors) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err == nil {
		*a = names
		return nil
	}

	var records []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &records); err != nil {
		return err
	}

	names = make([]string, 0, len(records))
	for _, rec := range records {
		names = append(names, rec.Name)
	}
	*a = names
	return nil
}

// importJSON is the all-or-abort strategy. A payload that is not a valid JSON
// array of records imports nothing and reports ErrMalformedPayload. Once
// decoding has succeeded, records are persisted in order, and the first
// record-level validation or persistence failure aborts the rest of the
// batch; records inserted before the failure remain committed.
func (p *Pipeline) importJSON(r io.Reader) (ImportResult, error) {
	var books []jsonBook

	err := json.NewDecoder(r).Decode(&books)
	if err != nil {
		return ImportResult{}, ErrMalformedPayload
	}

	var result ImportResult

	for _, item := range books {
		err := p.importRecord(item.Title, item.Genre, strconv.Itoa(item.PublishedYear), item.Authors)
		if err != nil {
			return result, err
		}
		result.Imported++
	}

	return result, nil
}

// importRecord applies the catalog's shared field validation to one parsed
// record and persists it. The year arrives as a string because the CSV path
// has no typed cells.
func (p *Pipeline) importRecord(title, genre, year string, authors []string) error {
	publishedYear, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return fmt.Errorf("invalid published_year %q", year)
	}

	book := &data.Book{
		Title:         strings.TrimSpace(title),
		Genre:         strings.TrimSpace(genre),
		PublishedYear: publishedYear,
	}
	for _, name := range authors {
		book.Authors = append(book.Authors, data.Author{Name: name})
	}

	v := validator.New()
	data.ValidateBook(v, book)
	if !v.Valid() {
		return fmt.Errorf("invalid book record: %v", v.Errors)
	}

	return p.catalog.Insert(book, authors)
}

// SplitAuthors splits a comma-separated authors cell into trimmed, non-empty
// names. It is shared with the admin form handlers, which accept authors in
// the same format.
func SplitAuthors(cell string) []string {
	names := []string{}
	for _, name := range strings.Split(cell, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
