// internal/transfer/export.go
package transfer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/aoideee/bookcatalog/internal/data"
)

// exportBook is the serialized shape of one book in a JSON export. It carries
// only the catalog fields, not the record timestamps, so an export can be
// re-imported as-is.
type exportBook struct {
	ID            int64         `json:"id"`
	Title         string        `json:"title"`
	Genre         string        `json:"genre"`
	PublishedYear int           `json:"published_year"`
	Authors       []data.Author `json:"authors"`
}

// Export serializes books into the requested format and returns the payload
// together with the attachment filename the client should save it as.
// "csv" produces a header row and one row per book with the authors cell as a
// comma-joined list of names; any other format value produces JSON.
func Export(books []*data.Book, format string) ([]byte, string, error) {
	if strings.EqualFold(format, "csv") {
		payload, err := exportCSV(books)
		return payload, "books.csv", err
	}
	payload, err := exportJSON(books)
	return payload, "books.json", err
}

func exportJSON(books []*data.Book) ([]byte, error) {
	out := make([]exportBook, 0, len(books))
	for _, book := range books {
		authors := book.Authors
		if authors == nil {
			authors = []data.Author{}
		}
		out = append(out, exportBook{
			ID:            book.ID,
			Title:         book.Title,
			Genre:         book.Genre,
			PublishedYear: book.PublishedYear,
			Authors:       authors,
		})
	}
	return json.Marshal(out)
}

func exportCSV(books []*data.Book) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	err := writer.Write([]string{"id", "title", "genre", "published_year", "authors"})
	if err != nil {
		return nil, err
	}

	for _, book := range books {
		names := make([]string, 0, len(book.Authors))
		for _, author := range book.Authors {
			names = append(names, author.Name)
		}
		err := writer.Write([]string{
			strconv.FormatInt(book.ID, 10),
			book.Title,
			book.Genre,
			strconv.Itoa(book.PublishedYear),
			strings.Join(names, ", "),
		})
		if err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
