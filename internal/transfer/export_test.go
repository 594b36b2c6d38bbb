package transfer

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoideee/bookcatalog/internal/data"
)

func exportFixture() []*data.Book {
	return []*data.Book{
		{
			ID:            1,
			Title:         "Dune",
			Genre:         "Fiction",
			PublishedYear: 1965,
			Authors:       []data.Author{{ID: 3, Name: "Frank Herbert"}},
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		},
		{
			ID:            2,
			Title:         "Good Omens",
			Genre:         "Fiction",
			PublishedYear: 1990,
			Authors: []data.Author{
				{ID: 4, Name: "Terry Pratchett"},
				{ID: 5, Name: "Neil Gaiman"},
			},
		},
	}
}

func TestExport_JSON(t *testing.T) {
	payload, filename, err := Export(exportFixture(), "json")
	require.NoError(t, err)
	assert.Equal(t, "books.json", filename)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.Len(t, decoded, 2)

	assert.Equal(t, "Dune", decoded[0]["title"])
	assert.Equal(t, float64(1965), decoded[0]["published_year"])
	assert.NotContains(t, decoded[0], "created_at", "exports carry no record timestamps")
	assert.NotContains(t, decoded[0], "updated_at")
}

func TestExport_CSV(t *testing.T) {
	payload, filename, err := Export(exportFixture(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "books.csv", filename)

	records, err := csv.NewReader(strings.NewReader(string(payload))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"id", "title", "genre", "published_year", "authors"}, records[0])
	assert.Equal(t, []string{"1", "Dune", "Fiction", "1965", "Frank Herbert"}, records[1])
	assert.Equal(t, "Terry Pratchett, Neil Gaiman", records[2][4])
}

func TestExport_UnknownFormatFallsBackToJSON(t *testing.T) {
	payload, filename, err := Export(exportFixture(), "yaml")
	require.NoError(t, err)
	assert.Equal(t, "books.json", filename)
	assert.True(t, json.Valid(payload))
}

func TestExport_EmptyCatalog(t *testing.T) {
	payload, _, err := Export(nil, "json")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(payload))

	payload, _, err = Export(nil, "csv")
	require.NoError(t, err)
	assert.Equal(t, "id,title,genre,published_year,authors\n", string(payload))
}

func TestExportThenImportRoundTrip(t *testing.T) {
	catalog := newFakeCatalog()
	pipeline := NewPipeline(catalog)

	for _, format := range []string{"csv", "json"} {
		t.Run(format, func(t *testing.T) {
			catalog.books = nil

			payload, filename, err := Export(exportFixture(), format)
			require.NoError(t, err)

			result, err := pipeline.Import(filename, strings.NewReader(string(payload)))
			require.NoError(t, err)

			assert.Equal(t, 2, result.Imported)
			assert.Equal(t, 0, result.Skipped)
			require.Len(t, catalog.books, 2)
			assert.Equal(t, "Good Omens", catalog.books[1].Title)
			assert.Len(t, catalog.books[1].Authors, 2)
		})
	}
}
