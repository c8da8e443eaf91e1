package search

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booklendapp/booklend-server/internal/domain"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) (*Index, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "search-test-*")
	require.NoError(t, err)

	index, err := NewIndex(Options{
		DataPath: tmpDir,
		Logger:   nil,
	})
	require.NoError(t, err)

	cleanup := func() {
		_ = index.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return index, cleanup
}

func TestNewIndex(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndex_IndexDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &Document{
		ID:     "copy-123",
		ISBN:   "9780547928227",
		Title:  "The Hobbit",
		Author: "J.R.R. Tolkien",
		State:  "AVAILABLE",
	}

	err := index.IndexDocument(doc)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestIndex_IndexDocuments_Batch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*Document{
		{ID: "copy-1", Title: "Book One"},
		{ID: "copy-2", Title: "Book Two"},
		{ID: "copy-3", Title: "Book Three"},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestIndex_DeleteDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocument(&Document{ID: "copy-123", Title: "Test Book"})
	require.NoError(t, err)

	err = index.DeleteDocument("copy-123")
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearch_ByTitle(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*Document{
		{ID: "copy-1", ISBN: "9780547928227", Title: "The Hobbit", Author: "J.R.R. Tolkien", State: "AVAILABLE"},
		{ID: "copy-2", ISBN: "9780618640157", Title: "The Lord of the Rings", Author: "J.R.R. Tolkien", State: "BORROWED"},
		{ID: "copy-3", ISBN: "9780441013593", Title: "Dune", Author: "Frank Herbert", State: "AVAILABLE"},
	}
	require.NoError(t, index.IndexDocuments(docs))

	params := DefaultParams()
	params.Query = "hobbit"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "copy-1", result.Hits[0].ID)
	assert.Equal(t, "9780547928227", result.Hits[0].ISBN)
}

func TestSearch_ByAuthor(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*Document{
		{ID: "copy-1", Title: "The Hobbit", Author: "J.R.R. Tolkien"},
		{ID: "copy-2", Title: "Dune", Author: "Frank Herbert"},
	}
	require.NoError(t, index.IndexDocuments(docs))

	params := DefaultParams()
	params.Query = "tolkien"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "copy-1", result.Hits[0].ID)
}

func TestSearch_FuzzyTypoTolerance(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexDocument(&Document{ID: "copy-1", Title: "The Hobbit"}))

	params := DefaultParams()
	params.Query = "hobbt" // Missing 'i'

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "copy-1", result.Hits[0].ID)
}

func TestSearch_OnlyAvailable(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*Document{
		{ID: "copy-1", Title: "The Hobbit", State: "AVAILABLE"},
		{ID: "copy-2", Title: "The Hobbit", State: "BORROWED"},
	}
	require.NoError(t, index.IndexDocuments(docs))

	params := DefaultParams()
	params.Query = "hobbit"
	params.OnlyAvailable = true

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "copy-1", result.Hits[0].ID)
}

func TestSearch_GenreFilter(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*Document{
		{ID: "copy-1", Title: "The Hobbit", Genres: []string{"fantasy"}},
		{ID: "copy-2", Title: "Dune", Genres: []string{"science-fiction"}},
	}
	require.NoError(t, index.IndexDocuments(docs))

	params := DefaultParams()
	params.Genres = []string{"fantasy"}

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "copy-1", result.Hits[0].ID)
}

func TestSearch_EmptyQueryMatchesAll(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*Document{
		{ID: "copy-1", Title: "The Hobbit"},
		{ID: "copy-2", Title: "Dune"},
	}
	require.NoError(t, index.IndexDocuments(docs))

	result, err := index.Search(context.Background(), DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
}

func TestCopyToDocument(t *testing.T) {
	now := time.Now()
	copy := &domain.Copy{
		ID:        "copy-1",
		ISBN:      "9780547928227",
		Title:     "The Hobbit",
		Author:    "J.R.R. Tolkien",
		State:     domain.CopyStateAvailable,
		Genres:    []string{"fantasy"},
		CreatedAt: now,
		UpdatedAt: now,
	}

	doc := CopyToDocument(copy)
	assert.Equal(t, "copy-1", doc.ID)
	assert.Equal(t, "AVAILABLE", doc.State)
	assert.Equal(t, now.UnixMilli(), doc.CreatedAt)
}
