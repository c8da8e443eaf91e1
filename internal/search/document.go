// Package search provides full-text catalog search using Bleve. Copies
// are indexed by title, author and genre with fuzzy matching so members
// can find a book without knowing its exact ISBN.
package search

import (
	"context"

	"github.com/booklendapp/booklend-server/internal/domain"
)

// Document is the indexed representation of a catalog copy.
type Document struct {
	ID        string   `json:"id"`
	ISBN      string   `json:"isbn"`
	Title     string   `json:"title"`
	Author    string   `json:"author"`
	State     string   `json:"state"`
	Genres    []string `json:"genres,omitempty"`
	CreatedAt int64    `json:"created_at"` // Unix millis
	UpdatedAt int64    `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *Document) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"isbn":       d.ISBN,
		"title":      d.Title,
		"author":     d.Author,
		"state":      d.State,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}

	return m
}

// IndexCopy indexes a catalog copy. Satisfies the store's indexer hook
// so copy writes keep the index current.
func (s *Index) IndexCopy(_ context.Context, copy *domain.Copy) error {
	return s.IndexDocument(CopyToDocument(copy))
}

// DeleteCopy removes a copy from the index.
func (s *Index) DeleteCopy(_ context.Context, copyID string) error {
	return s.DeleteDocument(copyID)
}

// CopyToDocument converts a catalog copy to its indexed form.
func CopyToDocument(copy *domain.Copy) *Document {
	return &Document{
		ID:        copy.ID,
		ISBN:      copy.ISBN,
		Title:     copy.Title,
		Author:    copy.Author,
		State:     string(copy.State),
		Genres:    copy.Genres,
		CreatedAt: copy.CreatedAt.UnixMilli(),
		UpdatedAt: copy.UpdatedAt.UnixMilli(),
	}
}
