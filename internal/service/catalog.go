package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/booklendapp/booklend-server/internal/domain"
	domainerrors "github.com/booklendapp/booklend-server/internal/errors"
	"github.com/booklendapp/booklend-server/internal/id"
	"github.com/booklendapp/booklend-server/internal/search"
	"github.com/booklendapp/booklend-server/internal/store"
	"github.com/booklendapp/booklend-server/internal/validation"
)

// CatalogService manages the copy catalog and its search index.
type CatalogService struct {
	store     *store.Store
	index     *search.Index
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	store *store.Store,
	index *search.Index,
	validator *validation.Validator,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		store:     store,
		index:     index,
		validator: validator,
		logger:    logger,
	}
}

// AddBookRequest registers new physical copies of a title.
type AddBookRequest struct {
	ISBN   string   `json:"isbn" validate:"required"`
	Title  string   `json:"title" validate:"required"`
	Author string   `json:"author" validate:"required"`
	Genres []string `json:"genres,omitempty"`
	Copies int      `json:"copies" validate:"gte=1,lte=100"`
}

// AddBook registers one or more copies of a title in the catalog.
// All copies start AVAILABLE.
func (s *CatalogService) AddBook(ctx context.Context, req AddBookRequest) ([]*domain.Copy, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := time.Now()
	copies := make([]*domain.Copy, 0, req.Copies)

	for i := 0; i < req.Copies; i++ {
		copyID, err := id.Generate("copy")
		if err != nil {
			return nil, fmt.Errorf("generate copy ID: %w", err)
		}

		copy := &domain.Copy{
			ID:        copyID,
			ISBN:      req.ISBN,
			Title:     req.Title,
			Author:    req.Author,
			State:     domain.CopyStateAvailable,
			Genres:    req.Genres,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := s.store.AddCopy(ctx, copy); err != nil {
			return nil, domainerrors.PersistenceFailed("failed to register copy").WithCause(err)
		}

		copies = append(copies, copy)
	}

	if s.logger != nil {
		s.logger.Info("Copies registered",
			"isbn", req.ISBN,
			"title", req.Title,
			"count", len(copies),
		)
	}

	return copies, nil
}

// GetCopiesByISBN returns all copies of a title. Unlike the lending
// gates, an unknown ISBN is an error here because the caller asked for
// that specific title.
func (s *CatalogService) GetCopiesByISBN(ctx context.Context, isbn string) ([]*domain.Copy, error) {
	copies, err := s.store.GetCopiesByISBN(ctx, isbn)
	if err != nil {
		return nil, domainerrors.Gateway(err, "catalog lookup failed")
	}
	if len(copies) == 0 {
		return nil, domainerrors.UnknownISBNf("no copies registered for ISBN %s", isbn)
	}
	return copies, nil
}

// ListCopies returns the whole catalog.
func (s *CatalogService) ListCopies(ctx context.Context) ([]*domain.Copy, error) {
	copies, err := s.store.ListCopies(ctx)
	if err != nil {
		return nil, domainerrors.Gateway(err, "catalog lookup failed")
	}
	return copies, nil
}

// Search runs a full-text catalog search.
func (s *CatalogService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, domainerrors.Internal("search failed").WithCause(err)
	}
	return result, nil
}

// DocumentCount returns the number of indexed copies. Used by health checks.
func (s *CatalogService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// RebuildSearchIndex re-indexes the whole catalog from the store.
// Used at startup and after mapping changes.
func (s *CatalogService) RebuildSearchIndex(ctx context.Context) (int, error) {
	copies, err := s.store.ListCopies(ctx)
	if err != nil {
		return 0, fmt.Errorf("list copies: %w", err)
	}

	docs := make([]*search.Document, 0, len(copies))
	for _, copy := range copies {
		docs = append(docs, search.CopyToDocument(copy))
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return 0, fmt.Errorf("index copies: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Search index rebuilt", "documents", len(docs))
	}

	return len(docs), nil
}
