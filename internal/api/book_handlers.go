package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/booklendapp/booklend-server/internal/domain"
	"github.com/booklendapp/booklend-server/internal/search"
	"github.com/booklendapp/booklend-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List catalog",
		Description: "Returns every registered copy in the catalog",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookByISBN",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{isbn}",
		Summary:     "Get copies of a title",
		Description: "Returns all copies of the title with the given ISBN",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBookByISBN)

	huma.Register(s.api, huma.Operation{
		OperationID: "addBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books",
		Summary:     "Register copies",
		Description: "Registers one or more copies of a title. Admin only.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search catalog",
		Description: "Full-text search over titles and authors with fuzzy matching",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearch)
}

// === DTOs ===

// CopyResponse describes a single physical copy.
type CopyResponse struct {
	ID        string    `json:"id" doc:"Copy ID"`
	ISBN      string    `json:"isbn" doc:"Title ISBN"`
	Title     string    `json:"title" doc:"Book title"`
	Author    string    `json:"author" doc:"Book author"`
	State     string    `json:"state" doc:"Copy state (AVAILABLE, BORROWED, RESERVED)"`
	Genres    []string  `json:"genres,omitempty" doc:"Genre names"`
	CreatedAt time.Time `json:"created_at" doc:"Registration timestamp"`
}

// CopyListResponse is a list of copies.
type CopyListResponse struct {
	Copies []CopyResponse `json:"copies" doc:"Matching copies"`
	Total  int            `json:"total" doc:"Number of copies"`
}

// CopyListOutput wraps the copy list for Huma.
type CopyListOutput struct {
	Body CopyListResponse
}

// ISBNInput is a path parameter carrying an ISBN.
type ISBNInput struct {
	ISBN string `path:"isbn" maxLength:"20" doc:"Title ISBN"`
}

// AddBookRequest is the request body for registering copies.
type AddBookRequest struct {
	ISBN   string   `json:"isbn" validate:"required,max=20" doc:"Title ISBN"`
	Title  string   `json:"title" validate:"required,max=500" doc:"Book title"`
	Author string   `json:"author" validate:"required,max=200" doc:"Book author"`
	Genres []string `json:"genres,omitempty" doc:"Genre names"`
	Copies int      `json:"copies" validate:"gte=1,lte=100" doc:"Number of copies to register"`
}

// AddBookInput wraps the add book request for Huma.
type AddBookInput struct {
	Body AddBookRequest
}

// SearchInput contains parameters for searching the catalog.
type SearchInput struct {
	Query         string `query:"q" validate:"omitempty,max=200" doc:"Search query. Omit to match everything."`
	Genres        string `query:"genres" validate:"omitempty,max=200" doc:"Comma-separated genre names to filter by"`
	OnlyAvailable bool   `query:"available" doc:"Restrict to copies on the shelf"`
	Limit         int    `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Max results (default 20)"`
	Offset        int    `query:"offset" validate:"omitempty,gte=0" doc:"Pagination offset"`
	SortBy        string `query:"sort_by" enum:"relevance,title,author,recent" doc:"Sort field (default relevance)"`
	SortOrder     string `query:"sort_order" enum:"asc,desc" doc:"Sort direction"`
	Facets        bool   `query:"facets" doc:"Include genre facet counts"`
}

// SearchHitResult contains a single search result.
type SearchHitResult struct {
	ID         string            `json:"id" doc:"Copy ID"`
	ISBN       string            `json:"isbn" doc:"Title ISBN"`
	Score      float64           `json:"score" doc:"Search relevance score"`
	Title      string            `json:"title" doc:"Book title"`
	Author     string            `json:"author,omitempty" doc:"Book author"`
	State      string            `json:"state,omitempty" doc:"Copy state"`
	Highlights map[string]string `json:"highlights,omitempty" doc:"Highlighted matches"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value" doc:"Facet value"`
	Count int    `json:"count" doc:"Number of matches"`
}

// SearchResponse contains catalog search results.
type SearchResponse struct {
	Query  string            `json:"query" doc:"Original search query"`
	Total  int64             `json:"total" doc:"Total matches"`
	TookMs int64             `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []SearchHitResult `json:"hits" doc:"Search results"`
	Genres []FacetCount      `json:"genres,omitempty" doc:"Genre facet counts"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, _ *struct{}) (*CopyListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	copies, err := s.services.Catalog.ListCopies(ctx)
	if err != nil {
		return nil, err
	}

	return &CopyListOutput{Body: mapCopyList(copies)}, nil
}

func (s *Server) handleGetBookByISBN(ctx context.Context, input *ISBNInput) (*CopyListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	copies, err := s.services.Catalog.GetCopiesByISBN(ctx, input.ISBN)
	if err != nil {
		return nil, err
	}

	return &CopyListOutput{Body: mapCopyList(copies)}, nil
}

func (s *Server) handleAddBook(ctx context.Context, input *AddBookInput) (*CopyListOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	copies, err := s.services.Catalog.AddBook(ctx, service.AddBookRequest{
		ISBN:   input.Body.ISBN,
		Title:  input.Body.Title,
		Author: input.Body.Author,
		Genres: input.Body.Genres,
		Copies: input.Body.Copies,
	})
	if err != nil {
		return nil, err
	}

	return &CopyListOutput{Body: mapCopyList(copies)}, nil
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	params := search.DefaultParams()
	params.Query = input.Query
	params.OnlyAvailable = input.OnlyAvailable
	params.IncludeFacets = input.Facets

	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	if input.Offset > 0 {
		params.Offset = input.Offset
	}
	if input.SortBy != "" {
		params.SortBy = input.SortBy
	}
	if input.SortOrder != "" {
		params.SortOrder = input.SortOrder
	}

	if input.Genres != "" {
		for g := range strings.SplitSeq(input.Genres, ",") {
			g = strings.TrimSpace(g)
			if g != "" {
				params.Genres = append(params.Genres, g)
			}
		}
	}

	result, err := s.services.Catalog.Search(ctx, params)
	if err != nil {
		s.logger.Error("Search failed", "error", err, "query", input.Query)
		return nil, err
	}

	resp := SearchResponse{
		Query:  result.Query,
		Total:  int64(result.Total), //nolint:gosec // Safe: total count won't exceed int64
		TookMs: result.TookMs,
		Hits:   make([]SearchHitResult, 0, len(result.Hits)),
	}

	for i := range result.Hits {
		hit := &result.Hits[i]
		resp.Hits = append(resp.Hits, SearchHitResult{
			ID:         hit.ID,
			ISBN:       hit.ISBN,
			Score:      hit.Score,
			Title:      hit.Title,
			Author:     hit.Author,
			State:      hit.State,
			Highlights: hit.Highlights,
		})
	}

	for _, facet := range result.Genres {
		resp.Genres = append(resp.Genres, FacetCount{Value: facet.Value, Count: facet.Count})
	}

	return &SearchOutput{Body: resp}, nil
}

// === Helpers ===

func mapCopyResponse(copy *domain.Copy) CopyResponse {
	return CopyResponse{
		ID:        copy.ID,
		ISBN:      copy.ISBN,
		Title:     copy.Title,
		Author:    copy.Author,
		State:     string(copy.State),
		Genres:    copy.Genres,
		CreatedAt: copy.CreatedAt,
	}
}

func mapCopyList(copies []*domain.Copy) CopyListResponse {
	resp := CopyListResponse{
		Copies: make([]CopyResponse, 0, len(copies)),
		Total:  len(copies),
	}
	for _, copy := range copies {
		resp.Copies = append(resp.Copies, mapCopyResponse(copy))
	}
	return resp
}
