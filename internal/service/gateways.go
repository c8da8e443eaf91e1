// Package service implements the lending engine: copy selection, loan
// creation and extension, and the reservation queue. Services validate
// each request against a fresh read of catalog and ledger state, in a
// fixed gate order, before issuing any write.
package service

import (
	"context"

	"github.com/booklendapp/booklend-server/internal/domain"
	"github.com/booklendapp/booklend-server/internal/store"
)

// CatalogGateway is the engine's view of the copy catalog.
// Absent copies surface as store.ErrCopyNotFound.
type CatalogGateway interface {
	GetCopiesByISBN(ctx context.Context, isbn string) ([]*domain.Copy, error)
	UpdateCopyState(ctx context.Context, copyID string, state domain.CopyState) error
}

// LedgerGateway persists and retrieves loan and reservation records.
// Absent records surface as store.ErrLoanNotFound / store.ErrReservationNotFound.
type LedgerGateway interface {
	GetLoansByISBN(ctx context.Context, isbn string) ([]*domain.Loan, error)
	GetLoan(ctx context.Context, id int64) (*domain.Loan, error)
	CreateLoan(ctx context.Context, loan *domain.Loan) error
	UpdateLoan(ctx context.Context, loan *domain.Loan) error
	GetActiveLoansByUser(ctx context.Context, username string) ([]*domain.Loan, error)
	GetReservationsByISBN(ctx context.Context, isbn string) ([]*domain.Reservation, error)
	CreateReservation(ctx context.Context, res *domain.Reservation) error
	CountReservationsByISBN(ctx context.Context, isbn string) (int, error)
}

// The Badger store backs both gateways in production.
var (
	_ CatalogGateway = (*store.Store)(nil)
	_ LedgerGateway  = (*store.Store)(nil)
)
