package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/booklendapp/booklend-server/internal/domain"
	domainerrors "github.com/booklendapp/booklend-server/internal/errors"
	"github.com/booklendapp/booklend-server/internal/validation"
)

// ReservationService queues users for titles with no available copies.
type ReservationService struct {
	catalog   CatalogGateway
	ledger    LedgerGateway
	validator *validation.Validator
	logger    *slog.Logger

	now func() time.Time
}

// NewReservationService creates a new reservation lifecycle service.
func NewReservationService(
	catalog CatalogGateway,
	ledger LedgerGateway,
	validator *validation.Validator,
	logger *slog.Logger,
) *ReservationService {
	return &ReservationService{
		catalog:   catalog,
		ledger:    ledger,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the service's time source. Test use only.
func (s *ReservationService) WithClock(now func() time.Time) *ReservationService {
	s.now = now
	return s
}

// CreateReservationRequest is a request to join a title's waiting queue.
type CreateReservationRequest struct {
	Username string `json:"username" validate:"required"`
	ISBN     string `json:"isbn" validate:"required"`
}

// CreateReservation queues the user on the copy of the title expected
// back soonest.
//
// Gates, in order: the ISBN is known, the user holds no reservation for
// it, every copy is checked out (a free copy must be borrowed, not
// reserved), and the user has no unreturned loan on the title. The
// returned reservation carries its queue position: the count of
// outstanding reservations for the ISBN including this one.
func (s *ReservationService) CreateReservation(ctx context.Context, req CreateReservationRequest) (*domain.Reservation, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	// Gate 1: the ISBN must exist in the catalog
	copies, err := s.catalog.GetCopiesByISBN(ctx, req.ISBN)
	if err != nil {
		return nil, domainerrors.Gateway(err, "catalog lookup failed")
	}
	if len(copies) == 0 {
		return nil, domainerrors.UnknownISBNf("no copies registered for ISBN %s", req.ISBN)
	}

	// Gate 2: one reservation per user per ISBN
	reservations, err := s.ledger.GetReservationsByISBN(ctx, req.ISBN)
	if err != nil {
		return nil, domainerrors.Gateway(err, "ledger lookup failed")
	}
	for _, res := range reservations {
		if res.HeldBy(req.Username) {
			return nil, domainerrors.DuplicateReservation("you already have a reservation for this title")
		}
	}

	// Gate 3: reservations are only legal when every copy is checked out
	for _, copy := range copies {
		if copy.IsAvailable() {
			return nil, domainerrors.BookAvailable("a copy of this title is available; borrow it instead")
		}
	}

	// Gate 4: a borrower may not also reserve the same title
	loans, err := s.ledger.GetLoansByISBN(ctx, req.ISBN)
	if err != nil {
		return nil, domainerrors.Gateway(err, "ledger lookup failed")
	}
	for _, loan := range loans {
		if loan.IsActive() && loan.BelongsTo(req.Username) {
			return nil, domainerrors.UnreturnedLoan("you currently have this title on loan")
		}
	}

	// Gate 5: pick the copy expected back soonest
	copy, err := SelectCopyForReservation(copies, loans)
	if err != nil {
		return nil, err
	}

	res := &domain.Reservation{
		Username:        req.Username,
		BookID:          copy.ID,
		ISBN:            req.ISBN,
		ReservationDate: domain.DateOnly(s.now()),
	}

	if err := s.ledger.CreateReservation(ctx, res); err != nil {
		return nil, domainerrors.PersistenceFailed("failed to record the reservation").WithCause(err)
	}
	if res.ID <= 0 {
		return nil, domainerrors.PersistenceFailed("ledger returned an invalid reservation id")
	}

	// Best-effort follow-up, same policy as loan creation.
	if err := s.catalog.UpdateCopyState(ctx, copy.ID, domain.CopyStateReserved); err != nil {
		if s.logger != nil {
			s.logger.Warn("reservation recorded but copy state update failed",
				"reservation_id", res.ID,
				"copy_id", copy.ID,
				"error", err,
			)
		}
	}

	// Queue position is a read-time projection: the reservation count
	// for the ISBN right now, including the one just created.
	count, err := s.ledger.CountReservationsByISBN(ctx, req.ISBN)
	if err != nil {
		return nil, domainerrors.Gateway(err, "ledger lookup failed")
	}
	res.PositionInQueue = count

	if s.logger != nil {
		s.logger.Info("Reservation created",
			"reservation_id", res.ID,
			"copy_id", copy.ID,
			"username", res.Username,
			"position", res.PositionInQueue,
		)
	}

	return res, nil
}
