package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/booklendapp/booklend-server/internal/domain"
	domainerrors "github.com/booklendapp/booklend-server/internal/errors"
	"github.com/booklendapp/booklend-server/internal/store"
	"github.com/booklendapp/booklend-server/internal/validation"
)

// LoanService creates and extends loans. Each operation runs its checks
// in a fixed order against fresh gateway reads; the first failing gate
// aborts with no partial writes.
type LoanService struct {
	catalog   CatalogGateway
	ledger    LedgerGateway
	validator *validation.Validator
	logger    *slog.Logger

	// now is injectable so date-boundary rules can be tested with a
	// fixed clock.
	now func() time.Time
}

// NewLoanService creates a new loan lifecycle service.
func NewLoanService(
	catalog CatalogGateway,
	ledger LedgerGateway,
	validator *validation.Validator,
	logger *slog.Logger,
) *LoanService {
	return &LoanService{
		catalog:   catalog,
		ledger:    ledger,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the service's time source. Test use only.
func (s *LoanService) WithClock(now func() time.Time) *LoanService {
	s.now = now
	return s
}

// CreateLoanRequest is a request to borrow a copy of a title.
type CreateLoanRequest struct {
	Username string `json:"username" validate:"required"`
	ISBN     string `json:"isbn" validate:"required"`
}

// CreateLoan lends an available copy of the requested title to the user.
//
// Gates, in order: no duplicate active loan for this user and ISBN, the
// ISBN is known, and at least one copy is AVAILABLE. The resulting loan
// runs for the standard loan period with no extensions used.
func (s *LoanService) CreateLoan(ctx context.Context, req CreateLoanRequest) (*domain.Loan, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	// Gate 1: one active loan per user per ISBN
	loans, err := s.ledger.GetLoansByISBN(ctx, req.ISBN)
	if err != nil {
		return nil, domainerrors.Gateway(err, "ledger lookup failed")
	}
	for _, loan := range loans {
		if loan.IsActive() && loan.BelongsTo(req.Username) {
			return nil, domainerrors.DuplicateActiveLoan("you already have an active loan for this title")
		}
	}

	// Gate 2: the ISBN must exist in the catalog
	copies, err := s.catalog.GetCopiesByISBN(ctx, req.ISBN)
	if err != nil {
		return nil, domainerrors.Gateway(err, "catalog lookup failed")
	}
	if len(copies) == 0 {
		return nil, domainerrors.UnknownISBNf("no copies registered for ISBN %s", req.ISBN)
	}

	// Gate 3: pick the first available copy
	copy, err := SelectAvailableCopy(copies)
	if err != nil {
		return nil, err
	}

	today := domain.DateOnly(s.now())
	loan := &domain.Loan{
		BookID:     copy.ID,
		ISBN:       req.ISBN,
		Username:   req.Username,
		BorrowDate: today,
		DueDate:    today.AddDate(0, 0, domain.LoanPeriodDays),
	}

	if err := s.ledger.CreateLoan(ctx, loan); err != nil {
		return nil, domainerrors.PersistenceFailed("failed to record the loan").WithCause(err)
	}
	if loan.LoanID <= 0 {
		// The ledger accepted the write but returned no usable record.
		// Fatal contract violation, not retryable.
		return nil, domainerrors.PersistenceFailed(fmt.Sprintf("ledger returned invalid loan id %d", loan.LoanID))
	}

	// Best-effort follow-up: a failed state update leaves the catalog
	// behind the ledger. Logged as a recoverable inconsistency, the loan
	// stands.
	if err := s.catalog.UpdateCopyState(ctx, copy.ID, domain.CopyStateBorrowed); err != nil {
		if s.logger != nil {
			s.logger.Warn("loan recorded but copy state update failed",
				"loan_id", loan.LoanID,
				"copy_id", copy.ID,
				"error", err,
			)
		}
	}

	if s.logger != nil {
		s.logger.Info("Loan created",
			"loan_id", loan.LoanID,
			"copy_id", copy.ID,
			"username", loan.Username,
			"due_date", domain.FormatDate(loan.DueDate),
		)
	}

	return loan, nil
}

// ExtendLoan pushes a loan's due date out by the extension period.
//
// Only the borrower may extend, no earlier than one day before the due
// date, and only while extensions remain. Extending an overdue loan is
// legal.
func (s *LoanService) ExtendLoan(ctx context.Context, loanID int64, username string) (*domain.Loan, error) {
	loan, err := s.ledger.GetLoan(ctx, loanID)
	if err != nil {
		if errors.Is(err, store.ErrLoanNotFound) {
			return nil, domainerrors.LoanNotFoundf("no loan with id %d", loanID)
		}
		return nil, domainerrors.Gateway(err, "ledger lookup failed")
	}

	if !loan.BelongsTo(username) {
		return nil, domainerrors.NotBorrower("only the borrower may extend this loan")
	}

	if !loan.ExtendableOn(s.now()) {
		return nil, domainerrors.ExtensionTooEarlyf(
			"loan cannot be extended before %s",
			domain.FormatDate(loan.AllowableExtensionDate()),
		)
	}

	if loan.NumberOfExtensions >= domain.MaxExtensions {
		return nil, domainerrors.MaxExtensions(
			fmt.Sprintf("loan has reached the maximum of %d extensions", domain.MaxExtensions),
		)
	}

	loan.Extend()

	if err := s.ledger.UpdateLoan(ctx, loan); err != nil {
		return nil, domainerrors.PersistenceFailed("failed to record the extension").WithCause(err)
	}

	if s.logger != nil {
		s.logger.Info("Loan extended",
			"loan_id", loan.LoanID,
			"extensions", loan.NumberOfExtensions,
			"due_date", domain.FormatDate(loan.DueDate),
		)
	}

	return loan, nil
}

// GetActiveLoans returns the user's outstanding loans. An empty result
// is a reportable condition here, not a silent success.
func (s *LoanService) GetActiveLoans(ctx context.Context, username string) ([]*domain.Loan, error) {
	loans, err := s.ledger.GetActiveLoansByUser(ctx, username)
	if err != nil {
		return nil, domainerrors.Gateway(err, "ledger lookup failed")
	}
	if len(loans) == 0 {
		return nil, domainerrors.NoActiveLoans("you have no active loans")
	}
	return loans, nil
}
