package service

import (
	"time"

	"github.com/booklendapp/booklend-server/internal/domain"
	domainerrors "github.com/booklendapp/booklend-server/internal/errors"
)

// SelectAvailableCopy scans copies in the order given and returns the
// first whose state is AVAILABLE. State comparison is case-insensitive.
func SelectAvailableCopy(copies []*domain.Copy) (*domain.Copy, error) {
	for _, copy := range copies {
		if copy.IsAvailable() {
			return copy, nil
		}
	}
	return nil, domainerrors.BookUnavailable("all copies of this title are checked out")
}

// SelectCopyForReservation picks the copy expected back soonest: for
// each copy, the earliest due date among its outstanding loans; across
// copies, the smallest such date. Ties go to the first copy, since a
// strict before comparison is used.
//
// A copy with no outstanding loan is not a candidate. If no copy has
// one, the catalog is inconsistent (copies marked non-available with no
// loan record) and the error must not be swallowed.
func SelectCopyForReservation(copies []*domain.Copy, loans []*domain.Loan) (*domain.Copy, error) {
	var best *domain.Copy
	var bestDue time.Time

	for _, copy := range copies {
		due, ok := earliestDueDate(copy, loans)
		if !ok {
			continue
		}
		if best == nil || due.Before(bestDue) {
			best = copy
			bestDue = due
		}
	}

	if best == nil {
		return nil, domainerrors.NoSuitableCopy("no copy has an outstanding loan; catalog and ledger disagree")
	}

	return best, nil
}

// earliestDueDate returns the earliest due date among the outstanding
// loans on the given copy, or false if the copy has none.
func earliestDueDate(copy *domain.Copy, loans []*domain.Loan) (time.Time, bool) {
	var earliest time.Time
	found := false

	for _, loan := range loans {
		if loan.Returned || loan.BookID != copy.ID {
			continue
		}
		if !found || loan.DueDate.Before(earliest) {
			earliest = loan.DueDate
			found = true
		}
	}

	return earliest, found
}
