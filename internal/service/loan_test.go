package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booklendapp/booklend-server/internal/domain"
	domainerrors "github.com/booklendapp/booklend-server/internal/errors"
	"github.com/booklendapp/booklend-server/internal/store"
	"github.com/booklendapp/booklend-server/internal/validation"
)

const testISBN = "9780134190440"

// fixedClock returns a clock stuck at the given day.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// setupLending creates loan and reservation services backed by a real
// temp store, with the clock fixed at 2026-03-15.
func setupLending(t *testing.T) (*LoanService, *ReservationService, *store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "booklend-service-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	testStore, err := store.New(dbPath, nil)
	require.NoError(t, err)

	clock := fixedClock(time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC))
	validator := validation.New()

	loanSvc := NewLoanService(testStore, testStore, validator, nil).WithClock(clock)
	resSvc := NewReservationService(testStore, testStore, validator, nil).WithClock(clock)

	cleanup := func() {
		_ = testStore.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return loanSvc, resSvc, testStore, cleanup
}

// addCopies seeds the catalog with copies of testISBN in the given states.
func addCopies(t *testing.T, s *store.Store, states ...domain.CopyState) []string {
	t.Helper()

	ctx := context.Background()
	ids := make([]string, 0, len(states))
	for i, state := range states {
		copy := &domain.Copy{
			ID:        "copy-" + string(rune('a'+i)),
			ISBN:      testISBN,
			Title:     "Effective Java",
			Author:    "Joshua Bloch",
			State:     state,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		require.NoError(t, s.AddCopy(ctx, copy))
		ids = append(ids, copy.ID)
	}
	return ids
}

func TestCreateLoan_Success(t *testing.T) {
	loanSvc, _, testStore, cleanup := setupLending(t)
	defer cleanup()

	ctx := context.Background()
	ids := addCopies(t, testStore, domain.CopyStateAvailable)

	loan, err := loanSvc.CreateLoan(ctx, CreateLoanRequest{Username: "alice", ISBN: testISBN})
	require.NoError(t, err)

	assert.Positive(t, loan.LoanID)
	assert.Equal(t, ids[0], loan.BookID)
	assert.Equal(t, "alice", loan.Username)
	assert.False(t, loan.Returned)
	assert.Equal(t, 0, loan.NumberOfExtensions)

	// Due date is borrow date + 30 calendar days, at day granularity
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), loan.BorrowDate)
	assert.Equal(t, time.Date(2026, 4, 14, 0, 0, 0, 0, time.UTC), loan.DueDate)

	// The selected copy transitioned to BORROWED
	copy, err := testStore.GetCopy(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, domain.CopyStateBorrowed, copy.State)
}

func TestCreateLoan_RoundTrip(t *testing.T) {
	loanSvc, _, testStore, cleanup := setupLending(t)
	defer cleanup()

	ctx := context.Background()
	addCopies(t, testStore, domain.CopyStateAvailable)

	created, err := loanSvc.CreateLoan(ctx, CreateLoanRequest{Username: "alice", ISBN: testISBN})
	require.NoError(t, err)

	fetched, err := testStore.GetLoan(ctx, created.LoanID)
	require.NoError(t, err)
	assert.Equal(t, created, fetched)
}

func TestCreateLoan_DuplicateActiveLoan(t *testing.T) {
	loanSvc, _, testStore, cleanup := setupLending(t)
	defer cleanup()

	ctx := context.Background()
	addCopies(t, testStore, domain.CopyStateAvailable, domain.CopyStateAvailable)

	_, err := loanSvc.CreateLoan(ctx, CreateLoanRequest{Username: "alice", ISBN: testISBN})
	require.NoError(t, err)

	// Second loan for the same user and ISBN fails even though another
	// copy is still available. Username matching ignores case.
	_, err = loanSvc.CreateLoan(ctx, CreateLoanRequest{Username: "ALICE", ISBN: testISBN})
	assert.ErrorIs(t, err, domainerrors.ErrDuplicateActiveLoan)
}

func TestCreateLoan_UnknownISBN(t *testing.T) {
	loanSvc, _, _, cleanup := setupLending(t)
	defer cleanup()

	_, err := loanSvc.CreateLoan(context.Background(), CreateLoanRequest{Username: "alice", ISBN: "9999999999999"})
	assert.ErrorIs(t, err, domainerrors.ErrUnknownISBN)
}

func TestCreateLoan_BookUnavailable(t *testing.T) {
	loanSvc, _, testStore, cleanup := setupLending(t)
	defer cleanup()

	addCopies(t, testStore, domain.CopyStateBorrowed, domain.CopyStateReserved)

	_, err := loanSvc.CreateLoan(context.Background(), CreateLoanRequest{Username: "alice", ISBN: testISBN})
	assert.ErrorIs(t, err, domainerrors.ErrBookUnavailable)
}

func TestCreateLoan_ValidationFailure(t *testing.T) {
	loanSvc, _, _, cleanup := setupLending(t)
	defer cleanup()

	_, err := loanSvc.CreateLoan(context.Background(), CreateLoanRequest{Username: "", ISBN: testISBN})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

// seedLoan creates a loan with a chosen due date and extension count.
func seedLoan(t *testing.T, s *store.Store, username string, dueDate time.Time, extensions int) *domain.Loan {
	t.Helper()

	loan := &domain.Loan{
		BookID:             "copy-a",
		ISBN:               testISBN,
		Username:           username,
		BorrowDate:         dueDate.AddDate(0, 0, -domain.LoanPeriodDays),
		DueDate:            dueDate,
		NumberOfExtensions: extensions,
	}
	require.NoError(t, s.CreateLoan(context.Background(), loan))
	return loan
}

func TestExtendLoan_TooEarly(t *testing.T) {
	loanSvc, _, testStore, cleanup := setupLending(t)
	defer cleanup()

	// Clock is 2026-03-15; allowable from due - 1 day = 2026-03-16
	loan := seedLoan(t, testStore, "alice", time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC), 0)

	_, err := loanSvc.ExtendLoan(context.Background(), loan.LoanID, "alice")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrExtensionTooEarly)
	// The message tells the user when extension becomes legal
	assert.Contains(t, err.Error(), "2026-03-16")
}

func TestExtendLoan_OnAllowableDate(t *testing.T) {
	loanSvc, _, testStore, cleanup := setupLending(t)
	defer cleanup()

	// Due 2026-03-16, so extension is legal from 2026-03-15 (today)
	loan := seedLoan(t, testStore, "alice", time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), 0)

	updated, err := loanSvc.ExtendLoan(context.Background(), loan.LoanID, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, updated.NumberOfExtensions)
	assert.Equal(t, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC), updated.DueDate)
}

func TestExtendLoan_Overdue(t *testing.T) {
	loanSvc, _, testStore, cleanup := setupLending(t)
	defer cleanup()

	// Due date long past; extension is still legal
	loan := seedLoan(t, testStore, "alice", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), 0)

	updated, err := loanSvc.ExtendLoan(context.Background(), loan.LoanID, "alice")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), updated.DueDate)
}

func TestExtendLoan_Persisted(t *testing.T) {
	loanSvc, _, testStore, cleanup := setupLending(t)
	defer cleanup()

	ctx := context.Background()
	loan := seedLoan(t, testStore, "alice", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), 0)

	updated, err := loanSvc.ExtendLoan(ctx, loan.LoanID, "alice")
	require.NoError(t, err)

	stored, err := testStore.GetLoan(ctx, loan.LoanID)
	require.NoError(t, err)
	assert.Equal(t, updated, stored)
}

func TestExtendLoan_NotBorrower(t *testing.T) {
	loanSvc, _, testStore, cleanup := setupLending(t)
	defer cleanup()

	loan := seedLoan(t, testStore, "alice", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), 0)

	_, err := loanSvc.ExtendLoan(context.Background(), loan.LoanID, "mallory")
	assert.ErrorIs(t, err, domainerrors.ErrNotBorrower)

	// Different casing of the borrower is fine
	_, err = loanSvc.ExtendLoan(context.Background(), loan.LoanID, "Alice")
	assert.NoError(t, err)
}

func TestExtendLoan_MaxExtensions(t *testing.T) {
	loanSvc, _, testStore, cleanup := setupLending(t)
	defer cleanup()

	ctx := context.Background()

	// At the cap: always fails
	atCap := seedLoan(t, testStore, "alice", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), domain.MaxExtensions)
	_, err := loanSvc.ExtendLoan(ctx, atCap.LoanID, "alice")
	assert.ErrorIs(t, err, domainerrors.ErrMaxExtensions)

	// One below the cap: succeeds and lands on the cap
	belowCap := seedLoan(t, testStore, "bob", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), domain.MaxExtensions-1)
	updated, err := loanSvc.ExtendLoan(ctx, belowCap.LoanID, "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.MaxExtensions, updated.NumberOfExtensions)
}

func TestExtendLoan_NotFound(t *testing.T) {
	loanSvc, _, _, cleanup := setupLending(t)
	defer cleanup()

	_, err := loanSvc.ExtendLoan(context.Background(), 424242, "alice")
	assert.ErrorIs(t, err, domainerrors.ErrLoanNotFound)
}

func TestGetActiveLoans(t *testing.T) {
	loanSvc, _, testStore, cleanup := setupLending(t)
	defer cleanup()

	ctx := context.Background()

	// Empty is a reportable condition
	_, err := loanSvc.GetActiveLoans(ctx, "alice")
	assert.ErrorIs(t, err, domainerrors.ErrNoActiveLoans)

	seedLoan(t, testStore, "alice", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), 0)

	loans, err := loanSvc.GetActiveLoans(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, loans, 1)
}
