package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/booklendapp/booklend-server/internal/domain"
)

var (
	// ErrLoanNotFound is returned when a loan cannot be found by ID.
	ErrLoanNotFound = errors.New("loan not found")
	// ErrReservationNotFound is returned when a reservation cannot be found by ID.
	ErrReservationNotFound = errors.New("reservation not found")
)

// CreateLoan persists a new loan and assigns its ledger number.
// The loan's LoanID is set on success.
func (s *Store) CreateLoan(_ context.Context, loan *domain.Loan) error {
	id, err := s.nextLoanID()
	if err != nil {
		return err
	}
	loan.LoanID = id

	key := []byte(loanPrefix + ledgerKey(id))
	isbnKey := []byte(loanByISBNPrefix + normalizeISBN(loan.ISBN) + ":" + ledgerKey(id))
	userKey := []byte(loanByUserPrefix + normalizeUsername(loan.Username) + ":" + ledgerKey(id))

	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(loan)
		if err != nil {
			return fmt.Errorf("marshal loan: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		if err := txn.Set(isbnKey, []byte{}); err != nil {
			return err
		}

		return txn.Set(userKey, []byte{})
	})
}

// GetLoan retrieves a loan by its ledger number.
func (s *Store) GetLoan(_ context.Context, id int64) (*domain.Loan, error) {
	key := []byte(loanPrefix + ledgerKey(id))

	var loan domain.Loan
	if err := s.get(key, &loan); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, fmt.Errorf("get loan: %w", err)
	}

	return &loan, nil
}

// UpdateLoan overwrites an existing loan record (extension or return).
// The indexed fields (ISBN, username) never change over a loan's life,
// so no index maintenance is needed.
func (s *Store) UpdateLoan(ctx context.Context, loan *domain.Loan) error {
	if _, err := s.GetLoan(ctx, loan.LoanID); err != nil {
		return err
	}

	key := []byte(loanPrefix + ledgerKey(loan.LoanID))
	if err := s.set(key, loan); err != nil {
		return fmt.Errorf("update loan: %w", err)
	}

	return nil
}

// GetLoansByISBN returns all loans, active and returned, recorded under
// an ISBN, in ascending ledger order.
func (s *Store) GetLoansByISBN(ctx context.Context, isbn string) ([]*domain.Loan, error) {
	prefix := []byte(loanByISBNPrefix + normalizeISBN(isbn) + ":")
	return s.loansForIndex(ctx, prefix)
}

// GetActiveLoansByUser returns a user's outstanding loans in ascending
// ledger order. An empty slice is a valid result.
func (s *Store) GetActiveLoansByUser(ctx context.Context, username string) ([]*domain.Loan, error) {
	prefix := []byte(loanByUserPrefix + normalizeUsername(username) + ":")

	loans, err := s.loansForIndex(ctx, prefix)
	if err != nil {
		return nil, err
	}

	active := loans[:0]
	for _, loan := range loans {
		if loan.IsActive() {
			active = append(active, loan)
		}
	}
	return active, nil
}

// loansForIndex walks a key-only loan index and loads each referenced loan.
func (s *Store) loansForIndex(ctx context.Context, prefix []byte) ([]*domain.Loan, error) {
	var ids []int64

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false // We only need keys

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			id, err := parseLedgerKey(key[len(prefix):])
			if err != nil {
				continue // Malformed index key
			}
			ids = append(ids, id)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("scan loan index: %w", err)
	}

	loans := make([]*domain.Loan, 0, len(ids))
	for _, id := range ids {
		loan, err := s.GetLoan(ctx, id)
		if err != nil {
			if errors.Is(err, ErrLoanNotFound) {
				continue // Stale index entry
			}
			return nil, err
		}
		loans = append(loans, loan)
	}

	return loans, nil
}

// CreateReservation persists a new reservation and assigns its ledger
// number. The reservation's ID is set on success.
func (s *Store) CreateReservation(_ context.Context, res *domain.Reservation) error {
	id, err := s.nextReservationID()
	if err != nil {
		return err
	}
	res.ID = id

	key := []byte(reservationPrefix + ledgerKey(id))
	isbnKey := []byte(resByISBNPrefix + normalizeISBN(res.ISBN) + ":" + ledgerKey(id))

	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("marshal reservation: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		return txn.Set(isbnKey, []byte{})
	})
}

// GetReservation retrieves a reservation by its ledger number.
func (s *Store) GetReservation(_ context.Context, id int64) (*domain.Reservation, error) {
	key := []byte(reservationPrefix + ledgerKey(id))

	var res domain.Reservation
	if err := s.get(key, &res); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}

	return &res, nil
}

// GetReservationsByISBN returns all reservations queued under an ISBN,
// oldest first.
func (s *Store) GetReservationsByISBN(ctx context.Context, isbn string) ([]*domain.Reservation, error) {
	prefix := []byte(resByISBNPrefix + normalizeISBN(isbn) + ":")
	var ids []int64

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			id, err := parseLedgerKey(key[len(prefix):])
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("scan reservation index: %w", err)
	}

	reservations := make([]*domain.Reservation, 0, len(ids))
	for _, id := range ids {
		res, err := s.GetReservation(ctx, id)
		if err != nil {
			if errors.Is(err, ErrReservationNotFound) {
				continue
			}
			return nil, err
		}
		reservations = append(reservations, res)
	}

	return reservations, nil
}

// CountReservationsByISBN counts reservations queued under an ISBN
// without loading the records.
func (s *Store) CountReservationsByISBN(_ context.Context, isbn string) (int, error) {
	prefix := []byte(resByISBNPrefix + normalizeISBN(isbn) + ":")
	count := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}

		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("count reservations: %w", err)
	}

	return count, nil
}

// parseLedgerKey parses the zero-padded numeric suffix of an index key.
func parseLedgerKey(suffix string) (int64, error) {
	id, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse ledger key %q: %w", suffix, err)
	}
	return id, nil
}

// normalizeUsername normalizes a username for consistent index lookups.
// Lowercases and trims whitespace.
func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
