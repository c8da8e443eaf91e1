// Package store persists the catalog, lending ledger, and member accounts
// in a Badger key-value database.
package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/booklendapp/booklend-server/internal/domain"
)

// SearchIndexer is the interface for updating the catalog search index.
// Store uses this to keep search in sync without depending on search
// implementation details.
type SearchIndexer interface {
	IndexCopy(ctx context.Context, copy *domain.Copy) error
	DeleteCopy(ctx context.Context, copyID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexCopy is a no-op.
func (NoopSearchIndexer) IndexCopy(context.Context, *domain.Copy) error { return nil }

// DeleteCopy is a no-op.
func (NoopSearchIndexer) DeleteCopy(context.Context, string) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Search indexer for keeping catalog search in sync with store changes.
	// Set via SetSearchIndexer after store creation to avoid circular dependencies.
	searchIndexer SearchIndexer

	// Monotonic ID sequences for ledger records.
	loanSeq        *badger.Sequence
	reservationSeq *badger.Sequence
}

// New creates a new Store instance with the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	loanSeq, err := db.GetSequence([]byte(loanSeqKey), sequenceBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open loan sequence: %w", err)
	}

	reservationSeq, err := db.GetSequence([]byte(reservationSeqKey), sequenceBandwidth)
	if err != nil {
		_ = loanSeq.Release()
		_ = db.Close()
		return nil, fmt.Errorf("open reservation sequence: %w", err)
	}

	store := &Store{
		db:             db,
		logger:         logger,
		loanSeq:        loanSeq,
		reservationSeq: reservationSeq,
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	if s.loanSeq != nil {
		_ = s.loanSeq.Release()
	}
	if s.reservationSeq != nil {
		_ = s.reservationSeq.Release()
	}
	return s.db.Close()
}

// SetSearchIndexer sets the search indexer for keeping search in sync.
// This is set after store creation to avoid circular dependencies
// (store needs to exist before the search service can be created).
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	s.searchIndexer = indexer
}

// Helper methods for database operations.

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// set stores a value by key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// nextLoanID reserves the next loan ledger number.
// Sequences start at 0; ledger numbers start at 1 so a zero LoanID
// always means "not yet persisted".
func (s *Store) nextLoanID() (int64, error) {
	n, err := s.loanSeq.Next()
	if err != nil {
		return 0, fmt.Errorf("next loan id: %w", err)
	}
	return int64(n) + 1, nil //#nosec G115 -- sequence values stay far below int64 range
}

// nextReservationID reserves the next reservation ledger number.
func (s *Store) nextReservationID() (int64, error) {
	n, err := s.reservationSeq.Next()
	if err != nil {
		return 0, fmt.Errorf("next reservation id: %w", err)
	}
	return int64(n) + 1, nil //#nosec G115 -- sequence values stay far below int64 range
}
