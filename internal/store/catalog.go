package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/booklendapp/booklend-server/internal/domain"
)

var (
	// ErrCopyNotFound is returned when a copy cannot be found by ID.
	ErrCopyNotFound = errors.New("copy not found")
	// ErrCopyExists is returned when attempting to add a copy with an existing ID.
	ErrCopyExists = errors.New("copy already exists")
)

// AddCopy registers a new physical copy in the catalog.
func (s *Store) AddCopy(ctx context.Context, copy *domain.Copy) error {
	key := []byte(copyPrefix + copy.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check copy exists: %w", err)
	}
	if exists {
		return ErrCopyExists
	}

	isbnKey := []byte(copyByISBNPrefix + normalizeISBN(copy.ISBN) + ":" + copy.ID)

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(copy)
		if err != nil {
			return fmt.Errorf("marshal copy: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		return txn.Set(isbnKey, []byte{})
	})
	if err != nil {
		return err
	}

	s.indexCopy(ctx, copy)
	return nil
}

// GetCopy retrieves a copy by ID.
func (s *Store) GetCopy(_ context.Context, id string) (*domain.Copy, error) {
	key := []byte(copyPrefix + id)

	var copy domain.Copy
	if err := s.get(key, &copy); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrCopyNotFound
		}
		return nil, fmt.Errorf("get copy: %w", err)
	}

	return &copy, nil
}

// GetCopiesByISBN returns all catalog copies registered under an ISBN.
// The result is empty (not an error) for an ISBN with no copies.
func (s *Store) GetCopiesByISBN(ctx context.Context, isbn string) ([]*domain.Copy, error) {
	prefix := []byte(copyByISBNPrefix + normalizeISBN(isbn) + ":")
	var copies []*domain.Copy

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false // We only need keys

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			copyID := key[len(prefix):]

			copy, err := s.GetCopy(ctx, copyID)
			if err != nil {
				if errors.Is(err, ErrCopyNotFound) {
					continue // Stale index entry
				}
				return err
			}

			copies = append(copies, copy)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("get copies by isbn: %w", err)
	}

	return copies, nil
}

// UpdateCopyState transitions a copy to a new availability state.
func (s *Store) UpdateCopyState(ctx context.Context, copyID string, state domain.CopyState) error {
	copy, err := s.GetCopy(ctx, copyID)
	if err != nil {
		return err
	}

	copy.State = state
	copy.Touch()

	key := []byte(copyPrefix + copy.ID)
	if err := s.set(key, copy); err != nil {
		return fmt.Errorf("update copy state: %w", err)
	}

	s.indexCopy(ctx, copy)
	return nil
}

// ListCopies returns every copy in the catalog.
func (s *Store) ListCopies(_ context.Context) ([]*domain.Copy, error) {
	prefix := []byte(copyPrefix)
	var copies []*domain.Copy

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			err := item.Value(func(val []byte) error {
				var copy domain.Copy
				if unmarshalErr := json.Unmarshal(val, &copy); unmarshalErr != nil {
					// Skip malformed copies
					return nil //nolint:nilerr // intentionally skip malformed entries
				}

				copies = append(copies, &copy)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("list copies: %w", err)
	}

	return copies, nil
}

// indexCopy pushes a copy into the search index. Index failures are
// logged, not returned; the store stays the source of truth.
func (s *Store) indexCopy(ctx context.Context, copy *domain.Copy) {
	if s.searchIndexer == nil {
		return
	}
	if err := s.searchIndexer.IndexCopy(ctx, copy); err != nil && s.logger != nil {
		s.logger.Warn("failed to index copy", "copy_id", copy.ID, "error", err)
	}
}

// normalizeISBN normalizes an ISBN for consistent index lookups.
// Strips hyphens and whitespace, uppercases the check digit.
func normalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	return strings.ToUpper(strings.TrimSpace(isbn))
}
