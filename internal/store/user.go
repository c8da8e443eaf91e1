package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/booklendapp/booklend-server/internal/domain"
)

var (
	// ErrUserNotFound is returned when a user cannot be found by ID or username.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when attempting to create a user with an existing ID.
	ErrUserExists = errors.New("user already exists")
	// ErrUsernameExists is returned when attempting to create a user with a username that's already taken.
	ErrUsernameExists = errors.New("username already taken")
	// ErrSessionNotFound is returned when a session cannot be found by ID.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when attempting to use an expired session.
	ErrSessionExpired = errors.New("session expired")
)

// CreateUser creates a new member account.
func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	key := []byte(userPrefix + user.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check user exists: %w", err)
	}
	if exists {
		return ErrUserExists
	}

	usernameKey := []byte(userByUsernamePrefix + normalizeUsername(user.Username))

	return s.db.Update(func(txn *badger.Txn) error {
		// Check if username is already taken
		_, err := txn.Get(usernameKey)
		if err == nil {
			return ErrUsernameExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check username exists: %w", err)
		}

		data, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("marshal user: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		// Create username index
		return txn.Set(usernameKey, []byte(user.ID))
	})
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(_ context.Context, id string) (*domain.User, error) {
	key := []byte(userPrefix + id)

	var user domain.User
	if err := s.get(key, &user); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// GetUserByUsername retrieves a user by username, case-insensitively.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	usernameKey := []byte(userByUsernamePrefix + normalizeUsername(username))

	// Look up user ID from username index
	var userID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(usernameKey)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			userID = string(val)
			return nil
		})
	})

	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user by username: %w", err)
	}

	return s.GetUser(ctx, userID)
}

// HasUsers reports whether any member account exists. Used to decide
// whether a registration is the bootstrap admin account.
func (s *Store) HasUsers(_ context.Context) (bool, error) {
	prefix := []byte(userPrefix)
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek(prefix)
		found = it.ValidForPrefix(prefix)
		return nil
	})

	if err != nil {
		return false, fmt.Errorf("check users exist: %w", err)
	}

	return found, nil
}

// UpdateUser updates an existing user. Usernames are immutable, so no
// index maintenance is needed.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	if _, err := s.GetUser(ctx, user.ID); err != nil {
		return err
	}

	user.Touch()

	key := []byte(userPrefix + user.ID)
	if err := s.set(key, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}
