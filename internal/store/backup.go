package store

import (
	"fmt"
	"io"
)

// Backup writes a full snapshot of the database to w using Badger's
// stream backup format. Returns the version timestamp of the snapshot.
func (s *Store) Backup(w io.Writer) (uint64, error) {
	version, err := s.db.Backup(w, 0)
	if err != nil {
		return 0, fmt.Errorf("backup database: %w", err)
	}
	return version, nil
}

// Load reads a stream backup from r and applies it to the database.
// Entries in the backup overwrite entries with the same key; keys
// written since the backup was taken are left in place.
func (s *Store) Load(r io.Reader) error {
	if err := s.db.Load(r, 256); err != nil {
		return fmt.Errorf("load backup: %w", err)
	}
	return nil
}
