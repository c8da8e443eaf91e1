// Package backup creates and restores snapshots of the lending database
// using Badger's stream backup format.
package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/booklendapp/booklend-server/internal/store"
)

// backupExt is the file extension for database snapshots.
const backupExt = ".booklend.bak"

// ErrBackupNotFound is returned when a named backup file does not exist.
var ErrBackupNotFound = errors.New("backup not found")

// Service manages database snapshot creation, listing and restore.
type Service struct {
	store     *store.Store
	backupDir string
	logger    *slog.Logger
}

// NewService creates a backup Service writing snapshots under backupDir.
func NewService(s *store.Store, backupDir string, logger *slog.Logger) *Service {
	return &Service{
		store:     s,
		backupDir: backupDir,
		logger:    logger,
	}
}

// Result describes a completed backup.
type Result struct {
	Name      string
	Path      string
	Size      int64
	Duration  time.Duration
	CreatedAt time.Time
}

// Info describes an existing backup file.
type Info struct {
	Name      string
	Size      int64
	CreatedAt time.Time
}

// Create writes a new snapshot of the database to the backup directory.
func (s *Service) Create(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	start := time.Now()
	name := "backup-" + start.Format("2006-01-02-150405") + backupExt
	path := filepath.Join(s.backupDir, name)

	f, err := os.Create(path) //#nosec G304 -- path is built from the configured backup dir
	if err != nil {
		return nil, fmt.Errorf("create backup file: %w", err)
	}

	if _, err := s.store.Backup(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, err
	}

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close backup file: %w", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat backup file: %w", err)
	}

	result := &Result{
		Name:      name,
		Path:      path,
		Size:      stat.Size(),
		Duration:  time.Since(start),
		CreatedAt: start,
	}

	if s.logger != nil {
		s.logger.Info("Backup complete",
			"path", result.Path,
			"size", result.Size,
			"duration", result.Duration,
		)
	}

	return result, nil
}

// List returns all backups in the backup directory, newest first.
func (s *Service) List(_ context.Context) ([]Info, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backup dir: %w", err)
	}

	var backups []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), backupExt) {
			continue
		}

		fi, err := entry.Info()
		if err != nil {
			continue
		}

		backups = append(backups, Info{
			Name:      entry.Name(),
			Size:      fi.Size(),
			CreatedAt: fi.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})

	return backups, nil
}

// Restore applies a named backup to the database. Entries from the
// snapshot overwrite current entries with the same key.
func (s *Service) Restore(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Reject path traversal; backups are addressed by bare file name.
	if name != filepath.Base(name) || !strings.HasSuffix(name, backupExt) {
		return ErrBackupNotFound
	}

	path := filepath.Join(s.backupDir, name)
	f, err := os.Open(path) //#nosec G304 -- name is validated against the backup dir
	if err != nil {
		if os.IsNotExist(err) {
			return ErrBackupNotFound
		}
		return fmt.Errorf("open backup file: %w", err)
	}
	defer f.Close()

	if err := s.store.Load(f); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("Backup restored", "name", name)
	}

	return nil
}
