package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/booklendapp/booklend-server/internal/backup"
	domainerrors "github.com/booklendapp/booklend-server/internal/errors"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createBackup",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/backups",
		Summary:     "Create a database backup",
		Description: "Writes a snapshot of the lending database to the server's backup directory. Admin only.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBackup)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBackups",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/backups",
		Summary:     "List database backups",
		Description: "Lists available backup snapshots, newest first. Admin only.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBackups)

	huma.Register(s.api, huma.Operation{
		OperationID: "restoreBackup",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/backups/{name}/restore",
		Summary:     "Restore a database backup",
		Description: "Applies a named snapshot to the lending database. Snapshot entries overwrite current entries with the same key. Admin only.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRestoreBackup)
}

// === DTOs ===

// BackupResponse describes a completed backup.
type BackupResponse struct {
	Name      string    `json:"name" doc:"Backup file name"`
	Size      int64     `json:"size" doc:"Backup size in bytes"`
	CreatedAt time.Time `json:"created_at" doc:"When the backup was taken"`
}

// BackupOutput wraps a backup response for Huma.
type BackupOutput struct {
	Body BackupResponse
}

// BackupListResponse lists available backups.
type BackupListResponse struct {
	Backups []BackupResponse `json:"backups" doc:"Available backups, newest first"`
	Total   int              `json:"total" doc:"Number of backups"`
}

// BackupListOutput wraps a backup list for Huma.
type BackupListOutput struct {
	Body BackupListResponse
}

// RestoreBackupInput names the backup to restore.
type RestoreBackupInput struct {
	Name string `path:"name" maxLength:"128" doc:"Backup file name"`
}

// === Handlers ===

func (s *Server) handleCreateBackup(ctx context.Context, _ *struct{}) (*BackupOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	result, err := s.services.Backup.Create(ctx)
	if err != nil {
		return nil, err
	}

	return &BackupOutput{Body: BackupResponse{
		Name:      result.Name,
		Size:      result.Size,
		CreatedAt: result.CreatedAt,
	}}, nil
}

func (s *Server) handleListBackups(ctx context.Context, _ *struct{}) (*BackupListOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	backups, err := s.services.Backup.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := BackupListResponse{
		Backups: make([]BackupResponse, 0, len(backups)),
		Total:   len(backups),
	}
	for _, b := range backups {
		resp.Backups = append(resp.Backups, BackupResponse{
			Name:      b.Name,
			Size:      b.Size,
			CreatedAt: b.CreatedAt,
		})
	}

	return &BackupListOutput{Body: resp}, nil
}

func (s *Server) handleRestoreBackup(ctx context.Context, input *RestoreBackupInput) (*MessageOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Backup.Restore(ctx, input.Name); err != nil {
		if errors.Is(err, backup.ErrBackupNotFound) {
			return nil, domainerrors.NotFound("Backup not found")
		}
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Backup restored"}}, nil
}
