package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackups_AdminOnly(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	admin := ts.registerUser(t, "admin1")
	member := ts.registerUser(t, "member1")

	// Member is rejected
	resp := ts.api.Post("/api/v1/admin/backups",
		"Authorization: Bearer "+member.AccessToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// Admin creates a backup
	resp = ts.api.Post("/api/v1/admin/backups",
		"Authorization: Bearer "+admin.AccessToken)
	require.Equal(t, http.StatusOK, resp.Code)

	var created BackupResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.NotEmpty(t, created.Name)
	assert.Positive(t, created.Size)

	// Listing shows the snapshot
	resp = ts.api.Get("/api/v1/admin/backups",
		"Authorization: Bearer "+admin.AccessToken)
	require.Equal(t, http.StatusOK, resp.Code)

	var list BackupListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, created.Name, list.Backups[0].Name)
}

func TestRestoreBackup_UnknownName(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	admin := ts.registerUser(t, "admin1")

	resp := ts.api.Post("/api/v1/admin/backups/nope.booklend.bak/restore",
		"Authorization: Bearer "+admin.AccessToken)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
