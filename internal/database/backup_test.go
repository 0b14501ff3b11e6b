package database

import (
	"context"
	"path/filepath"
	"testing"

	"hotelier/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupService_Backup(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "hotelier.db")
	backupDir := filepath.Join(tmpDir, "backups")

	logger := zerolog.Nop()
	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()
	seedHotel(t, db, "Grand Plaza", 2)

	svc := NewBackupService(dbPath, config.BackupConfig{
		Enabled:     true,
		StoragePath: backupDir,
	}, &logger)
	require.NoError(t, svc.Backup())

	matches, err := filepath.Glob(filepath.Join(backupDir, "backup_*.db"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	// The snapshot must be a readable database with the data intact.
	restored, err := NewDB(matches[0], &logger)
	require.NoError(t, err)
	defer restored.Close()

	count, err := restored.CountHotels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
