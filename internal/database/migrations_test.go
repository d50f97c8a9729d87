package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRunMigrations(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, Migrate(db))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_index.sql"),
		[]byte("CREATE INDEX IF NOT EXISTS idx_test_sections_page ON sections (page_id, sort_order, id);"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "002_broken.sql"),
		[]byte("THIS IS NOT SQL;"), 0o644))

	err = RunMigrations(db, dir)
	assert.Error(t, err)

	applied, err := GetAppliedMigrations(db)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, "001_index.sql", applied[0].Version)

	require.NoError(t, os.Remove(filepath.Join(dir, "002_broken.sql")))
	require.NoError(t, RunMigrations(db, dir), "applied files are skipped")

	applied, err = GetAppliedMigrations(db)
	require.NoError(t, err)
	assert.Len(t, applied, 1)
}
