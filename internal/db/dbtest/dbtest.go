// Package dbtest opens migrated throwaway databases for package tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/usedgoods/marketplace/internal/db"
)

// New returns a migrated sqlite database living in t.TempDir().
func New(t *testing.T) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	database, err := db.Init("sqlite", path+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(database) })

	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))
	return database
}
