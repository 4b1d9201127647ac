// Package seedtest opens an in-memory database carrying the reference schema
// and seed rows.
package seedtest

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/tractionlens/internal/migration"
	"github.com/smallbiznis/tractionlens/internal/seed"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated and seeded SQLite database scoped to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db := NewEmptyDB(t)
	_, err := seed.EnsureReferenceData(context.Background(), db)
	require.NoError(t, err)
	return db
}

// NewEmptyDB returns a migrated database without seed rows.
func NewEmptyDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is its own database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migration.AutoMigrate(db))
	return db
}
