// Package dbtest provides throwaway SQLite databases for tests.
package dbtest

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Dan9191/blog-service/internal/database"
	"github.com/Dan9191/blog-service/internal/migrations"
)

// Logger returns a logger that discards everything
func Logger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// Connect opens a new pool on the SQLite file at path. Transactions take
// the write lock up front so concurrent writers queue on the busy timeout
// instead of failing with "database is locked".
func Connect(path string) (*gorm.DB, error) {
	dsn := path + "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	return gorm.Open(sqlite.Open(dsn), database.GormConfig(Logger()))
}

// OpenFile connects to the database at path and closes it when the test ends
func OpenFile(t testing.TB, path string) *gorm.DB {
	t.Helper()
	db, err := Connect(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}

// OpenEmpty opens a fresh SQLite database with foreign keys enforced and no
// tables.
func OpenEmpty(t testing.TB) *gorm.DB {
	t.Helper()
	return OpenFile(t, filepath.Join(t.TempDir(), "blog.db"))
}

// Open returns a fresh SQLite database with every migration applied
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db := OpenEmpty(t)
	Migrate(t, db)
	return db
}

// Migrate applies every migration to db
func Migrate(t testing.TB, db *gorm.DB) {
	t.Helper()
	_, err := migrations.NewMigrator(db, Logger()).Up(context.Background())
	require.NoError(t, err)
}
