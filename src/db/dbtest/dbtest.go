// Package dbtest opens throwaway SQLite stores for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/ARQAP/archive-backend/src/config"
	"github.com/ARQAP/archive-backend/src/db"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open returns a migrated store backed by a file in t.TempDir. A single
// connection serialises writers the way one Postgres row lock would.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "archive.db") + "?_foreign_keys=on&_busy_timeout=5000"
	cfg := db.GormConfig(config.DatabaseConfig{})
	cfg.Logger = gormlogger.Discard

	conn, err := gorm.Open(sqlite.Open(dsn), cfg)
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(conn))
	return conn
}

// Gateway is Open wrapped in the archive's store gateway.
func Gateway(t *testing.T) *db.GormGateway {
	t.Helper()
	return db.NewGateway(Open(t))
}
