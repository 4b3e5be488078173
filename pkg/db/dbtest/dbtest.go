// Package dbtest opens isolated in-memory sqlite databases for repository tests.
package dbtest

import (
	"testing"

	"github.com/ejidepharmacy/pharmabot-backend/pkg/db"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open returns a migrated in-memory database private to the calling test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := "file:pharmabot_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	// one connection keeps shared-cache table locks out of transactional tests
	sqlDB.SetMaxOpenConns(1)
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

// Client wraps Open in the transactional db.Client used by services.
func Client(t testing.TB) (*db.Client, *gorm.DB) {
	t.Helper()
	conn := Open(t)
	return db.FromGorm(conn), conn
}
