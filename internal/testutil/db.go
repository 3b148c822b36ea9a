// Package testutil provides a migrated in-memory database for tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"talon/internal/repository"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var dbSeq atomic.Int64

// NewDB opens a private in-memory SQLite database with the schema applied.
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:talon_test_%d?mode=memory&cache=shared", dbSeq.Add(1))

	db, err := repository.NewDB(repository.DriverSQLite, dsn, 0, zap.NewNop())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := repository.MigrateDB(db, zap.NewNop()); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}
