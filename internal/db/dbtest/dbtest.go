// Package dbtest provides a migrated in-memory store for tests.
package dbtest

import (
	"banking_system/internal/db" // Database access
	"fmt"                        // Error wrapping
	"strings"                    // String manipulation
	"sync/atomic"                // Unique database names
	"testing"                    // Go testing

	"gorm.io/gorm" // GORM ORM library
)

var seq atomic.Int64

// New returns a freshly migrated in-memory SQLite database. It holds a
// single connection, so concurrent transactions queue instead of failing
// with SQLITE_BUSY.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))
	gdb, err := db.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}
