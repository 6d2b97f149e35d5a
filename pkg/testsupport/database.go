package testsupport

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/goliatone/go-flavor-inventory/internal/storage"
	"github.com/uptrace/bun"
)

// SQLiteDSN returns a DSN for a private in-memory sqlite database with
// foreign keys enforced. Every name gets its own database.
func SQLiteDSN(name string) string {
	name = strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(name)
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
}

// NewDB opens a migrated in-memory sqlite database that lives for the
// duration of the test. The pool holds a single connection so the database
// is not dropped between queries.
func NewDB(t testing.TB) *bun.DB {
	t.Helper()

	ctx := context.Background()
	db, err := storage.Open(ctx, storage.Options{
		Driver:       storage.DriverSQLite,
		DSN:          SQLiteDSN(t.Name()),
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	if err := storage.Migrate(ctx, db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// NewRepositories opens a test database and returns its repositories.
func NewRepositories(t testing.TB) *storage.Repositories {
	t.Helper()
	return storage.NewRepositories(NewDB(t))
}
