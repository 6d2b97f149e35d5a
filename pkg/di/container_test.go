package di

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-flavor-inventory/config"
	"github.com/goliatone/go-flavor-inventory/internal/storage"
	"github.com/goliatone/go-flavor-inventory/pkg/testsupport"
)

func testConfig(t testing.TB) config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Database = config.Database{
		Driver:       storage.DriverSQLite,
		DSN:          testsupport.SQLiteDSN(t.Name()),
		MaxOpenConns: 1,
	}
	cfg.Metrics.Addr = ""
	return cfg
}

func TestNewContainer(t *testing.T) {
	ctx := context.Background()

	container, err := NewContainer(ctx, testConfig(t))
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	defer container.Close()

	if err := container.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}

	if container.StoreCache() == nil || container.EmployeeCache() == nil {
		t.Error("Container should have non-nil cache services")
	}
	if container.StoreCache() == container.EmployeeCache() {
		t.Error("each listing should own a cache service with its own TTL")
	}
	if container.KeySerializer() == nil {
		t.Error("Container should have a non-nil key serializer")
	}
	if container.Pipeline() == nil || container.Inventory() == nil || container.Stores() == nil || container.Employees() == nil {
		t.Error("Container should build every service")
	}

	stored := container.Config()
	if stored.Cache.StoreTTL != 150*time.Minute || stored.Cache.EmployeeTTL != 10*time.Minute {
		t.Errorf("unexpected listing TTLs %v %v", stored.Cache.StoreTTL, stored.Cache.EmployeeTTL)
	}
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Backend = "memcache"

	container, err := NewContainer(context.Background(), cfg)
	if err == nil {
		t.Fatal("NewContainer() should fail with invalid config")
	}
	if container != nil {
		t.Error("NewContainer() should return nil container on error")
	}
}

func TestNewContainer_UnreachableDatabase(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.DSN = "file:/nonexistent/dir/inventory.db?mode=ro"

	if _, err := NewContainer(context.Background(), cfg); err == nil {
		t.Fatal("NewContainer() should fail when the database cannot be opened")
	}
}

func TestNewContainerWithDB(t *testing.T) {
	db := testsupport.NewDB(t)

	container, err := NewContainerWithDB(testConfig(t), db)
	if err != nil {
		t.Fatalf("NewContainerWithDB() failed: %v", err)
	}
	if err := container.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Errorf("closing the container must not close a borrowed database: %v", err)
	}
}
