package storage_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-flavor-inventory/internal/storage"
	"github.com/goliatone/go-flavor-inventory/model"
	"github.com/goliatone/go-flavor-inventory/pkg/testsupport"
	"github.com/google/uuid"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := storage.Open(context.Background(), storage.Options{Driver: "oracle", DSN: "x"})
	if err == nil {
		t.Fatal("expected an error for an unsupported driver")
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := testsupport.NewDB(t)

	if err := storage.Migrate(context.Background(), db); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func seed(t *testing.T, repos *storage.Repositories) (*model.Store, *model.Employee) {
	t.Helper()
	ctx := context.Background()

	store, err := repos.Stores.Create(ctx, &model.Store{ID: uuid.New(), Name: "Acme"})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	employee, err := repos.Employees.Create(ctx, &model.Employee{ID: uuid.New(), Name: "Jane"})
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}
	return store, employee
}

func inventory(store *model.Store, employee *model.Employee, quantity int) *model.InventoryRecord {
	return &model.InventoryRecord{
		ID:         uuid.New(),
		StoreID:    &store.ID,
		EmployeeID: &employee.ID,
		Date:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Flavor:     "Vanilla",
		Quantity:   quantity,
	}
}

func TestUniqueConstraints(t *testing.T) {
	repos := testsupport.NewRepositories(t)
	ctx := context.Background()
	store, employee := seed(t, repos)

	_, err := repos.Stores.Create(ctx, &model.Store{ID: uuid.New(), Name: "Acme"})
	if !storage.IsUniqueViolation(err) {
		t.Errorf("expected a unique violation for a repeated store name, got %v", err)
	}

	if _, err := repos.Inventory.Create(ctx, inventory(store, employee, 12)); err != nil {
		t.Fatalf("create inventory: %v", err)
	}
	_, err = repos.Inventory.Create(ctx, inventory(store, employee, 12))
	if !storage.IsUniqueViolation(err) {
		t.Errorf("expected a unique violation for a repeated inventory tuple, got %v", err)
	}

	if _, err := repos.Inventory.Create(ctx, inventory(store, employee, 13)); err != nil {
		t.Errorf("a different quantity is a different tuple: %v", err)
	}
}

func TestCascadeDelete(t *testing.T) {
	repos := testsupport.NewRepositories(t)
	ctx := context.Background()
	store, employee := seed(t, repos)

	for q := 1; q <= 3; q++ {
		if _, err := repos.Inventory.Create(ctx, inventory(store, employee, q)); err != nil {
			t.Fatalf("create inventory: %v", err)
		}
	}

	if err := repos.Stores.Delete(ctx, store); err != nil {
		t.Fatalf("delete store: %v", err)
	}

	count, err := repos.Inventory.Count(ctx)
	if err != nil {
		t.Fatalf("count inventory: %v", err)
	}
	if count != 0 {
		t.Errorf("expected inventory to be deleted with its store, %d rows left", count)
	}
}

func TestIsNotFound(t *testing.T) {
	repos := testsupport.NewRepositories(t)

	_, err := repos.Stores.GetByID(context.Background(), uuid.NewString())
	if !storage.IsNotFound(err) {
		t.Errorf("expected a not found error, got %v", err)
	}

	if storage.IsNotFound(nil) || storage.IsNotFound(errors.New("boom")) {
		t.Error("unrelated errors must not be classified as not found")
	}
	if storage.IsUniqueViolation(fmt.Errorf("wrapped: %w", errors.New("boom"))) {
		t.Error("unrelated errors must not be classified as unique violations")
	}
}
