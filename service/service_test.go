package service

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-flavor-inventory/cache"
	"github.com/goliatone/go-flavor-inventory/internal/apperr"
	"github.com/goliatone/go-flavor-inventory/internal/storage"
	"github.com/goliatone/go-flavor-inventory/model"
	"github.com/goliatone/go-flavor-inventory/pkg/testsupport"
	"github.com/goliatone/go-flavor-inventory/query"
	"github.com/goliatone/go-flavor-inventory/repositorycache"
	"github.com/google/uuid"
)

type fixture struct {
	repos     *storage.Repositories
	inventory *Inventory
	stores    *Entities[*model.Store]
	employees *Entities[*model.Employee]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repos := testsupport.NewRepositories(t)
	cfg := cache.DefaultConfig()
	cfg.TTL = time.Hour
	svc, err := cache.NewCacheService(cfg)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	ks := cache.NewDefaultKeySerializer()

	return &fixture{
		repos:     repos,
		inventory: NewInventory(repos, query.NewEngine(repos.Inventory)),
		stores: NewStores(repos, repositorycache.NewCachedCollection[*model.Store](
			repos.Stores, svc, ks, repositorycache.WithOrder(query.OrderByName()))),
		employees: NewEmployees(repos, repositorycache.NewCachedPages[*model.Employee](
			repos.Employees, svc, ks, repositorycache.WithOrder(query.OrderByName()))),
	}
}

func ptr[T any](v T) *T { return &v }

func TestEntities_CRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.stores.Create(ctx, EntityInput{Name: "Acme"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.stores.Create(ctx, EntityInput{Name: "Acme"}); !apperr.Is(err, apperr.CodeConflict) {
		t.Errorf("expected Conflict for a taken name, got %v", err)
	}
	if _, err := f.stores.Create(ctx, EntityInput{Name: ""}); !apperr.Is(err, apperr.CodeInvalidInput) {
		t.Errorf("expected InvalidInput for a blank name, got %v", err)
	}

	id := created.ID.String()
	if err := f.stores.Update(ctx, id, EntityInput{ID: ptr(created.ID), Name: "Acme Downtown"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := f.stores.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Acme Downtown" {
		t.Errorf("expected the new name, got %q", got.Name)
	}

	if err := f.stores.Update(ctx, id, EntityInput{ID: ptr(uuid.New()), Name: "x"}); !apperr.Is(err, apperr.CodeInvalidInput) {
		t.Errorf("expected InvalidInput for an identifier mismatch, got %v", err)
	}
	if err := f.stores.Update(ctx, uuid.NewString(), EntityInput{Name: "x"}); !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("expected NotFound for a missing store, got %v", err)
	}

	if err := f.stores.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.stores.Get(ctx, id); !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("expected NotFound after delete, got %v", err)
	}
	if err := f.stores.Delete(ctx, id); !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("expected NotFound deleting twice, got %v", err)
	}
}

func TestEntities_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	store, err := f.stores.Create(ctx, EntityInput{Name: "Acme"})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	employee, err := f.employees.Create(ctx, EntityInput{Name: "Jane"})
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}

	for _, q := range []int{1, 2} {
		_, err := f.inventory.Create(ctx, InventoryInput{
			StoreID: ptr(store.ID), EmployeeID: ptr(employee.ID),
			Date: "2024-03-01", Flavor: "Vanilla", Quantity: q,
		})
		if err != nil {
			t.Fatalf("create inventory: %v", err)
		}
	}

	if err := f.employees.Delete(ctx, employee.ID.String()); err != nil {
		t.Fatalf("delete employee: %v", err)
	}

	n, err := f.repos.Inventory.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("expected inventory to be deleted with the employee, %d left", n)
	}
}

func TestEntities_StoreListingIsStale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"Bravo", "Acme", "Cosmo"} {
		if _, err := f.stores.Create(ctx, EntityInput{Name: name}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	first, total, err := f.stores.List(ctx, query.Page{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || first[0].Name != "Acme" || first[2].Name != "Cosmo" {
		t.Fatalf("expected stores ordered by name, got %d %v", total, first)
	}

	if err := f.stores.Delete(ctx, first[0].ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}

	second, _, err := f.stores.List(ctx, query.Page{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(second) != 3 || second[0].Name != "Acme" {
		t.Errorf("expected the cached listing to still contain the deleted store, got %v", second)
	}

	page, _, err := f.stores.List(ctx, query.Page{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 1 || page[0].Name != "Cosmo" {
		t.Errorf("expected pages to be cut from the cached collection, got %v", page)
	}
}

func TestEntities_EmployeeListingPerPage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.employees.Create(ctx, EntityInput{Name: "Jane"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := f.employees.List(ctx, query.Page{Page: 1, Limit: 10}); err != nil {
		t.Fatalf("list: %v", err)
	}

	if _, err := f.employees.Create(ctx, EntityInput{Name: "Omar"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	cached, _, err := f.employees.List(ctx, query.Page{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cached) != 1 {
		t.Errorf("expected the cached page to miss the new employee, got %d", len(cached))
	}

	fresh, total, err := f.employees.List(ctx, query.Page{Page: 1, Limit: 5})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(fresh) != 2 || total != 2 {
		t.Errorf("expected a new page size to load both employees, got %d of %d", len(fresh), total)
	}

	if _, _, err := f.employees.List(ctx, query.Page{Page: 0, Limit: 5}); !apperr.Is(err, apperr.CodeInvalidInput) {
		t.Errorf("expected InvalidInput, got %v", err)
	}
}

func TestInventory_CRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	store, err := f.stores.Create(ctx, EntityInput{Name: "Acme"})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	employee, err := f.employees.Create(ctx, EntityInput{Name: "Jane"})
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}

	in := InventoryInput{StoreID: ptr(store.ID), EmployeeID: ptr(employee.ID), Date: "2024-03-01", Flavor: "Vanilla", Quantity: 12}
	record, err := f.inventory.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.inventory.Create(ctx, in); !apperr.Is(err, apperr.CodeConflict) {
		t.Errorf("expected Conflict for an identical tuple, got %v", err)
	}

	id := record.ID.String()
	view, err := f.inventory.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Store == nil || *view.Store != "Acme" || view.ListedBy == nil || *view.ListedBy != "Jane" || view.Quantity != 12 {
		t.Errorf("unexpected view %+v", view)
	}

	in.ID = ptr(record.ID)
	in.Quantity = 20
	in.IsSeasonFlavor = true
	if err := f.inventory.Update(ctx, id, in); err != nil {
		t.Fatalf("update: %v", err)
	}
	view, err = f.inventory.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Quantity != 20 || view.IsSeasonFlavor != model.Yes {
		t.Errorf("update not applied: %+v", view)
	}

	in.ID = ptr(uuid.New())
	if err := f.inventory.Update(ctx, id, in); !apperr.Is(err, apperr.CodeInvalidInput) {
		t.Errorf("expected InvalidInput for an identifier mismatch, got %v", err)
	}

	in.ID = nil
	if err := f.inventory.Update(ctx, uuid.NewString(), in); !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("expected NotFound for a missing record, got %v", err)
	}

	if err := f.inventory.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.inventory.Get(ctx, id); !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("expected NotFound after delete, got %v", err)
	}
}

func TestInventory_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   InventoryInput
	}{
		{name: "missing date", in: InventoryInput{Flavor: "Vanilla"}},
		{name: "malformed date", in: InventoryInput{Date: "01/03/2024", Flavor: "Vanilla"}},
		{name: "missing flavor", in: InventoryInput{Date: "2024-03-01"}},
		{name: "negative quantity", in: InventoryInput{Date: "2024-03-01", Flavor: "Vanilla", Quantity: -1}},
		{name: "unknown store", in: InventoryInput{StoreID: ptr(uuid.New()), Date: "2024-03-01", Flavor: "Vanilla"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.inventory.Create(ctx, tt.in); !apperr.Is(err, apperr.CodeInvalidInput) {
				t.Errorf("expected InvalidInput, got %v", err)
			}
		})
	}
}

func TestUpdateByPK_ConflictLost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ghost := &model.InventoryRecord{ID: uuid.New(), Date: time.Now().UTC(), Flavor: "Vanilla"}
	err := updateByPK(ctx, f.repos.DB, ghost, "inventory", ghost.ID.String())
	if !apperr.Is(err, apperr.CodeConflictLost) {
		t.Errorf("expected ConflictLost, got %v", err)
	}
}
