package repositorycache_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-flavor-inventory/cache"
	"github.com/goliatone/go-flavor-inventory/model"
	"github.com/goliatone/go-flavor-inventory/pkg/testsupport"
	"github.com/goliatone/go-flavor-inventory/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func byName(q *bun.SelectQuery) *bun.SelectQuery {
	return q.OrderExpr("?TableAlias.name ASC")
}

func seedStores(t *testing.T, n int) *repositorycache.CachedCollection[*model.Store] {
	t.Helper()

	repos := testsupport.NewRepositories(t)
	ctx := context.Background()
	for i := 0; i < n; i++ {
		store := &model.Store{ID: uuid.New(), Name: fmt.Sprintf("Store %02d", i)}
		if _, err := repos.Stores.Create(ctx, store); err != nil {
			t.Fatalf("create store: %v", err)
		}
	}

	svc, err := cache.NewCacheService(cache.DefaultConfig().WithTTL(time.Minute))
	if err != nil {
		t.Fatalf("failed to create cache service: %v", err)
	}
	return repositorycache.NewCachedCollection[*model.Store](repos.Stores, svc, cache.NewDefaultKeySerializer(),
		repositorycache.WithOrder(byName))
}

func TestCachedCollection_LoadsEveryRow(t *testing.T) {
	c := seedStores(t, 30)
	ctx := context.Background()

	all, err := c.All(ctx)
	if err != nil {
		t.Fatalf("All() failed: %v", err)
	}
	if len(all) != 30 {
		t.Fatalf("expected the whole collection of 30 stores, got %d", len(all))
	}

	records, total, err := c.List(ctx, 2, 25)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if total != 30 {
		t.Errorf("expected total 30, got %d", total)
	}
	if len(records) != 5 || records[0].Name != "Store 25" {
		t.Errorf("expected stores 25 to 29 on page 2, got %d starting at %v", len(records), records)
	}
}
