package di

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/goliatone/go-flavor-inventory/cache"
	"github.com/goliatone/go-flavor-inventory/pkg/testsupport"
	"github.com/goliatone/go-flavor-inventory/query"
	"github.com/goliatone/go-flavor-inventory/service"
)

func TestConcurrentListingReads(t *testing.T) {
	container, err := NewContainerWithDB(testConfig(t), testsupport.NewDB(t))
	if err != nil {
		t.Fatalf("NewContainerWithDB() failed: %v", err)
	}
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := container.Stores().Create(ctx, service.EntityInput{Name: fmt.Sprintf("Store %d", i)}); err != nil {
			t.Fatalf("create store: %v", err)
		}
	}

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			records, total, err := container.Stores().List(ctx, query.Page{Page: i%3 + 1, Limit: 2})
			if err != nil {
				errs <- err
				return
			}
			if total != 5 || len(records) > 2 {
				errs <- fmt.Errorf("unexpected page: %d records of %d", len(records), total)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func BenchmarkKeySerialization(b *testing.B) {
	ks := cache.NewDefaultKeySerializer()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		ks.SerializeKey("employee.page", i%100, 10)
	}
}

func BenchmarkCachedStoreListing(b *testing.B) {
	container, err := NewContainerWithDB(testConfig(b), testsupport.NewDB(b))
	if err != nil {
		b.Fatalf("NewContainerWithDB() failed: %v", err)
	}
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		if _, err := container.Stores().Create(ctx, service.EntityInput{Name: fmt.Sprintf("Store %03d", i)}); err != nil {
			b.Fatalf("create store: %v", err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := container.Stores().List(ctx, query.Page{Page: i%10 + 1, Limit: 10}); err != nil {
			b.Fatal(err)
		}
	}
}
