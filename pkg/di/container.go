package di

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/goliatone/go-flavor-inventory/cache"
	"github.com/goliatone/go-flavor-inventory/config"
	"github.com/goliatone/go-flavor-inventory/ingest"
	"github.com/goliatone/go-flavor-inventory/internal/httpapi"
	"github.com/goliatone/go-flavor-inventory/internal/metrics"
	"github.com/goliatone/go-flavor-inventory/internal/storage"
	"github.com/goliatone/go-flavor-inventory/model"
	"github.com/goliatone/go-flavor-inventory/query"
	"github.com/goliatone/go-flavor-inventory/repositorycache"
	"github.com/goliatone/go-flavor-inventory/resolver"
	"github.com/goliatone/go-flavor-inventory/service"
	"github.com/uptrace/bun"
)

// Container wires the database, the listing caches, the services and the
// HTTP router. Cache services are process-wide singletons owned by the
// container: one per listing, each with its own TTL.
type Container struct {
	config        config.Config
	db            *bun.DB
	ownsDB        bool
	repos         *storage.Repositories
	keySerializer cache.KeySerializer
	storeCache    cache.CacheService
	employeeCache cache.CacheService
	metrics       *metrics.Collector

	pipeline  *ingest.Pipeline
	inventory *service.Inventory
	stores    *service.Entities[*model.Store]
	employees *service.Entities[*model.Employee]
}

// NewContainer opens the configured database and builds every component.
func NewContainer(ctx context.Context, cfg config.Config) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	db, err := storage.Open(ctx, cfg.Database.Storage())
	if err != nil {
		return nil, err
	}

	c, err := NewContainerWithDB(cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	c.ownsDB = true
	return c, nil
}

// NewContainerWithDB builds every component over an open database. The
// caller keeps ownership of db.
func NewContainerWithDB(cfg config.Config, db *bun.DB) (*Container, error) {
	storeCache, err := cache.NewCacheService(cfg.Cache.ForTTL(cfg.Cache.StoreTTL))
	if err != nil {
		return nil, fmt.Errorf("store cache: %w", err)
	}
	employeeCache, err := cache.NewCacheService(cfg.Cache.ForTTL(cfg.Cache.EmployeeTTL))
	if err != nil {
		return nil, fmt.Errorf("employee cache: %w", err)
	}

	c := &Container{
		config:        cfg,
		db:            db,
		repos:         storage.NewRepositories(db),
		keySerializer: cache.NewDefaultKeySerializer(),
		storeCache:    storeCache,
		employeeCache: employeeCache,
		metrics:       metrics.NewCollector(),
	}

	storeListing := repositorycache.NewCachedCollection[*model.Store](
		c.repos.Stores, c.storeCache, c.keySerializer,
		repositorycache.WithOrder(query.OrderByName()),
		repositorycache.WithOnLoad(c.metrics.RecordCacheLoad),
	)
	employeeListing := repositorycache.NewCachedPages[*model.Employee](
		c.repos.Employees, c.employeeCache, c.keySerializer,
		repositorycache.WithOrder(query.OrderByName()),
		repositorycache.WithOnLoad(c.metrics.RecordCacheLoad),
	)

	c.pipeline = ingest.NewPipeline(db, resolver.New(c.repos.Stores, c.repos.Employees), ingest.WithRecorder(c.metrics))
	c.inventory = service.NewInventory(c.repos, query.NewEngine(c.repos.Inventory))
	c.stores = service.NewStores(c.repos, storeListing)
	c.employees = service.NewEmployees(c.repos, employeeListing)

	return c, nil
}

// Migrate creates the schema.
func (c *Container) Migrate(ctx context.Context) error {
	return storage.Migrate(ctx, c.db)
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() config.Config {
	return c.config
}

// DB returns the database handle.
func (c *Container) DB() *bun.DB {
	return c.db
}

// Repositories returns the repositories of every model.
func (c *Container) Repositories() *storage.Repositories {
	return c.repos
}

// KeySerializer returns the singleton key serializer instance.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// StoreCache returns the cache service backing the store listing.
func (c *Container) StoreCache() cache.CacheService {
	return c.storeCache
}

// EmployeeCache returns the cache service backing the employee listing.
func (c *Container) EmployeeCache() cache.CacheService {
	return c.employeeCache
}

// Metrics returns the Prometheus collector.
func (c *Container) Metrics() *metrics.Collector {
	return c.metrics
}

// Pipeline returns the CSV import pipeline.
func (c *Container) Pipeline() *ingest.Pipeline {
	return c.pipeline
}

// Inventory returns the inventory service.
func (c *Container) Inventory() *service.Inventory {
	return c.inventory
}

// Stores returns the store service.
func (c *Container) Stores() *service.Entities[*model.Store] {
	return c.stores
}

// Employees returns the employee service.
func (c *Container) Employees() *service.Entities[*model.Employee] {
	return c.employees
}

// Router builds the HTTP API. The metrics endpoint is mounted on the API
// router only when metrics are enabled without a dedicated address.
func (c *Container) Router() *gin.Engine {
	routes := httpapi.Routes{
		Inventory: &httpapi.InventoryHandlers{
			Importer:       c.pipeline,
			Inventory:      c.inventory,
			MaxUploadBytes: c.config.HTTP.MaxUploadBytes,
		},
		Stores:    &httpapi.EntityHandlers[*model.Store]{Service: c.stores, Base: "/stores"},
		Employees: &httpapi.EntityHandlers[*model.Employee]{Service: c.employees, Base: "/employees"},
	}
	if c.config.Metrics.Enabled && c.config.Metrics.Addr == "" {
		routes.Metrics = c.metrics.Handler()
		routes.MetricsPath = c.config.Metrics.Path
	}
	return httpapi.NewRouter(routes)
}

// Close releases the database when the container opened it and any cache
// backend holding a connection.
func (c *Container) Close() error {
	var errs []error
	for _, svc := range []cache.CacheService{c.storeCache, c.employeeCache} {
		if closer, ok := svc.(interface{ Close() error }); ok {
			errs = append(errs, closer.Close())
		}
	}
	if c.ownsDB {
		errs = append(errs, c.db.Close())
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	log.Printf("di: container closed")
	return nil
}
