package repositorycache

import (
	"context"
	"errors"
	"reflect"

	"github.com/goliatone/go-flavor-inventory/cache"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// ErrInvalidPage is returned when page or limit is not a positive number.
var ErrInvalidPage = errors.New("repositorycache: page and limit must be greater than 0")

// Lister is the read side of a go-repository-bun repository used by the
// listing caches. repository.Repository[T] satisfies it.
type Lister[T any] interface {
	List(ctx context.Context, criteria ...repository.SelectCriteria) ([]T, int, error)
}

// Page is one cached slice of a listing together with the number of
// records in the whole listing.
type Page[T any] struct {
	Records []T `msgpack:"records" json:"records"`
	Total   int `msgpack:"total" json:"total"`
}

// LoadHook is called every time a listing misses the cache and is loaded
// from the repository.
type LoadHook func(namespace string)

type options struct {
	namespace string
	order     []repository.SelectCriteria
	onLoad    LoadHook
}

// Option configures a listing cache.
type Option func(*options)

// WithNamespace overrides the cache key namespace derived from the record type.
func WithNamespace(namespace string) Option {
	return func(o *options) {
		o.namespace = namespace
	}
}

// WithOrder sets the criteria applied to every underlying List call. Listings
// need a stable order for pagination to be deterministic.
func WithOrder(criteria ...repository.SelectCriteria) Option {
	return func(o *options) {
		o.order = append(o.order, criteria...)
	}
}

// WithOnLoad registers a hook fired on every cache miss.
func WithOnLoad(hook LoadHook) Option {
	return func(o *options) {
		o.onLoad = hook
	}
}

func newOptions[T any](opts []Option) options {
	o := options{namespace: namespaceFor[T]()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) loaded() {
	if o.onLoad != nil {
		o.onLoad(o.namespace)
	}
}

func namespaceFor[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	if name := toSnake(t.Name()); name != "" {
		return name
	}
	return "record"
}

// Offset returns the number of records skipped before the given 1-based page.
func Offset(page, limit int) int {
	return (page - 1) * limit
}

func checkPage(page, limit int) error {
	if page < 1 || limit < 1 {
		return ErrInvalidPage
	}
	return nil
}

// CachedCollection caches an entire unpaginated listing under a single key
// and paginates the cached collection on every call. One entry serves every
// page until it expires. Writes to the underlying table are never observed
// before expiry.
type CachedCollection[T any] struct {
	base          Lister[T]
	cache         cache.CacheService
	keySerializer cache.KeySerializer
	opts          options
}

// NewCachedCollection wraps base with a whole collection cache.
func NewCachedCollection[T any](base Lister[T], cacheService cache.CacheService, keySerializer cache.KeySerializer, opts ...Option) *CachedCollection[T] {
	return &CachedCollection[T]{
		base:          base,
		cache:         cacheService,
		keySerializer: keySerializer,
		opts:          newOptions[T](opts),
	}
}

// Key returns the single cache key used by the collection.
func (c *CachedCollection[T]) Key() string {
	return c.keySerializer.SerializeKey(c.opts.namespace + ".all")
}

// All returns the cached collection, loading it on a miss.
func (c *CachedCollection[T]) All(ctx context.Context) ([]T, error) {
	res, err := cache.GetOrFetch(ctx, c.cache, c.Key(), func(ctx context.Context) (Page[T], error) {
		criteria := append([]repository.SelectCriteria{}, c.opts.order...)
		criteria = append(criteria, Unbounded())

		records, total, err := c.base.List(ctx, criteria...)
		if err != nil {
			return Page[T]{}, err
		}
		c.opts.loaded()
		return Page[T]{Records: records, Total: total}, nil
	})
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// List returns one page of the cached collection and the collection size.
// A page past the end is empty.
func (c *CachedCollection[T]) List(ctx context.Context, page, limit int) ([]T, int, error) {
	if err := checkPage(page, limit); err != nil {
		return nil, 0, err
	}

	all, err := c.All(ctx)
	if err != nil {
		return nil, 0, err
	}

	start := Offset(page, limit)
	if start >= len(all) {
		return []T{}, len(all), nil
	}
	end := min(start+limit, len(all))

	out := make([]T, end-start)
	copy(out, all[start:end])
	return out, len(all), nil
}

// CachedPages caches every distinct (page, limit) request in its own slot.
// Writes to the underlying table are never observed before a slot expires.
type CachedPages[T any] struct {
	base          Lister[T]
	cache         cache.CacheService
	keySerializer cache.KeySerializer
	opts          options
}

// NewCachedPages wraps base with a per page cache.
func NewCachedPages[T any](base Lister[T], cacheService cache.CacheService, keySerializer cache.KeySerializer, opts ...Option) *CachedPages[T] {
	return &CachedPages[T]{
		base:          base,
		cache:         cacheService,
		keySerializer: keySerializer,
		opts:          newOptions[T](opts),
	}
}

// Key returns the cache slot for a page request.
func (c *CachedPages[T]) Key(page, limit int) string {
	return c.keySerializer.SerializeKey(c.opts.namespace+".page", page, limit)
}

// List returns one page, loading only that page from the repository on a miss.
func (c *CachedPages[T]) List(ctx context.Context, page, limit int) ([]T, int, error) {
	if err := checkPage(page, limit); err != nil {
		return nil, 0, err
	}

	res, err := cache.GetOrFetch(ctx, c.cache, c.Key(page, limit), func(ctx context.Context) (Page[T], error) {
		criteria := append([]repository.SelectCriteria{}, c.opts.order...)
		criteria = append(criteria, paginate(page, limit))

		records, total, err := c.base.List(ctx, criteria...)
		if err != nil {
			return Page[T]{}, err
		}
		c.opts.loaded()
		return Page[T]{Records: records, Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}

	if res.Records == nil {
		return []T{}, res.Total, nil
	}
	return res.Records, res.Total, nil
}

// Unbounded lifts the default page size the repository applies to List so
// the whole table is loaded.
func Unbounded() repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Limit(0).Offset(0)
	}
}

func paginate(page, limit int) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Limit(limit).Offset(Offset(page, limit))
	}
}
