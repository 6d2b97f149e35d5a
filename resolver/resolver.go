// Package resolver translates store and employee names into persisted
// identities during an import batch.
//
// A lookup either finds an existing record or returns a pending record with a
// fresh identifier. Pending records are only written by Batch.Flush, inside
// the caller's transaction, so a batch that fails never leaves a half created
// store or employee behind.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-flavor-inventory/internal/storage"
	"github.com/goliatone/go-flavor-inventory/model"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// Kind names the entity a name is resolved to.
type Kind string

const (
	KindStore    Kind = "store"
	KindEmployee Kind = "employee"
)

// Resolution is the outcome of resolving one name.
type Resolution[T model.Named] struct {
	Record  T
	Pending bool
}

// Resolver starts resolution batches over the store and employee repositories.
type Resolver struct {
	stores    repository.Repository[*model.Store]
	employees repository.Repository[*model.Employee]
}

// New creates a Resolver.
func New(stores repository.Repository[*model.Store], employees repository.Repository[*model.Employee]) *Resolver {
	return &Resolver{stores: stores, employees: employees}
}

// Begin starts a batch bound to tx. Every lookup and the final flush run on tx.
func (r *Resolver) Begin(tx bun.IDB) *Batch {
	fold := NameFold(tx.Dialect().Name())
	return &Batch{
		tx:        tx,
		stores:    newNamedBatch(r.stores, fold, func() *model.Store { return &model.Store{} }),
		employees: newNamedBatch(r.employees, fold, func() *model.Employee { return &model.Employee{} }),
	}
}

// NameFold returns how the database compares names. MySQL's default
// collation ignores case, so "Acme" and "acme" are one store there; every
// other supported database compares names exactly.
func NameFold(name dialect.Name) func(string) string {
	if name == dialect.MySQL {
		return strings.ToLower
	}
	return func(s string) string { return s }
}

// Batch memoizes resolutions for the lifetime of one import so a name seen
// twice resolves to the same identity and is created at most once.
type Batch struct {
	tx        bun.IDB
	stores    *namedBatch[*model.Store]
	employees *namedBatch[*model.Employee]
}

// Store resolves a store by name, compared the way the database compares it.
func (b *Batch) Store(ctx context.Context, name string) (Resolution[*model.Store], error) {
	return b.stores.resolve(ctx, b.tx, name)
}

// Employee resolves an employee by name, compared the way the database compares it.
func (b *Batch) Employee(ctx context.Context, name string) (Resolution[*model.Employee], error) {
	return b.employees.resolve(ctx, b.tx, name)
}

// Resolve looks a name up by kind and returns the identity of the record.
func (b *Batch) Resolve(ctx context.Context, kind Kind, name string) (uuid.UUID, error) {
	switch kind {
	case KindStore:
		res, err := b.Store(ctx, name)
		if err != nil {
			return uuid.Nil, err
		}
		return res.Record.ID, nil
	case KindEmployee:
		res, err := b.Employee(ctx, name)
		if err != nil {
			return uuid.Nil, err
		}
		return res.Record.ID, nil
	}
	return uuid.Nil, fmt.Errorf("resolver: unknown kind %q", kind)
}

// Pending returns how many stores and employees Flush would create.
func (b *Batch) Pending() (stores, employees int) {
	return len(b.stores.pending), len(b.employees.pending)
}

// Flush inserts every pending record on the batch transaction.
func (b *Batch) Flush(ctx context.Context) error {
	if err := b.stores.flush(ctx, b.tx); err != nil {
		return fmt.Errorf("create stores: %w", err)
	}
	if err := b.employees.flush(ctx, b.tx); err != nil {
		return fmt.Errorf("create employees: %w", err)
	}
	return nil
}

type namedBatch[T model.Named] struct {
	repo      repository.Repository[T]
	fold      func(string) string
	newRecord func() T
	memo      map[string]Resolution[T]
	pending   []T
}

func newNamedBatch[T model.Named](repo repository.Repository[T], fold func(string) string, newRecord func() T) *namedBatch[T] {
	return &namedBatch[T]{
		repo:      repo,
		fold:      fold,
		newRecord: newRecord,
		memo:      make(map[string]Resolution[T]),
	}
}

func (n *namedBatch[T]) resolve(ctx context.Context, tx bun.IDB, name string) (Resolution[T], error) {
	key := n.fold(name)
	if res, ok := n.memo[key]; ok {
		return res, nil
	}

	record, err := n.repo.GetTx(ctx, tx, ByName(name))
	switch {
	case err == nil:
		res := Resolution[T]{Record: record}
		n.memo[key] = res
		return res, nil
	case !storage.IsNotFound(err):
		return Resolution[T]{}, fmt.Errorf("lookup %q: %w", name, err)
	}

	record = n.newRecord()
	record.SetRecordID(uuid.New())
	record.SetDisplayName(name)

	res := Resolution[T]{Record: record, Pending: true}
	n.memo[key] = res
	n.pending = append(n.pending, record)
	return res, nil
}

func (n *namedBatch[T]) flush(ctx context.Context, tx bun.IDB) error {
	if len(n.pending) == 0 {
		return nil
	}
	if _, err := n.repo.CreateManyTx(ctx, tx, n.pending); err != nil {
		return err
	}
	for _, record := range n.pending {
		n.memo[n.fold(record.DisplayName())] = Resolution[T]{Record: record}
	}
	n.pending = nil
	return nil
}

// ByName selects the record whose name equals name exactly.
func ByName(name string) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.? = ?", bun.Ident(model.NameColumn), name)
	}
}
