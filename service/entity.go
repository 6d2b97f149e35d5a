package service

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-flavor-inventory/internal/apperr"
	"github.com/goliatone/go-flavor-inventory/internal/storage"
	"github.com/goliatone/go-flavor-inventory/model"
	"github.com/goliatone/go-flavor-inventory/query"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Listing serves one page of records and the size of the whole listing.
// Both repositorycache listings satisfy it.
type Listing[T any] interface {
	List(ctx context.Context, page, limit int) ([]T, int, error)
}

// EntityInput is the body of store and employee create and update requests.
type EntityInput struct {
	ID   *uuid.UUID `json:"Id"`
	Name string     `json:"Name"`
}

// Validate requires a name.
func (in EntityInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 255)),
	)
	if err != nil {
		return apperr.InvalidInput("invalid %s", err)
	}
	return nil
}

// Entities manages one kind of named reference record.
type Entities[T model.Named] struct {
	kind      string
	fkColumn  string
	db        *bun.DB
	repo      repository.Repository[T]
	listing   Listing[T]
	newRecord func() T
}

// NewStores creates the store service. listing serves GET /stores.
func NewStores(repos *storage.Repositories, listing Listing[*model.Store]) *Entities[*model.Store] {
	return &Entities[*model.Store]{
		kind:      "store",
		fkColumn:  "store_id",
		db:        repos.DB,
		repo:      repos.Stores,
		listing:   listing,
		newRecord: func() *model.Store { return &model.Store{} },
	}
}

// NewEmployees creates the employee service. listing serves GET /employees.
func NewEmployees(repos *storage.Repositories, listing Listing[*model.Employee]) *Entities[*model.Employee] {
	return &Entities[*model.Employee]{
		kind:      "employee",
		fkColumn:  "employee_id",
		db:        repos.DB,
		repo:      repos.Employees,
		listing:   listing,
		newRecord: func() *model.Employee { return &model.Employee{} },
	}
}

// Kind names the managed entity.
func (s *Entities[T]) Kind() string {
	return s.kind
}

// List returns a page of the cached listing. Results may be stale until the
// cache entry expires.
func (s *Entities[T]) List(ctx context.Context, page query.Page) ([]T, int, error) {
	if err := page.Validate(); err != nil {
		return nil, 0, err
	}

	records, total, err := s.listing.List(ctx, page.Page, page.Limit)
	if err != nil {
		return nil, 0, apperr.NotFound("%s collection unavailable: %v", s.kind, err)
	}
	return records, total, nil
}

// Get loads one record.
func (s *Entities[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if _, err := uuid.Parse(id); err != nil {
		return zero, apperr.NotFound("%s %s not found", s.kind, id)
	}

	record, err := s.repo.GetByID(ctx, id)
	if storage.IsNotFound(err) {
		return zero, apperr.NotFound("%s %s not found", s.kind, id)
	}
	if err != nil {
		return zero, err
	}
	return record, nil
}

// Create inserts a record. A taken name is a Conflict.
func (s *Entities[T]) Create(ctx context.Context, in EntityInput) (T, error) {
	var zero T
	if err := in.Validate(); err != nil {
		return zero, err
	}

	record := s.newRecord()
	record.SetRecordID(uuid.New())
	record.SetDisplayName(in.Name)

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return zero, writeError(err, s.kind)
	}
	return created, nil
}

// Update renames record id. The body identifier, when given, must match id.
func (s *Entities[T]) Update(ctx context.Context, id string, in EntityInput) error {
	target, err := uuid.Parse(id)
	if err != nil {
		return apperr.NotFound("%s %s not found", s.kind, id)
	}
	if in.ID != nil && *in.ID != target {
		return apperr.InvalidInput("identifier %s does not match %s", in.ID, id)
	}
	if err := in.Validate(); err != nil {
		return err
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := s.repo.GetByIDTx(ctx, tx, id)
		if storage.IsNotFound(err) {
			return apperr.NotFound("%s %s not found", s.kind, id)
		}
		if err != nil {
			return err
		}

		record.SetDisplayName(in.Name)
		return updateByPK(ctx, tx, record, s.kind, id)
	})
	if err != nil {
		return writeError(err, s.kind)
	}
	return nil
}

// Delete removes record id and every inventory record that references it in
// one transaction.
func (s *Entities[T]) Delete(ctx context.Context, id string) error {
	record, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*model.InventoryRecord)(nil)).
			Where("? = ?", bun.Ident(s.fkColumn), record.RecordID()).
			Exec(ctx)
		if err != nil {
			return err
		}
		return s.repo.DeleteTx(ctx, tx, record)
	})
	if err != nil {
		return apperr.PersistenceFailure(err, "delete %s %s", s.kind, id)
	}
	return nil
}
