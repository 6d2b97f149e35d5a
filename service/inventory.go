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

// InventoryInput is the body of inventory create and update requests.
type InventoryInput struct {
	ID             *uuid.UUID `json:"Id"`
	StoreID        *uuid.UUID `json:"StoreId"`
	EmployeeID     *uuid.UUID `json:"EmployeeId"`
	Date           string     `json:"Date"`
	Flavor         string     `json:"Flavor"`
	IsSeasonFlavor bool       `json:"IsSeasonFlavor"`
	Quantity       int        `json:"Quantity"`
}

// Validate checks field formats. References are checked against the store.
func (in InventoryInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Date, validation.Required, validation.Date(model.DateLayout)),
		validation.Field(&in.Flavor, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Quantity, validation.Min(0)),
	)
	if err != nil {
		return apperr.InvalidInput("invalid inventory: %v", err)
	}
	return nil
}

func (in InventoryInput) apply(record *model.InventoryRecord) {
	record.StoreID = in.StoreID
	record.EmployeeID = in.EmployeeID
	record.Date, _ = model.ParseDate(in.Date)
	record.Flavor = in.Flavor
	record.IsSeasonFlavor = in.IsSeasonFlavor
	record.Quantity = in.Quantity
}

// Inventory manages inventory records.
type Inventory struct {
	repos  *storage.Repositories
	engine *query.Engine
}

// NewInventory creates the inventory service.
func NewInventory(repos *storage.Repositories, engine *query.Engine) *Inventory {
	return &Inventory{repos: repos, engine: engine}
}

// List returns a filtered page of projected records and the match count.
func (s *Inventory) List(ctx context.Context, p query.Params) ([]model.InventoryView, int, error) {
	return s.engine.List(ctx, p)
}

// Get returns one projected record.
func (s *Inventory) Get(ctx context.Context, id string) (model.InventoryView, error) {
	return s.engine.Get(ctx, id)
}

// Create inserts a record. A record identical to an existing one on the
// unique tuple is a Conflict.
func (s *Inventory) Create(ctx context.Context, in InventoryInput) (*model.InventoryRecord, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	record := &model.InventoryRecord{ID: uuid.New()}
	in.apply(record)

	err := s.repos.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.checkReferences(ctx, tx, in); err != nil {
			return err
		}
		_, err := s.repos.Inventory.CreateTx(ctx, tx, record)
		return err
	})
	if err != nil {
		return nil, writeError(err, "inventory")
	}
	return record, nil
}

// Update replaces the fields of record id. The body identifier, when given,
// must match id.
func (s *Inventory) Update(ctx context.Context, id string, in InventoryInput) error {
	target, err := uuid.Parse(id)
	if err != nil {
		return apperr.NotFound("inventory %s not found", id)
	}
	if in.ID != nil && *in.ID != target {
		return apperr.InvalidInput("identifier %s does not match %s", in.ID, id)
	}
	if err := in.Validate(); err != nil {
		return err
	}

	err = s.repos.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := s.repos.Inventory.GetByIDTx(ctx, tx, id)
		if storage.IsNotFound(err) {
			return apperr.NotFound("inventory %s not found", id)
		}
		if err != nil {
			return err
		}

		if err := s.checkReferences(ctx, tx, in); err != nil {
			return err
		}

		in.apply(record)
		return updateByPK(ctx, tx, record, "inventory", id)
	})
	if err != nil {
		return writeError(err, "inventory")
	}
	return nil
}

// Delete removes record id.
func (s *Inventory) Delete(ctx context.Context, id string) error {
	record, err := s.engine.Record(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repos.Inventory.Delete(ctx, record); err != nil {
		return apperr.PersistenceFailure(err, "delete inventory %s", id)
	}
	return nil
}

func (s *Inventory) checkReferences(ctx context.Context, tx bun.IDB, in InventoryInput) error {
	if in.StoreID != nil {
		if err := exists(ctx, tx, s.repos.Stores, "store", in.StoreID.String()); err != nil {
			return err
		}
	}
	if in.EmployeeID != nil {
		if err := exists(ctx, tx, s.repos.Employees, "employee", in.EmployeeID.String()); err != nil {
			return err
		}
	}
	return nil
}

func exists[T any](ctx context.Context, tx bun.IDB, repo repository.Repository[T], kind, id string) error {
	_, err := repo.GetByIDTx(ctx, tx, id)
	if storage.IsNotFound(err) {
		return apperr.InvalidInput("%s %s does not exist", kind, id)
	}
	return err
}

// updateByPK writes record and reports ConflictLost when the row vanished
// after it was read.
func updateByPK(ctx context.Context, tx bun.IDB, record any, kind, id string) error {
	res, err := tx.NewUpdate().Model(record).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.ConflictLost("%s %s was removed before the update", kind, id)
	}
	return nil
}

// writeError keeps domain errors and classifies driver errors.
func writeError(err error, kind string) error {
	if apperr.Known(err) {
		return err
	}
	if storage.IsUniqueViolation(err) {
		return apperr.Conflict(err, "%s already exists", kind)
	}
	return apperr.PersistenceFailure(err, "write %s", kind)
}
