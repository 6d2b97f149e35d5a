// Package query translates inventory listing filters into a bounded, ordered
// page of projected records.
package query

import (
	"context"

	"github.com/goliatone/go-flavor-inventory/internal/apperr"
	"github.com/goliatone/go-flavor-inventory/internal/storage"
	"github.com/goliatone/go-flavor-inventory/model"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Engine runs filtered inventory queries.
type Engine struct {
	repo repository.Repository[*model.InventoryRecord]
}

// NewEngine creates an Engine over the inventory repository.
func NewEngine(repo repository.Repository[*model.InventoryRecord]) *Engine {
	return &Engine{repo: repo}
}

// List returns the requested page of matching records ordered by date and
// identifier, together with the number of matches across all pages.
func (e *Engine) List(ctx context.Context, p Params) ([]model.InventoryView, int, error) {
	if err := p.Page.Validate(); err != nil {
		return nil, 0, err
	}

	records, total, err := e.repo.List(ctx, p.Criteria()...)
	if err != nil {
		return nil, 0, apperr.NotFound("inventory collection unavailable: %v", err)
	}
	return model.ProjectAll(records), total, nil
}

// Get returns the projection of one record.
func (e *Engine) Get(ctx context.Context, id string) (model.InventoryView, error) {
	record, err := e.Record(ctx, id)
	if err != nil {
		return model.InventoryView{}, err
	}
	return record.Project(), nil
}

// Record loads one record with its store and employee.
func (e *Engine) Record(ctx context.Context, id string) (*model.InventoryRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.NotFound("inventory %s not found", id)
	}

	record, err := e.repo.GetByID(ctx, id, WithReferences())
	if storage.IsNotFound(err) {
		return nil, apperr.NotFound("inventory %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Criteria builds the select criteria for p: references joined, filters
// combined with AND, stable order, then limit and offset.
func (p Params) Criteria() []repository.SelectCriteria {
	criteria := []repository.SelectCriteria{WithReferences()}

	if len(p.StoreNames) > 0 {
		criteria = append(criteria, whereIn("store.name", p.StoreNames))
	}
	if len(p.Flavors) > 0 {
		criteria = append(criteria, whereIn("i.flavor", p.Flavors))
	}
	if p.MinQuantity != nil {
		criteria = append(criteria, where("i.quantity", ">=", *p.MinQuantity))
	}
	if p.MaxQuantity != nil {
		criteria = append(criteria, where("i.quantity", "<=", *p.MaxQuantity))
	}
	if p.MinDate != nil {
		criteria = append(criteria, where("i.date", ">=", *p.MinDate))
	}
	if p.MaxDate != nil {
		criteria = append(criteria, where("i.date", "<=", *p.MaxDate))
	}
	if p.IsSeasonFlavor != nil {
		criteria = append(criteria, where("i.is_season_flavor", "=", *p.IsSeasonFlavor))
	}

	return append(criteria, orderByDate(), paginate(p.Page))
}

// WithReferences joins the store and employee of each record.
func WithReferences() repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation("Store").Relation("Employee")
	}
}

func whereIn(column string, values []string) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("? IN (?)", bun.Ident(column), bun.In(values))
	}
}

// op is one of a fixed set of comparison operators, never user input.
func where(column, op string, value any) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("? "+op+" ?", bun.Ident(column), value)
	}
}

func orderByDate() repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("? ASC, ? ASC", bun.Ident("i.date"), bun.Ident("i.id"))
	}
}

func paginate(p Page) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Limit(p.Limit).Offset(p.Offset())
	}
}

// OrderByName orders store and employee listings by name then identifier.
func OrderByName() repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.? ASC, ?TableAlias.? ASC", bun.Ident(model.NameColumn), bun.Ident("id"))
	}
}
