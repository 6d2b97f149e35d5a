package storage

import (
	"context"
	"fmt"
	"log"

	"github.com/goliatone/go-flavor-inventory/model"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// Migrate creates the store, employee and inventory tables when missing,
// together with the composite uniqueness index on inventory. Inventory rows
// are deleted with the store or employee they reference.
func Migrate(ctx context.Context, db *bun.DB) error {
	tables := []struct {
		model any
		fks   []string
	}{
		{model: (*model.Store)(nil)},
		{model: (*model.Employee)(nil)},
		{
			model: (*model.InventoryRecord)(nil),
			fks: []string{
				`(store_id) REFERENCES store (id) ON DELETE CASCADE`,
				`(employee_id) REFERENCES employee (id) ON DELETE CASCADE`,
			},
		},
	}

	for _, table := range tables {
		q := db.NewCreateTable().Model(table.model).IfNotExists()
		for _, fk := range table.fks {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", table.model, err)
		}
	}

	idx := db.NewCreateIndex().
		Model((*model.InventoryRecord)(nil)).
		Unique().
		Index(model.InventoryUniqueIndex).
		Column(model.InventoryUniqueColumns...)

	// mysql has no CREATE INDEX IF NOT EXISTS
	if db.Dialect().Name() != dialect.MySQL {
		idx = idx.IfNotExists()
	}
	if _, err := idx.Exec(ctx); err != nil && !IsDuplicateIndex(err) {
		return fmt.Errorf("create index %s: %w", model.InventoryUniqueIndex, err)
	}

	log.Printf("storage: schema is up to date")
	return nil
}
