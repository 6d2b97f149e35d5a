package storage

import (
	"github.com/goliatone/go-flavor-inventory/model"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// Repositories groups the repositories of every persisted model.
type Repositories struct {
	DB        *bun.DB
	Stores    repository.Repository[*model.Store]
	Employees repository.Repository[*model.Employee]
	Inventory repository.Repository[*model.InventoryRecord]
}

// NewRepositories builds go-repository-bun repositories over db.
func NewRepositories(db *bun.DB) *Repositories {
	return &Repositories{
		DB:        db,
		Stores:    repository.NewRepository[*model.Store](db, model.StoreHandlers()),
		Employees: repository.NewRepository[*model.Employee](db, model.EmployeeHandlers()),
		Inventory: repository.NewRepository[*model.InventoryRecord](db, model.InventoryHandlers()),
	}
}
