package model

import (
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// InventoryUniqueIndex names the composite uniqueness constraint over
// (store, employee, date, quantity, flavor).
const InventoryUniqueIndex = "inventory_store_employee_date_quantity_flavor_key"

// InventoryUniqueColumns lists the columns covered by InventoryUniqueIndex.
var InventoryUniqueColumns = []string{"store_id", "employee_id", "date", "quantity", "flavor"}

// InventoryRecord is one flavor count. Date is a calendar day at UTC midnight.
type InventoryRecord struct {
	bun.BaseModel `bun:"table:inventory,alias:i" json:"-"`

	ID             uuid.UUID  `bun:"id,pk,type:varchar(36)" json:"Id"`
	StoreID        *uuid.UUID `bun:"store_id,type:varchar(36)" json:"StoreId"`
	EmployeeID     *uuid.UUID `bun:"employee_id,type:varchar(36)" json:"EmployeeId"`
	Date           time.Time  `bun:"date,notnull" json:"Date"`
	Flavor         string     `bun:"flavor,notnull,type:varchar(255)" json:"Flavor"`
	IsSeasonFlavor bool       `bun:"is_season_flavor,notnull" json:"IsSeasonFlavor"`
	Quantity       int        `bun:"quantity,notnull" json:"Quantity"`

	Store    *Store    `bun:"rel:belongs-to,join:store_id=id" json:"-"`
	Employee *Employee `bun:"rel:belongs-to,join:employee_id=id" json:"-"`
}

// InventoryHandlers returns the repository handlers for InventoryRecord.
func InventoryHandlers() repository.ModelHandlers[*InventoryRecord] {
	return repository.ModelHandlers[*InventoryRecord]{
		NewRecord: func() *InventoryRecord {
			return &InventoryRecord{}
		},
		GetID: func(record *InventoryRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *InventoryRecord, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
	}
}
