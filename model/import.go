package model

import "time"

// RawImportRow is one normalized CSV line. It lives for a single import.
type RawImportRow struct {
	Line           int
	Store          string
	Date           time.Time
	Flavor         string
	IsSeasonFlavor bool
	Quantity       int
	ListedBy       string
}

// View projects the row the same way persisted records are projected. A blank
// store or employee name has no reference and renders as null.
func (r RawImportRow) View() InventoryView {
	return InventoryView{
		Store:          optional(r.Store),
		Date:           FormatDate(r.Date),
		Flavor:         r.Flavor,
		IsSeasonFlavor: YesNo(r.IsSeasonFlavor),
		Quantity:       r.Quantity,
		ListedBy:       optional(r.ListedBy),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ImportOutcome reports which rows of an upload were accepted and which were
// already present. Rows dropped for malformation appear in neither list.
type ImportOutcome struct {
	Inventories          []InventoryView `json:"Inventories"`
	DuplicateInventories []InventoryView `json:"DuplicateInventories"`
}

// NewImportOutcome returns an outcome with empty, non-nil sequences.
func NewImportOutcome() *ImportOutcome {
	return &ImportOutcome{
		Inventories:          []InventoryView{},
		DuplicateInventories: []InventoryView{},
	}
}
