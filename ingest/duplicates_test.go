package ingest

import (
	"errors"
	"testing"

	"github.com/goliatone/go-flavor-inventory/model"
	"github.com/goliatone/go-flavor-inventory/resolver"
	"github.com/uptrace/bun/dialect"
)

func persisted(store, flavor, listedBy string, season bool) *model.InventoryRecord {
	date, _ := model.ParseDate("2024-03-01")
	return &model.InventoryRecord{
		Store:          &model.Store{Name: store},
		Employee:       &model.Employee{Name: listedBy},
		Date:           date,
		Flavor:         flavor,
		IsSeasonFlavor: season,
		Quantity:       12,
	}
}

func importRow(store, flavor, listedBy string, season bool) model.RawImportRow {
	date, _ := model.ParseDate("2024-03-01")
	return model.RawImportRow{Store: store, Date: date, Flavor: flavor, IsSeasonFlavor: season, Quantity: 12, ListedBy: listedBy}
}

func TestDuplicateIndex(t *testing.T) {
	tests := []struct {
		name      string
		dialect   dialect.Name
		row       model.RawImportRow
		duplicate bool
		conflict  bool
	}{
		{name: "exact row", dialect: dialect.SQLite, row: importRow("Acme", "Vanilla", "Jane", false), duplicate: true},
		{name: "season variant", dialect: dialect.SQLite, row: importRow("Acme", "Vanilla", "Jane", true), conflict: true},
		{name: "other flavor", dialect: dialect.SQLite, row: importRow("Acme", "Mint", "Jane", true)},
		{name: "case differs on exact database", dialect: dialect.PG, row: importRow("acme", "Vanilla", "jane", false)},
		{name: "case differs on mysql", dialect: dialect.MySQL, row: importRow("acme", "vanilla", "JANE", false), duplicate: true},
		{name: "case and season differ on mysql", dialect: dialect.MySQL, row: importRow("ACME", "Vanilla", "Jane", true), conflict: true},
		{name: "no references", dialect: dialect.SQLite, row: importRow("", "Vanilla", "", true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index := newDuplicateIndex(resolver.NameFold(tt.dialect))
			index.add(keyOfRecord(persisted("Acme", "Vanilla", "Jane", false), index.fold))

			if got := index.contains(tt.row); got != tt.duplicate {
				t.Fatalf("contains() = %v, want %v", got, tt.duplicate)
			}
			if tt.duplicate {
				return
			}
			err := index.claim(tt.row)
			if got := errors.Is(err, ErrUniqueConflict); got != tt.conflict {
				t.Errorf("claim() error = %v, want conflict %v", err, tt.conflict)
			}
		})
	}
}

func TestDuplicateIndex_ClaimWithinBatch(t *testing.T) {
	index := newDuplicateIndex(resolver.NameFold(dialect.SQLite))
	row := importRow("Acme", "Vanilla", "Jane", false)

	if err := index.claim(row); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	if err := index.claim(row); err != nil {
		t.Errorf("an exact repeat must be allowed, got %v", err)
	}

	row.IsSeasonFlavor = true
	if err := index.claim(row); !errors.Is(err, ErrUniqueConflict) {
		t.Errorf("expected ErrUniqueConflict for a season variant, got %v", err)
	}
}
