package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-flavor-inventory/model"
	"github.com/goliatone/go-flavor-inventory/resolver"
	"github.com/uptrace/bun"
)

// rowKey is the identity used to detect rows that are already persisted.
type rowKey struct {
	store    string
	date     string
	flavor   string
	season   bool
	quantity int
	listedBy string
}

func keyOfRow(r model.RawImportRow, fold func(string) string) rowKey {
	return rowKey{
		store:    fold(r.Store),
		date:     model.FormatDate(r.Date),
		flavor:   fold(r.Flavor),
		season:   r.IsSeasonFlavor,
		quantity: r.Quantity,
		listedBy: fold(r.ListedBy),
	}
}

func keyOfRecord(r *model.InventoryRecord, fold func(string) string) rowKey {
	k := rowKey{
		date:     model.FormatDate(r.Date),
		flavor:   fold(r.Flavor),
		season:   r.IsSeasonFlavor,
		quantity: r.Quantity,
	}
	if r.Store != nil {
		k.store = fold(r.Store.Name)
	}
	if r.Employee != nil {
		k.listedBy = fold(r.Employee.Name)
	}
	return k
}

// ErrUniqueConflict reports a row that shares store, employee, date,
// quantity and flavor with another row but differs in its season flag. The
// composite unique index cannot store both.
var ErrUniqueConflict = errors.New("row conflicts with the inventory unique index")

// uniqueKey mirrors the columns of model.InventoryUniqueIndex.
type uniqueKey struct {
	store    string
	listedBy string
	date     string
	quantity int
	flavor   string
}

// uniqueKeyOf reports false for rows without both references: NULL columns
// never collide in the unique index.
func uniqueKeyOf(k rowKey) (uniqueKey, bool) {
	if k.store == "" || k.listedBy == "" {
		return uniqueKey{}, false
	}
	return uniqueKey{store: k.store, listedBy: k.listedBy, date: k.date, quantity: k.quantity, flavor: k.flavor}, true
}

// duplicateIndex holds the keys of persisted records that share a date with
// the upload. The exact keys are built once, before any row of the batch is
// written, and are never extended with accepted rows. The claimed unique
// tuples also grow with accepted rows so a batch cannot report a row that
// the unique index would drop.
type duplicateIndex struct {
	fold    func(string) string
	exact   map[rowKey]struct{}
	claimed map[uniqueKey]rowKey
}

func newDuplicateIndex(fold func(string) string) *duplicateIndex {
	return &duplicateIndex{fold: fold, exact: map[rowKey]struct{}{}, claimed: map[uniqueKey]rowKey{}}
}

func (d *duplicateIndex) add(k rowKey) {
	d.exact[k] = struct{}{}
	if uk, ok := uniqueKeyOf(k); ok {
		d.claimed[uk] = k
	}
}

func (d *duplicateIndex) contains(r model.RawImportRow) bool {
	_, ok := d.exact[keyOfRow(r, d.fold)]
	return ok
}

// claim records an accepted row. Exact repeats of an accepted row are fine
// and are dropped at insert; any other row on a claimed unique tuple fails.
func (d *duplicateIndex) claim(r model.RawImportRow) error {
	k := keyOfRow(r, d.fold)
	uk, ok := uniqueKeyOf(k)
	if !ok {
		return nil
	}
	if prev, taken := d.claimed[uk]; taken && prev != k {
		return fmt.Errorf("%w: %s %s %s %d by %s", ErrUniqueConflict, k.store, k.date, k.flavor, k.quantity, k.listedBy)
	}
	d.claimed[uk] = k
	return nil
}

func loadDuplicateIndex(ctx context.Context, db bun.IDB, rows []model.RawImportRow) (*duplicateIndex, error) {
	index := newDuplicateIndex(resolver.NameFold(db.Dialect().Name()))
	if len(rows) == 0 {
		return index, nil
	}

	seen := map[time.Time]struct{}{}
	dates := make([]time.Time, 0, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.Date]; ok {
			continue
		}
		seen[r.Date] = struct{}{}
		dates = append(dates, r.Date)
	}

	var records []*model.InventoryRecord
	err := db.NewSelect().
		Model(&records).
		Relation("Store").
		Relation("Employee").
		Where("?TableAlias.? IN (?)", bun.Ident("date"), bun.In(dates)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	for _, r := range records {
		index.add(keyOfRecord(r, index.fold))
	}
	return index, nil
}
