// Package ingest imports inventory counts from CSV uploads.
//
// An upload is parsed into normalized rows, each row is checked against the
// inventory persisted before the upload started, and every row that is not
// already present is written in a single transaction together with any
// store or employee it introduces. Either the whole batch commits or nothing
// does.
package ingest

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/goliatone/go-flavor-inventory/internal/apperr"
	"github.com/goliatone/go-flavor-inventory/model"
	"github.com/goliatone/go-flavor-inventory/resolver"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// Recorder observes finished imports.
type Recorder interface {
	RecordImport(accepted, duplicates int, err error, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordImport(int, int, error, time.Duration) {}

// Pipeline runs CSV imports against one database.
type Pipeline struct {
	db       *bun.DB
	resolver *resolver.Resolver
	recorder Recorder
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder reports every import to r.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// NewPipeline creates a Pipeline.
func NewPipeline(db *bun.DB, res *resolver.Resolver, opts ...Option) *Pipeline {
	p := &Pipeline{db: db, resolver: res, recorder: nopRecorder{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Upload is a named byte stream received from a client.
type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// Import checks and parses an upload, then commits its new rows.
func (p *Pipeline) Import(ctx context.Context, upload Upload) (*model.ImportOutcome, error) {
	if err := CheckUpload(upload.Filename, upload.Size); err != nil {
		return nil, err
	}

	rows, err := Parse(upload.Body)
	if err != nil {
		return nil, err
	}
	return p.ImportRows(ctx, rows)
}

// ImportRows commits rows that are not already persisted. Two identical rows
// in the same batch are both accepted: duplicates are only detected against
// the state before the batch. A row that differs from a persisted or accepted
// row only in its season flag fails the whole batch with ErrUniqueConflict.
func (p *Pipeline) ImportRows(ctx context.Context, rows []model.RawImportRow) (*model.ImportOutcome, error) {
	started := time.Now()
	outcome := model.NewImportOutcome()

	var accepted []model.RawImportRow
	err := p.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		index, err := loadDuplicateIndex(ctx, tx, rows)
		if err != nil {
			return err
		}

		for _, row := range rows {
			if index.contains(row) {
				outcome.DuplicateInventories = append(outcome.DuplicateInventories, row.View())
				continue
			}
			if err := index.claim(row); err != nil {
				return err
			}
			accepted = append(accepted, row)
		}

		return p.commit(ctx, tx, accepted)
	})

	if err != nil {
		p.recorder.RecordImport(0, 0, err, time.Since(started))
		log.Printf("ingest: batch of %d rows failed: %v", len(rows), err)
		return nil, apperr.PersistenceFailure(err, "import batch failed")
	}

	for _, row := range accepted {
		outcome.Inventories = append(outcome.Inventories, row.View())
	}

	p.recorder.RecordImport(len(outcome.Inventories), len(outcome.DuplicateInventories), nil, time.Since(started))
	log.Printf("ingest: committed %d rows, %d duplicates", len(outcome.Inventories), len(outcome.DuplicateInventories))
	return outcome, nil
}

func (p *Pipeline) commit(ctx context.Context, tx bun.Tx, rows []model.RawImportRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch := p.resolver.Begin(tx)
	records := make([]*model.InventoryRecord, 0, len(rows))
	for _, row := range rows {
		record := &model.InventoryRecord{
			ID:             uuid.New(),
			Date:           row.Date,
			Flavor:         row.Flavor,
			IsSeasonFlavor: row.IsSeasonFlavor,
			Quantity:       row.Quantity,
		}

		if row.Store != "" {
			id, err := batch.Resolve(ctx, resolver.KindStore, row.Store)
			if err != nil {
				return err
			}
			record.StoreID = &id
		}
		if row.ListedBy != "" {
			id, err := batch.Resolve(ctx, resolver.KindEmployee, row.ListedBy)
			if err != nil {
				return err
			}
			record.EmployeeID = &id
		}

		records = append(records, record)
	}

	if err := batch.Flush(ctx); err != nil {
		return err
	}
	return insertIgnoringDuplicates(ctx, tx, records)
}

// insertIgnoringDuplicates writes records, letting the composite unique index
// drop a second copy of a tuple accepted twice in the same batch.
func insertIgnoringDuplicates(ctx context.Context, db bun.IDB, records []*model.InventoryRecord) error {
	q := db.NewInsert().Model(&records)
	if db.Dialect().Name() == dialect.MySQL {
		q = q.Ignore()
	} else {
		q = q.On("CONFLICT DO NOTHING")
	}
	_, err := q.Exec(ctx)
	return err
}
