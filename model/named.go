package model

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NameColumn is the identifier column shared by Store and Employee.
const NameColumn = "name"

// Named is implemented by reference records addressed by a unique display name.
type Named interface {
	comparable
	RecordID() uuid.UUID
	SetRecordID(id uuid.UUID)
	DisplayName() string
	SetDisplayName(name string)
}

// Store is a shop location. Deleting a store deletes its inventory records.
type Store struct {
	bun.BaseModel `bun:"table:store,alias:s" json:"-"`

	ID   uuid.UUID `bun:"id,pk,type:varchar(36)" json:"Id"`
	Name string    `bun:"name,notnull,unique,type:varchar(255)" json:"Name"`
}

func (s *Store) RecordID() uuid.UUID        { return s.ID }
func (s *Store) SetRecordID(id uuid.UUID)   { s.ID = id }
func (s *Store) DisplayName() string        { return s.Name }
func (s *Store) SetDisplayName(name string) { s.Name = name }

// Employee is the person who listed an inventory count.
type Employee struct {
	bun.BaseModel `bun:"table:employee,alias:e" json:"-"`

	ID   uuid.UUID `bun:"id,pk,type:varchar(36)" json:"Id"`
	Name string    `bun:"name,notnull,unique,type:varchar(255)" json:"Name"`
}

func (e *Employee) RecordID() uuid.UUID        { return e.ID }
func (e *Employee) SetRecordID(id uuid.UUID)   { e.ID = id }
func (e *Employee) DisplayName() string        { return e.Name }
func (e *Employee) SetDisplayName(name string) { e.Name = name }

// StoreHandlers returns the repository handlers for Store records.
func StoreHandlers() repository.ModelHandlers[*Store] {
	return namedHandlers(func() *Store { return &Store{} })
}

// EmployeeHandlers returns the repository handlers for Employee records.
func EmployeeHandlers() repository.ModelHandlers[*Employee] {
	return namedHandlers(func() *Employee { return &Employee{} })
}

func namedHandlers[T Named](newRecord func() T) repository.ModelHandlers[T] {
	return repository.ModelHandlers[T]{
		NewRecord: newRecord,
		GetID: func(record T) uuid.UUID {
			var zero T
			if record == zero {
				return uuid.Nil
			}
			return record.RecordID()
		},
		SetID: func(record T, id uuid.UUID) {
			record.SetRecordID(id)
		},
		GetIdentifier: func() string {
			return NameColumn
		},
	}
}
