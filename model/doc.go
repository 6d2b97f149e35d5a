// Package model holds the persisted records of the inventory ledger and the
// display shapes derived from them.
//
// Store and Employee are named reference records. InventoryRecord is a count of
// one flavor, taken on one calendar day, at one store, listed by one employee.
// Both references are nullable so orphaned inventory stays representable.
//
// Records are bun models; the ModelHandlers helpers plug them into
// go-repository-bun generic repositories.
package model
