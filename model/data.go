// Package model provides a typed, extensible CRUD abstraction over a single
// PostgreSQL table. A Model bundles four operation groups (Create, Read,
// Update, Delete) bound to one shared db.Client and one table; the record
// shape is declared as a struct with db tags and validated before any query
// is issued.
//
// The identifier is always caller-assigned: a record must carry a non-zero
// UUID before Create.One accepts it. The store never generates identifiers.
package model

import "github.com/google/uuid"

// Record is the contract every record type must satisfy. Embed Data to get
// the identifier field and this interface for free.
type Record interface {
	PrimaryID() uuid.UUID
}

// Data carries the identifier field required of every record. Consumer
// record types embed it:
//
//	type Widget struct {
//		model.Data
//		Name  string `db:"name" validate:"required"`
//		Count int    `db:"count"`
//	}
type Data struct {
	ID uuid.UUID `db:"id" validate:"required"`
}

// PrimaryID returns the record's unique identifier.
func (d Data) PrimaryID() uuid.UUID {
	return d.ID
}

// IDColumn is the reserved column name of the identifier field.
const IDColumn = "id"
