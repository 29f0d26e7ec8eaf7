package model

import "github.com/cheesedrawer/dbmodel/db"

// Model bundles the four operation groups for one table and one record type.
// It adds no behaviour of its own; all operations live on the groups.
//
// The group fields are exported so extended models can swap one group for a
// custom implementation while keeping the rest:
//
//	type WidgetModel struct {
//		*model.Model[Widget]
//		Read *WidgetReader
//	}
//
//	func NewWidgetModel(client db.Client) (*WidgetModel, error) {
//		m, err := model.New[Widget](client, "widgets")
//		if err != nil {
//			return nil, err
//		}
//		reader, err := NewWidgetReader(client)
//		if err != nil {
//			return nil, err
//		}
//		return &WidgetModel{Model: m, Read: reader}, nil
//	}
//
// A Model shares its client: it never connects or disconnects it, and its
// operations surface db.ErrNotConnected while the client is disconnected.
type Model[T Record] struct {
	client db.Client
	table  string

	Create *Create[T]
	Read   *Read[T]
	Update *Update[T]
	Delete *Delete[T]
}

// New builds a Model for the given table. The record type's schema is
// resolved once here; an invalid record type (no identifier column,
// duplicate columns, non-struct) fails construction.
func New[T Record](client db.Client, table string) (*Model[T], error) {
	create, err := NewCreate[T](client, table)
	if err != nil {
		return nil, err
	}
	read, err := NewRead[T](client, table)
	if err != nil {
		return nil, err
	}
	update, err := NewUpdate[T](client, table)
	if err != nil {
		return nil, err
	}
	del, err := NewDelete[T](client, table)
	if err != nil {
		return nil, err
	}

	return &Model[T]{
		client: client,
		table:  table,
		Create: create,
		Read:   read,
		Update: update,
		Delete: del,
	}, nil
}

// Client returns the shared client, for extended model constructors.
func (m *Model[T]) Client() db.Client {
	return m.client
}

// TableName returns the raw (unescaped) table name the model was built with.
func (m *Model[T]) TableName() string {
	return m.table
}
