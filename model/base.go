package model

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/cheesedrawer/dbmodel/db"
)

// base carries everything an operation group needs: a non-owning reference to
// the shared client, the pre-escaped table token and the record type's column
// mapping. Groups hold no per-call state, so one instance is safe to reuse
// across calls.
//
// Custom operation groups embed one of the public groups and build their
// queries from Table, Columns, Column and Builder, which keeps identifiers
// escaped and data values bound even in extensions.
type base[T Record] struct {
	client  db.Client
	table   string // escaped identifier, safe to splice into SQL
	fields  []field
	columns []string // escaped column identifiers, declaration order
}

func newBase[T Record](client db.Client, table string) (base[T], error) {
	if client == nil {
		return base[T]{}, fmt.Errorf("client must not be nil")
	}
	if table == "" {
		return base[T]{}, fmt.Errorf("table name must not be empty")
	}

	fields, err := fieldsOf(reflect.TypeFor[T]())
	if err != nil {
		return base[T]{}, err
	}

	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = db.EscapeIdentifier(f.column)
	}

	return base[T]{
		client:  client,
		table:   db.EscapeIdentifier(table),
		fields:  fields,
		columns: columns,
	}, nil
}

// Client returns the shared client. Groups never connect or disconnect it.
func (b base[T]) Client() db.Client {
	return b.client
}

// Table returns the escaped table identifier token.
func (b base[T]) Table() string {
	return b.table
}

// Columns returns the escaped column identifiers in declaration order.
func (b base[T]) Columns() []string {
	columns := make([]string, len(b.columns))
	copy(columns, b.columns)
	return columns
}

// Column escapes a single column name for use in a custom query.
func (b base[T]) Column(name string) string {
	return db.EscapeIdentifier(name)
}

// Builder returns a statement builder with PostgreSQL placeholders.
func (b base[T]) Builder() squirrel.StatementBuilderType {
	return db.StatementBuilder()
}

// returningClause lists every declared column so the store-confirmed record
// can be decoded from INSERT/UPDATE results.
func (b base[T]) returningClause() string {
	return "RETURNING " + strings.Join(b.columns, ", ")
}

// hasColumn reports whether name is a declared (unescaped) column.
func (b base[T]) hasColumn(name string) bool {
	for _, f := range b.fields {
		if f.column == name {
			return true
		}
	}
	return false
}

// Decode converts one driver row into a record.
func (b base[T]) Decode(row db.Row) (T, error) {
	var rec T
	if err := decodeRecord(row, &rec, b.fields); err != nil {
		return rec, err
	}
	return rec, nil
}

// DecodeAll converts a result set into records.
func (b base[T]) DecodeAll(rows []db.Row) ([]T, error) {
	records := make([]T, 0, len(rows))
	for _, row := range rows {
		rec, err := b.Decode(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// decodeOne enforces the single-row contract shared by the by-id operations:
// zero rows is an absent result, more than one row breaks the identifier
// uniqueness invariant.
func (b base[T]) decodeOne(query string, rows []db.Row) (*T, error) {
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		rec, err := b.Decode(rows[0])
		if err != nil {
			return nil, err
		}
		return &rec, nil
	default:
		return nil, db.NewQueryError(query, db.ErrMultipleResults)
	}
}
