package model

import (
	"context"
	"errors"

	"github.com/cheesedrawer/dbmodel/db"
)

// Create is the operation group for inserting records.
type Create[T Record] struct {
	base[T]
}

// NewCreate builds a Create group bound to the given client and table.
func NewCreate[T Record](client db.Client, table string) (*Create[T], error) {
	b, err := newBase[T](client, table)
	if err != nil {
		return nil, err
	}
	return &Create[T]{base: b}, nil
}

// One inserts the record and returns it as confirmed by the store. The
// record must carry its caller-assigned identifier; schema violations are
// rejected before any query is issued.
func (c *Create[T]) One(ctx context.Context, record T) (T, error) {
	var zero T

	if err := validateRecord(record); err != nil {
		return zero, err
	}

	_, values, err := encodeRecord(record, c.fields)
	if err != nil {
		return zero, err
	}

	query, args, err := c.Builder().
		Insert(c.Table()).
		Columns(c.Columns()...).
		Values(values...).
		Suffix(c.returningClause()).
		ToSql()
	if err != nil {
		return zero, err
	}

	rows, err := c.Client().ExecuteAndReturn(ctx, query, args...)
	if err != nil {
		return zero, err
	}

	inserted, err := c.decodeOne(query, rows)
	if err != nil {
		return zero, err
	}
	if inserted == nil {
		return zero, db.NewQueryError(query, errors.New("insert returned no row"))
	}
	return *inserted, nil
}
