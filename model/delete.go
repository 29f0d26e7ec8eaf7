package model

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/cheesedrawer/dbmodel/db"
)

// Delete is the operation group for removing records.
type Delete[T Record] struct {
	base[T]
}

// NewDelete builds a Delete group bound to the given client and table.
func NewDelete[T Record](client db.Client, table string) (*Delete[T], error) {
	b, err := newBase[T](client, table)
	if err != nil {
		return nil, err
	}
	return &Delete[T]{base: b}, nil
}

// OneByID removes the record with the given identifier and reports whether a
// row was removed. Zero matched rows is not an error.
func (d *Delete[T]) OneByID(ctx context.Context, id uuid.UUID) (bool, error) {
	query, args, err := d.Builder().
		Delete(d.Table()).
		Where(squirrel.Eq{d.Column(IDColumn): id}).
		Suffix("RETURNING " + d.Column(IDColumn)).
		ToSql()
	if err != nil {
		return false, err
	}

	rows, err := d.Client().ExecuteAndReturn(ctx, query, args...)
	if err != nil {
		return false, err
	}

	switch len(rows) {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, db.NewQueryError(query, db.ErrMultipleResults)
	}
}
