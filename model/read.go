package model

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/cheesedrawer/dbmodel/db"
)

// Read is the operation group for selecting records.
type Read[T Record] struct {
	base[T]
}

// NewRead builds a Read group bound to the given client and table.
func NewRead[T Record](client db.Client, table string) (*Read[T], error) {
	b, err := newBase[T](client, table)
	if err != nil {
		return nil, err
	}
	return &Read[T]{base: b}, nil
}

// OneByID selects the record with the given identifier. An absent row is
// reported as (nil, nil), not as an error, so callers can distinguish "no
// data" from a failed query.
func (r *Read[T]) OneByID(ctx context.Context, id uuid.UUID) (*T, error) {
	query, args, err := r.Builder().
		Select(r.Columns()...).
		From(r.Table()).
		Where(squirrel.Eq{r.Column(IDColumn): id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.Client().ExecuteAndReturn(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return r.decodeOne(query, rows)
}
