package model

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/cheesedrawer/dbmodel/db"
)

// Update is the operation group for partial updates.
type Update[T Record] struct {
	base[T]
}

// NewUpdate builds an Update group bound to the given client and table.
func NewUpdate[T Record](client db.Client, table string) (*Update[T], error) {
	b, err := newBase[T](client, table)
	if err != nil {
		return nil, err
	}
	return &Update[T]{base: b}, nil
}

// OneByID applies changes (column name to new value) to the record with the
// given identifier and returns the updated record. Columns absent from
// changes are untouched. An absent row is reported as (nil, nil). Keys that
// are not declared columns, and attempts to rewrite the identifier, are
// rejected with a ValidationError before any query is issued.
func (u *Update[T]) OneByID(ctx context.Context, id uuid.UUID, changes map[string]any) (*T, error) {
	if len(changes) == 0 {
		return nil, &ValidationError{Field: "", Reason: "change set is empty"}
	}

	for column := range changes {
		if column == IDColumn {
			return nil, &ValidationError{Field: column, Reason: "identifier cannot be updated"}
		}
		if !u.hasColumn(column) {
			return nil, &ValidationError{Field: column, Reason: "not a declared column"}
		}
	}

	builder := u.Builder().Update(u.Table())

	// Apply in field declaration order so generated SQL is deterministic.
	for _, f := range u.fields {
		value, ok := changes[f.column]
		if !ok {
			continue
		}
		encoded, err := encodeChangeValue(value)
		if err != nil {
			return nil, &ValidationError{Field: f.column, Reason: err.Error()}
		}
		builder = builder.Set(u.Column(f.column), encoded)
	}

	query, args, err := builder.
		Where(squirrel.Eq{u.Column(IDColumn): id}).
		Suffix(u.returningClause()).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := u.Client().ExecuteAndReturn(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return u.decodeOne(query, rows)
}

// encodeChangeValue applies the same JSON encoding rule as record insertion.
func encodeChangeValue(value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		if _, isBytes := value.([]byte); isBytes {
			return value, nil
		}
		if rv.IsNil() {
			return nil, nil
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("not JSON-encodable: %v", err)
		}
		return string(encoded), nil
	default:
		return value, nil
	}
}
