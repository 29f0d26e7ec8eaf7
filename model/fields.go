package model

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cheesedrawer/dbmodel/db"
)

// field maps one struct field to its table column.
type field struct {
	column string
	index  []int // reflect index path, follows embedded structs
	typ    reflect.Type
}

// fieldsOf resolves the column mapping for a record struct type. Fields use
// their db tag as column name, falling back to the lowercased field name.
// Fields tagged db:"-" and unexported fields are skipped. Embedded structs
// (such as model.Data) are flattened.
func fieldsOf(t reflect.Type) ([]field, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("record type %s is not a struct", t)
	}

	fields, err := collectFields(t, nil)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(fields))
	hasID := false
	for _, f := range fields {
		if _, dup := seen[f.column]; dup {
			return nil, fmt.Errorf("record type %s maps column %q twice", t, f.column)
		}
		seen[f.column] = struct{}{}
		if f.column == IDColumn {
			hasID = true
		}
	}
	if !hasID {
		return nil, fmt.Errorf("record type %s has no %q column; embed model.Data", t, IDColumn)
	}

	return fields, nil
}

func collectFields(t reflect.Type, parent []int) ([]field, error) {
	var fields []field

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		index := append(append([]int{}, parent...), i)

		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && sf.Tag.Get("db") == "" {
			nested, err := collectFields(sf.Type, index)
			if err != nil {
				return nil, err
			}
			fields = append(fields, nested...)
			continue
		}

		column := sf.Tag.Get("db")
		if column == "-" {
			continue
		}
		if column == "" {
			column = strings.ToLower(sf.Name)
		}

		fields = append(fields, field{column: column, index: index, typ: sf.Type})
	}

	return fields, nil
}

// encodeRecord flattens a record into parallel column and value slices in
// field declaration order. Maps and slices are marshalled to JSON text so
// they bind cleanly as jsonb parameters.
func encodeRecord(rec any, fields []field) ([]string, []any, error) {
	v := reflect.ValueOf(rec)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	columns := make([]string, 0, len(fields))
	values := make([]any, 0, len(fields))

	for _, f := range fields {
		fv := v.FieldByIndex(f.index)

		value := fv.Interface()
		switch fv.Kind() {
		case reflect.Map, reflect.Slice:
			if _, isBytes := value.([]byte); !isBytes && !fv.IsNil() {
				encoded, err := json.Marshal(value)
				if err != nil {
					return nil, nil, &ValidationError{Field: f.column, Reason: fmt.Sprintf("not JSON-encodable: %v", err)}
				}
				value = string(encoded)
			}
		}

		columns = append(columns, f.column)
		values = append(values, value)
	}

	return columns, values, nil
}

// decodeRecord populates target (a pointer to a record struct) from a driver
// row. Every declared column must be present; extra row columns are ignored.
func decodeRecord(row db.Row, target any, fields []field) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", target)
	}
	v = v.Elem()

	for _, f := range fields {
		raw, ok := row[f.column]
		if !ok {
			return &ValidationError{Field: f.column, Reason: "column missing from result row"}
		}

		fv := v.FieldByIndex(f.index)
		if err := assign(fv, raw); err != nil {
			return &ValidationError{Field: f.column, Reason: err.Error()}
		}
	}

	return nil
}

// assign converts a driver value into the record field, covering the type
// mappings the driver interface guarantees: text, integer, boolean, float,
// timestamp, JSON and UUID.
func assign(fv reflect.Value, raw any) error {
	if raw == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}

	// UUID columns arrive as uuid.UUID, [16]byte or text depending on driver.
	if fv.Type() == reflect.TypeOf(uuid.UUID{}) {
		id, err := toUUID(raw)
		if err != nil {
			return err
		}
		fv.Set(reflect.ValueOf(id))
		return nil
	}

	if fv.Type() == reflect.TypeOf(time.Time{}) {
		t, ok := raw.(time.Time)
		if !ok {
			return fmt.Errorf("expected timestamp, got %T", raw)
		}
		fv.Set(reflect.ValueOf(t))
		return nil
	}

	rv := reflect.ValueOf(raw)

	switch fv.Kind() {
	case reflect.String:
		switch s := raw.(type) {
		case string:
			fv.SetString(s)
		case []byte:
			fv.SetString(string(s))
		default:
			return fmt.Errorf("expected text, got %T", raw)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch n := raw.(type) {
		case int64:
			fv.SetInt(n)
		case int32:
			fv.SetInt(int64(n))
		case int:
			fv.SetInt(int64(n))
		default:
			return fmt.Errorf("expected integer, got %T", raw)
		}
	case reflect.Float32, reflect.Float64:
		switch n := raw.(type) {
		case float64:
			fv.SetFloat(n)
		case float32:
			fv.SetFloat(float64(n))
		case int64:
			fv.SetFloat(float64(n))
		default:
			return fmt.Errorf("expected floating point, got %T", raw)
		}
	case reflect.Bool:
		b, ok := raw.(bool)
		if !ok {
			return fmt.Errorf("expected boolean, got %T", raw)
		}
		fv.SetBool(b)
	case reflect.Map, reflect.Slice, reflect.Struct:
		// JSON columns arrive decoded (pgx) or as raw JSON text (database/sql).
		switch j := raw.(type) {
		case []byte:
			return unmarshalJSON(fv, j)
		case string:
			return unmarshalJSON(fv, []byte(j))
		default:
			if rv.Type().AssignableTo(fv.Type()) {
				fv.Set(rv)
				return nil
			}
			return fmt.Errorf("expected JSON value, got %T", raw)
		}
	default:
		if rv.Type().AssignableTo(fv.Type()) {
			fv.Set(rv)
			return nil
		}
		return fmt.Errorf("cannot assign %T to %s", raw, fv.Type())
	}

	return nil
}

func unmarshalJSON(fv reflect.Value, data []byte) error {
	target := reflect.New(fv.Type())
	if err := json.Unmarshal(data, target.Interface()); err != nil {
		return fmt.Errorf("invalid JSON value: %w", err)
	}
	fv.Set(target.Elem())
	return nil
}

func toUUID(raw any) (uuid.UUID, error) {
	switch id := raw.(type) {
	case uuid.UUID:
		return id, nil
	case [16]byte:
		return uuid.UUID(id), nil
	case []byte:
		if len(id) == 16 {
			return uuid.FromBytes(id)
		}
		return uuid.ParseBytes(id)
	case string:
		return uuid.Parse(id)
	default:
		return uuid.Nil, fmt.Errorf("expected UUID, got %T", raw)
	}
}
