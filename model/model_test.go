package model_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheesedrawer/dbmodel/db"
	"github.com/cheesedrawer/dbmodel/db/dbtest"
	"github.com/cheesedrawer/dbmodel/model"
)

type widget struct {
	model.Data
	Name  string `db:"name" validate:"required"`
	Count int    `db:"count"`
}

func widgetRow(id uuid.UUID, name string, count int) db.Row {
	return db.Row{"id": id, "name": name, "count": int64(count)}
}

func newWidgetModel(t *testing.T, client db.Client) *model.Model[widget] {
	t.Helper()
	m, err := model.New[widget](client, "widgets")
	require.NoError(t, err)
	return m
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := model.New[widget](nil, "widgets")
	assert.Error(t, err)

	_, err = model.New[widget](dbtest.NewClient(), "")
	assert.Error(t, err)

	type noID struct {
		model.Data `db:"-"`
		Name       string `db:"name"`
	}
	_, err = model.New[noID](dbtest.NewClient(), "widgets")
	assert.Error(t, err)
}

func TestCreateOne(t *testing.T) {
	id := uuid.New()
	client := dbtest.NewClient().QueueRows(widgetRow(id, "bolt", 5))
	m := newWidgetModel(t, client)

	created, err := m.Create.One(context.Background(), widget{
		Data:  model.Data{ID: id},
		Name:  "bolt",
		Count: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, id, created.ID)
	assert.Equal(t, "bolt", created.Name)
	assert.Equal(t, 5, created.Count)

	call, ok := client.LastCall()
	require.True(t, ok)
	assert.Equal(t,
		`INSERT INTO "widgets" ("id","name","count") VALUES ($1,$2,$3) RETURNING "id", "name", "count"`,
		call.Query)
	assert.Equal(t, []any{id, "bolt", 5}, call.Args)
}

func TestCreateOneValidatesBeforeQuerying(t *testing.T) {
	client := dbtest.NewClient()
	m := newWidgetModel(t, client)

	t.Run("missing identifier", func(t *testing.T) {
		_, err := m.Create.One(context.Background(), widget{Name: "bolt"})
		require.Error(t, err)
		assert.True(t, model.IsValidationError(err))
	})

	t.Run("missing required field", func(t *testing.T) {
		_, err := m.Create.One(context.Background(), widget{Data: model.Data{ID: uuid.New()}})
		require.Error(t, err)
		assert.True(t, model.IsValidationError(err))
	})

	// The schema violations above must not reach the database
	assert.Zero(t, client.CallCount())
}

func TestCreateOneSurfacesQueryError(t *testing.T) {
	cause := errors.New("duplicate key value violates unique constraint")
	client := dbtest.NewClient().QueueError(cause)
	m := newWidgetModel(t, client)

	_, err := m.Create.One(context.Background(), widget{Data: model.Data{ID: uuid.New()}, Name: "bolt"})
	require.Error(t, err)

	var qerr *db.QueryError
	require.ErrorAs(t, err, &qerr)
	assert.ErrorIs(t, err, cause)
}

func TestReadOneByID(t *testing.T) {
	id := uuid.New()
	client := dbtest.NewClient().QueueRows(widgetRow(id, "bolt", 5))
	m := newWidgetModel(t, client)

	got, err := m.Read.OneByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, widget{Data: model.Data{ID: id}, Name: "bolt", Count: 5}, *got)

	call, ok := client.LastCall()
	require.True(t, ok)
	assert.Equal(t,
		`SELECT "id", "name", "count" FROM "widgets" WHERE "id" = $1`,
		call.Query)
	assert.Equal(t, []any{id}, call.Args)
}

func TestReadOneByIDNotFound(t *testing.T) {
	client := dbtest.NewClient().QueueRows()
	m := newWidgetModel(t, client)

	got, err := m.Read.OneByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadOneByIDMultipleRows(t *testing.T) {
	id := uuid.New()
	client := dbtest.NewClient().QueueRows(
		widgetRow(id, "bolt", 5),
		widgetRow(id, "bolt", 6),
	)
	m := newWidgetModel(t, client)

	_, err := m.Read.OneByID(context.Background(), id)
	require.Error(t, err)
	assert.ErrorIs(t, err, db.ErrMultipleResults)
}

func TestUpdateOneByID(t *testing.T) {
	id := uuid.New()
	client := dbtest.NewClient().QueueRows(widgetRow(id, "bolt", 6))
	m := newWidgetModel(t, client)

	got, err := m.Update.OneByID(context.Background(), id, map[string]any{"count": 6})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 6, got.Count)
	assert.Equal(t, "bolt", got.Name)

	call, ok := client.LastCall()
	require.True(t, ok)
	assert.Equal(t,
		`UPDATE "widgets" SET "count" = $1 WHERE "id" = $2 RETURNING "id", "name", "count"`,
		call.Query)
	assert.Equal(t, []any{6, id}, call.Args)
}

func TestUpdateOneByIDDeterministicSetOrder(t *testing.T) {
	id := uuid.New()
	client := dbtest.NewClient().QueueRows(widgetRow(id, "nut", 7))
	m := newWidgetModel(t, client)

	_, err := m.Update.OneByID(context.Background(), id, map[string]any{
		"count": 7,
		"name":  "nut",
	})
	require.NoError(t, err)

	call, _ := client.LastCall()
	// Declaration order (name before count), regardless of map iteration
	assert.Equal(t,
		`UPDATE "widgets" SET "name" = $1, "count" = $2 WHERE "id" = $3 RETURNING "id", "name", "count"`,
		call.Query)
}

func TestUpdateOneByIDRejectsBadChanges(t *testing.T) {
	client := dbtest.NewClient()
	m := newWidgetModel(t, client)
	ctx := context.Background()

	_, err := m.Update.OneByID(ctx, uuid.New(), nil)
	assert.True(t, model.IsValidationError(err))

	_, err = m.Update.OneByID(ctx, uuid.New(), map[string]any{"colour": "red"})
	assert.True(t, model.IsValidationError(err))

	_, err = m.Update.OneByID(ctx, uuid.New(), map[string]any{"id": uuid.New()})
	assert.True(t, model.IsValidationError(err))

	assert.Zero(t, client.CallCount())
}

func TestUpdateOneByIDNotFound(t *testing.T) {
	client := dbtest.NewClient().QueueRows()
	m := newWidgetModel(t, client)

	got, err := m.Update.OneByID(context.Background(), uuid.New(), map[string]any{"count": 1})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteOneByID(t *testing.T) {
	id := uuid.New()
	client := dbtest.NewClient().QueueRows(db.Row{"id": id})
	m := newWidgetModel(t, client)

	removed, err := m.Delete.OneByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, removed)

	call, ok := client.LastCall()
	require.True(t, ok)
	assert.Equal(t, `DELETE FROM "widgets" WHERE "id" = $1 RETURNING "id"`, call.Query)
	assert.Equal(t, []any{id}, call.Args)
}

func TestDeleteOneByIDNotFound(t *testing.T) {
	client := dbtest.NewClient().QueueRows()
	m := newWidgetModel(t, client)

	removed, err := m.Delete.OneByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestOperationsSurfaceNotConnected(t *testing.T) {
	client := dbtest.NewDisconnectedClient()
	m := newWidgetModel(t, client)
	ctx := context.Background()
	id := uuid.New()

	_, err := m.Create.One(ctx, widget{Data: model.Data{ID: id}, Name: "bolt"})
	assert.ErrorIs(t, err, db.ErrNotConnected)

	_, err = m.Read.OneByID(ctx, id)
	assert.ErrorIs(t, err, db.ErrNotConnected)

	_, err = m.Update.OneByID(ctx, id, map[string]any{"count": 1})
	assert.ErrorIs(t, err, db.ErrNotConnected)

	_, err = m.Delete.OneByID(ctx, id)
	assert.ErrorIs(t, err, db.ErrNotConnected)
}

func TestModelsShareOneClient(t *testing.T) {
	client := dbtest.NewClient()
	widgets := newWidgetModel(t, client)

	type gadget struct {
		model.Data
		Label string `db:"label"`
	}
	gadgets, err := model.New[gadget](client, "gadgets")
	require.NoError(t, err)

	assert.Same(t, widgets.Client(), gadgets.Client())
	assert.Equal(t, "widgets", widgets.TableName())
	assert.Equal(t, "gadgets", gadgets.TableName())
}
