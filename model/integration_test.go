//go:build integration

package model_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cheesedrawer/dbmodel/config"
	"github.com/cheesedrawer/dbmodel/db"
	"github.com/cheesedrawer/dbmodel/db/pgpool"
	"github.com/cheesedrawer/dbmodel/db/postgres"
	"github.com/cheesedrawer/dbmodel/logger"
	"github.com/cheesedrawer/dbmodel/model"
)

const widgetsDDL = `
	CREATE TABLE IF NOT EXISTS widgets (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0
	)`

func startPostgres(t *testing.T) config.ConnectionParameters {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("postgres"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	params := config.ConnectionParameters{
		Host:     host,
		Port:     port.Int(),
		User:     "postgres",
		Password: "postgres",
		Database: "postgres",
		SSLMode:  "disable",
	}
	require.NoError(t, config.Validate(&params))
	return params
}

func runCRUDScenario(t *testing.T, client db.Client) {
	ctx := context.Background()

	require.NoError(t, client.Connect(ctx))
	t.Cleanup(func() {
		require.NoError(t, client.Disconnect(context.Background()))
	})

	require.NoError(t, client.Execute(ctx, widgetsDDL))

	widgets, err := model.New[widget](client, "widgets")
	require.NoError(t, err)

	id := uuid.New()

	created, err := widgets.Create.One(ctx, widget{
		Data:  model.Data{ID: id},
		Name:  "bolt",
		Count: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, widget{Data: model.Data{ID: id}, Name: "bolt", Count: 5}, created)

	got, err := widgets.Read.OneByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created, *got)

	updated, err := widgets.Update.OneByID(ctx, id, map[string]any{"count": 6})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "bolt", updated.Name)
	assert.Equal(t, 6, updated.Count)

	removed, err := widgets.Delete.OneByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, removed)

	gone, err := widgets.Read.OneByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestWidgetScenarioBlockingClient(t *testing.T) {
	params := startPostgres(t)
	client := postgres.NewClient(params, logger.New("disabled", false))
	runCRUDScenario(t, client)
}

func TestWidgetScenarioPoolClient(t *testing.T) {
	params := startPostgres(t)
	client := pgpool.NewClient(params, logger.New("disabled", false))
	runCRUDScenario(t, client)
}

func TestLifecycleAfterDisconnect(t *testing.T) {
	params := startPostgres(t)
	client := postgres.NewClient(params, logger.New("disabled", false))
	ctx := context.Background()

	require.NoError(t, client.Connect(ctx))
	require.NoError(t, client.Disconnect(ctx))

	assert.False(t, client.Connected())
	err := client.Execute(ctx, "SELECT 1")
	assert.ErrorIs(t, err, db.ErrNotConnected)

	// Reconnect is allowed after a disconnect
	require.NoError(t, client.Connect(ctx))
	require.NoError(t, client.Execute(ctx, "SELECT 1"))
	require.NoError(t, client.Disconnect(ctx))
}
