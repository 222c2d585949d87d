//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"loot/internal/platform/kv"
	"loot/internal/platform/kv/kvtest"
	"loot/internal/platform/kv/postgres"
	"loot/pkg/testutil/containers"
)

func TestPostgresConformance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pg := containers.GetManager().GetPostgres(t)

	kvtest.Run(t, func(t *testing.T) kv.Store {
		require.NoError(t, pg.TruncateAll(context.Background()))
		return postgres.New(pg.DB, 0)
	})
}

func TestPostgresHealth(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pg := containers.GetManager().GetPostgres(t)
	require.NoError(t, postgres.New(pg.DB, 0).Health(context.Background()))
}
