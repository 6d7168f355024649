package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-engine/internal/features/giveaway/repository"
	"giveaway-engine/internal/features/giveaway/repository/repositorytest"
	"giveaway-engine/internal/platform/sqlite"
)

func newSQLiteStore(t *testing.T) repository.Store {
	t.Helper()
	client, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, Migrate(context.Background(), client.GetDB()))
	return NewRepository(client.GetDB(), DialectSQLite)
}

func TestSQLiteRepository(t *testing.T) {
	repositorytest.Run(t, newSQLiteStore)
}

func TestMigrate_Idempotent(t *testing.T) {
	client, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, client.GetDB()))
	require.NoError(t, Migrate(ctx, client.GetDB()))
}

func TestDialect_Rebind(t *testing.T) {
	query := `UPDATE t SET a = ? WHERE id = ? AND b IN (?, ?)`

	assert.Equal(t, query, DialectSQLite.rebind(query))
	assert.Equal(t,
		`UPDATE t SET a = $1 WHERE id = $2 AND b IN ($3, $4)`,
		DialectPostgres.rebind(query))
}

func TestDialect_LockRow(t *testing.T) {
	assert.Equal(t, " FOR UPDATE", DialectPostgres.lockRow())
	assert.Empty(t, DialectSQLite.lockRow())
	assert.Equal(t, "postgres", DialectPostgres.String())
	assert.Equal(t, "sqlite", DialectSQLite.String())
}
