package migration

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunIsIdempotent(t *testing.T) {
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	runner := NewRunner()
	ctx := context.Background()
	require.NoError(t, runner.Run(ctx, db))
	require.NoError(t, runner.Run(ctx, db))

	var versions []string
	require.NoError(t, db.Select(&versions, `SELECT version FROM schema_migrations`))
	assert.Equal(t, []string{runner.Version()}, versions)

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM runs`))
	assert.Equal(t, 0, n)
}
