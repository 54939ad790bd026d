package migration

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestRunIsIdempotent(t *testing.T) {
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	runner := NewRunner()
	require.NoError(t, runner.Run(t.Context(), db))
	require.NoError(t, runner.Run(t.Context(), db))

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM intent_models`))
	assert.Zero(t, n)
	assert.Equal(t, "1.0.0", runner.Version())
}
