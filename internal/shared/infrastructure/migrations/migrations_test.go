package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/ordo/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/ordo/internal/shared/infrastructure/database/sqlite"
)

func TestStatements(t *testing.T) {
	got := statements("CREATE TABLE a (x INT);\n\n CREATE INDEX i ON a (x);\n")
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE INDEX i ON a (x)"}, got)
}

func TestUpFiles_BothDriversHaveSchema(t *testing.T) {
	for _, dir := range []string{"sqlite", "postgres"} {
		files, err := upFiles(dir)
		require.NoError(t, err)
		assert.NotEmpty(t, files, dir)
	}
}

func TestRun_SQLiteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	conn, err := database.Open(ctx, database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "tasks.db"),
	})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, Run(ctx, conn))
	require.NoError(t, Run(ctx, conn))

	_, err = conn.Exec(ctx,
		`INSERT INTO tasks (title, subtitle, completed, position, created_at, updated_at) VALUES (?, ?, 0, 1, '', '')`,
		"a", "b")
	require.NoError(t, err)

	var count int
	require.NoError(t, conn.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&count))
	assert.Equal(t, 1, count)
}
