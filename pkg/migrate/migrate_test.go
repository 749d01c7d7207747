package migrate

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestValidateEmbeddedMigrations(t *testing.T) {
	require.NoError(t, Validate())
}

func TestValidateRejectsBadFiles(t *testing.T) {
	bad := fstest.MapFS{
		"migrations/create_things.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
	}
	require.Error(t, validateFS(bad, "migrations"))

	missingDown := fstest.MapFS{
		"migrations/20250101000000_things.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n")},
	}
	require.Error(t, validateFS(missingDown, "migrations"))

	require.Error(t, validateFS(fstest.MapFS{"migrations/README": {Data: []byte("x")}}, "migrations"))
}

func TestRunUpAndDownOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()
	require.NoError(t, Run(ctx, sqlDB, "sqlite", "up"))
	require.True(t, conn.Migrator().HasTable("app_state"))

	require.NoError(t, Run(ctx, sqlDB, "sqlite", "down"))
	require.False(t, conn.Migrator().HasTable("app_state"))

	require.NoError(t, MigrateToVersion(ctx, sqlDB, "sqlite", "20250301120000"))
	require.True(t, conn.Migrator().HasTable("app_state"))
}

func TestGooseDialect(t *testing.T) {
	name, err := GooseDialect("sqlite")
	require.NoError(t, err)
	require.Equal(t, "sqlite3", name)

	_, err = GooseDialect("mysql")
	require.Error(t, err)
	require.Error(t, Run(context.Background(), nil, "postgres", "up"))
}
