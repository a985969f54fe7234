package migration

import (
	"testing"

	"github.com/smallbiznis/stockroom/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAutoMigratesSqlite(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)

	require.NoError(t, Run(conn))
	// A second run is a no-op.
	require.NoError(t, Run(conn))

	for _, table := range []string{
		"users", "sessions", "products", "inventories", "purchases",
		"sales", "returns", "inventory_notifications", "alert_logs",
	} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}
	assert.True(t, conn.Migrator().HasIndex("alert_logs", "ux_alert_logs_product_email_day"))
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := embeddedMigrations.ReadDir(migrationsDir)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(entries), 2)
}
