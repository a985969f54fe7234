package db

import (
	"testing"

	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialect(t *testing.T) {
	for _, dbType := range []string{"postgres", "mysql", "sqlite", "SQLite"} {
		d, err := Dialect(config.Config{DBType: dbType, DBSQLitePath: "test.db"})
		require.NoError(t, err, dbType)
		assert.NotNil(t, d, dbType)
	}

	_, err := Dialect(config.Config{DBType: "oracle"})
	assert.Error(t, err)
}

func TestDSNs(t *testing.T) {
	cfg := config.Config{
		DBHost: "db", DBPort: "5432", DBName: "stockroom",
		DBUser: "app", DBPassword: "secret", DBSSLMode: "disable",
	}
	assert.Equal(t, "host=db user=app password=secret dbname=stockroom port=5432 sslmode=disable TimeZone=UTC", postgresDSN(cfg))

	cfg.DBPort = "3306"
	assert.Equal(t, "app:secret@tcp(db:3306)/stockroom?charset=utf8mb4&parseTime=True&loc=UTC", mysqlDSN(cfg))

	assert.Equal(t, "shop.db?"+sqlitePragmas, sqliteDSN("shop.db"))
	assert.Equal(t, "stockroom.db?"+sqlitePragmas, sqliteDSN(" "))
	assert.Equal(t, "file::memory:?cache=shared", sqliteDSN("file::memory:?cache=shared"))
}
