package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"DB_DRIVER", "DB_PORT", "SERVER_PORT", "JWT_EXPIRY_HOURS", "DRAG_THRESHOLD", "NOTIFY_CHANNEL"} {
		// t.Setenv восстановит значение после теста
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "5431", cfg.DBPort)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 5.0, cfg.DragThreshold)
	assert.Equal(t, "document_changes", cfg.NotifyChannel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", DriverSQLite)
	t.Setenv("SQLITE_PATH", "/tmp/board.db")
	t.Setenv("JWT_EXPIRY_HOURS", "2")
	t.Setenv("DRAG_THRESHOLD", "12.5")

	cfg := Load()

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "/tmp/board.db", cfg.SQLitePath)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 12.5, cfg.DragThreshold)
}

func TestLoad_BadNumbersFallBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_EXPIRY_HOURS", "soon")
	t.Setenv("DRAG_THRESHOLD", "far")

	cfg := Load()

	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 5.0, cfg.DragThreshold)
}

func TestValidate(t *testing.T) {
	base := Config{DBDriver: DriverPostgres, JWTSecret: "s", JWTExpiry: time.Hour}
	require.NoError(t, base.Validate())

	bad := base
	bad.DBDriver = "mysql"
	assert.Error(t, bad.Validate())

	bad = base
	bad.JWTSecret = ""
	assert.Error(t, bad.Validate())

	bad = base
	bad.DragThreshold = -1
	assert.Error(t, bad.Validate())
}

func TestDSNs(t *testing.T) {
	cfg := Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p@ss", DBName: "board"}

	assert.Equal(t, "host=db port=5432 user=u password=p@ss dbname=board sslmode=disable", cfg.PostgresDSN())
	assert.Equal(t, "pgx5://u:p%40ss@db:5432/board?sslmode=disable", cfg.MigrateURL())
}
