package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, CancelPolicyRetain, cfg.PendingCancelPolicy)
	assert.Equal(t, "America/Sao_Paulo", cfg.Timezone)
	assert.Equal(t, "3306", cfg.Database.Port)
	assert.Contains(t, cfg.Database.DSN, "parseTime=True")
	assert.Contains(t, cfg.Database.DSN, "loc=America%2FSao_Paulo")
}

func TestLoadConfig_Postgres(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_NAME", "nutri_test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Contains(t, cfg.Database.DSN, "dbname=nutri_test")
}

func TestLoadConfig_SQLite(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_NAME", "/tmp/nutri.db")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/nutri.db?_pragma=foreign_keys(1)", cfg.Database.DSN)
}

func TestLoadConfig_RejectsUnknownPolicy(t *testing.T) {
	t.Setenv("PENDING_CANCEL_POLICY", "archive")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlserver")

	_, err := LoadConfig()
	assert.Error(t, err)
}
