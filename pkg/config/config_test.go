package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, 6, cfg.Policy.AlertWindowMonths)
	assert.True(t, cfg.Policy.AlertThresholdRatio.Equal(decimal.RequireFromString("0.5")))
	assert.Equal(t, int64(10), cfg.Policy.AlertMinThreshold)
	assert.Equal(t, int64(2), cfg.Policy.AlertCoverageMonths)
	assert.Equal(t, 12, cfg.Policy.TrendWindowMonths)
	assert.True(t, cfg.Policy.TrendHighVolumeFactor.Equal(decimal.RequireFromString("1.5")))
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.Equal(t, 5*time.Second, cfg.DB.LockTimeout)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "MEMORY")
	v.Set("ALERT_WINDOW_MONTHS", "3")
	v.Set("TREND_HIGH_VOLUME_FACTOR", "2")
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("DB_AUTO_MIGRATE", "true")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, 3, cfg.Policy.AlertWindowMonths)
	assert.True(t, cfg.Policy.TrendHighVolumeFactor.Equal(decimal.NewFromInt(2)))
	assert.True(t, cfg.Redis.Enabled())
	assert.True(t, cfg.DB.AutoMigrate)
}

func TestFromViper_DecimalInvalido(t *testing.T) {
	v := viper.New()
	v.Set("ALERT_THRESHOLD_RATIO", "medio")
	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Error(t, cfg.Validate(), "sin JWT_SECRET")

	cfg.JWT.Secret = "s3cr3t"
	assert.NoError(t, cfg.Validate())

	cfg.DB.MinConns = 30
	assert.Error(t, cfg.Validate(), "DB_MIN_CONNS mayor que DB_MAX_CONNS")
	cfg.DB.MinConns = 2

	cfg.Storage.Driver = "sqlite"
	assert.Error(t, cfg.Validate())
	cfg.Storage.Driver = StorageMemory

	cfg.Policy.TrendWindowMonths = 0
	assert.Error(t, cfg.Validate())
	cfg.Policy.TrendWindowMonths = 12

	cfg.Policy.AlertThresholdRatio = decimal.Zero
	assert.Error(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/ledger?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
