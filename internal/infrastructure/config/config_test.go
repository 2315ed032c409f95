package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "isolir", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenExpiration)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 10*time.Second, cfg.Mikrotik.CommandTimeout)
	assert.Equal(t, "profile", cfg.Isolation.Method)
	assert.Equal(t, "ISOLIR", cfg.Isolation.AddressList)
	assert.Equal(t, "isolir", cfg.Isolation.RestrictedProfile)
	assert.Equal(t, 3, cfg.Isolation.OverdueMonthsThreshold)
	assert.Equal(t, 7, cfg.Isolation.GracePeriodDays)
	assert.Equal(t, 30, cfg.Isolation.RecentPaymentAmnestyDays)
	assert.Equal(t, 3, cfg.Isolation.LumpSumToleranceMonths)
	assert.Equal(t, 10, cfg.Billing.DueDay)
	assert.Equal(t, "0 1 * * *", cfg.Scheduler.SweepCronSchedule)
	assert.Equal(t, "0 0 1 * *", cfg.Scheduler.DebtRunCronSchedule)
	assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ISOLIR_DATABASE_HOST", "db.internal")
	t.Setenv("ISOLIR_DATABASE_PORT", "5433")
	t.Setenv("ISOLIR_ISOLATION_METHOD", "address_list")
	t.Setenv("ISOLIR_BILLING_DUE_DAY", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "address_list", cfg.Isolation.Method)
	assert.Equal(t, 5, cfg.Billing.DueDay)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("defaults pass", func(t *testing.T) {
		assert.NoError(t, base().validate())
	})

	t.Run("rejects unknown isolation method", func(t *testing.T) {
		cfg := base()
		cfg.Isolation.Method = "blackhole"
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "isolation.method")
	})

	t.Run("rejects due day outside month", func(t *testing.T) {
		cfg := base()
		cfg.Billing.DueDay = 31
		assert.Error(t, cfg.validate())
	})

	t.Run("rejects idle conns above open conns", func(t *testing.T) {
		cfg := base()
		cfg.Database.MaxIdleConns = 50
		assert.Error(t, cfg.validate())
	})

	t.Run("rejects sampling ratio above one", func(t *testing.T) {
		cfg := base()
		cfg.Telemetry.SamplingRatio = 1.5
		assert.Error(t, cfg.validate())
	})

	t.Run("production requires secrets and TLS", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")

		cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
		err = cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")

		cfg.Database.Password = "secret"
		err = cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")

		cfg.Database.SSLMode = "require"
		assert.NoError(t, cfg.validate())
	})
}

func TestDatabaseDSN(t *testing.T) {
	d := &DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "isolir",
		Password: "p@ss/word",
		DBName:   "isolir",
		SSLMode:  "disable",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "sslmode=disable")
	// Special characters in the password must be escaped
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRedisAddr(t *testing.T) {
	r := &RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", r.Addr())
}
