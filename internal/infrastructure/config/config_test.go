package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "salesdesk", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "salesdesk", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, "salesdesk:", cfg.Redis.KeyPrefix)
		assert.Equal(t, 8*time.Hour, cfg.JWT.AccessTokenExpiration)
		assert.Equal(t, 10*time.Second, cfg.Forward.Timeout)
		assert.Equal(t, 5000, cfg.Import.MaxRows)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
		assert.Equal(t, "admin", cfg.Bootstrap.AdminUsername)
		assert.Empty(t, cfg.Bootstrap.AdminPassword)
		assert.True(t, cfg.Maintenance.Enabled)
		assert.Equal(t, 5*time.Minute, cfg.Maintenance.Interval)
		assert.Equal(t, 30*time.Minute, cfg.Import.StaleAfter)
	})

	t.Run("loads values from environment variables with DESK prefix", func(t *testing.T) {
		t.Setenv("DESK_APP_PORT", "9000")
		t.Setenv("DESK_DATABASE_DRIVER", "sqlite")
		t.Setenv("DESK_DATABASE_SQLITE_PATH", "/tmp/desk.db")
		t.Setenv("DESK_REDIS_ENABLED", "true")
		t.Setenv("DESK_REDIS_PORT", "6380")
		t.Setenv("DESK_FORWARD_ENABLED", "true")
		t.Setenv("DESK_FORWARD_URL", "http://csr.internal/endorsements")
		t.Setenv("DESK_FORWARD_TIMEOUT", "3s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "/tmp/desk.db", cfg.Database.SQLitePath)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, "localhost:6380", cfg.Redis.Addr())
		assert.True(t, cfg.Forward.Enabled)
		assert.Equal(t, "http://csr.internal/endorsements", cfg.Forward.URL)
		assert.Equal(t, 3*time.Second, cfg.Forward.Timeout)
	})

	t.Run("rejects forwarding without url", func(t *testing.T) {
		t.Setenv("DESK_FORWARD_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "forward.url")
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		t.Setenv("DESK_DATABASE_DRIVER", "mongodb")

		_, err := Load()
		require.Error(t, err)
	})
}

func TestValidate_Production(t *testing.T) {
	base := func() *Config {
		cfg := &Config{App: AppConfig{Env: "production"}}
		applyDefaults(cfg)
		cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
		cfg.Database.Password = "secret"
		cfg.Database.SSLMode = "require"
		return cfg
	}

	require.NoError(t, base().validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"short jwt secret", func(c *Config) { c.JWT.Secret = "short" }, "jwt.secret"},
		{"sqlite", func(c *Config) { c.Database.Driver = "sqlite" }, "sqlite"},
		{"no db password", func(c *Config) { c.Database.Password = "" }, "database.password"},
		{"ssl disabled", func(c *Config) { c.Database.SSLMode = "disable" }, "sslmode"},
		{"wildcard cors", func(c *Config) { c.HTTP.CORSAllowOrigins = []string{"*"} }, "cors"},
		{"bad sampling", func(c *Config) { c.Telemetry.SamplingRatio = 2 }, "sampling_ratio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "desk", Password: "p@ss", DBName: "salesdesk", SSLMode: "disable"}
	assert.Equal(t, "postgres://desk:p%40ss@db:5432/salesdesk?sslmode=disable", d.DSN())
}
