package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MemoryStorageDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeConfig(t, `
server:
  port: 8080
storage:
  type: memory
jwt:
  secret: `+testSecret+`
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StorageTypeMemory, cfg.Storage.Type)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 60, cfg.JWT.AccessTokenExpiry)
	assert.Equal(t, "20", cfg.Pricing.LateFee().String())
	assert.Equal(t, "0 5 0 * * *", cfg.Scheduler.SyncCarAvailability)
	assert.Equal(t, ":8080", cfg.GetServerAddress())
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeConfig(t, `
server:
  port: 8080
database:
  host: db.internal
  user: rental
  database: rental
jwt:
  secret: short
pricing:
  late_fee_per_day: "20.00"
`)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DB_PORT", "6543")
	t.Setenv("LATE_FEE_PER_DAY", "25.505")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StorageTypePostgres, cfg.Storage.Type)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "25.505", cfg.Pricing.LateFee().String())
	assert.Equal(t, "postgres://rental:@db.internal:6543/rental?sslmode=disable", cfg.GetDatabaseConnectionString())
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STORAGE_TYPE=memory\nJWT_SECRET="+testSecret+"\n"), 0o600))
	path := writeConfig(t, "server:\n  port: 9000\n")
	// godotenv never overwrites variables that are already set.
	os.Unsetenv("STORAGE_TYPE")
	os.Unsetenv("JWT_SECRET")
	t.Cleanup(func() {
		os.Unsetenv("STORAGE_TYPE")
		os.Unsetenv("JWT_SECRET")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StorageTypeMemory, cfg.Storage.Type)
	assert.Equal(t, testSecret, cfg.JWT.Secret)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: 8080},
			Storage: StorageConfig{Type: StorageTypeMemory},
			JWT:     JWTConfig{Secret: testSecret},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"unknown storage", func(c *Config) { c.Storage.Type = "redis" }, "unknown storage type"},
		{"postgres needs host", func(c *Config) { c.Storage.Type = "Postgres" }, "database host is required"},
		{"short secret", func(c *Config) { c.JWT.Secret = "abc" }, "at least 32 characters"},
		{"bad late fee", func(c *Config) { c.Pricing.LateFeePerDay = "twenty" }, "invalid late fee"},
		{"negative late fee", func(c *Config) { c.Pricing.LateFeePerDay = "-1" }, "must be >= 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestGetSecurityLevel(t *testing.T) {
	assert.Equal(t, SecurityPublic, GetSecurityLevel("auth.login"))
	assert.Equal(t, SecurityCustomer, GetSecurityLevel("bookings.create"))
	assert.Equal(t, SecurityAdmin, GetSecurityLevel("bookings.approve"))
	assert.Equal(t, SecurityAdmin, GetSecurityLevel("no.such.route"))
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
