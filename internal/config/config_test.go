package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
  ratelimit: 5
database:
  driver: Postgres
  host: db.internal
  name: pdns
  user: pdns
log:
  level: debug
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, 5.0, cfg.Server.RateLimit)
	assert.Equal(t, 20, cfg.Server.RateLimitBurst)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 25, cfg.Database.MaxConnections)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
}

func TestLoadFileEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: mysql
  host: db.internal
  name: pdns
`)
	t.Setenv("PDNS_SERVER_PORT", "7000")
	t.Setenv("PDNS_DATABASE_DRIVER", "memory")
	t.Setenv("DATABASE_URL", "postgres://pdns@localhost/pdns")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "postgres://pdns@localhost/pdns", cfg.Database.URL)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		description string
		database    DatabaseConfig
		wantErr     string
	}{
		{
			description: "memory needs nothing",
			database:    DatabaseConfig{Driver: DriverMemory},
		},
		{
			description: "url is enough",
			database:    DatabaseConfig{Driver: DriverMySQL, URL: "pdns:secret@tcp(localhost:3306)/pdns"},
		},
		{
			description: "host and name",
			database:    DatabaseConfig{Driver: DriverPostgres, Host: "localhost", Name: "pdns"},
		},
		{
			description: "missing host",
			database:    DatabaseConfig{Driver: DriverPostgres, Name: "pdns"},
			wantErr:     `missing required config parameter "database.host"`,
		},
		{
			description: "missing name",
			database:    DatabaseConfig{Driver: DriverMySQL, Host: "localhost"},
			wantErr:     `missing required config parameter "database.name"`,
		},
		{
			description: "unknown driver",
			database:    DatabaseConfig{Driver: "sqlite"},
			wantErr:     `unsupported database driver "sqlite"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			cfg := &Config{Database: tt.database}
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestMissingParameterIsTyped(t *testing.T) {
	err := (&Config{Database: DatabaseConfig{Driver: DriverMySQL}}).Validate()

	var missing *ErrMissingConfigParameter
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "database.host", missing.Name)
}
