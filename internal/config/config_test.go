package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "opsledger.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
store:
  driver: postgres
  dsn: postgres://ops@localhost/ops
import:
  seed_source_quantities: true
  work_order_prefix_len: 4
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://ops@localhost/ops", cfg.Store.DSN)
	assert.Equal(t, "opsledger.db", cfg.Store.Path, "unset keys keep their default")
	assert.True(t, cfg.Import.SeedSourceQuantities)
	assert.Equal(t, 4, cfg.Import.WorkOrderPrefixLen)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "store:\n  path: from-file.db\n")
	t.Setenv("OPSLEDGER_STORE_PATH", "from-env.db")
	t.Setenv("OPSLEDGER_IMPORT_SEED_SOURCE_QUANTITIES", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.Store.Path)
	assert.True(t, cfg.Import.SeedSourceQuantities)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	path := writeConfig(t, "store:\n  driver: mysql\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `store.driver "mysql"`)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"sqlite without path", func(c *Config) { c.Store.Path = "" }, "store.path is required"},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = DriverPostgres }, "store.dsn is required"},
		{"bad prefix len", func(c *Config) { c.Import.WorkOrderPrefixLen = 0 }, "work_order_prefix_len"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"upper level ok", func(c *Config) { c.Log.Level = "WARN" }, ""},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_JoinsErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Store.Driver = "x"
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver")
	assert.Contains(t, err.Error(), "log.format")
}
