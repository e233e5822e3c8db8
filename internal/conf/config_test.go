package conf

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

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, "mdl_", cfg.Database.TablePrefix)
	assert.Equal(t, 10, cfg.Report.NumberOfUsers)
	assert.False(t, cfg.Report.ShowEmptyCourses)
	assert.Equal(t, UsageBackendDatabase, cfg.UsageCache.Backend)
	assert.Equal(t, 24*time.Hour, cfg.UsageCache.RefreshInterval)
	assert.Equal(t, ScannerFilesystem, cfg.Scanner.Type)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 8, cfg.WorkerPool.Workers)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
database:
  type: sqlite
  path: /tmp/moodle.db
  tableprefix: m_
report:
  show_empty_courses: true
  number_of_users: 25
usage_cache:
  backend: redis
  refresh_interval: 1h
`)
	t.Setenv("COURSESIZE_REPORT_STORAGE_SIZE_LIMIT", "4096")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "m_", cfg.Database.TablePrefix)
	assert.True(t, cfg.Report.ShowEmptyCourses)
	assert.Equal(t, 25, cfg.Report.NumberOfUsers)
	assert.Equal(t, int64(4096), cfg.Report.StorageSizeLimit)
	assert.Equal(t, UsageBackendRedis, cfg.UsageCache.Backend)
	assert.Equal(t, time.Hour, cfg.UsageCache.RefreshInterval)
	assert.Equal(t, []string{"localhost:6379"}, cfg.Redis.Addrs)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "scanner:\n  type: ftp\n"))
	assert.ErrorContains(t, err, "scanner.type")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "negative users", mutate: func(c *Config) { c.Report.NumberOfUsers = -1 }, wantErr: true},
		{name: "zero interval", mutate: func(c *Config) { c.UsageCache.RefreshInterval = 0 }, wantErr: true},
		{name: "unknown backend", mutate: func(c *Config) { c.UsageCache.Backend = "memcached" }, wantErr: true},
		{name: "redis backend without addrs", mutate: func(c *Config) {
			c.UsageCache.Backend = UsageBackendRedis
			c.Redis.Addrs = nil
		}, wantErr: true},
		{name: "filesystem without root", mutate: func(c *Config) { c.Scanner.Root = "" }, wantErr: true},
		{name: "minio without credentials", mutate: func(c *Config) { c.Scanner.Type = ScannerMinIO }, wantErr: true},
		{name: "minio with credentials", mutate: func(c *Config) {
			c.Scanner.Type = ScannerMinIO
			c.MinIO.AccessKeyID = "key"
			c.MinIO.SecretAccessKey = "secret"
		}},
		{name: "no workers", mutate: func(c *Config) { c.WorkerPool.Workers = 0 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
