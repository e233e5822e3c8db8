package conf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lk2023060901/coursesize-backend/internal/pkg/database"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/logger"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/metrics"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/minio"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/redis"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/workerpool"
	"github.com/spf13/viper"
)

// Usage cache backends.
const (
	UsageBackendDatabase = "database"
	UsageBackendRedis    = "redis"
)

// Scanner types.
const (
	ScannerFilesystem = "filesystem"
	ScannerMinIO      = "minio"
)

type Config struct {
	Server     ServerConfig      `mapstructure:"server"`
	Database   database.Config   `mapstructure:"database"`
	Redis      redis.Config      `mapstructure:"redis"`
	MinIO      minio.Config      `mapstructure:"minio"`
	Log        logger.Config     `mapstructure:"log"`
	Report     ReportConfig      `mapstructure:"report"`
	UsageCache UsageCacheConfig  `mapstructure:"usage_cache"`
	Scanner    ScannerConfig     `mapstructure:"scanner"`
	Metrics    metrics.Config    `mapstructure:"metrics"`
	WorkerPool workerpool.Config `mapstructure:"workerpool"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type ReportConfig struct {
	ShowEmptyCourses         bool  `mapstructure:"show_empty_courses"`
	NumberOfUsers            int   `mapstructure:"number_of_users"`
	AccumulateSystemContexts bool  `mapstructure:"accumulate_system_contexts"`
	StorageSizeLimit         int64 `mapstructure:"storage_size_limit"`
}

type UsageCacheConfig struct {
	Backend         string        `mapstructure:"backend"` // database, redis
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	Plugin          string        `mapstructure:"plugin"`
}

type ScannerConfig struct {
	Type   string `mapstructure:"type"` // filesystem, minio
	Root   string `mapstructure:"root"`
	Prefix string `mapstructure:"prefix"`
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Default returns a configuration with every section defaulted.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Mode:            "release",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    5 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: *database.DefaultConfig(),
		Redis:    *redis.DefaultConfig(),
		MinIO:    *minio.DefaultConfig(),
		Log:      *logger.DefaultConfig(),
		Report: ReportConfig{
			NumberOfUsers: 10,
		},
		UsageCache: UsageCacheConfig{
			Backend:         UsageBackendDatabase,
			RefreshInterval: 24 * time.Hour,
			Plugin:          "report_coursesize",
		},
		Scanner: ScannerConfig{
			Type: ScannerFilesystem,
			Root: "/var/moodledata/filedir",
		},
		Metrics:    *metrics.DefaultConfig(),
		WorkerPool: *workerpool.DefaultConfig(),
	}
}

// LoadConfig reads path over the defaults. Environment variables
// override file values, e.g. COURSESIZE_DATABASE_HOST.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("COURSESIZE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

// setDefaults registers every default with viper so that AutomaticEnv
// also applies to keys missing from the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("database.type", d.Database.Type)
	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.password", d.Database.Password)
	v.SetDefault("database.dbname", d.Database.DBName)
	v.SetDefault("database.sslmode", d.Database.SSLMode)
	v.SetDefault("database.timezone", d.Database.Timezone)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("database.tableprefix", d.Database.TablePrefix)
	v.SetDefault("database.automigrate", d.Database.AutoMigrate)
	v.SetDefault("database.maxidleconns", d.Database.MaxIdleConns)
	v.SetDefault("database.maxopenconns", d.Database.MaxOpenConns)
	v.SetDefault("database.connmaxlifetime", d.Database.ConnMaxLifetime)
	v.SetDefault("database.connmaxidletime", d.Database.ConnMaxIdleTime)
	v.SetDefault("database.loglevel", d.Database.LogLevel)
	v.SetDefault("database.slowthreshold", d.Database.SlowThreshold)
	v.SetDefault("database.preparestmt", d.Database.PrepareStmt)

	v.SetDefault("redis.mode", d.Redis.Mode)
	v.SetDefault("redis.addrs", d.Redis.Addrs)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.pool_size", d.Redis.PoolSize)
	v.SetDefault("redis.min_idle_conns", d.Redis.MinIdleConns)
	v.SetDefault("redis.dial_timeout", d.Redis.DialTimeout)
	v.SetDefault("redis.read_timeout", d.Redis.ReadTimeout)
	v.SetDefault("redis.write_timeout", d.Redis.WriteTimeout)
	v.SetDefault("redis.max_retries", d.Redis.MaxRetries)
	v.SetDefault("redis.key_prefix", d.Redis.KeyPrefix)

	v.SetDefault("minio.endpoint", d.MinIO.Endpoint)
	v.SetDefault("minio.bucket", d.MinIO.Bucket)
	v.SetDefault("minio.bucket_lookup", d.MinIO.BucketLookup)
	v.SetDefault("minio.request_timeout", d.MinIO.RequestTimeout)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.output", d.Log.Output)
	v.SetDefault("log.enablecaller", d.Log.EnableCaller)
	v.SetDefault("log.enablestacktrace", d.Log.EnableStacktrace)
	v.SetDefault("log.file.filename", d.Log.File.Filename)
	v.SetDefault("log.file.maxsize", d.Log.File.MaxSize)
	v.SetDefault("log.file.maxage", d.Log.File.MaxAge)
	v.SetDefault("log.file.maxbackups", d.Log.File.MaxBackups)
	v.SetDefault("log.file.compress", d.Log.File.Compress)

	v.SetDefault("report.number_of_users", d.Report.NumberOfUsers)
	v.SetDefault("report.show_empty_courses", d.Report.ShowEmptyCourses)
	v.SetDefault("report.accumulate_system_contexts", d.Report.AccumulateSystemContexts)
	v.SetDefault("report.storage_size_limit", d.Report.StorageSizeLimit)

	v.SetDefault("usage_cache.backend", d.UsageCache.Backend)
	v.SetDefault("usage_cache.refresh_interval", d.UsageCache.RefreshInterval)
	v.SetDefault("usage_cache.plugin", d.UsageCache.Plugin)

	v.SetDefault("scanner.type", d.Scanner.Type)
	v.SetDefault("scanner.root", d.Scanner.Root)
	v.SetDefault("scanner.prefix", d.Scanner.Prefix)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)

	v.SetDefault("workerpool.workers", d.WorkerPool.Workers)
}

// Validate checks the service sections and the sections of the backends
// that are actually selected.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if c.Report.NumberOfUsers < 0 {
		return errors.New("report.number_of_users must not be negative")
	}
	if c.UsageCache.RefreshInterval <= 0 {
		return errors.New("usage_cache.refresh_interval must be positive")
	}
	if c.WorkerPool.Workers <= 0 {
		return errors.New("workerpool.workers must be positive")
	}

	switch c.UsageCache.Backend {
	case UsageBackendDatabase:
	case UsageBackendRedis:
		if err := c.Redis.Validate(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	default:
		return fmt.Errorf("unknown usage_cache.backend %q", c.UsageCache.Backend)
	}

	switch c.Scanner.Type {
	case ScannerFilesystem:
		if c.Scanner.Root == "" {
			return errors.New("scanner.root is required for the filesystem scanner")
		}
	case ScannerMinIO:
		if err := c.MinIO.Validate(); err != nil {
			return fmt.Errorf("minio: %w", err)
		}
	default:
		return fmt.Errorf("unknown scanner.type %q", c.Scanner.Type)
	}
	return nil
}
