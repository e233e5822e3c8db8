package data

import (
	"fmt"

	"github.com/lk2023060901/coursesize-backend/internal/conf"
	"github.com/lk2023060901/coursesize-backend/internal/coursesize/biz"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/database"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/logger"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/minio"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/redis"
	"go.uber.org/zap"
)

// Data holds the connections used by the repositories. Redis and MinIO
// are only opened when the configured usage cache or scanner needs them.
type Data struct {
	DB     *database.DB
	Redis  *redis.Client
	MinIO  *minio.Client
	Logger *logger.Logger
}

func NewData(config *conf.Config, log *logger.Logger) (*Data, func(), error) {
	db, err := database.New(&config.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init database: %w", err)
	}
	if config.Database.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}

	d := &Data{DB: db, Logger: log}

	if config.UsageCache.Backend == conf.UsageBackendRedis {
		d.Redis, err = redis.New(&config.Redis, log)
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to init redis: %w", err)
		}
	}

	if config.Scanner.Type == conf.ScannerMinIO {
		d.MinIO, err = minio.NewClient(&config.MinIO, log.Logger)
		if err != nil {
			d.close()
			return nil, nil, fmt.Errorf("failed to init minio: %w", err)
		}
	}

	cleanup := func() {
		log.Info("cleaning up data resources")
		d.close()
	}
	return d, cleanup, nil
}

func (d *Data) close() {
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			d.Logger.Warn("failed to close database", zap.Error(err))
		}
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
	if d.MinIO != nil {
		_ = d.MinIO.Close()
	}
}

// NewUsageStore selects the site usage store named by usage_cache.backend.
func NewUsageStore(d *Data, config *conf.Config) biz.UsageStore {
	if config.UsageCache.Backend == conf.UsageBackendRedis && d.Redis != nil {
		return NewRedisUsageStore(d.Redis)
	}
	return NewDBUsageStore(d.DB, config.UsageCache.Plugin)
}

// NewDirectoryScanner selects the scanner named by scanner.type.
func NewDirectoryScanner(d *Data, config *conf.Config, log *logger.Logger) biz.DirectoryScanner {
	if config.Scanner.Type == conf.ScannerMinIO && d.MinIO != nil {
		return NewMinioScanner(d.MinIO, config.MinIO.Bucket, config.Scanner.Prefix, log)
	}
	return NewFSScanner(config.Scanner.Root, &config.WorkerPool, log)
}
