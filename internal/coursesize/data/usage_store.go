package data

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lk2023060901/coursesize-backend/internal/coursesize/biz"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/database"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/redis"
	"gorm.io/gorm"
)

const (
	// DefaultConfigPlugin is the config_plugins namespace of the report.
	DefaultConfigPlugin = "report_coursesize"

	configFilesSize        = "filessize"
	configFilesSizeUpdated = "filessizeupdated"

	usageKey         = "site_usage"
	usageFieldBytes  = "bytes"
	usageFieldUpdate = "updated"
)

// DBUsageStore keeps the site usage in config_plugins, as two values
// holding the byte count and the unix time of the measurement.
type DBUsageStore struct {
	db     *database.DB
	plugin string
}

func NewDBUsageStore(db *database.DB, plugin string) biz.UsageStore {
	if plugin == "" {
		plugin = DefaultConfigPlugin
	}
	return &DBUsageStore{db: db, plugin: plugin}
}

func (s *DBUsageStore) Load(ctx context.Context) (*biz.SiteUsage, error) {
	var pos []ConfigPluginPO
	err := s.db.DB.WithContext(ctx).
		Table(s.db.TableName(tableConfigPlugins)).
		Where("plugin = ? AND name IN ?", s.plugin, []string{configFilesSize, configFilesSizeUpdated}).
		Find(&pos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load site usage: %w", err)
	}

	values := make(map[string]string, len(pos))
	for _, po := range pos {
		values[po.Name] = po.Value
	}
	return parseUsage(values[configFilesSize], values[configFilesSizeUpdated])
}

func (s *DBUsageStore) Save(ctx context.Context, usage *biz.SiteUsage) error {
	return s.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := s.setValue(tx, configFilesSize, strconv.FormatInt(usage.Bytes, 10)); err != nil {
			return err
		}
		return s.setValue(tx, configFilesSizeUpdated, strconv.FormatInt(usage.LastUpdated.Unix(), 10))
	})
}

func (s *DBUsageStore) setValue(tx *gorm.DB, name, value string) error {
	table := s.db.TableName(tableConfigPlugins)

	res := tx.Table(table).
		Where("plugin = ? AND name = ?", s.plugin, name).
		Update("value", value)
	if res.Error != nil {
		return fmt.Errorf("failed to update %s: %w", name, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	if err := tx.Table(table).Create(&ConfigPluginPO{Plugin: s.plugin, Name: name, Value: value}).Error; err != nil {
		return fmt.Errorf("failed to insert %s: %w", name, err)
	}
	return nil
}

// RedisUsageStore keeps the site usage in one hash.
type RedisUsageStore struct {
	client *redis.Client
}

func NewRedisUsageStore(client *redis.Client) biz.UsageStore {
	return &RedisUsageStore{client: client}
}

func (s *RedisUsageStore) Load(ctx context.Context) (*biz.SiteUsage, error) {
	fields, err := s.client.HGetAll(ctx, s.client.Key(usageKey))
	if err != nil {
		if redis.IsNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load site usage: %w", err)
	}
	return parseUsage(fields[usageFieldBytes], fields[usageFieldUpdate])
}

func (s *RedisUsageStore) Save(ctx context.Context, usage *biz.SiteUsage) error {
	_, err := s.client.HSet(ctx, s.client.Key(usageKey),
		usageFieldBytes, usage.Bytes,
		usageFieldUpdate, usage.LastUpdated.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save site usage: %w", err)
	}
	return nil
}

var errCorruptUsage = errors.New("stored site usage is corrupt")

// parseUsage returns (nil, nil) unless both values are present.
func parseUsage(bytes, updated string) (*biz.SiteUsage, error) {
	if bytes == "" || updated == "" {
		return nil, nil
	}
	b, err := strconv.ParseInt(bytes, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bytes %q", errCorruptUsage, bytes)
	}
	ts, err := strconv.ParseInt(updated, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp %q", errCorruptUsage, updated)
	}
	return &biz.SiteUsage{Bytes: b, LastUpdated: time.Unix(ts, 0)}, nil
}
