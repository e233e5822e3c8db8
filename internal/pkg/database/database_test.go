package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lk2023060901/coursesize-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

func memoryConfig() *Config {
	return &Config{
		Type:        TypeSQLite,
		Path:        ":memory:",
		TablePrefix: "mdl_",
		LogLevel:    "silent",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "default config", mutate: func(*Config) {}, wantErr: false},
		{name: "missing host", mutate: func(c *Config) { c.Host = "" }, wantErr: true},
		{name: "invalid port", mutate: func(c *Config) { c.Port = 0 }, wantErr: true},
		{name: "missing user", mutate: func(c *Config) { c.User = "" }, wantErr: true},
		{name: "invalid SSL mode", mutate: func(c *Config) { c.SSLMode = "prefer-ish" }, wantErr: true},
		{name: "invalid log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: true},
		{name: "idle exceeds open", mutate: func(c *Config) { c.MaxIdleConns = 50; c.MaxOpenConns = 10 }, wantErr: true},
		{name: "unknown type", mutate: func(c *Config) { c.Type = "oracle" }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.Type = TypeSQLite; c.Path = "" }, wantErr: true},
		{name: "sqlite ignores host", mutate: func(c *Config) { c.Type = TypeSQLite; c.Path = "x.db"; c.Host = "" }, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigDSN(t *testing.T) {
	pg := DefaultConfig()
	dsn := pg.DSN()
	for _, part := range []string{"host=localhost", "port=5432", "user=moodle", "dbname=moodle", "sslmode=disable", "TimeZone=UTC"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("postgres DSN %q missing %q", dsn, part)
		}
	}

	file := &Config{Type: TypeSQLite, Path: "/var/lib/coursesize.db"}
	if got := file.DSN(); !strings.HasPrefix(got, "/var/lib/coursesize.db?") || !strings.Contains(got, "busy_timeout") {
		t.Errorf("sqlite DSN = %q", got)
	}

	if got := memoryConfig().DSN(); got != ":memory:" {
		t.Errorf("memory DSN = %q, want :memory:", got)
	}
}

func TestNewSQLite(t *testing.T) {
	db, err := New(memoryConfig(), logger.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
	if got := db.TableName("context"); got != "mdl_context" {
		t.Errorf("TableName() = %q, want mdl_context", got)
	}
}

type kv struct {
	Name  string `gorm:"primaryKey"`
	Value string
}

func TestTransaction(t *testing.T) {
	db, err := New(memoryConfig(), logger.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()

	if err := db.DB.Table("kv").AutoMigrate(&kv{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	boom := errors.New("boom")

	err = db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := tx.Table("kv").Create(&kv{Name: "a", Value: "1"}).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transaction() error = %v, want boom", err)
	}

	var count int64
	db.DB.Table("kv").Count(&count)
	if count != 0 {
		t.Errorf("expected rollback, found %d rows", count)
	}

	err = db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return tx.Table("kv").Create(&kv{Name: "b", Value: "2"}).Error
	})
	if err != nil {
		t.Fatalf("Transaction() error = %v", err)
	}
	db.DB.Table("kv").Count(&count)
	if count != 1 {
		t.Errorf("expected 1 committed row, found %d", count)
	}
}
