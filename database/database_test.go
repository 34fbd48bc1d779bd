package database

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/kbukum/tokengate/component"
	apperrors "github.com/kbukum/tokengate/errors"
	"github.com/kbukum/tokengate/logger"
)

type widget struct {
	Name string `gorm:"primaryKey"`
}

func memoryConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Driver:       DriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		MaxRetries:   1,
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Driver != DriverSQLite {
		t.Errorf("Driver = %q, want %q", cfg.Driver, DriverSQLite)
	}
	if cfg.DSN == "" {
		t.Error("expected a default sqlite DSN")
	}
	if cfg.MaxOpenConns != 25 || cfg.MaxIdleConns != 5 {
		t.Errorf("pool = %d/%d, want 25/5", cfg.MaxOpenConns, cfg.MaxIdleConns)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestConfig_ApplyDefaults_SmallPoolCapsIdle(t *testing.T) {
	cfg := Config{DSN: "file:small?mode=memory&cache=shared", MaxOpenConns: 1}
	cfg.ApplyDefaults()
	if cfg.MaxIdleConns != 1 {
		t.Errorf("MaxIdleConns = %d, want 1", cfg.MaxIdleConns)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("single connection pool should validate: %v", err)
	}
}

func TestConfig_ApplyDefaults_PostgresKeepsEmptyDSN(t *testing.T) {
	cfg := Config{Driver: DriverPostgres}
	cfg.ApplyDefaults()
	if cfg.DSN != "" {
		t.Errorf("postgres must not get a default DSN, got %q", cfg.DSN)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected missing DSN error")
	}
}

func TestConfig_Validate_Table(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown driver", func(c *Config) { c.Driver = "mysql" }, "unsupported database driver"},
		{"idle over open", func(c *Config) { c.MaxIdleConns = 50 }, "max_idle_conns"},
		{"bad lifetime", func(c *Config) { c.ConnMaxLifetime = "forever" }, "conn_max_lifetime"},
		{"bad backoff", func(c *Config) { c.RetryBackoff = "soon" }, "retry_backoff"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{}
			cfg.ApplyDefaults()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q should mention %q", err, tc.want)
			}
		})
	}
}

func TestDialector(t *testing.T) {
	for _, driver := range []string{DriverSQLite, DriverPostgres} {
		d, err := Dialector(Config{Driver: driver, DSN: "x"})
		if err != nil {
			t.Fatalf("%s: %v", driver, err)
		}
		if d.Name() != driver {
			t.Errorf("dialector name = %q, want %q", d.Name(), driver)
		}
	}
	if _, err := Dialector(Config{Driver: "oracle"}); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestNew_SQLiteMemory(t *testing.T) {
	db, err := New(memoryConfig(t), logger.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()

	if db.Driver() != DriverSQLite {
		t.Errorf("Driver() = %q", db.Driver())
	}
	if err := db.PingContext(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	stats, err := db.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
	if stats.OpenConns < 1 {
		t.Errorf("expected an open connection, got %d", stats.OpenConns)
	}

	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

func TestNewWithContext_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWithContext(ctx, memoryConfig(t), logger.NewNop())
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWithTransaction_RollbackOnError(t *testing.T) {
	db, err := New(memoryConfig(t), logger.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	if err := db.AutoMigrate(&widget{}); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	boom := stderrors.New("boom")
	err = db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&widget{Name: "a"}).Error; err != nil {
			return err
		}
		return boom
	})
	if !stderrors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var count int64
	db.WithContext(ctx).Model(&widget{}).Count(&count)
	if count != 0 {
		t.Errorf("expected rollback, found %d rows", count)
	}

	if err := db.WithTransaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(&widget{Name: "b"}).Error
	}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	db.WithContext(ctx).Model(&widget{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 row after commit, got %d", count)
	}
}

func TestDuplicateKey_Translated(t *testing.T) {
	db, err := New(memoryConfig(t), logger.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	if err := db.AutoMigrate(&widget{}); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	if err := db.WithContext(ctx).Create(&widget{Name: "dup"}).Error; err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err = db.WithContext(ctx).Create(&widget{Name: "dup"}).Error
	if !IsDuplicateError(err) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	appErr := FromDatabase(err, "widget")
	if appErr.Code != apperrors.ErrCodeAlreadyExists || appErr.HTTPStatus != http.StatusConflict {
		t.Errorf("expected ALREADY_EXISTS/409, got %s/%d", appErr.Code, appErr.HTTPStatus)
	}
}

func TestFromDatabase(t *testing.T) {
	if FromDatabase(nil, "user") != nil {
		t.Error("nil error should map to nil")
	}

	notFound := FromDatabase(gorm.ErrRecordNotFound, "user")
	if notFound.Code != apperrors.ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", notFound.Code)
	}

	conn := FromDatabase(stderrors.New("dial tcp: connection refused"), "user")
	if !conn.Retryable || conn.HTTPStatus != http.StatusServiceUnavailable {
		t.Errorf("connection errors should be retryable 503, got %+v", conn)
	}

	generic := FromDatabase(stderrors.New("syntax error"), "user")
	if generic.Code != apperrors.ErrCodeDatabaseError {
		t.Errorf("expected DATABASE_ERROR, got %s", generic.Code)
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.AutoMigrate = true
	c := NewComponent(cfg, logger.NewNop()).WithAutoMigrate(&widget{})
	ctx := context.Background()

	if c.DB() != nil {
		t.Fatal("DB should be nil before Start")
	}
	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s (%s)", h.Status, h.Message)
	}
	if !c.DB().GormDB.Migrator().HasTable(&widget{}) {
		t.Error("auto-migrate should have created the widgets table")
	}

	desc := c.Describe()
	if !strings.Contains(desc.Details, "driver=sqlite") || !strings.Contains(desc.Details, "auto-migrate=on") {
		t.Errorf("unexpected description %q", desc.Details)
	}

	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestComponent_StopBeforeStart(t *testing.T) {
	c := NewComponent(Config{}, logger.NewNop())
	if err := c.Stop(context.Background()); err != nil {
		t.Errorf("Stop before Start should be nil, got %v", err)
	}
}

func TestComponent_DescribeMasksDSN(t *testing.T) {
	c := NewComponent(Config{Driver: DriverPostgres, DSN: "postgres://app:hunter2@db:5432/tokengate"}, logger.NewNop())
	desc := c.Describe()
	if strings.Contains(desc.Details, "hunter2") {
		t.Errorf("description leaks the DSN password: %q", desc.Details)
	}
	if !strings.Contains(desc.Details, "dsn=postgres://***") {
		t.Errorf("expected masked dsn, got %q", desc.Details)
	}
}
