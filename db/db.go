// db/db.go
package db

import (
	"checkout_kiosk/config"
	"checkout_kiosk/models"
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured store and migrates it.
func Open(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.PostgresDSN())
	case config.DriverSQLite:
		// busy_timeout keeps concurrent requests from failing fast on SQLITE_BUSY
		dialector = sqlite.Open(cfg.DBPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.DBDriver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBDriver, err)
	}
	if cfg.DBDriver == config.DriverSQLite {
		// single writer
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("database connected", zap.String("driver", cfg.DBDriver))
	return conn, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Item{}, &models.CheckoutLog{})
}

// SeedItems inserts the given names as Available items when the table is empty.
func SeedItems(ctx context.Context, db *gorm.DB, names []string) (int, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&models.Item{}).Count(&n).Error; err != nil {
		return 0, err
	}
	if n > 0 || len(names) == 0 {
		return 0, nil
	}
	items := make([]models.Item, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		items = append(items, models.Item{Name: name, Status: models.StatusAvailable})
	}
	if len(items) == 0 {
		return 0, nil
	}
	if err := db.WithContext(ctx).Create(&items).Error; err != nil {
		return 0, err
	}
	return len(items), nil
}
