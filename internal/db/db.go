package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens a gorm handle for driver "sqlite" or "mysql".
// DSN demo (mysql):
// app:apppass@tcp(127.0.0.1:3306)/disruptor?charset=utf8mb4&parseTime=true&loc=UTC
func Connect(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	maxOpen := 20
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "":
		// single writer avoids SQLITE_BUSY under concurrent saves
		maxOpen = 1
		if dsn == "" {
			dsn = "disruptor.db"
		}
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", driver, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return gdb, nil
}
