package app

import (
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/strandtech/storefront/config"
)

// getDatabase opens the configured relational store. Postgres is the
// production backend; sqlite keeps a single-node deployment self-contained.
func getDatabase(cfg config.DBConfig, workdir string, debug bool) *gorm.DB {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(level),
	}

	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Type) {
	case "sqlite":
		dialector = sqlite.Open(filepath.Join(workdir, "storefront.db"))
	default:
		dialector = postgres.Open(cfg.DSN())
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		panic(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	if cfg.MaxConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConn)
	}
	if cfg.IdleConn > 0 {
		sqlDB.SetMaxIdleConns(cfg.IdleConn)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db
}
