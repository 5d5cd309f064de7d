package app

import (
	"github.com/asaskevich/EventBus"
	"github.com/panjf2000/ants/v2"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/strandtech/storefront/config"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// BusProvider provides the in-process event bus
type BusProvider interface {
	Bus() EventBus.Bus
}

// PoolProvider provides the shared background task pool
type PoolProvider interface {
	Pool() *ants.Pool
}
