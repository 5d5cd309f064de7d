package app

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/strandtech/storefront/internal/domain"
)

// checkViewCounter seeds the singleton page-view counter row so the
// increment path always has a row to update.
func (a *Application) checkViewCounter() {
	var counter domain.ViewCounter
	err := a.gormDB.Where("id = ?", domain.ViewCounterID).First(&counter).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.ViewCounter{
			ID:    domain.ViewCounterID,
			Count: 0,
		}).Error; err != nil {
			zap.L().Error("failed to seed view counter", zap.Error(err))
			return
		}
		zap.L().Info("initialized view counter row")
	case err != nil:
		zap.L().Error("failed to query view counter", zap.Error(err))
	}
}
