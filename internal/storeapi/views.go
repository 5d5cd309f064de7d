package storeapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/strandtech/storefront/internal/domain"
	"github.com/strandtech/storefront/pkg/metrics"
)

func postView(c echo.Context) error {
	db := GetDB(c).WithContext(c.Request().Context())
	res := db.Model(&domain.ViewCounter{}).
		Where("id = ?", domain.ViewCounterID).
		UpdateColumn("count", gorm.Expr("count + 1"))
	if res.Error != nil {
		return failMsg(c, http.StatusInternalServerError, "Views Error")
	}
	if res.RowsAffected == 0 {
		// Counter row missing, seed it with this first view.
		if err := db.Create(&domain.ViewCounter{ID: domain.ViewCounterID, Count: 1}).Error; err != nil {
			return failMsg(c, http.StatusInternalServerError, "Views Error")
		}
	}
	metrics.CounterInc(metrics.MetricPageViews, 1)
	return c.JSON(http.StatusOK, echo.Map{"message": "View Updated!"})
}

func getViews(c echo.Context) error {
	var rows []struct {
		Count int64 `json:"count"`
	}
	err := GetDB(c).WithContext(c.Request().Context()).
		Model(&domain.ViewCounter{}).
		Select("count").
		Scan(&rows).Error
	if err != nil {
		return failMsg(c, http.StatusInternalServerError, "Internal Error")
	}
	return c.JSON(http.StatusOK, rows)
}
