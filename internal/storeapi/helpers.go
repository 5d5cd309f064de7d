package storeapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/strandtech/storefront/internal/webserver"
)

// GetDB returns the request-scoped database handle injected by the web
// server middleware.
func GetDB(c echo.Context) *gorm.DB {
	return c.Get(webserver.ContextDBKey).(*gorm.DB)
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// failMsg answers with the {"message": ...} failure body used by most of
// the public surface.
func failMsg(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"message": message})
}

// failErr answers with the {"error": ...} failure body used by the product
// upload and update paths.
func failErr(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"error": message})
}
