package storeapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/strandtech/storefront/internal/catalog"
	"github.com/strandtech/storefront/internal/mailer"
	"github.com/strandtech/storefront/internal/ordering"
	"github.com/strandtech/storefront/internal/webserver"
)

var (
	catalogService *catalog.Service
	orderService   *ordering.Service
	notifier       *mailer.Mailer
	tasks          catalog.TaskRunner
)

// Init wires the services and registers every route on the web server.
func Init(cs *catalog.Service, ords *ordering.Service, mail *mailer.Mailer, runner catalog.TaskRunner) {
	catalogService = cs
	orderService = ords
	notifier = mail
	tasks = runner

	webserver.GET("/", liveness)
	webserver.ApiGET("/init", liveness)

	webserver.ApiGET("/allProducts", listProducts)
	webserver.ApiGET("/getProduct/:id", getProduct)
	webserver.ApiGET("/productsCount", productsCount)
	webserver.ApiGET("/catMetrics", categoryMetrics)
	webserver.ApiPOST("/upload", createProduct)
	webserver.ApiPUT("/products/:id", updateProduct)
	webserver.ApiDELETE("/deleteProduct/:id", deleteProduct)

	webserver.ApiPOST("/createOrder", createOrder)
	webserver.ApiPOST("/orders/:id", attachOrderItems)
	webserver.ApiGET("/getOrders", listOrders)
	webserver.ApiPOST("/processOrder/:orderId", processOrder)

	webserver.ApiPOST("/postView", postView)
	webserver.ApiGET("/views", getViews)

	webserver.ApiGET("/allMessages", listMessages)
	webserver.ApiPOST("/postMessage", postMessage)

	webserver.ApiGET("/admin/system", systemStatus)
	webserver.ApiGET("/admin/export/products", exportProducts)
	webserver.ApiGET("/admin/export/orders", exportOrders)
}

func liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "Up and Running"})
}
