package webserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/strandtech/storefront/config"
	"github.com/strandtech/storefront/pkg/metrics"
)

// ContextDBKey is where the request middleware stores the gorm handle.
const ContextDBKey = "db"

var server *WebServer

// WebServer wraps the echo engine with the application wiring.
type WebServer struct {
	cfg  *config.AppConfig
	root *echo.Echo
}

// Init builds the global web server. Handlers registered through the Api*
// helpers are mounted under the /api prefix.
func Init(cfg *config.AppConfig, db *gorm.DB) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.System.Debug
	e.JSONSerializer = jsonSerializer{}

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(requestMiddleware(db))

	server = &WebServer{cfg: cfg, root: e}
	return server
}

// requestMiddleware injects the database handle, counts the request and logs
// its outcome.
func requestMiddleware(db *gorm.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextDBKey, db)
			metrics.CounterInc(metrics.MetricApiRequests, 1)

			start := time.Now()
			// Route errors through the error handler here, once, so the
			// logged status reflects the response actually written.
			if err := next(c); err != nil {
				c.Error(err)
			}
			zap.L().Debug("http request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("elapsed", time.Since(start)))
			return nil
		}
	}
}

// jsonSerializer swaps echo's encoding/json for jsoniter.
type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := jsoniter.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	err := jsoniter.NewDecoder(c.Request().Body).Decode(i)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return nil
}

func (s *WebServer) Echo() *echo.Echo {
	return s.root
}

// Listen starts the HTTP listener and blocks until it stops.
func (s *WebServer) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Web.Host, s.cfg.Web.Port)
	zap.L().Info("web server listening", zap.String("addr", addr))
	return s.root.Start(addr)
}

func (s *WebServer) Shutdown(ctx context.Context) error {
	return s.root.Shutdown(ctx)
}

// Route registration helpers. Api* variants mount under /api.

func GET(path string, h echo.HandlerFunc) {
	server.root.GET(path, h)
}

func ApiGET(path string, h echo.HandlerFunc) {
	server.root.GET("/api"+path, h)
}

func ApiPOST(path string, h echo.HandlerFunc) {
	server.root.POST("/api"+path, h)
}

func ApiPUT(path string, h echo.HandlerFunc) {
	server.root.PUT("/api"+path, h)
}

func ApiDELETE(path string, h echo.HandlerFunc) {
	server.root.DELETE("/api"+path, h)
}
