package router

import (
	"github.com/deppfellow/crashmap/internal/handler"
	"github.com/deppfellow/crashmap/internal/metrics"
	"github.com/deppfellow/crashmap/static"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers the endpoints that are not part of the
// intersection API: banner, health, metrics and documentation.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/", h.Banner.Serve)

	r.GET("/status", h.Health.CheckHealth)

	r.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	r.StaticFS("/static", static.FS)

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
