package middleware

import (
	"strconv"
	"time"

	"github.com/deppfellow/crashmap/internal/metrics"
	"github.com/labstack/echo/v4"
)

// MetricsMiddleware records request counts and latency in Prometheus,
// labelled by route template rather than raw path.
type MetricsMiddleware struct {
	now func() time.Time
}

func NewMetricsMiddleware() *MetricsMiddleware {
	return &MetricsMiddleware{now: time.Now}
}

func (m *MetricsMiddleware) Collect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := m.now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			status := statusFromError(err, c.Response().Status)

			metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(m.now().Sub(start).Seconds())

			return err
		}
	}
}
